package models

import "time"

// user role
const (
	RoleB2C   = "b2c"
	RoleB2B   = "b2b"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// User is user entity
type User struct {
	ID             uint64
	Email          string
	PasswordHash   string
	Role           string
	IsB2B          bool
	CompanyName    string
	CompanyWebsite string
	VATNumber      string
	RegistryID     string
	Country        string
	CreatedAt      time.Time
}

// TokenPayload is payload of authorization token
type TokenPayload struct {
	UserID uint64
	Role   string
}
