package models

import "time"

// B2BCheckResult is one full verification run for a business account.
// Rows are append-only: every re-check inserts a new row so the
// history is preserved.
type B2BCheckResult struct {
	ID             uint64
	UserID         uint64
	VATNumber      *string
	RegistryID     *string
	Country        *string
	IsValidVAT     bool
	IsCompanyFound bool
	IsSanctioned   bool
	RawVAT         []byte
	RawRegistry    []byte
	RawSanctions   []byte
	Score          int
	CreatedAt      time.Time
}
