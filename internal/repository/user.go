package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/repository/postgres"
)

const (
	insertUserQuery = `
						INSERT INTO users (email, password_hash, role, is_b2b, company_name, company_website, vat_number, registry_id, country)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
						RETURNING id, created_at
`
	selectUserByEmailQuery = `
						SELECT id, email, password_hash, role, is_b2b, company_name, company_website, vat_number, registry_id, country, created_at
						FROM users
						WHERE email = $1
`
	selectUserByIDQuery = `
						SELECT id, email, password_hash, role, is_b2b, company_name, company_website, vat_number, registry_id, country, created_at
						FROM users
						WHERE id = $1
`
	selectB2BUsersQuery = `
						SELECT id, email, password_hash, role, is_b2b, company_name, company_website, vat_number, registry_id, country, created_at
						FROM users
						WHERE is_b2b = TRUE
						ORDER BY id
`
)

// UserRepository provides access to user rows
type UserRepository struct {
	db *postgres.DB
}

// NewUserRepository creates new UserRepository instance
func NewUserRepository(db *postgres.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts new user to database
func (ur *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	err := ur.db.QueryRow(ctx, insertUserQuery,
		user.Email, user.PasswordHash, user.Role, user.IsB2B,
		user.CompanyName, user.CompanyWebsite, user.VATNumber, user.RegistryID, user.Country,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if errCode := ur.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return user, nil
}

// GetUserByEmail returns user by email
func (ur *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return ur.scanOne(ctx, selectUserByEmailQuery, email)
}

// GetUserByID returns user by id
func (ur *UserRepository) GetUserByID(ctx context.Context, userID uint64) (*models.User, error) {
	return ur.scanOne(ctx, selectUserByIDQuery, userID)
}

func (ur *UserRepository) scanOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := models.User{}
	err := ur.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.IsB2B,
		&user.CompanyName, &user.CompanyWebsite, &user.VATNumber, &user.RegistryID,
		&user.Country, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &user, nil
}

// ListB2BUsers returns all business accounts for scheduled re-checks
func (ur *UserRepository) ListB2BUsers(ctx context.Context) ([]models.User, error) {
	rows, err := ur.db.Query(ctx, selectB2BUsersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}

	for rows.Next() {
		user := models.User{}
		err = rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.IsB2B,
			&user.CompanyName, &user.CompanyWebsite, &user.VATNumber, &user.RegistryID,
			&user.Country, &user.CreatedAt)
		if err != nil {
			continue
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
