package repository

import (
	"context"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/repository/postgres"
)

const (
	insertCheckResultQuery = `
						INSERT INTO b2b_check_results (user_id, vat_number, registry_id, country,
						                               is_valid_vat, is_company_found, is_sanctioned,
						                               raw_vat, raw_registry, raw_sanctions, score)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
						RETURNING id, created_at
`
	selectCheckResultsByUserQuery = `
						SELECT id, user_id, vat_number, registry_id, country,
						       is_valid_vat, is_company_found, is_sanctioned,
						       raw_vat, raw_registry, raw_sanctions, score, created_at
						FROM b2b_check_results
						WHERE user_id = $1
						ORDER BY created_at DESC
`
)

// B2BCheckRepository provides access to append-only verification results
type B2BCheckRepository struct {
	db *postgres.DB
}

// NewB2BCheckRepository creates new B2BCheckRepository instance
func NewB2BCheckRepository(db *postgres.DB) *B2BCheckRepository {
	return &B2BCheckRepository{db: db}
}

// CreateResult appends a verification run result. Rows are never
// updated in place, the history is the audit trail.
func (br *B2BCheckRepository) CreateResult(ctx context.Context, res *models.B2BCheckResult) (*models.B2BCheckResult, error) {
	err := br.db.QueryRow(ctx, insertCheckResultQuery,
		res.UserID, res.VATNumber, res.RegistryID, res.Country,
		res.IsValidVAT, res.IsCompanyFound, res.IsSanctioned,
		res.RawVAT, res.RawRegistry, res.RawSanctions, res.Score,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// GetResultsByUserID returns the verification history for a user
func (br *B2BCheckRepository) GetResultsByUserID(ctx context.Context, userID uint64) ([]models.B2BCheckResult, error) {
	rows, err := br.db.Query(ctx, selectCheckResultsByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.B2BCheckResult{}

	for rows.Next() {
		res := models.B2BCheckResult{}
		err = rows.Scan(&res.ID, &res.UserID, &res.VATNumber, &res.RegistryID, &res.Country,
			&res.IsValidVAT, &res.IsCompanyFound, &res.IsSanctioned,
			&res.RawVAT, &res.RawRegistry, &res.RawSanctions, &res.Score, &res.CreatedAt)
		if err != nil {
			continue
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
