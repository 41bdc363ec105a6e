package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/coalmart/coalmart/internal/b2bcheck"
	"github.com/coalmart/coalmart/internal/logger"
	"github.com/coalmart/coalmart/internal/models"
)

// scoring weights: no partial credit within a category
const (
	scoreValidVAT    = 40
	scoreRegistryHit = 40
	scoreNoSanctions = 20
)

// VATChecker validates VAT numbers
type VATChecker interface {
	CheckVAT(ctx context.Context, vatNumber, countryCode string) (*b2bcheck.VATResult, error)
}

// RegistryChecker checks trade-registry presence
type RegistryChecker interface {
	CheckCompany(ctx context.Context, companyName, registryID, countryCode string) (*b2bcheck.RegistryResult, error)
}

// SanctionsChecker screens against sanctions lists
type SanctionsChecker interface {
	CheckSanctions(ctx context.Context, vatNumber, companyName, website string) (*b2bcheck.SanctionsResult, error)
}

// B2BCheckRepository persists verification results
type B2BCheckRepository interface {
	// CreateResult appends a verification run result
	CreateResult(ctx context.Context, res *models.B2BCheckResult) (*models.B2BCheckResult, error)
}

// B2BUserRepository lists business accounts for scheduled re-checks
type B2BUserRepository interface {
	ListB2BUsers(ctx context.Context) ([]models.User, error)
}

// Alerter raises administrative alerts
type Alerter interface {
	Raise(ctx context.Context, alertType string, payload map[string]any)
}

// B2BService aggregates independent checks about a business registrant
// into a single persisted score.
type B2BService struct {
	vat       VATChecker
	registry  RegistryChecker
	sanctions SanctionsChecker
	repo      B2BCheckRepository
	users     B2BUserRepository
	alerter   Alerter
	threshold int
}

// NewB2BService creates new B2BService instance
func NewB2BService(
	vat VATChecker,
	registry RegistryChecker,
	sanctions SanctionsChecker,
	repo B2BCheckRepository,
	users B2BUserRepository,
	alerter Alerter,
	threshold int,
) *B2BService {
	return &B2BService{
		vat:       vat,
		registry:  registry,
		sanctions: sanctions,
		repo:      repo,
		users:     users,
		alerter:   alerter,
		threshold: threshold,
	}
}

// RunChecks runs the full verification cycle for a user and appends
// the scored result. Non-business users are skipped entirely. Each
// check source degrades to a negative verdict on failure instead of
// aborting the pipeline, and alerting failures never reach the caller.
func (bs *B2BService) RunChecks(ctx context.Context, user *models.User) (*models.B2BCheckResult, error) {
	if !user.IsB2B {
		return nil, nil
	}

	result := models.B2BCheckResult{UserID: user.ID}
	if user.VATNumber != "" {
		result.VATNumber = &user.VATNumber
	}
	if user.RegistryID != "" {
		result.RegistryID = &user.RegistryID
	}
	if user.Country != "" {
		result.Country = &user.Country
	}

	vatRes, err := bs.vat.CheckVAT(ctx, user.VATNumber, user.Country)
	if err != nil {
		logger.Log.Warn("b2b check: vat source failed", zap.Uint64("user_id", user.ID), zap.Error(err))
		result.RawVAT = rawError(err)
	} else {
		result.IsValidVAT = vatRes.IsValid
		result.RawVAT = vatRes.Raw
	}

	regRes, err := bs.registry.CheckCompany(ctx, user.CompanyName, user.RegistryID, user.Country)
	if err != nil {
		logger.Log.Warn("b2b check: registry source failed", zap.Uint64("user_id", user.ID), zap.Error(err))
		result.RawRegistry = rawError(err)
	} else {
		result.IsCompanyFound = regRes.IsFound
		result.RawRegistry = regRes.Raw
	}

	sanRes, err := bs.sanctions.CheckSanctions(ctx, user.VATNumber, user.CompanyName, user.CompanyWebsite)
	if err != nil {
		logger.Log.Warn("b2b check: sanctions source failed", zap.Uint64("user_id", user.ID), zap.Error(err))
		result.RawSanctions = rawError(err)
	} else {
		result.IsSanctioned = sanRes.IsSanctioned
		result.RawSanctions = sanRes.Raw
	}

	result.Score = Score(result.IsValidVAT, result.IsCompanyFound, result.IsSanctioned)

	if _, err := bs.repo.CreateResult(ctx, &result); err != nil {
		return nil, err
	}

	if result.IsSanctioned || !result.IsValidVAT || !result.IsCompanyFound || result.Score < bs.threshold {
		bs.alerter.Raise(ctx, "b2b_review", map[string]any{
			"user_id":          user.ID,
			"check_result_id":  result.ID,
			"score":            result.Score,
			"is_valid_vat":     result.IsValidVAT,
			"is_company_found": result.IsCompanyFound,
			"is_sanctioned":    result.IsSanctioned,
		})
	}

	return &result, nil
}

// RecheckAll re-runs the verification for every business account.
// Used by the periodic worker and the admin re-check action.
func (bs *B2BService) RecheckAll(ctx context.Context) error {
	users, err := bs.users.ListB2BUsers(ctx)
	if err != nil {
		return err
	}

	for _, user := range users {
		if _, err := bs.RunChecks(ctx, &user); err != nil {
			logger.Log.Error("b2b recheck failed", zap.Uint64("user_id", user.ID), zap.Error(err))
		}
	}

	return nil
}

// Score computes the deterministic weighted sum of the three verdicts.
func Score(validVAT, companyFound, sanctioned bool) int {
	score := 0
	if validVAT {
		score += scoreValidVAT
	}
	if companyFound {
		score += scoreRegistryHit
	}
	if !sanctioned {
		score += scoreNoSanctions
	}
	return score
}

func rawError(err error) []byte {
	raw, _ := json.Marshal(map[string]string{"error": err.Error()})
	return raw
}
