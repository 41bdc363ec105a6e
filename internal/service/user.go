package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/coalmart/coalmart/internal/logger"
	"github.com/coalmart/coalmart/internal/models"
)

// TokenService issues and verifies authorization tokens
type TokenService interface {
	CreateToken(user *models.User) (string, error)
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}

// UserRepository is interface for interacting with user-related data
type UserRepository interface {
	// CreateUser inserts new user
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail returns user by email
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns user by id
	GetUserByID(ctx context.Context, userID uint64) (*models.User, error)
}

// B2BVerifier runs the business verification pipeline
type B2BVerifier interface {
	RunChecks(ctx context.Context, user *models.User) (*models.B2BCheckResult, error)
}

// RegisterInput is the registration form data.
type RegisterInput struct {
	Email          string
	Password       string
	IsB2B          bool
	CompanyName    string
	CompanyWebsite string
	VATNumber      string
	RegistryID     string
	Country        string
}

// UserService implements registration and login
type UserService struct {
	repo     UserRepository
	token    TokenService
	verifier B2BVerifier
}

// NewUserService creates new UserService instance
func NewUserService(repo UserRepository, token TokenService, verifier B2BVerifier) *UserService {
	return &UserService{
		repo:     repo,
		token:    token,
		verifier: verifier,
	}
}

// Register creates a user. Business registrants are verified
// synchronously; a verification failure never fails the registration.
func (us *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := models.RoleB2C
	if input.IsB2B {
		role = models.RoleB2B
	}

	user := models.User{
		Email:          input.Email,
		PasswordHash:   string(hash),
		Role:           role,
		IsB2B:          input.IsB2B,
		CompanyName:    input.CompanyName,
		CompanyWebsite: input.CompanyWebsite,
		VATNumber:      input.VATNumber,
		RegistryID:     input.RegistryID,
		Country:        input.Country,
	}

	if _, err := us.repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, models.ErrConflictData) {
			return nil, models.ErrUserExist
		}
		return nil, err
	}

	if user.IsB2B {
		if _, err := us.verifier.RunChecks(ctx, &user); err != nil {
			logger.Log.Error("register: b2b verification failed",
				zap.Uint64("user_id", user.ID), zap.Error(err))
		}
	}

	return &user, nil
}

// Login verifies credentials and returns a signed token.
func (us *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := us.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return "", models.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return us.token.CreateToken(user)
}

// GetUser returns user by id
func (us *UserService) GetUser(ctx context.Context, userID uint64) (*models.User, error) {
	return us.repo.GetUserByID(ctx, userID)
}
