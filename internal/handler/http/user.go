package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/service"
)

// UserAuthService registers and authenticates users
type UserAuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// UserHandler represents HTTP handler for user-related requests
type UserHandler struct {
	svc UserAuthService
}

// NewUserHandler creates new UserHandler instance
func NewUserHandler(svc UserAuthService) *UserHandler {
	return &UserHandler{svc: svc}
}

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	IsB2B          bool   `json:"is_b2b"`
	CompanyName    string `json:"company_name"`
	CompanyWebsite string `json:"company_website"`
	VATNumber      string `json:"vat_number"`
	RegistryID     string `json:"registry_id"`
	Country        string `json:"country"`
}

// Register creates a user account. Business registrants are verified
// during registration but a failed verification does not reject them.
func (uh *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password are required", http.StatusBadRequest)
			return
		}

		user, err := uh.svc.Register(r.Context(), service.RegisterInput{
			Email:          req.Email,
			Password:       req.Password,
			IsB2B:          req.IsB2B,
			CompanyName:    req.CompanyName,
			CompanyWebsite: req.CompanyWebsite,
			VATNumber:      req.VATNumber,
			RegistryID:     req.RegistryID,
			Country:        req.Country,
		})
		if err != nil {
			if errors.Is(err, models.ErrUserExist) {
				http.Error(w, "user already exists", http.StatusConflict)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates the user and sets the auth token cookie
func (uh *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		token, err := uh.svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
		})
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}
