package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/campforge/campforge-api/internal/api/shared"
	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/service/auth"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/go-playground/validator/v10"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	validator        *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		validator:        validator.New(),
	}
}

// Register handles the /auth/register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid request format", domain.CodeValidationError)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Validation error: "+err.Error(), domain.CodeValidationError)
		return
	}

	hashedPassword, err := h.passwordVerifier.Hash(req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid password: "+err.Error(), domain.CodeValidationError)
		return
	}

	user, err := domain.NewUser(req.Email, hashedPassword)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid user data: "+err.Error(), domain.CodeValidationError)
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			respondWithMappedError(w, r, err)
			return
		}
		slog.Error("failed to create user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to create user", domain.CodeInternalError)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", domain.CodeInternalError)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		UserID: user.ID,
		Token:  token,
	})
}

// Login handles the /auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid request format", domain.CodeValidationError)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Validation error: "+err.Error(), domain.CodeValidationError)
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Same response as a bad password so the endpoint does not leak
			// which emails exist.
			shared.RespondWithError(w, r, http.StatusUnauthorized,
				"Invalid credentials", domain.CodeUnauthorized)
			return
		}
		slog.Error("failed to get user by email", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to authenticate user", domain.CodeInternalError)
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			"Invalid credentials", domain.CodeUnauthorized)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", domain.CodeInternalError)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID: user.ID,
		Token:  token,
	})
}
