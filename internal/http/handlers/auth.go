package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/payment-gateway/internal/http/respond"
	"github.com/hongminglow/payment-gateway/internal/logging"
	"github.com/hongminglow/payment-gateway/internal/models"
	"github.com/hongminglow/payment-gateway/internal/models/dto"
	"github.com/hongminglow/payment-gateway/internal/service"
)

// Accounts is the account workflow the auth endpoints call.
type Accounts interface {
	Signup(ctx context.Context, email, fullName, password string) (models.User, error)
	Signin(ctx context.Context, email, password string) (service.Session, error)
	Profile(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, email string, update models.UserUpdate) (models.User, error)
}

// AuthHandler owns the signup, signin and profile endpoints.
type AuthHandler struct {
	accounts Accounts
	validate *validator.Validate
	log      logging.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts Accounts, log logging.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, validate: newValidator(), log: log}
}

// Register attaches auth routes to the mux. Profile and signout routes are
// wrapped with protect.
func (h *AuthHandler) Register(mux *http.ServeMux, protect Middleware) {
	mux.HandleFunc("POST /auth/signup", h.handleSignup)
	mux.HandleFunc("POST /auth/signin", h.handleSignin)
	mux.Handle("GET /auth/profile", protect(http.HandlerFunc(h.handleProfile)))
	mux.Handle("PATCH /auth/profile", protect(http.HandlerFunc(h.handleUpdateProfile)))
	mux.Handle("POST /auth/signout", protect(http.HandlerFunc(h.handleSignout)))
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	created, err := h.accounts.Signup(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "User created successfully", created)
}

func (h *AuthHandler) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req dto.SigninRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	session, err := h.accounts.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Signin successful", dto.TokenResponse{
		AccessToken: session.Token,
		TokenType:   "bearer",
		ExpiresIn:   int64(session.ExpiresIn.Seconds()),
	})
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	user, err := h.accounts.Profile(r.Context(), id.Email)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Profile retrieved", user)
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	user, err := h.accounts.UpdateProfile(r.Context(), id.Email, models.UserUpdate{FullName: req.FullName})
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Profile updated", user)
}

// handleSignout acknowledges the request. Tokens stay valid until they expire;
// clients discard them.
func (h *AuthHandler) handleSignout(w http.ResponseWriter, r *http.Request) {
	if _, ok := identity(w, r); !ok {
		return
	}
	respond.JSON(w, http.StatusOK, "Signed out successfully", nil)
}
