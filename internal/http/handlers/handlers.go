// Package handlers exposes the account and payment workflows over HTTP.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/payment-gateway/internal/auth"
	"github.com/hongminglow/payment-gateway/internal/http/respond"
	"github.com/hongminglow/payment-gateway/internal/logging"
	"github.com/hongminglow/payment-gateway/internal/service"
)

// Middleware wraps a handler, e.g. with bearer authentication.
type Middleware func(http.Handler) http.Handler

// newValidator reports failures using JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate decodes the body into dst and runs struct validation. On
// failure it has already written a 400 response.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if err := respond.Decode(w, r, dst); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := v.Struct(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "min", "max", "len":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

// writeServiceError maps workflow errors to HTTP responses. Unexpected errors
// are logged and reported as 500 without detail.
func writeServiceError(ctx context.Context, w http.ResponseWriter, log logging.Logger, err error) {
	var providerErr *service.ProviderError
	switch {
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		respond.Error(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrInvalidSignature):
		respond.Error(w, http.StatusBadRequest, "Invalid payment signature")
	case errors.Is(err, service.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrPaymentNotFound):
		respond.Error(w, http.StatusNotFound, "Payment not found")
	case errors.Is(err, service.ErrPaymentClosed):
		respond.Error(w, http.StatusConflict, "Payment can no longer be verified")
	case errors.As(err, &providerErr):
		log.Error(ctx, "payment provider failure", "op", providerErr.Op, "error", providerErr.Err)
		respond.Error(w, http.StatusBadGateway, "Payment provider unavailable")
	default:
		log.Error(ctx, "request failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

// identity returns the caller resolved by the auth middleware.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		respond.Error(w, http.StatusUnauthorized, "Could not validate credentials")
	}
	return id, ok
}
