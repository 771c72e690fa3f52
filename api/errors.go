package api

import (
	"errors"
	"net/http"

	"github.com/HaiTang-8/content-hub/internal/apikey"
	"github.com/HaiTang-8/content-hub/internal/auth"
	"github.com/HaiTang-8/content-hub/internal/share"
	"github.com/HaiTang-8/content-hub/internal/store"
)

// shareStatus maps a share engine denial to the protocol status and the
// user-facing message. Each denial kind gets its own message because the
// client treats "log in first" and "not the right recipient" and "used up"
// as different situations.
func shareStatus(err error) (int, string) {
	switch {
	case errors.Is(err, share.ErrNotFound):
		return http.StatusNotFound, "Share not found"
	case errors.Is(err, share.ErrExpired):
		return http.StatusGone, "Share has expired"
	case errors.Is(err, share.ErrLoginRequired):
		return http.StatusUnauthorized, "This share requires login"
	case errors.Is(err, share.ErrForbidden):
		return http.StatusForbidden, "This share is restricted to another user"
	case errors.Is(err, share.ErrQuotaExhausted):
		return http.StatusGone, "View limit for this share has been reached"
	case errors.Is(err, share.ErrBadPolicy):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpired),
		errors.Is(err, auth.ErrRevoked):
		// Share requests may carry a session to satisfy the login policy;
		// a dead session fails the whole request
		return http.StatusUnauthorized, "Invalid or expired session"
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable, "Storage temporarily unavailable, retry later"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// authStatus maps session and api key denials onto protocol statuses.
func authStatus(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpired),
		errors.Is(err, auth.ErrRevoked):
		return http.StatusUnauthorized, "Invalid or expired session"
	case errors.Is(err, apikey.ErrInvalidKey):
		return http.StatusUnauthorized, "API key is invalid or unknown"
	case errors.Is(err, apikey.ErrRevoked):
		return http.StatusUnauthorized, "API key has been revoked"
	case errors.Is(err, apikey.ErrExpired):
		return http.StatusUnauthorized, "API key has expired"
	case errors.Is(err, apikey.ErrForbiddenScope):
		return http.StatusForbidden, "API key not authorized for this scope"
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable, "Storage temporarily unavailable, retry later"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
