// Package auth issues and validates login sessions. Sessions are opaque
// random tokens backed by store records, so invalidation takes effect
// immediately on every server instance sharing the database.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/HaiTang-8/content-hub/pkg/security"
	"github.com/HaiTang-8/content-hub/util"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so responses don't leak which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken means the token is malformed or unknown. The caller
	// should force re-authentication.
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpired      = errors.New("session expired")
	ErrRevoked      = errors.New("session revoked")
)

const tokenBytes = 32

type Sessions struct {
	store    *store.Store
	argon    *security.ArgonHash
	lifetime time.Duration
}

// NewSessions builds a session manager with a single fixed lifetime. The
// client may cache the token for however long it likes, the absolute expiry
// set here wins regardless.
func NewSessions(st *store.Store, argon *security.ArgonHash, lifetime time.Duration) *Sessions {
	return &Sessions{store: st, argon: argon, lifetime: lifetime}
}

// Authenticate verifies a username/password pair and issues a fresh session.
// Failures are terminal for the attempt; there is no retry logic here.
func (s *Sessions) Authenticate(ctx context.Context, username, password string) (*model.Session, *model.User, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}

	ok, err := s.argon.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := util.GenerateToken(tokenBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := &model.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.lifetime),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("persist session: %w", err)
	}

	return sess, user, nil
}

// Validate resolves a bearer token to its user. Revocation and expiry are
// checked against the stored record on every call, never cached.
func (s *Sessions) Validate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	sess, err := s.store.SessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if sess.Revoked {
		return nil, ErrRevoked
	}
	if !time.Now().Before(sess.ExpiresAt) {
		return nil, ErrExpired
	}

	user := sess.User
	return &user, nil
}

// Invalidate revokes a session. Unknown or already revoked tokens are a no-op.
func (s *Sessions) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.RevokeSession(ctx, token)
}

// InvalidateUser revokes every live session a user holds, used after a
// password reset or account deletion.
func (s *Sessions) InvalidateUser(ctx context.Context, userID uint) error {
	return s.store.RevokeSessionsForUser(ctx, userID)
}
