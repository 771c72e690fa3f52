// Package apikey manages scoped, user-bound API keys. Only the SHA-256 hash
// of a key is ever stored; the plaintext leaves the server exactly once, in
// the return value of Issue.
package apikey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/store"
)

var (
	ErrInvalidKey = errors.New("invalid api key")
	ErrRevoked    = errors.New("api key revoked")
	ErrExpired    = errors.New("api key expired")
	// ErrForbiddenScope means the key is valid but lacks the requested scope.
	ErrForbiddenScope = errors.New("api key not authorized for scope")
	// ErrBadScopes rejects an empty scope set or one naming unknown scopes
	// at issue time, never deferred to validation time.
	ErrBadScopes = errors.New("unsupported or empty scope set")
	ErrBadExpiry = errors.New("expires_in_days must be greater than zero")
)

type Manager struct {
	store *store.Store
}

func NewManager(st *store.Store) *Manager {
	return &Manager{store: st}
}

// Issue creates a new key bound to boundUserID. The returned string is the
// plaintext secret; it is not recoverable afterwards.
func (m *Manager) Issue(ctx context.Context, name string, boundUserID, createdByID uint, scopes []string, expiresInDays *int) (*model.APIKey, string, error) {
	if !validScopes(scopes) {
		return nil, "", ErrBadScopes
	}
	if expiresInDays != nil && *expiresInDays <= 0 {
		return nil, "", ErrBadExpiry
	}

	boundUser, err := m.store.UserByID(ctx, boundUserID)
	if err != nil {
		return nil, "", fmt.Errorf("load bound user: %w", err)
	}

	plain, err := model.NewRawAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("generate key: %w", err)
	}

	var expiresAt *time.Time
	if expiresInDays != nil {
		deadline := time.Now().Add(time.Duration(*expiresInDays) * 24 * time.Hour)
		expiresAt = &deadline
	}

	key := &model.APIKey{
		Name:        name,
		HashedKey:   model.HashAPIKey(plain),
		KeyPreview:  model.MaskKey(plain),
		Scopes:      strings.Join(scopes, ","),
		ExpiresAt:   expiresAt,
		BoundUserID: boundUser.ID,
		CreatedByID: createdByID,
	}
	if err := m.store.CreateAPIKey(ctx, key); err != nil {
		return nil, "", fmt.Errorf("persist key: %w", err)
	}
	key.BoundUser = *boundUser

	return key, plain, nil
}

// Validate resolves a plaintext key to its record, bound user included. The
// revoked flag and expiry are read from the store on every call, so a revoke
// committed mid-flight fails checks that have not completed yet. On success
// the last-used timestamp is updated best effort; a failure there never
// blocks the validation result.
func (m *Manager) Validate(ctx context.Context, rawKey string, requiredScope model.APIScope) (*model.APIKey, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return nil, ErrInvalidKey
	}

	key, err := m.store.APIKeyByHash(ctx, model.HashAPIKey(rawKey))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidKey
		}
		return nil, fmt.Errorf("load key: %w", err)
	}

	if key.Revoked {
		return nil, ErrRevoked
	}
	if key.Expired(time.Now()) {
		return nil, ErrExpired
	}
	if !key.HasScope(requiredScope) {
		return nil, ErrForbiddenScope
	}
	if key.BoundUser.ID == 0 {
		// Bound user deleted after issue; the key has nobody to act as.
		return nil, ErrInvalidKey
	}

	now := time.Now()
	if err := m.store.TouchAPIKey(ctx, key.ID, now); err == nil {
		key.LastUsedAt = &now
	}

	return key, nil
}

// Revoke soft-deletes the key. Idempotent.
func (m *Manager) Revoke(ctx context.Context, id uint) error {
	return m.store.RevokeAPIKey(ctx, id)
}

// List returns every key record. Plaintext is never part of the record, only
// the masked preview fragment.
func (m *Manager) List(ctx context.Context) ([]model.APIKey, error) {
	return m.store.ListAPIKeys(ctx)
}

func validScopes(scopes []string) bool {
	if len(scopes) == 0 {
		return false
	}
	for _, s := range scopes {
		if !model.SupportedScopes[model.APIScope(strings.TrimSpace(s))] {
			return false
		}
	}
	return true
}
