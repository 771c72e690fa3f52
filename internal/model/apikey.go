package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// APIScope names a capability an API key may be granted.
type APIScope string

// ScopeFilesUpload allows uploading files on behalf of the bound user.
const ScopeFilesUpload APIScope = "files:upload"

// SupportedScopes is the full set of scopes a key may carry.
var SupportedScopes = map[APIScope]bool{
	ScopeFilesUpload: true,
}

// APIKey stores only the SHA-256 hash of the secret plus a masked preview for
// display. The plaintext exists exactly once, in the response to the creation
// call. Revocation is a soft delete so the record stays around for audit.
type APIKey struct {
	gorm.Model
	Name        string     `gorm:"size:100;not null" json:"name"`
	HashedKey   string     `gorm:"uniqueIndex;size:191" json:"-"`
	KeyPreview  string     `gorm:"size:20" json:"key_preview"`
	Scopes      string     `gorm:"not null" json:"scopes"` // comma separated
	ExpiresAt   *time.Time `json:"expires_at"`
	Revoked     bool       `gorm:"not null;default:false" json:"revoked"`
	BoundUserID uint       `gorm:"index;not null" json:"bound_user_id"`
	BoundUser   User       `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedByID uint       `json:"created_by_id"`
	LastUsedAt  *time.Time `json:"last_used_at"`
}

const apiKeyPrefix = "ch_"

// NewRawAPIKey generates the plaintext secret returned once to the caller.
func NewRawAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand api key: %w", err)
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}

// HashAPIKey derives the stored lookup value from a plaintext key.
func HashAPIKey(raw string) string {
	digest := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(digest[:])
}

// MaskKey returns the short display fragment kept alongside the hash.
func MaskKey(raw string) string {
	if raw == "" {
		return ""
	}
	if len(raw) <= 8 {
		return "****"
	}
	return raw[:4] + "..." + raw[len(raw)-4:]
}

// Expired checks the wall clock against the optional expiry.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}

func (k *APIKey) HasScope(scope APIScope) bool {
	if scope == "" {
		return true
	}
	for _, s := range k.ScopeList() {
		if APIScope(s) == scope {
			return true
		}
	}
	return false
}

func (k *APIKey) ScopeList() []string {
	if k.Scopes == "" {
		return []string{}
	}
	parts := strings.Split(k.Scopes, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
