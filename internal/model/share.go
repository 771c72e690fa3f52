package model

import (
	"time"

	"gorm.io/gorm"
)

// ShareStatus is derived from a share record on read. A share that is
// unusable (expired, exhausted, revoked) still exists until a cleanup sweep
// removes it, so "unusable" and "absent" stay distinct states.
type ShareStatus string

const (
	ShareActive    ShareStatus = "active"
	ShareExpired   ShareStatus = "expired"
	ShareExhausted ShareStatus = "exhausted"
	ShareRevoked   ShareStatus = "revoked"
)

// Share is a per-file capability token with an attached access policy.
type Share struct {
	gorm.Model
	Token         string     `gorm:"uniqueIndex;size:191;not null" json:"token"`
	FileID        uint       `gorm:"index;not null" json:"file_id"`
	File          File       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatorID     uint       `json:"creator_id"`
	RequireLogin  bool       `gorm:"not null;default:false" json:"require_login"`
	AllowUsername string     `gorm:"size:64" json:"allow_username"`
	MaxViews      *uint      `json:"max_views"`
	ViewCount     uint       `gorm:"not null;default:0" json:"view_count"`
	Revoked       bool       `gorm:"not null;default:false" json:"revoked"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
}

func (s *Share) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Share) Exhausted() bool {
	return s.MaxViews != nil && s.ViewCount >= *s.MaxViews
}

// Status derives the soft lifecycle state of the record at a point in time.
// Revocation wins over expiry which wins over exhaustion, mirroring the
// order redemption checks them in.
func (s *Share) Status(now time.Time) ShareStatus {
	switch {
	case s.Revoked:
		return ShareRevoked
	case s.Expired(now):
		return ShareExpired
	case s.Exhausted():
		return ShareExhausted
	default:
		return ShareActive
	}
}

// RemainingViews returns how many redemptions are left, or nil when the
// share has no view quota.
func (s *Share) RemainingViews() *uint {
	if s.MaxViews == nil {
		return nil
	}
	if s.ViewCount >= *s.MaxViews {
		zero := uint(0)
		return &zero
	}
	remain := *s.MaxViews - s.ViewCount
	return &remain
}
