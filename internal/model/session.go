package model

import "time"

// Session is a server-side login credential. The token is an opaque random
// value handed to the client once at login. Where the client caches it is its
// own business, the absolute expiry below is enforced regardless.
type Session struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Token     string    `gorm:"uniqueIndex;size:191;not null" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// Alive reports whether the session can still authenticate requests.
func (s *Session) Alive(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
