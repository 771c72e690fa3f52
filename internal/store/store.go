// Package store wraps the database behind the small set of primitives the
// credential managers need. All mutation of shared records goes through here
// so the database row, not process memory, is the serialization point.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the record does not exist (or was already deleted).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict means a conditional update found its guard no longer true.
	ErrConflict = errors.New("conditional update conflict")
	// ErrUnavailable covers infrastructure failures. Callers can retry these,
	// unlike policy denials which are final for the given input.
	ErrUnavailable = errors.New("store unavailable")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ctx(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// wrap maps driver errors onto the store's taxonomy so callers can tell
// "request is invalid" apart from "retry later".
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
