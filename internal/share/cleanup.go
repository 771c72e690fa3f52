package share

import (
	"context"
	"fmt"
	"time"
)

// CleanupCriteria selects which share records a sweep removes. Criteria are
// ORed: matching any selected one deletes the record once.
type CleanupCriteria struct {
	RemoveExpired     bool `json:"remove_expired"`
	RemoveMissingFile bool `json:"remove_missing_file"`
	RemoveExhausted   bool `json:"remove_exhausted"`
}

// CleanupResult counts matches per criterion. A record that is both expired
// and exhausted bumps both counters but is only deleted once, so the counts
// may sum to more than Deleted.
type CleanupResult struct {
	Deleted          int `json:"deleted"`
	ExpiredCount     int `json:"expired_count"`
	MissingFileCount int `json:"missing_file_count"`
	ExhaustedCount   int `json:"exhausted_count"`
}

// Cleanup hard-deletes share records matching the criteria. Deleting a share
// never touches the underlying file or its blob.
func (e *Engine) Cleanup(ctx context.Context, c CleanupCriteria) (CleanupResult, error) {
	var res CleanupResult

	shares, err := e.store.ListShares(ctx)
	if err != nil {
		return res, fmt.Errorf("list shares: %w", err)
	}

	now := time.Now()
	var toDelete []uint

	for i := range shares {
		s := &shares[i]
		matched := false

		if c.RemoveExpired && s.Expired(now) {
			res.ExpiredCount++
			matched = true
		}
		if c.RemoveMissingFile {
			missing := s.File.ID == 0
			if !missing {
				present, err := e.blobs.Exists(ctx, s.File.StorageKey)
				if err != nil {
					return CleanupResult{}, fmt.Errorf("check blob %q: %w", s.File.StorageKey, err)
				}
				missing = !present
			}
			if missing {
				res.MissingFileCount++
				matched = true
			}
		}
		if c.RemoveExhausted && s.Exhausted() {
			res.ExhaustedCount++
			matched = true
		}

		if matched {
			toDelete = append(toDelete, s.ID)
		}
	}

	if err := e.store.DeleteShares(ctx, toDelete); err != nil {
		return CleanupResult{}, fmt.Errorf("delete shares: %w", err)
	}
	res.Deleted = len(toDelete)

	return res, nil
}
