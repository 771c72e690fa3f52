package share

import (
	"context"
	"testing"
	"time"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedShare(t *testing.T, f *fixture, token string, mutate func(*model.Share)) {
	t.Helper()

	s := &model.Share{
		Token:     token,
		FileID:    f.file.ID,
		CreatorID: f.owner.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if mutate != nil {
		mutate(s)
	}
	require.NoError(t, f.store.CreateShare(context.Background(), s))
}

func TestCleanup_RemovesExpired(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	seedShare(t, f, "live", nil)
	seedShare(t, f, "old", func(s *model.Share) {
		s.ExpiresAt = time.Now().Add(-time.Hour)
	})

	res, err := f.engine.Cleanup(ctx, CleanupCriteria{RemoveExpired: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.ExpiredCount)
	assert.Equal(t, 0, res.ExhaustedCount)

	remaining, err := f.engine.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "live", remaining[0].Token)
}

func TestCleanup_RemovesExhausted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	seedShare(t, f, "live", nil)
	seedShare(t, f, "used-up", func(s *model.Share) {
		s.MaxViews = uintPtr(3)
		s.ViewCount = 3
	})

	res, err := f.engine.Cleanup(ctx, CleanupCriteria{RemoveExhausted: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.ExhaustedCount)
}

func TestCleanup_RemovesMissingFile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	seedShare(t, f, "backed", nil)

	orphan := &model.File{OwnerID: f.owner.ID, Filename: "gone.bin", StorageKey: "blob-missing"}
	require.NoError(t, f.store.CreateFile(ctx, orphan))
	seedShare(t, f, "dangling", func(s *model.Share) {
		s.FileID = orphan.ID
	})

	res, err := f.engine.Cleanup(ctx, CleanupCriteria{RemoveMissingFile: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.MissingFileCount)

	remaining, err := f.engine.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "backed", remaining[0].Token)
}

func TestCleanup_CountsEveryMatchDeletesOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// Expired and exhausted at the same time
	seedShare(t, f, "doubly-dead", func(s *model.Share) {
		s.ExpiresAt = time.Now().Add(-time.Hour)
		s.MaxViews = uintPtr(1)
		s.ViewCount = 1
	})

	res, err := f.engine.Cleanup(ctx, CleanupCriteria{RemoveExpired: true, RemoveExhausted: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.ExpiredCount)
	assert.Equal(t, 1, res.ExhaustedCount)
}

func TestCleanup_NoCriteriaDeletesNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	seedShare(t, f, "old", func(s *model.Share) {
		s.ExpiresAt = time.Now().Add(-time.Hour)
	})

	res, err := f.engine.Cleanup(ctx, CleanupCriteria{})
	require.NoError(t, err)
	assert.Equal(t, CleanupResult{}, res)

	remaining, err := f.engine.List(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestCleanup_NeverTouchesTheFile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	seedShare(t, f, "old", func(s *model.Share) {
		s.ExpiresAt = time.Now().Add(-time.Hour)
	})

	_, err := f.engine.Cleanup(ctx, CleanupCriteria{RemoveExpired: true})
	require.NoError(t, err)

	_, err = f.store.FileByID(ctx, f.file.ID)
	assert.NoError(t, err)

	present, err := f.blobs.Exists(ctx, f.file.StorageKey)
	require.NoError(t, err)
	assert.True(t, present)
}
