package share

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/storage"
	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	engine *Engine
	store  *store.Store
	blobs  storage.Store
	owner  *model.User
	admin  *model.User
	file   *model.File
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.File{}, &model.Share{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	st := store.New(db)
	ctx := context.Background()

	owner := &model.User{Username: "olivia", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, st.CreateUser(ctx, owner))
	admin := &model.User{Username: "root", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, st.CreateUser(ctx, admin))

	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	file := &model.File{OwnerID: owner.ID, Filename: "report.pdf", StorageKey: "blob-1", Size: 5}
	require.NoError(t, st.CreateFile(ctx, file))
	require.NoError(t, blobs.Put(ctx, file.StorageKey, strings.NewReader("hello"), 5, "application/pdf"))

	return &fixture{
		engine: NewEngine(st, blobs, Config{DefaultExpiryDays: 7, MaxExpiryDays: 30, MaxViewsLimit: 1000}),
		store:  st,
		blobs:  blobs,
		owner:  owner,
		admin:  admin,
		file:   file,
	}
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestCreate_Defaults(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{})
	require.NoError(t, err)

	assert.NotEmpty(t, s.Token)
	assert.True(t, s.RequireLogin)
	assert.Nil(t, s.MaxViews)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), s.ExpiresAt, time.Minute)
}

func TestCreate_ExpiryClampedToMax(t *testing.T) {
	f := setup(t)

	s, err := f.engine.Create(context.Background(), f.file.ID, f.owner, Policy{ExpiresInDays: intPtr(365)})
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), s.ExpiresAt, time.Minute)
}

func TestCreate_RecipientForcesLogin(t *testing.T) {
	f := setup(t)

	s, err := f.engine.Create(context.Background(), f.file.ID, f.owner, Policy{
		RequireLogin:  boolPtr(false),
		AllowUsername: "root",
	})
	require.NoError(t, err)

	assert.True(t, s.RequireLogin)
	assert.Equal(t, "root", s.AllowUsername)
}

func TestCreate_BadPolicy(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{MaxViews: uintPtr(0)})
	assert.ErrorIs(t, err, ErrBadPolicy)

	_, err = f.engine.Create(ctx, f.file.ID, f.owner, Policy{MaxViews: uintPtr(5000)})
	assert.ErrorIs(t, err, ErrBadPolicy)

	_, err = f.engine.Create(ctx, f.file.ID, f.owner, Policy{ExpiresInDays: intPtr(-1)})
	assert.ErrorIs(t, err, ErrBadPolicy)

	_, err = f.engine.Create(ctx, f.file.ID, f.owner, Policy{AllowUsername: "nobody"})
	assert.ErrorIs(t, err, ErrBadPolicy)
}

func TestCreate_OnlyOwnerOrAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	stranger := &model.User{Username: "mallory", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, f.store.CreateUser(ctx, stranger))

	_, err := f.engine.Create(ctx, f.file.ID, stranger, Policy{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.engine.Create(ctx, f.file.ID, f.admin, Policy{})
	assert.NoError(t, err)

	_, err = f.engine.Create(ctx, 999, f.owner, Policy{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_CountsViews(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{
		RequireLogin: boolPtr(false),
		MaxViews:     uintPtr(2),
	})
	require.NoError(t, err)

	g, err := f.engine.Resolve(ctx, s.Token, nil)
	require.NoError(t, err)
	assert.Equal(t, f.file.ID, g.File.ID)
	require.NotNil(t, g.RemainingViews)
	assert.EqualValues(t, 1, *g.RemainingViews)

	g, err = f.engine.Resolve(ctx, s.Token, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, *g.RemainingViews)

	_, err = f.engine.Resolve(ctx, s.Token, nil)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestResolve_UnlimitedViews(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{RequireLogin: boolPtr(false)})
	require.NoError(t, err)

	for range 5 {
		g, err := f.engine.Resolve(ctx, s.Token, nil)
		require.NoError(t, err)
		assert.Nil(t, g.RemainingViews)
	}
}

func TestResolve_QuotaAtomicUnderConcurrency(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	const quota = 5
	const racers = 16

	s, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{
		RequireLogin: boolPtr(false),
		MaxViews:     uintPtr(quota),
	})
	require.NoError(t, err)

	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Resolve(ctx, s.Token, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	granted, denied := 0, 0
	for err := range errs {
		if err == nil {
			granted++
			continue
		}
		require.ErrorIs(t, err, ErrQuotaExhausted)
		denied++
	}

	assert.Equal(t, quota, granted)
	assert.Equal(t, racers-quota, denied)

	record, err := f.store.ShareByToken(ctx, s.Token)
	require.NoError(t, err)
	assert.EqualValues(t, quota, record.ViewCount)
}

func TestResolve_LoginPolicy(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{})
	require.NoError(t, err)

	_, err = f.engine.Resolve(ctx, s.Token, nil)
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = f.engine.Resolve(ctx, s.Token, f.admin)
	assert.NoError(t, err)
}

func TestResolve_RecipientRestriction(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{AllowUsername: "root"})
	require.NoError(t, err)

	_, err = f.engine.Resolve(ctx, s.Token, nil)
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = f.engine.Resolve(ctx, s.Token, f.owner)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.engine.Resolve(ctx, s.Token, f.admin)
	assert.NoError(t, err)
}

func TestResolve_Expired(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.store.CreateShare(ctx, &model.Share{
		Token:     "stale",
		FileID:    f.file.ID,
		CreatorID: f.owner.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err := f.engine.Resolve(ctx, "stale", nil)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestResolve_UnknownToken(t *testing.T) {
	f := setup(t)

	_, err := f.engine.Resolve(context.Background(), "no-such-token", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevoke_TakesEffectImmediately(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{RequireLogin: boolPtr(false)})
	require.NoError(t, err)

	_, err = f.engine.Resolve(ctx, s.Token, nil)
	require.NoError(t, err)

	require.NoError(t, f.engine.Revoke(ctx, s.Token))

	// A revoked link looks like it never existed
	_, err = f.engine.Resolve(ctx, s.Token, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	record, err := f.store.ShareByToken(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, model.ShareRevoked, record.Status(time.Now()))
}

func TestPeek_NeverBurnsQuota(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{
		RequireLogin: boolPtr(false),
		MaxViews:     uintPtr(1),
	})
	require.NoError(t, err)

	for range 3 {
		g, err := f.engine.Peek(ctx, s.Token, nil)
		require.NoError(t, err)
		require.NotNil(t, g.RemainingViews)
		assert.EqualValues(t, 1, *g.RemainingViews)
	}

	_, err = f.engine.Resolve(ctx, s.Token, nil)
	require.NoError(t, err)

	_, err = f.engine.Peek(ctx, s.Token, nil)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestShare_LoginGatedTwoViewLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{
		RequireLogin:  boolPtr(true),
		MaxViews:      uintPtr(2),
		ExpiresInDays: intPtr(1),
	})
	require.NoError(t, err)

	_, err = f.engine.Resolve(ctx, s.Token, nil)
	assert.ErrorIs(t, err, ErrLoginRequired)

	for range 2 {
		_, err = f.engine.Resolve(ctx, s.Token, f.owner)
		require.NoError(t, err)
	}

	record, err := f.store.ShareByToken(ctx, s.Token)
	require.NoError(t, err)
	assert.EqualValues(t, 2, record.ViewCount)

	_, err = f.engine.Resolve(ctx, s.Token, f.owner)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

// A share restricted to one recipient with a two-view quota, walked through
// its whole lifecycle.
func TestShare_RestrictedRecipientLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s, err := f.engine.Create(ctx, f.file.ID, f.owner, Policy{
		AllowUsername: "root",
		MaxViews:      uintPtr(2),
	})
	require.NoError(t, err)

	g, err := f.engine.Resolve(ctx, s.Token, f.admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, *g.RemainingViews)

	_, err = f.engine.Resolve(ctx, s.Token, f.owner)
	assert.ErrorIs(t, err, ErrForbidden)

	g, err = f.engine.Resolve(ctx, s.Token, f.admin)
	require.NoError(t, err)
	assert.EqualValues(t, 0, *g.RemainingViews)

	_, err = f.engine.Resolve(ctx, s.Token, f.admin)
	assert.ErrorIs(t, err, ErrQuotaExhausted)

	record, err := f.store.ShareByToken(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, model.ShareExhausted, record.Status(time.Now()))
}
