package apikey

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setup(t *testing.T) (*Manager, *store.Store, *model.User) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.APIKey{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	st := store.New(db)
	user := &model.User{Username: "uploader", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, st.CreateUser(context.Background(), user))

	return NewManager(st), st, user
}

func TestIssue_ReturnsPlaintextOnce(t *testing.T) {
	m, _, user := setup(t)
	ctx := context.Background()

	key, plain, err := m.Issue(ctx, "ci-bot", user.ID, user.ID, []string{"files:upload"}, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(plain, "ch_"))
	assert.Equal(t, model.HashAPIKey(plain), key.HashedKey)
	assert.Equal(t, plain[:4]+"..."+plain[len(plain)-4:], key.KeyPreview)
	assert.Nil(t, key.ExpiresAt)

	// The stored records never carry the secret
	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotContains(t, list[0].HashedKey, plain)
	assert.NotEqual(t, plain, list[0].KeyPreview)
}

func TestIssue_RejectsBadInput(t *testing.T) {
	m, _, user := setup(t)
	ctx := context.Background()

	_, _, err := m.Issue(ctx, "k", user.ID, user.ID, nil, nil)
	assert.ErrorIs(t, err, ErrBadScopes)

	_, _, err = m.Issue(ctx, "k", user.ID, user.ID, []string{"files:nuke"}, nil)
	assert.ErrorIs(t, err, ErrBadScopes)

	days := 0
	_, _, err = m.Issue(ctx, "k", user.ID, user.ID, []string{"files:upload"}, &days)
	assert.ErrorIs(t, err, ErrBadExpiry)
}

func TestValidate_ResolvesBoundUser(t *testing.T) {
	m, _, user := setup(t)
	ctx := context.Background()

	_, plain, err := m.Issue(ctx, "ci-bot", user.ID, user.ID, []string{"files:upload"}, nil)
	require.NoError(t, err)

	key, err := m.Validate(ctx, plain, model.ScopeFilesUpload)
	require.NoError(t, err)
	assert.Equal(t, user.ID, key.BoundUser.ID)
	assert.Equal(t, []string{"files:upload"}, key.ScopeList())
	assert.NotNil(t, key.LastUsedAt)
}

func TestValidate_UnknownAndEmptyKey(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()

	_, err := m.Validate(ctx, "ch_0000000000000000", model.ScopeFilesUpload)
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = m.Validate(ctx, "   ", model.ScopeFilesUpload)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestValidate_MissingScope(t *testing.T) {
	m, _, user := setup(t)
	ctx := context.Background()

	_, plain, err := m.Issue(ctx, "ci-bot", user.ID, user.ID, []string{"files:upload"}, nil)
	require.NoError(t, err)

	_, err = m.Validate(ctx, plain, model.APIScope("admin:users"))
	assert.ErrorIs(t, err, ErrForbiddenScope)

	// No required scope means any live key passes
	_, err = m.Validate(ctx, plain, "")
	assert.NoError(t, err)
}

func TestValidate_RevokedImmediately(t *testing.T) {
	m, _, user := setup(t)
	ctx := context.Background()

	key, plain, err := m.Issue(ctx, "ci-bot", user.ID, user.ID, []string{"files:upload"}, nil)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, key.ID))

	_, err = m.Validate(ctx, plain, model.ScopeFilesUpload)
	assert.ErrorIs(t, err, ErrRevoked)

	// Idempotent
	assert.NoError(t, m.Revoke(ctx, key.ID))
}

func TestValidate_Expired(t *testing.T) {
	m, st, user := setup(t)
	ctx := context.Background()

	plain, err := model.NewRawAPIKey()
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, st.CreateAPIKey(ctx, &model.APIKey{
		Name:        "stale",
		HashedKey:   model.HashAPIKey(plain),
		KeyPreview:  model.MaskKey(plain),
		Scopes:      "files:upload",
		ExpiresAt:   &past,
		BoundUserID: user.ID,
		CreatedByID: user.ID,
	}))

	_, err = m.Validate(ctx, plain, model.ScopeFilesUpload)
	assert.ErrorIs(t, err, ErrExpired)
}
