package access

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HaiTang-8/content-hub/internal/apikey"
	"github.com/HaiTang-8/content-hub/internal/auth"
	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/share"
	"github.com/HaiTang-8/content-hub/internal/storage"
	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/HaiTang-8/content-hub/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	facade   *Facade
	sessions *auth.Sessions
	keys     *apikey.Manager
	shares   *share.Engine
	user     *model.User
	file     *model.File
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.APIKey{},
		&model.File{},
		&model.Share{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	st := store.New(db)
	argon := security.New()
	ctx := context.Background()

	hash, err := argon.Hash("Sup3rSecret!")
	require.NoError(t, err)
	user := &model.User{Username: "dave", PasswordHash: hash, Role: model.RoleUser}
	require.NoError(t, st.CreateUser(ctx, user))

	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	file := &model.File{OwnerID: user.ID, Filename: "notes.txt", StorageKey: "blob-1", Size: 5}
	require.NoError(t, st.CreateFile(ctx, file))
	require.NoError(t, blobs.Put(ctx, file.StorageKey, strings.NewReader("hello"), 5, "text/plain"))

	sessions := auth.NewSessions(st, argon, time.Hour)
	keys := apikey.NewManager(st)
	shares := share.NewEngine(st, blobs, share.Config{})

	return &fixture{
		facade:   New(sessions, keys, shares),
		sessions: sessions,
		keys:     keys,
		shares:   shares,
		user:     user,
		file:     file,
	}
}

func TestAuthorize_NoCredential(t *testing.T) {
	f := setup(t)

	_, err := f.facade.Authorize(context.Background(), Credentials{})
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestAuthorize_Session(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sess, _, err := f.sessions.Authenticate(ctx, "dave", "Sup3rSecret!")
	require.NoError(t, err)

	d, err := f.facade.Authorize(ctx, Credentials{SessionToken: sess.Token})
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, d.User.ID)
	assert.Nil(t, d.Grant)

	_, err = f.facade.Authorize(ctx, Credentials{SessionToken: "bogus"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthorize_APIKey(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, plain, err := f.keys.Issue(ctx, "ci-bot", f.user.ID, f.user.ID, []string{"files:upload"}, nil)
	require.NoError(t, err)

	d, err := f.facade.Authorize(ctx, Credentials{APIKey: plain, Scope: model.ScopeFilesUpload})
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, d.User.ID)
	assert.Equal(t, []string{"files:upload"}, d.Scopes)

	_, err = f.facade.Authorize(ctx, Credentials{APIKey: plain, Scope: model.APIScope("admin:users")})
	assert.ErrorIs(t, err, apikey.ErrForbiddenScope)
}

func TestAuthorize_ShareAnonymous(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	requireLogin := false
	s, err := f.shares.Create(ctx, f.file.ID, f.user, share.Policy{RequireLogin: &requireLogin})
	require.NoError(t, err)

	d, err := f.facade.Authorize(ctx, Credentials{ShareToken: s.Token})
	require.NoError(t, err)
	assert.Nil(t, d.User)
	require.NotNil(t, d.Grant)
	assert.Equal(t, f.file.ID, d.Grant.File.ID)
}

func TestAuthorize_ShareWithSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sess, _, err := f.sessions.Authenticate(ctx, "dave", "Sup3rSecret!")
	require.NoError(t, err)

	s, err := f.shares.Create(ctx, f.file.ID, f.user, share.Policy{})
	require.NoError(t, err)

	// The share requires login, so anonymous redemption is refused
	_, err = f.facade.Authorize(ctx, Credentials{ShareToken: s.Token})
	assert.ErrorIs(t, err, share.ErrLoginRequired)

	d, err := f.facade.Authorize(ctx, Credentials{ShareToken: s.Token, SessionToken: sess.Token})
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, d.User.ID)
	require.NotNil(t, d.Grant)

	// A dead session fails the whole request even with a valid share token
	require.NoError(t, f.sessions.Invalidate(ctx, sess.Token))
	_, err = f.facade.Authorize(ctx, Credentials{ShareToken: s.Token, SessionToken: sess.Token})
	assert.ErrorIs(t, err, auth.ErrRevoked)
}

func TestAuthorize_SharePeekSkipsQuota(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	requireLogin := false
	maxViews := uint(1)
	s, err := f.shares.Create(ctx, f.file.ID, f.user, share.Policy{
		RequireLogin: &requireLogin,
		MaxViews:     &maxViews,
	})
	require.NoError(t, err)

	for range 3 {
		d, err := f.facade.Authorize(ctx, Credentials{ShareToken: s.Token, Peek: true})
		require.NoError(t, err)
		require.NotNil(t, d.Grant.RemainingViews)
		assert.EqualValues(t, 1, *d.Grant.RemainingViews)
	}
}

func TestAuthorize_ShareTokenWinsOverOtherCredentials(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	requireLogin := false
	s, err := f.shares.Create(ctx, f.file.ID, f.user, share.Policy{RequireLogin: &requireLogin})
	require.NoError(t, err)

	_, plain, err := f.keys.Issue(ctx, "ci-bot", f.user.ID, f.user.ID, []string{"files:upload"}, nil)
	require.NoError(t, err)

	d, err := f.facade.Authorize(ctx, Credentials{ShareToken: s.Token, APIKey: plain})
	require.NoError(t, err)
	require.NotNil(t, d.Grant)
	assert.Empty(t, d.Scopes)
}
