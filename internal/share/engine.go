// Package share implements per-file share links: capability tokens carrying
// an access policy (login requirement, single allowed recipient, view quota,
// absolute expiry). Redemption is safe under concurrency; the view-count
// increment happens as one conditional update in the store.
package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/storage"
	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/google/uuid"
)

var (
	// ErrNotFound covers unknown and revoked tokens alike; a revoked link
	// is indistinguishable from one that never existed.
	ErrNotFound       = errors.New("share not found")
	ErrExpired        = errors.New("share expired")
	ErrLoginRequired  = errors.New("share requires login")
	ErrForbidden      = errors.New("share restricted to another user")
	ErrQuotaExhausted = errors.New("share view quota exhausted")
	// ErrBadPolicy rejects malformed policies at creation time, never at
	// redemption time.
	ErrBadPolicy = errors.New("invalid share policy")
)

// Policy is the caller-supplied part of a new share.
type Policy struct {
	RequireLogin  *bool
	AllowUsername string
	MaxViews      *uint
	ExpiresInDays *int
}

// Grant is a successful redemption: a handle into the file store plus the
// quota state after this view was counted.
type Grant struct {
	Share          *model.Share
	File           *model.File
	RemainingViews *uint
}

// Config bounds the policies the engine accepts. MaxExpiryDays exists
// because callers can ask for arbitrary durations; it is an explicit
// constant, not a hidden limit.
type Config struct {
	DefaultExpiryDays int
	MaxExpiryDays     int
	MaxViewsLimit     uint
}

type Engine struct {
	store *store.Store
	blobs storage.Store
	cfg   Config
}

func NewEngine(st *store.Store, blobs storage.Store, cfg Config) *Engine {
	if cfg.DefaultExpiryDays <= 0 {
		cfg.DefaultExpiryDays = 7
	}
	if cfg.MaxExpiryDays <= 0 {
		cfg.MaxExpiryDays = 30
	}
	if cfg.MaxViewsLimit == 0 {
		cfg.MaxViewsLimit = 1000
	}
	return &Engine{store: st, blobs: blobs, cfg: cfg}
}

// Create issues a share token for fileID. Only the file's owner or an admin
// may share it. Policy normalization happens here: the expiry defaults to
// DefaultExpiryDays and is capped at MaxExpiryDays, and restricting the
// recipient forces the login requirement since an anonymous requester has no
// username to match.
func (e *Engine) Create(ctx context.Context, fileID uint, creator *model.User, p Policy) (*model.Share, error) {
	file, err := e.store.FileByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load file: %w", err)
	}
	if !creator.IsAdmin() && file.OwnerID != creator.ID {
		return nil, ErrForbidden
	}

	requireLogin := true
	if p.RequireLogin != nil {
		requireLogin = *p.RequireLogin
	}

	allowUsername := strings.TrimSpace(p.AllowUsername)
	if allowUsername != "" {
		if _, err := e.store.UserByUsername(ctx, allowUsername); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: recipient %q does not exist", ErrBadPolicy, allowUsername)
			}
			return nil, fmt.Errorf("load recipient: %w", err)
		}
		requireLogin = true
	}

	var maxViews *uint
	if p.MaxViews != nil {
		if *p.MaxViews == 0 || *p.MaxViews > e.cfg.MaxViewsLimit {
			return nil, fmt.Errorf("%w: max_views must be 1-%d", ErrBadPolicy, e.cfg.MaxViewsLimit)
		}
		v := *p.MaxViews
		maxViews = &v
	}

	days := e.cfg.DefaultExpiryDays
	if p.ExpiresInDays != nil {
		if *p.ExpiresInDays <= 0 {
			return nil, fmt.Errorf("%w: expires_in_days must be greater than zero", ErrBadPolicy)
		}
		days = min(*p.ExpiresInDays, e.cfg.MaxExpiryDays)
	}

	record := &model.Share{
		Token:         uuid.NewString(),
		FileID:        file.ID,
		CreatorID:     creator.ID,
		RequireLogin:  requireLogin,
		AllowUsername: allowUsername,
		MaxViews:      maxViews,
		ExpiresAt:     time.Now().Add(time.Duration(days) * 24 * time.Hour),
	}
	if err := e.store.CreateShare(ctx, record); err != nil {
		return nil, fmt.Errorf("persist share: %w", err)
	}
	record.File = *file

	return record, nil
}

// Peek runs every policy check except the quota consumption, for metadata
// endpoints that must not burn a view.
func (e *Engine) Peek(ctx context.Context, token string, requester *model.User) (*Grant, error) {
	record, err := e.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := e.checkPolicy(record, requester, time.Now()); err != nil {
		return nil, err
	}
	if record.Exhausted() {
		return nil, ErrQuotaExhausted
	}
	return &Grant{Share: record, File: &record.File, RemainingViews: record.RemainingViews()}, nil
}

// Resolve redeems the token. Checks run in a fixed order, short-circuiting
// on the first failure: existence/revocation, expiry, login requirement,
// recipient restriction, then quota. The quota check and increment are one
// atomic store operation, so N racing redemptions of a k-view share produce
// exactly min(N, k) grants, and a racing revoke can never be outrun.
func (e *Engine) Resolve(ctx context.Context, token string, requester *model.User) (*Grant, error) {
	record, err := e.load(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := e.checkPolicy(record, requester, now); err != nil {
		return nil, err
	}

	if err := e.store.ConsumeShareView(ctx, record.ID, now); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// The guard failed under our feet; re-read to name the reason.
			return nil, e.denialFor(ctx, token, now)
		}
		return nil, fmt.Errorf("consume view: %w", err)
	}
	record.ViewCount++

	return &Grant{Share: record, File: &record.File, RemainingViews: record.RemainingViews()}, nil
}

// Revoke makes the share permanently unusable. The record itself survives
// until a cleanup sweep removes it. Idempotent.
func (e *Engine) Revoke(ctx context.Context, token string) error {
	return e.store.RevokeShare(ctx, token)
}

// List returns every non-deleted share record for admin display.
func (e *Engine) List(ctx context.Context) ([]model.Share, error) {
	return e.store.ListShares(ctx)
}

func (e *Engine) load(ctx context.Context, token string) (*model.Share, error) {
	record, err := e.store.ShareByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load share: %w", err)
	}
	if record.Revoked {
		return nil, ErrNotFound
	}
	return record, nil
}

func (e *Engine) checkPolicy(record *model.Share, requester *model.User, now time.Time) error {
	if record.Expired(now) {
		return ErrExpired
	}
	if record.RequireLogin && requester == nil {
		return ErrLoginRequired
	}
	if record.AllowUsername != "" {
		if requester == nil {
			return ErrLoginRequired
		}
		if requester.Username != record.AllowUsername {
			return ErrForbidden
		}
	}
	return nil
}

// denialFor maps a failed conditional increment back onto the share error
// that caused it.
func (e *Engine) denialFor(ctx context.Context, token string, now time.Time) error {
	record, err := e.store.ShareByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("reload share: %w", err)
	}
	switch record.Status(now) {
	case model.ShareRevoked:
		return ErrNotFound
	case model.ShareExpired:
		return ErrExpired
	case model.ShareExhausted:
		return ErrQuotaExhausted
	default:
		// Guard failed but the record looks fine now; only expiry racing
		// the clock edge can do that.
		return ErrExpired
	}
}
