// Package access is the single entry point the transport layer uses to turn
// a bearer credential into an authorization decision. It owns no policy;
// everything is delegated to the session, api key and share managers.
package access

import (
	"context"
	"errors"

	"github.com/HaiTang-8/content-hub/internal/apikey"
	"github.com/HaiTang-8/content-hub/internal/auth"
	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/share"
)

// ErrNoCredential means the request carried nothing to authorize with.
var ErrNoCredential = errors.New("no credential presented")

// Credentials is what the transport extracted from a request. Share tokens
// and session/API-key credentials are distinct usage patterns: a share token
// authorizes access to one specific file (optionally carrying a session to
// prove identity to the share policy), the other two authorize the general
// API surface.
type Credentials struct {
	SessionToken string
	APIKey       string
	Scope        model.APIScope // scope required of an API key
	ShareToken   string
	Peek         bool // share only: run checks without consuming quota
}

// Decision is an allow verdict. User is nil for anonymous share access;
// Grant is non-nil exactly when a share token was redeemed.
type Decision struct {
	User   *model.User
	Scopes []string
	Grant  *share.Grant
}

type Facade struct {
	sessions *auth.Sessions
	keys     *apikey.Manager
	shares   *share.Engine
}

func New(sessions *auth.Sessions, keys *apikey.Manager, shares *share.Engine) *Facade {
	return &Facade{sessions: sessions, keys: keys, shares: shares}
}

// Authorize dispatches on the credential kind and returns either a Decision
// or the typed denial from the responsible manager. Deny reasons pass
// through unchanged so the transport can map them to distinct statuses.
func (f *Facade) Authorize(ctx context.Context, c Credentials) (*Decision, error) {
	if c.ShareToken != "" {
		var requester *model.User
		if c.SessionToken != "" {
			u, err := f.sessions.Validate(ctx, c.SessionToken)
			if err != nil {
				return nil, err
			}
			requester = u
		}

		resolve := f.shares.Resolve
		if c.Peek {
			resolve = f.shares.Peek
		}
		grant, err := resolve(ctx, c.ShareToken, requester)
		if err != nil {
			return nil, err
		}
		return &Decision{User: requester, Grant: grant}, nil
	}

	if c.APIKey != "" {
		key, err := f.keys.Validate(ctx, c.APIKey, c.Scope)
		if err != nil {
			return nil, err
		}
		user := key.BoundUser
		return &Decision{User: &user, Scopes: key.ScopeList()}, nil
	}

	if c.SessionToken != "" {
		user, err := f.sessions.Validate(ctx, c.SessionToken)
		if err != nil {
			return nil, err
		}
		return &Decision{User: user}, nil
	}

	return nil, ErrNoCredential
}
