package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/florianilch/seedrbot/internal/seedr"
	"github.com/florianilch/seedrbot/internal/tokenstore"
)

// DefaultSessionTTL is how long a user has to approve the device before the
// session lapses. Expiry is evaluated lazily at the next poll action.
const DefaultSessionTTL = 5 * time.Minute

var (
	// ErrNoSession reports a poll or cancel for a user with no registered
	// session. The user should start the flow over.
	ErrNoSession = errors.New("no active authorization session")

	// ErrSessionExpired reports that the session lapsed before approval.
	// The session is removed; the user should restart the flow.
	ErrSessionExpired = errors.New("authorization session expired")
)

// Status is the outcome of one poll action.
type Status int

const (
	// StatusPending means the user has not approved the device yet; the
	// session stays registered.
	StatusPending Status = iota

	// StatusLinked means the token was obtained and written through to the
	// credential store; the session is gone.
	StatusLinked
)

// Provider is the slice of the Seedr client the flow needs.
type Provider interface {
	RequestDeviceCode(ctx context.Context) (*seedr.DeviceCode, error)
	Authorize(ctx context.Context, deviceCode string) (*seedr.Token, error)
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithSessionTTL overrides the session lifetime.
func WithSessionTTL(ttl time.Duration) FlowOption {
	return func(f *Flow) {
		f.sessionTTL = ttl
	}
}

// withClock overrides the clock, for tests.
func withClock(now func() time.Time) FlowOption {
	return func(f *Flow) {
		f.now = now
	}
}

// Flow is the device-authorization state machine. It owns no goroutines:
// every transition happens inside a caller's single action.
type Flow struct {
	provider Provider
	store    tokenstore.Store
	sessions *Registry

	sessionTTL time.Duration
	now        func() time.Time
}

// New creates a Flow. The registry is borrowed, not owned: its lifecycle
// belongs to the caller.
func New(provider Provider, store tokenstore.Store, sessions *Registry, opts ...FlowOption) (*Flow, error) {
	if provider == nil {
		return nil, fmt.Errorf("missing provider")
	}
	if store == nil {
		return nil, fmt.Errorf("missing token store")
	}
	if sessions == nil {
		return nil, fmt.Errorf("missing session registry")
	}

	f := &Flow{
		provider:   provider,
		store:      store,
		sessions:   sessions,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Begin starts (or restarts) the flow for a user: one device-code request,
// then a session registered with a fresh expiry. Any previous session for
// the user is discarded. On provider failure the user keeps no session.
func (f *Flow) Begin(ctx context.Context, userID int64) (*Session, error) {
	code, err := f.provider.RequestDeviceCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("requesting device code: %w", err)
	}

	session := &Session{
		UserID:     userID,
		DeviceCode: code.DeviceCode,
		UserCode:   code.UserCode,
		ExpiresAt:  f.now().Add(f.sessionTTL),
	}
	f.sessions.Insert(session)

	slog.InfoContext(ctx, "authorization session started", "user_id", userID)
	return session, nil
}

// Poll performs one authorize-check for the user's session.
//
// Expiry wins over everything: a lapsed session is removed and reported
// expired without contacting the provider. A pending answer keeps the
// session. Success writes the token through the credential store and
// removes the session; if the write fails the session is kept so the user
// can poll again. Any other provider error removes the session and is
// returned verbatim.
func (f *Flow) Poll(ctx context.Context, userID int64) (Status, error) {
	session := f.sessions.Get(userID)
	if session == nil {
		return StatusPending, ErrNoSession
	}

	if f.now().After(session.ExpiresAt) {
		f.sessions.Remove(userID)
		slog.InfoContext(ctx, "authorization session expired", "user_id", userID)
		return StatusPending, ErrSessionExpired
	}

	token, err := f.provider.Authorize(ctx, session.DeviceCode)
	if err != nil {
		if errors.Is(err, seedr.ErrAuthorizationPending) {
			return StatusPending, nil
		}
		f.sessions.Remove(userID)
		slog.WarnContext(ctx, "authorization failed", "user_id", userID, "error", err)
		return StatusPending, err
	}

	if err := f.store.Put(ctx, userID, token.AccessToken); err != nil {
		// Session kept: the approval already happened, a later poll can
		// retry the write.
		return StatusPending, fmt.Errorf("storing token: %w", err)
	}

	f.sessions.Remove(userID)
	slog.InfoContext(ctx, "account linked", "user_id", userID)
	return StatusLinked, nil
}

// Cancel removes the user's session unconditionally and reports whether one
// existed.
func (f *Flow) Cancel(ctx context.Context, userID int64) bool {
	removed := f.sessions.Remove(userID)
	if removed {
		slog.InfoContext(ctx, "authorization session cancelled", "user_id", userID)
	}
	return removed
}
