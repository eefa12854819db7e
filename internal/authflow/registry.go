package authflow

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Session is one user's in-flight device-authorization attempt. Sessions
// are immutable once created; restarting the flow replaces the session
// rather than mutating it.
type Session struct {
	UserID     int64
	DeviceCode string
	UserCode   string
	ExpiresAt  time.Time
}

// Registry is the process-wide table of in-flight authorization sessions,
// keyed by user id. It is safe for concurrent use.
//
// Whether a session is still valid is decided by the flow from the
// session's own ExpiresAt at poll time. The registry's retention TTL is a
// separate, longer bound that garbage-collects sessions nobody polls again;
// it must exceed the session TTL so a freshly lapsed session still reports
// "expired" rather than "not found".
type Registry struct {
	cache *ttlcache.Cache[int64, *Session]
}

// NewRegistry creates a Registry whose entries are evicted after the given
// retention. The caller owns the Registry and must Close it at shutdown.
func NewRegistry(retention time.Duration) *Registry {
	cache := ttlcache.New(
		ttlcache.WithTTL[int64, *Session](retention),
		ttlcache.WithDisableTouchOnHit[int64, *Session](),
	)

	go cache.Start()

	return &Registry{cache: cache}
}

// Insert registers a session, replacing any existing session for the user.
func (r *Registry) Insert(session *Session) {
	r.cache.Set(session.UserID, session, ttlcache.DefaultTTL)
}

// Get returns the user's session, or nil if none is registered.
func (r *Registry) Get(userID int64) *Session {
	item := r.cache.Get(userID)
	if item == nil {
		return nil
	}
	return item.Value()
}

// Remove deletes the user's session and reports whether one existed. The
// lookup and delete are a single cache operation, so concurrent removals
// agree on which caller saw the session.
func (r *Registry) Remove(userID int64) bool {
	_, present := r.cache.GetAndDelete(userID)
	return present
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Close stops the eviction goroutine.
func (r *Registry) Close() {
	r.cache.Stop()
}
