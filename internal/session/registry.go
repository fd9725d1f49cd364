package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/neox5/countbox/internal/catalog"
	"github.com/patrickmn/go-cache"
)

const DefaultTTL = 10 * time.Minute

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// CatalogSource supplies the catalog new sessions are mounted with.
type CatalogSource interface {
	Catalog() *catalog.Catalog
}

// StaticCatalog is a CatalogSource that never changes.
type StaticCatalog struct {
	cat *catalog.Catalog
}

// Static wraps cat as a CatalogSource.
func Static(cat *catalog.Catalog) StaticCatalog {
	return StaticCatalog{cat: cat}
}

// Catalog returns the wrapped catalog.
func (s StaticCatalog) Catalog() *catalog.Catalog {
	return s.cat
}

// EvictReason names why a session was unmounted.
type EvictReason string

const (
	EvictExpired  EvictReason = "expired"
	EvictRemoved  EvictReason = "removed"
	EvictShutdown EvictReason = "shutdown"
)

// EvictReasons lists every eviction reason.
var EvictReasons = []EvictReason{EvictExpired, EvictRemoved, EvictShutdown}

// Stats are registry counters since start. Active counts unexpired
// sessions only.
type Stats struct {
	Active    int
	Created   uint64
	Triggered uint64
	Completed uint64
	Expired   uint64
	Removed   uint64
	Shutdown  uint64
}

// Evicted returns the number of sessions unmounted for any reason.
func (s Stats) Evicted() uint64 {
	return s.Expired + s.Removed + s.Shutdown
}

// Evictions returns the number of sessions unmounted for reason.
func (s Stats) Evictions(reason EvictReason) uint64 {
	switch reason {
	case EvictExpired:
		return s.Expired
	case EvictRemoved:
		return s.Removed
	case EvictShutdown:
		return s.Shutdown
	}
	return 0
}

// LogValue implements slog.LogValuer for structured logging
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("active", s.Active),
		slog.Uint64("created", s.Created),
		slog.Uint64("triggered", s.Triggered),
		slog.Uint64("completed", s.Completed),
		slog.Uint64("expired", s.Expired),
		slog.Uint64("removed", s.Removed),
		slog.Uint64("shutdown", s.Shutdown),
	)
}

// Registry holds mounted sessions. Idle sessions expire after the TTL and
// every eviction unmounts the session.
type Registry struct {
	store   *cache.Cache
	source  CatalogSource
	opts    Options
	logger  *slog.Logger
	ttl     time.Duration
	closing atomic.Bool

	// ids currently being deleted by Remove
	removing sync.Map

	created   atomic.Uint64
	triggered atomic.Uint64
	completed atomic.Uint64
	expired   atomic.Uint64
	removed   atomic.Uint64
	shutdown  atomic.Uint64
}

// NewRegistry creates a registry. Expired sessions are only removed by
// Sweep, so callers schedule it.
func NewRegistry(source CatalogSource, ttl time.Duration, opts Options) (*Registry, error) {
	if source == nil || source.Catalog() == nil {
		return nil, fmt.Errorf("catalog source cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		store:  cache.New(ttl, 0),
		source: source,
		logger: logger,
		ttl:    ttl,
	}

	r.opts = opts
	r.opts.Logger = logger
	r.opts.OnTrigger = r.chain(opts.OnTrigger, func(*Session) { r.triggered.Add(1) })
	r.opts.OnComplete = r.chain(opts.OnComplete, func(*Session) { r.completed.Add(1) })

	r.store.OnEvicted(func(id string, v any) {
		sess, ok := v.(*Session)
		if !ok {
			return
		}
		sess.Close()
		reason := r.evictReason(id)
		r.counter(reason).Add(1)
		r.logger.Debug("session evicted", "session", id, "reason", reason)
	})

	return r, nil
}

func (r *Registry) chain(user, own func(*Session)) func(*Session) {
	return func(s *Session) {
		own(s)
		if user != nil {
			user(s)
		}
	}
}

func (r *Registry) evictReason(id string) EvictReason {
	if _, ok := r.removing.LoadAndDelete(id); ok {
		return EvictRemoved
	}
	if r.closing.Load() {
		return EvictShutdown
	}
	return EvictExpired
}

func (r *Registry) counter(reason EvictReason) *atomic.Uint64 {
	switch reason {
	case EvictRemoved:
		return &r.removed
	case EvictShutdown:
		return &r.shutdown
	default:
		return &r.expired
	}
}

// TTL returns the idle expiry of sessions.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// Create mounts a new session with the current catalog.
func (r *Registry) Create() (*Session, error) {
	if r.closing.Load() {
		return nil, ErrClosed
	}

	sess, err := New(uuid.NewString(), r.source.Catalog(), r.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	r.store.Set(sess.ID(), sess, cache.DefaultExpiration)
	r.created.Add(1)

	return sess, nil
}

// Get returns a live session and refreshes its expiry.
func (r *Registry) Get(id string) (*Session, error) {
	v, ok := r.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	sess, ok := v.(*Session)
	if !ok {
		return nil, ErrNotFound
	}

	// Replace fails if the session was removed meanwhile; that is fine.
	_ = r.store.Replace(id, sess, cache.DefaultExpiration)

	return sess, nil
}

// Remove unmounts and forgets a session.
func (r *Registry) Remove(id string) error {
	if _, ok := r.store.Get(id); !ok {
		return ErrNotFound
	}
	r.removing.Store(id, struct{}{})
	r.store.Delete(id)
	// Delete skips OnEvicted if the session vanished meanwhile
	r.removing.Delete(id)
	return nil
}

// Sweep unmounts expired sessions.
func (r *Registry) Sweep() {
	before := r.expired.Load()
	r.store.DeleteExpired()
	if n := r.expired.Load() - before; n > 0 {
		r.logger.Debug("swept expired sessions", "count", n)
	}
}

// Len returns the number of stored sessions, including expired ones not
// yet swept.
func (r *Registry) Len() int {
	return r.store.ItemCount()
}

// Stats returns the registry counters.
func (r *Registry) Stats() Stats {
	return Stats{
		Active:    len(r.store.Items()),
		Created:   r.created.Load(),
		Triggered: r.triggered.Load(),
		Completed: r.completed.Load(),
		Expired:   r.expired.Load(),
		Removed:   r.removed.Load(),
		Shutdown:  r.shutdown.Load(),
	}
}

// Close unmounts every session. Create fails afterwards.
func (r *Registry) Close() {
	if !r.closing.CompareAndSwap(false, true) {
		return
	}
	r.store.DeleteExpired()
	for id := range r.store.Items() {
		r.store.Delete(id)
	}
	r.logger.Info("session registry closed", "stats", r.Stats())
}
