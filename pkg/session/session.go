// Package session bundles the per-visitor stores and keeps them addressable
// by id.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/chat"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/clock"
	"julianmorley.ca/con-plar/storefront/pkg/kv"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/orders"
	"julianmorley.ca/con-plar/storefront/pkg/wishlist"
)

var ErrNotFound = errors.New("session not found")

// DefaultIdleTTL is how long an untouched session stays in memory
const DefaultIdleTTL = 2 * time.Hour

// Route is the last navigation request issued to the presentation layer
type Route struct {
	Path    string    `json:"path"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Navigation records navigation requests for the client to pick up
type Navigation struct {
	mu   sync.RWMutex
	last *Route
}

func (n *Navigation) Navigate(path string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = &Route{Path: path, Payload: payload, At: time.Now()}
}

// Last returns the most recent request, or nil if there has been none
func (n *Navigation) Last() *Route {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.last == nil {
		return nil
	}
	r := *n.last
	return &r
}

type Session struct {
	ID        string
	CreatedAt time.Time

	Cart       *cart.Store
	Wishlist   *wishlist.Store
	Checkout   *checkout.Flow
	Auth       *auth.Store
	Chat       *chat.Conversation
	Navigation *Navigation
	Orders     *orders.Book
	// Storage is this session's slice of the shared key-value store
	Storage kv.Store

	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen is when the session was last looked up
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Options configures every session a Registry creates
type Options struct {
	Storage   kv.Store
	Processor checkout.Processor
	Responder chat.Responder
	Clock     clock.Clock
	AuthDelay time.Duration
	Logger    *slog.Logger
	// History is the account order history every session starts with
	History []models.OrderRecord
	// IdleTTL evicts sessions not looked up for this long; DefaultIdleTTL
	// when zero, never when negative
	IdleTTL time.Duration
	Now     func() time.Time
}

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
}

func NewRegistry(opts Options) *Registry {
	if opts.Storage == nil {
		opts.Storage = kv.NewMemory()
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Processor == nil {
		opts.Processor = &checkout.SimulatedProcessor{Delay: checkout.DefaultProcessingDelay, Clock: opts.Clock}
	}
	if opts.Responder == nil {
		opts.Responder = chat.CannedResponder{Delay: chat.DefaultDelay, Clock: opts.Clock}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.IdleTTL == 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{sessions: make(map[string]*Session), opts: opts}
}

// Create starts a session with a fresh id. Idle sessions are swept first.
func (r *Registry) Create(ctx context.Context) *Session {
	s := r.build(ctx, uuid.NewString())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(r.opts.Now())
	r.sessions[s.ID] = s
	return s
}

// Resume returns the live session for id, or rebuilds it from storage when the
// process no longer holds it. Only the wishlist and settings survive a rebuild.
func (r *Registry) Resume(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: malformed id", ErrNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.opts.Now()
	if s, ok := r.sessions[id]; ok && !r.expired(s, now) {
		s.touch(now)
		return s, nil
	}
	s := r.build(ctx, id)
	r.sessions[id] = s
	return s, nil
}

// Get returns a live session and marks it as seen. An idle session past its
// TTL is gone even if no sweep has run yet.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	now := r.opts.Now()
	if !ok || r.expired(s, now) {
		return nil, ErrNotFound
	}
	s.touch(now)
	return s, nil
}

// Sweep drops every idle session and reports how many went
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.opts.Now())
}

// Run sweeps every interval until ctx ends
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.opts.Logger.Info("evicted idle sessions", "count", n, "remaining", r.Len())
			}
		}
	}
}

func (r *Registry) sweepLocked(now time.Time) int {
	evicted := 0
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// expired keeps a session with a payment in flight regardless of age
func (r *Registry) expired(s *Session, now time.Time) bool {
	if r.opts.IdleTTL < 0 {
		return false
	}
	if now.Sub(s.LastSeen()) < r.opts.IdleTTL {
		return false
	}
	return s.Checkout.View().Step != checkout.StepProcessing
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) build(ctx context.Context, id string) *Session {
	log := r.opts.Logger.With("session_id", id)
	storage := kv.Namespace(r.opts.Storage, fmt.Sprintf("session:%s:", id))

	carts := cart.NewStore()
	nav := &Navigation{}
	book := orders.NewBook(r.opts.History)
	now := r.opts.Now()

	s := &Session{
		ID:        id,
		CreatedAt: now,
		Cart:      carts,
		Wishlist:  wishlist.Load(ctx, storage, log),
		Checkout: checkout.New(carts, checkout.Options{
			Processor: r.opts.Processor,
			Navigator: nav,
			Recorder:  book,
			Logger:    log,
		}),
		Auth: auth.NewStore(auth.Options{
			Clock:  r.opts.Clock,
			Delay:  r.opts.AuthDelay,
			Logger: log,
		}),
		Chat:       chat.NewConversation(r.opts.Responder, log),
		Navigation: nav,
		Orders:     book,
		Storage:    storage,
	}
	s.touch(now)
	return s
}
