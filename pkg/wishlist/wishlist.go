// Package wishlist implements the saved-products list and its persistence.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"julianmorley.ca/con-plar/storefront/pkg/kv"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// StorageKey is where the snapshot is kept in the session's key-value store
const StorageKey = "wishlist"

type Action interface {
	wishlistAction()
}

type (
	// AddItem is a no-op when the product is already saved
	AddItem struct {
		Product models.Product
	}
	RemoveItem struct {
		ID int64
	}
	ClearWishlist  struct{}
	OpenWishlist   struct{}
	CloseWishlist  struct{}
	ToggleWishlist struct{}
)

func (AddItem) wishlistAction()        {}
func (RemoveItem) wishlistAction()     {}
func (ClearWishlist) wishlistAction()  {}
func (OpenWishlist) wishlistAction()   {}
func (CloseWishlist) wishlistAction()  {}
func (ToggleWishlist) wishlistAction() {}

func Reduce(s models.WishlistState, a Action) models.WishlistState {
	next := s.Clone()

	switch a := a.(type) {
	case AddItem:
		if !next.Contains(a.Product.ID) {
			next.Items = append(next.Items, a.Product)
		}
	case RemoveItem:
		for i, p := range next.Items {
			if p.ID == a.ID {
				next.Items = append(next.Items[:i], next.Items[i+1:]...)
				break
			}
		}
	case ClearWishlist:
		next.Items = []models.Product{}
	case OpenWishlist:
		next.IsOpen = true
	case CloseWishlist:
		next.IsOpen = false
	case ToggleWishlist:
		next.IsOpen = !next.IsOpen
	}

	return next
}

// Store owns one wishlist and writes it through to storage after every change
type Store struct {
	mu      sync.RWMutex
	state   models.WishlistState
	storage kv.Store
	log     *slog.Logger
}

func emptyState() models.WishlistState {
	return models.WishlistState{Items: []models.Product{}}
}

// Load restores the persisted wishlist. A missing, unreadable or corrupt
// snapshot yields an empty wishlist; the problem is logged, never returned.
func Load(ctx context.Context, storage kv.Store, log *slog.Logger) *Store {
	s := &Store{state: emptyState(), storage: storage, log: log}

	raw, err := storage.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Warn("wishlist snapshot unreadable, starting empty", "error", err)
		}
		return s
	}

	state, err := decode(raw)
	if err != nil {
		log.Warn("wishlist snapshot corrupt, starting empty", "error", err)
		return s
	}

	s.state = state
	return s
}

func decode(raw string) (models.WishlistState, error) {
	var stored models.WishlistState
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return models.WishlistState{}, fmt.Errorf("failed to unmarshal wishlist: %w", err)
	}

	// replay through AddItem so a hand-edited snapshot can't hold duplicates
	state := emptyState()
	state.IsOpen = stored.IsOpen
	for _, p := range stored.Items {
		state = Reduce(state, AddItem{Product: p})
	}
	return state, nil
}

// Dispatch applies actions in order, persists the result and returns it.
// A failed write is logged and the in-memory state is kept.
func (s *Store) Dispatch(ctx context.Context, actions ...Action) models.WishlistState {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}

	// the write outlives the caller's request
	if err := s.persist(context.WithoutCancel(ctx)); err != nil {
		s.log.Error("failed to persist wishlist", "error", err)
	}
	return s.state.Clone()
}

func (s *Store) persist(ctx context.Context) error {
	payload, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("failed to marshal wishlist: %w", err)
	}
	return s.storage.Set(ctx, StorageKey, string(payload))
}

func (s *Store) State() models.WishlistState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}
