// Package cart implements the shopping cart as a pure reducer plus a
// session-owned store.
package cart

import (
	"sync"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Action is one of the cart commands below
type Action interface {
	cartAction()
}

type (
	AddItem struct {
		Product models.Product
	}
	RemoveItem struct {
		ID int64
	}
	// UpdateQuantity removes the entry when Quantity is below 1 and clamps it
	// to models.MaxQuantity
	UpdateQuantity struct {
		ID       int64
		Quantity int
	}
	// RemovePurchased takes the quantities of Lines off the cart, dropping
	// lines that reach zero. Anything added after Lines was taken stays.
	RemovePurchased struct {
		Lines []models.CartItem
	}
	ClearCart  struct{}
	OpenCart   struct{}
	CloseCart  struct{}
	ToggleCart struct{}
)

func (AddItem) cartAction()         {}
func (RemoveItem) cartAction()      {}
func (UpdateQuantity) cartAction()  {}
func (RemovePurchased) cartAction() {}
func (ClearCart) cartAction()       {}
func (OpenCart) cartAction()        {}
func (CloseCart) cartAction()       {}
func (ToggleCart) cartAction()      {}

// Reduce returns the state that follows applying a to s. s is never modified.
func Reduce(s models.CartState, a Action) models.CartState {
	next := s.Clone()

	switch a := a.(type) {
	case AddItem:
		if i := next.IndexOf(a.Product.ID); i >= 0 {
			next.Items[i].Quantity = min(next.Items[i].Quantity+1, models.MaxQuantity)
		} else {
			next.Items = append(next.Items, models.CartItem{Product: a.Product, Quantity: 1})
		}
	case RemoveItem:
		next.Items = removeAt(next.Items, next.IndexOf(a.ID))
	case UpdateQuantity:
		i := next.IndexOf(a.ID)
		if i < 0 {
			break
		}
		if a.Quantity < 1 {
			next.Items = removeAt(next.Items, i)
		} else {
			next.Items[i].Quantity = min(a.Quantity, models.MaxQuantity)
		}
	case RemovePurchased:
		for _, line := range a.Lines {
			i := next.IndexOf(line.Product.ID)
			if i < 0 {
				continue
			}
			if left := next.Items[i].Quantity - line.Quantity; left > 0 {
				next.Items[i].Quantity = left
			} else {
				next.Items = removeAt(next.Items, i)
			}
		}
	case ClearCart:
		next.Items = []models.CartItem{}
	case OpenCart:
		next.IsOpen = true
	case CloseCart:
		next.IsOpen = false
	case ToggleCart:
		next.IsOpen = !next.IsOpen
	}

	return next
}

func removeAt(items []models.CartItem, i int) []models.CartItem {
	if i < 0 {
		return items
	}
	return append(items[:i], items[i+1:]...)
}

// Store owns the cart of one session
type Store struct {
	mu    sync.RWMutex
	state models.CartState
}

func NewStore() *Store {
	return &Store{state: models.CartState{Items: []models.CartItem{}}}
}

// Dispatch applies actions in order as a single update and returns the result
func (s *Store) Dispatch(actions ...Action) models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}
	return s.state.Clone()
}

func (s *Store) State() models.CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}
