package models

// WishlistState is a set of saved products keyed by id, kept in insertion order
type WishlistState struct {
	Items  []Product `json:"items"`
	IsOpen bool      `json:"is_open"`
}

func (s WishlistState) TotalItems() int {
	return len(s.Items)
}

func (s WishlistState) Contains(id int64) bool {
	for _, p := range s.Items {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s WishlistState) Clone() WishlistState {
	items := make([]Product, len(s.Items))
	copy(items, s.Items)
	return WishlistState{Items: items, IsOpen: s.IsOpen}
}

// WishlistSummary is what clients see, including the item count
type WishlistSummary struct {
	WishlistState
	TotalItems int `json:"total_items"`
}

func (s WishlistState) Summary() WishlistSummary {
	return WishlistSummary{WishlistState: s, TotalItems: s.TotalItems()}
}

type AddToWishlistRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}
