// Package orders keeps the order history shown on a customer's account.
package orders

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

//go:embed data/history.json
var seed []byte

// StaticHistory decodes the bundled account history, newest first
func StaticHistory() ([]models.OrderRecord, error) {
	var history []models.OrderRecord
	if err := json.Unmarshal(seed, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order history: %w", err)
	}
	slices.SortStableFunc(history, func(a, b models.OrderRecord) int {
		return b.Date.Compare(a.Date)
	})
	return history, nil
}

// RecordID is the display id of an order placed through checkout
func RecordID(id int64) string {
	return fmt.Sprintf("ORD-%06d", id)
}

// Book collects the orders placed in one session on top of the account's
// prior history. It satisfies checkout.Recorder.
type Book struct {
	mu      sync.RWMutex
	placed  []models.OrderRecord
	account []models.OrderRecord
}

func NewBook(account []models.OrderRecord) *Book {
	return &Book{account: slices.Clone(account)}
}

func (b *Book) Record(o models.Order) {
	rec := models.OrderRecord{
		ID:     RecordID(o.ID),
		Date:   o.PlacedAt,
		Status: models.OrderProcessing,
		Total:  o.Total,
		Items:  slices.Clone(o.Items),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.placed = append(b.placed, rec)
}

// List returns the orders placed in this session, newest first, followed by
// the account history when withAccount is set.
func (b *Book) List(withAccount bool) []models.OrderRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.OrderRecord, 0, len(b.placed)+len(b.account))
	for i := len(b.placed) - 1; i >= 0; i-- {
		out = append(out, b.placed[i])
	}
	if withAccount {
		out = append(out, b.account...)
	}
	return out
}
