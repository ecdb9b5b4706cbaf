package cart

import (
	"context"
	"sync"

	"github.com/platedrop/ordercore/pkg/logger"
	"github.com/shopspring/decimal"
)

// Store is the single shared mutable cart. Every screen mutates it
// through these methods only; each mutation is atomic under the lock.
//
// Invariant: either the cart is empty and unanchored, or every line
// shares the anchor restaurant's id.
type Store struct {
	mu         sync.Mutex
	lines      []Line
	restaurant *Restaurant
	repo       Repository
	logg       *logger.Logger
}

// NewStore builds a cart store, restoring any persisted snapshot.
func NewStore(ctx context.Context, repo Repository, logg *logger.Logger) (*Store, error) {
	if repo == nil {
		repo = NewMemoryRepository()
	}

	lines, restaurant, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	return &Store{
		lines:      lines,
		restaurant: restaurant,
		repo:       repo,
		logg:       logg,
	}, nil
}

// AddItem adds quantity of the item to the cart. Adding from a second
// restaurant fails and leaves the cart untouched; the caller surfaces
// that as a "replace cart?" prompt and retries after Clear.
func (s *Store) AddItem(ctx context.Context, item Item, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restaurant != nil && s.restaurant.ID != item.RestaurantID {
		return false
	}

	if s.restaurant == nil {
		s.restaurant = &Restaurant{ID: item.RestaurantID, Name: item.RestaurantName}
	}

	found := false
	for i := range s.lines {
		if s.lines[i].ItemID == item.ID {
			s.lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		s.lines = append(s.lines, Line{
			ItemID:         item.ID,
			Name:           item.Name,
			UnitPrice:      item.UnitPrice,
			Quantity:       quantity,
			RestaurantID:   item.RestaurantID,
			RestaurantName: item.RestaurantName,
		})
	}

	s.persistLocked(ctx)
	return true
}

// UpdateQuantity sets the line's quantity directly. Zero or negative
// removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, itemID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(itemID)
		s.persistLocked(ctx)
		return
	}

	for i := range s.lines {
		if s.lines[i].ItemID == itemID {
			s.lines[i].Quantity = quantity
			break
		}
	}
	s.persistLocked(ctx)
}

// RemoveItem deletes the line. Removing the last line reverts the cart
// to the empty, unanchored state.
func (s *Store) RemoveItem(ctx context.Context, itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(itemID)
	s.persistLocked(ctx)
}

// Clear empties the cart and drops the restaurant anchor.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.restaurant = nil
	s.persistLocked(ctx)
}

// Lines returns a copy of the current lines.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

// Restaurant returns the anchor restaurant, or nil for an empty cart.
func (s *Store) Restaurant() *Restaurant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restaurant == nil {
		return nil
	}
	copied := *s.restaurant
	return &copied
}

// TotalItems returns the sum of all line quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice returns the pre-tax, pre-fee sum of line extensions.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Extension())
	}
	return total
}

// IsEmpty reports whether the cart holds no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

func (s *Store) removeLocked(itemID int64) {
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ItemID != itemID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	if len(s.lines) == 0 {
		s.lines = nil
		s.restaurant = nil
	}
}

// persistLocked mirrors the in-memory state to storage. Storage is
// best-effort; a failed save must never fail the mutation.
func (s *Store) persistLocked(ctx context.Context) {
	var restaurant *Restaurant
	if s.restaurant != nil {
		copied := *s.restaurant
		restaurant = &copied
	}
	if err := s.repo.Save(ctx, append([]Line(nil), s.lines...), restaurant); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "cart snapshot save failed: "+err.Error())
	}
}
