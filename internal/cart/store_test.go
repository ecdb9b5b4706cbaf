package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), NewMemoryRepository(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func burgerItem() Item {
	return Item{ID: 1, Name: "Burger", UnitPrice: decimal.NewFromFloat(8.50), RestaurantID: 10, RestaurantName: "Patty Place"}
}

func sushiItem() Item {
	return Item{ID: 2, Name: "Sushi Roll", UnitPrice: decimal.NewFromFloat(12.00), RestaurantID: 20, RestaurantName: "Sushi Spot"}
}

func TestAddItemAnchorsRestaurant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	if !store.AddItem(ctx, burgerItem(), 2) {
		t.Fatal("expected add to succeed on empty cart")
	}

	restaurant := store.Restaurant()
	if restaurant == nil || restaurant.ID != 10 {
		t.Fatalf("unexpected anchor: %+v", restaurant)
	}
	if got := store.TotalItems(); got != 2 {
		t.Fatalf("total items = %d, want 2", got)
	}
}

func TestAddItemRejectsSecondRestaurant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	store.AddItem(ctx, burgerItem(), 1)

	if store.AddItem(ctx, sushiItem(), 1) {
		t.Fatal("expected add from second restaurant to fail")
	}

	// The rejected add must leave the cart untouched.
	lines := store.Lines()
	if len(lines) != 1 || lines[0].ItemID != 1 {
		t.Fatalf("cart changed after rejected add: %+v", lines)
	}
	if restaurant := store.Restaurant(); restaurant.ID != 10 {
		t.Fatalf("anchor changed after rejected add: %+v", restaurant)
	}
}

func TestAddItemMergesExistingLine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	store.AddItem(ctx, burgerItem(), 1)
	store.AddItem(ctx, burgerItem(), 3)

	lines := store.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 4 {
		t.Fatalf("quantity = %d, want 4", lines[0].Quantity)
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	store.AddItem(ctx, burgerItem(), 2)

	store.UpdateQuantity(ctx, 1, 0)

	if !store.IsEmpty() {
		t.Fatal("expected empty cart after zero quantity")
	}
	if store.Restaurant() != nil {
		t.Fatal("expected anchor dropped with last line")
	}
}

func TestRemoveLastLineUnanchors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	store.AddItem(ctx, burgerItem(), 1)

	store.RemoveItem(ctx, 1)

	if store.Restaurant() != nil {
		t.Fatal("expected unanchored cart")
	}

	// A different restaurant is now allowed again.
	if !store.AddItem(ctx, sushiItem(), 1) {
		t.Fatal("expected add to succeed after cart emptied")
	}
}

func TestClearDropsEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	store.AddItem(ctx, burgerItem(), 2)

	store.Clear(ctx)

	if !store.IsEmpty() || store.Restaurant() != nil {
		t.Fatal("expected cleared cart")
	}
	if !store.TotalPrice().IsZero() {
		t.Fatalf("total price = %s, want 0", store.TotalPrice())
	}
}

func TestTotalPriceSumsExtensions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	store.AddItem(ctx, burgerItem(), 2)
	store.AddItem(ctx, Item{ID: 3, Name: "Fries", UnitPrice: decimal.NewFromFloat(3.25), RestaurantID: 10, RestaurantName: "Patty Place"}, 1)

	if want := "20.25"; store.TotalPrice().StringFixed(2) != want {
		t.Fatalf("total price = %s, want %s", store.TotalPrice().StringFixed(2), want)
	}
}

func TestNewStoreRestoresSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemoryRepository()

	first, err := NewStore(ctx, repo, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	first.AddItem(ctx, burgerItem(), 2)

	second, err := NewStore(ctx, repo, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if second.TotalItems() != 2 {
		t.Fatalf("restored items = %d, want 2", second.TotalItems())
	}
	if restaurant := second.Restaurant(); restaurant == nil || restaurant.ID != 10 {
		t.Fatalf("restored anchor: %+v", restaurant)
	}
}

func TestPersistFailureDoesNotFailMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := NewStore(ctx, failingSaveRepo{}, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if !store.AddItem(ctx, burgerItem(), 1) {
		t.Fatal("expected add to succeed despite save failure")
	}
	if store.TotalItems() != 1 {
		t.Fatalf("total items = %d, want 1", store.TotalItems())
	}
}

type failingSaveRepo struct{}

func (failingSaveRepo) Load(ctx context.Context) ([]Line, *Restaurant, error) {
	return nil, nil, nil
}

func (failingSaveRepo) Save(ctx context.Context, lines []Line, restaurant *Restaurant) error {
	return context.DeadlineExceeded
}
