package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/platedrop/ordercore/api/responses"
	"github.com/platedrop/ordercore/api/validators"
	"github.com/platedrop/ordercore/internal/cart"
	"github.com/platedrop/ordercore/internal/pricing"
	pkgerrors "github.com/platedrop/ordercore/pkg/errors"
	"github.com/platedrop/ordercore/pkg/logger"
)

// AddItemRequest mirrors the menu-item card the caller is adding from.
type AddItemRequest struct {
	ItemID         int64   `json:"item_id" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	UnitPrice      float64 `json:"unit_price" validate:"gte=0"`
	Quantity       int     `json:"quantity" validate:"gte=0"`
	RestaurantID   int64   `json:"restaurant_id" validate:"required"`
	RestaurantName string  `json:"restaurant_name" validate:"required"`
}

// UpdateQuantityRequest sets a line's quantity directly.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartView is the rendered cart for the client.
type CartView struct {
	Restaurant *cart.Restaurant `json:"restaurant"`
	Lines      []cart.Line      `json:"lines"`
	TotalItems int              `json:"total_items"`
	TotalPrice decimal.Decimal  `json:"total_price"`
}

func newCartView(store *cart.Store) CartView {
	return CartView{
		Restaurant: store.Restaurant(),
		Lines:      store.Lines(),
		TotalItems: store.TotalItems(),
		TotalPrice: store.TotalPrice().Round(2),
	}
}

// CartFetch returns the current cart contents.
func CartFetch(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartView(store))
	}
}

// CartAddItem adds a menu item to the cart. Adding from a different
// restaurant than the cart's anchor is rejected with a conflict so the
// client can offer the replace-cart prompt.
func CartAddItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item := cart.Item{
			ID:             payload.ItemID,
			Name:           payload.Name,
			UnitPrice:      decimal.NewFromFloat(payload.UnitPrice),
			RestaurantID:   payload.RestaurantID,
			RestaurantName: payload.RestaurantName,
		}

		if !store.AddItem(r.Context(), item, payload.Quantity) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "cart holds items from another restaurant; clear it first"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(store))
	}
}

// CartUpdateItem sets a line quantity; zero or less removes the line.
func CartUpdateItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := itemIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.UpdateQuantity(r.Context(), itemID, payload.Quantity)
		responses.WriteSuccess(w, newCartView(store))
	}
}

// CartRemoveItem deletes a line from the cart.
func CartRemoveItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := itemIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.RemoveItem(r.Context(), itemID)
		responses.WriteSuccess(w, newCartView(store))
	}
}

// CartClear empties the cart and drops the restaurant anchor.
func CartClear(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.Clear(r.Context())
		responses.WriteSuccess(w, newCartView(store))
	}
}

// CartQuote prices the current cart with an optional tip.
func CartQuote(store *cart.Store, calculator *pricing.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tip, _, err := validators.ParseQueryFloat(r, "tip", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		breakdown := calculator.Calculate(store.Lines(), decimal.NewFromFloat(tip))
		responses.WriteSuccess(w, breakdown)
	}
}

func itemIDFromPath(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "itemId")
	itemID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id").WithDetails(map[string]any{"item_id": raw})
	}
	return itemID, nil
}
