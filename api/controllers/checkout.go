package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/platedrop/ordercore/api/middleware"
	"github.com/platedrop/ordercore/api/responses"
	"github.com/platedrop/ordercore/api/validators"
	"github.com/platedrop/ordercore/internal/checkout"
	"github.com/platedrop/ordercore/pkg/logger"
	"github.com/platedrop/ordercore/pkg/types"
)

// CheckoutRequest carries everything checkout needs beyond the cart.
type CheckoutRequest struct {
	DeliveryAddress types.DeliveryAddress `json:"delivery_address" validate:"required"`
	Tip             float64               `json:"tip" validate:"gte=0"`
	Notes           string                `json:"notes"`
}

// Checkout submits the current cart as an order.
func Checkout(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload CheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), checkout.PlaceOrderInput{
			DeliveryAddress: payload.DeliveryAddress,
			Tip:             decimal.NewFromFloat(payload.Tip),
			Notes:           payload.Notes,
			Identity:        middleware.IdentityFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
