package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platedrop/ordercore/api/middleware"
	"github.com/platedrop/ordercore/api/responses"
	"github.com/platedrop/ordercore/api/validators"
	"github.com/platedrop/ordercore/internal/delivery"
	"github.com/platedrop/ordercore/pkg/auth"
	"github.com/platedrop/ordercore/pkg/enums"
	pkgerrors "github.com/platedrop/ordercore/pkg/errors"
	"github.com/platedrop/ordercore/pkg/logger"
	"github.com/platedrop/ordercore/pkg/ordersvc"
	"github.com/platedrop/ordercore/pkg/types"
)

// ReadyFeedService lists enriched ready orders for a driver position.
type ReadyFeedService interface {
	Fetch(ctx context.Context, driver types.LatLng) ([]delivery.EnrichedOrder, error)
}

// DriverOrderService is the slice of the order client the driver
// status handlers need.
type DriverOrderService interface {
	GetOrder(ctx context.Context, orderID string) (*ordersvc.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*ordersvc.Order, error)
}

// DriverReadyOrders lists unassigned ready orders annotated with road
// distance from the driver's position.
func DriverReadyOrders(feed ReadyFeedService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, _, err := validators.ParseQueryFloat(r, "driver_latitude", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lng, _, err := validators.ParseQueryFloat(r, "driver_longitude", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := feed.Fetch(r.Context(), types.LatLng{Latitude: lat, Longitude: lng})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

// DriverMarkPickedUp advances an assigned order to picked_up.
func DriverMarkPickedUp(svc DriverOrderService, logg *logger.Logger) http.HandlerFunc {
	return advanceStatus(svc, logg, enums.OrderStatusAssigned, enums.OrderStatusPickedUp)
}

// DriverMarkDelivered advances a picked-up order to delivered.
func DriverMarkDelivered(svc DriverOrderService, logg *logger.Logger) http.HandlerFunc {
	return advanceStatus(svc, logg, enums.OrderStatusPickedUp, enums.OrderStatusDelivered)
}

// advanceStatus moves an order one step along the delivery leg. The
// transition is offered only from the expected current status, and only
// to the assigned driver.
func advanceStatus(svc DriverOrderService, logg *logger.Logger, from, to enums.OrderStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := authorizeDriver(r, order); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.Status != from {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in the expected status").WithDetails(map[string]any{
				"current":  order.Status.String(),
				"expected": from.String(),
			}))
			return
		}

		updated, err := svc.UpdateStatus(r.Context(), orderID, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithOrderID(r.Context(), orderID)
			logg.Info(logg.WithField(ctx, "status", to.String()), "order status advanced")
		}
		responses.WriteSuccess(w, updated)
	}
}

// authorizeDriver lets the assigned driver, or an admin, through.
func authorizeDriver(r *http.Request, order *ordersvc.Order) error {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if identity.Role == auth.RoleAdmin {
		return nil
	}
	if order.DeliveryUserID != nil && *order.DeliveryUserID != identity.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order is assigned to another driver")
	}
	return nil
}
