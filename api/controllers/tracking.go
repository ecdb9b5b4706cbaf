package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platedrop/ordercore/api/middleware"
	"github.com/platedrop/ordercore/api/responses"
	"github.com/platedrop/ordercore/internal/tracking"
	"github.com/platedrop/ordercore/pkg/auth"
	pkgerrors "github.com/platedrop/ordercore/pkg/errors"
	"github.com/platedrop/ordercore/pkg/logger"
	"github.com/platedrop/ordercore/pkg/ordersvc"
)

// OrderService is the slice of the order client the tracking and driver
// handlers need.
type OrderService interface {
	GetOrder(ctx context.Context, orderID string) (*ordersvc.Order, error)
	CancelOrder(ctx context.Context, orderID string) (*ordersvc.Order, error)
}

// OrderTracking returns the rendered tracking view for one order.
func OrderTracking(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := authorizeViewer(r, order.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tracking.Render(order))
	}
}

// OrderCancel cancels an order while its status still allows it.
func OrderCancel(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := authorizeViewer(r, order.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !order.Status.CanCancel() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled"))
			return
		}

		cancelled, err := svc.CancelOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithOrderID(r.Context(), orderID), "order cancelled")
		}
		responses.WriteSuccess(w, tracking.Render(cancelled))
	}
}

// authorizeViewer lets the order's owner, or an admin, through.
func authorizeViewer(r *http.Request, ownerID string) error {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if identity.UserID != ownerID && identity.Role != auth.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return nil
}
