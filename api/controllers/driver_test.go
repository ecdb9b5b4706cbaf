package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/platedrop/ordercore/api/middleware"
	"github.com/platedrop/ordercore/internal/delivery"
	"github.com/platedrop/ordercore/pkg/auth"
	"github.com/platedrop/ordercore/pkg/enums"
	"github.com/platedrop/ordercore/pkg/ordersvc"
	"github.com/platedrop/ordercore/pkg/types"
)

type stubFeed struct {
	orders   []delivery.EnrichedOrder
	err      error
	position types.LatLng
}

func (s *stubFeed) Fetch(ctx context.Context, driver types.LatLng) ([]delivery.EnrichedOrder, error) {
	s.position = driver
	return s.orders, s.err
}

type stubDriverOrders struct {
	order   *ordersvc.Order
	getErr  error
	updated []enums.OrderStatus
}

func (s *stubDriverOrders) GetOrder(ctx context.Context, orderID string) (*ordersvc.Order, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.order, nil
}

func (s *stubDriverOrders) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*ordersvc.Order, error) {
	s.updated = append(s.updated, status)
	return &ordersvc.Order{OrderID: orderID, Status: status}, nil
}

func driverIdentity() *auth.Identity {
	return &auth.Identity{UserID: "driver-1", Role: auth.RoleDriver}
}

func TestDriverReadyOrdersParsesPosition(t *testing.T) {
	t.Parallel()
	feed := &stubFeed{orders: []delivery.EnrichedOrder{{ReadyOrder: ordersvc.ReadyOrder{OrderID: "o1"}}}}
	handler := DriverReadyOrders(feed, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/driver/ready-orders?driver_latitude=39.78&driver_longitude=-89.65", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), driverIdentity()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if feed.position.Latitude != 39.78 || feed.position.Longitude != -89.65 {
		t.Fatalf("position = %+v", feed.position)
	}

	var envelope struct {
		Data []delivery.EnrichedOrder `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].OrderID != "o1" {
		t.Fatalf("feed = %+v", envelope.Data)
	}
}

func TestDriverReadyOrdersRequiresPosition(t *testing.T) {
	t.Parallel()
	handler := DriverReadyOrders(&stubFeed{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/driver/ready-orders", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), driverIdentity()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func advanceRequest(t *testing.T, handler http.HandlerFunc, identity *auth.Identity) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Post("/v1/driver/orders/{orderId}/advance", handler)

	req := httptest.NewRequest(http.MethodPost, "/v1/driver/orders/order-1/advance", nil)
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), identity))
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestDriverMarkPickedUp(t *testing.T) {
	t.Parallel()
	driverID := "driver-1"
	svc := &stubDriverOrders{order: &ordersvc.Order{OrderID: "order-1", DeliveryUserID: &driverID, Status: enums.OrderStatusAssigned}}

	resp := advanceRequest(t, DriverMarkPickedUp(svc, nil), driverIdentity())

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.updated) != 1 || svc.updated[0] != enums.OrderStatusPickedUp {
		t.Fatalf("updates = %v", svc.updated)
	}
}

func TestDriverMarkPickedUpWrongStatus(t *testing.T) {
	t.Parallel()
	driverID := "driver-1"
	svc := &stubDriverOrders{order: &ordersvc.Order{OrderID: "order-1", DeliveryUserID: &driverID, Status: enums.OrderStatusPreparing}}

	resp := advanceRequest(t, DriverMarkPickedUp(svc, nil), driverIdentity())

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	if len(svc.updated) != 0 {
		t.Fatalf("status must not change: %v", svc.updated)
	}
}

func TestDriverMarkDeliveredOtherDriver(t *testing.T) {
	t.Parallel()
	otherDriver := "driver-2"
	svc := &stubDriverOrders{order: &ordersvc.Order{OrderID: "order-1", DeliveryUserID: &otherDriver, Status: enums.OrderStatusPickedUp}}

	resp := advanceRequest(t, DriverMarkDelivered(svc, nil), driverIdentity())

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestDriverMarkDelivered(t *testing.T) {
	t.Parallel()
	driverID := "driver-1"
	svc := &stubDriverOrders{order: &ordersvc.Order{OrderID: "order-1", DeliveryUserID: &driverID, Status: enums.OrderStatusPickedUp}}

	resp := advanceRequest(t, DriverMarkDelivered(svc, nil), driverIdentity())

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.updated) != 1 || svc.updated[0] != enums.OrderStatusDelivered {
		t.Fatalf("updates = %v", svc.updated)
	}
}
