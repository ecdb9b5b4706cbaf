package ordersvc

import (
	"time"

	"github.com/platedrop/ordercore/pkg/enums"
	"github.com/platedrop/ordercore/pkg/types"
)

// OrderItem is the denormalized snapshot of one cart line embedded in an
// order at submission time. Later cart or menu-price edits never touch it.
type OrderItem struct {
	ItemID              int64   `json:"item_id"`
	ItemName            string  `json:"item_name"`
	Price               float64 `json:"price"`
	Quantity            int     `json:"quantity"`
	Subtotal            float64 `json:"subtotal"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// OrderCreate is the payload posted to the order service.
type OrderCreate struct {
	UserID          string                `json:"user_id"`
	RestaurantID    int64                 `json:"restaurant_id"`
	OrderItems      []OrderItem           `json:"order_items"`
	DeliveryAddress types.DeliveryAddress `json:"delivery_address"`
	PaymentMethod   enums.PaymentMethod   `json:"payment_method"`
	Notes           string                `json:"notes,omitempty"`
	Subtotal        float64               `json:"subtotal"`
	TaxAmount       float64               `json:"tax_amount"`
	DeliveryFee     float64               `json:"delivery_fee"`
	TipAmount       float64               `json:"tip_amount"`
	DiscountAmount  float64               `json:"discount_amount"`
	TotalAmount     float64               `json:"total_amount"`
}

// Order is the read view of a server-owned order. The client never
// mutates it locally; all changes are observed via re-fetch.
type Order struct {
	OrderID         string                `json:"order_id"`
	UserID          string                `json:"user_id"`
	DeliveryUserID  *string               `json:"delivery_user_id,omitempty"`
	RestaurantID    int64                 `json:"restaurant_id"`
	OrderItems      []OrderItem           `json:"order_items"`
	DeliveryAddress types.DeliveryAddress `json:"delivery_address"`
	PaymentMethod   enums.PaymentMethod   `json:"payment_method,omitempty"`
	Status          enums.OrderStatus     `json:"status"`
	Notes           string                `json:"notes,omitempty"`

	Subtotal       float64 `json:"subtotal"`
	TaxAmount      float64 `json:"tax_amount"`
	DeliveryFee    float64 `json:"delivery_fee"`
	TipAmount      float64 `json:"tip_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	TotalAmount    float64 `json:"total_amount"`

	EstimatedPickupTime   *time.Time `json:"estimated_pickup_time,omitempty"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time,omitempty"`
	ActualPickupTime      *time.Time `json:"actual_pickup_time,omitempty"`
	ActualDeliveryTime    *time.Time `json:"actual_delivery_time,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ReadyOrderRestaurant carries the pickup endpoint for a ready order.
type ReadyOrderRestaurant struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ReadyOrder is one entry in the unassigned ready-for-delivery feed.
type ReadyOrder struct {
	OrderID               string               `json:"order_id"`
	UserID                string               `json:"user_id"`
	RestaurantID          int64                `json:"restaurant_id"`
	Restaurant            ReadyOrderRestaurant `json:"restaurants"`
	DeliveryFee           float64              `json:"delivery_fee"`
	TipAmount             float64              `json:"tip_amount"`
	EstimatedPickupTime   *time.Time           `json:"estimated_pickup_time,omitempty"`
	EstimatedDeliveryTime *time.Time           `json:"estimated_delivery_time,omitempty"`
	Latitude              *float64             `json:"latitude"`
	Longitude             *float64             `json:"longitude"`
}
