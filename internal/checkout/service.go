package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/platedrop/ordercore/internal/cart"
	"github.com/platedrop/ordercore/internal/pricing"
	"github.com/platedrop/ordercore/pkg/auth"
	"github.com/platedrop/ordercore/pkg/enums"
	pkgerrors "github.com/platedrop/ordercore/pkg/errors"
	"github.com/platedrop/ordercore/pkg/logger"
	"github.com/platedrop/ordercore/pkg/ordersvc"
	"github.com/platedrop/ordercore/pkg/types"
	"github.com/shopspring/decimal"
)

type orderCreator interface {
	CreateOrder(ctx context.Context, payload ordersvc.OrderCreate) (*ordersvc.Order, error)
}

type cartStore interface {
	Lines() []cart.Line
	Restaurant() *cart.Restaurant
	Clear(ctx context.Context)
}

type addressLocator interface {
	Resolve(ctx context.Context, address string) *types.LatLng
}

// Service builds and submits orders from the current cart.
type Service struct {
	carts             cartStore
	calculator        *pricing.Calculator
	orders            orderCreator
	locator           addressLocator
	logg              *logger.Logger
	confirmationDelay time.Duration
	onConfirmed       func(orderID string)
}

// NewService wires the checkout pipeline. onConfirmed is invoked once
// per successful submission, after the confirmation delay, with the new
// order id so the caller can navigate to tracking.
func NewService(carts cartStore, calculator *pricing.Calculator, orders orderCreator, locator addressLocator, logg *logger.Logger, confirmationDelay time.Duration, onConfirmed func(orderID string)) (*Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if calculator == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order client required")
	}
	return &Service{
		carts:             carts,
		calculator:        calculator,
		orders:            orders,
		locator:           locator,
		logg:              logg,
		confirmationDelay: confirmationDelay,
		onConfirmed:       onConfirmed,
	}, nil
}

// PlaceOrderInput captures everything checkout needs beyond the cart.
type PlaceOrderInput struct {
	DeliveryAddress types.DeliveryAddress
	Tip             decimal.Decimal
	Notes           string
	Identity        *auth.Identity
}

// PlaceOrder validates preconditions, posts the order, and on success
// clears the cart exactly once and schedules the confirmed callback.
// None of the success side effects run on any failure path, and no
// network call happens while a precondition fails.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*ordersvc.Order, error) {
	if input.Identity == nil || input.Identity.UserID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to place an order")
	}

	lines := s.carts.Lines()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	restaurant := s.carts.Restaurant()
	if restaurant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	if missing := input.DeliveryAddress.MissingFields(); len(missing) > 0 {
		details := map[string]string{}
		for _, field := range missing {
			details[field] = "is required"
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is incomplete").WithDetails(details)
	}

	payload := s.buildPayload(ctx, lines, restaurant, input)

	order, err := s.orders.CreateOrder(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.carts.Clear(ctx)
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.OrderID), "order submitted")
	}

	if s.onConfirmed != nil {
		orderID := order.OrderID
		callback := s.onConfirmed
		// Let the confirmation state stay visible before navigating.
		time.AfterFunc(s.confirmationDelay, func() {
			callback(orderID)
		})
	}

	return order, nil
}

// buildPayload snapshots every cart line by value so the order stays
// immune to later cart or menu-price edits.
func (s *Service) buildPayload(ctx context.Context, lines []cart.Line, restaurant *cart.Restaurant, input PlaceOrderInput) ordersvc.OrderCreate {
	items := make([]ordersvc.OrderItem, 0, len(lines))
	for _, line := range lines {
		unit := line.UnitPrice.Round(2)
		items = append(items, ordersvc.OrderItem{
			ItemID:   line.ItemID,
			ItemName: line.Name,
			Price:    unit.InexactFloat64(),
			Quantity: line.Quantity,
			Subtotal: unit.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2).InexactFloat64(),
		})
	}

	breakdown := s.calculator.Calculate(lines, input.Tip)

	address := input.DeliveryAddress
	if s.locator != nil {
		if point := s.locator.Resolve(ctx, address.Formatted()); point != nil {
			address.Latitude = &point.Latitude
			address.Longitude = &point.Longitude
		}
	}
	input.DeliveryAddress = address

	return ordersvc.OrderCreate{
		UserID:          input.Identity.UserID,
		RestaurantID:    restaurant.ID,
		OrderItems:      items,
		DeliveryAddress: input.DeliveryAddress,
		PaymentMethod:   enums.PaymentMethodCash,
		Notes:           input.Notes,
		Subtotal:        breakdown.Subtotal.InexactFloat64(),
		TaxAmount:       breakdown.TaxAmount.InexactFloat64(),
		DeliveryFee:     breakdown.DeliveryFee.InexactFloat64(),
		TipAmount:       breakdown.TipAmount.InexactFloat64(),
		DiscountAmount:  breakdown.DiscountAmount.InexactFloat64(),
		TotalAmount:     breakdown.Total.InexactFloat64(),
	}
}
