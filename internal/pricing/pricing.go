package pricing

import (
	"github.com/platedrop/ordercore/internal/cart"
	"github.com/platedrop/ordercore/pkg/config"
	"github.com/shopspring/decimal"
)

// PriceBreakdown is the priced view of a cart. All amounts are already
// rounded to cents; Total is the exact sum of the other components.
type PriceBreakdown struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	TipAmount      decimal.Decimal `json:"tip_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Calculator derives price breakdowns from cart contents. Tax rate and
// delivery fee are fixed configuration, not restaurant data.
type Calculator struct {
	taxRate     decimal.Decimal
	deliveryFee decimal.Decimal
}

// NewCalculator builds a calculator from pricing configuration.
func NewCalculator(cfg config.PricingConfig) *Calculator {
	return &Calculator{
		taxRate:     decimal.NewFromFloat(cfg.TaxRate),
		deliveryFee: decimal.New(cfg.DeliveryFeeCents, -2),
	}
}

// Calculate turns cart lines plus a tip selection into a breakdown. It
// is pure: no I/O, no side effects, deterministic for a given input.
// Intermediate math keeps full precision; rounding happens once per
// component here, so Total always reconciles to the cent.
//
// An empty cart yields zeros everywhere except the delivery fee; an
// empty cart cannot be submitted, so that is presentation-only.
func (c *Calculator) Calculate(lines []cart.Line, tip decimal.Decimal) PriceBreakdown {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Extension())
	}

	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(c.taxRate).Round(2)
	fee := c.deliveryFee.Round(2)
	tipAmount := tip.Round(2)
	if tipAmount.IsNegative() {
		tipAmount = decimal.Zero
	}
	discount := decimal.Zero

	return PriceBreakdown{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DeliveryFee:    fee,
		TipAmount:      tipAmount,
		DiscountAmount: discount,
		Total:          subtotal.Add(tax).Add(fee).Add(tipAmount).Sub(discount),
	}
}
