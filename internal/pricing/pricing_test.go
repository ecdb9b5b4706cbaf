package pricing

import (
	"testing"

	"github.com/platedrop/ordercore/internal/cart"
	"github.com/platedrop/ordercore/pkg/config"
	"github.com/shopspring/decimal"
)

func newTestCalculator() *Calculator {
	return NewCalculator(config.PricingConfig{TaxRate: 0.08, DeliveryFeeCents: 399})
}

func TestCalculateReconcilesToTheCent(t *testing.T) {
	t.Parallel()

	lines := []cart.Line{
		{ItemID: 1, UnitPrice: decimal.NewFromFloat(12.99), Quantity: 3},
		{ItemID: 2, UnitPrice: decimal.NewFromFloat(11.51), Quantity: 1},
	}

	got := newTestCalculator().Calculate(lines, decimal.NewFromFloat(5.00))

	if want := "50.48"; got.Subtotal.StringFixed(2) != want {
		t.Fatalf("subtotal = %s, want %s", got.Subtotal.StringFixed(2), want)
	}
	if want := "4.04"; got.TaxAmount.StringFixed(2) != want {
		t.Fatalf("tax = %s, want %s", got.TaxAmount.StringFixed(2), want)
	}
	if want := "3.99"; got.DeliveryFee.StringFixed(2) != want {
		t.Fatalf("delivery fee = %s, want %s", got.DeliveryFee.StringFixed(2), want)
	}
	if want := "63.51"; got.Total.StringFixed(2) != want {
		t.Fatalf("total = %s, want %s", got.Total.StringFixed(2), want)
	}

	sum := got.Subtotal.Add(got.TaxAmount).Add(got.DeliveryFee).Add(got.TipAmount).Sub(got.DiscountAmount)
	if !sum.Equal(got.Total) {
		t.Fatalf("components sum to %s, total is %s", sum, got.Total)
	}
}

func TestCalculateClampsNegativeTip(t *testing.T) {
	t.Parallel()

	lines := []cart.Line{{ItemID: 1, UnitPrice: decimal.NewFromFloat(10), Quantity: 1}}
	got := newTestCalculator().Calculate(lines, decimal.NewFromFloat(-2))

	if !got.TipAmount.IsZero() {
		t.Fatalf("tip = %s, want 0", got.TipAmount)
	}
}

func TestCalculateEmptyCart(t *testing.T) {
	t.Parallel()

	got := newTestCalculator().Calculate(nil, decimal.Zero)

	if !got.Subtotal.IsZero() || !got.TaxAmount.IsZero() {
		t.Fatalf("expected zero subtotal and tax, got %+v", got)
	}
	if want := "3.99"; got.DeliveryFee.StringFixed(2) != want {
		t.Fatalf("delivery fee = %s, want %s", got.DeliveryFee.StringFixed(2), want)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	t.Parallel()

	lines := []cart.Line{
		{ItemID: 1, UnitPrice: decimal.NewFromFloat(7.77), Quantity: 2},
		{ItemID: 2, UnitPrice: decimal.NewFromFloat(0.03), Quantity: 9},
	}
	calc := newTestCalculator()

	first := calc.Calculate(lines, decimal.NewFromFloat(1.23))
	second := calc.Calculate(lines, decimal.NewFromFloat(1.23))

	if !first.Total.Equal(second.Total) || !first.TaxAmount.Equal(second.TaxAmount) {
		t.Fatalf("calculation not deterministic: %+v vs %+v", first, second)
	}
}
