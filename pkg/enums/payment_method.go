package enums

// PaymentMethod enumerates accepted payment methods. Only cash on
// delivery is supported.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
)

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	return p == PaymentMethodCash
}
