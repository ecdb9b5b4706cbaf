package types

import (
	"fmt"
	"strings"
)

// DeliveryAddress is the drop-off address captured at checkout.
type DeliveryAddress struct {
	Street       string `json:"street" validate:"required,max=200"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"required,min=2,max=50"`
	ZipCode      string `json:"zip_code" validate:"required,min=5,max=10"`
	Instructions string `json:"instructions,omitempty" validate:"max=500"`

	// Resolved coordinates, filled in best-effort at submission time.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// MissingFields lists the required subfields that are blank. Checkout
// refuses to touch the network while any are missing.
func (a DeliveryAddress) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(a.ZipCode) == "" {
		missing = append(missing, "zip_code")
	}
	return missing
}

// Formatted renders the single-line form used for geocoding.
func (a DeliveryAddress) Formatted() string {
	return fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.State, a.ZipCode)
}
