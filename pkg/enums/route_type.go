package enums

import "fmt"

// RouteType identifies which leg of a delivery trip a route describes.
type RouteType string

const (
	RouteTypeToRestaurant RouteType = "to_restaurant"
	RouteTypeToCustomer   RouteType = "to_customer"
)

// String implements fmt.Stringer.
func (r RouteType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RouteType.
func (r RouteType) IsValid() bool {
	return r == RouteTypeToRestaurant || r == RouteTypeToCustomer
}

// ParseRouteType converts raw input into a RouteType.
func ParseRouteType(value string) (RouteType, error) {
	switch RouteType(value) {
	case RouteTypeToRestaurant:
		return RouteTypeToRestaurant, nil
	case RouteTypeToCustomer:
		return RouteTypeToCustomer, nil
	}
	return "", fmt.Errorf("invalid route type %q", value)
}
