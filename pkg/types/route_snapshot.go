package types

import "github.com/platedrop/ordercore/pkg/enums"

// RouteDestination is the endpoint of the currently active leg.
type RouteDestination struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Location LatLng `json:"location"`
}

// RouteStep is one turn-by-turn instruction.
type RouteStep struct {
	Instruction    string  `json:"instruction"`
	DistanceMeters float64 `json:"distance_meters"`
	DurationSecs   float64 `json:"duration_seconds"`
}

// RouteSnapshot is one routing-service response describing the active
// leg of a delivery trip. It is ephemeral: each snapshot fully replaces
// the previous one and is never persisted.
type RouteSnapshot struct {
	RouteType      enums.RouteType   `json:"route_type"`
	Origin         LatLng            `json:"origin"`
	Destination    RouteDestination  `json:"destination"`
	DistanceMeters float64           `json:"distance_meters"`
	DurationSecs   float64           `json:"duration_seconds"`
	Geometry       string            `json:"geometry"`
	Steps          []RouteStep       `json:"steps"`
	OrderStatus    enums.OrderStatus `json:"order_status"`
}
