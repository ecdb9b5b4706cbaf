package types

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether the coordinate carries no fix.
func (l LatLng) IsZero() bool {
	return l.Latitude == 0 && l.Longitude == 0
}
