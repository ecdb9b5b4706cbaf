package delivery

import (
	"context"
	"encoding/json"
	"time"

	"github.com/platedrop/ordercore/pkg/logger"
	"github.com/platedrop/ordercore/pkg/redis"
	"github.com/platedrop/ordercore/pkg/types"
)

type geocodeClient interface {
	Geocode(ctx context.Context, address string) (*types.LatLng, error)
}

// Geocoder resolves freeform addresses through the maps provider with a
// read-through cache in front. Resolution is always best-effort.
type Geocoder struct {
	maps  geocodeClient
	cache *redis.Client
	ttl   time.Duration
	logg  *logger.Logger
}

// NewGeocoder wires the cached geocoder. cache may be nil.
func NewGeocoder(maps geocodeClient, cache *redis.Client, ttl time.Duration, logg *logger.Logger) *Geocoder {
	return &Geocoder{maps: maps, cache: cache, ttl: ttl, logg: logg}
}

// Resolve returns coordinates for the address, or nil when the provider
// is unavailable or cannot resolve it. Failures are logged, never
// returned; callers must treat coordinates as optional enrichment.
func (g *Geocoder) Resolve(ctx context.Context, address string) *types.LatLng {
	if g == nil || g.maps == nil || address == "" {
		return nil
	}

	if g.cache != nil && g.ttl > 0 {
		if raw, err := g.cache.Get(ctx, g.cache.GeocodeKey(address)); err == nil {
			var point types.LatLng
			if err := json.Unmarshal([]byte(raw), &point); err == nil {
				return &point
			}
		}
	}

	point, err := g.maps.Geocode(ctx, address)
	if err != nil {
		if g.logg != nil {
			g.logg.Warn(ctx, "geocode failed: "+err.Error())
		}
		return nil
	}
	if point == nil {
		return nil
	}

	if g.cache != nil && g.ttl > 0 {
		if raw, err := json.Marshal(point); err == nil {
			if err := g.cache.Set(ctx, g.cache.GeocodeKey(address), string(raw), g.ttl); err != nil && g.logg != nil {
				g.logg.Warn(ctx, "geocode cache write failed: "+err.Error())
			}
		}
	}
	return point
}
