package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/platedrop/ordercore/pkg/logger"
	"github.com/platedrop/ordercore/pkg/maps"
	"github.com/platedrop/ordercore/pkg/ordersvc"
	"github.com/platedrop/ordercore/pkg/redis"
	"github.com/platedrop/ordercore/pkg/types"
)

type readyLister interface {
	ReadyOrders(ctx context.Context, position types.LatLng) ([]ordersvc.ReadyOrder, error)
}

// MatrixClient computes road distances from one source to many
// destinations, preserving destination order.
type MatrixClient interface {
	DrivingMatrix(ctx context.Context, source types.LatLng, destinations []types.LatLng) ([]maps.MatrixEntry, error)
}

// EnrichedOrder is a ready order annotated with road distance and
// duration from the driver's position.
type EnrichedOrder struct {
	ordersvc.ReadyOrder

	ByRoadDistanceMeters  *float64 `json:"by_road_distance_meters"`
	ByRoadDistanceKm      *float64 `json:"by_road_distance_km"`
	ByRoadDurationSeconds *float64 `json:"by_road_duration_seconds"`
	ByRoadDurationMinutes *float64 `json:"by_road_duration_minutes"`
	IsReachableByRoad     bool     `json:"is_reachable_by_road"`
}

// ReadyFeed lists unassigned ready orders for drivers, sorted by what
// the road says rather than straight-line distance.
type ReadyFeed struct {
	orders       readyLister
	matrix       MatrixClient
	cache        *redis.Client
	logg         *logger.Logger
	maxPerMatrix int
	cacheTTL     time.Duration
}

// NewReadyFeed wires the feed. matrix and cache may be nil; the feed
// then serves orders without road annotations, or without caching.
func NewReadyFeed(orders readyLister, matrix MatrixClient, cache *redis.Client, logg *logger.Logger, maxPerMatrix int, cacheTTL time.Duration) (*ReadyFeed, error) {
	if orders == nil {
		return nil, fmt.Errorf("order client required")
	}
	if maxPerMatrix <= 0 {
		maxPerMatrix = 24
	}
	return &ReadyFeed{
		orders:       orders,
		matrix:       matrix,
		cache:        cache,
		logg:         logg,
		maxPerMatrix: maxPerMatrix,
		cacheTTL:     cacheTTL,
	}, nil
}

// Fetch returns the enriched ready-order feed for a driver position.
// Matrix failures degrade to unreachable entries, never an error.
func (f *ReadyFeed) Fetch(ctx context.Context, driver types.LatLng) ([]EnrichedOrder, error) {
	if cached := f.fromCache(ctx, driver); cached != nil {
		return cached, nil
	}

	orders, err := f.orders.ReadyOrders(ctx, driver)
	if err != nil {
		return nil, err
	}

	enriched := f.enrich(ctx, driver, orders)
	f.toCache(ctx, driver, enriched)
	return enriched, nil
}

func (f *ReadyFeed) enrich(ctx context.Context, driver types.LatLng, orders []ordersvc.ReadyOrder) []EnrichedOrder {
	// One matrix column per distinct restaurant, preserving first-seen order.
	var restaurantIDs []int64
	coordsByRestaurant := map[int64]types.LatLng{}
	for _, order := range orders {
		if _, seen := coordsByRestaurant[order.RestaurantID]; seen {
			continue
		}
		if order.Restaurant.Latitude == nil || order.Restaurant.Longitude == nil {
			continue
		}
		restaurantIDs = append(restaurantIDs, order.RestaurantID)
		coordsByRestaurant[order.RestaurantID] = types.LatLng{
			Latitude:  *order.Restaurant.Latitude,
			Longitude: *order.Restaurant.Longitude,
		}
	}

	entryByRestaurant := map[int64]maps.MatrixEntry{}
	if f.matrix != nil {
		for start := 0; start < len(restaurantIDs); start += f.maxPerMatrix {
			end := start + f.maxPerMatrix
			if end > len(restaurantIDs) {
				end = len(restaurantIDs)
			}
			chunk := restaurantIDs[start:end]

			dests := make([]types.LatLng, 0, len(chunk))
			for _, id := range chunk {
				dests = append(dests, coordsByRestaurant[id])
			}

			entries, err := f.matrix.DrivingMatrix(ctx, driver, dests)
			if err != nil {
				if f.logg != nil {
					f.logg.Warn(ctx, "driving matrix failed: "+err.Error())
				}
				continue
			}
			for i, id := range chunk {
				if i < len(entries) {
					entryByRestaurant[id] = entries[i]
				}
			}
		}
	}

	enriched := make([]EnrichedOrder, 0, len(orders))
	for _, order := range orders {
		row := EnrichedOrder{ReadyOrder: order}
		entry := entryByRestaurant[order.RestaurantID]
		if entry.DistanceMeters != nil {
			meters := *entry.DistanceMeters
			km := math.Round(meters/1000.0*1000) / 1000
			row.ByRoadDistanceMeters = &meters
			row.ByRoadDistanceKm = &km
			row.IsReachableByRoad = true
		}
		if entry.DurationSecs != nil {
			secs := *entry.DurationSecs
			minutes := math.Round(secs/60.0*10) / 10
			row.ByRoadDurationSeconds = &secs
			row.ByRoadDurationMinutes = &minutes
		}
		enriched = append(enriched, row)
	}

	// Reachable orders first, nearest by road; unreachable ones keep
	// their backend order at the end.
	sort.SliceStable(enriched, func(i, j int) bool {
		a, b := enriched[i].ByRoadDistanceMeters, enriched[j].ByRoadDistanceMeters
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
	return enriched
}

func (f *ReadyFeed) fromCache(ctx context.Context, driver types.LatLng) []EnrichedOrder {
	if f.cache == nil || f.cacheTTL <= 0 {
		return nil
	}
	raw, err := f.cache.Get(ctx, f.cache.ReadyFeedKey(positionBucket(driver)))
	if err != nil {
		if err != redis.Nil && f.logg != nil {
			f.logg.Warn(ctx, "ready feed cache read failed: "+err.Error())
		}
		return nil
	}
	var feed []EnrichedOrder
	if err := json.Unmarshal([]byte(raw), &feed); err != nil {
		return nil
	}
	return feed
}

func (f *ReadyFeed) toCache(ctx context.Context, driver types.LatLng, feed []EnrichedOrder) {
	if f.cache == nil || f.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(feed)
	if err != nil {
		return
	}
	if err := f.cache.Set(ctx, f.cache.ReadyFeedKey(positionBucket(driver)), string(raw), f.cacheTTL); err != nil && f.logg != nil {
		f.logg.Warn(ctx, "ready feed cache write failed: "+err.Error())
	}
}

// positionBucket quantizes a position to ~100m so nearby refreshes
// share a cache entry.
func positionBucket(p types.LatLng) string {
	return fmt.Sprintf("%.3f:%.3f", p.Latitude, p.Longitude)
}
