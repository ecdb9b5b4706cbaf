package navigation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/platedrop/ordercore/pkg/enums"
	pkgerrors "github.com/platedrop/ordercore/pkg/errors"
	"github.com/platedrop/ordercore/pkg/ordersvc"
	"github.com/platedrop/ordercore/pkg/types"
)

type channelSource struct {
	fixes chan Fix
}

func newChannelSource() *channelSource {
	return &channelSource{fixes: make(chan Fix)}
}

func (s *channelSource) Subscribe(ctx context.Context) (<-chan Fix, error) {
	out := make(chan Fix)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case fix, ok := <-s.fixes:
				if !ok {
					return
				}
				select {
				case out <- fix:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

type stubRouteClient struct {
	mu       sync.Mutex
	snapshot func(position types.LatLng) *types.RouteSnapshot
	navErr   error
	updated  []enums.OrderStatus
	updErr   error
	block    chan struct{}
	started  chan struct{}
}

func (s *stubRouteClient) Navigation(ctx context.Context, orderID string, position types.LatLng) (*types.RouteSnapshot, error) {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.navErr != nil {
		return nil, s.navErr
	}
	return s.snapshot(position), nil
}

func (s *stubRouteClient) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*ordersvc.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updErr != nil {
		return nil, s.updErr
	}
	s.updated = append(s.updated, status)
	return &ordersvc.Order{OrderID: orderID, Status: status}, nil
}

func routeSnapshot(routeType enums.RouteType, status enums.OrderStatus, position types.LatLng) *types.RouteSnapshot {
	return &types.RouteSnapshot{
		RouteType:   routeType,
		Origin:      position,
		OrderStatus: status,
	}
}

func waitForSnapshot(t *testing.T, nav *Navigator) *types.RouteSnapshot {
	t.Helper()
	select {
	case snap := <-nav.Updates():
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestNavigatorFetchesRoutePerFix(t *testing.T) {
	t.Parallel()
	source := newChannelSource()
	client := &stubRouteClient{snapshot: func(position types.LatLng) *types.RouteSnapshot {
		return routeSnapshot(enums.RouteTypeToRestaurant, enums.OrderStatusAssigned, position)
	}}
	nav, err := NewNavigator(client, source, "order-1", nil)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}
	if err := nav.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer nav.Stop()

	source.fixes <- Fix{Position: types.LatLng{Latitude: 1, Longitude: 2}}
	snap := waitForSnapshot(t, nav)

	if snap.Origin.Latitude != 1 || snap.Origin.Longitude != 2 {
		t.Fatalf("snapshot origin = %+v", snap.Origin)
	}
	if nav.Snapshot() == nil {
		t.Fatal("snapshot not stored")
	}
}

func TestNavigatorLatestRequestWins(t *testing.T) {
	t.Parallel()
	source := newChannelSource()
	block := make(chan struct{})
	started := make(chan struct{}, 2)
	client := &stubRouteClient{
		block:   block,
		started: started,
		snapshot: func(position types.LatLng) *types.RouteSnapshot {
			return routeSnapshot(enums.RouteTypeToRestaurant, enums.OrderStatusAssigned, position)
		},
	}
	nav, err := NewNavigator(client, source, "order-1", nil)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}
	if err := nav.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer nav.Stop()

	// First fetch parks on block; the second fix must cancel it.
	source.fixes <- Fix{Position: types.LatLng{Latitude: 1, Longitude: 1}}
	<-started
	source.fixes <- Fix{Position: types.LatLng{Latitude: 2, Longitude: 2}}
	<-started
	close(block)

	snap := waitForSnapshot(t, nav)
	if snap.Origin.Latitude != 2 {
		t.Fatalf("stale response won: %+v", snap.Origin)
	}

	// Only the newest snapshot may ever be stored.
	time.Sleep(20 * time.Millisecond)
	if stored := nav.Snapshot(); stored.Origin.Latitude != 2 {
		t.Fatalf("stored snapshot regressed: %+v", stored.Origin)
	}
}

func TestNavigatorSkipsFailedFixes(t *testing.T) {
	t.Parallel()
	source := newChannelSource()
	client := &stubRouteClient{snapshot: func(position types.LatLng) *types.RouteSnapshot {
		return routeSnapshot(enums.RouteTypeToRestaurant, enums.OrderStatusAssigned, position)
	}}
	nav, err := NewNavigator(client, source, "order-1", nil)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}
	if err := nav.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer nav.Stop()

	source.fixes <- Fix{Err: context.DeadlineExceeded}
	source.fixes <- Fix{Position: types.LatLng{Latitude: 3, Longitude: 3}}

	snap := waitForSnapshot(t, nav)
	if snap.Origin.Latitude != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap.Origin)
	}
}

func TestEligibleActionJointConditions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		routeType enums.RouteType
		status    enums.OrderStatus
		want      Action
	}{
		{"pickup leg assigned", enums.RouteTypeToRestaurant, enums.OrderStatusAssigned, ActionMarkPickedUp},
		{"dropoff leg picked up", enums.RouteTypeToCustomer, enums.OrderStatusPickedUp, ActionMarkDelivered},
		{"pickup leg wrong status", enums.RouteTypeToRestaurant, enums.OrderStatusPickedUp, ActionNone},
		{"dropoff leg wrong status", enums.RouteTypeToCustomer, enums.OrderStatusAssigned, ActionNone},
		{"dropoff leg delivered", enums.RouteTypeToCustomer, enums.OrderStatusDelivered, ActionNone},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			nav, err := NewNavigator(&stubRouteClient{}, newChannelSource(), "order-1", nil)
			if err != nil {
				t.Fatalf("new navigator: %v", err)
			}
			nav.snapshot = routeSnapshot(tc.routeType, tc.status, types.LatLng{})
			if got := nav.EligibleAction(); got != tc.want {
				t.Fatalf("action = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEligibleActionBeforeFirstRoute(t *testing.T) {
	t.Parallel()
	nav, err := NewNavigator(&stubRouteClient{}, newChannelSource(), "order-1", nil)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}
	if got := nav.EligibleAction(); got != ActionNone {
		t.Fatalf("action = %q, want none", got)
	}
}

func TestMarkPickedUpAdvancesStatus(t *testing.T) {
	t.Parallel()
	client := &stubRouteClient{}
	nav, err := NewNavigator(client, newChannelSource(), "order-1", nil)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}
	nav.snapshot = routeSnapshot(enums.RouteTypeToRestaurant, enums.OrderStatusAssigned, types.LatLng{})

	if err := nav.MarkPickedUp(context.Background()); err != nil {
		t.Fatalf("mark picked up: %v", err)
	}
	if len(client.updated) != 1 || client.updated[0] != enums.OrderStatusPickedUp {
		t.Fatalf("updates = %v", client.updated)
	}
	if nav.Snapshot().OrderStatus != enums.OrderStatusPickedUp {
		t.Fatalf("snapshot status = %s", nav.Snapshot().OrderStatus)
	}
}

func TestMarkDeliveredRejectedOnWrongLeg(t *testing.T) {
	t.Parallel()
	client := &stubRouteClient{}
	nav, err := NewNavigator(client, newChannelSource(), "order-1", nil)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}
	nav.snapshot = routeSnapshot(enums.RouteTypeToRestaurant, enums.OrderStatusAssigned, types.LatLng{})

	err = nav.MarkDelivered(context.Background())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.updated) != 0 {
		t.Fatalf("status must not change: %v", client.updated)
	}
}

func TestStopTearsDownCompletely(t *testing.T) {
	t.Parallel()
	source := newChannelSource()
	client := &stubRouteClient{snapshot: func(position types.LatLng) *types.RouteSnapshot {
		return routeSnapshot(enums.RouteTypeToRestaurant, enums.OrderStatusAssigned, position)
	}}
	nav, err := NewNavigator(client, source, "order-1", nil)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}
	if err := nav.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	source.fixes <- Fix{Position: types.LatLng{Latitude: 1, Longitude: 1}}
	waitForSnapshot(t, nav)

	nav.Stop()

	// The loop is gone; a late fix must not be consumed.
	select {
	case source.fixes <- Fix{Position: types.LatLng{Latitude: 9, Longitude: 9}}:
		t.Fatal("fix consumed after Stop")
	case <-time.After(20 * time.Millisecond):
	}
}
