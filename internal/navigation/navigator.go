package navigation

import (
	"context"
	"fmt"
	"sync"

	"github.com/platedrop/ordercore/pkg/enums"
	pkgerrors "github.com/platedrop/ordercore/pkg/errors"
	"github.com/platedrop/ordercore/pkg/logger"
	"github.com/platedrop/ordercore/pkg/ordersvc"
	"github.com/platedrop/ordercore/pkg/types"
)

type routeClient interface {
	Navigation(ctx context.Context, orderID string, position types.LatLng) (*types.RouteSnapshot, error)
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*ordersvc.Order, error)
}

// Action is the single status-advancing control currently offered to
// the driver, or empty when none applies.
type Action string

const (
	ActionNone          Action = ""
	ActionMarkPickedUp  Action = "mark_picked_up"
	ActionMarkDelivered Action = "mark_delivered"
)

// Navigator drives the guidance loop for one assigned order: every new
// location fix triggers a route request, and each response replaces the
// rendered snapshot wholesale. The routing service picks the active leg
// from the order's current status.
//
// Concurrent fetches resolve latest-request-wins: issuing a new request
// cancels the in-flight one, so a superseded response can never
// overwrite a newer snapshot.
type Navigator struct {
	client  routeClient
	source  LocationSource
	orderID string
	logg    *logger.Logger

	mu       sync.Mutex
	snapshot *types.RouteSnapshot
	seq      uint64
	inflight context.CancelFunc
	updates  chan *types.RouteSnapshot
	stop     context.CancelFunc
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewNavigator builds a navigator for the given order.
func NewNavigator(client routeClient, source LocationSource, orderID string, logg *logger.Logger) (*Navigator, error) {
	if client == nil {
		return nil, fmt.Errorf("route client required")
	}
	if source == nil {
		return nil, fmt.Errorf("location source required")
	}
	if orderID == "" {
		return nil, fmt.Errorf("order id required")
	}
	return &Navigator{
		client:  client,
		source:  source,
		orderID: orderID,
		logg:    logg,
		updates: make(chan *types.RouteSnapshot, 1),
	}, nil
}

// Start subscribes to the location stream and begins the guidance loop.
func (n *Navigator) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)

	fixes, err := n.source.Subscribe(loopCtx)
	if err != nil {
		cancel()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe to location stream")
	}

	n.mu.Lock()
	if n.done != nil {
		n.mu.Unlock()
		cancel()
		return fmt.Errorf("navigator already started")
	}
	n.stop = cancel
	n.done = make(chan struct{})
	n.mu.Unlock()

	go n.run(loopCtx, fixes)
	return nil
}

// Stop tears the loop down: the location subscription is cancelled, the
// in-flight route fetch aborted, and the goroutines joined. Nothing may
// keep running once Stop returns.
func (n *Navigator) Stop() {
	n.mu.Lock()
	stop := n.stop
	done := n.done
	n.mu.Unlock()

	if stop != nil {
		stop()
	}
	if done != nil {
		<-done
	}
	n.wg.Wait()
}

// Snapshot returns the last route snapshot, or nil before the first
// successful fetch.
func (n *Navigator) Snapshot() *types.RouteSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshot
}

// Updates delivers each accepted snapshot; stale values are dropped for
// the newest one.
func (n *Navigator) Updates() <-chan *types.RouteSnapshot {
	return n.updates
}

// EligibleAction returns the status-advancing button to offer. The
// joint route-type/status conditions keep a driver from advancing the
// order out of step with the leg they are physically on.
func (n *Navigator) EligibleAction() Action {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.snapshot == nil {
		return ActionNone
	}
	switch {
	case n.snapshot.RouteType == enums.RouteTypeToRestaurant && n.snapshot.OrderStatus == enums.OrderStatusAssigned:
		return ActionMarkPickedUp
	case n.snapshot.RouteType == enums.RouteTypeToCustomer && n.snapshot.OrderStatus == enums.OrderStatusPickedUp:
		return ActionMarkDelivered
	}
	return ActionNone
}

// MarkPickedUp advances the order to picked_up. Only valid while the
// to-restaurant leg is active and the order is still assigned.
func (n *Navigator) MarkPickedUp(ctx context.Context) error {
	return n.advance(ctx, ActionMarkPickedUp, enums.OrderStatusPickedUp)
}

// MarkDelivered advances the order to delivered. Only valid while the
// to-customer leg is active and the order is picked up.
func (n *Navigator) MarkDelivered(ctx context.Context) error {
	return n.advance(ctx, ActionMarkDelivered, enums.OrderStatusDelivered)
}

func (n *Navigator) advance(ctx context.Context, required Action, target enums.OrderStatus) error {
	if n.EligibleAction() != required {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "action not available for the current leg")
	}

	order, err := n.client.UpdateStatus(ctx, n.orderID, target)
	if err != nil {
		return err
	}

	n.mu.Lock()
	if n.snapshot != nil {
		updated := *n.snapshot
		updated.OrderStatus = order.Status
		n.snapshot = &updated
	}
	n.mu.Unlock()
	return nil
}

func (n *Navigator) run(ctx context.Context, fixes <-chan Fix) {
	defer close(n.done)

	for {
		select {
		case <-ctx.Done():
			n.cancelInflight()
			return
		case fix, ok := <-fixes:
			if !ok {
				n.cancelInflight()
				return
			}
			if fix.Err != nil {
				// Keep the last snapshot on screen until a fix succeeds.
				if n.logg != nil {
					n.logg.Warn(n.logg.WithOrderID(ctx, n.orderID), "location fix failed: "+fix.Err.Error())
				}
				continue
			}
			n.fetchRoute(ctx, fix.Position)
		}
	}
}

// fetchRoute issues the route request for the newest fix, cancelling
// whatever request is still in flight.
func (n *Navigator) fetchRoute(ctx context.Context, position types.LatLng) {
	fetchCtx, cancel := context.WithCancel(ctx)

	n.mu.Lock()
	if n.inflight != nil {
		n.inflight()
	}
	n.inflight = cancel
	n.seq++
	seq := n.seq
	n.mu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer cancel()

		snapshot, err := n.client.Navigation(fetchCtx, n.orderID, position)
		if err != nil {
			// Graceful degradation: the previous snapshot stays rendered.
			if fetchCtx.Err() == nil && n.logg != nil {
				n.logg.Warn(n.logg.WithOrderID(ctx, n.orderID), "route fetch failed: "+err.Error())
			}
			return
		}

		n.mu.Lock()
		if seq != n.seq {
			n.mu.Unlock()
			return
		}
		n.snapshot = snapshot
		n.mu.Unlock()
		n.publish(snapshot)
	}()
}

func (n *Navigator) cancelInflight() {
	n.mu.Lock()
	if n.inflight != nil {
		n.inflight()
		n.inflight = nil
	}
	n.mu.Unlock()
}

func (n *Navigator) publish(snapshot *types.RouteSnapshot) {
	for {
		select {
		case n.updates <- snapshot:
			return
		default:
			select {
			case <-n.updates:
			default:
			}
		}
	}
}
