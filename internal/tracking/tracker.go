package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/platedrop/ordercore/pkg/auth"
	pkgerrors "github.com/platedrop/ordercore/pkg/errors"
	"github.com/platedrop/ordercore/pkg/logger"
	"github.com/platedrop/ordercore/pkg/ordersvc"
)

type orderFetcher interface {
	GetOrder(ctx context.Context, orderID string) (*ordersvc.Order, error)
	CancelOrder(ctx context.Context, orderID string) (*ordersvc.Order, error)
}

// ViewState is the presentation state of the tracking screen.
type ViewState string

const (
	ViewLoading   ViewState = "loading"
	ViewTracking  ViewState = "tracking"
	ViewForbidden ViewState = "forbidden"
	ViewNotFound  ViewState = "not_found"
	ViewFailed    ViewState = "failed"
)

// Snapshot is the rendered view of one order at a point in time. Each
// refresh replaces it wholesale; partial merges never happen.
type Snapshot struct {
	State         ViewState       `json:"state"`
	Order         *ordersvc.Order `json:"order,omitempty"`
	StatusLabel   string          `json:"status_label,omitempty"`
	Progress      int             `json:"progress"`
	CancelOffered bool            `json:"cancel_offered"`
	CancelEnabled bool            `json:"cancel_enabled"`
	LastError     string          `json:"last_error,omitempty"`
}

// Tracker polls one order until it reaches a terminal status. Refreshes
// run on a single goroutine, so they are strictly sequential: the next
// tick is not scheduled while a fetch is in flight.
type Tracker struct {
	client   orderFetcher
	orderID  string
	identity auth.Identity
	interval time.Duration
	logg     *logger.Logger

	mu       sync.Mutex
	snapshot Snapshot
	updates  chan Snapshot
	stop     context.CancelFunc
	done     chan struct{}
}

// NewTracker builds a tracker for the given order and viewer.
func NewTracker(client orderFetcher, orderID string, identity auth.Identity, interval time.Duration, logg *logger.Logger) (*Tracker, error) {
	if client == nil {
		return nil, fmt.Errorf("order client required")
	}
	if orderID == "" {
		return nil, fmt.Errorf("order id required")
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Tracker{
		client:   client,
		orderID:  orderID,
		identity: identity,
		interval: interval,
		logg:     logg,
		snapshot: Snapshot{State: ViewLoading},
		updates:  make(chan Snapshot, 1),
	}, nil
}

// Start fetches the order once and then polls while the status is
// non-terminal. It returns immediately; observe progress via Snapshot
// or Updates. Stop (or ctx cancellation) tears the loop down; no timer
// survives teardown.
func (t *Tracker) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	if t.done != nil {
		t.mu.Unlock()
		cancel()
		return
	}
	t.stop = cancel
	t.done = make(chan struct{})
	t.mu.Unlock()

	go t.run(loopCtx)
}

// Stop cancels polling deterministically and waits for the loop to exit.
func (t *Tracker) Stop() {
	t.mu.Lock()
	stop := t.stop
	done := t.done
	t.mu.Unlock()

	if stop != nil {
		stop()
	}
	if done != nil {
		<-done
	}
}

// Snapshot returns the current rendered view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

// Updates delivers the latest snapshot after each change. Stale values
// are dropped in favor of the newest one.
func (t *Tracker) Updates() <-chan Snapshot {
	return t.updates
}

// Cancel requests cancellation of the tracked order. It is accepted
// only while the status still allows it.
func (t *Tracker) Cancel(ctx context.Context) error {
	t.mu.Lock()
	current := t.snapshot.Order
	t.mu.Unlock()

	if current == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not loaded yet")
	}
	if !current.Status.CanCancel() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
	}

	order, err := t.client.CancelOrder(ctx, t.orderID)
	if err != nil {
		return err
	}
	t.apply(order, "")
	return nil
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	if !t.refresh(ctx, true) {
		return
	}

	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	for {
		t.mu.Lock()
		order := t.snapshot.Order
		t.mu.Unlock()
		if order == nil || order.Status.IsTerminal() {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if !t.refresh(ctx, false) {
			return
		}
		timer.Reset(t.interval)
	}
}

// refresh fetches the order and applies the result. The return value
// reports whether polling should continue: forbidden, not-found, and
// first-load failures are dead ends, while a transient refresh error
// keeps the loop alive with the last known order on screen.
func (t *Tracker) refresh(ctx context.Context, firstLoad bool) bool {
	order, err := t.client.GetOrder(ctx, t.orderID)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			t.setState(Snapshot{State: ViewNotFound})
			return false
		}
		if firstLoad {
			t.setState(Snapshot{State: ViewFailed, LastError: err.Error()})
			return false
		}
		if t.logg != nil {
			t.logg.Warn(t.logg.WithOrderID(ctx, t.orderID), "order refresh failed: "+err.Error())
		}
		t.mu.Lock()
		t.snapshot.LastError = err.Error()
		snap := t.snapshot
		t.mu.Unlock()
		t.publish(snap)
		return true
	}

	if order.UserID != t.identity.UserID && t.identity.Role != auth.RoleAdmin {
		t.setState(Snapshot{State: ViewForbidden})
		return false
	}

	t.apply(order, "")
	return true
}

// apply replaces the displayed order wholesale with the fetched one.
func (t *Tracker) apply(order *ordersvc.Order, lastError string) {
	snap := Render(order)
	snap.LastError = lastError
	t.setState(snap)
}

// Render builds the tracking view for a fetched order.
func Render(order *ordersvc.Order) Snapshot {
	terminal := order.Status.IsTerminal()
	return Snapshot{
		State:         ViewTracking,
		Order:         order,
		StatusLabel:   order.Status.DisplayLabel(),
		Progress:      order.Status.Progress(),
		CancelOffered: !terminal,
		CancelEnabled: order.Status.CanCancel(),
	}
}

func (t *Tracker) setState(snap Snapshot) {
	t.mu.Lock()
	t.snapshot = snap
	t.mu.Unlock()
	t.publish(snap)
}

func (t *Tracker) publish(snap Snapshot) {
	for {
		select {
		case t.updates <- snap:
			return
		default:
			select {
			case <-t.updates:
			default:
			}
		}
	}
}
