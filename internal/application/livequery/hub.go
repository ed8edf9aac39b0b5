package livequery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/frankincense-labs/cx-management/internal/shared/goroutine"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// ErrHubClosed is delivered to subscriptions created after Close.
var ErrHubClosed = errors.New("live query hub is closed")

// Notifier receives committed changes. Repositories call it after every write.
type Notifier interface {
	Notify(ctx context.Context, change Change)
}

// Source evaluates a query against the backing store.
type Source[T any] interface {
	Fetch(ctx context.Context, q Query) ([]T, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, q Query) ([]T, error)

func (f SourceFunc[T]) Fetch(ctx context.Context, q Query) ([]T, error) {
	return f(ctx, q)
}

// Snapshot is one delivery of a subscription. A snapshot with Err set is
// terminal: the watch has been released and nothing follows it.
type Snapshot[T any] struct {
	Items   []T
	Err     error
	Version uint64
}

// Terminal reports whether this is the final, failed delivery.
func (s Snapshot[T]) Terminal() bool {
	return s.Err != nil
}

// Disposer detaches a subscription. It is idempotent and safe to call from
// inside the subscription's own callback.
type Disposer func()

type registration struct {
	query Query
	wake  chan struct{}
}

// Hub routes change notifications to the subscriptions they may affect.
// Each subscription re-evaluates its query on its own goroutine, so a slow
// consumer only delays itself.
type Hub struct {
	mu       sync.RWMutex
	watchers map[Collection]map[uint64]*registration
	nextID   uint64
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	group  *goroutine.Group
	logger logger.Interface
}

func NewHub(log logger.Interface) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		watchers: make(map[Collection]map[uint64]*registration),
		ctx:      ctx,
		cancel:   cancel,
		group:    goroutine.NewGroup(log),
		logger:   log,
	}
}

// Notify wakes every subscription whose query may match the change. Wakes
// coalesce: a subscription that is already due for re-evaluation picks up
// this change in that pass.
func (h *Hub) Notify(_ context.Context, change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, reg := range h.watchers[change.Collection] {
		if !reg.query.Matches(change) {
			continue
		}
		select {
		case reg.wake <- struct{}{}:
		default:
		}
	}
}

// ActiveSubscriptions returns the number of undisposed subscriptions.
func (h *Hub) ActiveSubscriptions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, regs := range h.watchers {
		n += len(regs)
	}
	return n
}

// Close releases every subscription and waits for in-flight deliveries.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.watchers = make(map[Collection]map[uint64]*registration)
	h.mu.Unlock()

	h.cancel()
	h.group.Wait()
}

func (h *Hub) register(reg *registration) (uint64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, false
	}
	h.nextID++
	regs, ok := h.watchers[reg.query.Collection]
	if !ok {
		regs = make(map[uint64]*registration)
		h.watchers[reg.query.Collection] = regs
	}
	regs[h.nextID] = reg
	return h.nextID, true
}

func (h *Hub) unregister(id uint64, c Collection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if regs, ok := h.watchers[c]; ok {
		delete(regs, id)
		if len(regs) == 0 {
			delete(h.watchers, c)
		}
	}
}

// Watch subscribes callback to q. The callback receives the current result
// set, then a fresh result set after every matching change, in order, until
// the returned Disposer is called. If the source fails, the callback receives
// one terminal snapshot carrying the error and the watch is released.
func Watch[T any](h *Hub, q Query, src Source[T], callback func(Snapshot[T])) Disposer {
	reg := &registration{query: q, wake: make(chan struct{}, 1)}
	id, ok := h.register(reg)
	if !ok {
		callback(Snapshot[T]{Err: ErrHubClosed, Version: 1})
		return func() {}
	}

	ctx, cancel := context.WithCancel(h.ctx)
	var (
		once     sync.Once
		disposed atomic.Bool
	)
	dispose := func() {
		once.Do(func() {
			disposed.Store(true)
			h.unregister(id, q.Collection)
			cancel()
		})
	}

	// Registered before the first fetch so no change can slip between the
	// initial evaluation and the first notification.
	reg.wake <- struct{}{}

	h.group.Go("livequery", func() {
		var version uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-reg.wake:
			}

			items, err := src.Fetch(ctx, q)
			if disposed.Load() || ctx.Err() != nil {
				return
			}
			version++
			if err != nil {
				h.logger.Warnw("live query failed, releasing watch",
					"query", q.String(),
					"error", err,
				)
				callback(Snapshot[T]{Err: err, Version: version})
				dispose()
				return
			}
			callback(Snapshot[T]{Items: items, Version: version})
		}
	})

	return dispose
}

// WatchNewestFirst is Watch for record types with a creation time. Queries
// without a sort key are sorted locally, newest first, on every delivery.
func WatchNewestFirst[T Timestamped](h *Hub, q Query, src Source[T], callback func(Snapshot[T])) Disposer {
	if q.OrderBy != "" {
		return Watch(h, q, src, callback)
	}
	return Watch(h, q, src, func(s Snapshot[T]) {
		SortNewestFirst(s.Items)
		callback(s)
	})
}
