package events

import (
	"fmt"
	"sync"

	"github.com/frankincense-labs/cx-management/internal/shared/goroutine"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// InMemoryEventDispatcher delivers events to subscribed handlers from a
// single buffered queue. Handlers run on their own recovered goroutines so a
// slow notifier never blocks the writer that raised the event.
type InMemoryEventDispatcher struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
	eventCh  chan DomainEvent
	loop     sync.WaitGroup
	workers  *goroutine.Group
	logger   logger.Interface
}

// NewInMemoryEventDispatcher creates a new in-memory event dispatcher
func NewInMemoryEventDispatcher(bufferSize int, log logger.Interface) *InMemoryEventDispatcher {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &InMemoryEventDispatcher{
		handlers: make(map[string][]EventHandler),
		stopCh:   make(chan struct{}),
		eventCh:  make(chan DomainEvent, bufferSize),
		workers:  goroutine.NewGroup(log),
		logger:   log,
	}
}

// Publish enqueues an event. It never blocks; a full queue is an error.
func (d *InMemoryEventDispatcher) Publish(event DomainEvent) error {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()
	if !running {
		return fmt.Errorf("event dispatcher is not running")
	}

	select {
	case d.eventCh <- event:
		return nil
	default:
		return fmt.Errorf("event channel is full")
	}
}

// Subscribe registers a handler for specific event types
func (d *InMemoryEventDispatcher) Subscribe(eventType string, handler EventHandler) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
	return nil
}

// Start starts the event dispatcher
func (d *InMemoryEventDispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("event dispatcher is already running")
	}
	d.running = true

	d.loop.Add(1)
	go func() {
		defer d.loop.Done()
		d.processEvents()
	}()
	return nil
}

// Stop drains queued events, waits for in-flight handlers and stops.
func (d *InMemoryEventDispatcher) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("event dispatcher is not running")
	}
	d.running = false
	d.mu.Unlock()

	close(d.stopCh)
	d.loop.Wait()
	d.workers.Wait()
	return nil
}

func (d *InMemoryEventDispatcher) processEvents() {
	for {
		select {
		case <-d.stopCh:
			for {
				select {
				case event := <-d.eventCh:
					d.handleEvent(event)
				default:
					return
				}
			}
		case event := <-d.eventCh:
			d.handleEvent(event)
		}
	}
}

func (d *InMemoryEventDispatcher) handleEvent(event DomainEvent) {
	d.mu.RLock()
	handlers := d.handlers[event.GetEventType()]
	d.mu.RUnlock()

	for _, handler := range handlers {
		if !handler.CanHandle(event.GetEventType()) {
			continue
		}
		h := handler
		d.workers.Go("event-handler", func() {
			if err := h.Handle(event); err != nil {
				d.logger.Errorw("failed to handle domain event",
					"event_type", event.GetEventType(),
					"aggregate_id", event.GetAggregateID(),
					"error", err,
				)
			}
		})
	}
}

// HandlerFunc adapts a function into an EventHandler for one event type.
type HandlerFunc struct {
	eventType string
	fn        func(DomainEvent) error
}

// NewHandlerFunc creates a handler bound to eventType.
func NewHandlerFunc(eventType string, fn func(DomainEvent) error) *HandlerFunc {
	return &HandlerFunc{eventType: eventType, fn: fn}
}

func (h *HandlerFunc) Handle(event DomainEvent) error {
	return h.fn(event)
}

func (h *HandlerFunc) CanHandle(eventType string) bool {
	return h.eventType == eventType
}
