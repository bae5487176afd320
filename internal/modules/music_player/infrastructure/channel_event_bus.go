package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for the event channel.
const DefaultEventBufferSize = 100

var (
	// ErrEventBusClosed is returned when publishing to or subscribing on a closed bus.
	ErrEventBusClosed = errors.New("event bus closed")

	// ErrEventBufferFull is returned when an event is dropped because the buffer is full.
	ErrEventBufferFull = errors.New("event buffer full")
)

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// ChannelEventBus provides a channel-based event bus for async event handling.
// It implements both EventPublisher and EventSubscriber interfaces.
//
// Events travel through a single channel and are dispatched by one goroutine,
// so handlers observe them in publish order.
type ChannelEventBus struct {
	events   chan domain.Event
	handlers map[reflect.Type][]func(context.Context, domain.Event)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		events:   make(chan domain.Event, bufferSize),
		handlers: make(map[reflect.Type][]func(context.Context, domain.Event)),
		ctx:      ctx,
		cancel:   cancel,
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

func (b *ChannelEventBus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.events:
			if !ok {
				return
			}
			b.mu.RLock()
			handlers := b.handlers[reflect.TypeOf(event)]
			b.mu.RUnlock()
			for _, handler := range handlers {
				b.invoke(handler, event)
			}
		}
	}
}

// invoke runs a single handler, keeping the dispatcher alive if it panics.
func (b *ChannelEventBus) invoke(handler func(context.Context, domain.Event), event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error(
				"event handler panicked",
				"type", reflect.TypeOf(event).Name(),
				"guild", event.Guild(),
				"panic", r,
			)
		}
	}()
	handler(b.ctx, event)
}

// Publish queues an event for delivery.
// Non-blocking: if the channel buffer is full, the event is dropped with a warning.
// Publishers often hold a player state lock that handlers need, so blocking here
// could deadlock the dispatcher.
func (b *ChannelEventBus) Publish(event domain.Event) error {
	if event == nil {
		return errors.New("cannot publish nil event")
	}

	eventType := reflect.TypeOf(event).Name()

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", eventType)
		return ErrEventBusClosed
	}

	select {
	case b.events <- event:
		slog.Debug("published event", "type", eventType, "guild", event.Guild())
		return nil
	default:
		slog.Warn("event buffer full, dropping event", "type", eventType)
		return fmt.Errorf("failed to publish %s: %w", eventType, ErrEventBufferFull)
	}
}

// Subscribe registers a handler for events of the given concrete type.
func (b *ChannelEventBus) Subscribe(
	eventType reflect.Type,
	handler func(context.Context, domain.Event),
) error {
	if eventType == nil || handler == nil {
		return errors.New("event type and handler are required")
	}
	if !eventType.Implements(reflect.TypeFor[domain.Event]()) {
		return fmt.Errorf("%s does not implement domain.Event", eventType)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// Close closes the event channel and stops the dispatcher.
// After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	// Cancel context to stop the dispatcher
	b.cancel()

	// Close the channel to unblock a pending read
	close(b.events)

	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
