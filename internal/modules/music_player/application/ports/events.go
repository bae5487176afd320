package ports

import (
	"context"
	"reflect"

	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// EventPublisher hands domain events to the dispatcher.
// Publish must not block: callers usually hold a player state lock that the
// handlers of the published event will need.
type EventPublisher interface {
	Publish(event domain.Event) error
}

// EventSubscriber registers handlers by the concrete event type, e.g.
// reflect.TypeFor[domain.TrackEndedEvent](). Handlers of one bus run in
// publish order.
type EventSubscriber interface {
	Subscribe(eventType reflect.Type, handler func(context.Context, domain.Event)) error
}
