// Package events carries the in-process event bus the domain modules
// use to react to each other (lead intake, assignment, bookings)
// without importing each other.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event published on the bus.
type Event interface {
	// EventName identifies the event type, e.g. "leads.lead.created".
	// Subscriptions are keyed on this value.
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp; domain events embed it.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events. A module handling several event types
// switches on the concrete type inside Handle.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish fans the event out to every handler subscribed to its
	// name. Handlers run asynchronously; failures are logged, never
	// surfaced to the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync runs the handlers inline and returns the first
	// handler error. Used where the caller needs the side effects
	// before replying.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an event name, matching
	// Event.EventName().
	Subscribe(eventName string, handler Handler)
}
