package shared

import "context"

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish publishes one or more domain events
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventPublisherFunc adapts a function to EventPublisher
type EventPublisherFunc func(ctx context.Context, events ...DomainEvent) error

// Publish calls f
func (f EventPublisherFunc) Publish(ctx context.Context, events ...DomainEvent) error {
	return f(ctx, events...)
}

// NoopEventPublisher discards all events
var NoopEventPublisher EventPublisher = EventPublisherFunc(func(context.Context, ...DomainEvent) error {
	return nil
})

// EventHandler reacts to published domain events
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
}

// EventHandlerFunc adapts a function to EventHandler
type EventHandlerFunc func(ctx context.Context, event DomainEvent) error

// Handle calls f
func (f EventHandlerFunc) Handle(ctx context.Context, event DomainEvent) error {
	return f(ctx, event)
}

// EventBus publishes events to in-process subscribers
type EventBus interface {
	EventPublisher
	// Subscribe registers handler for the given event types, or for every
	// event when none are given
	Subscribe(handler EventHandler, eventTypes ...string)
}

// PublishPending publishes and clears the pending events of aggs
func PublishPending(ctx context.Context, publisher EventPublisher, aggs ...AggregateRoot) error {
	var events []DomainEvent
	for _, agg := range aggs {
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	if len(events) == 0 || publisher == nil {
		return nil
	}
	return publisher.Publish(ctx, events...)
}
