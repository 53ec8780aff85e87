package infrastructure

import (
	"wagerledger/domain/events"

	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher drops events when no message bus is configured
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a publisher that only logs
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish logs the event type and discards the event
func (p *NoopEventPublisher) Publish(event events.Event) error {
	log.WithField("eventType", event.Type()).Debug("Dropping event, no message bus configured")
	return nil
}
