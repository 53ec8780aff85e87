package infrastructure

import (
	"context"

	"wagerledger/domain/events"
	"wagerledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// LocalHandler is invoked in-process for every flushed event of its type
type LocalHandler func(ctx context.Context, event events.Event) error

// NATSTransactionalPublisher holds events until flush, then publishes them.
// One instance belongs to exactly one unit of work.
type NATSTransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	localHandlers map[events.EventType][]LocalHandler
	pending       []events.Event
}

// NewNATSTransactionalPublisher creates a new transactional publisher
func NewNATSTransactionalPublisher(realPublisher interfaces.EventPublisher, localHandlers map[events.EventType][]LocalHandler) *NATSTransactionalPublisher {
	return &NATSTransactionalPublisher{
		realPublisher: realPublisher,
		localHandlers: localHandlers,
		pending:       make([]events.Event, 0),
	}
}

// Publish stores an event in the pending queue without immediately publishing
func (p *NATSTransactionalPublisher) Publish(event events.Event) error {
	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"pendingCount": len(p.pending),
	}).Debug("Adding event to transactional publisher pending queue")

	p.pending = append(p.pending, event)
	return nil
}

// Flush runs local handlers and publishes all pending events.
// Called after a successful commit, so individual failures are only logged.
func (p *NATSTransactionalPublisher) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(p.pending)).Debug("Flushing pending events")

	for _, event := range p.pending {
		for _, handler := range p.localHandlers[event.Type()] {
			if err := handler(ctx, event); err != nil {
				log.WithFields(log.Fields{
					"eventType": event.Type(),
					"error":     err,
				}).Error("Local event handler failed")
			}
		}

		if err := p.realPublisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}

	p.pending = p.pending[:0]
	return nil
}

// Discard clears all pending events without publishing them
func (p *NATSTransactionalPublisher) Discard() {
	log.WithField("discardedEventCount", len(p.pending)).Debug("Discarding pending events")
	p.pending = p.pending[:0]
}
