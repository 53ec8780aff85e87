package infrastructure

import (
	"fmt"

	"wagerledger/domain/events"
)

// DomainEventStream is the JetStream stream holding every published event
const DomainEventStream = "ledger_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return "ledger.balance_changed"
	case events.EventTypeBetPlaced:
		return "wagers.bet_placed"
	case events.EventTypeWagerStateChange:
		return "wagers.state_changed"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"ledger.balance_changed",
		"wagers.bet_placed",
		"wagers.state_changed",
	}
}
