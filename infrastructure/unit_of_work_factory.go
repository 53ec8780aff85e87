package infrastructure

import (
	"context"

	"wagerledger/application"
	"wagerledger/database"
	"wagerledger/domain/events"
	"wagerledger/domain/interfaces"
	"wagerledger/repository"
)

// UnitOfWorkFactory implements application.UnitOfWorkFactory.
// Every unit of work gets its own transactional publisher in front of the
// shared event publisher.
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
	localHandlers  map[events.EventType][]LocalHandler
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
		localHandlers:  make(map[events.EventType][]LocalHandler),
	}
}

// RegisterLocalHandler registers a handler invoked in-process after commit.
// Must be called before the factory is shared between goroutines.
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error) {
	f.localHandlers[eventType] = append(f.localHandlers[eventType], handler)
}

// Create creates a new UnitOfWork with a fresh transactional publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewNATSTransactionalPublisher(f.eventPublisher, f.localHandlers))
}
