package application

import (
	"context"

	"wagerledger/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases buffered events
	Commit() error

	// Rollback rolls back the transaction and drops buffered events.
	// Calling it after Commit is a no-op.
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	LedgerRepository() interfaces.LedgerRepository
	WagerRepository() interfaces.WagerRepository
	BetRepository() interfaces.BetRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
