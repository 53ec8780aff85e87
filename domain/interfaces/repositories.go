package interfaces

import (
	"context"
	"time"

	"wagerledger/domain/entities"
	"wagerledger/domain/events"
)

// AccountRepository persists accounts and their balances.
// Lookups return (nil, nil) when the account does not exist.
type AccountRepository interface {
	// GetOrCreate inserts the account with startingBalance unless it exists
	GetOrCreate(ctx context.Context, userID int64, startingBalance int64) (*entities.Account, error)
	GetByUserID(ctx context.Context, userID int64) (*entities.Account, error)
	// GetForUpdate reads the account and holds its row lock until the transaction ends
	GetForUpdate(ctx context.Context, userID int64) (*entities.Account, error)
	// LockForUpdate locks the rows of all given accounts in ascending user id order
	LockForUpdate(ctx context.Context, userIDs []int64) error
	// ApplyDelta adds delta to the balance and returns the balance before and after
	ApplyDelta(ctx context.Context, userID int64, delta int64) (oldBalance, newBalance int64, err error)
	SetLastDailyReward(ctx context.Context, userID int64, at time.Time) error
}

// LedgerRepository appends and reads ledger entries
type LedgerRepository interface {
	Record(ctx context.Context, entry *entities.LedgerEntry) error
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error)
	GetByReference(ctx context.Context, referenceID int64) ([]*entities.LedgerEntry, error)
	// Audit returns (nil, nil) when the account does not exist
	Audit(ctx context.Context, userID int64) (*entities.AccountAudit, error)
	// ListInconsistent returns every account whose balance disagrees with its ledger
	ListInconsistent(ctx context.Context) ([]*entities.AccountAudit, error)
}

// WagerRepository persists wagers.
// Lookups return (nil, nil) when the wager does not exist.
type WagerRepository interface {
	Create(ctx context.Context, wager *entities.Wager) error
	GetByID(ctx context.Context, id int64) (*entities.Wager, error)
	// GetByIDForShare blocks status changes until the transaction ends
	GetByIDForShare(ctx context.Context, id int64) (*entities.Wager, error)
	// GetByIDForUpdate takes the exclusive row lock used by close and resolve
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Wager, error)
	// UpdateStatus performs a guarded transition and fails with
	// ErrIllegalTransition when the stored status is not from
	UpdateStatus(ctx context.Context, id int64, from, to entities.WagerStatus) error
	MarkResolved(ctx context.Context, id int64, winningOption int, resolvedAt time.Time) error
	SetPresentation(ctx context.Context, id int64, handle entities.PresentationHandle) error
	ListByStatus(ctx context.Context, status entities.WagerStatus, limit int) ([]*entities.Wager, error)
}

// BetRepository persists bets
type BetRepository interface {
	// Create inserts the bet and fills ID and CreatedAt. A second bet for the
	// same wager and user fails with *entities.DuplicateBetError.
	Create(ctx context.Context, bet *entities.Bet) error
	GetByWagerAndUser(ctx context.Context, wagerID, userID int64) (*entities.Bet, error)
	GetByWager(ctx context.Context, wagerID int64) ([]*entities.Bet, error)
	GetActiveByUser(ctx context.Context, userID int64) ([]*entities.UserBet, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the owning transaction ends
type TransactionalEventPublisher interface {
	EventPublisher
	// Flush publishes the buffered events after a successful commit
	Flush(ctx context.Context) error
	// Discard drops the buffered events after a rollback
	Discard()
}
