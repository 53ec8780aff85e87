package interfaces

import (
	"context"

	"wagerledger/domain/entities"
)

// LedgerService is the only sanctioned mutator of account balances
type LedgerService interface {
	GetOrCreateAccount(ctx context.Context, userID int64) (*entities.Account, error)
	// AdjustBalance adds amount to the balance and appends one ledger entry.
	// It does not check that the balance stays non-negative.
	AdjustBalance(ctx context.Context, userID int64, amount int64, kind entities.TransactionType, referenceID *int64) (int64, error)
	ClaimDailyReward(ctx context.Context, userID int64) (int64, error)
	AdminAdjust(ctx context.Context, actorID, userID int64, amount int64) (int64, error)
	GetHistory(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error)
	Audit(ctx context.Context, userID int64) (*entities.AccountAudit, error)
	AuditAll(ctx context.Context) ([]*entities.AccountAudit, error)
}

// WagerService manages wager creation, closing and read queries
type WagerService interface {
	CreateWager(ctx context.Context, creatorID int64, title, description string, options []string) (*entities.Wager, error)
	CloseWager(ctx context.Context, wagerID int64) (*entities.Wager, error)
	SetPresentationHandle(ctx context.Context, wagerID int64, handle entities.PresentationHandle) error
	GetWagerDetail(ctx context.Context, wagerID int64) (*entities.WagerDetail, error)
	ListOpenWagers(ctx context.Context, limit int) ([]*entities.Wager, error)
	ListUserActiveBets(ctx context.Context, userID int64) ([]*entities.UserBet, error)
}

// BettingService admits bets
type BettingService interface {
	PlaceBet(ctx context.Context, wagerID, userID int64, optionIndex int, amount int64) (*entities.Bet, error)
}

// ResolutionService resolves wagers and applies the payout plan
type ResolutionService interface {
	Resolve(ctx context.Context, wagerID int64, winningOption int) (*entities.ResolutionResult, error)
}

// PresentationNotifier asks for a wager's public view to be re-rendered.
// Callers treat failures as best effort.
type PresentationNotifier interface {
	RefreshPresentation(ctx context.Context, wagerID int64) error
}

// Presenter renders a wager's current state to its public view
type Presenter interface {
	Render(ctx context.Context, detail *entities.WagerDetail) error
}
