package application

import (
	"context"
	"time"

	"wagerledger/config"
	"wagerledger/domain/entities"
	"wagerledger/domain/interfaces"
	"wagerledger/domain/services"

	log "github.com/sirupsen/logrus"
)

// MetricsRecorder receives coordinator measurements
type MetricsRecorder interface {
	RecordOperation(operation string, err error, duration time.Duration)
	RecordRetry(operation string)
	RecordResolution(refund bool, remainder int64)
}

// WagerCoordinator is the entry point for every ledger and wager operation.
// Each call runs in its own unit of work with a deadline, is retried as a
// whole on transient storage failures, and triggers a presentation refresh
// once committed.
type WagerCoordinator struct {
	uowFactory UnitOfWorkFactory
	notifier   interfaces.PresentationNotifier
	metrics    MetricsRecorder
	timeout    time.Duration
	retry      retryPolicy
}

// NewWagerCoordinator creates a coordinator. notifier and metrics may be nil.
func NewWagerCoordinator(
	uowFactory UnitOfWorkFactory,
	notifier interfaces.PresentationNotifier,
	metrics MetricsRecorder,
) *WagerCoordinator {
	cfg := config.Get()
	return &WagerCoordinator{
		uowFactory: uowFactory,
		notifier:   notifier,
		metrics:    metrics,
		timeout:    cfg.OperationTimeout,
		retry:      newRetryPolicy(cfg.MaxRetryElapsed),
	}
}

// serviceSet holds the domain services bound to one unit of work
type serviceSet struct {
	ledger     interfaces.LedgerService
	wagers     interfaces.WagerService
	betting    interfaces.BettingService
	resolution interfaces.ResolutionService
}

func newServiceSet(uow UnitOfWork) *serviceSet {
	ledger := services.NewLedgerService(uow.AccountRepository(), uow.LedgerRepository(), uow.EventBus())
	return &serviceSet{
		ledger:     ledger,
		wagers:     services.NewWagerService(uow.WagerRepository(), uow.BetRepository(), uow.AccountRepository(), uow.EventBus()),
		betting:    services.NewBettingService(uow.WagerRepository(), uow.BetRepository(), uow.AccountRepository(), ledger, uow.EventBus()),
		resolution: services.NewResolutionService(uow.WagerRepository(), uow.BetRepository(), uow.AccountRepository(), ledger, uow.EventBus()),
	}
}

// execute runs fn in a fresh unit of work per attempt and commits on success
func execute[T any](ctx context.Context, c *WagerCoordinator, operation string, fn func(ctx context.Context, s *serviceSet) (T, error)) (T, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	onRetry := func() {
		if c.metrics != nil {
			c.metrics.RecordRetry(operation)
		}
	}

	result, err := withRetry(ctx, c.retry, operation, onRetry, func(ctx context.Context) (T, error) {
		var zero T

		uow := c.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return zero, err
		}
		defer uow.Rollback()

		result, err := fn(ctx, newServiceSet(uow))
		if err != nil {
			return zero, err
		}

		if err := uow.Commit(); err != nil {
			return zero, err
		}
		return result, nil
	})

	if c.metrics != nil {
		c.metrics.RecordOperation(operation, err, time.Since(start))
	}
	if err != nil {
		log.WithFields(log.Fields{
			"operation": operation,
			"error":     err,
		}).Debug("Operation failed")
	}
	return result, err
}

// refresh asks for the wager's public view to be re-rendered. The state
// change is already committed, so failures are only logged.
func (c *WagerCoordinator) refresh(ctx context.Context, wagerID int64) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.RefreshPresentation(context.WithoutCancel(ctx), wagerID); err != nil {
		log.WithFields(log.Fields{
			"wager_id": wagerID,
			"error":    err,
		}).Warn("Failed to refresh wager presentation")
	}
}

// GetOrCreateAccount returns the account, creating it on first reference
func (c *WagerCoordinator) GetOrCreateAccount(ctx context.Context, userID int64) (*entities.Account, error) {
	return execute(ctx, c, "get_or_create_account", func(ctx context.Context, s *serviceSet) (*entities.Account, error) {
		return s.ledger.GetOrCreateAccount(ctx, userID)
	})
}

// AdjustBalance applies a signed amount with an audit entry and returns the new balance
func (c *WagerCoordinator) AdjustBalance(ctx context.Context, userID int64, amount int64, kind entities.TransactionType, referenceID *int64) (int64, error) {
	return execute(ctx, c, "adjust_balance", func(ctx context.Context, s *serviceSet) (int64, error) {
		return s.ledger.AdjustBalance(ctx, userID, amount, kind, referenceID)
	})
}

// PlaceBet admits one bet and debits the stake atomically
func (c *WagerCoordinator) PlaceBet(ctx context.Context, wagerID, userID int64, optionIndex int, amount int64) (*entities.Bet, error) {
	bet, err := execute(ctx, c, "place_bet", func(ctx context.Context, s *serviceSet) (*entities.Bet, error) {
		return s.betting.PlaceBet(ctx, wagerID, userID, optionIndex, amount)
	})
	if err != nil {
		return nil, err
	}

	c.refresh(ctx, wagerID)
	return bet, nil
}

// Resolve declares the winning option and pays out every bet atomically
func (c *WagerCoordinator) Resolve(ctx context.Context, wagerID int64, winningOption int) (*entities.ResolutionResult, error) {
	result, err := execute(ctx, c, "resolve", func(ctx context.Context, s *serviceSet) (*entities.ResolutionResult, error) {
		return s.resolution.Resolve(ctx, wagerID, winningOption)
	})
	if err != nil {
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.RecordResolution(result.IsRefund(), result.Plan.Remainder)
	}
	c.refresh(ctx, wagerID)
	return result, nil
}

// Close stops a wager from accepting bets
func (c *WagerCoordinator) Close(ctx context.Context, wagerID int64) (*entities.Wager, error) {
	wager, err := execute(ctx, c, "close", func(ctx context.Context, s *serviceSet) (*entities.Wager, error) {
		return s.wagers.CloseWager(ctx, wagerID)
	})
	if err != nil {
		return nil, err
	}

	c.refresh(ctx, wagerID)
	return wager, nil
}

// CreateWager validates and stores a new open wager
func (c *WagerCoordinator) CreateWager(ctx context.Context, creatorID int64, title, description string, options []string) (*entities.Wager, error) {
	return execute(ctx, c, "create_wager", func(ctx context.Context, s *serviceSet) (*entities.Wager, error) {
		return s.wagers.CreateWager(ctx, creatorID, title, description, options)
	})
}

// GetWager returns the wager with all of its bets
func (c *WagerCoordinator) GetWager(ctx context.Context, wagerID int64) (*entities.WagerDetail, error) {
	return execute(ctx, c, "get_wager", func(ctx context.Context, s *serviceSet) (*entities.WagerDetail, error) {
		return s.wagers.GetWagerDetail(ctx, wagerID)
	})
}

// ListOpenWagers returns the newest open wagers
func (c *WagerCoordinator) ListOpenWagers(ctx context.Context, limit int) ([]*entities.Wager, error) {
	return execute(ctx, c, "list_open_wagers", func(ctx context.Context, s *serviceSet) ([]*entities.Wager, error) {
		return s.wagers.ListOpenWagers(ctx, limit)
	})
}

// ListUserActiveBets returns the user's bets on unresolved wagers
func (c *WagerCoordinator) ListUserActiveBets(ctx context.Context, userID int64) ([]*entities.UserBet, error) {
	return execute(ctx, c, "list_user_active_bets", func(ctx context.Context, s *serviceSet) ([]*entities.UserBet, error) {
		return s.wagers.ListUserActiveBets(ctx, userID)
	})
}

// SetPresentationHandle records where the wager is displayed and renders it there
func (c *WagerCoordinator) SetPresentationHandle(ctx context.Context, wagerID int64, handle entities.PresentationHandle) error {
	_, err := execute(ctx, c, "set_presentation_handle", func(ctx context.Context, s *serviceSet) (struct{}, error) {
		return struct{}{}, s.wagers.SetPresentationHandle(ctx, wagerID, handle)
	})
	if err != nil {
		return err
	}

	c.refresh(ctx, wagerID)
	return nil
}

// ClaimDailyReward credits the daily reward once per cooldown window
func (c *WagerCoordinator) ClaimDailyReward(ctx context.Context, userID int64) (int64, error) {
	return execute(ctx, c, "claim_daily_reward", func(ctx context.Context, s *serviceSet) (int64, error) {
		return s.ledger.ClaimDailyReward(ctx, userID)
	})
}

// AdminAdjust lets an operator credit or debit an account
func (c *WagerCoordinator) AdminAdjust(ctx context.Context, actorID, userID int64, amount int64) (int64, error) {
	return execute(ctx, c, "admin_adjust", func(ctx context.Context, s *serviceSet) (int64, error) {
		return s.ledger.AdminAdjust(ctx, actorID, userID, amount)
	})
}

// History returns the user's newest ledger entries
func (c *WagerCoordinator) History(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error) {
	return execute(ctx, c, "history", func(ctx context.Context, s *serviceSet) ([]*entities.LedgerEntry, error) {
		return s.ledger.GetHistory(ctx, userID, limit)
	})
}

// Audit compares one account's balance with its ledger
func (c *WagerCoordinator) Audit(ctx context.Context, userID int64) (*entities.AccountAudit, error) {
	return execute(ctx, c, "audit", func(ctx context.Context, s *serviceSet) (*entities.AccountAudit, error) {
		return s.ledger.Audit(ctx, userID)
	})
}

// AuditAll returns every account whose balance disagrees with its ledger
func (c *WagerCoordinator) AuditAll(ctx context.Context) ([]*entities.AccountAudit, error) {
	return execute(ctx, c, "audit_all", func(ctx context.Context, s *serviceSet) ([]*entities.AccountAudit, error) {
		return s.ledger.AuditAll(ctx)
	})
}
