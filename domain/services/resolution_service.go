package services

import (
	"context"
	"fmt"
	"time"

	"wagerledger/domain/entities"
	"wagerledger/domain/events"
	"wagerledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type resolutionService struct {
	wagerRepo      interfaces.WagerRepository
	betRepo        interfaces.BetRepository
	accountRepo    interfaces.AccountRepository
	ledgerService  interfaces.LedgerService
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewResolutionService creates a new resolution service
func NewResolutionService(
	wagerRepo interfaces.WagerRepository,
	betRepo interfaces.BetRepository,
	accountRepo interfaces.AccountRepository,
	ledgerService interfaces.LedgerService,
	eventPublisher interfaces.EventPublisher,
) interfaces.ResolutionService {
	return &resolutionService{
		wagerRepo:      wagerRepo,
		betRepo:        betRepo,
		accountRepo:    accountRepo,
		ledgerService:  ledgerService,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// Resolve declares the winning option and credits the payout plan.
// Every write happens in the caller's transaction; on any error the caller
// rolls back and the wager keeps its previous status with no credits applied.
func (s *resolutionService) Resolve(ctx context.Context, wagerID int64, winningOption int) (*entities.ResolutionResult, error) {
	wager, err := s.wagerRepo.GetByIDForUpdate(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, entities.ErrWagerNotFound
	}

	bets, err := s.betRepo.GetByWager(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	oldStatus := wager.Status
	if err := wager.Resolve(winningOption, len(bets), s.now().UTC()); err != nil {
		return nil, err
	}

	plan, err := CalculatePayouts(bets, winningOption)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.LockForUpdate(ctx, plan.UserIDs()); err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}

	for _, entry := range plan.Entries {
		betID := entry.BetID
		if _, err := s.ledgerService.AdjustBalance(ctx, entry.UserID, entry.Amount, entry.Kind, &betID); err != nil {
			return nil, fmt.Errorf("failed to credit bet %d: %w", entry.BetID, err)
		}
	}

	if err := s.wagerRepo.MarkResolved(ctx, wagerID, winningOption, *wager.ResolvedAt); err != nil {
		return nil, fmt.Errorf("failed to mark wager resolved: %w", err)
	}

	if err := s.eventPublisher.Publish(events.WagerStateChangeEvent{
		WagerID:       wagerID,
		OldStatus:     oldStatus,
		NewStatus:     wager.Status,
		WinningOption: wager.WinningOption,
		Refund:        plan.Refund,
	}); err != nil {
		log.WithError(err).Error("Failed to publish wager state change event")
	}

	log.WithFields(log.Fields{
		"wagerID":       wagerID,
		"winningOption": winningOption,
		"refund":        plan.Refund,
		"totalPool":     plan.TotalPool,
		"paid":          plan.TotalPaid(),
		"remainder":     plan.Remainder,
		"credits":       len(plan.Entries),
	}).Info("Wager resolved")

	return &entities.ResolutionResult{Wager: wager, Plan: plan}, nil
}
