package services

import (
	"context"
	"fmt"

	"wagerledger/config"
	"wagerledger/domain/entities"
	"wagerledger/domain/events"
	"wagerledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type bettingService struct {
	wagerRepo      interfaces.WagerRepository
	betRepo        interfaces.BetRepository
	accountRepo    interfaces.AccountRepository
	ledgerService  interfaces.LedgerService
	eventPublisher interfaces.EventPublisher
}

// NewBettingService creates a new betting service
func NewBettingService(
	wagerRepo interfaces.WagerRepository,
	betRepo interfaces.BetRepository,
	accountRepo interfaces.AccountRepository,
	ledgerService interfaces.LedgerService,
	eventPublisher interfaces.EventPublisher,
) interfaces.BettingService {
	return &bettingService{
		wagerRepo:      wagerRepo,
		betRepo:        betRepo,
		accountRepo:    accountRepo,
		ledgerService:  ledgerService,
		eventPublisher: eventPublisher,
	}
}

// PlaceBet admits a single bet for the user on the wager.
//
// Must run inside one transaction: the wager row is held FOR SHARE so it
// cannot be closed or resolved underneath us, and the account row FOR UPDATE
// so a second bet by the same user waits and then sees the first one.
func (s *bettingService) PlaceBet(ctx context.Context, wagerID, userID int64, optionIndex int, amount int64) (*entities.Bet, error) {
	minBet := config.Get().MinBetAmount
	if amount < minBet {
		return nil, fmt.Errorf("%w: minimum bet is %d, got %d", entities.ErrAmountTooSmall, minBet, amount)
	}

	wager, err := s.wagerRepo.GetByIDForShare(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, entities.ErrWagerNotFound
	}

	if err := wager.CheckAcceptsBets(); err != nil {
		return nil, err
	}

	if !wager.ValidOption(optionIndex) {
		return nil, &entities.InvalidOptionError{Option: optionIndex, OptionCount: len(wager.Options)}
	}

	if _, err := s.ledgerService.GetOrCreateAccount(ctx, userID); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, entities.ErrAccountNotFound
	}

	existing, err := s.betRepo.GetByWagerAndUser(ctx, wagerID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing bet: %w", err)
	}
	if existing != nil {
		return nil, &entities.DuplicateBetError{WagerID: wagerID, UserID: userID, Existing: existing}
	}

	if !account.CanAfford(amount) {
		return nil, &entities.InsufficientBalanceError{UserID: userID, Balance: account.Balance, Required: amount}
	}

	bet := &entities.Bet{
		WagerID:     wagerID,
		UserID:      userID,
		OptionIndex: optionIndex,
		Amount:      amount,
	}
	if err := s.betRepo.Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	// The bet id exists now, so the debit is linked from the start.
	betID := bet.ID
	if _, err := s.ledgerService.AdjustBalance(ctx, userID, -amount, entities.TransactionTypeBetPlaced, &betID); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.BetPlacedEvent{
		BetID:       bet.ID,
		WagerID:     wagerID,
		UserID:      userID,
		OptionIndex: optionIndex,
		Amount:      amount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish bet placed event")
	}

	log.WithFields(log.Fields{
		"betID":   bet.ID,
		"wagerID": wagerID,
		"userID":  userID,
		"option":  optionIndex,
		"amount":  amount,
	}).Info("Bet placed")
	return bet, nil
}
