package services

import (
	"context"
	"fmt"
	"time"

	"wagerledger/config"
	"wagerledger/domain/entities"
	"wagerledger/domain/events"
	"wagerledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type ledgerService struct {
	accountRepo    interfaces.AccountRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewLedgerService creates a ledger service bound to the given repositories.
// Repositories are expected to share the caller's transaction.
func NewLedgerService(
	accountRepo interfaces.AccountRepository,
	ledgerRepo interfaces.LedgerRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.LedgerService {
	return &ledgerService{
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// GetOrCreateAccount returns the account, creating it with the configured
// starting balance on first reference
func (s *ledgerService) GetOrCreateAccount(ctx context.Context, userID int64) (*entities.Account, error) {
	account, err := s.accountRepo.GetOrCreate(ctx, userID, config.Get().StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create account %d: %w", userID, err)
	}
	return account, nil
}

// AdjustBalance applies a signed change and appends the matching ledger entry
func (s *ledgerService) AdjustBalance(ctx context.Context, userID int64, amount int64, kind entities.TransactionType, referenceID *int64) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: unknown transaction type %q", entities.ErrValidation, kind)
	}

	if _, err := s.GetOrCreateAccount(ctx, userID); err != nil {
		return 0, err
	}

	oldBalance, newBalance, err := s.accountRepo.ApplyDelta(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to update balance for %d: %w", userID, err)
	}

	entry := &entities.LedgerEntry{
		UserID:      userID,
		Amount:      amount,
		Kind:        kind,
		ReferenceID: referenceID,
	}
	if err := s.ledgerRepo.Record(ctx, entry); err != nil {
		return 0, fmt.Errorf("failed to record ledger entry for %d: %w", userID, err)
	}

	event := events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      oldBalance,
		NewBalance:      newBalance,
		ChangeAmount:    amount,
		TransactionType: kind,
		ReferenceID:     referenceID,
	}
	log.WithFields(log.Fields{
		"userID":          userID,
		"oldBalance":      oldBalance,
		"newBalance":      newBalance,
		"transactionType": kind,
		"changeAmount":    amount,
	}).Debug("Publishing BalanceChangeEvent")
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return newBalance, nil
}

// ClaimDailyReward credits the daily reward once per cooldown window
func (s *ledgerService) ClaimDailyReward(ctx context.Context, userID int64) (int64, error) {
	cfg := config.Get()

	if _, err := s.GetOrCreateAccount(ctx, userID); err != nil {
		return 0, err
	}
	account, err := s.accountRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock account %d: %w", userID, err)
	}
	if account == nil {
		return 0, entities.ErrAccountNotFound
	}

	now := s.now()
	if next := account.NextDailyReward(cfg.DailyRewardCooldown); now.Before(next) {
		return 0, &entities.DailyRewardCooldownError{NextAt: next}
	}

	newBalance, err := s.AdjustBalance(ctx, userID, cfg.DailyRewardAmount, entities.TransactionTypeDailyReward, nil)
	if err != nil {
		return 0, err
	}
	if err := s.accountRepo.SetLastDailyReward(ctx, userID, now); err != nil {
		return 0, fmt.Errorf("failed to record daily reward time: %w", err)
	}
	return newBalance, nil
}

// AdminAdjust applies an operator correction. The actor must be an admin and
// the result must not leave the balance negative.
func (s *ledgerService) AdminAdjust(ctx context.Context, actorID, userID int64, amount int64) (int64, error) {
	if !config.Get().IsAdmin(actorID) {
		return 0, fmt.Errorf("%w: user %d cannot adjust balances", entities.ErrNotAuthorized, actorID)
	}
	if amount == 0 {
		return 0, fmt.Errorf("%w: adjustment cannot be zero", entities.ErrInvalidAmount)
	}

	if _, err := s.GetOrCreateAccount(ctx, userID); err != nil {
		return 0, err
	}
	account, err := s.accountRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock account %d: %w", userID, err)
	}
	if account == nil {
		return 0, entities.ErrAccountNotFound
	}
	if amount < 0 && !account.CanAfford(-amount) {
		return 0, &entities.InsufficientBalanceError{UserID: userID, Balance: account.Balance, Required: -amount}
	}

	newBalance, err := s.AdjustBalance(ctx, userID, amount, entities.TransactionTypeAdminAdjustment, nil)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"actorID":    actorID,
		"userID":     userID,
		"amount":     amount,
		"newBalance": newBalance,
	}).Info("Admin balance adjustment applied")
	return newBalance, nil
}

// GetHistory returns the most recent ledger entries for the user
func (s *ledgerService) GetHistory(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	entries, err := s.ledgerRepo.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for %d: %w", userID, err)
	}
	return entries, nil
}

// Audit compares the stored balance against the ledger
func (s *ledgerService) Audit(ctx context.Context, userID int64) (*entities.AccountAudit, error) {
	audit, err := s.ledgerRepo.Audit(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to audit account %d: %w", userID, err)
	}
	if audit == nil {
		return nil, entities.ErrAccountNotFound
	}
	if !audit.Consistent() {
		log.WithFields(log.Fields{
			"userID":          userID,
			"balance":         audit.Balance,
			"startingBalance": audit.StartingBalance,
			"entrySum":        audit.EntrySum,
			"drift":           audit.Drift(),
		}).Error("Account balance does not match ledger")
	}
	return audit, nil
}

// AuditAll returns every account whose balance disagrees with its ledger
func (s *ledgerService) AuditAll(ctx context.Context) ([]*entities.AccountAudit, error) {
	audits, err := s.ledgerRepo.ListInconsistent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to audit accounts: %w", err)
	}
	if len(audits) > 0 {
		log.WithField("accounts", len(audits)).Error("Ledger audit found inconsistent accounts")
	}
	return audits, nil
}
