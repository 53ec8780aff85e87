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

// DefaultListLimit caps list queries when the caller passes no limit
const DefaultListLimit = 25

type wagerService struct {
	wagerRepo      interfaces.WagerRepository
	betRepo        interfaces.BetRepository
	accountRepo    interfaces.AccountRepository
	eventPublisher interfaces.EventPublisher
}

// NewWagerService creates a new wager service
func NewWagerService(
	wagerRepo interfaces.WagerRepository,
	betRepo interfaces.BetRepository,
	accountRepo interfaces.AccountRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.WagerService {
	return &wagerService{
		wagerRepo:      wagerRepo,
		betRepo:        betRepo,
		accountRepo:    accountRepo,
		eventPublisher: eventPublisher,
	}
}

// CreateWager validates and stores a new open wager
func (s *wagerService) CreateWager(ctx context.Context, creatorID int64, title, description string, options []string) (*entities.Wager, error) {
	wager, err := entities.NewWager(creatorID, title, description, options)
	if err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.GetOrCreate(ctx, creatorID, config.Get().StartingBalance); err != nil {
		return nil, fmt.Errorf("failed to ensure creator account: %w", err)
	}

	if err := s.wagerRepo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}

	s.publishStateChange(events.WagerStateChangeEvent{
		WagerID:   wager.ID,
		NewStatus: wager.Status,
	})

	log.WithFields(log.Fields{
		"wagerID":   wager.ID,
		"creatorID": creatorID,
		"options":   len(wager.Options),
	}).Info("Wager created")
	return wager, nil
}

// CloseWager stops an open wager from accepting bets
func (s *wagerService) CloseWager(ctx context.Context, wagerID int64) (*entities.Wager, error) {
	wager, err := s.wagerRepo.GetByIDForUpdate(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, entities.ErrWagerNotFound
	}

	oldStatus := wager.Status
	if err := wager.Close(); err != nil {
		return nil, err
	}

	if err := s.wagerRepo.UpdateStatus(ctx, wagerID, oldStatus, wager.Status); err != nil {
		return nil, fmt.Errorf("failed to close wager: %w", err)
	}

	s.publishStateChange(events.WagerStateChangeEvent{
		WagerID:   wager.ID,
		OldStatus: oldStatus,
		NewStatus: wager.Status,
	})
	return wager, nil
}

// SetPresentationHandle records where the wager is rendered
func (s *wagerService) SetPresentationHandle(ctx context.Context, wagerID int64, handle entities.PresentationHandle) error {
	if handle.MessageID <= 0 || handle.ChannelID <= 0 {
		return entities.ErrInvalidReference
	}

	wager, err := s.wagerRepo.GetByID(ctx, wagerID)
	if err != nil {
		return fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return entities.ErrWagerNotFound
	}

	if err := s.wagerRepo.SetPresentation(ctx, wagerID, handle); err != nil {
		return fmt.Errorf("failed to set presentation handle: %w", err)
	}
	return nil
}

// GetWagerDetail returns a wager with all of its bets
func (s *wagerService) GetWagerDetail(ctx context.Context, wagerID int64) (*entities.WagerDetail, error) {
	wager, err := s.wagerRepo.GetByID(ctx, wagerID)
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
	return &entities.WagerDetail{Wager: wager, Bets: bets}, nil
}

// ListOpenWagers returns open wagers, newest first
func (s *wagerService) ListOpenWagers(ctx context.Context, limit int) ([]*entities.Wager, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	wagers, err := s.wagerRepo.ListByStatus(ctx, entities.WagerStatusOpen, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list open wagers: %w", err)
	}
	return wagers, nil
}

// ListUserActiveBets returns the user's bets on wagers that are still open
func (s *wagerService) ListUserActiveBets(ctx context.Context, userID int64) ([]*entities.UserBet, error) {
	bets, err := s.betRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets for %d: %w", userID, err)
	}
	return bets, nil
}

func (s *wagerService) publishStateChange(event events.WagerStateChangeEvent) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("wagerID", event.WagerID).Error("Failed to publish wager state change event")
	}
}
