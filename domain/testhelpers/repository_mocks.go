package testhelpers

import (
	"context"
	"time"

	"wagerledger/domain/entities"
	"wagerledger/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetOrCreate(ctx context.Context, userID int64, startingBalance int64) (*entities.Account, error) {
	args := m.Called(ctx, userID, startingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, userID int64) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, userIDs []int64) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyDelta(ctx context.Context, userID int64, delta int64) (int64, int64, error) {
	args := m.Called(ctx, userID, delta)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) SetLastDailyReward(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetByReference(ctx context.Context, referenceID int64) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Audit(ctx context.Context, userID int64) (*entities.AccountAudit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AccountAudit), args.Error(1)
}

func (m *MockLedgerRepository) ListInconsistent(ctx context.Context) ([]*entities.AccountAudit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AccountAudit), args.Error(1)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByID(ctx context.Context, id int64) (*entities.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByIDForShare(ctx context.Context, id int64) (*entities.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) UpdateStatus(ctx context.Context, id int64, from, to entities.WagerStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockWagerRepository) MarkResolved(ctx context.Context, id int64, winningOption int, resolvedAt time.Time) error {
	args := m.Called(ctx, id, winningOption, resolvedAt)
	return args.Error(0)
}

func (m *MockWagerRepository) SetPresentation(ctx context.Context, id int64, handle entities.PresentationHandle) error {
	args := m.Called(ctx, id, handle)
	return args.Error(0)
}

func (m *MockWagerRepository) ListByStatus(ctx context.Context, status entities.WagerStatus, limit int) ([]*entities.Wager, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByWagerAndUser(ctx context.Context, wagerID, userID int64) (*entities.Bet, error) {
	args := m.Called(ctx, wagerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByWager(ctx context.Context, wagerID int64) ([]*entities.Bet, error) {
	args := m.Called(ctx, wagerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetActiveByUser(ctx context.Context, userID int64) ([]*entities.UserBet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UserBet), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockPresentationNotifier is a mock implementation of PresentationNotifier
type MockPresentationNotifier struct {
	mock.Mock
}

func (m *MockPresentationNotifier) RefreshPresentation(ctx context.Context, wagerID int64) error {
	args := m.Called(ctx, wagerID)
	return args.Error(0)
}

// MockPresenter is a mock implementation of Presenter
type MockPresenter struct {
	mock.Mock
}

func (m *MockPresenter) Render(ctx context.Context, detail *entities.WagerDetail) error {
	args := m.Called(ctx, detail)
	return args.Error(0)
}
