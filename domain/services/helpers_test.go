package services

import (
	"testing"

	"wagerledger/config"
	"wagerledger/domain/entities"
	"wagerledger/domain/events"
	"wagerledger/domain/interfaces"
	"wagerledger/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestWagerID         = int64(1)
	TestUserA           = int64(100)
	TestUserB           = int64(200)
	TestUserC           = int64(300)
	TestAdminID         = int64(999999)
	TestStartingBalance = int64(1000)
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	AccountRepo    *testhelpers.MockAccountRepository
	LedgerRepo     *testhelpers.MockLedgerRepository
	WagerRepo      *testhelpers.MockWagerRepository
	BetRepo        *testhelpers.MockBetRepository
	EventPublisher *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks and installs the test config
func NewTestMocks() *TestMocks {
	config.SetTestConfig(config.NewTestConfig())
	return &TestMocks{
		AccountRepo:    &testhelpers.MockAccountRepository{},
		LedgerRepo:     &testhelpers.MockLedgerRepository{},
		WagerRepo:      &testhelpers.MockWagerRepository{},
		BetRepo:        &testhelpers.MockBetRepository{},
		EventPublisher: &testhelpers.MockEventPublisher{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.AccountRepo.AssertExpectations(t)
	m.LedgerRepo.AssertExpectations(t)
	m.WagerRepo.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// Ledger builds a ledger service over the mocks
func (m *TestMocks) Ledger() interfaces.LedgerService {
	return NewLedgerService(m.AccountRepo, m.LedgerRepo, m.EventPublisher)
}

// Betting builds a betting service over the mocks
func (m *TestMocks) Betting() interfaces.BettingService {
	return NewBettingService(m.WagerRepo, m.BetRepo, m.AccountRepo, m.Ledger(), m.EventPublisher)
}

// Resolution builds a resolution service over the mocks
func (m *TestMocks) Resolution() interfaces.ResolutionService {
	return NewResolutionService(m.WagerRepo, m.BetRepo, m.AccountRepo, m.Ledger(), m.EventPublisher)
}

// Wagers builds a wager service over the mocks
func (m *TestMocks) Wagers() interfaces.WagerService {
	return NewWagerService(m.WagerRepo, m.BetRepo, m.AccountRepo, m.EventPublisher)
}

// MockHelper provides common mock setup patterns
type MockHelper struct {
	mocks *TestMocks
}

// NewMockHelper creates a new mock helper
func NewMockHelper(mocks *TestMocks) *MockHelper {
	return &MockHelper{mocks: mocks}
}

// ExpectAccount makes GetOrCreate return the account for its user
func (h *MockHelper) ExpectAccount(account *entities.Account) {
	h.mocks.AccountRepo.On("GetOrCreate", mock.Anything, account.UserID, TestStartingBalance).Return(account, nil)
}

// ExpectAccountLock makes GetForUpdate return the account for its user
func (h *MockHelper) ExpectAccountLock(account *entities.Account) {
	h.mocks.AccountRepo.On("GetForUpdate", mock.Anything, account.UserID).Return(account, nil)
}

// ExpectBalanceChange expects one ApplyDelta plus the matching ledger entry
func (h *MockHelper) ExpectBalanceChange(userID, delta, oldBalance int64, kind entities.TransactionType, referenceID *int64) {
	h.mocks.AccountRepo.On("GetOrCreate", mock.Anything, userID, TestStartingBalance).
		Return(&entities.Account{UserID: userID, Balance: oldBalance, StartingBalance: TestStartingBalance}, nil).Maybe()
	h.mocks.AccountRepo.On("ApplyDelta", mock.Anything, userID, delta).Return(oldBalance, oldBalance+delta, nil).Once()
	h.mocks.LedgerRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		if e.UserID != userID || e.Amount != delta || e.Kind != kind {
			return false
		}
		if referenceID == nil {
			return e.ReferenceID == nil
		}
		return e.ReferenceID != nil && *e.ReferenceID == *referenceID
	})).Return(nil).Once()
}

// ExpectWagerForShare sets up the shared-lock wager lookup
func (h *MockHelper) ExpectWagerForShare(wager *entities.Wager) {
	h.mocks.WagerRepo.On("GetByIDForShare", mock.Anything, wager.ID).Return(wager, nil)
}

// ExpectWagerForUpdate sets up the exclusive-lock wager lookup
func (h *MockHelper) ExpectWagerForUpdate(wager *entities.Wager) {
	h.mocks.WagerRepo.On("GetByIDForUpdate", mock.Anything, wager.ID).Return(wager, nil)
}

// ExpectBets sets up the bet list for a wager
func (h *MockHelper) ExpectBets(wagerID int64, bets []*entities.Bet) {
	h.mocks.BetRepo.On("GetByWager", mock.Anything, wagerID).Return(bets, nil)
}

// ExpectEventPublish sets up event publisher mock expectations
func (h *MockHelper) ExpectEventPublish(eventType events.EventType) {
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil)
}

func int64Ptr(v int64) *int64 {
	return &v
}
