package services

import (
	"context"
	"errors"
	"testing"

	"wagerledger/domain/entities"
	"wagerledger/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBettingService_PlaceBet_Success(t *testing.T) {
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	ctx := context.Background()

	wager := newTestWager(entities.WagerStatusOpen)
	account := newTestAccount(TestUserA, 1000)

	helper.ExpectWagerForShare(wager)
	helper.ExpectAccount(account)
	helper.ExpectAccountLock(account)
	mocks.BetRepo.On("GetByWagerAndUser", mock.Anything, TestWagerID, TestUserA).Return(nil, nil)
	mocks.BetRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Bet")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entities.Bet).ID = 77
		}).Return(nil)
	helper.ExpectBalanceChange(TestUserA, -300, 1000, entities.TransactionTypeBetPlaced, int64Ptr(77))
	helper.ExpectEventPublish(events.EventTypeBalanceChange)
	helper.ExpectEventPublish(events.EventTypeBetPlaced)

	bet, err := mocks.Betting().PlaceBet(ctx, TestWagerID, TestUserA, 0, 300)
	require.NoError(t, err)

	assert.Equal(t, int64(77), bet.ID)
	assert.Equal(t, TestUserA, bet.UserID)
	assert.Equal(t, 0, bet.OptionIndex)
	assert.Equal(t, int64(300), bet.Amount)
	mocks.AssertAllExpectations(t)
}

func TestBettingService_PlaceBet_AmountTooSmall(t *testing.T) {
	mocks := NewTestMocks()

	_, err := mocks.Betting().PlaceBet(context.Background(), TestWagerID, TestUserA, 0, 9)

	assert.ErrorIs(t, err, entities.ErrAmountTooSmall)
	assert.ErrorIs(t, err, entities.ErrValidation)
	mocks.WagerRepo.AssertNotCalled(t, "GetByIDForShare", mock.Anything, mock.Anything)
}

func TestBettingService_PlaceBet_WagerNotFound(t *testing.T) {
	mocks := NewTestMocks()
	mocks.WagerRepo.On("GetByIDForShare", mock.Anything, int64(404)).Return(nil, nil)

	_, err := mocks.Betting().PlaceBet(context.Background(), 404, TestUserA, 0, 50)

	assert.ErrorIs(t, err, entities.ErrNotFound)
	mocks.AccountRepo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}

func TestBettingService_PlaceBet_WagerNotOpen(t *testing.T) {
	for _, status := range []entities.WagerStatus{entities.WagerStatusClosed, entities.WagerStatusResolved} {
		t.Run(string(status), func(t *testing.T) {
			mocks := NewTestMocks()
			helper := NewMockHelper(mocks)
			helper.ExpectWagerForShare(newTestWager(status))

			_, err := mocks.Betting().PlaceBet(context.Background(), TestWagerID, TestUserA, 0, 50)

			var notOpen *entities.WagerNotOpenError
			require.ErrorAs(t, err, &notOpen)
			assert.Equal(t, status, notOpen.Status)
			assert.Contains(t, err.Error(), string(status))
			assert.ErrorIs(t, err, entities.ErrStateConflict)
		})
	}
}

func TestBettingService_PlaceBet_InvalidOption(t *testing.T) {
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	helper.ExpectWagerForShare(newTestWager(entities.WagerStatusOpen))

	_, err := mocks.Betting().PlaceBet(context.Background(), TestWagerID, TestUserA, 2, 50)

	assert.ErrorIs(t, err, entities.ErrInvalidOption)
	mocks.BetRepo.AssertNotCalled(t, "GetByWagerAndUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestBettingService_PlaceBet_DuplicateBet(t *testing.T) {
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	account := newTestAccount(TestUserA, 950)
	existing := newTestBet(5, TestUserA, 0, 50)

	helper.ExpectWagerForShare(newTestWager(entities.WagerStatusOpen))
	helper.ExpectAccount(account)
	helper.ExpectAccountLock(account)
	mocks.BetRepo.On("GetByWagerAndUser", mock.Anything, TestWagerID, TestUserA).Return(existing, nil)

	_, err := mocks.Betting().PlaceBet(context.Background(), TestWagerID, TestUserA, 1, 20)

	var dup *entities.DuplicateBetError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, existing, dup.Existing)
	assert.ErrorIs(t, err, entities.ErrStateConflict)
	mocks.BetRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mocks.AccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestBettingService_PlaceBet_InsufficientBalance(t *testing.T) {
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	account := newTestAccount(TestUserA, 40)

	helper.ExpectWagerForShare(newTestWager(entities.WagerStatusOpen))
	helper.ExpectAccount(account)
	helper.ExpectAccountLock(account)
	mocks.BetRepo.On("GetByWagerAndUser", mock.Anything, TestWagerID, TestUserA).Return(nil, nil)

	_, err := mocks.Betting().PlaceBet(context.Background(), TestWagerID, TestUserA, 0, 50)

	var insufficient *entities.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(40), insufficient.Balance)
	assert.Equal(t, int64(50), insufficient.Required)
	assert.ErrorIs(t, err, entities.ErrInsufficientBalance)
	mocks.BetRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBettingService_PlaceBet_ExactBalanceAllowed(t *testing.T) {
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	account := newTestAccount(TestUserA, 50)

	helper.ExpectWagerForShare(newTestWager(entities.WagerStatusOpen))
	helper.ExpectAccount(account)
	helper.ExpectAccountLock(account)
	mocks.BetRepo.On("GetByWagerAndUser", mock.Anything, TestWagerID, TestUserA).Return(nil, nil)
	mocks.BetRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*entities.Bet).ID = 9 }).Return(nil)
	helper.ExpectBalanceChange(TestUserA, -50, 50, entities.TransactionTypeBetPlaced, int64Ptr(9))
	helper.ExpectEventPublish(events.EventTypeBalanceChange)
	helper.ExpectEventPublish(events.EventTypeBetPlaced)

	_, err := mocks.Betting().PlaceBet(context.Background(), TestWagerID, TestUserA, 1, 50)
	require.NoError(t, err)
	mocks.AssertAllExpectations(t)
}

func TestBettingService_PlaceBet_LedgerFailurePropagates(t *testing.T) {
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	account := newTestAccount(TestUserA, 1000)
	storageErr := &entities.StorageError{Op: "apply delta", Err: errors.New("connection reset")}

	helper.ExpectWagerForShare(newTestWager(entities.WagerStatusOpen))
	helper.ExpectAccount(account)
	helper.ExpectAccountLock(account)
	mocks.BetRepo.On("GetByWagerAndUser", mock.Anything, TestWagerID, TestUserA).Return(nil, nil)
	mocks.BetRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mocks.AccountRepo.On("ApplyDelta", mock.Anything, TestUserA, int64(-100)).Return(int64(0), int64(0), storageErr)

	_, err := mocks.Betting().PlaceBet(context.Background(), TestWagerID, TestUserA, 0, 100)

	assert.ErrorIs(t, err, entities.ErrStorage)
	mocks.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}
