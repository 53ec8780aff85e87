package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"wagerledger/domain/entities"
	"wagerledger/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolutionService_Resolve_PaysWinners(t *testing.T) {
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	ctx := context.Background()

	wager := newTestWager(entities.WagerStatusOpen)
	bets := []*entities.Bet{
		newTestBet(1, TestUserA, 0, 300),
		newTestBet(2, TestUserB, 1, 100),
	}

	helper.ExpectWagerForUpdate(wager)
	helper.ExpectBets(TestWagerID, bets)
	mocks.AccountRepo.On("LockForUpdate", mock.Anything, []int64{TestUserA}).Return(nil)
	helper.ExpectBalanceChange(TestUserA, 400, 700, entities.TransactionTypeBetWon, int64Ptr(1))
	mocks.WagerRepo.On("MarkResolved", mock.Anything, TestWagerID, 0, mock.AnythingOfType("time.Time")).Return(nil)
	helper.ExpectEventPublish(events.EventTypeBalanceChange)
	helper.ExpectEventPublish(events.EventTypeWagerStateChange)

	result, err := mocks.Resolution().Resolve(ctx, TestWagerID, 0)
	require.NoError(t, err)

	assert.False(t, result.IsRefund())
	assert.Equal(t, entities.WagerStatusResolved, result.Wager.Status)
	require.NotNil(t, result.Wager.WinningOption)
	assert.Equal(t, 0, *result.Wager.WinningOption)
	require.Len(t, result.Plan.Entries, 1)
	assert.Equal(t, int64(400), result.Plan.Entries[0].Amount)
	mocks.AccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, TestUserB, mock.Anything)
	mocks.AssertAllExpectations(t)
}

func TestResolutionService_Resolve_RefundsWhenNobodyWon(t *testing.T) {
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	wager := newTestWager(entities.WagerStatusClosed, "Red", "Blue", "Green")
	bets := []*entities.Bet{
		newTestBet(1, TestUserB, 1, 100),
		newTestBet(2, TestUserA, 0, 300),
	}

	helper.ExpectWagerForUpdate(wager)
	helper.ExpectBets(TestWagerID, bets)
	// Locks are taken in ascending user order regardless of bet order.
	mocks.AccountRepo.On("LockForUpdate", mock.Anything, []int64{TestUserA, TestUserB}).Return(nil)
	helper.ExpectBalanceChange(TestUserB, 100, 900, entities.TransactionTypeBetRefunded, int64Ptr(1))
	helper.ExpectBalanceChange(TestUserA, 300, 700, entities.TransactionTypeBetRefunded, int64Ptr(2))
	mocks.WagerRepo.On("MarkResolved", mock.Anything, TestWagerID, 2, mock.AnythingOfType("time.Time")).Return(nil)
	helper.ExpectEventPublish(events.EventTypeBalanceChange)
	mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		change, ok := e.(events.WagerStateChangeEvent)
		return ok && change.Refund && change.OldStatus == entities.WagerStatusClosed
	})).Return(nil)

	result, err := mocks.Resolution().Resolve(context.Background(), TestWagerID, 2)
	require.NoError(t, err)

	assert.True(t, result.IsRefund())
	assert.Equal(t, int64(400), result.Plan.TotalPaid())
	mocks.AssertAllExpectations(t)
}

func TestResolutionService_Resolve_Guards(t *testing.T) {
	resolvedOption := 1
	resolvedAt := time.Now()

	tests := []struct {
		name    string
		wager   *entities.Wager
		bets    []*entities.Bet
		option  int
		wantErr error
	}{
		{
			name: "already resolved",
			wager: &entities.Wager{
				ID: TestWagerID, Options: []string{"Yes", "No"}, Status: entities.WagerStatusResolved,
				WinningOption: &resolvedOption, ResolvedAt: &resolvedAt,
			},
			bets:    []*entities.Bet{newTestBet(1, TestUserA, 0, 100)},
			option:  0,
			wantErr: entities.ErrAlreadyResolved,
		},
		{
			name:    "option out of range",
			wager:   newTestWager(entities.WagerStatusOpen),
			bets:    []*entities.Bet{newTestBet(1, TestUserA, 0, 100)},
			option:  2,
			wantErr: entities.ErrInvalidOption,
		},
		{
			name:    "no bets",
			wager:   newTestWager(entities.WagerStatusOpen),
			bets:    []*entities.Bet{},
			option:  0,
			wantErr: entities.ErrNoBets,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := NewTestMocks()
			helper := NewMockHelper(mocks)
			helper.ExpectWagerForUpdate(tt.wager)
			helper.ExpectBets(TestWagerID, tt.bets)

			_, err := mocks.Resolution().Resolve(context.Background(), TestWagerID, tt.option)

			assert.ErrorIs(t, err, tt.wantErr)
			mocks.AccountRepo.AssertNotCalled(t, "LockForUpdate", mock.Anything, mock.Anything)
			mocks.AccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
			mocks.WagerRepo.AssertNotCalled(t, "MarkResolved", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestResolutionService_Resolve_NotFound(t *testing.T) {
	mocks := NewTestMocks()
	mocks.WagerRepo.On("GetByIDForUpdate", mock.Anything, int64(404)).Return(nil, nil)

	_, err := mocks.Resolution().Resolve(context.Background(), 404, 0)
	assert.ErrorIs(t, err, entities.ErrWagerNotFound)
}

func TestResolutionService_Resolve_CreditFailureStopsBeforeStatusWrite(t *testing.T) {
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	bets := []*entities.Bet{
		newTestBet(1, TestUserA, 0, 100),
		newTestBet(2, TestUserB, 0, 100),
	}
	helper.ExpectWagerForUpdate(newTestWager(entities.WagerStatusOpen))
	helper.ExpectBets(TestWagerID, bets)
	mocks.AccountRepo.On("LockForUpdate", mock.Anything, []int64{TestUserA, TestUserB}).Return(nil)
	helper.ExpectBalanceChange(TestUserA, 100, 900, entities.TransactionTypeBetWon, int64Ptr(1))
	helper.ExpectEventPublish(events.EventTypeBalanceChange)
	mocks.AccountRepo.On("GetOrCreate", mock.Anything, TestUserB, TestStartingBalance).Return(newTestAccount(TestUserB, 900), nil)
	mocks.AccountRepo.On("ApplyDelta", mock.Anything, TestUserB, int64(100)).
		Return(int64(0), int64(0), &entities.StorageError{Op: "apply delta", Err: errors.New("deadlock detected"), Retryable: true})

	_, err := mocks.Resolution().Resolve(context.Background(), TestWagerID, 0)

	require.Error(t, err)
	assert.True(t, entities.IsRetryable(err))
	mocks.WagerRepo.AssertNotCalled(t, "MarkResolved", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
