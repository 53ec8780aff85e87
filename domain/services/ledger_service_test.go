package services

import (
	"context"
	"testing"
	"time"

	"wagerledger/domain/entities"
	"wagerledger/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_GetOrCreateAccount_UsesStartingBalance(t *testing.T) {
	mocks := NewTestMocks()
	account := newTestAccount(TestUserA, TestStartingBalance)
	mocks.AccountRepo.On("GetOrCreate", mock.Anything, TestUserA, int64(1000)).Return(account, nil)

	got, err := mocks.Ledger().GetOrCreateAccount(context.Background(), TestUserA)
	require.NoError(t, err)
	assert.Equal(t, account, got)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_AdjustBalance(t *testing.T) {
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	helper.ExpectBalanceChange(TestUserA, -250, 1000, entities.TransactionTypeBetPlaced, int64Ptr(12))
	mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		change, ok := e.(events.BalanceChangeEvent)
		return ok && change.OldBalance == 1000 && change.NewBalance == 750 && *change.ReferenceID == 12
	})).Return(nil)

	newBalance, err := mocks.Ledger().AdjustBalance(context.Background(), TestUserA, -250, entities.TransactionTypeBetPlaced, int64Ptr(12))
	require.NoError(t, err)
	assert.Equal(t, int64(750), newBalance)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_AdjustBalance_RejectsUnknownKind(t *testing.T) {
	mocks := NewTestMocks()

	_, err := mocks.Ledger().AdjustBalance(context.Background(), TestUserA, 10, entities.TransactionType("transfer_in"), nil)

	assert.ErrorIs(t, err, entities.ErrValidation)
	mocks.AccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_ClaimDailyReward(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first claim credits reward", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		account := newTestAccount(TestUserA, 1000)

		helper.ExpectAccount(account)
		helper.ExpectAccountLock(account)
		helper.ExpectBalanceChange(TestUserA, 100, 1000, entities.TransactionTypeDailyReward, nil)
		helper.ExpectEventPublish(events.EventTypeBalanceChange)
		mocks.AccountRepo.On("SetLastDailyReward", mock.Anything, TestUserA, now).Return(nil)

		svc := mocks.Ledger().(*ledgerService)
		svc.now = func() time.Time { return now }

		balance, err := svc.ClaimDailyReward(context.Background(), TestUserA)
		require.NoError(t, err)
		assert.Equal(t, int64(1100), balance)
		mocks.AssertAllExpectations(t)
	})

	t.Run("claim inside cooldown is rejected", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		last := now.Add(-23 * time.Hour)
		account := newTestAccount(TestUserA, 1100)
		account.LastDailyReward = &last

		helper.ExpectAccount(account)
		helper.ExpectAccountLock(account)

		svc := mocks.Ledger().(*ledgerService)
		svc.now = func() time.Time { return now }

		_, err := svc.ClaimDailyReward(context.Background(), TestUserA)

		var cooldown *entities.DailyRewardCooldownError
		require.ErrorAs(t, err, &cooldown)
		assert.Equal(t, last.Add(24*time.Hour), cooldown.NextAt)
		assert.ErrorIs(t, err, entities.ErrStateConflict)
		mocks.AccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("claim after cooldown succeeds", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		last := now.Add(-24 * time.Hour)
		account := newTestAccount(TestUserA, 1100)
		account.LastDailyReward = &last

		helper.ExpectAccount(account)
		helper.ExpectAccountLock(account)
		helper.ExpectBalanceChange(TestUserA, 100, 1100, entities.TransactionTypeDailyReward, nil)
		helper.ExpectEventPublish(events.EventTypeBalanceChange)
		mocks.AccountRepo.On("SetLastDailyReward", mock.Anything, TestUserA, now).Return(nil)

		svc := mocks.Ledger().(*ledgerService)
		svc.now = func() time.Time { return now }

		balance, err := svc.ClaimDailyReward(context.Background(), TestUserA)
		require.NoError(t, err)
		assert.Equal(t, int64(1200), balance)
	})
}

func TestLedgerService_AdminAdjust(t *testing.T) {
	t.Run("non admin rejected", func(t *testing.T) {
		mocks := NewTestMocks()

		_, err := mocks.Ledger().AdminAdjust(context.Background(), TestUserB, TestUserA, 100)
		assert.ErrorIs(t, err, entities.ErrNotAuthorized)
		mocks.AccountRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		mocks := NewTestMocks()

		_, err := mocks.Ledger().AdminAdjust(context.Background(), TestAdminID, TestUserA, 0)
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
	})

	t.Run("debit below zero rejected", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		account := newTestAccount(TestUserA, 50)
		helper.ExpectAccount(account)
		helper.ExpectAccountLock(account)

		_, err := mocks.Ledger().AdminAdjust(context.Background(), TestAdminID, TestUserA, -51)
		assert.ErrorIs(t, err, entities.ErrInsufficientBalance)
		mocks.AccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("credit applied", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		account := newTestAccount(TestUserA, 50)
		helper.ExpectAccount(account)
		helper.ExpectAccountLock(account)
		helper.ExpectBalanceChange(TestUserA, 500, 50, entities.TransactionTypeAdminAdjustment, nil)
		helper.ExpectEventPublish(events.EventTypeBalanceChange)

		balance, err := mocks.Ledger().AdminAdjust(context.Background(), TestAdminID, TestUserA, 500)
		require.NoError(t, err)
		assert.Equal(t, int64(550), balance)
		mocks.AssertAllExpectations(t)
	})
}

func TestLedgerService_Audit(t *testing.T) {
	t.Run("consistent account", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.LedgerRepo.On("Audit", mock.Anything, TestUserA).Return(&entities.AccountAudit{
			UserID: TestUserA, Balance: 1100, StartingBalance: 1000, EntrySum: 100, EntryCount: 3,
		}, nil)

		audit, err := mocks.Ledger().Audit(context.Background(), TestUserA)
		require.NoError(t, err)
		assert.True(t, audit.Consistent())
	})

	t.Run("unknown account", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.LedgerRepo.On("Audit", mock.Anything, TestUserA).Return(nil, nil)

		_, err := mocks.Ledger().Audit(context.Background(), TestUserA)
		assert.ErrorIs(t, err, entities.ErrAccountNotFound)
	})
}

func TestLedgerService_GetHistory_DefaultsLimit(t *testing.T) {
	mocks := NewTestMocks()
	entries := []*entities.LedgerEntry{{ID: 1, UserID: TestUserA, Amount: 100, Kind: entities.TransactionTypeDailyReward}}
	mocks.LedgerRepo.On("GetByUser", mock.Anything, TestUserA, 10).Return(entries, nil)

	got, err := mocks.Ledger().GetHistory(context.Background(), TestUserA, 0)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}
