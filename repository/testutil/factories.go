package testutil

import (
	"context"
	"testing"

	"wagerledger/database"
	"wagerledger/domain/entities"

	"github.com/stretchr/testify/require"
)

// DefaultStartingBalance matches the default STARTING_BALANCE
const DefaultStartingBalance int64 = 1000

// CreateTestWager returns an unsaved open wager with the given options
func CreateTestWager(creatorID int64, title string, options ...string) *entities.Wager {
	if len(options) == 0 {
		options = []string{"Yes", "No"}
	}
	return &entities.Wager{
		CreatorID: creatorID,
		Title:     title,
		Options:   options,
		Status:    entities.WagerStatusOpen,
	}
}

// CreateTestBet returns an unsaved bet
func CreateTestBet(wagerID, userID int64, optionIndex int, amount int64) *entities.Bet {
	return &entities.Bet{
		WagerID:     wagerID,
		UserID:      userID,
		OptionIndex: optionIndex,
		Amount:      amount,
	}
}

// SeedAccount inserts an account with the given balance as its starting balance
func SeedAccount(t *testing.T, db *database.DB, userID int64, balance int64) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO accounts (user_id, balance, starting_balance)
		VALUES ($1, $2, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, balance)
	require.NoError(t, err)
}

// SeedWager inserts an open wager created by creatorID and returns it
func SeedWager(t *testing.T, db *database.DB, creatorID int64, options ...string) *entities.Wager {
	t.Helper()
	SeedAccount(t, db, creatorID, DefaultStartingBalance)

	wager := CreateTestWager(creatorID, "Test wager", options...)
	err := db.QueryRow(context.Background(), `
		INSERT INTO wagers (creator_id, title, options)
		VALUES ($1, $2, to_jsonb($3::text[]))
		RETURNING id, created_at
	`, wager.CreatorID, wager.Title, wager.Options).Scan(&wager.ID, &wager.CreatedAt)
	require.NoError(t, err)
	return wager
}

// Balance reads the stored balance of an account
func Balance(t *testing.T, db *database.DB, userID int64) int64 {
	t.Helper()
	var balance int64
	err := db.QueryRow(context.Background(), `SELECT balance FROM accounts WHERE user_id = $1`, userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// TotalBalance sums every account balance
func TotalBalance(t *testing.T, db *database.DB) int64 {
	t.Helper()
	var total int64
	err := db.QueryRow(context.Background(), `SELECT COALESCE(SUM(balance), 0)::BIGINT FROM accounts`).Scan(&total)
	require.NoError(t, err)
	return total
}
