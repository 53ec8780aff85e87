package services

import (
	"time"

	"wagerledger/domain/entities"
)

func newTestAccount(userID, balance int64) *entities.Account {
	return &entities.Account{
		UserID:          userID,
		Balance:         balance,
		StartingBalance: TestStartingBalance,
		CreatedAt:       time.Now(),
	}
}

func newTestWager(status entities.WagerStatus, options ...string) *entities.Wager {
	if len(options) == 0 {
		options = []string{"Yes", "No"}
	}
	return &entities.Wager{
		ID:        TestWagerID,
		CreatorID: TestAdminID,
		Title:     "Will it rain tomorrow?",
		Options:   options,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

func newTestBet(id, userID int64, option int, amount int64) *entities.Bet {
	return &entities.Bet{
		ID:          id,
		WagerID:     TestWagerID,
		UserID:      userID,
		OptionIndex: option,
		Amount:      amount,
		CreatedAt:   time.Now(),
	}
}
