package entities

import "time"

// Bet is one account's single stake on one option of a wager
type Bet struct {
	ID          int64     `db:"id"`
	WagerID     int64     `db:"wager_id"`
	UserID      int64     `db:"user_id"`
	OptionIndex int       `db:"option_index"`
	Amount      int64     `db:"amount"`
	CreatedAt   time.Time `db:"created_at"`
}

// UserBet is a bet joined with the wager fields needed to list it
type UserBet struct {
	Bet         *Bet
	WagerTitle  string
	OptionLabel string
	WagerStatus WagerStatus
}
