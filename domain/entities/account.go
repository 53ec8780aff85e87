package entities

import "time"

// Account is the ledger-tracked balance of one user
type Account struct {
	UserID          int64      `db:"user_id"`
	Balance         int64      `db:"balance"`
	StartingBalance int64      `db:"starting_balance"`
	LastDailyReward *time.Time `db:"last_daily_reward"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// CanAfford returns true if the balance covers the amount
func (a *Account) CanAfford(amount int64) bool {
	return a.Balance >= amount
}

// NextDailyReward returns when the next daily reward may be claimed.
// The zero time means the reward is available now.
func (a *Account) NextDailyReward(cooldown time.Duration) time.Time {
	if a.LastDailyReward == nil {
		return time.Time{}
	}
	return a.LastDailyReward.Add(cooldown)
}

// AccountAudit compares an account's balance against its ledger
type AccountAudit struct {
	UserID          int64
	Balance         int64
	StartingBalance int64
	EntrySum        int64
	EntryCount      int64
}

// Consistent reports whether balance == starting balance + sum(entries)
func (a *AccountAudit) Consistent() bool {
	return a.Balance == a.StartingBalance+a.EntrySum
}

// Drift returns how far the balance is from what the ledger implies
func (a *AccountAudit) Drift() int64 {
	return a.Balance - (a.StartingBalance + a.EntrySum)
}
