package entities

import "time"

// LedgerEntry is an immutable record of one balance change
type LedgerEntry struct {
	ID          int64           `db:"id"`
	UserID      int64           `db:"user_id"`
	Amount      int64           `db:"amount"`
	Kind        TransactionType `db:"kind"`
	ReferenceID *int64          `db:"reference_id"`
	CreatedAt   time.Time       `db:"created_at"`
}

// IsCredit returns true if the entry added to the balance
func (e *LedgerEntry) IsCredit() bool {
	return e.Amount > 0
}

// IsDebit returns true if the entry removed from the balance
func (e *LedgerEntry) IsDebit() bool {
	return e.Amount < 0
}
