package entities

// TransactionType tags every ledger entry with the reason for the change
type TransactionType string

const (
	TransactionTypeDailyReward     TransactionType = "daily_reward"
	TransactionTypeBetPlaced       TransactionType = "bet_placed"
	TransactionTypeBetWon          TransactionType = "bet_won"
	TransactionTypeBetRefunded     TransactionType = "bet_refunded"
	TransactionTypeAdminAdjustment TransactionType = "admin_adjustment"
)

// Valid reports whether the transaction type is one the ledger accepts
func (tt TransactionType) Valid() bool {
	switch tt {
	case TransactionTypeDailyReward,
		TransactionTypeBetPlaced,
		TransactionTypeBetWon,
		TransactionTypeBetRefunded,
		TransactionTypeAdminAdjustment:
		return true
	default:
		return false
	}
}

// IsWagerRelated returns true for entries that reference a bet
func (tt TransactionType) IsWagerRelated() bool {
	return tt == TransactionTypeBetPlaced ||
		tt == TransactionTypeBetWon ||
		tt == TransactionTypeBetRefunded
}

// Description returns a human-readable label for the transaction type
func (tt TransactionType) Description() string {
	switch tt {
	case TransactionTypeDailyReward:
		return "Daily reward"
	case TransactionTypeBetPlaced:
		return "Bet placed"
	case TransactionTypeBetWon:
		return "Bet won"
	case TransactionTypeBetRefunded:
		return "Bet refunded"
	case TransactionTypeAdminAdjustment:
		return "Admin adjustment"
	default:
		return string(tt)
	}
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
