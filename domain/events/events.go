package events

import "wagerledger/domain/entities"

// EventType identifies a domain event
type EventType string

const (
	EventTypeBalanceChange    EventType = "balance_change"
	EventTypeBetPlaced        EventType = "bet_placed"
	EventTypeWagerStateChange EventType = "wager_state_change"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted for every ledger entry
type BalanceChangeEvent struct {
	UserID          int64                    `json:"user_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	ChangeAmount    int64                    `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	ReferenceID     *int64                   `json:"reference_id,omitempty"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BetPlacedEvent is emitted when a bet is admitted
type BetPlacedEvent struct {
	BetID       int64 `json:"bet_id"`
	WagerID     int64 `json:"wager_id"`
	UserID      int64 `json:"user_id"`
	OptionIndex int   `json:"option_index"`
	Amount      int64 `json:"amount"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// WagerStateChangeEvent is emitted when a wager is created, closed or resolved.
// OldStatus is empty for a newly created wager.
type WagerStateChangeEvent struct {
	WagerID       int64                `json:"wager_id"`
	OldStatus     entities.WagerStatus `json:"old_status,omitempty"`
	NewStatus     entities.WagerStatus `json:"new_status"`
	WinningOption *int                 `json:"winning_option,omitempty"`
	Refund        bool                 `json:"refund,omitempty"`
}

func (e WagerStateChangeEvent) Type() EventType {
	return EventTypeWagerStateChange
}
