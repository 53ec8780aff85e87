package entities

import (
	"errors"
	"fmt"
	"time"
)

// Error categories. Every error returned by the ledger core matches exactly
// one of these through errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrStateConflict       = errors.New("state conflict")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrStorage             = errors.New("storage error")
)

// Validation errors
var (
	ErrAmountTooSmall   = fmt.Errorf("%w: bet amount is below the minimum", ErrValidation)
	ErrInvalidOption    = fmt.Errorf("%w: option index out of range", ErrValidation)
	ErrInvalidTitle     = fmt.Errorf("%w: invalid wager title", ErrValidation)
	ErrInvalidOptions   = fmt.Errorf("%w: invalid wager options", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrNotAuthorized    = fmt.Errorf("%w: not authorized", ErrValidation)
	ErrInvalidReference = fmt.Errorf("%w: invalid presentation handle", ErrValidation)
	ErrPoolOverflow     = fmt.Errorf("%w: wager pool exceeds the maximum amount", ErrValidation)
)

// Lookup errors
var (
	ErrWagerNotFound   = fmt.Errorf("%w: wager", ErrNotFound)
	ErrAccountNotFound = fmt.Errorf("%w: account", ErrNotFound)
)

// State conflicts
var (
	ErrWagerNotOpen      = fmt.Errorf("%w: wager is not open", ErrStateConflict)
	ErrAlreadyResolved   = fmt.Errorf("%w: wager is already resolved", ErrStateConflict)
	ErrNoBets            = fmt.Errorf("%w: wager has no bets to resolve", ErrStateConflict)
	ErrDuplicateBet      = fmt.Errorf("%w: user already has a bet on this wager", ErrStateConflict)
	ErrRewardOnCooldown  = fmt.Errorf("%w: daily reward already claimed", ErrStateConflict)
	ErrIllegalTransition = fmt.Errorf("%w: illegal status transition", ErrStateConflict)
)

// WagerNotOpenError reports the status a wager was in when an operation
// required it to be open.
type WagerNotOpenError struct {
	WagerID int64
	Status  WagerStatus
}

func (e *WagerNotOpenError) Error() string {
	return fmt.Sprintf("wager %d is %s, not open", e.WagerID, e.Status)
}

func (e *WagerNotOpenError) Unwrap() error {
	return ErrWagerNotOpen
}

// DuplicateBetError carries the bet the user already holds on the wager.
// Existing is nil when the conflict was detected by the unique constraint
// and the row could not be read back.
type DuplicateBetError struct {
	WagerID  int64
	UserID   int64
	Existing *Bet
}

func (e *DuplicateBetError) Error() string {
	if e.Existing == nil {
		return fmt.Sprintf("user %d already has a bet on wager %d", e.UserID, e.WagerID)
	}
	return fmt.Sprintf("user %d already bet %d on option %d of wager %d",
		e.UserID, e.Existing.Amount, e.Existing.OptionIndex, e.WagerID)
}

func (e *DuplicateBetError) Unwrap() error {
	return ErrDuplicateBet
}

// InsufficientBalanceError reports the balance a debit was checked against.
type InsufficientBalanceError struct {
	UserID   int64
	Balance  int64
	Required int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for user %d: have %d, need %d", e.UserID, e.Balance, e.Required)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// InvalidOptionError reports an option index outside the wager's options.
type InvalidOptionError struct {
	Option      int
	OptionCount int
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("option %d is out of range, wager has %d options", e.Option, e.OptionCount)
}

func (e *InvalidOptionError) Unwrap() error {
	return ErrInvalidOption
}

// DailyRewardCooldownError reports when the next daily reward is available.
type DailyRewardCooldownError struct {
	NextAt time.Time
}

func (e *DailyRewardCooldownError) Error() string {
	return fmt.Sprintf("daily reward already claimed, next available at %s", e.NextAt.UTC().Format(time.RFC3339))
}

func (e *DailyRewardCooldownError) Unwrap() error {
	return ErrRewardOnCooldown
}

// StorageError wraps an I/O failure from the relational store.
type StorageError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// IsRetryable reports whether err is a storage failure that is safe to retry
// as a whole unit of work.
func IsRetryable(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
