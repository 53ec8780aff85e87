package entities

import (
	"fmt"
	"strings"
	"time"
)

// WagerStatus is the lifecycle state of a wager
type WagerStatus string

const (
	WagerStatusOpen     WagerStatus = "open"
	WagerStatusClosed   WagerStatus = "closed"
	WagerStatusResolved WagerStatus = "resolved"
)

// Wager limits
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxOptionLength      = 100
	MinOptions           = 2
	MaxOptions           = 10
)

// ParseWagerStatus converts a stored status into the enum
func ParseWagerStatus(s string) (WagerStatus, error) {
	status := WagerStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown wager status %q", s)
	}
	return status, nil
}

// Valid returns true for the three known statuses
func (s WagerStatus) Valid() bool {
	switch s {
	case WagerStatusOpen, WagerStatusClosed, WagerStatusResolved:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once no further transition is possible
func (s WagerStatus) IsTerminal() bool {
	return s == WagerStatusResolved
}

// AcceptsBets returns true while bets may be placed
func (s WagerStatus) AcceptsBets() bool {
	return s == WagerStatusOpen
}

// CanTransitionTo reports whether moving from s to next is a legal forward step
func (s WagerStatus) CanTransitionTo(next WagerStatus) bool {
	switch s {
	case WagerStatusOpen:
		return next == WagerStatusClosed || next == WagerStatusResolved
	case WagerStatusClosed:
		return next == WagerStatusResolved
	case WagerStatusResolved:
		return false
	default:
		return false
	}
}

// String returns the string representation of the status
func (s WagerStatus) String() string {
	return string(s)
}

// PresentationHandle locates the public rendering of a wager
type PresentationHandle struct {
	MessageID int64
	ChannelID int64
}

// Wager is a prediction market with mutually exclusive options
type Wager struct {
	ID            int64               `db:"id"`
	CreatorID     int64               `db:"creator_id"`
	Title         string              `db:"title"`
	Description   string              `db:"description"`
	Options       []string            `db:"options"`
	Status        WagerStatus         `db:"status"`
	WinningOption *int                `db:"winning_option"`
	Presentation  *PresentationHandle `db:"-"`
	CreatedAt     time.Time           `db:"created_at"`
	ResolvedAt    *time.Time          `db:"resolved_at"`
}

// ValidOption returns true if index addresses one of the wager's options
func (w *Wager) ValidOption(index int) bool {
	return index >= 0 && index < len(w.Options)
}

// OptionLabel returns the label at index, or an empty string when out of range
func (w *Wager) OptionLabel(index int) string {
	if !w.ValidOption(index) {
		return ""
	}
	return w.Options[index]
}

// CheckAcceptsBets returns an error unless the wager is open
func (w *Wager) CheckAcceptsBets() error {
	if w.Status.AcceptsBets() {
		return nil
	}
	return &WagerNotOpenError{WagerID: w.ID, Status: w.Status}
}

// Close moves an open wager to closed
func (w *Wager) Close() error {
	switch w.Status {
	case WagerStatusOpen:
		w.Status = WagerStatusClosed
		return nil
	case WagerStatusClosed:
		return &WagerNotOpenError{WagerID: w.ID, Status: w.Status}
	case WagerStatusResolved:
		return ErrAlreadyResolved
	default:
		return fmt.Errorf("%w: wager %d has unknown status %q", ErrIllegalTransition, w.ID, w.Status)
	}
}

// CheckResolvable applies the resolve guards in order: terminal state,
// option range, then bet count.
func (w *Wager) CheckResolvable(winningOption int, betCount int) error {
	if !w.Status.CanTransitionTo(WagerStatusResolved) {
		if w.Status.IsTerminal() {
			return ErrAlreadyResolved
		}
		return fmt.Errorf("%w: wager %d has status %q", ErrIllegalTransition, w.ID, w.Status)
	}
	if !w.ValidOption(winningOption) {
		return &InvalidOptionError{Option: winningOption, OptionCount: len(w.Options)}
	}
	if betCount == 0 {
		return ErrNoBets
	}
	return nil
}

// Resolve records the winning option and moves the wager to resolved
func (w *Wager) Resolve(winningOption int, betCount int, at time.Time) error {
	if err := w.CheckResolvable(winningOption, betCount); err != nil {
		return err
	}
	option := winningOption
	resolvedAt := at
	w.Status = WagerStatusResolved
	w.WinningOption = &option
	w.ResolvedAt = &resolvedAt
	return nil
}

// NewWager validates the input and returns an open wager ready to persist
func NewWager(creatorID int64, title, description string, options []string) (*Wager, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidTitle)
	}
	if len([]rune(title)) > MaxTitleLength {
		return nil, fmt.Errorf("%w: title exceeds %d characters", ErrInvalidTitle, MaxTitleLength)
	}
	if len([]rune(description)) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}
	if len(options) < MinOptions || len(options) > MaxOptions {
		return nil, fmt.Errorf("%w: need between %d and %d options, got %d",
			ErrInvalidOptions, MinOptions, MaxOptions, len(options))
	}

	cleaned := make([]string, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for i, option := range options {
		option = strings.TrimSpace(option)
		if option == "" {
			return nil, fmt.Errorf("%w: option %d is empty", ErrInvalidOptions, i)
		}
		if len([]rune(option)) > MaxOptionLength {
			return nil, fmt.Errorf("%w: option %d exceeds %d characters", ErrInvalidOptions, i, MaxOptionLength)
		}
		key := strings.ToLower(option)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: option %q is listed twice", ErrInvalidOptions, option)
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, option)
	}

	return &Wager{
		CreatorID:   creatorID,
		Title:       title,
		Description: description,
		Options:     cleaned,
		Status:      WagerStatusOpen,
	}, nil
}

// WagerDetail combines a wager with all of its bets
type WagerDetail struct {
	Wager *Wager
	Bets  []*Bet
}

// TotalPool returns the sum of all stakes
func (d *WagerDetail) TotalPool() int64 {
	var total int64
	for _, bet := range d.Bets {
		total += bet.Amount
	}
	return total
}

// OptionPools returns the staked total for every option, indexed like Options
func (d *WagerDetail) OptionPools() []int64 {
	pools := make([]int64, len(d.Wager.Options))
	for _, bet := range d.Bets {
		if d.Wager.ValidOption(bet.OptionIndex) {
			pools[bet.OptionIndex] += bet.Amount
		}
	}
	return pools
}

// BetCountByOption returns how many bets back each option
func (d *WagerDetail) BetCountByOption() []int {
	counts := make([]int, len(d.Wager.Options))
	for _, bet := range d.Bets {
		if d.Wager.ValidOption(bet.OptionIndex) {
			counts[bet.OptionIndex]++
		}
	}
	return counts
}
