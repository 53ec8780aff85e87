package entities

import "slices"

// PayoutEntry is one credit the resolution applies to the ledger
type PayoutEntry struct {
	BetID  int64
	UserID int64
	Stake  int64
	Amount int64
	Kind   TransactionType
}

// PayoutPlan is the full set of credits for a resolved wager.
//
// For a proportional plan, Remainder holds the units lost to integer
// truncation; they stay with nobody. A refund plan always has Remainder 0.
type PayoutPlan struct {
	WinningOption int
	Refund        bool
	TotalPool     int64
	WinningPool   int64
	Entries       []PayoutEntry
	Remainder     int64
}

// TotalPaid returns the sum of all credits in the plan
func (p *PayoutPlan) TotalPaid() int64 {
	var total int64
	for _, entry := range p.Entries {
		total += entry.Amount
	}
	return total
}

// UserIDs returns the distinct credited users in ascending order
func (p *PayoutPlan) UserIDs() []int64 {
	ids := make([]int64, 0, len(p.Entries))
	for _, entry := range p.Entries {
		ids = append(ids, entry.UserID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// ResolutionResult is returned to the caller after a wager is resolved
type ResolutionResult struct {
	Wager *Wager
	Plan  *PayoutPlan
}

// IsRefund reports whether the resolution returned every stake
func (r *ResolutionResult) IsRefund() bool {
	return r.Plan != nil && r.Plan.Refund
}
