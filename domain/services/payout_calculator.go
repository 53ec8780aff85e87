package services

import (
	"fmt"
	"math"
	"math/bits"

	"wagerledger/domain/entities"
)

// CalculatePayouts builds the payout plan for a wager resolved to winningOption.
//
// When nobody backed the winning option every stake is refunded. Otherwise each
// winning bet receives floor(stake * totalPool / winningPool); losing bets get
// nothing. The truncated remainder is reported on the plan and not paid out.
func CalculatePayouts(bets []*entities.Bet, winningOption int) (*entities.PayoutPlan, error) {
	if len(bets) == 0 {
		return nil, entities.ErrNoBets
	}

	plan := &entities.PayoutPlan{WinningOption: winningOption}
	for _, bet := range bets {
		if bet.Amount <= 0 {
			return nil, fmt.Errorf("%w: bet %d has non-positive amount %d", entities.ErrValidation, bet.ID, bet.Amount)
		}
		if bet.Amount > math.MaxInt64-plan.TotalPool {
			return nil, fmt.Errorf("%w: adding bet %d", entities.ErrPoolOverflow, bet.ID)
		}
		plan.TotalPool += bet.Amount
		if bet.OptionIndex == winningOption {
			plan.WinningPool += bet.Amount
		}
	}

	if plan.WinningPool == 0 {
		plan.Refund = true
		plan.Entries = make([]entities.PayoutEntry, 0, len(bets))
		for _, bet := range bets {
			plan.Entries = append(plan.Entries, entities.PayoutEntry{
				BetID:  bet.ID,
				UserID: bet.UserID,
				Stake:  bet.Amount,
				Amount: bet.Amount,
				Kind:   entities.TransactionTypeBetRefunded,
			})
		}
		return plan, nil
	}

	for _, bet := range bets {
		if bet.OptionIndex != winningOption {
			continue
		}
		payout := proportionalShare(bet.Amount, plan.TotalPool, plan.WinningPool)
		plan.Entries = append(plan.Entries, entities.PayoutEntry{
			BetID:  bet.ID,
			UserID: bet.UserID,
			Stake:  bet.Amount,
			Amount: payout,
			Kind:   entities.TransactionTypeBetWon,
		})
	}
	plan.Remainder = plan.TotalPool - plan.TotalPaid()

	return plan, nil
}

// proportionalShare returns floor(stake * totalPool / winningPool) using a
// 128-bit product. stake <= winningPool, so the quotient fits in int64.
func proportionalShare(stake, totalPool, winningPool int64) int64 {
	hi, lo := bits.Mul64(uint64(stake), uint64(totalPool))
	quo, _ := bits.Div64(hi, lo, uint64(winningPool))
	return int64(quo)
}
