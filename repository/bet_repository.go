package repository

import (
	"context"
	"errors"

	"wagerledger/database"
	"wagerledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

const betUniqueConstraint = "bets_one_per_user"

// BetRepository implements interfaces.BetRepository
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a bet repository on the pool
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create inserts the bet. The unique constraint on (wager_id, user_id)
// turns a concurrent second bet into a DuplicateBetError.
func (r *BetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO bets (wager_id, user_id, option_index, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, bet.WagerID, bet.UserID, bet.OptionIndex, bet.Amount).Scan(&bet.ID, &bet.CreatedAt)
	if constraintViolation(err, pgUniqueViolation, betUniqueConstraint) {
		// The failed statement aborted the transaction, so the existing bet cannot be read here
		return &entities.DuplicateBetError{WagerID: bet.WagerID, UserID: bet.UserID}
	}
	if err != nil {
		return mapError("insert bet", err)
	}
	return nil
}

// GetByWagerAndUser returns the user's bet on the wager, or nil
func (r *BetRepository) GetByWagerAndUser(ctx context.Context, wagerID, userID int64) (*entities.Bet, error) {
	var bet entities.Bet
	err := r.q.QueryRow(ctx, `
		SELECT id, wager_id, user_id, option_index, amount, created_at
		FROM bets
		WHERE wager_id = $1 AND user_id = $2
	`, wagerID, userID).Scan(&bet.ID, &bet.WagerID, &bet.UserID, &bet.OptionIndex, &bet.Amount, &bet.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("select bet", err)
	}
	return &bet, nil
}

// GetByWager returns all bets on a wager in placement order
func (r *BetRepository) GetByWager(ctx context.Context, wagerID int64) ([]*entities.Bet, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, wager_id, user_id, option_index, amount, created_at
		FROM bets
		WHERE wager_id = $1
		ORDER BY id
	`, wagerID)
	if err != nil {
		return nil, mapError("select bets", err)
	}
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		var bet entities.Bet
		if err := rows.Scan(&bet.ID, &bet.WagerID, &bet.UserID, &bet.OptionIndex, &bet.Amount, &bet.CreatedAt); err != nil {
			return nil, mapError("scan bet", err)
		}
		bets = append(bets, &bet)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate bets", err)
	}
	return bets, nil
}

// GetActiveByUser returns the user's bets on wagers that are not yet resolved
func (r *BetRepository) GetActiveByUser(ctx context.Context, userID int64) ([]*entities.UserBet, error) {
	rows, err := r.q.Query(ctx, `
		SELECT b.id, b.wager_id, b.user_id, b.option_index, b.amount, b.created_at,
		       w.title, COALESCE(w.options->>b.option_index, ''), w.status
		FROM bets b
		JOIN wagers w ON w.id = b.wager_id
		WHERE b.user_id = $1 AND w.status IN ('open', 'closed')
		ORDER BY b.created_at DESC, b.id DESC
	`, userID)
	if err != nil {
		return nil, mapError("select active bets", err)
	}
	defer rows.Close()

	var userBets []*entities.UserBet
	for rows.Next() {
		var bet entities.Bet
		var userBet entities.UserBet
		var status string
		err := rows.Scan(
			&bet.ID, &bet.WagerID, &bet.UserID, &bet.OptionIndex, &bet.Amount, &bet.CreatedAt,
			&userBet.WagerTitle, &userBet.OptionLabel, &status,
		)
		if err != nil {
			return nil, mapError("scan active bet", err)
		}
		userBet.Bet = &bet
		userBet.WagerStatus = entities.WagerStatus(status)
		userBets = append(userBets, &userBet)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate active bets", err)
	}
	return userBets, nil
}
