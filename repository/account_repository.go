package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wagerledger/database"
	"wagerledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `user_id, balance, starting_balance, last_daily_reward, created_at, updated_at`

// AccountRepository implements interfaces.AccountRepository
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates an account repository on the pool
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

func newAccountRepositoryWithTx(q queryable) *AccountRepository {
	return &AccountRepository{q: q}
}

// GetOrCreate inserts the account when missing and returns the stored row
func (r *AccountRepository) GetOrCreate(ctx context.Context, userID int64, startingBalance int64) (*entities.Account, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO accounts (user_id, balance, starting_balance)
		VALUES ($1, $2, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, startingBalance)
	if err != nil {
		return nil, mapError("insert account", err)
	}

	account, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %d vanished after insert", entities.ErrAccountNotFound, userID)
	}
	return account, nil
}

// GetByUserID returns the account or nil when it does not exist
func (r *AccountRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1`, userID)
}

// GetForUpdate returns the account and holds its row lock
func (r *AccountRepository) GetForUpdate(ctx context.Context, userID int64) (*entities.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *AccountRepository) get(ctx context.Context, query string, userID int64) (*entities.Account, error) {
	var account entities.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.StartingBalance,
		&account.LastDailyReward,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("select account", err)
	}
	return &account, nil
}

// LockForUpdate locks the given accounts in ascending user id order
func (r *AccountRepository) LockForUpdate(ctx context.Context, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	rows, err := r.q.Query(ctx, `
		SELECT user_id FROM accounts
		WHERE user_id = ANY($1)
		ORDER BY user_id
		FOR UPDATE
	`, userIDs)
	if err != nil {
		return mapError("lock accounts", err)
	}
	defer rows.Close()

	for rows.Next() {
	}
	return mapError("lock accounts", rows.Err())
}

// ApplyDelta adds delta to the stored balance in a single statement
func (r *AccountRepository) ApplyDelta(ctx context.Context, userID int64, delta int64) (int64, int64, error) {
	var oldBalance, newBalance int64
	err := r.q.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING balance - $2, balance
	`, userID, delta).Scan(&oldBalance, &newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("%w: %d", entities.ErrAccountNotFound, userID)
	}
	if err != nil {
		return 0, 0, mapError("update balance", err)
	}
	return oldBalance, newBalance, nil
}

// SetLastDailyReward records when the daily reward was last claimed
func (r *AccountRepository) SetLastDailyReward(ctx context.Context, userID int64, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE accounts SET last_daily_reward = $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, at)
	if err != nil {
		return mapError("update daily reward", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", entities.ErrAccountNotFound, userID)
	}
	return nil
}
