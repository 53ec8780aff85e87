package repository

import (
	"context"
	"errors"

	"wagerledger/database"
	"wagerledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements interfaces.LedgerRepository
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a ledger repository on the pool
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

func newLedgerRepositoryWithTx(q queryable) *LedgerRepository {
	return &LedgerRepository{q: q}
}

// Record appends an entry and fills its ID and CreatedAt
func (r *LedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO ledger_entries (user_id, amount, kind, reference_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, entry.UserID, entry.Amount, string(entry.Kind), entry.ReferenceID).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return mapError("insert ledger entry", err)
	}
	return nil
}

// GetByUser returns the newest entries first
func (r *LedgerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error) {
	return r.list(ctx, `
		SELECT id, user_id, amount, kind, reference_id, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
}

// GetByReference returns all entries linked to a bet, oldest first
func (r *LedgerRepository) GetByReference(ctx context.Context, referenceID int64) ([]*entities.LedgerEntry, error) {
	return r.list(ctx, `
		SELECT id, user_id, amount, kind, reference_id, created_at
		FROM ledger_entries
		WHERE reference_id = $1
		ORDER BY id
	`, referenceID)
}

func (r *LedgerRepository) list(ctx context.Context, query string, args ...any) ([]*entities.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("select ledger entries", err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var entry entities.LedgerEntry
		var kind string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Amount, &kind, &entry.ReferenceID, &entry.CreatedAt); err != nil {
			return nil, mapError("scan ledger entry", err)
		}
		entry.Kind = entities.TransactionType(kind)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate ledger entries", err)
	}
	return entries, nil
}

const auditQuery = `
	SELECT a.user_id, a.balance, a.starting_balance,
	       COALESCE(SUM(e.amount), 0)::BIGINT, COUNT(e.id)
	FROM accounts a
	LEFT JOIN ledger_entries e ON e.user_id = a.user_id
`

// Audit compares one account's balance with its entries
func (r *LedgerRepository) Audit(ctx context.Context, userID int64) (*entities.AccountAudit, error) {
	var audit entities.AccountAudit
	err := r.q.QueryRow(ctx, auditQuery+`
		WHERE a.user_id = $1
		GROUP BY a.user_id
	`, userID).Scan(&audit.UserID, &audit.Balance, &audit.StartingBalance, &audit.EntrySum, &audit.EntryCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("audit account", err)
	}
	return &audit, nil
}

// ListInconsistent returns accounts whose balance disagrees with the ledger
func (r *LedgerRepository) ListInconsistent(ctx context.Context) ([]*entities.AccountAudit, error) {
	rows, err := r.q.Query(ctx, auditQuery+`
		GROUP BY a.user_id
		HAVING a.balance <> a.starting_balance + COALESCE(SUM(e.amount), 0)
		ORDER BY a.user_id
	`)
	if err != nil {
		return nil, mapError("audit accounts", err)
	}
	defer rows.Close()

	var audits []*entities.AccountAudit
	for rows.Next() {
		var audit entities.AccountAudit
		if err := rows.Scan(&audit.UserID, &audit.Balance, &audit.StartingBalance, &audit.EntrySum, &audit.EntryCount); err != nil {
			return nil, mapError("scan audit", err)
		}
		audits = append(audits, &audit)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate audits", err)
	}
	return audits, nil
}
