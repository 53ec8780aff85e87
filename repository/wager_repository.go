package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wagerledger/database"
	"wagerledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

const wagerColumns = `id, creator_id, title, COALESCE(description, ''), options, status, winning_option,
	message_id, channel_id, created_at, resolved_at`

// WagerRepository implements interfaces.WagerRepository
type WagerRepository struct {
	q queryable
}

// NewWagerRepository creates a wager repository on the pool
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

func newWagerRepositoryWithTx(tx queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

// Create inserts an open wager and fills ID and CreatedAt
func (r *WagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	options, err := json.Marshal(wager.Options)
	if err != nil {
		return fmt.Errorf("failed to encode wager options: %w", err)
	}

	err = r.q.QueryRow(ctx, `
		INSERT INTO wagers (creator_id, title, description, options, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, wager.CreatorID, wager.Title, wager.Description, options, string(wager.Status)).Scan(&wager.ID, &wager.CreatedAt)
	if err != nil {
		return mapError("insert wager", err)
	}
	return nil
}

// GetByID returns the wager or nil when it does not exist
func (r *WagerRepository) GetByID(ctx context.Context, id int64) (*entities.Wager, error) {
	return r.get(ctx, `SELECT `+wagerColumns+` FROM wagers WHERE id = $1`, id)
}

// GetByIDForShare holds a share lock so the status cannot change underneath a bet
func (r *WagerRepository) GetByIDForShare(ctx context.Context, id int64) (*entities.Wager, error) {
	return r.get(ctx, `SELECT `+wagerColumns+` FROM wagers WHERE id = $1 FOR SHARE`, id)
}

// GetByIDForUpdate holds the exclusive lock taken by close and resolve
func (r *WagerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Wager, error) {
	return r.get(ctx, `SELECT `+wagerColumns+` FROM wagers WHERE id = $1 FOR UPDATE`, id)
}

func (r *WagerRepository) get(ctx context.Context, query string, id int64) (*entities.Wager, error) {
	wager, err := scanWager(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("select wager", err)
	}
	return wager, nil
}

// UpdateStatus moves the wager from one status to another only if it is still in from
func (r *WagerRepository) UpdateStatus(ctx context.Context, id int64, from, to entities.WagerStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s to %s", entities.ErrIllegalTransition, from, to)
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE wagers SET status = $3
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to))
	if err != nil {
		return mapError("update wager status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: wager %d is no longer %s", entities.ErrIllegalTransition, id, from)
	}
	return nil
}

// MarkResolved stores the outcome. A wager already resolved is left untouched.
func (r *WagerRepository) MarkResolved(ctx context.Context, id int64, winningOption int, resolvedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE wagers
		SET status = 'resolved', winning_option = $2, resolved_at = $3
		WHERE id = $1 AND status IN ('open', 'closed')
	`, id, winningOption, resolvedAt)
	if err != nil {
		return mapError("resolve wager", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: wager %d", entities.ErrAlreadyResolved, id)
	}
	return nil
}

// SetPresentation records where the wager is displayed
func (r *WagerRepository) SetPresentation(ctx context.Context, id int64, handle entities.PresentationHandle) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE wagers SET message_id = $2, channel_id = $3
		WHERE id = $1
	`, id, handle.MessageID, handle.ChannelID)
	if err != nil {
		return mapError("update wager presentation", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", entities.ErrWagerNotFound, id)
	}
	return nil
}

// ListByStatus returns the newest wagers with the given status
func (r *WagerRepository) ListByStatus(ctx context.Context, status entities.WagerStatus, limit int) ([]*entities.Wager, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+wagerColumns+`
		FROM wagers
		WHERE status = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, mapError("list wagers", err)
	}
	defer rows.Close()

	var wagers []*entities.Wager
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, mapError("scan wager", err)
		}
		wagers = append(wagers, wager)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate wagers", err)
	}
	return wagers, nil
}

func scanWager(row pgx.Row) (*entities.Wager, error) {
	var wager entities.Wager
	var options []byte
	var status string
	var winningOption *int32
	var messageID, channelID *int64

	err := row.Scan(
		&wager.ID,
		&wager.CreatorID,
		&wager.Title,
		&wager.Description,
		&options,
		&status,
		&winningOption,
		&messageID,
		&channelID,
		&wager.CreatedAt,
		&wager.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(options, &wager.Options); err != nil {
		return nil, fmt.Errorf("failed to decode options of wager %d: %w", wager.ID, err)
	}
	if wager.Status, err = entities.ParseWagerStatus(status); err != nil {
		return nil, err
	}
	if winningOption != nil {
		option := int(*winningOption)
		wager.WinningOption = &option
	}
	if messageID != nil && channelID != nil {
		wager.Presentation = &entities.PresentationHandle{MessageID: *messageID, ChannelID: *channelID}
	}
	return &wager, nil
}
