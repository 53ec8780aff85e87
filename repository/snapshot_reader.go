package repository

import (
	"context"

	"wagerledger/database"
	"wagerledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

// WagerSnapshotReader reads a wager and its bets from one snapshot so the
// rendered pools always match the rendered status
type WagerSnapshotReader struct {
	db *database.DB
}

// NewWagerSnapshotReader creates a snapshot reader on the pool
func NewWagerSnapshotReader(db *database.DB) *WagerSnapshotReader {
	return &WagerSnapshotReader{db: db}
}

// GetWagerDetail returns nil when the wager does not exist
func (r *WagerSnapshotReader) GetWagerDetail(ctx context.Context, wagerID int64) (*entities.WagerDetail, error) {
	var detail *entities.WagerDetail
	err := r.db.WithSnapshot(ctx, func(tx pgx.Tx) error {
		wager, err := newWagerRepositoryWithTx(tx).GetByID(ctx, wagerID)
		if err != nil || wager == nil {
			return err
		}

		bets, err := newBetRepositoryWithTx(tx).GetByWager(ctx, wagerID)
		if err != nil {
			return err
		}

		detail = &entities.WagerDetail{Wager: wager, Bets: bets}
		return nil
	})
	if err != nil {
		return nil, mapError("read wager snapshot", err)
	}
	return detail, nil
}
