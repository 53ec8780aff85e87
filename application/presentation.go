package application

import (
	"context"
	"fmt"

	"wagerledger/domain/entities"
	"wagerledger/domain/interfaces"
)

// WagerDetailReader loads a consistent view of a wager and its bets
type WagerDetailReader interface {
	GetWagerDetail(ctx context.Context, wagerID int64) (*entities.WagerDetail, error)
}

// RefreshQueue collects wagers whose presentation is stale. Enqueueing a
// wager that is already queued is a no-op.
type RefreshQueue interface {
	Enqueue(ctx context.Context, wagerID int64) error
	Drain(ctx context.Context, max int) ([]int64, error)
}

// DirectNotifier renders the wager synchronously on every refresh request
type DirectNotifier struct {
	reader    WagerDetailReader
	presenter interfaces.Presenter
}

// NewDirectNotifier creates a notifier that renders inline
func NewDirectNotifier(reader WagerDetailReader, presenter interfaces.Presenter) *DirectNotifier {
	return &DirectNotifier{reader: reader, presenter: presenter}
}

// RefreshPresentation loads the wager and renders it
func (n *DirectNotifier) RefreshPresentation(ctx context.Context, wagerID int64) error {
	return render(ctx, n.reader, n.presenter, wagerID)
}

// QueuedNotifier marks wagers dirty for the refresh worker
type QueuedNotifier struct {
	queue RefreshQueue
}

// NewQueuedNotifier creates a notifier backed by a refresh queue
func NewQueuedNotifier(queue RefreshQueue) *QueuedNotifier {
	return &QueuedNotifier{queue: queue}
}

// RefreshPresentation enqueues the wager
func (n *QueuedNotifier) RefreshPresentation(ctx context.Context, wagerID int64) error {
	if err := n.queue.Enqueue(ctx, wagerID); err != nil {
		return fmt.Errorf("failed to enqueue refresh for wager %d: %w", wagerID, err)
	}
	return nil
}

func render(ctx context.Context, reader WagerDetailReader, presenter interfaces.Presenter, wagerID int64) error {
	detail, err := reader.GetWagerDetail(ctx, wagerID)
	if err != nil {
		return fmt.Errorf("failed to load wager %d: %w", wagerID, err)
	}
	if detail == nil {
		return fmt.Errorf("%w: %d", entities.ErrWagerNotFound, wagerID)
	}
	if err := presenter.Render(ctx, detail); err != nil {
		return fmt.Errorf("failed to render wager %d: %w", wagerID, err)
	}
	return nil
}
