package application

import (
	"context"
	"errors"
	"time"

	"wagerledger/domain/entities"
	"wagerledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	refreshBatchSize = 50
	// maxRefreshAttempts caps consecutive failed renders of one wager
	maxRefreshAttempts = 5
)

// RefreshRecorder receives one call per rendered wager
type RefreshRecorder interface {
	RecordPresentationRefresh(err error)
}

// PresentationRefreshWorker drains the refresh queue and re-renders each
// dirty wager from a committed snapshot. Many changes to the same wager
// between ticks collapse into one render. A failed render is queued again
// for the next tick, up to maxRefreshAttempts in a row.
type PresentationRefreshWorker struct {
	queue     RefreshQueue
	reader    WagerDetailReader
	presenter interfaces.Presenter
	metrics   RefreshRecorder

	// failures is only touched by ProcessOnce, which runs on one goroutine
	failures map[int64]int
}

// NewPresentationRefreshWorker creates a new refresh worker. metrics may be nil.
func NewPresentationRefreshWorker(
	queue RefreshQueue,
	reader WagerDetailReader,
	presenter interfaces.Presenter,
	metrics RefreshRecorder,
) *PresentationRefreshWorker {
	return &PresentationRefreshWorker{
		queue:     queue,
		reader:    reader,
		presenter: presenter,
		metrics:   metrics,
		failures:  make(map[int64]int),
	}
}

// Start begins draining the queue every interval and returns a stop function
func (w *PresentationRefreshWorker) Start(ctx context.Context, interval time.Duration) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.Infof("Presentation refresh worker started, interval %v", interval)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Presentation refresh worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Presentation refresh worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				w.ProcessOnce(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
		<-done
	}
}

// ProcessOnce renders every wager currently queued and returns how many succeeded
func (w *PresentationRefreshWorker) ProcessOnce(ctx context.Context) int {
	rendered := 0
	var retry []int64
	defer func() { w.requeue(ctx, retry) }()

	for {
		wagerIDs, err := w.queue.Drain(ctx, refreshBatchSize)
		if err != nil {
			log.WithError(err).Error("Failed to drain presentation refresh queue")
			return rendered
		}
		if len(wagerIDs) == 0 {
			return rendered
		}

		for _, wagerID := range wagerIDs {
			err := render(ctx, w.reader, w.presenter, wagerID)
			if w.metrics != nil {
				w.metrics.RecordPresentationRefresh(err)
			}
			if err == nil {
				delete(w.failures, wagerID)
				rendered++
				continue
			}

			log.WithFields(log.Fields{
				"wager_id": wagerID,
				"error":    err,
			}).Warn("Failed to refresh wager presentation")

			if w.shouldRetry(wagerID, err) {
				retry = append(retry, wagerID)
			}
		}

		if len(wagerIDs) < refreshBatchSize {
			return rendered
		}
	}
}

// shouldRetry counts the failure and reports whether the wager goes back on the queue
func (w *PresentationRefreshWorker) shouldRetry(wagerID int64, err error) bool {
	if errors.Is(err, entities.ErrNotFound) {
		delete(w.failures, wagerID)
		return false
	}

	w.failures[wagerID]++
	if w.failures[wagerID] >= maxRefreshAttempts {
		log.WithFields(log.Fields{
			"wager_id": wagerID,
			"attempts": w.failures[wagerID],
		}).Error("Giving up on wager presentation refresh")
		delete(w.failures, wagerID)
		return false
	}
	return true
}

// requeue puts failed wagers back after the pass so they wait for the next tick
func (w *PresentationRefreshWorker) requeue(ctx context.Context, wagerIDs []int64) {
	for _, wagerID := range wagerIDs {
		if err := w.queue.Enqueue(context.WithoutCancel(ctx), wagerID); err != nil {
			log.WithFields(log.Fields{
				"wager_id": wagerID,
				"error":    err,
			}).Error("Failed to requeue wager presentation refresh")
		}
	}
}
