package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wagerledger/domain/entities"
	"wagerledger/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryQueue is an in-memory RefreshQueue with set semantics
type memoryQueue struct {
	mu      sync.Mutex
	pending map[int64]struct{}
	err     error
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{pending: make(map[int64]struct{})}
}

func (q *memoryQueue) Enqueue(ctx context.Context, wagerID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.pending[wagerID] = struct{}{}
	return nil
}

func (q *memoryQueue) Drain(ctx context.Context, max int) ([]int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	var ids []int64
	for id := range q.pending {
		if len(ids) == max {
			break
		}
		ids = append(ids, id)
		delete(q.pending, id)
	}
	return ids, nil
}

type stubReader struct {
	details map[int64]*entities.WagerDetail
	err     error
}

func (r *stubReader) GetWagerDetail(ctx context.Context, wagerID int64) (*entities.WagerDetail, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.details[wagerID], nil
}

func detailFor(wagerID int64) *entities.WagerDetail {
	return &entities.WagerDetail{Wager: &entities.Wager{ID: wagerID, Options: []string{"A", "B"}}}
}

func TestQueuedNotifier_CollapsesRepeatedRefreshes(t *testing.T) {
	queue := newMemoryQueue()
	notifier := NewQueuedNotifier(queue)
	ctx := context.Background()

	require.NoError(t, notifier.RefreshPresentation(ctx, 1))
	require.NoError(t, notifier.RefreshPresentation(ctx, 1))
	require.NoError(t, notifier.RefreshPresentation(ctx, 2))

	presenter := &testhelpers.MockPresenter{}
	presenter.On("Render", mock.Anything, mock.Anything).Return(nil)

	reader := &stubReader{details: map[int64]*entities.WagerDetail{1: detailFor(1), 2: detailFor(2)}}
	worker := NewPresentationRefreshWorker(queue, reader, presenter, nil)

	assert.Equal(t, 2, worker.ProcessOnce(ctx))
	presenter.AssertNumberOfCalls(t, "Render", 2)

	assert.Equal(t, 0, worker.ProcessOnce(ctx))
}

func TestQueuedNotifier_EnqueueError(t *testing.T) {
	queue := newMemoryQueue()
	queue.err = errors.New("redis down")

	err := NewQueuedNotifier(queue).RefreshPresentation(context.Background(), 1)
	assert.Error(t, err)
}

func TestPresentationRefreshWorker_ContinuesAfterFailures(t *testing.T) {
	ctx := context.Background()
	queue := newMemoryQueue()
	require.NoError(t, queue.Enqueue(ctx, 1))
	require.NoError(t, queue.Enqueue(ctx, 2))
	require.NoError(t, queue.Enqueue(ctx, 3))

	presenter := &testhelpers.MockPresenter{}
	presenter.On("Render", mock.Anything, mock.MatchedBy(func(d *entities.WagerDetail) bool {
		return d.Wager.ID == 1
	})).Return(errors.New("message deleted"))
	presenter.On("Render", mock.Anything, mock.Anything).Return(nil)

	// Wager 3 no longer exists
	reader := &stubReader{details: map[int64]*entities.WagerDetail{1: detailFor(1), 2: detailFor(2)}}
	worker := NewPresentationRefreshWorker(queue, reader, presenter, nil)

	assert.Equal(t, 1, worker.ProcessOnce(ctx))

	// The failed render waits for the next pass; the missing wager is dropped
	assert.Equal(t, map[int64]struct{}{1: {}}, queue.pending)
}

func TestPresentationRefreshWorker_RetriesFailedRender(t *testing.T) {
	ctx := context.Background()
	queue := newMemoryQueue()
	require.NoError(t, queue.Enqueue(ctx, 5))

	presenter := &testhelpers.MockPresenter{}
	presenter.On("Render", mock.Anything, mock.Anything).Return(errors.New("rate limited")).Once()
	presenter.On("Render", mock.Anything, mock.Anything).Return(nil)

	reader := &stubReader{details: map[int64]*entities.WagerDetail{5: detailFor(5)}}
	worker := NewPresentationRefreshWorker(queue, reader, presenter, nil)

	assert.Equal(t, 0, worker.ProcessOnce(ctx))
	assert.Equal(t, 1, worker.ProcessOnce(ctx))
	assert.Empty(t, queue.pending)
	assert.Empty(t, worker.failures)
	presenter.AssertNumberOfCalls(t, "Render", 2)
}

func TestPresentationRefreshWorker_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	queue := newMemoryQueue()
	require.NoError(t, queue.Enqueue(ctx, 9))

	presenter := &testhelpers.MockPresenter{}
	presenter.On("Render", mock.Anything, mock.Anything).Return(errors.New("missing permissions"))

	reader := &stubReader{details: map[int64]*entities.WagerDetail{9: detailFor(9)}}
	worker := NewPresentationRefreshWorker(queue, reader, presenter, nil)

	for i := 0; i < maxRefreshAttempts; i++ {
		assert.Equal(t, 0, worker.ProcessOnce(ctx))
	}

	presenter.AssertNumberOfCalls(t, "Render", maxRefreshAttempts)
	assert.Empty(t, queue.pending)
	assert.Equal(t, 0, worker.ProcessOnce(ctx))
	presenter.AssertNumberOfCalls(t, "Render", maxRefreshAttempts)
}

func TestPresentationRefreshWorker_StartStop(t *testing.T) {
	ctx := context.Background()
	queue := newMemoryQueue()
	require.NoError(t, queue.Enqueue(ctx, 7))

	rendered := make(chan int64, 1)
	presenter := &testhelpers.MockPresenter{}
	presenter.On("Render", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		rendered <- args.Get(1).(*entities.WagerDetail).Wager.ID
	}).Return(nil)

	reader := &stubReader{details: map[int64]*entities.WagerDetail{7: detailFor(7)}}
	worker := NewPresentationRefreshWorker(queue, reader, presenter, nil)

	stop := worker.Start(ctx, 10*time.Millisecond)
	defer stop()

	select {
	case id := <-rendered:
		assert.Equal(t, int64(7), id)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not render the queued wager")
	}
}

func TestDirectNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("renders the loaded wager", func(t *testing.T) {
		presenter := &testhelpers.MockPresenter{}
		presenter.On("Render", ctx, mock.Anything).Return(nil)

		notifier := NewDirectNotifier(&stubReader{details: map[int64]*entities.WagerDetail{4: detailFor(4)}}, presenter)
		require.NoError(t, notifier.RefreshPresentation(ctx, 4))
		presenter.AssertExpectations(t)
	})

	t.Run("missing wager", func(t *testing.T) {
		notifier := NewDirectNotifier(&stubReader{}, &testhelpers.MockPresenter{})
		err := notifier.RefreshPresentation(ctx, 4)
		assert.ErrorIs(t, err, entities.ErrWagerNotFound)
	})

	t.Run("reader failure", func(t *testing.T) {
		notifier := NewDirectNotifier(&stubReader{err: errors.New("timeout")}, &testhelpers.MockPresenter{})
		assert.Error(t, notifier.RefreshPresentation(ctx, 4))
	})
}
