package application_test

import (
	"context"
	"sync"
	"testing"

	"wagerledger/application"
	"wagerledger/domain/entities"
	"wagerledger/infrastructure"
	"wagerledger/repository/testutil"

	"github.com/stretchr/testify/require"
)

const (
	userA   int64 = 100
	userB   int64 = 200
	userC   int64 = 300
	creator int64 = 1
)

// recordingNotifier collects refresh requests and can be told to fail
type recordingNotifier struct {
	mu       sync.Mutex
	wagerIDs []int64
	err      error
}

func (n *recordingNotifier) RefreshPresentation(ctx context.Context, wagerID int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.wagerIDs = append(n.wagerIDs, wagerID)
	return n.err
}

func (n *recordingNotifier) calls() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int64(nil), n.wagerIDs...)
}

type harness struct {
	db          *testutil.TestDatabase
	coordinator *application.WagerCoordinator
	notifier    *recordingNotifier
}

func setupHarness(t *testing.T) *harness {
	t.Helper()
	testDB := testutil.SetupTestDatabase(t)

	notifier := &recordingNotifier{}
	factory := infrastructure.NewUnitOfWorkFactory(testDB.DB, infrastructure.NewNoopEventPublisher())

	return &harness{
		db:          testDB,
		coordinator: application.NewWagerCoordinator(factory, notifier, nil),
		notifier:    notifier,
	}
}

// createWager creates accounts for the given users and a wager with the options
func (h *harness) createWager(t *testing.T, options []string, users ...int64) *entities.Wager {
	t.Helper()
	ctx := context.Background()

	for _, userID := range append([]int64{creator}, users...) {
		_, err := h.coordinator.GetOrCreateAccount(ctx, userID)
		require.NoError(t, err)
	}

	wager, err := h.coordinator.CreateWager(ctx, creator, "Test wager", "", options)
	require.NoError(t, err)
	return wager
}

func (h *harness) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	return testutil.Balance(t, h.db.DB, userID)
}

func (h *harness) assertConsistent(t *testing.T) {
	t.Helper()
	inconsistent, err := h.coordinator.AuditAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, inconsistent, "every balance must equal starting balance plus ledger sum")
}
