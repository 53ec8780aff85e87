package infrastructure

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestRedisRefreshQueue(t *testing.T) {
	addr := setupRedis(t)
	ctx := context.Background()

	client, err := ConnectRedis(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	queue := NewRedisRefreshQueue(client)

	t.Run("empty queue drains nothing", func(t *testing.T) {
		ids, err := queue.Drain(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("repeated enqueues collapse", func(t *testing.T) {
		require.NoError(t, queue.Enqueue(ctx, 5))
		require.NoError(t, queue.Enqueue(ctx, 5))
		require.NoError(t, queue.Enqueue(ctx, 9))

		ids, err := queue.Drain(ctx, 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{5, 9}, ids)

		ids, err = queue.Drain(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("drain respects the batch size", func(t *testing.T) {
		for i := int64(1); i <= 5; i++ {
			require.NoError(t, queue.Enqueue(ctx, i))
		}

		first, err := queue.Drain(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, first, 3)

		rest, err := queue.Drain(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, rest, 2)
	})

	t.Run("malformed members are dropped", func(t *testing.T) {
		require.NoError(t, client.SAdd(ctx, refreshQueueKey, "not-a-number").Err())
		require.NoError(t, queue.Enqueue(ctx, 11))

		ids, err := queue.Drain(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{11}, ids)
	})
}

func TestConnectRedis_Unreachable(t *testing.T) {
	_, err := ConnectRedis(context.Background(), fmt.Sprintf("127.0.0.1:%d", 1))
	assert.Error(t, err)
}
