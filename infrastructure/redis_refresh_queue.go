package infrastructure

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const refreshQueueKey = "wagerledger:presentation:dirty"

// RedisRefreshQueue keeps dirty wager ids in a Redis set, so repeated
// changes to one wager collapse into a single refresh
type RedisRefreshQueue struct {
	client redis.Cmdable
	key    string
}

// ConnectRedis creates a client and verifies it with a ping
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisRefreshQueue creates a queue on the given client
func NewRedisRefreshQueue(client redis.Cmdable) *RedisRefreshQueue {
	return &RedisRefreshQueue{client: client, key: refreshQueueKey}
}

// Enqueue marks the wager dirty
func (q *RedisRefreshQueue) Enqueue(ctx context.Context, wagerID int64) error {
	if err := q.client.SAdd(ctx, q.key, wagerID).Err(); err != nil {
		return fmt.Errorf("failed to mark wager %d dirty: %w", wagerID, err)
	}
	return nil
}

// Drain atomically removes and returns up to max dirty wager ids
func (q *RedisRefreshQueue) Drain(ctx context.Context, max int) ([]int64, error) {
	members, err := q.client.SPopN(ctx, q.key, int64(max)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to drain refresh queue: %w", err)
	}

	wagerIDs := make([]int64, 0, len(members))
	for _, member := range members {
		wagerID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			log.WithField("member", member).Warn("Dropping malformed refresh queue entry")
			continue
		}
		wagerIDs = append(wagerIDs, wagerID)
	}
	return wagerIDs, nil
}
