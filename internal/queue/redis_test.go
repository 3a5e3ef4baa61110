package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	config := DefaultConfig("test-events")
	config.UseRedis = true
	config.RedisAddr = mr.Addr()

	q, err := NewRedisQueue(config)
	require.NoError(t, err)

	return q, mr
}

func TestRedisQueue_EnqueueDequeue(t *testing.T) {
	q, mr := setupRedisQueue(t)
	defer mr.Close()
	defer q.Close()

	ctx := context.Background()

	event := map[string]interface{}{"alias": "orbit", "task_type": "chat"}
	require.NoError(t, q.Enqueue(ctx, event))

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, length)

	items, err := q.DequeueWithTimeout(ctx, 10, 1*time.Second)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Items round-trip through Redis as JSON
	raw, ok := items[0].(json.RawMessage)
	require.True(t, ok)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "orbit", got["alias"])
	assert.Equal(t, "chat", got["task_type"])
}

func TestRedisQueue_DequeueTimeout(t *testing.T) {
	q, mr := setupRedisQueue(t)
	defer mr.Close()
	defer q.Close()

	ctx := context.Background()

	items, err := q.DequeueWithTimeout(ctx, 10, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRedisQueue_TryEnqueue(t *testing.T) {
	q, mr := setupRedisQueue(t)
	defer mr.Close()
	defer q.Close()

	require.NoError(t, q.TryEnqueue("event-1"))
	require.NoError(t, q.TryEnqueue("event-2"))

	length, err := q.Length(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, length)
}

func TestRedisDeadLetterQueue(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	config := DefaultConfig("test-events")
	config.UseRedis = true
	config.RedisAddr = mr.Addr()

	dlq, err := NewRedisDeadLetterQueue(config)
	require.NoError(t, err)
	defer dlq.Close()

	ctx := context.Background()

	require.NoError(t, dlq.Add(ctx, "failed-batch", errors.New("write failed")))
	require.NoError(t, dlq.Add(ctx, "failed-batch-2", errors.New("write failed again")))

	items, err := dlq.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].ID, items[1].ID)

	require.NoError(t, dlq.Remove(ctx, items[0].ID))

	items, err = dlq.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
