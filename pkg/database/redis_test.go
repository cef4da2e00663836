package database

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRedisConfig, QUERYKIT_TEST_REDIS_HOST tanımlı değilse testi atlar.
func testRedisConfig(t *testing.T) *RedisConfig {
	t.Helper()

	host := os.Getenv("QUERYKIT_TEST_REDIS_HOST")
	if host == "" {
		t.Skip("QUERYKIT_TEST_REDIS_HOST not set")
	}
	cfg := DefaultRedisConfig()
	cfg.Host = host
	if port, err := strconv.Atoi(os.Getenv("QUERYKIT_TEST_REDIS_PORT")); err == nil {
		cfg.Port = port
	}
	cfg.DB = 15
	return cfg
}

func TestRedisSink_PushAndRecent(t *testing.T) {
	ctx := context.Background()
	client, err := NewRedisClient(ctx, testRedisConfig(t), nil)
	require.NoError(t, err)
	defer client.Close()

	key := "querykit:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	sink := NewRedisSink(client, key, 2, nil)
	for i := 1; i <= 3; i++ {
		sink.Log(ctx, Statement{ID: uuid.New(), SQL: "SELECT " + strconv.Itoa(i), Dialect: "mysql"})
	}

	recent, err := sink.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "SELECT 3", recent[0].SQL)
	assert.Equal(t, "SELECT 2", recent[1].SQL)
}

func TestRedisSink_UnreachableServerDoesNotFail(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	defer client.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	sink := NewRedisSink(client, "", 0, logger)

	assert.Equal(t, DefaultQueryLogKey, sink.key)
	assert.Equal(t, int64(1000), sink.max)

	sink.Log(context.Background(), Statement{ID: uuid.New(), SQL: "SELECT 1"})
	assert.Contains(t, buf.String(), "query log push failed")

	_, err := sink.Recent(context.Background(), 5)
	assert.Error(t, err)

	none, err := sink.Recent(context.Background(), 0)
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestNewRedisClient_PingFailure(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Port = 1
	cfg.MaxRetries = -1
	cfg.DialTimeout = 50 * time.Millisecond

	_, err := NewRedisClient(context.Background(), cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	assert.Error(t, err)
}

func TestSlogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	id := uuid.New()
	NewSlogSink(logger).Log(context.Background(), Statement{ID: id, SQL: "SELECT * FROM users WHERE id = ?", Args: []any{1}, Dialect: "sqlite"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "query", entry["msg"])
	assert.Equal(t, id.String(), entry["id"])
	assert.Equal(t, "sqlite", entry["dialect"])
	assert.Equal(t, "SELECT * FROM users WHERE id = ?", entry["sql"])
	assert.Equal(t, []any{float64(1)}, entry["args"])
}
