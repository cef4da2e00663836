// -----------------------------------------------------------------------------
// Redis Query Log
// -----------------------------------------------------------------------------
// Redis bağlantı havuzu ve debug ifadelerini Redis'e yazan sink.
//
// RedisSink, derlenmiş ifadeleri JSON olarak sınırlı bir Redis listesine
// ekler (LPUSH + LTRIM). Birden fazla uygulama instance'ının ürettiği sorgular
// tek bir yerden izlenebilir:
//
//	redis-cli LRANGE querykit:queries 0 20
//
// Redis'e yazma hatası derlemeyi veya sorguyu asla engellemez; sadece loglanır.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig, Redis bağlantı yapılandırması.
type RedisConfig struct {
	Host         string        // Redis sunucu adresi
	Port         int           // Redis port
	Password     string        // Redis şifresi (opsiyonel)
	DB           int           // Database numarası (0-15)
	PoolSize     int           // Connection pool boyutu
	MinIdleConns int           // Minimum idle connection sayısı
	MaxRetries   int           // Maksimum retry sayısı
	DialTimeout  time.Duration // Bağlantı timeout süresi
	ReadTimeout  time.Duration // Okuma timeout süresi
	WriteTimeout time.Duration // Yazma timeout süresi
}

// DefaultRedisConfig, varsayılan Redis yapılandırması.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:         "127.0.0.1",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewRedisClient, yeni bir Redis client oluşturur ve bağlantıyı test eder.
//
// Örnek:
//
//	client, err := database.NewRedisClient(ctx, database.DefaultRedisConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func NewRedisClient(ctx context.Context, config *RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Error("redis connection failed", slog.String("addr", client.Options().Addr), slog.Any("error", err))
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("redis connected", slog.String("addr", client.Options().Addr), slog.Int("db", config.DB))
	return client, nil
}

// DefaultQueryLogKey, RedisSink'in varsayılan liste anahtarıdır.
const DefaultQueryLogKey = "querykit:queries"

// RedisSink, ifadeleri sınırlı bir Redis listesine yazan DebugSink'tir.
type RedisSink struct {
	client  redis.Cmdable
	key     string
	max     int64
	timeout time.Duration
	logger  *slog.Logger
}

// NewRedisSink, bir RedisSink oluşturur.
//
// Parametreler:
//   - client: Redis client (redis.Client, redis.ClusterClient veya pipeline)
//   - key: Liste anahtarı; boşsa DefaultQueryLogKey
//   - max: Listede tutulacak en fazla ifade sayısı; 0 veya negatifse 1000
func NewRedisSink(client redis.Cmdable, key string, max int64, logger *slog.Logger) *RedisSink {
	if key == "" {
		key = DefaultQueryLogKey
	}
	if max <= 0 {
		max = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSink{
		client:  client,
		key:     key,
		max:     max,
		timeout: time.Second,
		logger:  logger,
	}
}

// Log, ifadeyi listenin başına ekler ve listeyi max uzunlukta tutar.
func (s *RedisSink) Log(ctx context.Context, stmt Statement) {
	payload, err := json.Marshal(stmt)
	if err != nil {
		s.logger.Warn("query log encode failed", slog.String("id", stmt.ID.String()), slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, payload)
		pipe.LTrim(ctx, s.key, 0, s.max-1)
		return nil
	})
	if err != nil {
		s.logger.Warn("query log push failed", slog.String("key", s.key), slog.Any("error", err))
	}
}

// Recent, listeye yazılmış son n ifadeyi (en yeni önce) döndürür.
func (s *RedisSink) Recent(ctx context.Context, n int64) ([]Statement, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := s.client.LRange(ctx, s.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("query log read: %w", err)
	}

	out := make([]Statement, 0, len(raw))
	for _, item := range raw {
		var stmt Statement
		if err := json.Unmarshal([]byte(item), &stmt); err != nil {
			return nil, fmt.Errorf("query log decode: %w", err)
		}
		out = append(out, stmt)
	}
	return out, nil
}
