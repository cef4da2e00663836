package database

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/time/rate"
)

// -----------------------------------------------------------------------------
// THROTTLED EXECUTOR
// -----------------------------------------------------------------------------
// Throttle, bir Executor'ı token bucket rate limiter ile sarar. Her sorgu
// çalıştırılmadan önce limiter'dan izin bekler; bekleme ctx iptaline uyar.
//
// Builder'ın kendisi hiçbir zaman bekleme veya retry yapmaz. Bu sarmalayıcı
// yürütme sınırına aittir ve DB_MAX_QPS > 0 olduğunda Connect tarafından
// devreye alınır.
// -----------------------------------------------------------------------------

// ThrottledExecutor, rate limit uygulanmış Executor'dır.
type ThrottledExecutor struct {
	exec    Executor
	limiter *rate.Limiter
}

// Throttle, saniyede en fazla limit sorguya (burst kadar ani yük ile) izin
// veren bir Executor döndürür.
//
// Örnek:
//
//	exec := database.Throttle(db, rate.Limit(100), 10)
//	users := database.New(exec, database.MySQL).Table("users")
func Throttle(exec Executor, limit rate.Limit, burst int) *ThrottledExecutor {
	if burst < 1 {
		burst = 1
	}
	return &ThrottledExecutor{
		exec:    exec,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// ExecContext, izin alındıktan sonra komutu çalıştırır.
func (t *ThrottledExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle wait: %w", err)
	}
	return t.exec.ExecContext(ctx, query, args...)
}

// QueryContext, izin alındıktan sonra sorguyu çalıştırır.
func (t *ThrottledExecutor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle wait: %w", err)
	}
	return t.exec.QueryContext(ctx, query, args...)
}
