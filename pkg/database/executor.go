package database

import (
	"context"
	"database/sql"
)

// Executor, derlenmiş (sql, values) çiftini çalıştıran yürütme sınırıdır.
//
// *sql.DB (havuz), *sql.Tx (transaction) ve *sql.Conn bu arayüzü örtük olarak
// uygular. Builder *sql.DB'ye kilitlenmek yerine bu arayüzü kullanır; böylece
// hem normal sorgularda hem de transaction'lar içinde çalışabilir.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// reboundExecutor, "?" placeholder'larını dialect biçimine çevirip asıl
// executor'a iletir.
type reboundExecutor struct {
	exec    Executor
	dialect Dialect
}

// rebind, dialect placeholder dönüşümü gerektiriyorsa executor'ı sarar.
func rebind(exec Executor, d Dialect) Executor {
	if exec == nil || !d.IsPostgreSQL() {
		return exec
	}
	if r, ok := exec.(*reboundExecutor); ok {
		return r
	}
	return &reboundExecutor{exec: exec, dialect: d}
}

func (r *reboundExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.exec.ExecContext(ctx, r.dialect.Rebind(query), args...)
}

func (r *reboundExecutor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.exec.QueryContext(ctx, r.dialect.Rebind(query), args...)
}
