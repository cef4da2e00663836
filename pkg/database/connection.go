// -----------------------------------------------------------------------------
// Database Connection
// -----------------------------------------------------------------------------
// Bu dosya, uygulamanın veritabanına bağlanmasını sağlayan merkezi bağlantı
// fonksiyonunu içerir. Desteklenen sürücüler:
//
//   - mysql    → github.com/go-sql-driver/mysql
//   - postgres → github.com/lib/pq
//   - pgx      → github.com/jackc/pgx/v5/stdlib
//   - sqlite   → modernc.org/sqlite (cgo gerektirmez)
//
// Connect bağlantıyı açar, havuz ayarlarını uygular, Ping ile doğrular ve
// dialect'i açılan sürücünün tipinden belirler.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"
)

// Config, veritabanı bağlantı yapılandırmasıdır.
type Config struct {
	Driver          string        // mysql, postgres, pgx, sqlite
	DSN             string        // sürücüye özgü bağlantı dizesi
	MaxOpenConns    int           // maksimum açık bağlantı (0 = sınırsız)
	MaxIdleConns    int           // maksimum boşta bağlantı
	ConnMaxLifetime time.Duration // bağlantı ömrü
	MaxQPS          float64       // saniyedeki maksimum sorgu (0 = sınırsız)
	Burst           int           // MaxQPS için ani yük kapasitesi
	Debug           bool          // tüm Fetcher'lar debug modunda başlar
}

// DB, açık bir bağlantı havuzu ve tespit edilmiş dialect'tir.
type DB struct {
	*sql.DB
	dialect Dialect
	exec    Executor
	opts    []Option
	logger  *slog.Logger
}

// Connect, verilen yapılandırma ile veritabanına bağlanır.
//
// Bağlantı sırasında şu adımlar gerçekleştirilir:
//  1. sql.Open ile sürücü ve DSN kullanılarak bağlantı nesnesi oluşturulur.
//  2. Havuz ayarları (max open/idle, lifetime) uygulanır.
//  3. PingContext ile veritabanının ulaşılabilirliği kontrol edilir.
//  4. Dialect, açılan sürücünün tipinden tespit edilir.
//
// Hata durumunda bağlantı kapatılır.
func Connect(ctx context.Context, cfg Config, opts ...Option) (*DB, error) {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Driver == "" {
		return nil, identityError("database driver is required")
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	dialect, err := DetectDialect(db.Driver())
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	logger.Info("connecting to database", slog.String("driver", cfg.Driver), slog.String("dialect", dialect.String()))
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	logger.Info("database connected", slog.String("dialect", dialect.String()))

	var exec Executor = db
	if cfg.MaxQPS > 0 {
		exec = Throttle(db, rate.Limit(cfg.MaxQPS), cfg.Burst)
	}

	builderOpts := append([]Option{WithLogger(logger)}, opts...)
	if cfg.Debug {
		builderOpts = append(builderOpts, WithDebug(true))
	}

	return &DB{
		DB:      db,
		dialect: dialect,
		exec:    exec,
		opts:    builderOpts,
		logger:  logger,
	}, nil
}

// Dialect, tespit edilen dialect'i döndürür.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Builder, bu bağlantı üzerinde çalışan bir Builder döndürür.
//
//	rows, err := db.Builder().Table("users").All(ctx)
func (db *DB) Builder() *Builder {
	return New(db.exec, db.dialect, db.opts...)
}

// Table, db.Builder().Table(name) kısayoludur.
func (db *DB) Table(name string) *Fetcher {
	return db.Builder().Table(name)
}
