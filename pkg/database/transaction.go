// pkg/database/transaction.go
//
// Bu dosya, veritabanı işlemlerinin (transaction) güvenli ve okunabilir bir
// şekilde kontrol edilmesini sağlar.
//
// Bir transaction; bir grup veritabanı işleminin ya tamamen başarılı olmasını
// ya da hiçbirinin uygulanmamış kabul edilmesini sağlar.
//
// Örnek kullanım:
//
//	err := db.WithTransaction(ctx, func(tx *database.Transaction) error {
//	    if _, err := tx.Table("accounts").Where(database.Eq("id", 1)).Update(ctx, debit); err != nil {
//	        return err
//	    }
//	    _, err := tx.Table("accounts").Where(database.Eq("id", 2)).Update(ctx, credit)
//	    return err
//	})

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Transaction, sql.Tx sarmalayıcısıdır. Builder'ları aynı transaction
// içinde çalışır.
type Transaction struct {
	Tx      *sql.Tx
	dialect Dialect
	opts    []Option
	logger  *slog.Logger
}

// Begin, yeni bir transaction başlatır. Dönen Transaction mutlaka Commit veya
// Rollback ile sonlandırılmalıdır.
func (db *DB) Begin(ctx context.Context) (*Transaction, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	db.logger.DebugContext(ctx, "transaction started")
	return &Transaction{Tx: tx, dialect: db.dialect, opts: db.opts, logger: db.logger}, nil
}

// Builder, transaction'a bağlı yeni bir Builder oluşturur.
func (t *Transaction) Builder() *Builder {
	return New(t.Tx, t.dialect, t.opts...)
}

// Table, t.Builder().Table(name) kısayoludur.
func (t *Transaction) Table(name string) *Fetcher {
	return t.Builder().Table(name)
}

// Commit, transaction'ı başarıyla sonlandırır.
func (t *Transaction) Commit() error {
	if err := t.Tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.logger.Debug("transaction committed")
	return nil
}

// Rollback, yapılmış tüm değişiklikleri geri alır.
func (t *Transaction) Rollback() error {
	if err := t.Tx.Rollback(); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	t.logger.Debug("transaction rolled back")
	return nil
}

// WithTransaction, fn'i bir transaction içinde çalıştırır. fn hata döndürür
// veya panic olursa transaction geri alınır; aksi halde commit edilir.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
