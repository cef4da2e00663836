// -----------------------------------------------------------------------------
// Testing Helpers - Database Test Utilities
// -----------------------------------------------------------------------------
// Bu package, querykit ile test yazımını kolaylaştıran helper fonksiyonlar
// sağlar.
//
// Özellikler:
// - In-memory SQLite (modernc.org/sqlite, cgo gerektirmez)
// - Transaction içinde çalışıp geri alınan testler
// - Derlenen ifadeleri yakalayan debug sink
// - Test verisi için Factory
//
// Kullanım:
//
//	func TestUserCreation(t *testing.T) {
//	    db := dbtest.RefreshDatabase(t, dbtest.UsersTable)
//	    _, err := db.Table("users").Insert(ctx, dbtest.UserFactory().Make(nil))
//	    require.NoError(t, err)
//	}
// -----------------------------------------------------------------------------

package dbtest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/querykit/pkg/database"
	"github.com/biyonik/querykit/pkg/database/migration"
)

// Schema, RefreshDatabase'in oluşturacağı tek bir tablodur.
type Schema struct {
	Table  string
	Define func(*migration.Blueprint)
}

// UsersTable, testlerde kullanılan örnek kullanıcı tablosudur.
var UsersTable = Schema{
	Table: "users",
	Define: func(t *migration.Blueprint) {
		t.ID()
		t.String("name", 100)
		t.String("email", 255).Unique()
		t.String("role", 20).Default("member")
		t.Integer("age").Unsigned().Nullable()
		t.Boolean("active").Default(true)
	},
}

// OrdersTable, users tablosuna bağlı örnek sipariş tablosudur.
var OrdersTable = Schema{
	Table: "orders",
	Define: func(t *migration.Blueprint) {
		t.ID()
		t.BigInteger("user_id")
		t.Decimal("total", 10, 2)
		t.String("status", 20)
		t.Foreign("user_id").References("id").On("users").Cascade()
		t.Index("status")
	},
}

// RefreshDatabase, her test için boş bir in-memory SQLite veritabanı açar ve
// verilen tabloları oluşturur. Bağlantı test sonunda kapatılır.
//
// In-memory veritabanı bağlantıya özel olduğu için havuz tek bağlantıyla
// sınırlandırılır.
func RefreshDatabase(t testing.TB, schemas ...Schema) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(ctx, database.Config{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
	})
	require.NoError(t, err, "open in-memory sqlite")
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	m := migration.NewMigrator(db, db.Dialect(), nil)
	for _, s := range schemas {
		require.NoError(t, m.CreateTable(ctx, s.Table, s.Define), "create table %s", s.Table)
	}
	return db
}

// DatabaseTransaction, callback'i bir transaction içinde çalıştırır ve
// sonunda her durumda geri alır.
func DatabaseTransaction(t testing.TB, db *database.DB, callback func(tx *database.Transaction)) {
	t.Helper()

	tx, err := db.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	callback(tx)
}

// -----------------------------------------------------------------------------
// Statement Recorder
// -----------------------------------------------------------------------------

// Recorder, debug modunda bildirilen ifadeleri biriktiren bir DebugSink'tir.
type Recorder struct {
	mu         sync.Mutex
	statements []database.Statement
}

// Log, ifadeyi kaydeder.
func (r *Recorder) Log(_ context.Context, stmt database.Statement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, stmt)
}

// Statements, kaydedilen ifadelerin kopyasını döndürür.
func (r *Recorder) Statements() []database.Statement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]database.Statement(nil), r.statements...)
}

// Reset, kayıtları temizler.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = nil
}

// -----------------------------------------------------------------------------
// Assertions
// -----------------------------------------------------------------------------

// AssertSQL, Fetcher'ın derlediği metni ve değerleri doğrular.
func AssertSQL(t testing.TB, f *database.Fetcher, wantSQL string, wantArgs ...any) {
	t.Helper()

	sql, args, err := f.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, wantSQL, sql)
	if len(wantArgs) == 0 {
		assert.Empty(t, args)
		return
	}
	assert.Equal(t, wantArgs, args)
}

// AssertErrorKind, hatanın verilen taksonomi türünde olduğunu doğrular.
func AssertErrorKind(t testing.TB, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
}

// -----------------------------------------------------------------------------
// Factory Pattern Helpers
// -----------------------------------------------------------------------------

// Factory, varsayılan değerlerle test satırı üretir.
type Factory struct {
	defaults map[string]any
}

// NewFactory creates a new factory with default values.
func NewFactory(defaults map[string]any) *Factory {
	return &Factory{defaults: defaults}
}

// Make, varsayılanların üzerine overrides uygulanmış yeni bir satır döndürür.
func (f *Factory) Make(overrides map[string]any) map[string]any {
	result := make(map[string]any, len(f.defaults)+len(overrides))
	for k, v := range f.defaults {
		result[k] = v
	}
	for k, v := range overrides {
		result[k] = v
	}
	return result
}

// UserFactory, UsersTable için varsayılan satır üretir.
func UserFactory() *Factory {
	return NewFactory(map[string]any{
		"name":   "Test User",
		"email":  "test@example.com",
		"role":   "member",
		"age":    30,
		"active": true,
	})
}

// OrderFactory, OrdersTable için varsayılan satır üretir.
func OrderFactory() *Factory {
	return NewFactory(map[string]any{
		"user_id": 1,
		"total":   10.5,
		"status":  "pending",
	})
}
