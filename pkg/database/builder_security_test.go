package database

import (
	"errors"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// SQL INJECTION GÜVENLİK TESTLERİ
// -----------------------------------------------------------------------------
// Bu testler, SQL injection saldırılarına karşı korumanın çalıştığını doğrular.
// Her test case bir exploit senaryosunu simüle eder. Geçersiz identifier'lar
// Fetcher üzerinde kalıcı bir ErrIdentity hatası bırakmalı ve ToSQL bu hatayı
// döndürmelidir.
// -----------------------------------------------------------------------------

func newTestBuilder() *Builder {
	return New(nil, MySQL)
}

func expectIdentityError(t *testing.T, f *Fetcher, input string) {
	t.Helper()

	sql, _, err := f.ToSQL()
	if err == nil {
		t.Fatalf("Expected identity error for malicious input '%s', got SQL: %s", input, sql)
	}
	if !errors.Is(err, ErrIdentity) {
		t.Errorf("Expected ErrIdentity for '%s', got: %v", input, err)
	}
}

// TestSQLInjection_OrderBy_MaliciousColumn tests SQL injection prevention in OrderBy
func TestSQLInjection_OrderBy_MaliciousColumn(t *testing.T) {
	qb := newTestBuilder()

	maliciousInputs := []struct {
		name   string
		column string
	}{
		{
			name:   "DROP TABLE attack",
			column: "id; DROP TABLE users--",
		},
		{
			name:   "OR injection",
			column: "id' OR '1'='1",
		},
		{
			name:   "UNION attack",
			column: "id UNION SELECT * FROM passwords--",
		},
		{
			name:   "Comment injection",
			column: "id--",
		},
		{
			name:   "Semicolon injection",
			column: "id; UPDATE users SET admin=1",
		},
		{
			name:   "Quote injection",
			column: "id'",
		},
		{
			name:   "Double quote injection",
			column: `id"`,
		},
		{
			name:   "Backtick injection",
			column: "id`",
		},
	}

	for _, tc := range maliciousInputs {
		t.Run(tc.name, func(t *testing.T) {
			expectIdentityError(t, qb.Table("users").OrderBy(tc.column, "DESC"), tc.column)
		})
	}
}

// TestSQLInjection_Where_MaliciousColumn tests SQL injection prevention in Where
func TestSQLInjection_Where_MaliciousColumn(t *testing.T) {
	qb := newTestBuilder()

	maliciousInputs := []string{
		"id; DROP TABLE users--",
		"id' OR '1'='1",
		"id/**/OR/**/1=1",
		"id'; DELETE FROM users WHERE '1'='1",
	}

	for _, column := range maliciousInputs {
		t.Run(column, func(t *testing.T) {
			expectIdentityError(t, qb.Table("users").Where(Op(column, "=", 1)), column)
		})
	}
}

// TestSQLInjection_Table_MaliciousName tests SQL injection prevention in Table
func TestSQLInjection_Table_MaliciousName(t *testing.T) {
	qb := newTestBuilder()

	maliciousInputs := []string{
		"users; DROP TABLE sessions--",
		"users' OR '1'='1",
		"users/**/UNION/**/SELECT",
		"*",
	}

	for _, table := range maliciousInputs {
		t.Run(table, func(t *testing.T) {
			expectIdentityError(t, qb.Table(table), table)
		})
	}
}

// TestSQLInjection_Join_MaliciousTable tests SQL injection prevention in Join
func TestSQLInjection_Join_MaliciousTable(t *testing.T) {
	qb := newTestBuilder()

	maliciousInputs := []string{
		"orders; DROP TABLE users--",
		"orders o",
		"",
	}

	for _, table := range maliciousInputs {
		t.Run(table, func(t *testing.T) {
			f := qb.Table("users").InnerJoin(table, Eq("users.id", "orders.user_id"))
			expectIdentityError(t, f, table)
		})
	}
}

// TestSQLInjection_Select_MaliciousColumn tests SQL injection prevention in Select
func TestSQLInjection_Select_MaliciousColumn(t *testing.T) {
	qb := newTestBuilder()

	maliciousInputs := []string{
		"id; DROP TABLE users--",
		"id, (SELECT password FROM admin)",
		"*; DELETE FROM users--",
	}

	for _, column := range maliciousInputs {
		t.Run(column, func(t *testing.T) {
			expectIdentityError(t, qb.Table("users").Select(column), column)
		})
	}
}

// TestSQLInjection_Insert_MaliciousColumn tests SQL injection prevention in Insert
func TestSQLInjection_Insert_MaliciousColumn(t *testing.T) {
	grammar := NewGrammar(MySQL)

	data := map[string]any{
		"name; DROP TABLE users--": "test",
	}

	_, _, err := grammar.CompileInsert("users", []map[string]any{data})
	if !errors.Is(err, ErrIdentity) {
		t.Errorf("Expected ErrIdentity for malicious column name in Insert, got: %v", err)
	}
}

// TestSQLInjection_Update_MaliciousColumn tests SQL injection prevention in Update
func TestSQLInjection_Update_MaliciousColumn(t *testing.T) {
	qb := newTestBuilder()
	f := qb.Table("users").Where(Eq("id", 1))

	data := map[string]any{
		"id' OR '1'='1": "hacked",
	}

	_, _, err := qb.Grammar().CompileUpdate(f.snapshot(), data)
	if !errors.Is(err, ErrIdentity) {
		t.Errorf("Expected ErrIdentity for malicious column name in Update, got: %v", err)
	}
}

// TestSQLInjection_Values_AreBound tests that values never reach the SQL text
func TestSQLInjection_Values_AreBound(t *testing.T) {
	qb := newTestBuilder()

	payload := "'; DROP TABLE users--"
	sql, args, err := qb.Table("users").Where(Eq("name", payload)).ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	if strings.Contains(sql, "DROP TABLE") {
		t.Errorf("Value leaked into SQL: %s", sql)
	}
	if len(args) != 1 || args[0] != payload {
		t.Errorf("Expected payload as the only bound value, got %v", args)
	}
}

// TestValidIdentifiers tests that legitimate identifiers are accepted
func TestValidIdentifiers(t *testing.T) {
	validCases := []struct {
		name   string
		method func(qb *Builder) *Fetcher
	}{
		{
			name: "Simple column",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("users").OrderBy("id", "DESC")
			},
		},
		{
			name: "Underscore column",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("users").OrderBy("user_id", "ASC")
			},
		},
		{
			name: "Table.column format",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("users").OrderBy("users.created_at", "DESC")
			},
		},
		{
			name: "Numeric in name",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("table123").OrderBy("column2", "ASC")
			},
		},
		{
			name: "Wildcard select",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("users").Select("*")
			},
		},
		{
			name: "Table wildcard select",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("users").Select("users.*")
			},
		},
		{
			name: "Multiple columns",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("users").Select("id", "name", "email")
			},
		},
	}

	for _, tc := range validCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := tc.method(newTestBuilder()).ToSQL(); err != nil {
				t.Errorf("Valid identifier rejected: %v", err)
			}
		})
	}
}

// TestSQLFunctions tests that SQL functions are handled correctly
func TestSQLFunctions(t *testing.T) {
	validFunctions := []string{
		"COUNT(*) as total",
		"COUNT(DISTINCT email) AS emails",
		"SUM(price)",
		"MAX(id)",
		"MIN(created_at)",
		"AVG(rating)",
	}

	for _, fn := range validFunctions {
		t.Run(fn, func(t *testing.T) {
			if _, _, err := newTestBuilder().Table("users").Select(fn).ToSQL(); err != nil {
				t.Errorf("Valid SQL function '%s' rejected: %v", fn, err)
			}
		})
	}
}

// TestMaliciousSQLFunctions tests that malicious SQL functions are blocked
func TestMaliciousSQLFunctions(t *testing.T) {
	maliciousFunctions := []string{
		"COUNT(*); DROP TABLE users--",
		"SUM(price)--comment",
		"MAX((SELECT password FROM admin))",
		"LOWER('x')",
	}

	for _, fn := range maliciousFunctions {
		t.Run(fn, func(t *testing.T) {
			expectIdentityError(t, newTestBuilder().Table("users").Select(fn), fn)
		})
	}
}

// TestEmptyIdentifiers tests that empty identifiers are rejected
func TestEmptyIdentifiers(t *testing.T) {
	testCases := []struct {
		name   string
		method func(qb *Builder) *Fetcher
	}{
		{
			name: "Empty table name",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("")
			},
		},
		{
			name: "Empty column in Where",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("users").Where(Op("", "=", 1))
			},
		},
		{
			name: "Empty column in OrderBy",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("users").OrderBy("", "ASC")
			},
		},
		{
			name: "Whitespace only table",
			method: func(qb *Builder) *Fetcher {
				return qb.Table("   ")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := tc.method(newTestBuilder()).ToSQL()
			if err == nil {
				t.Error("Expected error for empty identifier, but none occurred")
			}
		})
	}
}

// TestMultipleDots tests that multiple dots in identifiers are rejected
func TestMultipleDots(t *testing.T) {
	f := newTestBuilder().Table("users").OrderBy("schema.table.column", "ASC")
	expectIdentityError(t, f, "schema.table.column")
}

// BenchmarkValidation_OrderBy benchmarks the validation overhead
func BenchmarkValidation_OrderBy(b *testing.B) {
	qb := newTestBuilder()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		qb.Table("users").OrderBy("created_at", "DESC")
	}
}

// BenchmarkValidation_Where benchmarks the validation overhead
func BenchmarkValidation_Where(b *testing.B) {
	qb := newTestBuilder()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		qb.Table("users").Where(Eq("status", "active"))
	}
}
