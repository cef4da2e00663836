package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrammar_CompileInsert(t *testing.T) {
	g := NewGrammar(MySQL)

	sql, args, err := g.CompileInsert("users", []map[string]any{
		{"name": "a", "email": "a@x.io"},
		{"email": "b@x.io", "name": "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO users (email, name) VALUES (?, ?), (?, ?)", sql)
	assert.Equal(t, []any{"a@x.io", "a", "b@x.io", "b"}, args)
}

func TestGrammar_CompileInsertErrors(t *testing.T) {
	g := NewGrammar(SQLite)

	_, _, err := g.CompileInsert("users", nil)
	assert.ErrorIs(t, err, ErrSyntax)

	_, _, err = g.CompileInsert("users", []map[string]any{{}})
	assert.ErrorIs(t, err, ErrSyntax)

	_, _, err = g.CompileInsert("users", []map[string]any{{"a": 1}, {"b": 2}})
	assert.ErrorIs(t, err, ErrSyntax)

	_, _, err = g.CompileInsert("users", []map[string]any{{"a": 1}, {"a": 2, "b": 3}})
	assert.ErrorIs(t, err, ErrSyntax)

	_, _, err = g.CompileInsert("users*", []map[string]any{{"a": 1}})
	assert.ErrorIs(t, err, ErrIdentity)
}

func TestGrammar_CompileUpdate(t *testing.T) {
	b := New(nil, PostgreSQL)
	f := b.Table("users").Where(Eq("id", 7))

	sql, args, err := b.Grammar().CompileUpdate(f.snapshot(), map[string]any{"status": "active", "name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET name = ?, status = ? WHERE id = ?", sql)
	assert.Equal(t, []any{"x", "active", 7}, args)
}

func TestGrammar_CompileDelete(t *testing.T) {
	b := New(nil, SQLite)

	sql, args, err := b.Grammar().CompileDelete(b.Table("users").WhereIn("id", 1, 2).snapshot())
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users WHERE id IN (?, ?)", sql)
	assert.Equal(t, []any{1, 2}, args)

	sql, args, err = b.Grammar().CompileDelete(b.Table("users").snapshot())
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users", sql)
	assert.Empty(t, args)
}

func TestGrammar_WritesRejectReadOnlyClauses(t *testing.T) {
	b := New(nil, MySQL)
	g := b.Grammar()

	joined := b.Table("users").InnerJoin("orders", Eq("users.id", "orders.user_id")).snapshot()
	grouped := b.Table("users").GroupBy("role").snapshot()
	having := b.Table("users").Having(Op("total", ">", 1)).snapshot()

	for name, q := range map[string]SelectQuery{"join": joined, "group": grouped, "having": having} {
		t.Run(name, func(t *testing.T) {
			_, _, err := g.CompileUpdate(q, map[string]any{"a": 1})
			assert.ErrorIs(t, err, ErrSyntax)
			_, _, err = g.CompileDelete(q)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}

	_, _, err := g.CompileUpdate(b.Table("users").snapshot(), nil)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestGrammar_CompileUpsert(t *testing.T) {
	data := map[string]any{"email": "a@x.io", "name": "A", "age": 30}

	tests := []struct {
		name    string
		dialect Dialect
		opts    UpsertOptions
		want    string
	}{
		{
			name:    "mysql defaults to every column",
			dialect: MySQL,
			want: "INSERT INTO users (age, email, name) VALUES (?, ?, ?) " +
				"ON DUPLICATE KEY UPDATE age = VALUES(age), email = VALUES(email), name = VALUES(name)",
		},
		{
			name:    "mysql explicit update",
			dialect: MySQL,
			opts:    UpsertOptions{Update: []string{"name"}},
			want:    "INSERT INTO users (age, email, name) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE name = VALUES(name)",
		},
		{
			name:    "postgres excludes conflict columns",
			dialect: PostgreSQL,
			opts:    UpsertOptions{Conflict: []string{"email"}},
			want: "INSERT INTO users (age, email, name) VALUES (?, ?, ?) " +
				"ON CONFLICT (email) DO UPDATE SET age = excluded.age, name = excluded.name",
		},
		{
			name:    "postgres returning",
			dialect: PostgreSQL,
			opts:    UpsertOptions{Conflict: []string{"email"}, Update: []string{"name"}, Returning: []string{"id"}},
			want: "INSERT INTO users (age, email, name) VALUES (?, ?, ?) " +
				"ON CONFLICT (email) DO UPDATE SET name = excluded.name RETURNING id",
		},
		{
			name:    "sqlite on conflict",
			dialect: SQLite,
			opts:    UpsertOptions{Conflict: []string{"email"}, Update: []string{"age"}},
			want: "INSERT INTO users (age, email, name) VALUES (?, ?, ?) " +
				"ON CONFLICT (email) DO UPDATE SET age = excluded.age",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := NewGrammar(tt.dialect).CompileUpsert("users", data, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
			assert.Equal(t, []any{30, "a@x.io", "A"}, args)
		})
	}
}

func TestGrammar_CompileUpsertDoNothing(t *testing.T) {
	sql, _, err := NewGrammar(SQLite).CompileUpsert("users", map[string]any{"email": "a@x.io"},
		UpsertOptions{Conflict: []string{"email"}})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO users (email) VALUES (?) ON CONFLICT (email) DO NOTHING", sql)
}

func TestGrammar_CompileUpsertErrors(t *testing.T) {
	data := map[string]any{"email": "a@x.io"}

	_, _, err := NewGrammar(MySQL).CompileUpsert("users", data, UpsertOptions{Returning: []string{"id"}})
	assert.ErrorIs(t, err, ErrSyntax)

	_, _, err = NewGrammar(PostgreSQL).CompileUpsert("users", data, UpsertOptions{})
	assert.ErrorIs(t, err, ErrSyntax)

	_, _, err = NewGrammar(SQLite).CompileUpsert("users", data, UpsertOptions{Conflict: []string{"email;"}})
	assert.ErrorIs(t, err, ErrIdentity)

	_, _, err = NewGrammar(Dialect(0)).CompileUpsert("users", data, UpsertOptions{Conflict: []string{"email"}})
	assert.ErrorIs(t, err, ErrIdentity)
}

func TestGrammar_CompileSelectValueOrder(t *testing.T) {
	on := NewCondition().Col("orders.user_id").Equal(Ref("users.id")).And().Col("orders.total").GreaterThan(100)
	where := NewCondition().Col("users.active").Equal(true)
	having := NewCondition().Col("COUNT(orders.id)").GreaterThan(1)
	limit := 10

	sql, args, err := NewGrammar(MySQL).CompileSelect(SelectQuery{
		Table:   "users",
		Columns: []string{"users.id", "COUNT(orders.id) AS orders"},
		Joins:   []Join{{Type: InnerJoin, Table: "orders", On: on}},
		Where:   where,
		Group:   []string{"users.id"},
		Having:  having,
		Order:   []OrderClause{{Column: "users.id", Direction: OrderDesc}},
		Limit:   &limit,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT users.id, COUNT(orders.id) AS orders FROM users"+
		" INNER JOIN orders ON orders.user_id = users.id AND orders.total > ?"+
		" WHERE users.active = ? GROUP BY users.id HAVING COUNT(orders.id) > ?"+
		" ORDER BY users.id DESC LIMIT 10", sql)
	assert.Equal(t, []any{100, true, 1}, args)
}
