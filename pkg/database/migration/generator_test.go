package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/querykit/pkg/database"
)

func usersBlueprint() *Blueprint {
	bp := NewBlueprint("users")
	bp.ID()
	bp.String("name", 100)
	bp.String("email", 255).Unique()
	bp.String("role", 20).Default("member")
	bp.Integer("age").Unsigned().Nullable()
	bp.Boolean("active").Default(true)
	return bp
}

func ordersBlueprint() *Blueprint {
	bp := NewBlueprint("orders")
	bp.ID()
	bp.BigInteger("user_id")
	bp.Decimal("total", 10, 2)
	bp.String("status", 20)
	bp.Foreign("user_id").References("id").On("users").Cascade()
	bp.Index("status")
	return bp
}

func TestGenerator_CreateUsers(t *testing.T) {
	tests := []struct {
		dialect database.Dialect
		want    string
	}{
		{
			dialect: database.MySQL,
			want: "CREATE TABLE `users` (\n" +
				"  `id` BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,\n" +
				"  `name` VARCHAR(100) NOT NULL,\n" +
				"  `email` VARCHAR(255) NOT NULL UNIQUE,\n" +
				"  `role` VARCHAR(20) NOT NULL DEFAULT 'member',\n" +
				"  `age` INT UNSIGNED NULL,\n" +
				"  `active` TINYINT(1) NOT NULL DEFAULT 1\n" +
				") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci",
		},
		{
			dialect: database.PostgreSQL,
			want: "CREATE TABLE \"users\" (\n" +
				"  \"id\" BIGSERIAL PRIMARY KEY,\n" +
				"  \"name\" VARCHAR(100) NOT NULL,\n" +
				"  \"email\" VARCHAR(255) NOT NULL UNIQUE,\n" +
				"  \"role\" VARCHAR(20) NOT NULL DEFAULT 'member',\n" +
				"  \"age\" INTEGER NULL CHECK (\"age\" >= 0),\n" +
				"  \"active\" BOOLEAN NOT NULL DEFAULT TRUE\n" +
				")",
		},
		{
			dialect: database.SQLite,
			want: "CREATE TABLE \"users\" (\n" +
				"  \"id\" INTEGER PRIMARY KEY,\n" +
				"  \"name\" VARCHAR(100) NOT NULL,\n" +
				"  \"email\" VARCHAR(255) NOT NULL UNIQUE,\n" +
				"  \"role\" VARCHAR(20) NOT NULL DEFAULT 'member',\n" +
				"  \"age\" INTEGER NULL CHECK (\"age\" >= 0),\n" +
				"  \"active\" INTEGER NOT NULL DEFAULT 1\n" +
				")",
		},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			stmts, err := NewGenerator(tt.dialect).CompileCreateTable(usersBlueprint())
			require.NoError(t, err)
			require.Len(t, stmts, 1)
			assert.Equal(t, tt.want, stmts[0])
		})
	}
}

func TestGenerator_CreateOrders(t *testing.T) {
	t.Run("mysql keeps indexes inline", func(t *testing.T) {
		stmts, err := NewGenerator(database.MySQL).CompileCreateTable(ordersBlueprint())
		require.NoError(t, err)
		require.Len(t, stmts, 1)
		assert.Equal(t, "CREATE TABLE `orders` (\n"+
			"  `id` BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,\n"+
			"  `user_id` BIGINT NOT NULL,\n"+
			"  `total` DECIMAL(10, 2) NOT NULL,\n"+
			"  `status` VARCHAR(20) NOT NULL,\n"+
			"  INDEX `orders_status_index` (`status`),\n"+
			"  CONSTRAINT `orders_user_id_foreign` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`) ON DELETE CASCADE ON UPDATE CASCADE\n"+
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci", stmts[0])
	})

	t.Run("postgres emits a separate index", func(t *testing.T) {
		stmts, err := NewGenerator(database.PostgreSQL).CompileCreateTable(ordersBlueprint())
		require.NoError(t, err)
		require.Len(t, stmts, 2)
		assert.Equal(t, "CREATE TABLE \"orders\" (\n"+
			"  \"id\" BIGSERIAL PRIMARY KEY,\n"+
			"  \"user_id\" BIGINT NOT NULL,\n"+
			"  \"total\" NUMERIC(10, 2) NOT NULL,\n"+
			"  \"status\" VARCHAR(20) NOT NULL,\n"+
			"  CONSTRAINT \"orders_user_id_foreign\" FOREIGN KEY (\"user_id\") REFERENCES \"users\" (\"id\") ON DELETE CASCADE ON UPDATE CASCADE\n"+
			")", stmts[0])
		assert.Equal(t, `CREATE INDEX "orders_status_index" ON "orders" ("status")`, stmts[1])
	})

	t.Run("sqlite stores bigint as integer", func(t *testing.T) {
		stmts, err := NewGenerator(database.SQLite).CompileCreateTable(ordersBlueprint())
		require.NoError(t, err)
		require.Len(t, stmts, 2)
		assert.Contains(t, stmts[0], "\"user_id\" INTEGER NOT NULL")
		assert.Equal(t, `CREATE INDEX "orders_status_index" ON "orders" ("status")`, stmts[1])
	})
}

func TestGenerator_CompositeUnique(t *testing.T) {
	bp := NewBlueprint("memberships")
	bp.BigInteger("user_id")
	bp.BigInteger("team_id")
	bp.Unique("user_id", "team_id")

	stmts, err := NewGenerator(database.PostgreSQL).CompileCreateTable(bp)
	require.NoError(t, err)
	assert.Contains(t, stmts[0], `CONSTRAINT "memberships_user_id_team_id_unique" UNIQUE ("user_id", "team_id")`)

	stmts, err = NewGenerator(database.MySQL).CompileCreateTable(bp)
	require.NoError(t, err)
	assert.Contains(t, stmts[0], "UNIQUE KEY `memberships_user_id_team_id_unique` (`user_id`, `team_id`)")
}

func TestGenerator_Defaults(t *testing.T) {
	bp := NewBlueprint("posts")
	bp.String("title", 0).Default("it's")
	bp.Timestamp("published_at").Default(Expression("CURRENT_TIMESTAMP"))
	bp.Integer("views").Default(0)
	bp.Boolean("draft").Default(false)
	bp.Decimal("price", 0, 0)
	bp.Timestamps()
	bp.SoftDeletes()

	stmts, err := NewGenerator(database.PostgreSQL).CompileCreateTable(bp)
	require.NoError(t, err)
	body := stmts[0]

	assert.Contains(t, body, `"title" VARCHAR(255) NOT NULL DEFAULT 'it''s'`)
	assert.Contains(t, body, `"published_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP`)
	assert.Contains(t, body, `"views" INTEGER NOT NULL DEFAULT 0`)
	assert.Contains(t, body, `"draft" BOOLEAN NOT NULL DEFAULT FALSE`)
	assert.Contains(t, body, `"price" NUMERIC(10, 2) NOT NULL`)
	assert.Contains(t, body, `"created_at" TIMESTAMP NULL`)
	assert.Contains(t, body, `"updated_at" TIMESTAMP NULL`)
	assert.Contains(t, body, `"deleted_at" TIMESTAMP NULL`)
}

func TestGenerator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		dialect database.Dialect
		build   func() *Blueprint
		kind    error
	}{
		{
			name:    "unknown dialect",
			dialect: database.Dialect(0),
			build:   usersBlueprint,
			kind:    database.ErrIdentity,
		},
		{
			name:    "bad table name",
			dialect: database.SQLite,
			build: func() *Blueprint {
				bp := NewBlueprint("users; DROP TABLE x")
				bp.ID()
				return bp
			},
			kind: database.ErrIdentity,
		},
		{
			name:    "no columns",
			dialect: database.MySQL,
			build:   func() *Blueprint { return NewBlueprint("empty") },
			kind:    database.ErrSyntax,
		},
		{
			name:    "bad column name",
			dialect: database.MySQL,
			build: func() *Blueprint {
				bp := NewBlueprint("t")
				bp.String("na`me", 10)
				return bp
			},
			kind: database.ErrIdentity,
		},
		{
			name:    "auto-increment on text",
			dialect: database.PostgreSQL,
			build: func() *Blueprint {
				bp := NewBlueprint("t")
				bp.Text("body").AutoIncrement()
				return bp
			},
			kind: database.ErrSyntax,
		},
		{
			name:    "sqlite auto-increment without primary key",
			dialect: database.SQLite,
			build: func() *Blueprint {
				bp := NewBlueprint("t")
				bp.Integer("seq").AutoIncrement()
				return bp
			},
			kind: database.ErrSyntax,
		},
		{
			name:    "foreign key without target",
			dialect: database.PostgreSQL,
			build: func() *Blueprint {
				bp := NewBlueprint("t")
				bp.BigInteger("user_id")
				bp.Foreign("user_id")
				return bp
			},
			kind: database.ErrSyntax,
		},
		{
			name:    "invalid referential action",
			dialect: database.MySQL,
			build: func() *Blueprint {
				bp := NewBlueprint("t")
				bp.BigInteger("user_id")
				bp.Foreign("user_id").References("id").On("users").OnDelete("EXPLODE")
				return bp
			},
			kind: database.ErrSyntax,
		},
		{
			name:    "unknown column type",
			dialect: database.SQLite,
			build: func() *Blueprint {
				bp := NewBlueprint("t")
				bp.addColumn(&Column{Name: "blob", Type: ColumnType("blob")})
				return bp
			},
			kind: database.ErrSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.dialect).CompileCreateTable(tt.build())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestGenerator_ReferentialActionsAreNormalized(t *testing.T) {
	bp := NewBlueprint("orders")
	bp.BigInteger("user_id").Nullable()
	bp.Foreign("user_id").References("id").On("users").OnDelete("set  null").OnUpdate("restrict")

	stmts, err := NewGenerator(database.SQLite).CompileCreateTable(bp)
	require.NoError(t, err)
	assert.Contains(t, stmts[0], `ON DELETE SET NULL ON UPDATE RESTRICT`)
}

func TestGenerator_DropAndAddColumn(t *testing.T) {
	sql, err := NewGenerator(database.MySQL).CompileDropTable("users")
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE IF EXISTS `users`", sql)

	sql, err = NewGenerator(database.PostgreSQL).CompileDropTable("users")
	require.NoError(t, err)
	assert.Equal(t, `DROP TABLE IF EXISTS "users"`, sql)

	_, err = NewGenerator(database.SQLite).CompileDropTable("")
	assert.ErrorIs(t, err, database.ErrIdentity)

	sql, err = NewGenerator(database.SQLite).CompileAddColumn("users", &Column{Name: "bio", Type: ColumnTypeText, IsNullable: true})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "users" ADD COLUMN "bio" TEXT NULL`, sql)
}

func TestGenerator_HasTable(t *testing.T) {
	for _, d := range []database.Dialect{database.MySQL, database.PostgreSQL, database.SQLite} {
		t.Run(d.String(), func(t *testing.T) {
			sql, args, err := NewGenerator(d).CompileHasTable("users")
			require.NoError(t, err)
			assert.Contains(t, sql, "SELECT COUNT(*) AS count FROM")
			assert.Contains(t, sql, "= ?")
			assert.Equal(t, []any{"users"}, args)
		})
	}

	_, _, err := NewGenerator(database.Dialect(0)).CompileHasTable("users")
	assert.ErrorIs(t, err, database.ErrIdentity)
}
