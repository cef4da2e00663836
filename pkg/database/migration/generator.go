// -----------------------------------------------------------------------------
// DDL Generator
// -----------------------------------------------------------------------------
// Generator turns a Blueprint into CREATE TABLE statements for one dialect.
//
// Dialect differences:
//
//	MySQL:      `backticks`, UNSIGNED keyword, AUTO_INCREMENT, inline indexes,
//	            ENGINE=InnoDB utf8mb4
//	PostgreSQL: "double quotes", auto-increment becomes BIGSERIAL, unsigned
//	            becomes CHECK ("col" >= 0), separate CREATE INDEX
//	SQLite:     "double quotes", auto-increment primary key becomes the implicit
//	            rowid (INTEGER PRIMARY KEY), unsigned becomes CHECK, separate
//	            CREATE INDEX
//
// Foreign keys are always emitted inline as table constraints.
// An unrecognized dialect fails with database.ErrIdentity.
// -----------------------------------------------------------------------------

package migration

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/biyonik/querykit/pkg/database"
)

var ddlIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var referentialActions = map[string]bool{
	"CASCADE":     true,
	"SET NULL":    true,
	"SET DEFAULT": true,
	"RESTRICT":    true,
	"NO ACTION":   true,
}

// Generator emits dialect-specific DDL.
type Generator struct {
	dialect database.Dialect
}

// NewGenerator creates a Generator for the dialect.
func NewGenerator(d database.Dialect) *Generator {
	return &Generator{dialect: d}
}

// Dialect returns the target dialect.
func (g *Generator) Dialect() database.Dialect {
	return g.dialect
}

// CompileCreateTable generates CREATE TABLE SQL followed by any CREATE INDEX
// statements the dialect needs outside the table body.
func (g *Generator) CompileCreateTable(bp *Blueprint) ([]string, error) {
	if err := g.check(); err != nil {
		return nil, err
	}
	if err := checkName(bp.table, "table"); err != nil {
		return nil, err
	}
	if len(bp.columns) == 0 {
		return nil, syntaxError("table %s has no columns", bp.table)
	}

	defs := make([]string, 0, len(bp.columns)+len(bp.indexes)+len(bp.foreigns))
	for _, column := range bp.columns {
		def, err := g.compileColumn(column)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	var trailing []string
	for _, index := range bp.indexes {
		inline, separate, err := g.compileIndex(bp.table, index)
		if err != nil {
			return nil, err
		}
		if inline != "" {
			defs = append(defs, inline)
		}
		if separate != "" {
			trailing = append(trailing, separate)
		}
	}

	for _, fk := range bp.foreigns {
		def, err := g.compileForeign(fk)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	create := fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", g.quote(bp.table), strings.Join(defs, ",\n  "))
	if g.dialect.IsMySQL() {
		create += " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci"
	}

	return append([]string{create}, trailing...), nil
}

// CompileDropTable generates DROP TABLE SQL.
func (g *Generator) CompileDropTable(table string) (string, error) {
	if err := g.check(); err != nil {
		return "", err
	}
	if err := checkName(table, "table"); err != nil {
		return "", err
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", g.quote(table)), nil
}

// CompileAddColumn generates ALTER TABLE ADD COLUMN SQL.
func (g *Generator) CompileAddColumn(table string, column *Column) (string, error) {
	if err := g.check(); err != nil {
		return "", err
	}
	if err := checkName(table, "table"); err != nil {
		return "", err
	}
	def, err := g.compileColumn(column)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", g.quote(table), def), nil
}

// CompileHasTable returns a query selecting the number of tables named table.
// The query uses "?" placeholders.
func (g *Generator) CompileHasTable(table string) (string, []any, error) {
	if err := g.check(); err != nil {
		return "", nil, err
	}
	switch g.dialect {
	case database.MySQL:
		return "SELECT COUNT(*) AS count FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?", []any{table}, nil
	case database.PostgreSQL:
		return "SELECT COUNT(*) AS count FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?", []any{table}, nil
	default:
		return "SELECT COUNT(*) AS count FROM sqlite_master WHERE type = 'table' AND name = ?", []any{table}, nil
	}
}

// ---- internal ----

func (g *Generator) check() error {
	if !g.dialect.Valid() {
		return &database.QueryError{
			Kind:    database.ErrIdentity,
			Message: fmt.Sprintf("unrecognized dialect for DDL: %s", g.dialect),
		}
	}
	return nil
}

func (g *Generator) quote(name string) string {
	if g.dialect.IsMySQL() {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

func (g *Generator) quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = g.quote(n)
	}
	return strings.Join(quoted, ", ")
}

// compileColumn compiles a single column definition.
func (g *Generator) compileColumn(c *Column) (string, error) {
	if err := checkName(c.Name, "column"); err != nil {
		return "", err
	}
	name := g.quote(c.Name)

	if c.IsAutoIncrement {
		if c.Type != ColumnTypeInteger && c.Type != ColumnTypeBigInt {
			return "", syntaxError("auto-increment column %s must be an integer", c.Name)
		}
		switch g.dialect {
		case database.PostgreSQL:
			def := name + " BIGSERIAL"
			if c.IsPrimary {
				def += " PRIMARY KEY"
			}
			return def, nil
		case database.SQLite:
			if !c.IsPrimary {
				return "", syntaxError("sqlite auto-increment column %s must be the primary key", c.Name)
			}
			return name + " INTEGER PRIMARY KEY", nil
		}
	}

	typ, err := g.columnType(c)
	if err != nil {
		return "", err
	}
	parts := []string{name, typ}

	if c.IsUnsigned && g.dialect.IsMySQL() {
		parts = append(parts, "UNSIGNED")
	}

	if c.IsNullable {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}

	if c.IsAutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}

	if c.DefaultValue != nil {
		parts = append(parts, "DEFAULT "+g.defaultValue(c.DefaultValue))
	}

	if c.IsPrimary {
		parts = append(parts, "PRIMARY KEY")
	}
	if c.IsUnique {
		parts = append(parts, "UNIQUE")
	}

	if c.IsUnsigned && !g.dialect.IsMySQL() {
		parts = append(parts, fmt.Sprintf("CHECK (%s >= 0)", name))
	}

	return strings.Join(parts, " "), nil
}

func (g *Generator) columnType(c *Column) (string, error) {
	switch c.Type {
	case ColumnTypeString:
		length := c.Length
		if length <= 0 {
			length = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", length), nil
	case ColumnTypeText:
		return "TEXT", nil
	case ColumnTypeInteger:
		if g.dialect.IsMySQL() {
			return "INT", nil
		}
		return "INTEGER", nil
	case ColumnTypeBigInt:
		if g.dialect.IsSQLite() {
			return "INTEGER", nil
		}
		return "BIGINT", nil
	case ColumnTypeBoolean:
		switch g.dialect {
		case database.MySQL:
			return "TINYINT(1)", nil
		case database.PostgreSQL:
			return "BOOLEAN", nil
		default:
			return "INTEGER", nil
		}
	case ColumnTypeTimestamp:
		return "TIMESTAMP", nil
	case ColumnTypeDateTime:
		if g.dialect.IsPostgreSQL() {
			return "TIMESTAMP", nil
		}
		return "DATETIME", nil
	case ColumnTypeDate:
		return "DATE", nil
	case ColumnTypeDecimal:
		precision, scale := c.Precision, c.Scale
		if precision <= 0 {
			precision, scale = 10, 2
		}
		keyword := "DECIMAL"
		if !g.dialect.IsMySQL() {
			keyword = "NUMERIC"
		}
		return fmt.Sprintf("%s(%d, %d)", keyword, precision, scale), nil
	}
	return "", syntaxError("unsupported column type %q for column %s", c.Type, c.Name)
}

func (g *Generator) defaultValue(v any) string {
	switch val := v.(type) {
	case Expression:
		return string(val)
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if g.dialect.IsPostgreSQL() {
			if val {
				return "TRUE"
			}
			return "FALSE"
		}
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// compileIndex returns either an inline table constraint or a separate
// statement, depending on the dialect.
func (g *Generator) compileIndex(table string, index Index) (inline, separate string, err error) {
	if err := checkName(index.Name, "index"); err != nil {
		return "", "", err
	}
	if len(index.Columns) == 0 {
		return "", "", syntaxError("index %s has no columns", index.Name)
	}
	for _, col := range index.Columns {
		if err := checkName(col, "column"); err != nil {
			return "", "", err
		}
	}
	cols := g.quoteAll(index.Columns)

	if g.dialect.IsMySQL() {
		if index.Type == IndexTypeUnique {
			return fmt.Sprintf("UNIQUE KEY %s (%s)", g.quote(index.Name), cols), "", nil
		}
		return fmt.Sprintf("INDEX %s (%s)", g.quote(index.Name), cols), "", nil
	}

	if index.Type == IndexTypeUnique {
		return fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", g.quote(index.Name), cols), "", nil
	}
	return "", fmt.Sprintf("CREATE INDEX %s ON %s (%s)", g.quote(index.Name), g.quote(table), cols), nil
}

func (g *Generator) compileForeign(fk *ForeignKey) (string, error) {
	for _, name := range []string{fk.Name, fk.Column} {
		if err := checkName(name, "foreign key"); err != nil {
			return "", err
		}
	}
	if fk.ReferencedTable == "" || fk.ReferencedColumn == "" {
		return "", syntaxError("foreign key %s requires References() and On()", fk.Name)
	}
	if err := checkName(fk.ReferencedTable, "table"); err != nil {
		return "", err
	}
	if err := checkName(fk.ReferencedColumn, "column"); err != nil {
		return "", err
	}

	def := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		g.quote(fk.Name), g.quote(fk.Column), g.quote(fk.ReferencedTable), g.quote(fk.ReferencedColumn))

	for _, clause := range []struct{ keyword, action string }{
		{"ON DELETE", fk.OnDeleteAction},
		{"ON UPDATE", fk.OnUpdateAction},
	} {
		if clause.action == "" {
			continue
		}
		action := strings.ToUpper(strings.Join(strings.Fields(clause.action), " "))
		if !referentialActions[action] {
			return "", syntaxError("invalid %s action %q", strings.ToLower(clause.keyword), clause.action)
		}
		def += " " + clause.keyword + " " + action
	}
	return def, nil
}

func checkName(name, context string) error {
	if !ddlIdentifier.MatchString(name) {
		return &database.QueryError{
			Kind:    database.ErrIdentity,
			Message: fmt.Sprintf("invalid %s name: %q", context, name),
		}
	}
	return nil
}

func syntaxError(format string, args ...any) error {
	return &database.QueryError{Kind: database.ErrSyntax, Message: fmt.Sprintf(format, args...)}
}
