// -----------------------------------------------------------------------------
// Blueprint - Table Schema Builder
// -----------------------------------------------------------------------------
// Blueprint describes a table in dialect-neutral terms. The Generator turns it
// into CREATE TABLE / CREATE INDEX statements for a specific dialect.
//
//	bp := migration.NewBlueprint("users")
//	bp.ID()
//	bp.String("email", 255).Unique()
//	bp.Integer("age").Unsigned().Nullable()
//	bp.Timestamps()
// -----------------------------------------------------------------------------

package migration

import (
	"fmt"
	"strings"
)

// Blueprint defines the structure of a table.
type Blueprint struct {
	table    string
	columns  []*Column
	indexes  []Index
	foreigns []*ForeignKey
}

// NewBlueprint creates a new Blueprint instance.
func NewBlueprint(tableName string) *Blueprint {
	return &Blueprint{table: tableName}
}

// Table returns the table name.
func (b *Blueprint) Table() string { return b.table }

// Columns returns the declared columns in order.
func (b *Blueprint) Columns() []*Column { return b.columns }

// Indexes returns the declared indexes in order.
func (b *Blueprint) Indexes() []Index { return b.indexes }

// Foreigns returns the declared foreign keys in order.
func (b *Blueprint) Foreigns() []*ForeignKey { return b.foreigns }

// ID adds an auto-incrementing unsigned big integer primary key named "id".
func (b *Blueprint) ID() *Column {
	return b.addColumn(&Column{
		Name:            "id",
		Type:            ColumnTypeBigInt,
		IsUnsigned:      true,
		IsAutoIncrement: true,
		IsPrimary:       true,
	})
}

// String adds a VARCHAR column.
func (b *Blueprint) String(name string, length int) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnTypeString, Length: length})
}

// Text adds a TEXT column.
func (b *Blueprint) Text(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnTypeText})
}

// Integer adds an INT column.
func (b *Blueprint) Integer(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnTypeInteger})
}

// BigInteger adds a BIGINT column.
func (b *Blueprint) BigInteger(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnTypeBigInt})
}

// Boolean adds a boolean column.
func (b *Blueprint) Boolean(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnTypeBoolean})
}

// Decimal adds a fixed-point column.
func (b *Blueprint) Decimal(name string, precision, scale int) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnTypeDecimal, Precision: precision, Scale: scale})
}

// Date adds a DATE column.
func (b *Blueprint) Date(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnTypeDate})
}

// DateTime adds a DATETIME column.
func (b *Blueprint) DateTime(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnTypeDateTime})
}

// Timestamp adds a TIMESTAMP column.
func (b *Blueprint) Timestamp(name string) *Column {
	return b.addColumn(&Column{Name: name, Type: ColumnTypeTimestamp})
}

// Timestamps adds created_at and updated_at columns.
func (b *Blueprint) Timestamps() {
	b.Timestamp("created_at").Nullable()
	b.Timestamp("updated_at").Nullable()
}

// SoftDeletes adds a deleted_at column for soft delete support.
func (b *Blueprint) SoftDeletes() {
	b.Timestamp("deleted_at").Nullable()
}

func (b *Blueprint) addColumn(column *Column) *Column {
	b.columns = append(b.columns, column)
	return column
}

// Unique adds a unique index.
func (b *Blueprint) Unique(columns ...string) {
	b.indexes = append(b.indexes, Index{
		Name:    fmt.Sprintf("%s_%s_unique", b.table, strings.Join(columns, "_")),
		Columns: columns,
		Type:    IndexTypeUnique,
	})
}

// Index adds a regular index.
func (b *Blueprint) Index(columns ...string) {
	b.indexes = append(b.indexes, Index{
		Name:    fmt.Sprintf("%s_%s_index", b.table, strings.Join(columns, "_")),
		Columns: columns,
		Type:    IndexTypeIndex,
	})
}

// Foreign adds a foreign key constraint on column.
//
//	bp.Foreign("user_id").References("id").On("users").Cascade()
func (b *Blueprint) Foreign(column string) *ForeignKey {
	fk := &ForeignKey{
		Name:   fmt.Sprintf("%s_%s_foreign", b.table, column),
		Column: column,
	}
	b.foreigns = append(b.foreigns, fk)
	return fk
}

// -----------------------------------------------------------------------------
// Column Definition
// -----------------------------------------------------------------------------

// ColumnType is a dialect-neutral column type.
type ColumnType string

const (
	ColumnTypeString    ColumnType = "string"
	ColumnTypeText      ColumnType = "text"
	ColumnTypeInteger   ColumnType = "integer"
	ColumnTypeBigInt    ColumnType = "bigint"
	ColumnTypeBoolean   ColumnType = "boolean"
	ColumnTypeTimestamp ColumnType = "timestamp"
	ColumnTypeDateTime  ColumnType = "datetime"
	ColumnTypeDate      ColumnType = "date"
	ColumnTypeDecimal   ColumnType = "decimal"
)

// Expression is a raw SQL default such as CURRENT_TIMESTAMP. It is emitted
// without quoting.
type Expression string

// Column represents a table column.
type Column struct {
	Name            string
	Type            ColumnType
	Length          int
	Precision       int
	Scale           int
	IsNullable      bool
	DefaultValue    any
	IsUnsigned      bool
	IsAutoIncrement bool
	IsPrimary       bool
	IsUnique        bool
}

// Nullable marks the column as nullable.
func (c *Column) Nullable() *Column {
	c.IsNullable = true
	return c
}

// Default sets a default value. Strings are quoted, Expression values are not.
func (c *Column) Default(value any) *Column {
	c.DefaultValue = value
	return c
}

// Unsigned marks the column as unsigned (for numeric types).
func (c *Column) Unsigned() *Column {
	c.IsUnsigned = true
	return c
}

// Unique adds a unique constraint.
func (c *Column) Unique() *Column {
	c.IsUnique = true
	return c
}

// Primary marks the column as the primary key.
func (c *Column) Primary() *Column {
	c.IsPrimary = true
	return c
}

// AutoIncrement marks the column as auto-incrementing.
func (c *Column) AutoIncrement() *Column {
	c.IsAutoIncrement = true
	return c
}

// -----------------------------------------------------------------------------
// Index Definition
// -----------------------------------------------------------------------------

// IndexType represents the type of index.
type IndexType string

const (
	IndexTypeIndex  IndexType = "INDEX"
	IndexTypeUnique IndexType = "UNIQUE"
)

// Index represents a table index.
type Index struct {
	Name    string
	Columns []string
	Type    IndexType
}

// ForeignKey represents a foreign key constraint.
type ForeignKey struct {
	Name             string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	OnDeleteAction   string
	OnUpdateAction   string
}

// References sets the referenced column.
func (fk *ForeignKey) References(column string) *ForeignKey {
	fk.ReferencedColumn = column
	return fk
}

// On sets the referenced table.
func (fk *ForeignKey) On(table string) *ForeignKey {
	fk.ReferencedTable = table
	return fk
}

// OnDelete sets the ON DELETE action.
func (fk *ForeignKey) OnDelete(action string) *ForeignKey {
	fk.OnDeleteAction = action
	return fk
}

// OnUpdate sets the ON UPDATE action.
func (fk *ForeignKey) OnUpdate(action string) *ForeignKey {
	fk.OnUpdateAction = action
	return fk
}

// Cascade sets both ON DELETE and ON UPDATE to CASCADE.
func (fk *ForeignKey) Cascade() *ForeignKey {
	fk.OnDeleteAction = "CASCADE"
	fk.OnUpdateAction = "CASCADE"
	return fk
}
