package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/biyonik/querykit/pkg/database/migration"
)

// schemaFile is the YAML form of one or more Blueprints.
//
//	tables:
//	  - name: users
//	    id: true
//	    timestamps: true
//	    columns:
//	      - {name: email, type: string, length: 255, unique: true}
//	      - {name: age, type: integer, unsigned: true, nullable: true}
//	    indexes:
//	      - {columns: [email]}
//	    foreign:
//	      - {column: team_id, references: id, on: teams, on_delete: cascade}
type schemaFile struct {
	Tables []tableSpec `yaml:"tables"`
}

type tableSpec struct {
	Name        string        `yaml:"name"`
	ID          bool          `yaml:"id"`
	Timestamps  bool          `yaml:"timestamps"`
	SoftDeletes bool          `yaml:"soft_deletes"`
	Columns     []columnSpec  `yaml:"columns"`
	Indexes     []indexSpec   `yaml:"indexes"`
	ForeignKeys []foreignSpec `yaml:"foreign"`
}

type columnSpec struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	Length        int    `yaml:"length"`
	Precision     int    `yaml:"precision"`
	Scale         int    `yaml:"scale"`
	Nullable      bool   `yaml:"nullable"`
	Unsigned      bool   `yaml:"unsigned"`
	Unique        bool   `yaml:"unique"`
	Primary       bool   `yaml:"primary"`
	AutoIncrement bool   `yaml:"auto_increment"`
	Default       any    `yaml:"default"`
	DefaultExpr   string `yaml:"default_expr"`
}

type indexSpec struct {
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique"`
}

type foreignSpec struct {
	Column     string `yaml:"column"`
	References string `yaml:"references"`
	On         string `yaml:"on"`
	OnDelete   string `yaml:"on_delete"`
	OnUpdate   string `yaml:"on_update"`
}

func readSchema(path string) (*schemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return parseSchema(data)
}

func parseSchema(data []byte) (*schemaFile, error) {
	var s schemaFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if len(s.Tables) == 0 {
		return nil, fmt.Errorf("schema defines no tables")
	}
	return &s, nil
}

// define returns the Blueprint callback for the table.
func (t tableSpec) define() (func(*migration.Blueprint), error) {
	for _, c := range t.Columns {
		if _, err := columnType(c.Type); err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
	}

	return func(bp *migration.Blueprint) {
		if t.ID {
			bp.ID()
		}
		for _, c := range t.Columns {
			typ, _ := columnType(c.Type)
			col := addColumn(bp, typ, c)
			if c.Nullable {
				col.Nullable()
			}
			if c.Unsigned {
				col.Unsigned()
			}
			if c.Unique {
				col.Unique()
			}
			if c.Primary {
				col.Primary()
			}
			if c.AutoIncrement {
				col.AutoIncrement()
			}
			switch {
			case c.DefaultExpr != "":
				col.Default(migration.Expression(c.DefaultExpr))
			case c.Default != nil:
				col.Default(c.Default)
			}
		}
		if t.Timestamps {
			bp.Timestamps()
		}
		if t.SoftDeletes {
			bp.SoftDeletes()
		}
		for _, idx := range t.Indexes {
			if idx.Unique {
				bp.Unique(idx.Columns...)
			} else {
				bp.Index(idx.Columns...)
			}
		}
		for _, fk := range t.ForeignKeys {
			bp.Foreign(fk.Column).References(fk.References).On(fk.On).OnDelete(fk.OnDelete).OnUpdate(fk.OnUpdate)
		}
	}, nil
}

func addColumn(bp *migration.Blueprint, typ migration.ColumnType, c columnSpec) *migration.Column {
	switch typ {
	case migration.ColumnTypeString:
		return bp.String(c.Name, c.Length)
	case migration.ColumnTypeText:
		return bp.Text(c.Name)
	case migration.ColumnTypeInteger:
		return bp.Integer(c.Name)
	case migration.ColumnTypeBigInt:
		return bp.BigInteger(c.Name)
	case migration.ColumnTypeBoolean:
		return bp.Boolean(c.Name)
	case migration.ColumnTypeDecimal:
		return bp.Decimal(c.Name, c.Precision, c.Scale)
	case migration.ColumnTypeDate:
		return bp.Date(c.Name)
	case migration.ColumnTypeDateTime:
		return bp.DateTime(c.Name)
	default:
		return bp.Timestamp(c.Name)
	}
}

func columnType(name string) (migration.ColumnType, error) {
	switch migration.ColumnType(name) {
	case migration.ColumnTypeString, migration.ColumnTypeText, migration.ColumnTypeInteger,
		migration.ColumnTypeBigInt, migration.ColumnTypeBoolean, migration.ColumnTypeTimestamp,
		migration.ColumnTypeDateTime, migration.ColumnTypeDate, migration.ColumnTypeDecimal:
		return migration.ColumnType(name), nil
	}
	return "", fmt.Errorf("unknown column type %q", name)
}

// compileSchema renders every table of the schema for the generator's dialect.
func compileSchema(g *migration.Generator, s *schemaFile) ([]string, error) {
	var out []string
	for _, t := range s.Tables {
		define, err := t.define()
		if err != nil {
			return nil, err
		}
		bp := migration.NewBlueprint(t.Name)
		define(bp)

		stmts, err := g.CompileCreateTable(bp)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		out = append(out, stmts...)
	}
	return out, nil
}
