package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/biyonik/querykit/pkg/database"
)

// queryFile is the YAML form of a single Fetcher chain.
//
//	table: users
//	select: [role, "COUNT(*) AS total"]
//	joins:
//	  - {type: left, table: orders, left: users.id, right: orders.user_id}
//	where:
//	  - {column: age, op: ">", value: 18}
//	  - {column: role, op: in, value: [admin, editor], or: true}
//	group: [role]
//	having:
//	  - {column: total, op: ">", value: 1}
//	order:
//	  - {column: role, direction: desc}
//	limit: 10
//	count: {column: email, distinct: true}
type queryFile struct {
	Table    string          `yaml:"table"`
	Select   []string        `yaml:"select"`
	Distinct bool            `yaml:"distinct"`
	Random   bool            `yaml:"random"`
	Joins    []joinSpec      `yaml:"joins"`
	Where    []predicateSpec `yaml:"where"`
	Group    []string        `yaml:"group"`
	Having   []predicateSpec `yaml:"having"`
	Order    []orderSpec     `yaml:"order"`
	Limit    *int            `yaml:"limit"`
	Offset   *int            `yaml:"offset"`
	Count    *countSpec      `yaml:"count"`
}

type joinSpec struct {
	Type  string `yaml:"type"`
	Table string `yaml:"table"`
	Left  string `yaml:"left"`
	Op    string `yaml:"op"`
	Right string `yaml:"right"`
}

// predicateSpec is one predicate. Op defaults to "="; "null" and "not null"
// ignore Value.
type predicateSpec struct {
	Column string `yaml:"column"`
	Op     string `yaml:"op"`
	Value  any    `yaml:"value"`
	Or     bool   `yaml:"or"`
}

type orderSpec struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction"`
}

type countSpec struct {
	Column   string `yaml:"column"`
	Distinct bool   `yaml:"distinct"`
}

func readQuery(path string) (*queryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query: %w", err)
	}
	return parseQuery(data)
}

func parseQuery(data []byte) (*queryFile, error) {
	var q queryFile
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	if q.Table == "" {
		return nil, fmt.Errorf("query has no table")
	}
	return &q, nil
}

// fetcher replays the file onto a Fetcher of b. Validation errors stay on the
// Fetcher and surface at compile time.
func (q *queryFile) fetcher(b *database.Builder) *database.Fetcher {
	f := b.Table(q.Table)

	if len(q.Select) > 0 {
		f.Select(q.Select...)
	}
	if q.Distinct {
		f.Distinct()
	}
	if q.Random {
		f.Random()
	}
	for _, j := range q.Joins {
		kind, op := j.Type, j.Op
		if kind == "" {
			kind = "inner"
		}
		if op == "" {
			op = "="
		}
		f.Join(kind, j.Table, database.Op(j.Left, op, j.Right))
	}
	for _, p := range q.Where {
		if p.Or {
			f.OrWhere(p.predicate())
		} else {
			f.AndWhere(p.predicate())
		}
	}
	if len(q.Group) > 0 {
		f.GroupBy(q.Group...)
	}
	for _, p := range q.Having {
		if p.Or {
			f.OrHaving(p.predicate())
		} else {
			f.AndHaving(p.predicate())
		}
	}
	for _, o := range q.Order {
		f.OrderBy(o.Column, o.Direction)
	}
	if q.Limit != nil {
		f.Limit(*q.Limit)
	}
	if q.Offset != nil {
		f.Offset(*q.Offset)
	}
	return f
}

func (q *queryFile) countOptions() database.CountOptions {
	if q.Count == nil {
		return database.CountOptions{}
	}
	return database.CountOptions{Column: q.Count.Column, Distinct: q.Count.Distinct}
}

func (p predicateSpec) predicate() database.Predicate {
	switch strings.ToLower(strings.TrimSpace(p.Op)) {
	case "", "=":
		return database.Eq(p.Column, p.Value)
	case "null":
		return database.Fn(func(c *database.Condition) { c.Col(p.Column).IsNull() })
	case "not null":
		return database.Fn(func(c *database.Condition) { c.Col(p.Column).Not().IsNull() })
	default:
		return database.Op(p.Column, p.Op, p.Value)
	}
}

// compile returns the statement the file describes: COUNT when a count block
// is present, SELECT otherwise.
func (q *queryFile) compile(b *database.Builder) (string, []any, error) {
	f := q.fetcher(b)
	if q.Count != nil {
		return f.CountSQL(q.countOptions())
	}
	return f.ToSQL()
}
