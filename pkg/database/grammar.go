package database

import (
	"fmt"
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------
// GRAMMAR - SQL DERLEYİCİ
// -----------------------------------------------------------------------------
// Grammar, Fetcher'ın ürettiği SelectQuery anlık görüntüsünü (snapshot) tek bir
// (sql, values) çiftine çevirir. Derleme deterministiktir ve girdiyi hiçbir
// zaman değiştirmez; aynı durumu iki kez derlemek byte-byte aynı çıktıyı verir.
//
// SELECT derleme sırası:
//  1. SELECT [DISTINCT] <kolonlar> FROM <tablo>
//  2. JOIN'ler (çağrı sırasıyla)
//  3. WHERE
//  4. GROUP BY
//  5. HAVING
//  6. ORDER BY (random ise dialect'e göre RAND()/RANDOM())
//  7. LIMIT / OFFSET
//
// Değerler aynı sırayla birleştirilir: JOIN, WHERE, HAVING.
// Placeholder her zaman "?" olarak üretilir; PostgreSQL için "$n" dönüşümü
// yürütme sınırında (Rebind) yapılır.
// -----------------------------------------------------------------------------

// Grammar, dialect farkındalığı olan SQL derleyicisidir.
type Grammar struct {
	dialect Dialect
}

// NewGrammar, verilen dialect için Grammar oluşturur. Geçersiz bir dialect ile
// de oluşturulabilir; bu durumda sadece dialect'e özgü derlemeler hata verir.
func NewGrammar(d Dialect) *Grammar {
	return &Grammar{dialect: d}
}

// Dialect, Grammar'ın hedef dialect'ini döndürür.
func (g *Grammar) Dialect() Dialect {
	return g.dialect
}

// CompileSelect, SELECT sorgusu üretir.
//
// Örnek:
//
//	SELECT * FROM users WHERE age > ? AND name = ?   values: [18, "john"]
func (g *Grammar) CompileSelect(q SelectQuery) (string, []any, error) {
	if err := validateTable(q.Table); err != nil {
		return "", nil, err
	}
	if q.Offset != nil && q.Limit == nil {
		return "", nil, syntaxError("offset requires a limit")
	}

	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	if q.Distinct {
		sb.WriteString("DISTINCT ")
	}
	columns := q.Columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(q.Table)

	for _, j := range q.Joins {
		on, err := j.On.Build()
		if err != nil {
			return "", nil, err
		}
		fmt.Fprintf(&sb, " %s JOIN %s ON %s", j.Type, j.Table, on)
		args = append(args, j.On.Values()...)
	}

	whereArgs, err := g.writeCondition(&sb, " WHERE ", q.Where)
	if err != nil {
		return "", nil, err
	}
	args = append(args, whereArgs...)

	if len(q.Group) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(q.Group, ", "))
	}

	havingArgs, err := g.writeCondition(&sb, " HAVING ", q.Having)
	if err != nil {
		return "", nil, err
	}
	args = append(args, havingArgs...)

	switch {
	case q.Random:
		sb.WriteString(" ORDER BY ")
		sb.WriteString(g.randomFunction())
	case len(q.Order) > 0:
		orders := make([]string, len(q.Order))
		for i, o := range q.Order {
			orders[i] = o.Column + " " + string(o.Direction)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}

	if q.Limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", *q.Limit)
	}
	if q.Offset != nil {
		fmt.Fprintf(&sb, " OFFSET %d", *q.Offset)
	}

	return sb.String(), args, nil
}

// CompileCount, sorguyu bir alt sorgu olarak sarar ve satır sayısını döndüren
// bir COUNT sorgusu üretir. İç sorgudan ORDER BY, random, LIMIT ve OFFSET
// çıkarılır.
//
// Örnek:
//
//	CompileCount(q, CountOptions{Column: "email", Distinct: true})
//	→ SELECT COUNT(DISTINCT email) AS count FROM (SELECT * FROM users) AS sub
func (g *Grammar) CompileCount(q SelectQuery, opts CountOptions) (string, []any, error) {
	column := strings.TrimSpace(opts.Column)
	if column == "" {
		column = "*"
	}
	if err := validateExpression(column, "count column"); err != nil {
		return "", nil, err
	}
	if opts.Distinct && column == "*" {
		return "", nil, syntaxError("count distinct requires a column")
	}

	q.Order = nil
	q.Random = false
	q.Limit = nil
	q.Offset = nil

	inner, args, err := g.CompileSelect(q)
	if err != nil {
		return "", nil, err
	}

	if opts.Distinct {
		column = "DISTINCT " + column
	}
	return fmt.Sprintf("SELECT COUNT(%s) AS count FROM (%s) AS sub", column, inner), args, nil
}

// CompileInsert, bir veya daha fazla satır için INSERT sorgusu üretir.
// Kolonlar deterministik çıktı için alfabetik sıralanır ve tüm satırlar aynı
// kolon kümesine sahip olmalıdır.
//
// Örnek:
//
//	INSERT INTO users (email, name) VALUES (?, ?), (?, ?)
func (g *Grammar) CompileInsert(table string, rows []map[string]any) (string, []any, error) {
	if err := validateTable(table); err != nil {
		return "", nil, err
	}
	columns, err := insertColumns(rows)
	if err != nil {
		return "", nil, err
	}

	row := "(" + placeholders(len(columns)) + ")"
	tuples := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	for i, r := range rows {
		tuples[i] = row
		for _, col := range columns {
			args = append(args, r[col])
		}
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(tuples, ", "),
	)
	return sql, args, nil
}

// CompileUpdate, UPDATE sorgusu üretir. Değerler önce SET, sonra WHERE
// sırasıyla bağlanır. JOIN, GROUP BY ve HAVING içeren durumlar reddedilir.
//
// Örnek:
//
//	UPDATE users SET name = ?, status = ? WHERE id = ?
func (g *Grammar) CompileUpdate(q SelectQuery, data map[string]any) (string, []any, error) {
	if err := validateTable(q.Table); err != nil {
		return "", nil, err
	}
	if err := rejectReadOnly(q, "update"); err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, syntaxError("update requires at least one column")
	}

	columns := sortedKeys(data)
	sets := make([]string, len(columns))
	args := make([]any, 0, len(columns))
	for i, col := range columns {
		if err := validateIdentifier(col, "column"); err != nil {
			return "", nil, err
		}
		sets[i] = col + " = ?"
		args = append(args, data[col])
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(q.Table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(sets, ", "))

	whereArgs, err := g.writeCondition(&sb, " WHERE ", q.Where)
	if err != nil {
		return "", nil, err
	}
	return sb.String(), append(args, whereArgs...), nil
}

// CompileDelete, DELETE sorgusu üretir.
//
// GÜVENLİK UYARISI:
// WHERE olmadan derlenen DELETE tüm tabloyu siler.
func (g *Grammar) CompileDelete(q SelectQuery) (string, []any, error) {
	if err := validateTable(q.Table); err != nil {
		return "", nil, err
	}
	if err := rejectReadOnly(q, "delete"); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(q.Table)

	args, err := g.writeCondition(&sb, " WHERE ", q.Where)
	if err != nil {
		return "", nil, err
	}
	return sb.String(), args, nil
}

// -----------------------------------------------------------------------------
// internal
// -----------------------------------------------------------------------------

// writeCondition, Condition boş değilse prefix ile birlikte yazar.
func (g *Grammar) writeCondition(sb *strings.Builder, prefix string, cond *Condition) ([]any, error) {
	if cond == nil || cond.Empty() {
		if cond != nil && cond.Err() != nil {
			return nil, cond.Err()
		}
		return nil, nil
	}
	fragment, err := cond.Build()
	if err != nil {
		return nil, err
	}
	sb.WriteString(prefix)
	sb.WriteString(fragment)
	return cond.Values(), nil
}

// randomFunction, dialect'e göre rastgele sıralama fonksiyonunu döndürür.
// SELECT derlemesi dialect'e bağlı olarak hata vermez; bilinmeyen dialect'ler
// standart RANDOM() alır.
func (g *Grammar) randomFunction() string {
	if g.dialect.IsMySQL() {
		return "RAND()"
	}
	return "RANDOM()"
}

func validateTable(table string) error {
	if strings.Contains(table, "*") {
		return identityError("invalid table name: '%s'", table)
	}
	return validateIdentifier(table, "table")
}

func rejectReadOnly(q SelectQuery, statement string) error {
	switch {
	case len(q.Joins) > 0:
		return syntaxError("%s does not support joins", statement)
	case len(q.Group) > 0:
		return syntaxError("%s does not support group by", statement)
	case q.Having != nil && !q.Having.Empty():
		return syntaxError("%s does not support having", statement)
	}
	return nil
}

// insertColumns, ilk satırın kolonlarını sıralı döndürür ve diğer satırların
// aynı kolon kümesine sahip olduğunu doğrular.
func insertColumns(rows []map[string]any) ([]string, error) {
	if len(rows) == 0 {
		return nil, syntaxError("insert requires at least one row")
	}
	if len(rows[0]) == 0 {
		return nil, syntaxError("insert requires at least one column")
	}

	columns := sortedKeys(rows[0])
	for _, col := range columns {
		if err := validateIdentifier(col, "column"); err != nil {
			return nil, err
		}
	}

	for i, r := range rows[1:] {
		if len(r) != len(columns) {
			return nil, syntaxError("insert row %d has %d columns, expected %d", i+2, len(r), len(columns))
		}
		for _, col := range columns {
			if _, ok := r[col]; !ok {
				return nil, syntaxError("insert row %d is missing column %q", i+2, col)
			}
		}
	}
	return columns, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
