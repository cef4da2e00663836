package database

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
)

// -----------------------------------------------------------------------------
// RESULT HELPERS
// -----------------------------------------------------------------------------
// Bu dosya, SQL'den dönen sonuçları okuma yardımcılarını içerir. Row, kolon
// sırasını koruyan basit bir satır yapısıdır; Flat bu sırayı kullanarak
// satır-öncelikli (row-major) düzleştirme yapar.
// -----------------------------------------------------------------------------

// Row, tek bir sonuç satırıdır. Kolonlar sorgunun döndürdüğü sırada tutulur.
type Row struct {
	columns []string
	values  []any
}

// NewRow, kolon ve değer listelerinden bir Row oluşturur. Uzunluklar
// eşleşmezse kısa olan esas alınır.
func NewRow(columns []string, values []any) Row {
	n := min(len(columns), len(values))
	r := Row{columns: make([]string, n), values: make([]any, n)}
	copy(r.columns, columns)
	copy(r.values, values)
	return r
}

// Columns, kolon adlarını sırasıyla döndürür.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Values, değerleri kolon sırasıyla döndürür.
func (r Row) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// Get, kolonun değerini döndürür. Kolon yoksa ok false olur.
func (r Row) Get(column string) (any, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// Value, kolonun değerini döndürür; kolon yoksa nil.
func (r Row) Value(column string) any {
	v, _ := r.Get(column)
	return v
}

// Len, kolon sayısını döndürür.
func (r Row) Len() int {
	return len(r.columns)
}

// Map, satırı map[string]any'e çevirir (sıra kaybolur).
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// Flat, satırları bellekte düzleştirir; SQL seviyesinde bir işlem değildir.
//
//   - Kolon verilmezse her satırın tüm değerleri sırasıyla eklenir.
//   - Kolon(lar) verilirse her satırdan sadece o kolonlar alınır; satırda
//     olmayan kolon nil olarak eklenir.
//
// Örnek:
//
//	Flat(rows, "id")  → [1, 2, 3]
//	Flat(rows)        → [1, "a", 2, "b", 3, "c"]
func Flat(rows []Row, columns ...string) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		if len(columns) == 0 {
			out = append(out, r.values...)
			continue
		}
		for _, c := range columns {
			out = append(out, r.Value(c))
		}
	}
	return out
}

// rowsToRows, sql.Rows'ı []Row biçimine dönüştürür.
func rowsToRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := make([]Row, 0)

	for rows.Next() {
		values := make([]any, len(cols))
		pointers := make([]any, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		res = append(res, Row{columns: cols, values: values})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// toInt64, COUNT sonucunu sürücüden bağımsız olarak int64'e çevirir.
// MySQL metin protokolü []byte, SQLite ve PostgreSQL int64 döndürür.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("count overflows int64: %d", n)
		}
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("unexpected count type %T", v)
}
