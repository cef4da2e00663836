package database

import (
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// UPSERT - DIALECT FARKLILAŞMASI
// -----------------------------------------------------------------------------
// INSERT-or-UPDATE sözdizimi dialect'e göre ayrışır:
//
//	MySQL:      INSERT ... ON DUPLICATE KEY UPDATE col = VALUES(col)
//	PostgreSQL: INSERT ... ON CONFLICT (cols) DO UPDATE SET col = excluded.col [RETURNING ...]
//	SQLite:     PostgreSQL ile aynı (3.24+)
//
// Geçersiz dialect identity hatası üretir.
// -----------------------------------------------------------------------------

// CompileUpsert, tek satırlık bir upsert sorgusu üretir.
//
// Parametreler:
//   - table: Hedef tablo
//   - data: Eklenecek veri (kolon → değer)
//   - opts: Çakışma, güncelleme ve RETURNING kolonları
//
// Örnek (PostgreSQL):
//
//	CompileUpsert("users", map[string]any{"email": "a@b.c", "name": "A"},
//	    UpsertOptions{Conflict: []string{"email"}})
//	→ INSERT INTO users (email, name) VALUES (?, ?)
//	  ON CONFLICT (email) DO UPDATE SET name = excluded.name
func (g *Grammar) CompileUpsert(table string, data map[string]any, opts UpsertOptions) (string, []any, error) {
	if !g.dialect.Valid() {
		return "", nil, identityError("upsert requires a recognized dialect, got %s", g.dialect)
	}

	insert, args, err := g.CompileInsert(table, []map[string]any{data})
	if err != nil {
		return "", nil, err
	}
	for _, group := range [][]string{opts.Conflict, opts.Update, opts.Returning} {
		for _, col := range group {
			if err := validateIdentifier(col, "column"); err != nil {
				return "", nil, err
			}
		}
	}

	switch g.dialect {
	case MySQL:
		if len(opts.Returning) > 0 {
			return "", nil, syntaxError("mysql upsert does not support returning")
		}
		update := opts.Update
		if len(update) == 0 {
			update = sortedKeys(data)
		}
		sets := make([]string, len(update))
		for i, col := range update {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", col, col)
		}
		return insert + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", "), args, nil

	case PostgreSQL, SQLite:
		if len(opts.Conflict) == 0 {
			return "", nil, syntaxError("%s upsert requires conflict columns", g.dialect)
		}
		update := opts.Update
		if len(update) == 0 {
			update = withoutColumns(sortedKeys(data), opts.Conflict)
		}

		var sb strings.Builder
		sb.WriteString(insert)
		sb.WriteString(" ON CONFLICT (")
		sb.WriteString(strings.Join(opts.Conflict, ", "))
		sb.WriteString(")")
		if len(update) == 0 {
			sb.WriteString(" DO NOTHING")
		} else {
			sets := make([]string, len(update))
			for i, col := range update {
				sets[i] = fmt.Sprintf("%s = excluded.%s", col, col)
			}
			sb.WriteString(" DO UPDATE SET ")
			sb.WriteString(strings.Join(sets, ", "))
		}
		if len(opts.Returning) > 0 {
			sb.WriteString(" RETURNING ")
			sb.WriteString(strings.Join(opts.Returning, ", "))
		}
		return sb.String(), args, nil
	}

	return "", nil, identityError("upsert requires a recognized dialect, got %s", g.dialect)
}

func withoutColumns(columns, exclude []string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, c := range exclude {
		skip[c] = true
	}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !skip[c] {
			out = append(out, c)
		}
	}
	return out
}
