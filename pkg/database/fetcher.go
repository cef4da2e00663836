package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// FETCHER
// -----------------------------------------------------------------------------
// Fetcher, tek bir SELECT ifadesinin durumunu (kolonlar, distinct, random,
// limit, gruplama, sıralama, where, having, join) biriktirir. Terminal
// çağrılar (All, First, Count, Paginate, Flat, Scan ve yazma işlemleri) bu
// durumu tek bir ifadeye derler ve executor'a devreder.
//
// Zincirleme çağrılar I/O yapmaz. Derleme durumu hiçbir zaman değiştirmez;
// First bile LIMIT 1'i bir kopya üzerinde uygular.
//
// Fetcher thread-safe DEĞİLDİR. Terminal çağrı dönene kadar tek bir sahibi olmalıdır.
// -----------------------------------------------------------------------------

// Fetcher, bir tablo üzerindeki SELECT/UPDATE/DELETE ifadesini kurar.
type Fetcher struct {
	WhereClause[*Fetcher]
	HavingClause[*Fetcher]
	JoinClause[*Fetcher]

	builder *Builder
	table   string
	state   *clause
	debug   bool
}

// Page, Paginate sonucudur.
type Page struct {
	Items       []Row `json:"items"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
}

// ---- STATE ----

// Select, sorgudan döndürülecek kolonları belirler. Kolon verilmezse "*"
// kullanılır.
//
// Örnek:
//
//	f.Select("id", "name", "email")
//	f.Select("COUNT(*) AS total")
func (f *Fetcher) Select(columns ...string) *Fetcher {
	if f.state.err != nil {
		return f
	}
	for _, col := range columns {
		if err := validateExpression(col, "column"); err != nil {
			f.state.fail(err)
			return f
		}
	}
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	f.state.columns = append([]string(nil), columns...)
	return f
}

// Distinct, SELECT DISTINCT üretir.
func (f *Fetcher) Distinct() *Fetcher {
	f.state.distinct = true
	return f
}

// Random, sonuçları rastgele sıralar (MySQL: RAND(), diğerleri: RANDOM()).
// Random açıkken OrderBy sıralamaları yok sayılır.
func (f *Fetcher) Random() *Fetcher {
	f.state.random = true
	return f
}

// Limit, döndürülecek maksimum satır sayısını belirler.
//
//	f.Limit(10) → LIMIT 10
func (f *Fetcher) Limit(n int) *Fetcher {
	if f.state.err != nil {
		return f
	}
	if n < 0 {
		f.state.fail(syntaxError("limit must not be negative, got %d", n))
		return f
	}
	f.state.limit = &n
	return f
}

// Offset, atlanacak satır sayısını belirler. Limit olmadan derlenemez.
//
//	f.Limit(10).Offset(20) → LIMIT 10 OFFSET 20 (3. sayfa)
func (f *Fetcher) Offset(n int) *Fetcher {
	if f.state.err != nil {
		return f
	}
	if n < 0 {
		f.state.fail(syntaxError("offset must not be negative, got %d", n))
		return f
	}
	f.state.offset = &n
	return f
}

// GroupBy, GROUP BY kolonlarını ekler.
//
//	f.GroupBy("role") → GROUP BY role
func (f *Fetcher) GroupBy(columns ...string) *Fetcher {
	if f.state.err != nil {
		return f
	}
	for _, col := range columns {
		if err := validateExpression(col, "group column"); err != nil {
			f.state.fail(err)
			return f
		}
	}
	f.state.group = append(f.state.group, columns...)
	return f
}

// OrderBy, sonuçları belirtilen kolona göre sıralar.
//
// Direction whitelist kontrolünden geçer; "DESC" (büyük/küçük harf duyarsız)
// dışındaki her değer ASC olarak yorumlanır.
//
//	f.OrderBy("created_at", "DESC") → ORDER BY created_at DESC
func (f *Fetcher) OrderBy(column, direction string) *Fetcher {
	if f.state.err != nil {
		return f
	}
	if err := validateExpression(column, "order column"); err != nil {
		f.state.fail(err)
		return f
	}
	f.state.order = append(f.state.order, OrderClause{
		Column:    column,
		Direction: parseDirection(direction),
	})
	return f
}

// Debug, bu Fetcher'ın terminal çağrılarında derlenen ifadeleri debug sink'e
// bildirir.
func (f *Fetcher) Debug() *Fetcher {
	f.debug = true
	return f
}

// If, test true ise fn'i bu Fetcher ile çağırır. Birden fazla koşullu
// değişikliği gruplamak için kullanılır.
//
// Örnek:
//
//	f.If(filter.Admin, func(f *database.Fetcher) {
//	    f.AndWhere(database.Eq("role", "admin")).OrderBy("last_login", "desc")
//	})
func (f *Fetcher) If(test bool, fn func(*Fetcher)) *Fetcher {
	if test && fn != nil {
		fn(f)
	}
	return f
}

// Err, zincir sırasında kaydedilen ilk hatayı döndürür.
func (f *Fetcher) Err() error {
	return f.state.err
}

// ToSQL, Fetcher'ın durumunu SQL metnine ve parametrelere dönüştürür.
// Durum değişmez; aynı Fetcher'ı iki kez derlemek aynı sonucu verir.
//
// Örnek:
//
//	sql, args, err := f.ToSQL()
//	// sql:  "SELECT * FROM users WHERE age > ? AND name = ?"
//	// args: [18, "john"]
func (f *Fetcher) ToSQL() (string, []any, error) {
	if f.state.err != nil {
		return "", nil, f.state.err
	}
	return f.builder.grammar.CompileSelect(f.snapshot())
}

// CountSQL, Count'un çalıştıracağı ifadeyi derler.
func (f *Fetcher) CountSQL(opts CountOptions) (string, []any, error) {
	if f.state.err != nil {
		return "", nil, f.state.err
	}
	return f.builder.grammar.CompileCount(f.snapshot(), opts)
}

// snapshot, derleyiciye verilecek salt-okunur kopyayı üretir.
func (f *Fetcher) snapshot() SelectQuery {
	s := f.state
	return SelectQuery{
		Table:    f.table,
		Columns:  append([]string(nil), s.columns...),
		Distinct: s.distinct,
		Random:   s.random,
		Joins:    append([]Join(nil), s.joins...),
		Where:    s.where,
		Group:    append([]string(nil), s.group...),
		Having:   s.having,
		Order:    append([]OrderClause(nil), s.order...),
		Limit:    s.limit,
		Offset:   s.offset,
	}
}

// ---- READ TERMINALS ----

// All, sorguyu çalıştırır ve tüm satırları döndürür.
//
// Örnek:
//
//	rows, err := qb.Table("users").Where(database.Eq("status", "active")).All(ctx)
func (f *Fetcher) All(ctx context.Context) ([]Row, error) {
	sqlStr, args, err := f.ToSQL()
	if err != nil {
		return nil, err
	}
	return f.query(ctx, sqlStr, args)
}

// First, LIMIT 1 uygulanmış bir kopyayı çalıştırır. Satır yoksa found false döner.
//
//	row, found, err := qb.Table("users").Where(database.Eq("id", 1)).First(ctx)
func (f *Fetcher) First(ctx context.Context) (Row, bool, error) {
	sqlStr, args, err := f.firstSQL()
	if err != nil {
		return Row{}, false, err
	}
	rows, err := f.query(ctx, sqlStr, args)
	if err != nil {
		return Row{}, false, err
	}
	if len(rows) == 0 {
		return Row{}, false, nil
	}
	return rows[0], true, nil
}

// Scan, sorguyu çalıştırır ve sonuçları bir struct slice'ına tarar.
//
// Örnek:
//
//	var users []User
//	err := qb.Table("users").Where(database.Eq("status", "active")).Scan(ctx, &users)
func (f *Fetcher) Scan(ctx context.Context, dest any) error {
	sqlStr, args, err := f.ToSQL()
	if err != nil {
		return err
	}
	rows, err := f.rows(ctx, sqlStr, args)
	if err != nil {
		return err
	}
	defer rows.Close()

	return ScanSlice(rows, dest)
}

// ScanFirst, LIMIT 1 ile ilk satırı bir struct'a tarar. Satır yoksa
// sql.ErrNoRows döner.
func (f *Fetcher) ScanFirst(ctx context.Context, dest any) error {
	sqlStr, args, err := f.firstSQL()
	if err != nil {
		return err
	}
	rows, err := f.rows(ctx, sqlStr, args)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	return ScanStruct(rows, dest)
}

// Count, sorguyu alt sorgu olarak sarar ve satır sayısını döndürür.
//
// Örnek:
//
//	n, err := f.Count(ctx, database.CountOptions{Column: "email", Distinct: true})
//	// SELECT COUNT(DISTINCT email) AS count FROM (SELECT * FROM users) AS sub
func (f *Fetcher) Count(ctx context.Context, opts CountOptions) (int64, error) {
	sqlStr, args, err := f.CountSQL(opts)
	if err != nil {
		return 0, err
	}
	return f.count(ctx, sqlStr, args)
}

// Paginate, istenen sayfanın satırlarını ve toplam sayıyı döndürür.
// İki ayrı sorgu çalıştırır: önce sınırlı SELECT, sonra COUNT. Herhangi biri
// başarısız olursa çağrının tamamı başarısız olur.
//
// Örnek:
//
//	page, err := f.OrderBy("id", "asc").Paginate(ctx, 2, 20, database.CountOptions{})
//	// LIMIT 20 OFFSET 20
func (f *Fetcher) Paginate(ctx context.Context, page, perPage int, opts CountOptions) (*Page, error) {
	if f.state.err != nil {
		return nil, f.state.err
	}
	if page < 1 {
		return nil, syntaxError("page must be at least 1, got %d", page)
	}
	if perPage < 1 {
		return nil, syntaxError("items per page must be at least 1, got %d", perPage)
	}

	q := f.snapshot()
	offset := (page - 1) * perPage
	q.Limit = &perPage
	q.Offset = &offset

	sqlStr, args, err := f.builder.grammar.CompileSelect(q)
	if err != nil {
		return nil, err
	}
	countSQL, countArgs, err := f.builder.grammar.CompileCount(f.snapshot(), opts)
	if err != nil {
		return nil, err
	}

	items, err := f.query(ctx, sqlStr, args)
	if err != nil {
		return nil, err
	}
	total, err := f.count(ctx, countSQL, countArgs)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:       items,
		Total:       total,
		TotalPages:  int((total + int64(perPage) - 1) / int64(perPage)),
		CurrentPage: page,
		PerPage:     perPage,
	}, nil
}

// Flat, sorguyu çalıştırır ve sonucu bellekte düzleştirir. Bkz. Flat.
//
//	ids, err := qb.Table("users").Select("id").Flat(ctx, "id")
func (f *Fetcher) Flat(ctx context.Context, columns ...string) ([]any, error) {
	rows, err := f.All(ctx)
	if err != nil {
		return nil, err
	}
	return Flat(rows, columns...), nil
}

// ---- WRITE TERMINALS ----

// Insert, bir veya daha fazla satır ekler. Tüm satırlar aynı kolonlara sahip
// olmalıdır.
//
// Örnek:
//
//	res, err := qb.Table("users").Insert(ctx, map[string]any{
//	    "name":  "John Doe",
//	    "email": "john@example.com",
//	})
//	lastID, _ := res.LastInsertId()
func (f *Fetcher) Insert(ctx context.Context, rows ...map[string]any) (sql.Result, error) {
	if f.state.err != nil {
		return nil, f.state.err
	}
	sqlStr, args, err := f.builder.grammar.CompileInsert(f.table, rows)
	if err != nil {
		return nil, err
	}
	return f.exec(ctx, sqlStr, args)
}

// Update, WHERE koşuluna uyan satırları günceller.
//
// GÜVENLİK UYARISI:
// WHERE olmadan Update tüm tabloyu günceller.
func (f *Fetcher) Update(ctx context.Context, data map[string]any) (sql.Result, error) {
	if f.state.err != nil {
		return nil, f.state.err
	}
	sqlStr, args, err := f.builder.grammar.CompileUpdate(f.snapshot(), data)
	if err != nil {
		return nil, err
	}
	return f.exec(ctx, sqlStr, args)
}

// Delete, WHERE koşuluna uyan satırları siler.
//
// GÜVENLİK UYARISI:
// WHERE olmadan Delete TÜM TABLONUN SİLİNMESİNE sebep olur!
func (f *Fetcher) Delete(ctx context.Context) (sql.Result, error) {
	if f.state.err != nil {
		return nil, f.state.err
	}
	sqlStr, args, err := f.builder.grammar.CompileDelete(f.snapshot())
	if err != nil {
		return nil, err
	}
	return f.exec(ctx, sqlStr, args)
}

// Upsert, satırı ekler; çakışma varsa günceller. RETURNING kullanılacaksa
// UpsertReturning tercih edilmelidir.
func (f *Fetcher) Upsert(ctx context.Context, data map[string]any, opts UpsertOptions) (sql.Result, error) {
	if f.state.err != nil {
		return nil, f.state.err
	}
	if len(opts.Returning) > 0 {
		return nil, syntaxError("upsert with returning must use UpsertReturning")
	}
	sqlStr, args, err := f.builder.grammar.CompileUpsert(f.table, data, opts)
	if err != nil {
		return nil, err
	}
	return f.exec(ctx, sqlStr, args)
}

// UpsertReturning, RETURNING kolonlarıyla upsert çalıştırır (PostgreSQL/SQLite).
func (f *Fetcher) UpsertReturning(ctx context.Context, data map[string]any, opts UpsertOptions) ([]Row, error) {
	if f.state.err != nil {
		return nil, f.state.err
	}
	if len(opts.Returning) == 0 {
		return nil, syntaxError("upsert returning requires returning columns")
	}
	sqlStr, args, err := f.builder.grammar.CompileUpsert(f.table, data, opts)
	if err != nil {
		return nil, err
	}
	return f.query(ctx, sqlStr, args)
}

// ---- internal ----

func (f *Fetcher) firstSQL() (string, []any, error) {
	if f.state.err != nil {
		return "", nil, f.state.err
	}
	q := f.snapshot()
	one := 1
	q.Limit = &one
	return f.builder.grammar.CompileSelect(q)
}

// report, debug açıksa ifadeyi sink'e tam olarak bir kez bildirir.
func (f *Fetcher) report(ctx context.Context, sqlStr string, args []any) {
	if !f.debug {
		return
	}
	f.builder.sink.Log(ctx, Statement{
		ID:      uuid.New(),
		SQL:     sqlStr,
		Args:    append([]any(nil), args...),
		Dialect: f.builder.grammar.Dialect().String(),
	})
}

func (f *Fetcher) executor() (Executor, error) {
	if f.builder.exec == nil {
		return nil, errors.New("database: no executor configured")
	}
	return f.builder.exec, nil
}

func (f *Fetcher) rows(ctx context.Context, sqlStr string, args []any) (*sql.Rows, error) {
	exec, err := f.executor()
	if err != nil {
		return nil, err
	}
	f.report(ctx, sqlStr, args)

	rows, err := exec.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		f.builder.logger.DebugContext(ctx, "query failed", slog.String("table", f.table), slog.Any("error", err))
		return nil, fmt.Errorf("query %s: %w", f.table, err)
	}
	return rows, nil
}

func (f *Fetcher) query(ctx context.Context, sqlStr string, args []any) ([]Row, error) {
	rows, err := f.rows(ctx, sqlStr, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rowsToRows(rows)
}

func (f *Fetcher) count(ctx context.Context, sqlStr string, args []any) (int64, error) {
	rows, err := f.query(ctx, sqlStr, args)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	v, ok := rows[0].Get("count")
	if !ok {
		return 0, fmt.Errorf("count %s: missing count column", f.table)
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", f.table, err)
	}
	return n, nil
}

func (f *Fetcher) exec(ctx context.Context, sqlStr string, args []any) (sql.Result, error) {
	exec, err := f.executor()
	if err != nil {
		return nil, err
	}
	f.report(ctx, sqlStr, args)

	res, err := exec.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		f.builder.logger.DebugContext(ctx, "exec failed", slog.String("table", f.table), slog.Any("error", err))
		return nil, fmt.Errorf("exec %s: %w", f.table, err)
	}
	return res, nil
}
