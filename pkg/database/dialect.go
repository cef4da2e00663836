package database

import (
	"database/sql/driver"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"modernc.org/sqlite"
)

// -----------------------------------------------------------------------------
// DIALECT
// -----------------------------------------------------------------------------
// Dialect, bağlantının hangi veritabanı ailesine ait olduğunu belirten kapalı
// bir enum'dur. SELECT/WHERE/JOIN derlemesi dialect'ten bağımsızdır; sadece
// upsert, rastgele sıralama, placeholder dönüşümü ve DDL farklılaşır.
//
// Sıfır değer geçersizdir. Dialect'e özgü üretim gereken her yerde geçersiz
// bir Dialect identity hatası üretir.
// -----------------------------------------------------------------------------

// Dialect, desteklenen SQL lehçelerini temsil eder.
type Dialect int

const (
	MySQL Dialect = iota + 1
	PostgreSQL
	SQLite
)

// IsMySQL, MySQL/MariaDB ailesi için true döner.
func (d Dialect) IsMySQL() bool { return d == MySQL }

// IsPostgreSQL, PostgreSQL için true döner.
func (d Dialect) IsPostgreSQL() bool { return d == PostgreSQL }

// IsSQLite, SQLite için true döner.
func (d Dialect) IsSQLite() bool { return d == SQLite }

// Valid, Dialect'in tanınan üç değerden biri olup olmadığını söyler.
func (d Dialect) Valid() bool {
	return d == MySQL || d == PostgreSQL || d == SQLite
}

func (d Dialect) String() string {
	switch d {
	case MySQL:
		return "mysql"
	case PostgreSQL:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// DriverName, database/sql'e kayıtlı varsayılan sürücü adını döndürür.
// PostgreSQL için "postgres" (lib/pq) döner; pgx kullanılacaksa Config.Driver
// "pgx" olarak verilmelidir.
func (d Dialect) DriverName() string {
	if !d.Valid() {
		return ""
	}
	return d.String()
}

// ParseDialect, yapılandırmadaki dialect/sürücü adını çözer.
//
// Kabul edilen değerler (büyük/küçük harf duyarsız):
//   - mysql, mariadb
//   - postgres, postgresql, pgx, pq
//   - sqlite, sqlite3
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pgx", "pq":
		return PostgreSQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return 0, identityError("unrecognized dialect: %q", name)
}

// DetectDialect, açılmış bir bağlantının sürücü tipinden dialect'i belirler.
//
// Örnek:
//
//	db, _ := sql.Open("sqlite", ":memory:")
//	d, err := database.DetectDialect(db.Driver()) // SQLite
func DetectDialect(drv driver.Driver) (Dialect, error) {
	switch drv.(type) {
	case *mysql.MySQLDriver:
		return MySQL, nil
	case *pq.Driver, *stdlib.Driver:
		return PostgreSQL, nil
	case *sqlite.Driver:
		return SQLite, nil
	}
	return 0, identityError("unrecognized driver identity: %T", drv)
}

// Rebind, derlenmiş "?" placeholder'larını dialect'in beklediği biçime çevirir.
// PostgreSQL için "$1, $2, ..." üretir; tırnak içindeki "?" karakterlerine
// dokunmaz. Diğer dialect'lerde sorgu aynen döner.
//
//	Rebind("a = ? AND b = ?") → "a = $1 AND b = $2" (PostgreSQL)
func (d Dialect) Rebind(query string) string {
	if d != PostgreSQL || !strings.Contains(query, "?") {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)

	n := 0
	var quote byte
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
			sb.WriteByte(ch)
		case ch == '\'' || ch == '"':
			quote = ch
			sb.WriteByte(ch)
		case ch == '?':
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}
