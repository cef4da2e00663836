// -----------------------------------------------------------------------------
// Database Types - SQL Builder İçin Yardımcı Tipler
// -----------------------------------------------------------------------------
// Bu dosya, Fetcher ve Grammar arasında taşınan yapıları içerir.
// OrderClause, Join ve SelectQuery gibi yapılar burada tanımlanır.
//
// Örneğin OrderClause, direction alanını enum gibi kullanarak sadece
// "ASC" ve "DESC" değerlerini kabul eder. Bu sayede kullanıcı input'u
// direkt SQL'e enjekte edilemez.
// -----------------------------------------------------------------------------

package database

import "strings"

// OrderDirection, ORDER BY için izin verilen yönleri temsil eder.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// parseDirection, yönü normalize eder. Geçersiz değerler ASC'ye döner.
func parseDirection(direction string) OrderDirection {
	if strings.EqualFold(strings.TrimSpace(direction), string(OrderDesc)) {
		return OrderDesc
	}
	return OrderAsc
}

// OrderClause, bir ORDER BY ifadesini güvenli bir şekilde temsil eder.
//
// Örnek:
//
//	OrderClause{Column: "created_at", Direction: OrderDesc}
//	→ SQL: ORDER BY created_at DESC
type OrderClause struct {
	Column    string
	Direction OrderDirection
}

// JoinType, JOIN tiplerini temsil eden enum-like yapıdır.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
)

// ParseJoinType, "inner", "left", "right" değerlerini (büyük/küçük harf
// duyarsız) JoinType'a çevirir; diğer tüm değerler identity hatasıdır.
func ParseJoinType(kind string) (JoinType, error) {
	switch JoinType(strings.ToUpper(strings.TrimSpace(kind))) {
	case InnerJoin:
		return InnerJoin, nil
	case LeftJoin:
		return LeftJoin, nil
	case RightJoin:
		return RightJoin, nil
	}
	return "", identityError("invalid join type: %q (expected inner, left or right)", kind)
}

// Join, bir JOIN ifadesini temsil eder. On, kolon referansları (Ref) ve
// callback ile eklenmiş literal değerler içerebilir.
//
//	Join{Type: LeftJoin, Table: "posts", On: ...}
//	→ SQL: LEFT JOIN posts ON users.id = posts.user_id
type Join struct {
	Type  JoinType
	Table string
	On    *Condition
}

// SelectQuery, Grammar'ın derlediği salt-okunur SELECT durumudur.
// Fetcher her derlemede yeni bir SelectQuery üretir; Grammar bunu değiştirmez.
type SelectQuery struct {
	Table    string
	Columns  []string
	Distinct bool
	Random   bool
	Joins    []Join
	Where    *Condition
	Group    []string
	Having   *Condition
	Order    []OrderClause
	Limit    *int
	Offset   *int
}

// CountOptions, Count ve Paginate için COUNT ifadesini yapılandırır.
// Column boşsa "*" kullanılır.
type CountOptions struct {
	Column   string
	Distinct bool
}

// UpsertOptions, CompileUpsert için çakışma ve güncelleme kolonlarını belirler.
//
//   - Conflict: PostgreSQL/SQLite ON CONFLICT hedefi (zorunlu), MySQL'de yok sayılır
//   - Update: güncellenecek kolonlar; boşsa tüm insert kolonları
//   - Returning: PostgreSQL/SQLite RETURNING listesi, MySQL'de hata
type UpsertOptions struct {
	Conflict  []string
	Update    []string
	Returning []string
}
