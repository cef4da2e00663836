package database

// -----------------------------------------------------------------------------
// JOIN OPERATIONS
// -----------------------------------------------------------------------------
// JOIN'ler çağrı sırasıyla saklanır ve SQL'de aynı sırayla yer alır.
// ON koşulu üç şekilde verilebilir:
//
//   - Eq("users.id", "orders.user_id")         → users.id = orders.user_id
//   - Op("orders.total", ">=", "limits.min")   → orders.total >= limits.min
//   - Fn(func(c *Condition) {...})             → serbest ifade, literal bağlayabilir
//
// Eq/Op'un sağ tarafı değer değil kolon referansıdır; placeholder üretilmez.
// -----------------------------------------------------------------------------

// JoinClause, JOIN yeteneğini sahibine (owner) kazandırır.
type JoinClause[T any] struct {
	owner T
	state *clause
}

// Join, verilen tipte bir JOIN ekler. kind "inner", "left" veya "right"
// olmalıdır; table boş veya güvensiz olamaz.
func (j JoinClause[T]) Join(kind, table string, on Predicate) T {
	j.state.addJoin(kind, table, on)
	return j.owner
}

// InnerJoin, INNER JOIN ekler.
//
//	f.InnerJoin("orders", database.Eq("users.id", "orders.user_id"))
//	→ INNER JOIN orders ON users.id = orders.user_id
func (j JoinClause[T]) InnerJoin(table string, on Predicate) T {
	return j.Join(string(InnerJoin), table, on)
}

// LeftJoin, LEFT JOIN ekler.
func (j JoinClause[T]) LeftJoin(table string, on Predicate) T {
	return j.Join(string(LeftJoin), table, on)
}

// RightJoin, RIGHT JOIN ekler.
func (j JoinClause[T]) RightJoin(table string, on Predicate) T {
	return j.Join(string(RightJoin), table, on)
}
