package database

// -----------------------------------------------------------------------------
// WHERE OPERATIONS
// -----------------------------------------------------------------------------
// Bu dosya, WHERE yeteneğini (capability) içerir. WhereClause generic bir
// yapıdır; sahibine gömüldüğünde tüm metodlar sahibini döndürür ve zincirleme
// (method chaining) bozulmaz.
//
// Davranış kuralları:
//   - İlk çağrı Condition'ı oluşturur, bağlaç eklenmez.
//   - AndWhere/OrWhere boş bir WHERE üzerinde Where gibi davranır.
//   - When/AndWhen/OrWhen false testte durumu hiç değiştirmez.
//
// Tüm değerler prepared statement ile bağlandığı için SQL injection korumalıdır.
// -----------------------------------------------------------------------------

// WhereClause, WHERE yeteneğini sahibine (owner) kazandırır.
type WhereClause[T any] struct {
	owner T
	state *clause
}

// Where, sorguya bir WHERE koşulu ekler.
//
// Örnek:
//
//	f.Where(database.Op("age", ">", 18))
//	f.Where(database.Eq("status", "active"))
//	f.Where(database.Fn(func(c *database.Condition) {
//	    c.Col("role").Equal("admin").Or().Col("role").Equal("editor")
//	}))
func (w WhereClause[T]) Where(p Predicate) T {
	w.state.add(&w.state.where, "", p)
	return w.owner
}

// AndWhere, AND bağlacıyla bir WHERE koşulu ekler.
//
//	f.Where(database.Op("age", ">", 18)).AndWhere(database.Eq("name", "john"))
//	→ WHERE age > ? AND name = ?
func (w WhereClause[T]) AndWhere(p Predicate) T {
	w.state.add(&w.state.where, "AND", p)
	return w.owner
}

// OrWhere, OR bağlacıyla bir WHERE koşulu ekler.
//
//	f.Where(database.Eq("role", "admin")).OrWhere(database.Eq("role", "moderator"))
//	→ WHERE role = ? OR role = ?
func (w WhereClause[T]) OrWhere(p Predicate) T {
	w.state.add(&w.state.where, "OR", p)
	return w.owner
}

// When, test true ise Where uygular. False ise hiçbir Condition oluşturulmaz
// ve bağlaç tüketilmez.
//
//	f.When(filter.Status != "", database.Eq("status", filter.Status))
func (w WhereClause[T]) When(test bool, p Predicate) T {
	if test {
		return w.Where(p)
	}
	return w.owner
}

// AndWhen, test true ise AndWhere uygular.
func (w WhereClause[T]) AndWhen(test bool, p Predicate) T {
	if test {
		return w.AndWhere(p)
	}
	return w.owner
}

// OrWhen, test true ise OrWhere uygular.
func (w WhereClause[T]) OrWhen(test bool, p Predicate) T {
	if test {
		return w.OrWhere(p)
	}
	return w.owner
}

// WhereIn, kolonun değerlerinin listede olup olmadığını kontrol eder.
//
//	f.WhereIn("status", "active", "pending") → WHERE status IN (?, ?)
func (w WhereClause[T]) WhereIn(column string, values ...any) T {
	return w.Where(Fn(func(c *Condition) { c.Col(column).In(values...) }))
}

// WhereNotIn, kolonun değerlerinin listede olmadığını kontrol eder.
func (w WhereClause[T]) WhereNotIn(column string, values ...any) T {
	return w.Where(Fn(func(c *Condition) { c.Col(column).Not().In(values...) }))
}

// WhereBetween, kolonun iki değer arasında olup olmadığını kontrol eder.
//
//	f.WhereBetween("age", 18, 65) → WHERE age BETWEEN ? AND ?
func (w WhereClause[T]) WhereBetween(column string, low, high any) T {
	return w.Where(Fn(func(c *Condition) { c.Col(column).Between(low, high) }))
}

// WhereNull, kolonun NULL olup olmadığını kontrol eder.
//
// Soft delete pattern'inde aktif kayıtları bulmak için kullanılır:
//
//	f.WhereNull("deleted_at") → WHERE deleted_at IS NULL
func (w WhereClause[T]) WhereNull(column string) T {
	return w.Where(Fn(func(c *Condition) { c.Col(column).IsNull() }))
}

// WhereNotNull, kolonun NULL olmadığını kontrol eder.
func (w WhereClause[T]) WhereNotNull(column string) T {
	return w.Where(Fn(func(c *Condition) { c.Col(column).Not().IsNull() }))
}
