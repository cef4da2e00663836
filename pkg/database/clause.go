package database

// -----------------------------------------------------------------------------
// CLAUSE STATE
// -----------------------------------------------------------------------------
// Bir sorgunun WHERE/HAVING/JOIN, kolon, gruplama, sıralama ve limit
// bilgilerini tutan değiştirilebilir durumdur. Where/Having/Join yetenekleri
// (capability) bu durumu paylaşır ve sahiplerine (Fetcher) gömülür.
//
// Durum sadece eklemeyle büyür; derleyici onu bir kez okur ve değiştirmez.
// İlk doğrulama hatası kalıcıdır, sonraki çağrılar no-op olur.
// -----------------------------------------------------------------------------

type clause struct {
	where    *Condition
	having   *Condition
	joins    []Join
	columns  []string
	distinct bool
	random   bool
	limit    *int
	offset   *int
	group    []string
	order    []OrderClause
	err      error
}

func newClause() *clause {
	return &clause{columns: []string{"*"}}
}

// fail, ilk hatayı kaydeder.
func (s *clause) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// build, predicate'i önce ayrı bir Condition üzerinde kurar. Böylece hata
// durumunda hedef Condition'a hiçbir şey yazılmaz.
func (s *clause) build(p Predicate, columns bool) (*Condition, bool) {
	if s.err != nil {
		return nil, false
	}
	if p == nil {
		s.fail(syntaxError("predicate must not be nil"))
		return nil, false
	}

	sub := NewCondition()
	p.apply(sub, columns)
	if err := sub.Err(); err != nil {
		s.fail(err)
		return nil, false
	}
	return sub, true
}

// add, predicate'i hedef Condition'a verilen bağlaçla ekler. Hedef yoksa
// tembel (lazy) olarak oluşturulur ve bağlaç kullanılmaz.
func (s *clause) add(target **Condition, connector string, p Predicate) {
	sub, ok := s.build(p, false)
	if !ok || sub.Empty() {
		return
	}

	if *target == nil {
		*target = NewCondition()
	}
	cond := *target
	if connector != "" {
		cond.connect(connector)
	}
	cond.merge(sub)
	if err := cond.Err(); err != nil {
		s.fail(err)
	}
}

func (s *clause) addJoin(kind, table string, on Predicate) {
	if s.err != nil {
		return
	}

	joinType, err := ParseJoinType(kind)
	if err != nil {
		s.fail(err)
		return
	}
	if err := validateTable(table); err != nil {
		s.fail(err)
		return
	}

	cond, ok := s.build(on, true)
	if !ok {
		return
	}
	if cond.Empty() {
		s.fail(syntaxError("join %s requires an ON condition", table))
		return
	}

	s.joins = append(s.joins, Join{Type: joinType, Table: table, On: cond})
}

// -----------------------------------------------------------------------------
// HAVING
// -----------------------------------------------------------------------------

// HavingClause, HAVING yeteneğini sahibine (owner) kazandırır.
// WHERE ile aynı davranış kurallarını izler.
type HavingClause[T any] struct {
	owner T
	state *clause
}

// Having, HAVING koşulu ekler.
//
//	f.GroupBy("role").Having(database.Op("total", ">", 5))
//	→ GROUP BY role HAVING total > ?
func (h HavingClause[T]) Having(p Predicate) T {
	h.state.add(&h.state.having, "", p)
	return h.owner
}

// AndHaving, AND ile HAVING koşulu ekler. HAVING boşsa Having gibi davranır.
func (h HavingClause[T]) AndHaving(p Predicate) T {
	h.state.add(&h.state.having, "AND", p)
	return h.owner
}

// OrHaving, OR ile HAVING koşulu ekler. HAVING boşsa Having gibi davranır.
func (h HavingClause[T]) OrHaving(p Predicate) T {
	h.state.add(&h.state.having, "OR", p)
	return h.owner
}

// HavingWhen, test true ise Having uygular; false ise durum değişmez.
func (h HavingClause[T]) HavingWhen(test bool, p Predicate) T {
	if test {
		return h.Having(p)
	}
	return h.owner
}

// AndHavingWhen, test true ise AndHaving uygular.
func (h HavingClause[T]) AndHavingWhen(test bool, p Predicate) T {
	if test {
		return h.AndHaving(p)
	}
	return h.owner
}

// OrHavingWhen, test true ise OrHaving uygular.
func (h HavingClause[T]) OrHavingWhen(test bool, p Predicate) T {
	if test {
		return h.OrHaving(p)
	}
	return h.owner
}
