package database

// -----------------------------------------------------------------------------
// PREDICATE - KOŞUL ŞEKİLLERİ
// -----------------------------------------------------------------------------
// Where/Having/Join metodları argüman sayısına bakarak davranış değiştirmez;
// bunun yerine çağrı noktasında üç şekilden biri açıkça seçilir:
//
//   - Fn(func(*Condition))      → callback ile serbest iç içe ifade
//   - Eq(column, value)         → örtük eşitlik
//   - Op(column, operator, val) → whitelist'ten geçen açık operatör
//
// JOIN bağlamında Eq/Op'un sağ tarafı bir değer değil kolon referansıdır.
// -----------------------------------------------------------------------------

// Predicate, Where/Having/Join metodlarının kabul ettiği kapalı (sealed) koşul tipidir.
type Predicate interface {
	apply(c *Condition, columns bool)
}

// Callback, Condition üzerinde serbestçe ifade kuran bir fonksiyondur.
type Callback func(*Condition)

// Equality, kolon ile değer arasında örtük eşitliktir.
type Equality struct {
	Column string
	Value  any
}

// Comparison, kolon, operatör ve değerden oluşan açık karşılaştırmadır.
type Comparison struct {
	Column   string
	Operator string
	Value    any
}

// Fn, callback şeklinde bir Predicate oluşturur.
//
// Örnek:
//
//	f.Where(database.Fn(func(c *database.Condition) {
//	    c.Col("role").Equal("admin").Or().Col("role").Equal("editor")
//	}))
func Fn(fn func(*Condition)) Predicate {
	return Callback(fn)
}

// Eq, örtük eşitlik Predicate'i oluşturur.
//
//	f.Where(database.Eq("name", "john")) → name = ?
func Eq(column string, value any) Predicate {
	return Equality{Column: column, Value: value}
}

// Op, açık operatörlü Predicate oluşturur.
//
//	f.Where(database.Op("age", ">", 18)) → age > ?
func Op(column, operator string, value any) Predicate {
	return Comparison{Column: column, Operator: operator, Value: value}
}

func (p Callback) apply(c *Condition, _ bool) {
	if p == nil {
		c.err = syntaxError("callback predicate must not be nil")
		return
	}
	p(c)
}

func (p Equality) apply(c *Condition, columns bool) {
	value, ok := rightHand(c, p.Value, columns)
	if !ok {
		return
	}
	c.Col(p.Column).Equal(value)
}

func (p Comparison) apply(c *Condition, columns bool) {
	value, ok := rightHand(c, p.Value, columns)
	if !ok {
		return
	}
	c.Col(p.Column).Compare(p.Operator, value)
}

// rightHand, JOIN bağlamında string sağ tarafı Reference'a çevirir.
// String olmayan bir değer JOIN'de şekil hatasıdır.
func rightHand(c *Condition, value any, columns bool) (any, bool) {
	if !columns {
		return value, true
	}
	switch v := value.(type) {
	case Reference:
		return v, true
	case string:
		return Ref(v), true
	default:
		c.err = syntaxError("join condition expects a column name on the right-hand side, got %T", value)
		return nil, false
	}
}
