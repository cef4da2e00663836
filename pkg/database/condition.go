package database

import (
	"reflect"
	"strings"
)

// -----------------------------------------------------------------------------
// CONDITION - BOOLEAN İFADE AĞACI
// -----------------------------------------------------------------------------
// Condition; WHERE, HAVING ve JOIN ON ifadelerinin tamamını üreten, zincirleme
// (chainable) ve değiştirilebilir bir builder'dır. Her yaprak predicate eklendiği
// anda "<kolon> <operatör> ?" biçiminde derlenir, bağlı değerleri aynı sırayla
// values listesine eklenir.
//
// Bağlaçlar (AND/OR) global değil, her geçiş için ayrı tutulur. Bu yüzden
// "a = ? AND b = ? OR c = ?" gibi karışık zincirler otomatik parantez almaz.
//
// İlk hata kalıcıdır: hatayı üreten çağrı ve sonraki tüm çağrılar no-op olur,
// fragment ve values hata öncesindeki haliyle kalır.
// -----------------------------------------------------------------------------

// Reference, bir değer yerine başka bir kolonla karşılaştırmayı işaretler.
// Sağ taraf olarak kullanıldığında placeholder üretilmez, kolon adı SQL'e
// doğrudan yazılır (JOIN ON koşulları için).
type Reference string

// Ref, kolon adını Reference olarak etiketler.
//
// Örnek:
//
//	c.Col("users.id").Equal(database.Ref("orders.user_id"))
//	→ users.id = orders.user_id
func Ref(column string) Reference {
	return Reference(column)
}

// node, derlenmiş bir alt ifade ve ondan önce gelen bağlaçtır.
type node struct {
	connector string
	fragment  string
}

// Condition, tek bir boolean ifade ağacını temsil eder.
//
// Condition instance'ları thread-safe DEĞİLDİR; her biri tek bir sahip
// (Fetcher veya clause) tarafından kullanılır.
type Condition struct {
	column    string
	negate    bool
	connector string
	nodes     []node
	values    []any
	adopted   bool
	err       error
}

// NewCondition, boş bir Condition oluşturur.
func NewCondition() *Condition {
	return &Condition{}
}

// Col, bir sonraki predicate için aktif kolonu seçer.
//
// Kolon adı boş olamaz ve güvenli bir identifier veya fonksiyon ifadesi
// (örn: "DATE(created_at)") olmalıdır. Bekleyen Not() iptal edilir.
func (c *Condition) Col(name string) *Condition {
	if c.err != nil {
		return c
	}
	if err := validateExpression(name, "column"); err != nil {
		c.err = err
		return c
	}
	c.column = name
	c.negate = false
	return c
}

// Not, bir sonraki operatör çağrısını olumsuzlar. Sadece tek predicate'i etkiler.
//
//	Not().Equal(x)      → !=
//	Not().Like(x)       → NOT LIKE
//	Not().In(...)       → NOT IN
//	Not().Between(a, b) → NOT BETWEEN
func (c *Condition) Not() *Condition {
	if c.err != nil {
		return c
	}
	c.negate = true
	return c
}

// And, bir sonraki predicate'ten önce AND bağlacı kaydeder.
func (c *Condition) And() *Condition {
	return c.connect("AND")
}

// Or, bir sonraki predicate'ten önce OR bağlacı kaydeder.
func (c *Condition) Or() *Condition {
	return c.connect("OR")
}

// connect, ilk predicate'ten önce gelen bağlacı yok sayar; art arda gelen
// bağlaçlarda sonuncusu geçerlidir.
func (c *Condition) connect(connector string) *Condition {
	if c.err != nil || len(c.nodes) == 0 {
		return c
	}
	c.connector = connector
	return c
}

// Equal, "<kolon> = ?" ekler.
func (c *Condition) Equal(value any) *Condition {
	return c.compare(opEqual, value)
}

// NotEqual, "<kolon> != ?" ekler.
func (c *Condition) NotEqual(value any) *Condition {
	return c.compare(opNotEqual, value)
}

// LessThan, "<kolon> < ?" ekler.
func (c *Condition) LessThan(value any) *Condition {
	return c.compare(opLess, value)
}

// LessThanOrEqual, "<kolon> <= ?" ekler.
func (c *Condition) LessThanOrEqual(value any) *Condition {
	return c.compare(opLessOrEqual, value)
}

// GreaterThan, "<kolon> > ?" ekler.
func (c *Condition) GreaterThan(value any) *Condition {
	return c.compare(opGreater, value)
}

// GreaterThanOrEqual, "<kolon> >= ?" ekler.
func (c *Condition) GreaterThanOrEqual(value any) *Condition {
	return c.compare(opGreaterOrEqual, value)
}

// Like, "<kolon> LIKE ?" ekler.
func (c *Condition) Like(value any) *Condition {
	return c.compare(opLike, value)
}

// IsNull, "<kolon> IS NULL" ekler; değer bağlanmaz.
func (c *Condition) IsNull() *Condition {
	if !c.ready(opIsNull) {
		return c
	}
	op := c.resolve(opIsNull)
	return c.push(c.column+" "+string(op), nil)
}

// In, her eleman için bir placeholder üretir.
// Tek bir slice argümanı verilirse elemanlarına açılır.
//
// Örnek:
//
//	c.Col("status").In("active", "pending")        → status IN (?, ?)
//	c.Col("id").In([]int{1, 2, 3})                  → id IN (?, ?, ?)
//	c.Col("id").In()                                → 1 = 0
func (c *Condition) In(values ...any) *Condition {
	return c.list(opIn, spread(values))
}

// Between, tam olarak iki değer ister; aksi halde arity hatası üretir.
// Tek bir slice argümanı verilirse elemanlarına açılır.
func (c *Condition) Between(values ...any) *Condition {
	return c.bounds(opBetween, spread(values))
}

// Compare, operatör metni ile predicate ekler. Operatör whitelist dışındaysa
// operator hatası üretir.
//
// IN/NOT IN için value bir slice ise elemanlarına açılır, skaler ise tek
// elemanlı liste olarak bağlanır. BETWEEN/NOT BETWEEN için iki elemanlı slice gerekir.
func (c *Condition) Compare(op string, value any) *Condition {
	if c.err != nil {
		return c
	}
	parsed, err := parseOperator(op)
	if err != nil {
		c.err = err
		return c
	}

	switch {
	case parsed.isIn():
		return c.list(parsed, spread([]any{value}))
	case parsed.isBetween():
		return c.bounds(parsed, spread([]any{value}))
	default:
		return c.compare(parsed, value)
	}
}

// Group, iç içe bir alt ifade ekler. Birden fazla predicate içeren gruplar
// parantez içine alınır; boş gruplar hiçbir şey eklemez.
//
// Örnek:
//
//	c.Col("active").Equal(true).And().Group(func(g *Condition) {
//	    g.Col("role").Equal("admin").Or().Col("role").Equal("editor")
//	})
//	→ active = ? AND (role = ? OR role = ?)
func (c *Condition) Group(fn func(*Condition)) *Condition {
	if c.err != nil {
		return c
	}
	if fn == nil {
		c.err = syntaxError("group callback must not be nil")
		return c
	}
	sub := NewCondition()
	fn(sub)
	return c.merge(sub)
}

// Build, derlenmiş fragment'ı döndürür. Idempotent ve yan etkisizdir.
func (c *Condition) Build() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.render(), nil
}

// Values, bağlı parametrelerin bir kopyasını döndürür.
func (c *Condition) Values() []any {
	out := make([]any, len(c.values))
	copy(out, c.values)
	return out
}

// Err, kaydedilen ilk hatayı döndürür.
func (c *Condition) Err() error {
	return c.err
}

// Empty, hiç predicate eklenmediyse true döner.
func (c *Condition) Empty() bool {
	return len(c.nodes) == 0
}

// Len, üst seviyedeki ifade sayısını döndürür (gruplar tek ifade sayılır).
func (c *Condition) Len() int {
	return len(c.nodes)
}

// -----------------------------------------------------------------------------
// internal
// -----------------------------------------------------------------------------

func (c *Condition) render() string {
	var sb strings.Builder
	for i, n := range c.nodes {
		if i > 0 {
			sb.WriteString(" ")
			sb.WriteString(n.connector)
			sb.WriteString(" ")
		}
		sb.WriteString(n.fragment)
	}
	return sb.String()
}

// ready, aktif kolon yoksa hata kaydeder.
func (c *Condition) ready(op operator) bool {
	if c.err != nil {
		return false
	}
	if c.column == "" {
		c.err = syntaxError("no column selected: call Col() before %s", op)
		return false
	}
	return true
}

// resolve, bekleyen Not() varsa operatörü olumsuzlar.
func (c *Condition) resolve(op operator) operator {
	if c.negate {
		return op.negated()
	}
	return op
}

func (c *Condition) compare(op operator, value any) *Condition {
	if !c.ready(op) {
		return c
	}
	op = c.resolve(op)

	operand, bound, err := c.operand(value)
	if err != nil {
		c.err = err
		return c
	}
	return c.push(c.column+" "+string(op)+" "+operand, bound)
}

func (c *Condition) list(op operator, values []any) *Condition {
	if !c.ready(op) {
		return c
	}
	op = c.resolve(op)

	if len(values) == 0 {
		// Boş liste: IN hiçbir satırla eşleşmez, NOT IN hepsiyle eşleşir.
		if op == opIn {
			return c.push("1 = 0", nil)
		}
		return c.push("1 = 1", nil)
	}

	placeholders := make([]string, len(values))
	bound := make([]any, 0, len(values))
	for i, v := range values {
		operand, vals, err := c.operand(v)
		if err != nil {
			c.err = err
			return c
		}
		placeholders[i] = operand
		bound = append(bound, vals...)
	}
	return c.push(c.column+" "+string(op)+" ("+strings.Join(placeholders, ", ")+")", bound)
}

func (c *Condition) bounds(op operator, values []any) *Condition {
	if !c.ready(op) {
		return c
	}
	op = c.resolve(op)

	if len(values) != 2 {
		c.err = arityError(strings.ToLower(string(op)))
		return c
	}

	low, lowVals, err := c.operand(values[0])
	if err != nil {
		c.err = err
		return c
	}
	high, highVals, err := c.operand(values[1])
	if err != nil {
		c.err = err
		return c
	}
	return c.push(c.column+" "+string(op)+" "+low+" AND "+high, append(lowVals, highVals...))
}

// operand, sağ tarafı placeholder'a veya Reference ise kolon adına çevirir.
func (c *Condition) operand(value any) (string, []any, error) {
	if ref, ok := value.(Reference); ok {
		if err := validateIdentifier(string(ref), "column reference"); err != nil {
			return "", nil, err
		}
		return string(ref), nil, nil
	}
	return "?", []any{value}, nil
}

// push, derlenmiş fragment'ı bağlacıyla birlikte ekler ve bekleyen
// bağlaç/olumsuzlama durumunu tüketir.
func (c *Condition) push(fragment string, values []any) *Condition {
	c.seal()

	connector := ""
	if len(c.nodes) > 0 {
		connector = c.connector
		if connector == "" {
			connector = "AND"
		}
	}

	c.nodes = append(c.nodes, node{connector: connector, fragment: fragment})
	c.values = append(c.values, values...)
	c.connector = ""
	c.negate = false
	return c
}

// merge, başka bir Condition'ı tek ifade olarak ekler. Hedef boşsa alt
// ifadenin düğümleri olduğu gibi devralınır; sonradan yeni bir predicate
// eklenirse seal() bunları parantez içine alır.
func (c *Condition) merge(sub *Condition) *Condition {
	if c.err != nil {
		return c
	}
	if sub.err != nil {
		c.err = sub.err
		return c
	}
	if sub.Empty() {
		return c
	}

	if c.Empty() {
		c.nodes = append(c.nodes, sub.nodes...)
		c.values = append(c.values, sub.values...)
		c.adopted = len(sub.nodes) > 1
		c.connector = ""
		c.negate = false
		return c
	}

	fragment := sub.render()
	if len(sub.nodes) > 1 {
		fragment = "(" + fragment + ")"
	}
	return c.push(fragment, sub.values)
}

// seal, devralınmış çok parçalı bir grubu tek bir parantezli ifadeye indirger.
func (c *Condition) seal() {
	if !c.adopted {
		return
	}
	c.adopted = false
	if len(c.nodes) > 1 {
		c.nodes = []node{{fragment: "(" + c.render() + ")"}}
	}
}

// spread, tek bir slice argümanını elemanlarına açar ([]byte hariç).
func spread(values []any) []any {
	if len(values) != 1 || values[0] == nil {
		return values
	}
	if _, ok := values[0].([]byte); ok {
		return values
	}

	rv := reflect.ValueOf(values[0])
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return values
	}

	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
