package database

import (
	"log/slog"
)

// -----------------------------------------------------------------------------
// QUERY BUILDER - FABRİKA
// -----------------------------------------------------------------------------
// Builder; executor, dialect ve debug ayarlarını tutan değişmez bir fabrikadır.
// Her Table() çağrısı yeni ve bağımsız bir Fetcher üretir. Builder birden fazla
// goroutine arasında paylaşılabilir; Fetcher'lar paylaşılamaz.
//
// GÜVENLİK:
// - Tablo ve kolon adları whitelist regex'inden geçer
// - Operatörler whitelist kontrolünden geçer
// - Tüm kullanıcı değerleri prepared statement'lar ile bağlanır
// -----------------------------------------------------------------------------

// Builder, Fetcher fabrikasıdır.
type Builder struct {
	exec    Executor
	grammar *Grammar
	sink    DebugSink
	logger  *slog.Logger
	debug   bool
}

// Option, Builder yapılandırma fonksiyonudur.
type Option func(*Builder)

// WithDebugSink, debug modundaki ifadelerin gönderileceği sink'i belirler.
// Varsayılan, Builder logger'ına yazan SlogSink'tir.
func WithDebugSink(sink DebugSink) Option {
	return func(b *Builder) {
		if sink != nil {
			b.sink = sink
		}
	}
}

// WithLogger, Builder'ın kullanacağı logger'ı belirler.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithDebug, bu Builder'dan üretilen tüm Fetcher'ları debug modunda başlatır.
func WithDebug(enabled bool) Option {
	return func(b *Builder) {
		b.debug = enabled
	}
}

// New, veritabanı executor'ını ve dialect'i alarak yeni bir Builder üretir.
//
// Parametreler:
//   - exec: SQL komutlarını çalıştıracak executor (*sql.DB, *sql.Tx veya sarmalayıcı).
//     nil verilirse Builder sadece derleme (ToSQL) için kullanılabilir.
//   - dialect: Hedef SQL lehçesi
//   - opts: Opsiyonel ayarlar
//
// Örnek:
//
//	qb := database.New(db, database.MySQL, database.WithLogger(logger))
//	rows, err := qb.Table("users").Where(database.Op("age", ">", 18)).All(ctx)
func New(exec Executor, dialect Dialect, opts ...Option) *Builder {
	b := &Builder{
		exec:    rebind(exec, dialect),
		grammar: NewGrammar(dialect),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.sink == nil {
		b.sink = NewSlogSink(b.logger)
	}
	return b
}

// Dialect, Builder'ın dialect'ini döndürür.
func (b *Builder) Dialect() Dialect {
	return b.grammar.Dialect()
}

// Grammar, Builder'ın derleyicisini döndürür.
func (b *Builder) Grammar() *Grammar {
	return b.grammar
}

// Table, verilen tablo için yeni bir Fetcher başlatır.
//
// Geçersiz tablo adı Fetcher üzerinde kalıcı bir identity hatası olarak
// kaydedilir ve ilk terminal çağrıda döner.
//
// Örnek:
//
//	qb.Table("users")
func (b *Builder) Table(name string) *Fetcher {
	f := &Fetcher{
		builder: b,
		table:   name,
		state:   newClause(),
		debug:   b.debug,
	}
	f.WhereClause = WhereClause[*Fetcher]{owner: f, state: f.state}
	f.HavingClause = HavingClause[*Fetcher]{owner: f, state: f.state}
	f.JoinClause = JoinClause[*Fetcher]{owner: f, state: f.state}

	if err := validateTable(name); err != nil {
		f.state.fail(err)
	}
	return f
}
