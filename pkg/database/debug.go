package database

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// DEBUG SINK
// -----------------------------------------------------------------------------
// Debug modu açık bir Fetcher, her terminal çağrıda derlenen ifadeyi yürütme
// sınırına göndermeden hemen önce bir DebugSink'e bildirir. Bildirim derlenmiş
// çıktıyı değiştirmez ve her ifade için tam olarak bir kez yapılır.
//
// Sink'ler hata döndürmez; kendi hatalarını loglayıp yutmalıdır.
// -----------------------------------------------------------------------------

// Statement, debug sink'e bildirilen derlenmiş ifadedir.
type Statement struct {
	ID      uuid.UUID `json:"id"`
	SQL     string    `json:"sql"`
	Args    []any     `json:"args"`
	Dialect string    `json:"dialect"`
}

// DebugSink, derlenmiş ifadeleri kabul eden loglama yeteneğidir.
type DebugSink interface {
	Log(ctx context.Context, stmt Statement)
}

// SlogSink, ifadeleri bir slog.Logger'a debug seviyesinde yazar.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink, logger nil ise slog.Default() kullanan bir sink oluşturur.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Log, ifadeyi "query" mesajıyla loglar.
func (s *SlogSink) Log(ctx context.Context, stmt Statement) {
	s.logger.DebugContext(ctx, "query",
		slog.String("id", stmt.ID.String()),
		slog.String("dialect", stmt.Dialect),
		slog.String("sql", stmt.SQL),
		slog.Any("args", stmt.Args),
	)
}

// SinkFunc, bir fonksiyonu DebugSink olarak kullanmaya yarar.
//
//	database.WithDebugSink(database.SinkFunc(func(ctx context.Context, s database.Statement) {
//	    fmt.Println(s.SQL)
//	}))
type SinkFunc func(ctx context.Context, stmt Statement)

// Log, fonksiyonu çağırır.
func (f SinkFunc) Log(ctx context.Context, stmt Statement) {
	f(ctx, stmt)
}
