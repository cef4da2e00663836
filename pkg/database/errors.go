package database

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// HATA TAKSONOMİSİ
// -----------------------------------------------------------------------------
// Builder katmanındaki tüm doğrulama hataları hatanın tespit edildiği çağrıda
// üretilir ve dört türden birine bağlanır. Çağıran taraf errors.Is ile türü
// kontrol edebilir; Error() ise yalnızca açıklayıcı mesajı döndürür.
//
// Execution (bağlantı/sorgu) hataları bu taksonomiye dahil değildir, terminal
// çağrının sonucundan değiştirilmeden geçer.
// -----------------------------------------------------------------------------

var (
	// ErrSyntax, where/having/join çağrılarında yanlış argüman şekli veya
	// kolon seçilmeden operatör çağrılması gibi kullanım hatalarıdır.
	ErrSyntax = errors.New("database: invalid clause syntax")

	// ErrOperator, desteklenmeyen karşılaştırma operatörüdür.
	ErrOperator = errors.New("database: unsupported operator")

	// ErrArity, between/not between için iki değer dışında bir sayıda değer verilmesidir.
	ErrArity = errors.New("database: invalid operand count")

	// ErrIdentity, tanınmayan join tipi, geçersiz tablo/kolon adı veya
	// tanınmayan dialect gibi kimlik hatalarıdır.
	ErrIdentity = errors.New("database: unrecognized identity")
)

// QueryError, taksonomideki bir türü açıklayıcı bir mesajla sarmalar.
type QueryError struct {
	Kind    error
	Message string
}

// Error, açıklayıcı mesajı döndürür.
func (e *QueryError) Error() string {
	return e.Message
}

// Unwrap, errors.Is(err, ErrArity) gibi kontroller için türü döndürür.
func (e *QueryError) Unwrap() error {
	return e.Kind
}

func syntaxError(format string, args ...any) error {
	return &QueryError{Kind: ErrSyntax, Message: fmt.Sprintf(format, args...)}
}

func operatorError(operator string) error {
	return &QueryError{Kind: ErrOperator, Message: fmt.Sprintf("invalid SQL operator: %q (not in whitelist)", operator)}
}

func arityError(operator string) error {
	return &QueryError{Kind: ErrArity, Message: fmt.Sprintf("'%s' requires an array with two values.", operator)}
}

func identityError(format string, args ...any) error {
	return &QueryError{Kind: ErrIdentity, Message: fmt.Sprintf(format, args...)}
}
