package database

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// -----------------------------------------------------------------------------
// Reflection-Based SQL Scanner
// -----------------------------------------------------------------------------
// Fetcher.Scan ve Fetcher.ScanFirst, satırları `db` tag'leri üzerinden
// struct'lara tarar. Her struct tipinin kolon → alan index eşlemesi bir kez
// hesaplanır ve önbelleğe alınır.
//
// Tag kuralları:
//   - `db:"email"`  → email kolonu
//   - `db:"-"`      → alan atlanır
//   - tag yoksa     → alan adının küçük harfli hali
//   - gömülü (embedded) struct'lar özyineli olarak açılır
//
// Struct'ta karşılığı olmayan kolonlar sessizce atlanır.
// -----------------------------------------------------------------------------

// fieldIndex, kolon adından reflect.Value.FieldByIndex yoluna eşlemedir.
type fieldIndex map[string][]int

// scanner, tip başına fieldIndex önbelleğidir. Tip sayısı program boyunca
// sınırlı olduğu için önbellek temizlenmez.
type scanner struct {
	mu    sync.RWMutex
	cache map[reflect.Type]fieldIndex
}

var defaultScanner = &scanner{cache: make(map[reflect.Type]fieldIndex)}

// fields, struct tipinin eşlemesini önbellekten döndürür veya hesaplar.
func (s *scanner) fields(t reflect.Type) fieldIndex {
	s.mu.RLock()
	idx, ok := s.cache[t]
	s.mu.RUnlock()
	if ok {
		return idx
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.cache[t]; ok {
		return idx
	}
	idx = make(fieldIndex)
	collectFields(t, nil, idx)
	s.cache[t] = idx
	return idx
}

func collectFields(t reflect.Type, parent []int, idx fieldIndex) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := append(append([]int(nil), parent...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, path, idx)
			continue
		}
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			tag = name
		} else {
			tag = strings.ToLower(field.Name)
		}

		// Üst seviyedeki alan gömülü alanı gölgeler.
		if _, exists := idx[tag]; !exists || len(path) <= len(idx[tag]) {
			idx[tag] = path
		}
	}
}

// scanStruct, *sql.Rows'ın mevcut satırını bir struct'a tarar.
func scanStruct(rows *sql.Rows, dest reflect.Value) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	idx := defaultScanner.fields(dest.Type())

	targets := make([]any, len(cols))
	for i, col := range cols {
		path, ok := idx[col]
		if !ok {
			targets[i] = new(any)
			continue
		}
		field := dest.FieldByIndex(path)
		if !field.CanSet() {
			return fmt.Errorf("scanner: field for column %q cannot be set", col)
		}
		targets[i] = field.Addr().Interface()
	}

	return rows.Scan(targets...)
}

// ScanStruct, tek bir satırı struct pointer'a tarar. rows.Next() çağrılmış
// olmalıdır.
func ScanStruct(rows *sql.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("scanner: dest must be a non-nil struct pointer, got %T", dest)
	}
	return scanStruct(rows, v.Elem())
}

// ScanSlice, tüm sonuç kümesini struct slice'ına (veya struct pointer
// slice'ına) tarar.
//
// Örnek:
//
//	var users []User
//	err := database.ScanSlice(rows, &users)
func ScanSlice(rows *sql.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("scanner: dest must be a non-nil slice pointer, got %T", dest)
	}

	slice := v.Elem()
	elem := slice.Type().Elem()
	isPtr := elem.Kind() == reflect.Pointer
	structType := elem
	if isPtr {
		structType = elem.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return fmt.Errorf("scanner: slice element must be a struct, got %s", elem)
	}

	for rows.Next() {
		item := reflect.New(structType)
		if err := scanStruct(rows, item.Elem()); err != nil {
			return err
		}
		if isPtr {
			slice.Set(reflect.Append(slice, item))
		} else {
			slice.Set(reflect.Append(slice, item.Elem()))
		}
	}

	return rows.Err()
}
