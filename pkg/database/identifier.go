package database

import (
	"regexp"
	"strings"
)

// validIdentifierRegex, güvenli SQL identifier pattern'ini tanımlar.
// Sadece alphanumeric, underscore ve nokta (table.column için) kabul eder.
var validIdentifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_\.]+$`)

// functionExprRegex, SELECT listesinde izin verilen tek seviyeli fonksiyon
// çağrılarını tanımlar: COUNT(*), SUM(price), COUNT(DISTINCT email).
// İç içe parantez, tırnak, yorum ve noktalı virgül eşleşmez.
var functionExprRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*\([a-zA-Z0-9_\.\*, ]*\)$`)

// validateIdentifier, SQL identifier'ı (column/table adı) doğrular.
//
// GÜVENLİK KRİTİK:
// Identifier'lar placeholder ile bağlanamadığı için SQL metnine olduğu gibi
// yazılır. Bu fonksiyon sadece güvenli karakterlere izin vererek injection'ı önler.
//
// Parametreler:
//   - identifier: Doğrulanacak identifier
//   - context: Hata mesajı için bağlam (örn: "column", "table")
//
// Örnekler:
//   - ✅ "users", "user_id", "users.id", "users.*"
//   - ❌ "id; DROP TABLE users--"
//   - ❌ "a.b.c"
func validateIdentifier(identifier string, context string) error {
	if identifier == "*" {
		return nil
	}

	if strings.TrimSpace(identifier) == "" {
		return identityError("invalid %s name: empty identifier", context)
	}

	// table.* formatı
	if prefix, ok := strings.CutSuffix(identifier, ".*"); ok {
		if strings.Contains(prefix, ".") {
			return identityError("invalid %s name: '%s' (too many dots)", context, identifier)
		}
		return validateIdentifier(prefix, context)
	}

	if !validIdentifierRegex.MatchString(identifier) {
		return identityError("invalid %s name: '%s' (contains unsafe characters)", context, identifier)
	}

	if strings.Contains(identifier, ".") {
		parts := strings.Split(identifier, ".")
		if len(parts) > 2 {
			return identityError("invalid %s name: '%s' (too many dots)", context, identifier)
		}
		for _, part := range parts {
			if part == "" {
				return identityError("invalid %s name: '%s' (empty part)", context, identifier)
			}
		}
	}

	return nil
}

// validateExpression, SELECT listesi ve Col() için daha esnek bir kontrol yapar.
//
// Düz identifier'lar validateIdentifier'a gider. "COUNT(*) AS total",
// "DATE(created_at)" gibi fonksiyon ifadeleri geliştirici tarafından yazılır,
// kullanıcı input'u değildir; yine de yorum ve tırnak içermeleri engellenir.
func validateExpression(expr string, context string) error {
	if strings.TrimSpace(expr) == "" {
		return identityError("invalid %s name: empty identifier", context)
	}

	// AS alias kontrolü
	lower := strings.ToLower(expr)
	if idx := strings.LastIndex(lower, " as "); idx > 0 {
		alias := strings.TrimSpace(expr[idx+4:])
		if err := validateIdentifier(alias, context+" alias"); err != nil {
			return err
		}
		if strings.Contains(alias, ".") {
			return identityError("invalid %s alias: '%s'", context, alias)
		}
		return validateExpression(strings.TrimSpace(expr[:idx]), context)
	}

	if strings.Contains(expr, "(") {
		if !functionExprRegex.MatchString(expr) {
			return identityError("invalid %s expression: '%s' (suspicious content)", context, expr)
		}
		return nil
	}

	return validateIdentifier(expr, context)
}
