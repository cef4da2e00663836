package database

import "strings"

// operator, derlenmiş SQL'de yer alan operatör metnidir.
type operator string

const (
	opEqual          operator = "="
	opNotEqual       operator = "!="
	opNotEqualLegacy operator = "<>"
	opLess           operator = "<"
	opLessOrEqual    operator = "<="
	opGreater        operator = ">"
	opGreaterOrEqual operator = ">="
	opLike           operator = "LIKE"
	opNotLike        operator = "NOT LIKE"
	opIn             operator = "IN"
	opNotIn          operator = "NOT IN"
	opBetween        operator = "BETWEEN"
	opNotBetween     operator = "NOT BETWEEN"
	opIsNull         operator = "IS NULL"
	opIsNotNull      operator = "IS NOT NULL"
)

// allowedOperators, Op() ve Compare() ile kabul edilen operatör whitelist'idir.
// Anahtarlar normalize edilmiş (küçük harf, tek boşluk) kullanıcı girdisidir.
var allowedOperators = map[string]operator{
	"=":           opEqual,
	"!=":          opNotEqual,
	"<>":          opNotEqualLegacy,
	"<":           opLess,
	"<=":          opLessOrEqual,
	">":           opGreater,
	">=":          opGreaterOrEqual,
	"like":        opLike,
	"not like":    opNotLike,
	"in":          opIn,
	"not in":      opNotIn,
	"between":     opBetween,
	"not between": opNotBetween,
}

// negations, Not() ile bekleyen olumsuzlamanın bir sonraki operatöre etkisidir.
var negations = map[operator]operator{
	opEqual:          opNotEqual,
	opNotEqual:       opEqual,
	opNotEqualLegacy: opEqual,
	opLess:           opGreaterOrEqual,
	opGreaterOrEqual: opLess,
	opGreater:        opLessOrEqual,
	opLessOrEqual:    opGreater,
	opLike:           opNotLike,
	opNotLike:        opLike,
	opIn:             opNotIn,
	opNotIn:          opIn,
	opBetween:        opNotBetween,
	opNotBetween:     opBetween,
	opIsNull:         opIsNotNull,
	opIsNotNull:      opIsNull,
}

// parseOperator, kullanıcıdan gelen operatör metnini whitelist'e göre çözer.
func parseOperator(raw string) (operator, error) {
	key := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	op, ok := allowedOperators[key]
	if !ok {
		return "", operatorError(raw)
	}
	return op, nil
}

func (o operator) negated() operator {
	if n, ok := negations[o]; ok {
		return n
	}
	return o
}

func (o operator) isIn() bool {
	return o == opIn || o == opNotIn
}

func (o operator) isBetween() bool {
	return o == opBetween || o == opNotBetween
}
