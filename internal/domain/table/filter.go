package table

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Operator оператор сравнения фильтра в формате column=op.value
type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

var columnRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Filter struct {
	Column string
	Op     Operator
	Value  string
}

func (f Filter) String() string {
	return f.Column + "=" + string(f.Op) + "." + f.Value
}

// ParseFilter разбирает строку вида "receiver_id=eq.42"
func ParseFilter(s string) (Filter, error) {
	column, rest, ok := strings.Cut(s, "=")
	if !ok {
		return Filter{}, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}

	op, value, ok := strings.Cut(rest, ".")
	if !ok {
		return Filter{}, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}

	if !columnRe.MatchString(column) {
		return Filter{}, fmt.Errorf("%w: bad column %q", ErrInvalidFilter, column)
	}

	f := Filter{Column: column, Op: Operator(op), Value: value}
	switch f.Op {
	case OpEq, OpNeq:
	case OpGt, OpGte, OpLt, OpLte:
		if !f.IsTimeColumn() {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return Filter{}, fmt.Errorf("%w: %s expects a number", ErrInvalidFilter, op)
			}
		} else if _, err := time.Parse(time.RFC3339, value); err != nil {
			return Filter{}, fmt.Errorf("%w: %s expects RFC3339 time", ErrInvalidFilter, op)
		}
	default:
		return Filter{}, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, op)
	}

	return f, nil
}

// ParseFilters разбирает список фильтров, пустые строки пропускаются
func ParseFilters(raw []string) ([]Filter, error) {
	filters := make([]Filter, 0, len(raw))
	for _, s := range raw {
		if s == "" {
			continue
		}
		f, err := ParseFilter(s)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// IsTimeColumn сообщает, относится ли фильтр к служебным временным колонкам
func (f Filter) IsTimeColumn() bool {
	return f.Column == "created_at" || f.Column == "updated_at"
}

// Match проверяет строку так же, как это делает SQL-условие репозитория
func (f Filter) Match(r Row) bool {
	if f.IsTimeColumn() {
		ts := r.CreatedAt
		if f.Column == "updated_at" {
			ts = r.UpdatedAt
		}
		want, err := time.Parse(time.RFC3339, f.Value)
		if err != nil {
			return false
		}
		return compare(ts.Compare(want), f.Op)
	}

	got, ok := r.Field(f.Column)
	if !ok {
		return false
	}

	switch f.Op {
	case OpEq:
		return got == f.Value
	case OpNeq:
		return got != f.Value
	}

	a, err := strconv.ParseFloat(got, 64)
	if err != nil {
		return false
	}
	b, err := strconv.ParseFloat(f.Value, 64)
	if err != nil {
		return false
	}

	switch {
	case a < b:
		return compare(-1, f.Op)
	case a > b:
		return compare(1, f.Op)
	default:
		return compare(0, f.Op)
	}
}

// MatchAll истинно, если строка удовлетворяет всем фильтрам
func MatchAll(filters []Filter, r Row) bool {
	for _, f := range filters {
		if !f.Match(r) {
			return false
		}
	}
	return true
}

func compare(c int, op Operator) bool {
	switch op {
	case OpEq:
		return c == 0
	case OpNeq:
		return c != 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	}
	return false
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
