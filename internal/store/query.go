package store

import (
	"reflect"
	"strings"
	"time"
)

// Op is a filter operator
type Op string

const (
	OpEqual          Op = "eq"
	OpNotEqual       Op = "ne"
	OpLessThan       Op = "lt"
	OpGreaterOrEqual Op = "ge"
	OpLessOrEqual    Op = "le"
	OpIn             Op = "in"
	OpContains       Op = "contains"
)

// Filter restricts a query on one field. For OpIn, Value is a []any.
type Filter struct {
	Field string
	Op    Op
	Value any
}

func Equal(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

func NotEqual(field string, value any) Filter {
	return Filter{Field: field, Op: OpNotEqual, Value: value}
}

func LessThan(field string, value any) Filter {
	return Filter{Field: field, Op: OpLessThan, Value: value}
}

func GreaterOrEqual(field string, value any) Filter {
	return Filter{Field: field, Op: OpGreaterOrEqual, Value: value}
}

func LessOrEqual(field string, value any) Filter {
	return Filter{Field: field, Op: OpLessOrEqual, Value: value}
}

// Contains matches a case-insensitive substring
func Contains(field string, value string) Filter {
	return Filter{Field: field, Op: OpContains, Value: value}
}

func In(field string, values []string) Filter {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Filter{Field: field, Op: OpIn, Value: vs}
}

// Query describes a filtered, optionally ordered and limited list
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Match reports whether a document's fields satisfy every filter
func Match(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matchOne(fields[f.Field], f) {
			return false
		}
	}
	return true
}

func matchOne(v any, f Filter) bool {
	switch f.Op {
	case OpEqual:
		return Compare(v, f.Value) == 0
	case OpNotEqual:
		return Compare(v, f.Value) != 0
	case OpLessThan:
		return Compare(v, f.Value) < 0
	case OpGreaterOrEqual:
		return Compare(v, f.Value) >= 0
	case OpLessOrEqual:
		return Compare(v, f.Value) <= 0
	case OpIn:
		values, _ := f.Value.([]any)
		for _, candidate := range values {
			if Compare(v, candidate) == 0 {
				return true
			}
		}
		return false
	case OpContains:
		s, _ := v.(string)
		sub, _ := f.Value.(string)
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	return false
}

// Compare orders two field values of the same kind. Named string types are
// compared by their underlying string.
func Compare(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	case int:
		bv, _ := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return strings.Compare(toString(a), toString(b))
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String()
	}
	return ""
}

// Normalize turns named string types into plain strings so drivers see a uniform value
func Normalize(v any) any {
	if _, ok := v.(string); ok {
		return v
	}
	if rv := reflect.ValueOf(v); rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String()
	}
	return v
}
