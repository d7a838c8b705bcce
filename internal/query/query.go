// Package query parses and evaluates screener filter expressions of the form
//
//	<Field> <op> <number> [AND <Field> <op> <number> ...]
//
// where op is one of >=, <=, >, < or =. Field names are the record's wire
// names, matched case-insensitively. The service uses this package; the
// client never parses queries.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abelbrown/screener/internal/stock"
)

// Op is a comparison operator.
type Op string

const (
	GE Op = ">="
	LE Op = "<="
	GT Op = ">"
	LT Op = "<"
	EQ Op = "="
)

// two-character operators must be tried first
var ops = []Op{GE, LE, GT, LT, EQ}

var andSep = regexp.MustCompile(`(?i)\s+AND\s+`)

// Condition is one "<field> <op> <value>" clause.
type Condition struct {
	Field stock.Field
	Op    Op
	Value float64
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Field.Name(), c.Op, strconv.FormatFloat(c.Value, 'f', -1, 64))
}

// Match reports whether r satisfies c. An unknown value never matches.
func (c Condition) Match(r stock.Record) bool {
	v, ok := r.Value(c.Field)
	if !ok {
		return false
	}
	switch c.Op {
	case GE:
		return v >= c.Value
	case LE:
		return v <= c.Value
	case GT:
		return v > c.Value
	case LT:
		return v < c.Value
	case EQ:
		return v == c.Value
	}
	return false
}

// Query is a conjunction of conditions. The zero Query matches everything.
type Query struct {
	Conditions []Condition
}

// SyntaxError reports the clause that could not be parsed.
type SyntaxError struct {
	Part   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid syntax near %q", e.Part)
}

// Parse parses s. Blank input yields the empty Query.
func Parse(s string) (Query, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Query{}, nil
	}

	var q Query
	for _, part := range andSep.Split(s, -1) {
		c, err := parseCondition(strings.TrimSpace(part))
		if err != nil {
			return Query{}, err
		}
		q.Conditions = append(q.Conditions, c)
	}
	return q, nil
}

func parseCondition(part string) (Condition, error) {
	if part == "" {
		return Condition{}, &SyntaxError{Part: part, Reason: "empty condition"}
	}

	idx, op := findOp(part)
	if idx < 0 {
		return Condition{}, &SyntaxError{Part: part, Reason: "missing operator"}
	}

	name := strings.TrimSpace(part[:idx])
	raw := strings.TrimSpace(part[idx+len(op):])

	field, ok := stock.FieldByName(name)
	if !ok {
		return Condition{}, &SyntaxError{Part: part, Reason: fmt.Sprintf("unknown field %q", name)}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Condition{}, &SyntaxError{Part: part, Reason: fmt.Sprintf("bad number %q", raw)}
	}
	return Condition{Field: field, Op: op, Value: v}, nil
}

// findOp returns the position of the leftmost operator in part.
func findOp(part string) (int, Op) {
	for i := 0; i < len(part); i++ {
		for _, op := range ops {
			if strings.HasPrefix(part[i:], string(op)) {
				return i, op
			}
		}
	}
	return -1, ""
}

// Match reports whether r satisfies every condition.
func (q Query) Match(r stock.Record) bool {
	for _, c := range q.Conditions {
		if !c.Match(r) {
			return false
		}
	}
	return true
}

// Filter returns the matching records in their original order. The result
// is never nil.
func (q Query) Filter(records []stock.Record) []stock.Record {
	out := make([]stock.Record, 0, len(records))
	for _, r := range records {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (q Query) String() string {
	parts := make([]string, len(q.Conditions))
	for i, c := range q.Conditions {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}
