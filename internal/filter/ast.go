// Package filter parses the record filter language used by the event
// calendar and evaluates it either in memory or as a SQL WHERE clause.
//
// Grammar:
//
//	expr       = and { "||" and }
//	and        = unary { "&&" unary }
//	unary      = "(" expr ")" | comparison
//	comparison = field op literal
//	op         = "=" | "!=" | "~" | "!~" | ">" | ">=" | "<" | "<="
//	literal    = string | number | "true" | "false" | "null"
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrSyntax is matched by every parse error.
	ErrSyntax = errors.New("filter syntax error")
	// ErrUnknownField is returned when an expression names a field the schema lacks.
	ErrUnknownField = errors.New("unknown filter field")
	// ErrInvalidOperand is returned when an operator or literal does not fit the field kind.
	ErrInvalidOperand = errors.New("invalid filter operand")
)

// SyntaxError reports where parsing stopped.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("filter syntax error at %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Op is a comparison operator.
type Op string

const (
	OpEq        Op = "="
	OpNeq       Op = "!="
	OpLike      Op = "~"
	OpNotLike   Op = "!~"
	OpGt        Op = ">"
	OpGte       Op = ">="
	OpLt        Op = "<"
	OpLte       Op = "<="
	opUndefined Op = ""
)

func parseOp(s string) Op {
	switch Op(s) {
	case OpEq, OpNeq, OpLike, OpNotLike, OpGt, OpGte, OpLt, OpLte:
		return Op(s)
	}
	return opUndefined
}

// ValueKind identifies the literal type on the right of a comparison.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueNull
)

// Value is a literal.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

// String renders the literal back into filter syntax.
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueNull:
		return "null"
	}
	return Quote(v.Str)
}

// Node is a parsed expression.
type Node interface {
	String() string
	node()
}

// Comparison is "field op literal".
type Comparison struct {
	Field string
	Op    Op
	Value Value
}

func (*Comparison) node() {}

func (c *Comparison) String() string {
	return c.Field + " " + string(c.Op) + " " + c.Value.String()
}

// Logical joins two or more terms with && or ||.
type Logical struct {
	Or    bool
	Terms []Node
}

func (*Logical) node() {}

func (l *Logical) String() string {
	sep := " && "
	if l.Or {
		sep = " || "
	}
	parts := make([]string, len(l.Terms))
	for i, t := range l.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Escape escapes backslashes and single quotes so s can sit inside a
// single-quoted literal.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// Quote returns s as a single-quoted literal.
func Quote(s string) string {
	return "'" + Escape(s) + "'"
}
