package filter

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record exposes field values for in-memory evaluation. Values are string,
// time.Time, int, int64, float64, bool, uuid.UUID or nil.
type Record interface {
	FilterValue(field string) any
}

// RecordFunc adapts a function to Record.
type RecordFunc func(field string) any

func (f RecordFunc) FilterValue(field string) any { return f(field) }

// Match evaluates n against r. A nil Node matches everything.
func Match(n Node, s Schema, r Record) (bool, error) {
	if err := s.Validate(n); err != nil {
		return false, err
	}
	return s.eval(n, r)
}

func (s Schema) eval(n Node, r Record) (bool, error) {
	switch n := n.(type) {
	case nil:
		return true, nil
	case *Logical:
		for _, t := range n.Terms {
			ok, err := s.eval(t, r)
			if err != nil {
				return false, err
			}
			if n.Or && ok {
				return true, nil
			}
			if !n.Or && !ok {
				return false, nil
			}
		}
		return !n.Or, nil
	case *Comparison:
		return s.compare(n, r)
	}
	return false, fmt.Errorf("%w: unsupported node %T", ErrInvalidOperand, n)
}

func (s Schema) compare(c *Comparison, r Record) (bool, error) {
	f, err := s.field(c.Field)
	if err != nil {
		return false, err
	}
	want, err := s.operand(c)
	if err != nil {
		return false, err
	}
	got := r.FilterValue(c.Field)

	if want == nil {
		empty := isEmpty(got)
		if c.Op == OpEq {
			return empty, nil
		}
		return !empty, nil
	}

	switch c.Op {
	case OpLike, OpNotLike:
		text, _ := got.(string)
		found := strings.Contains(strings.ToLower(text), strings.ToLower(want.(string)))
		return found == (c.Op == OpLike), nil
	}

	if isEmpty(got) && f.Kind != KindBool && f.Kind != KindNumber {
		// A missing value only satisfies !=.
		return c.Op == OpNeq, nil
	}

	order, err := compareValues(f.Kind, got, want)
	if err != nil {
		return false, err
	}

	switch c.Op {
	case OpEq:
		return order == 0, nil
	case OpNeq:
		return order != 0, nil
	case OpGt:
		return order > 0, nil
	case OpGte:
		return order >= 0, nil
	case OpLt:
		return order < 0, nil
	case OpLte:
		return order <= 0, nil
	}
	return false, fmt.Errorf("%w: operator %s", ErrInvalidOperand, c.Op)
}

// compareValues orders a record value against a converted literal.
func compareValues(kind Kind, got, want any) (int, error) {
	switch kind {
	case KindText:
		text, ok := got.(string)
		if !ok {
			return 0, fmt.Errorf("%w: expected text, got %T", ErrInvalidOperand, got)
		}
		return strings.Compare(text, want.(string)), nil
	case KindTime:
		t, ok := got.(time.Time)
		if !ok {
			return 0, fmt.Errorf("%w: expected time, got %T", ErrInvalidOperand, got)
		}
		return t.Compare(want.(time.Time)), nil
	case KindNumber:
		n, ok := toFloat(got)
		if !ok {
			return 0, fmt.Errorf("%w: expected number, got %T", ErrInvalidOperand, got)
		}
		return cmp.Compare(n, want.(float64)), nil
	case KindBool:
		b, _ := got.(bool)
		if b == want.(bool) {
			return 0, nil
		}
		return 1, nil
	case KindID:
		id, ok := toUUID(got)
		if !ok {
			return 0, fmt.Errorf("%w: expected id, got %T", ErrInvalidOperand, got)
		}
		if id == want.(uuid.UUID) {
			return 0, nil
		}
		return 1, nil
	}
	return 0, fmt.Errorf("%w: unknown kind %d", ErrInvalidOperand, kind)
}

func isEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case time.Time:
		return v.IsZero()
	case uuid.UUID:
		return v == uuid.Nil
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case nil:
		return 0, true
	}
	return 0, false
}

func toUUID(v any) (uuid.UUID, bool) {
	switch v := v.(type) {
	case uuid.UUID:
		return v, true
	case string:
		id, err := uuid.Parse(v)
		return id, err == nil
	}
	return uuid.Nil, false
}
