package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the storage type of a filterable field.
type Kind int

const (
	KindText Kind = iota
	KindTime
	KindNumber
	KindBool
	KindID
)

// Field maps a filter field name to a column.
type Field struct {
	Column string
	Kind   Kind
}

// Schema lists the fields an expression may reference. Time literals are
// read in Location, or UTC when it is nil.
type Schema struct {
	Fields   map[string]Field
	Location *time.Location
}

// TimeLayout is the layout used for time literals.
const TimeLayout = "2006-01-02 15:04:05"

var timeLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05.000Z",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (s Schema) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s Schema) field(name string) (Field, error) {
	f, ok := s.Fields[name]
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// ParseTime reads a time literal in the schema's location.
func (s Schema) ParseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, s.location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a time", ErrInvalidOperand, v)
}

// Validate checks that every comparison in n names a known field with an
// operator and literal that fit its kind.
func (s Schema) Validate(n Node) error {
	switch n := n.(type) {
	case nil:
		return nil
	case *Logical:
		for _, t := range n.Terms {
			if err := s.Validate(t); err != nil {
				return err
			}
		}
		return nil
	case *Comparison:
		_, err := s.operand(n)
		return err
	}
	return fmt.Errorf("%w: unsupported node %T", ErrInvalidOperand, n)
}

// operand validates c and converts its literal to the Go value stored for
// the field's kind. A null literal converts to nil.
func (s Schema) operand(c *Comparison) (any, error) {
	f, err := s.field(c.Field)
	if err != nil {
		return nil, err
	}

	if c.Value.Kind == ValueNull {
		if c.Op != OpEq && c.Op != OpNeq {
			return nil, fmt.Errorf("%w: null only supports = and !=", ErrInvalidOperand)
		}
		return nil, nil
	}

	switch c.Op {
	case OpLike, OpNotLike:
		if f.Kind != KindText || c.Value.Kind != ValueString {
			return nil, fmt.Errorf("%w: %s only applies to text", ErrInvalidOperand, c.Op)
		}
	case OpGt, OpGte, OpLt, OpLte:
		if f.Kind == KindBool || f.Kind == KindID {
			return nil, fmt.Errorf("%w: %s is not ordered", ErrInvalidOperand, c.Field)
		}
	}

	mismatch := fmt.Errorf("%w: %s does not fit field %q", ErrInvalidOperand, c.Value, c.Field)
	switch f.Kind {
	case KindText:
		if c.Value.Kind != ValueString {
			return nil, mismatch
		}
		return c.Value.Str, nil
	case KindTime:
		if c.Value.Kind != ValueString {
			return nil, mismatch
		}
		return s.ParseTime(c.Value.Str)
	case KindNumber:
		if c.Value.Kind != ValueNumber {
			return nil, mismatch
		}
		return c.Value.Num, nil
	case KindBool:
		if c.Value.Kind != ValueBool {
			return nil, mismatch
		}
		return c.Value.Bool, nil
	case KindID:
		if c.Value.Kind != ValueString {
			return nil, mismatch
		}
		id, err := uuid.Parse(c.Value.Str)
		if err != nil {
			return nil, mismatch
		}
		return id, nil
	}
	return nil, mismatch
}
