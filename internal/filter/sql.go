package filter

import (
	"fmt"
	"strings"
)

// ToSQL compiles n into a WHERE fragment with "?" placeholders. Text
// matching with ~ compiles to ILIKE with LIKE wildcards escaped. A nil Node
// compiles to an empty fragment.
func ToSQL(n Node, s Schema) (string, []any, error) {
	if n == nil {
		return "", nil, nil
	}
	if err := s.Validate(n); err != nil {
		return "", nil, err
	}
	var args []any
	sql, err := s.toSQL(n, &args)
	if err != nil {
		return "", nil, err
	}
	return sql, args, nil
}

func (s Schema) toSQL(n Node, args *[]any) (string, error) {
	switch n := n.(type) {
	case *Logical:
		sep := " AND "
		if n.Or {
			sep = " OR "
		}
		parts := make([]string, 0, len(n.Terms))
		for _, t := range n.Terms {
			p, err := s.toSQL(t, args)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		return "(" + strings.Join(parts, sep) + ")", nil
	case *Comparison:
		return s.comparisonSQL(n, args)
	}
	return "", fmt.Errorf("%w: unsupported node %T", ErrInvalidOperand, n)
}

func (s Schema) comparisonSQL(c *Comparison, args *[]any) (string, error) {
	f, err := s.field(c.Field)
	if err != nil {
		return "", err
	}
	val, err := s.operand(c)
	if err != nil {
		return "", err
	}
	col := f.Column

	if val == nil {
		if f.Kind == KindText {
			if c.Op == OpEq {
				return fmt.Sprintf("(%s IS NULL OR %s = '')", col, col), nil
			}
			return fmt.Sprintf("(%s IS NOT NULL AND %s <> '')", col, col), nil
		}
		if c.Op == OpEq {
			return col + " IS NULL", nil
		}
		return col + " IS NOT NULL", nil
	}

	switch c.Op {
	case OpLike:
		*args = append(*args, "%"+escapeLike(val.(string))+"%")
		return col + " ILIKE ?", nil
	case OpNotLike:
		*args = append(*args, "%"+escapeLike(val.(string))+"%")
		return fmt.Sprintf("(%s IS NULL OR %s NOT ILIKE ?)", col, col), nil
	case OpNeq:
		*args = append(*args, val)
		return fmt.Sprintf("(%s IS NULL OR %s <> ?)", col, col), nil
	}

	*args = append(*args, val)
	return fmt.Sprintf("%s %s ?", col, c.Op), nil
}

// escapeLike escapes the LIKE wildcards and the default escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
