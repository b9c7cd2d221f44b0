package filter

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// SortField is one key of a sort expression such as "-start_time,title".
type SortField struct {
	Field  string
	Column string
	Desc   bool
}

// SQL renders the key as an ORDER BY term.
func (f SortField) SQL() string {
	if f.Desc {
		return f.Column + " DESC"
	}
	return f.Column + " ASC"
}

// ParseSort parses a comma separated list of fields, each optionally
// prefixed with "-" for descending or "+" for ascending.
func ParseSort(expr string, s Schema) ([]SortField, error) {
	var out []SortField
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := false
		switch part[0] {
		case '-':
			desc = true
			part = part[1:]
		case '+':
			part = part[1:]
		}
		f, err := s.field(part)
		if err != nil {
			return nil, err
		}
		out = append(out, SortField{Field: part, Column: f.Column, Desc: desc})
	}
	return out, nil
}

// CompareRecords orders a and b by keys. Missing values sort first.
func CompareRecords(a, b Record, keys []SortField, s Schema) int {
	for _, k := range keys {
		f, ok := s.Fields[k.Field]
		if !ok {
			continue
		}
		c := compareAny(f.Kind, a.FilterValue(k.Field), b.FilterValue(k.Field))
		if k.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareAny(kind Kind, a, b any) int {
	switch kind {
	case KindText:
		x, _ := a.(string)
		y, _ := b.(string)
		return strings.Compare(x, y)
	case KindTime:
		x, _ := a.(time.Time)
		y, _ := b.(time.Time)
		return x.Compare(y)
	case KindNumber:
		x, _ := toFloat(a)
		y, _ := toFloat(b)
		return cmp.Compare(x, y)
	case KindBool:
		x, _ := a.(bool)
		y, _ := b.(bool)
		return cmp.Compare(boolInt(x), boolInt(y))
	case KindID:
		x, _ := toUUID(a)
		y, _ := toUUID(b)
		return strings.Compare(x.String(), y.String())
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
