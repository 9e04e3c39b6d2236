package flatten

import (
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/meltforce/liftsheet/internal/models"
)

// Level names the columns produced from one nesting level.
type Level struct {
	Prefix string
	Rename map[string]string // field path -> exact column name
	Lists  []ListFormat
}

// ListFormat renders an array of objects as "label (detail)" entries,
// e.g. [{"muscle":"Chest","percent":60}] -> "Chest (60)".
//
// When Field is not a non-empty array of objects, the column is filled from
// Fallback instead, joined as a plain list.
type ListFormat struct {
	Field    string
	Column   string // defaults to the level's name for Field
	Label    string
	Detail   string
	Fallback string
}

func (l Level) column(path string) string {
	if name, ok := l.Rename[path]; ok {
		return name
	}
	return l.Prefix + path
}

// hasList reports whether a field is consumed by a list rule.
func (l Level) hasList(field string) bool {
	for _, lf := range l.Lists {
		if lf.Field == field || (lf.Fallback != "" && lf.Fallback == field) {
			return true
		}
	}
	return false
}

// render returns the column value, or false when neither Field nor Fallback
// is present.
func (lf ListFormat) render(fields *orderedmap.OrderedMap, sep string) (string, bool) {
	raw, present := fields.Get(lf.Field)
	if items, ok := raw.([]any); ok && len(items) > 0 {
		if _, ok := asObject(items[0]); ok {
			return lf.labels(items, sep), true
		}
	}

	if lf.Fallback != "" {
		plain, ok := fields.Get(lf.Fallback)
		if !ok {
			return "", present
		}
		return joinPlain(plain, sep), true
	}
	if !present {
		return "", false
	}
	return joinPlain(raw, sep), true
}

func (lf ListFormat) labels(items []any, sep string) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		label := field(obj, lf.Label)
		if label == "" {
			continue
		}
		if detail := field(obj, lf.Detail); detail != "" {
			label += " (" + detail + ")"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, sep)
}

func asObject(v any) (*orderedmap.OrderedMap, bool) {
	switch x := v.(type) {
	case orderedmap.OrderedMap:
		return &x, true
	case *orderedmap.OrderedMap:
		return x, x != nil
	}
	return nil, false
}

// joinPlain renders a scalar or an array of scalars. Anything else is empty.
func joinPlain(v any, sep string) string {
	if items, ok := v.([]any); ok {
		s, _ := joinScalars(items, sep)
		return s
	}
	if scalar, ok := models.ScalarOf(v); ok {
		return scalar.String()
	}
	return ""
}

func field(obj *orderedmap.OrderedMap, key string) string {
	if key == "" {
		return ""
	}
	raw, ok := obj.Get(key)
	if !ok {
		return ""
	}
	v, ok := models.ScalarOf(raw)
	if !ok {
		return ""
	}
	return v.String()
}

// joinScalars joins an array of scalars, skipping nulls. It reports false
// when the array holds objects or arrays.
func joinScalars(items []any, sep string) (string, bool) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		v, ok := models.ScalarOf(item)
		if !ok {
			return "", false
		}
		if v.IsNull() {
			continue
		}
		parts = append(parts, v.String())
	}
	return strings.Join(parts, sep), true
}
