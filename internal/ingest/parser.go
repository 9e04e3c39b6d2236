package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/iancoleman/orderedmap"
	"github.com/meltforce/liftsheet/internal/models"
)

// Schema names the keys that carry the three nesting levels.
type Schema struct {
	SessionsKey  string // wrapper key for {"sessions": [...]} documents
	ExercisesKey string
	SetsKey      string
	IDKey        string // used to name sessions and exercises in errors
}

// Document is a parsed workout export.
type Document struct {
	Shape    RootShape
	Sessions []models.Session
}

// Load reads and parses the workout export at path.
func Load(path string, schema Schema) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Stage: "read", Path: path, Err: err}
	}
	return Parse(path, data, schema)
}

// Parse decodes a workout export. name is only used in error messages.
func Parse(name string, data []byte, schema Schema) (*Document, error) {
	if !json.Valid(data) {
		return nil, syntaxError(name, data)
	}

	doc := &Document{Shape: DetectRootShape(data, schema.SessionsKey)}

	switch doc.Shape {
	case ShapeSessionList:
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, &ParseError{Path: name, Err: err}
		}
		for i, raw := range items {
			obj, err := decodeObject(raw)
			if err != nil {
				return nil, &ParseError{Path: name, Err: err}
			}
			var item any
			if obj != nil {
				item = obj
			} else {
				_ = json.Unmarshal(raw, &item)
			}
			s, err := buildSession(i, "", false, item, schema)
			if err != nil {
				return nil, err
			}
			doc.Sessions = append(doc.Sessions, s)
		}

	case ShapeWrapped:
		root := orderedmap.New()
		if err := json.Unmarshal(data, root); err != nil {
			return nil, &ParseError{Path: name, Err: err}
		}
		v, _ := root.Get(schema.SessionsKey)
		list, reason := asCollection(v, true)
		if reason != "" {
			return nil, &SchemaError{Level: "root", Key: schema.SessionsKey, Reason: reason}
		}
		for i, item := range list {
			s, err := buildSession(i, "", false, item, schema)
			if err != nil {
				return nil, err
			}
			doc.Sessions = append(doc.Sessions, s)
		}

	case ShapeDateKeyed:
		root := orderedmap.New()
		if err := json.Unmarshal(data, root); err != nil {
			return nil, &ParseError{Path: name, Err: err}
		}
		for _, key := range root.Keys() {
			v, _ := root.Get(key)
			list, reason := asCollection(v, true)
			if reason != "" {
				return nil, &SchemaError{Level: "root", Key: key, Reason: reason}
			}
			for i, item := range list {
				s, err := buildSession(i, key, true, item, schema)
				if err != nil {
					return nil, err
				}
				doc.Sessions = append(doc.Sessions, s)
			}
		}

	default:
		return nil, unknownRootError(data)
	}

	return doc, nil
}

func buildSession(idx int, rootKey string, hasKey bool, v any, schema Schema) (models.Session, error) {
	s := models.Session{Index: idx, RootKey: rootKey, HasRootKey: hasKey}
	obj, ok := asObject(v)
	if !ok {
		return s, &SchemaError{Level: "session", Locator: s.Locator(""), Reason: "is " + jsonType(v) + ", not an object"}
	}
	s.Fields = without(obj, schema.ExercisesKey)

	raw, present := obj.Get(schema.ExercisesKey)
	exercises, reason := asCollection(raw, present)
	if reason != "" {
		return s, &SchemaError{Level: "session", Locator: s.Locator(schema.IDKey), Key: schema.ExercisesKey, Reason: reason}
	}

	for i, item := range exercises {
		ex := models.Exercise{Index: i}
		exObj, ok := asObject(item)
		if !ok {
			return s, &SchemaError{Level: "exercise", Locator: ex.Locator(&s, ""), Reason: "is " + jsonType(item) + ", not an object"}
		}
		ex.Fields = without(exObj, schema.SetsKey)

		raw, present := exObj.Get(schema.SetsKey)
		sets, reason := asCollection(raw, present)
		if reason != "" {
			return s, &SchemaError{Level: "exercise", Locator: ex.Locator(&s, schema.IDKey), Key: schema.SetsKey, Reason: reason}
		}

		for j, setItem := range sets {
			setObj, ok := asObject(setItem)
			if !ok {
				return s, &SchemaError{
					Level:   "set",
					Locator: fmt.Sprintf("%s, set #%d", ex.Locator(&s, schema.IDKey), j+1),
					Reason:  "is " + jsonType(setItem) + ", not an object",
				}
			}
			ex.Sets = append(ex.Sets, models.Set{Index: j, Fields: without(setObj, "")})
		}
		s.Exercises = append(s.Exercises, ex)
	}
	return s, nil
}

// asCollection validates a nesting point. A present null counts as empty.
func asCollection(v any, present bool) ([]any, string) {
	if !present {
		return nil, "is missing"
	}
	switch x := v.(type) {
	case nil:
		return nil, ""
	case []any:
		return x, ""
	default:
		return nil, "is " + jsonType(v) + ", not an array"
	}
}

func asObject(v any) (*orderedmap.OrderedMap, bool) {
	switch o := v.(type) {
	case orderedmap.OrderedMap:
		return &o, true
	case *orderedmap.OrderedMap:
		return o, o != nil
	default:
		return nil, false
	}
}

// without copies obj minus one key so structural collections never leak into rows.
func without(obj *orderedmap.OrderedMap, skip string) *orderedmap.OrderedMap {
	out := orderedmap.New()
	for _, k := range obj.Keys() {
		if skip != "" && k == skip {
			continue
		}
		v, _ := obj.Get(k)
		out.Set(k, v)
	}
	return out
}

// decodeObject decodes one list element, returning nil for non-objects.
func decodeObject(raw json.RawMessage) (*orderedmap.OrderedMap, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil
	}
	obj := orderedmap.New()
	if err := json.Unmarshal(trimmed, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func unknownRootError(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		root := orderedmap.New()
		if err := json.Unmarshal(trimmed, root); err == nil {
			for _, key := range root.Keys() {
				v, _ := root.Get(key)
				if _, ok := v.([]any); !ok {
					return &SchemaError{Level: "root", Key: key, Reason: "is " + jsonType(v) + ", not an array of sessions"}
				}
			}
		}
	}
	var v any
	_ = json.Unmarshal(trimmed, &v)
	return &SchemaError{Level: "root", Reason: "expected an array of sessions or an object of session arrays, got " + jsonType(v)}
}

// syntaxError converts a JSON syntax failure into a ParseError with a line and column.
func syntaxError(name string, data []byte) error {
	var v any
	err := json.Unmarshal(data, &v)
	if err == nil {
		err = errors.New("invalid JSON")
	}
	pe := &ParseError{Path: name, Err: err}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		pe.Line, pe.Column = position(data, se.Offset)
	}
	return pe
}

func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
