package ingest

import (
	"bytes"
	"encoding/json"
)

// RootShape describes how sessions are laid out at the top of the document.
type RootShape int

const (
	ShapeUnknown     RootShape = iota
	ShapeSessionList           // [{session}, ...]
	ShapeWrapped               // {"sessions": [{session}, ...]}
	ShapeDateKeyed             // {"2024-05-01": [{session}, ...], ...} (Boostcamp)
)

func (s RootShape) String() string {
	switch s {
	case ShapeSessionList:
		return "session-list"
	case ShapeWrapped:
		return "wrapped"
	case ShapeDateKeyed:
		return "date-keyed"
	default:
		return "unknown"
	}
}

// DetectRootShape examines a well-formed JSON document and reports its root shape.
// An object qualifies as date-keyed only when every value is an array.
func DetectRootShape(data []byte, sessionsKey string) RootShape {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ShapeUnknown
	}
	switch trimmed[0] {
	case '[':
		return ShapeSessionList
	case '{':
	default:
		return ShapeUnknown
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return ShapeUnknown
	}
	if sessionsKey != "" {
		if _, ok := probe[sessionsKey]; ok {
			return ShapeWrapped
		}
	}
	for _, raw := range probe {
		if !isArray(raw) {
			return ShapeUnknown
		}
	}
	return ShapeDateKeyed
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// jsonType names the JSON type of a decoded value for error messages.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	default:
		return "an object"
	}
}
