package models

import (
	"fmt"

	"github.com/iancoleman/orderedmap"
)

// Session represents one recorded workout occurrence.
// Fields holds every session key except the exercises collection, in document order.
type Session struct {
	Index      int // position within its root collection, 0-based
	RootKey    string
	HasRootKey bool
	Fields     *orderedmap.OrderedMap
	Exercises  []Exercise
}

// Exercise represents one movement performed within a session.
type Exercise struct {
	Index  int
	Fields *orderedmap.OrderedMap
	Sets   []Set
}

// Set represents a single performed set.
type Set struct {
	Index  int
	Fields *orderedmap.OrderedMap
}

// Locator describes the session for error messages: its id when it has a
// scalar one, otherwise its root key and position.
func (s *Session) Locator(idKey string) string {
	if id, ok := scalarID(s.Fields, idKey); ok {
		return fmt.Sprintf("session %q", id)
	}
	if s.HasRootKey {
		return fmt.Sprintf("session %q #%d", s.RootKey, s.Index+1)
	}
	return fmt.Sprintf("session #%d", s.Index+1)
}

// Locator describes the exercise within its session.
func (e *Exercise) Locator(session *Session, idKey string) string {
	if id, ok := scalarID(e.Fields, idKey); ok {
		return fmt.Sprintf("%s, exercise %q", session.Locator(idKey), id)
	}
	return fmt.Sprintf("%s, exercise #%d", session.Locator(idKey), e.Index+1)
}

// SetCount returns the number of sets across all exercises.
func (s *Session) SetCount() int {
	n := 0
	for _, ex := range s.Exercises {
		n += len(ex.Sets)
	}
	return n
}

func scalarID(fields *orderedmap.OrderedMap, idKey string) (string, bool) {
	if fields == nil || idKey == "" {
		return "", false
	}
	raw, ok := fields.Get(idKey)
	if !ok {
		return "", false
	}
	v, ok := ScalarOf(raw)
	if !ok || v.IsNull() {
		return "", false
	}
	return v.String(), true
}
