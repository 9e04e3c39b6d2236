package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testSchema = Schema{SessionsKey: "sessions", ExercisesKey: "exercises", SetsKey: "sets", IDKey: "id"}

const sessionList = `[
  {"id": "s1", "title": "Push", "exercises": [
    {"id": "e1", "name": "Bench Press", "sets": [{"reps": 8, "weight": 60}, {"reps": 6, "weight": 70}]},
    {"id": "e2", "name": "Dips", "sets": [{"reps": 12, "weight": null}]}
  ]},
  {"id": "s2", "title": "Rest", "exercises": []}
]`

// TestParseSessionList verifies the nesting is rebuilt with positions and that
// structural collections are excluded from the level's fields.
func TestParseSessionList(t *testing.T) {
	doc, err := Parse("test.json", []byte(sessionList), testSchema)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if doc.Shape != ShapeSessionList {
		t.Errorf("shape = %s, want session-list", doc.Shape)
	}
	if len(doc.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(doc.Sessions))
	}

	s1 := doc.Sessions[0]
	if diff := cmp.Diff([]string{"id", "title"}, s1.Fields.Keys()); diff != "" {
		t.Errorf("session fields (-want +got):\n%s", diff)
	}
	if len(s1.Exercises) != 2 {
		t.Fatalf("s1 exercises = %d, want 2", len(s1.Exercises))
	}
	ex1 := s1.Exercises[0]
	if diff := cmp.Diff([]string{"id", "name"}, ex1.Fields.Keys()); diff != "" {
		t.Errorf("exercise fields (-want +got):\n%s", diff)
	}
	if len(ex1.Sets) != 2 {
		t.Fatalf("ex1 sets = %d, want 2", len(ex1.Sets))
	}
	if ex1.Sets[1].Index != 1 {
		t.Errorf("second set index = %d, want 1", ex1.Sets[1].Index)
	}
	if diff := cmp.Diff([]string{"reps", "weight"}, ex1.Sets[0].Fields.Keys()); diff != "" {
		t.Errorf("set fields (-want +got):\n%s", diff)
	}

	if got := doc.Sessions[1].SetCount(); got != 0 {
		t.Errorf("s2 sets = %d, want 0", got)
	}
}

// TestParseDateKeyed verifies the Boostcamp layout: the date key is carried on
// each session and document order is kept across dates.
func TestParseDateKeyed(t *testing.T) {
	data := `{
	  "2024-05-03": [{"id": 7, "records": [{"name": "Squat", "sets": [{"value": 100}]}]}],
	  "2024-05-01": [{"id": 5, "records": []}, {"id": 6, "records": null}]
	}`
	schema := Schema{SessionsKey: "sessions", ExercisesKey: "records", SetsKey: "sets", IDKey: "id"}
	doc, err := Parse("boostcamp.json", []byte(data), schema)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if doc.Shape != ShapeDateKeyed {
		t.Errorf("shape = %s, want date-keyed", doc.Shape)
	}
	var keys []string
	for _, s := range doc.Sessions {
		keys = append(keys, s.RootKey)
		if !s.HasRootKey {
			t.Errorf("session %d missing root key flag", s.Index)
		}
	}
	if diff := cmp.Diff([]string{"2024-05-03", "2024-05-01", "2024-05-01"}, keys); diff != "" {
		t.Errorf("root keys (-want +got):\n%s", diff)
	}
	if doc.Sessions[2].Index != 1 {
		t.Errorf("third session index = %d, want 1 (position within its date)", doc.Sessions[2].Index)
	}
}

// TestParseWrapped verifies {"sessions": [...]} documents.
func TestParseWrapped(t *testing.T) {
	data := `{"exported_at": "2024-05-01", "sessions": [{"id": "s1", "exercises": [{"sets": [{}]}]}]}`
	doc, err := Parse("wrapped.json", []byte(data), testSchema)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if doc.Shape != ShapeWrapped || len(doc.Sessions) != 1 {
		t.Fatalf("shape = %s, sessions = %d", doc.Shape, len(doc.Sessions))
	}
	if doc.Sessions[0].HasRootKey {
		t.Error("wrapped sessions should not carry a root key")
	}
}

// TestParseMissingExercises verifies that a session without the exercises key
// fails with a SchemaError naming the session and the key.
func TestParseMissingExercises(t *testing.T) {
	data := `[{"id": "s1", "exercises": []}, {"id": "leg-day", "title": "Legs"}]`
	_, err := Parse("test.json", []byte(data), testSchema)

	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Level != "session" || se.Key != "exercises" {
		t.Errorf("level = %q, key = %q", se.Level, se.Key)
	}
	if !strings.Contains(err.Error(), `"leg-day"`) || !strings.Contains(err.Error(), `"exercises"`) {
		t.Errorf("error %q should name the session and the key", err)
	}
}

// TestParseMissingExercisesByPosition verifies sessions without an id are named by position.
func TestParseMissingExercisesByPosition(t *testing.T) {
	_, err := Parse("test.json", []byte(`[{"exercises": []}, {"title": "Legs"}]`), testSchema)
	if err == nil || !strings.Contains(err.Error(), "session #2") {
		t.Fatalf("error = %v, want it to name session #2", err)
	}
}

// TestParseSchemaErrors verifies each malformed nesting point is reported at its level.
func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantLevel string
		wantKey   string
	}{
		{"root scalar", `"hello"`, "root", ""},
		{"root mixed object", `{"2024-05-01": [], "user": {"id": 1}}`, "root", "user"},
		{"wrapped not array", `{"sessions": {"id": 1}}`, "root", "sessions"},
		{"session not object", `[42]`, "session", ""},
		{"exercises not array", `[{"exercises": "none"}]`, "session", "exercises"},
		{"exercise not object", `[{"exercises": ["squat"]}]`, "exercise", ""},
		{"sets missing", `[{"exercises": [{"name": "Squat"}]}]`, "exercise", "sets"},
		{"sets not array", `[{"exercises": [{"sets": 3}]}]`, "exercise", "sets"},
		{"set not object", `[{"exercises": [{"sets": [5]}]}]`, "set", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.json", []byte(tt.data), testSchema)
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if se.Level != tt.wantLevel || se.Key != tt.wantKey {
				t.Errorf("level = %q, key = %q, want %q, %q", se.Level, se.Key, tt.wantLevel, tt.wantKey)
			}
		})
	}
}

// TestParseSyntaxError verifies malformed JSON yields a ParseError with a position.
func TestParseSyntaxError(t *testing.T) {
	data := "[\n  {\"exercises\": [}\n]"
	_, err := Parse("broken.json", []byte(data), testSchema)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Path != "broken.json" {
		t.Errorf("path = %q", pe.Path)
	}
	if pe.Line != 2 {
		t.Errorf("line = %d, want 2", pe.Line)
	}
}

// TestParseEmptyInput verifies an empty file is a parse failure, not an empty export.
func TestParseEmptyInput(t *testing.T) {
	_, err := Parse("empty.json", nil, testSchema)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

// TestLoadMissingFile verifies a missing input is an IOError at the read stage.
func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")
	_, err := Load(path, testSchema)

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if ioErr.Stage != "read" || ioErr.Path != path {
		t.Errorf("stage = %q, path = %q", ioErr.Stage, ioErr.Path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("IOError should unwrap to os.ErrNotExist")
	}
}

// TestLoadFile verifies Load reads from disk.
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	if err := os.WriteFile(path, []byte(sessionList), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path, testSchema)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Sessions) != 2 {
		t.Errorf("sessions = %d, want 2", len(doc.Sessions))
	}
}
