package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const validYAML = `
input: "history.json"
output:
  csv: "out/sets.csv"
  xlsx: "out/sets.xlsx"
  sheet: "sets"
columns: ["session_date", "exercise_name", "set_index"]
schema:
  empty_exercises: omit
set:
  rename:
    reps: set_amount_reps
history:
  dir: ".liftsheet"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "liftsheet.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadDefaults verifies that no config file yields the Boostcamp profile.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Profile != "boostcamp" {
		t.Errorf("profile = %q, want boostcamp", cfg.Profile)
	}
	if cfg.Input != "example_data_payload.txt" {
		t.Errorf("input = %q", cfg.Input)
	}
	if cfg.Output.CSV != "workout_sets.csv" || cfg.Output.XLSX != "workout_sets.xlsx" {
		t.Errorf("outputs = %q, %q", cfg.Output.CSV, cfg.Output.XLSX)
	}
	if cfg.Schema.ExercisesKey != "records" {
		t.Errorf("exercises_key = %q, want records", cfg.Schema.ExercisesKey)
	}
	if diff := cmp.Diff(BoostcampColumns, cfg.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if cfg.History.Dir != "" {
		t.Errorf("history should be off by default, dir = %q", cfg.History.Dir)
	}
}

// TestLoadValid verifies YAML values layer over the profile defaults.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Input != "history.json" {
		t.Errorf("input = %q", cfg.Input)
	}
	if cfg.Output.Sheet != "sets" {
		t.Errorf("sheet = %q", cfg.Output.Sheet)
	}
	if diff := cmp.Diff([]string{"session_date", "exercise_name", "set_index"}, cfg.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if cfg.Schema.EmptyExercises != "omit" {
		t.Errorf("empty_exercises = %q", cfg.Schema.EmptyExercises)
	}
	// Unset schema keys keep the profile's values
	if cfg.Schema.ExercisesKey != "records" || cfg.Schema.SetsKey != "sets" {
		t.Errorf("schema keys = %q, %q", cfg.Schema.ExercisesKey, cfg.Schema.SetsKey)
	}
	// A rename block replaces the profile's map for that level only
	if diff := cmp.Diff(map[string]string{"reps": "set_amount_reps"}, cfg.Set.Rename); diff != "" {
		t.Errorf("set renames (-want +got):\n%s", diff)
	}
	if cfg.Session.Rename["program_id"] != "program_id" {
		t.Errorf("session renames = %v, want profile default kept", cfg.Session.Rename)
	}
	if cfg.History.Dir != ".liftsheet" {
		t.Errorf("history.dir = %q", cfg.History.Dir)
	}
}

// TestLoadGenericProfile verifies the generic profile drops Boostcamp renames and columns.
func TestLoadGenericProfile(t *testing.T) {
	cfg, err := Load(writeTemp(t, "profile: generic\ninput: w.json\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schema.ExercisesKey != "exercises" {
		t.Errorf("exercises_key = %q, want exercises", cfg.Schema.ExercisesKey)
	}
	if len(cfg.Columns) != 0 {
		t.Errorf("columns = %v, want none", cfg.Columns)
	}
	if len(cfg.Set.Rename) != 0 || len(cfg.Fallbacks) != 0 {
		t.Errorf("generic profile should carry no renames or fallbacks")
	}
}

// TestLoadClearsProfileMaps verifies an empty map in the file switches off
// the profile's entries instead of merging with them.
func TestLoadClearsProfileMaps(t *testing.T) {
	cfg, err := Load(writeTemp(t, "fallbacks: {}\nexercise:\n  rename: {}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Fallbacks) != 0 {
		t.Errorf("fallbacks = %v, want none", cfg.Fallbacks)
	}
	if len(cfg.Exercise.Rename) != 0 {
		t.Errorf("exercise renames = %v, want none", cfg.Exercise.Rename)
	}
	if cfg.Set.Rename["value"] != "set_value_weight" {
		t.Errorf("set renames = %v, want profile default kept", cfg.Set.Rename)
	}
}

// TestLoadUnknownProfile verifies a typo in the profile name is rejected.
func TestLoadUnknownProfile(t *testing.T) {
	if _, err := Load(writeTemp(t, "profile: bootcamp\n")); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

// TestEnvOverride verifies that LIFTSHEET_ env vars take precedence over YAML values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("LIFTSHEET_INPUT", "env.json")
	t.Setenv("LIFTSHEET_OUTPUT_CSV", "env.csv")
	t.Setenv("LIFTSHEET_COLUMNS", "a, b,,c")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Input != "env.json" {
		t.Errorf("input = %q, want env.json", cfg.Input)
	}
	if cfg.Output.CSV != "env.csv" {
		t.Errorf("output.csv = %q, want env.csv", cfg.Output.CSV)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, cfg.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	// Unchanged fields should keep YAML values
	if cfg.Output.XLSX != "out/sets.xlsx" {
		t.Errorf("output.xlsx = %q", cfg.Output.XLSX)
	}
}

// TestWithInput verifies the input option beats env and is validated with the rest.
func TestWithInput(t *testing.T) {
	t.Setenv("LIFTSHEET_INPUT", "env.json")

	cfg, err := Load(writeTemp(t, validYAML), WithInput("flag.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Input != "flag.json" {
		t.Errorf("input = %q, want flag.json", cfg.Input)
	}

	cfg, err = Load(writeTemp(t, validYAML), WithInput(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Input != "env.json" {
		t.Errorf("input = %q, empty option should keep env.json", cfg.Input)
	}

	if _, err := Load(writeTemp(t, validYAML), WithInput("out/sets.csv")); err == nil {
		t.Fatal("expected validation error when the input is also the csv output")
	}
}

// TestValidation verifies that inconsistent configs produce a clear error.
func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"same outputs", "output: {csv: a.out, xlsx: a.out}\n"},
		{"output overwrites input", "input: a.json\noutput: {csv: a.json}\n"},
		{"empty exercises key", "schema: {exercises_key: \"\"}\n"},
		{"same nesting keys", "schema: {exercises_key: sets}\n"},
		{"bad empty policy", "schema: {empty_exercises: skip}\n"},
		{"duplicate column", "columns: [a, b, a]\n"},
		{"long sheet name", "output: {sheet: abcdefghijklmnopqrstuvwxyz0123456789}\n"},
		{"bad sheet name", "output: {sheet: \"sets/2024\"}\n"},
		{"list without label", "exercise: {lists: [{field: muscles_list}]}\n"},
		{"missing input", "input: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, tt.yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

// TestLoadMissingFile verifies that a missing config file returns a clear error.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/liftsheet.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
