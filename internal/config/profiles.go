package config

import "fmt"

// BoostcampColumns is the default column layout for Boostcamp exports.
var BoostcampColumns = []string{
	"session_date", "exercise_name", "exercise_type",
	"exercise_target_type", "exercise_muscles", "exercise_equipments",
	"set_index", "set_value_weight", "set_amount_reps",
	"set_target_type", "set_weight_unit",
	"archived_rpe", "previous_rpe",
	"archived_reps", "previous_reps",
	"archived_weight", "previous_weight",
}

// Default returns the Boostcamp profile.
func Default() *Config {
	cfg, _ := ForProfile("")
	return cfg
}

// ForProfile returns the defaults for a named profile ("boostcamp" or "generic").
// An empty name selects boostcamp.
func ForProfile(name string) (*Config, error) {
	switch name {
	case "", "boostcamp":
		return boostcamp(), nil
	case "generic":
		return generic(), nil
	default:
		return nil, fmt.Errorf("unknown profile %q (want boostcamp or generic)", name)
	}
}

// boostcamp mirrors a Boostcamp history export: sessions keyed by date,
// exercises under "records", per-set history metrics kept unprefixed.
func boostcamp() *Config {
	return &Config{
		Profile: "boostcamp",
		Input:   "example_data_payload.txt",
		Output: OutputConfig{
			CSV:   "workout_sets.csv",
			XLSX:  "workout_sets.xlsx",
			Sheet: "workout_sets",
		},
		Columns: append([]string(nil), BoostcampColumns...),
		Schema: SchemaConfig{
			SessionsKey:    "sessions",
			ExercisesKey:   "records",
			SetsKey:        "sets",
			IDKey:          "id",
			RootKeyColumn:  "session_date",
			SetIndexColumn: "set_index",
			EmptyExercises: "placeholder",
			ListSeparator:  ", ",
		},
		Session: LevelConfig{
			Prefix: "session_",
			Rename: map[string]string{"program_id": "program_id"},
		},
		Exercise: LevelConfig{
			Prefix: "exercise_",
			Rename: map[string]string{},
			Lists: []ListConfig{
				{Field: "muscles_list", Column: "exercise_muscles", Label: "muscle", Detail: "percent", Fallback: "muscles"},
			},
		},
		Set: LevelConfig{
			Prefix: "set_",
			Rename: map[string]string{
				"value":           "set_value_weight",
				"amount":          "set_amount_reps",
				"archived_rpe":    "archived_rpe",
				"previous_rpe":    "previous_rpe",
				"archived_reps":   "archived_reps",
				"previous_reps":   "previous_reps",
				"archived_weight": "archived_weight",
				"previous_weight": "previous_weight",
				"archived_time":   "archived_time",
				"previous_time":   "previous_time",
			},
		},
		Fallbacks: map[string]string{"set_target_type": "exercise_target_type"},
	}
}

// generic keeps every field under a level prefix and selects all columns.
func generic() *Config {
	return &Config{
		Profile: "generic",
		Input:   "workouts.json",
		Output: OutputConfig{
			CSV:   "workout_sets.csv",
			XLSX:  "workout_sets.xlsx",
			Sheet: "workout_sets",
		},
		Schema: SchemaConfig{
			SessionsKey:    "sessions",
			ExercisesKey:   "exercises",
			SetsKey:        "sets",
			IDKey:          "id",
			RootKeyColumn:  "session_date",
			SetIndexColumn: "set_index",
			EmptyExercises: "placeholder",
			ListSeparator:  ", ",
		},
		Session:  LevelConfig{Prefix: "session_"},
		Exercise: LevelConfig{Prefix: "exercise_"},
		Set:      LevelConfig{Prefix: "set_"},
	}
}
