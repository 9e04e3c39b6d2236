package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Profile   string            `yaml:"profile"`
	Input     string            `yaml:"input"`
	Output    OutputConfig      `yaml:"output"`
	Columns   []string          `yaml:"columns"`
	Schema    SchemaConfig      `yaml:"schema"`
	Session   LevelConfig       `yaml:"session"`
	Exercise  LevelConfig       `yaml:"exercise"`
	Set       LevelConfig       `yaml:"set"`
	Fallbacks map[string]string `yaml:"fallbacks"`
	History   HistoryConfig     `yaml:"history"`
}

type OutputConfig struct {
	CSV   string `yaml:"csv"`
	XLSX  string `yaml:"xlsx"`
	Sheet string `yaml:"sheet"`
}

type SchemaConfig struct {
	SessionsKey    string `yaml:"sessions_key"`
	ExercisesKey   string `yaml:"exercises_key"`
	SetsKey        string `yaml:"sets_key"`
	IDKey          string `yaml:"id_key"`
	RootKeyColumn  string `yaml:"root_key_column"`
	SetIndexColumn string `yaml:"set_index_column"`
	EmptyExercises string `yaml:"empty_exercises"`
	ListSeparator  string `yaml:"list_separator"`
}

// LevelConfig controls the column names produced from one nesting level.
type LevelConfig struct {
	Prefix string            `yaml:"prefix"`
	Rename map[string]string `yaml:"rename"`
	Lists  []ListConfig      `yaml:"lists"`
}

// ListConfig renders an array of objects as "label (detail)" entries.
// Fallback names a plain list used when the field holds no objects.
type ListConfig struct {
	Field    string `yaml:"field"`
	Column   string `yaml:"column"`
	Label    string `yaml:"label"`
	Detail   string `yaml:"detail"`
	Fallback string `yaml:"fallback"`
}

type HistoryConfig struct {
	Dir string `yaml:"dir"`
}

// Option adjusts a loaded config before validation.
type Option func(*Config)

// WithInput overrides the input path. Empty keeps the configured one.
func WithInput(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.Input = path
		}
	}
}

// Load reads config from a YAML file layered over the defaults of the
// profile it names, then applies environment variable overrides and opts.
// An empty path uses the built-in Boostcamp defaults.
// Env vars use the prefix LIFTSHEET_:
//
//	LIFTSHEET_INPUT, LIFTSHEET_OUTPUT_CSV, LIFTSHEET_OUTPUT_XLSX,
//	LIFTSHEET_OUTPUT_SHEET, LIFTSHEET_COLUMNS, LIFTSHEET_HISTORY_DIR
func Load(path string, opts ...Option) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		var probe fileLayout
		if err := yaml.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if cfg, err = ForProfile(probe.Profile); err != nil {
			return nil, err
		}
		probe.clearMaps(cfg)
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// fileLayout records which map-valued keys a config file sets. yaml.v3
// merges into existing maps, so profile maps the file names are cleared
// first and the file's map replaces them.
type fileLayout struct {
	Profile   string     `yaml:"profile"`
	Fallbacks *yaml.Node `yaml:"fallbacks"`
	Session   struct {
		Rename *yaml.Node `yaml:"rename"`
	} `yaml:"session"`
	Exercise struct {
		Rename *yaml.Node `yaml:"rename"`
	} `yaml:"exercise"`
	Set struct {
		Rename *yaml.Node `yaml:"rename"`
	} `yaml:"set"`
}

func (l *fileLayout) clearMaps(cfg *Config) {
	if l.Fallbacks != nil {
		cfg.Fallbacks = nil
	}
	if l.Session.Rename != nil {
		cfg.Session.Rename = nil
	}
	if l.Exercise.Rename != nil {
		cfg.Exercise.Rename = nil
	}
	if l.Set.Rename != nil {
		cfg.Set.Rename = nil
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTSHEET_INPUT"); v != "" {
		cfg.Input = v
	}
	if v := os.Getenv("LIFTSHEET_OUTPUT_CSV"); v != "" {
		cfg.Output.CSV = v
	}
	if v := os.Getenv("LIFTSHEET_OUTPUT_XLSX"); v != "" {
		cfg.Output.XLSX = v
	}
	if v := os.Getenv("LIFTSHEET_OUTPUT_SHEET"); v != "" {
		cfg.Output.Sheet = v
	}
	if v := os.Getenv("LIFTSHEET_COLUMNS"); v != "" {
		cfg.Columns = splitList(v)
	}
	if v := os.Getenv("LIFTSHEET_HISTORY_DIR"); v != "" {
		cfg.History.Dir = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	if c.Output.CSV == "" {
		return fmt.Errorf("output.csv is required")
	}
	if c.Output.XLSX == "" {
		return fmt.Errorf("output.xlsx is required")
	}
	in := filepath.Clean(c.Input)
	csvPath := filepath.Clean(c.Output.CSV)
	xlsxPath := filepath.Clean(c.Output.XLSX)
	if csvPath == xlsxPath {
		return fmt.Errorf("output.csv and output.xlsx must differ")
	}
	if in == csvPath || in == xlsxPath {
		return fmt.Errorf("outputs must not overwrite input %s", c.Input)
	}
	if err := validateSheetName(c.Output.Sheet); err != nil {
		return err
	}

	if c.Schema.ExercisesKey == "" {
		return fmt.Errorf("schema.exercises_key is required")
	}
	if c.Schema.SetsKey == "" {
		return fmt.Errorf("schema.sets_key is required")
	}
	if c.Schema.ExercisesKey == c.Schema.SetsKey {
		return fmt.Errorf("schema.exercises_key and schema.sets_key must differ")
	}
	switch c.Schema.EmptyExercises {
	case "", "placeholder", "omit":
	default:
		return fmt.Errorf("schema.empty_exercises must be placeholder or omit, got %q", c.Schema.EmptyExercises)
	}

	seen := map[string]bool{}
	for _, col := range c.Columns {
		if col == "" {
			return fmt.Errorf("columns: empty column name")
		}
		if seen[col] {
			return fmt.Errorf("columns: %q listed twice", col)
		}
		seen[col] = true
	}

	for name, level := range map[string]LevelConfig{"session": c.Session, "exercise": c.Exercise, "set": c.Set} {
		for i, l := range level.Lists {
			if l.Field == "" || l.Label == "" {
				return fmt.Errorf("%s.lists[%d]: field and label are required", name, i)
			}
		}
	}
	return nil
}

// validateSheetName applies the spreadsheet limits on worksheet names.
func validateSheetName(name string) error {
	if name == "" {
		return nil
	}
	if len([]rune(name)) > 31 {
		return fmt.Errorf("output.sheet %q is longer than 31 characters", name)
	}
	if strings.ContainsAny(name, `:\/?*[]`) {
		return fmt.Errorf("output.sheet %q contains one of : \\ / ? * [ ]", name)
	}
	return nil
}
