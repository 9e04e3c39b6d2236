package exporter

import (
	"github.com/meltforce/liftsheet/internal/config"
	"github.com/meltforce/liftsheet/internal/flatten"
	"github.com/meltforce/liftsheet/internal/ingest"
)

// SchemaFor returns the nesting keys named by the config.
func SchemaFor(cfg *config.Config) ingest.Schema {
	return ingest.Schema{
		SessionsKey:  cfg.Schema.SessionsKey,
		ExercisesKey: cfg.Schema.ExercisesKey,
		SetsKey:      cfg.Schema.SetsKey,
		IDKey:        cfg.Schema.IDKey,
	}
}

// OptionsFor translates the config into flattening options.
func OptionsFor(cfg *config.Config) flatten.Options {
	policy := flatten.EmptyPolicy(cfg.Schema.EmptyExercises)
	if policy == "" {
		policy = flatten.EmptyPlaceholder
	}
	return flatten.Options{
		Session:        levelFor(cfg.Session),
		Exercise:       levelFor(cfg.Exercise),
		Set:            levelFor(cfg.Set),
		RootKeyColumn:  cfg.Schema.RootKeyColumn,
		SetIndexColumn: cfg.Schema.SetIndexColumn,
		EmptyExercises: policy,
		ListSeparator:  cfg.Schema.ListSeparator,
		Fallbacks:      cfg.Fallbacks,
	}
}

func levelFor(l config.LevelConfig) flatten.Level {
	level := flatten.Level{Prefix: l.Prefix, Rename: l.Rename}
	for _, lc := range l.Lists {
		level.Lists = append(level.Lists, flatten.ListFormat{
			Field:    lc.Field,
			Column:   lc.Column,
			Label:    lc.Label,
			Detail:   lc.Detail,
			Fallback: lc.Fallback,
		})
	}
	return level
}
