package flatten

import (
	"sort"

	"github.com/iancoleman/orderedmap"
	"github.com/meltforce/liftsheet/internal/models"
)

// EmptyPolicy decides what an exercise without sets contributes.
type EmptyPolicy string

const (
	// EmptyPlaceholder emits one row carrying session and exercise fields only.
	EmptyPlaceholder EmptyPolicy = "placeholder"
	// EmptyOmit emits nothing for the exercise.
	EmptyOmit EmptyPolicy = "omit"
)

// Options controls column naming and derived columns.
type Options struct {
	Session  Level
	Exercise Level
	Set      Level

	RootKeyColumn  string // receives the date key of date-keyed documents
	SetIndexColumn string // 1-based set position within its exercise
	EmptyExercises EmptyPolicy
	ListSeparator  string

	// Fallbacks fills a column from another when it is missing or null on a set row.
	Fallbacks map[string]string
}

// Result is the flattened document.
type Result struct {
	Rows    []*models.FlatRow
	Counts  Counts
	Dropped []string // nested columns that had no scalar rendering
}

// Counts summarizes what was flattened.
type Counts struct {
	Sessions        int
	Exercises       int
	Sets            int
	Rows            int
	PlaceholderRows int
}

// Flatten produces one row per set. Session fields are merged first, then
// exercise fields, then set fields, so the most specific level wins a
// column-name collision while the column keeps its first-seen position.
func Flatten(sessions []models.Session, opts Options) *Result {
	f := &flattener{opts: opts, dropped: orderedmap.New()}
	res := &Result{}

	for i := range sessions {
		s := &sessions[i]
		res.Counts.Sessions++

		for j := range s.Exercises {
			ex := &s.Exercises[j]
			res.Counts.Exercises++

			if len(ex.Sets) == 0 {
				if opts.EmptyExercises == EmptyOmit {
					continue
				}
				row := f.base(s, ex)
				res.Rows = append(res.Rows, row)
				res.Counts.PlaceholderRows++
				continue
			}

			for k := range ex.Sets {
				set := &ex.Sets[k]
				res.Counts.Sets++

				row := f.base(s, ex)
				if opts.SetIndexColumn != "" {
					row.Set(opts.SetIndexColumn, models.Number(float64(set.Index+1)))
				}
				f.apply(row, opts.Set, set.Fields)
				f.fallbacks(row)
				res.Rows = append(res.Rows, row)
			}
		}
	}

	res.Counts.Rows = len(res.Rows)
	res.Dropped = f.dropped.Keys()
	return res
}

type flattener struct {
	opts    Options
	dropped *orderedmap.OrderedMap
}

// base builds the session and exercise portion of a row.
func (f *flattener) base(s *models.Session, ex *models.Exercise) *models.FlatRow {
	row := models.NewFlatRow()
	if s.HasRootKey && f.opts.RootKeyColumn != "" {
		row.Set(f.opts.RootKeyColumn, models.String(s.RootKey))
	}
	f.apply(row, f.opts.Session, s.Fields)
	f.apply(row, f.opts.Exercise, ex.Fields)
	return row
}

func (f *flattener) apply(row *models.FlatRow, level Level, fields *orderedmap.OrderedMap) {
	if fields == nil {
		return
	}
	for _, key := range fields.Keys() {
		if level.hasList(key) {
			continue
		}
		v, _ := fields.Get(key)
		f.emit(row, level, key, v)
	}

	for _, lf := range level.Lists {
		s, ok := lf.render(fields, f.sep())
		if !ok {
			continue
		}
		col := lf.Column
		if col == "" {
			col = level.column(lf.Field)
		}
		row.Set(col, models.String(s))
	}
}

// emit writes one field, descending into objects with dotted paths.
func (f *flattener) emit(row *models.FlatRow, level Level, path string, v any) {
	if scalar, ok := models.ScalarOf(v); ok {
		row.Set(level.column(path), scalar)
		return
	}

	switch x := v.(type) {
	case orderedmap.OrderedMap:
		for _, k := range x.Keys() {
			child, _ := x.Get(k)
			f.emit(row, level, path+"."+k, child)
		}
	case *orderedmap.OrderedMap:
		for _, k := range x.Keys() {
			child, _ := x.Get(k)
			f.emit(row, level, path+"."+k, child)
		}
	case []any:
		if s, ok := joinScalars(x, f.sep()); ok {
			row.Set(level.column(path), models.String(s))
			return
		}
		f.dropped.Set(level.column(path), true)
	}
}

func (f *flattener) fallbacks(row *models.FlatRow) {
	if len(f.opts.Fallbacks) == 0 {
		return
	}
	cols := make([]string, 0, len(f.opts.Fallbacks))
	for col := range f.opts.Fallbacks {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	for _, col := range cols {
		if v, ok := row.Get(col); ok && !v.IsNull() {
			continue
		}
		if fb, ok := row.Get(f.opts.Fallbacks[col]); ok {
			row.Set(col, fb)
		}
	}
}

func (f *flattener) sep() string {
	if f.opts.ListSeparator == "" {
		return ", "
	}
	return f.opts.ListSeparator
}
