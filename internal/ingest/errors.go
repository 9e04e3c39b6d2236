package ingest

import "fmt"

// IOError reports a file that could not be opened, read, or written.
// Stage names the step that failed ("read", "write-csv", "write-xlsx", "commit").
type IOError struct {
	Stage string
	Path  string
	Err   error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports input that is not well-formed JSON.
// Line and Column are 1-based and zero when the position is unknown.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a document whose session/exercise/set nesting does not
// match what the flattener expects.
type SchemaError struct {
	Level   string // "root", "session", "exercise" or "set"
	Locator string // e.g. `session "abc"` or `session #3, exercise #1`
	Key     string // offending key, empty when the element itself is wrong
	Reason  string
}

func (e *SchemaError) Error() string {
	where := e.Level
	if e.Locator != "" {
		where = e.Locator
	}
	if e.Key != "" {
		return fmt.Sprintf("schema error at %s: %q %s", where, e.Key, e.Reason)
	}
	return fmt.Sprintf("schema error at %s: %s", where, e.Reason)
}
