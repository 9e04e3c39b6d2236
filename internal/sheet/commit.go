package sheet

import (
	"io"
	"os"
	"path/filepath"

	"github.com/meltforce/liftsheet/internal/ingest"
)

// Output is one file to produce.
type Output struct {
	Path  string
	Stage string // reported in IOError, e.g. "write-csv"
	Write func(io.Writer) error
}

// WriteAll writes every output to a temporary sibling, then renames them into
// place only once all serializations succeeded. If a rename fails, outputs
// already committed by this call are removed so no run leaves a partial pair.
func WriteAll(outputs ...Output) error {
	temps := make([]string, 0, len(outputs))
	defer func() {
		for _, tmp := range temps {
			_ = os.Remove(tmp)
		}
	}()

	for _, o := range outputs {
		tmp, err := writeTemp(o)
		if err != nil {
			return err
		}
		temps = append(temps, tmp)
	}

	committed := make([]string, 0, len(outputs))
	for i, o := range outputs {
		if err := os.Rename(temps[i], o.Path); err != nil {
			for _, p := range committed {
				_ = os.Remove(p)
			}
			return &ingest.IOError{Stage: "commit", Path: o.Path, Err: err}
		}
		committed = append(committed, o.Path)
	}
	return nil
}

func writeTemp(o Output) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(o.Path), "."+filepath.Base(o.Path)+".tmp-*")
	if err != nil {
		return "", &ingest.IOError{Stage: o.Stage, Path: o.Path, Err: err}
	}
	name := f.Name()

	if err := o.Write(f); err != nil {
		f.Close()
		os.Remove(name)
		return "", &ingest.IOError{Stage: o.Stage, Path: o.Path, Err: err}
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(name)
		return "", &ingest.IOError{Stage: o.Stage, Path: o.Path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", &ingest.IOError{Stage: o.Stage, Path: o.Path, Err: err}
	}
	return name, nil
}
