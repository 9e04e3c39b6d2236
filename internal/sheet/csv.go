package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/meltforce/liftsheet/internal/models"
)

// WriteCSV writes the table as comma-separated UTF-8 text with a header row.
// Output depends only on the table, so identical tables give identical bytes.
func WriteCSV(w io.Writer, t *models.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = row[j].String()
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
