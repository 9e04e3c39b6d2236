package flatten

import "github.com/meltforce/liftsheet/internal/models"

// Selection is the column-selected table plus what selection left behind.
type Selection struct {
	Table      *models.Table
	Discovered []string // every column seen, first-seen order
	Missing    []string // preferred columns no row carries
	Unselected []string // discovered columns not in the preferred list
}

// Union returns every column carried by rows, in first-seen order.
func Union(rows []*models.FlatRow) []string {
	seen := map[string]bool{}
	var cols []string
	for _, row := range rows {
		for _, c := range row.Columns() {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}

// Select lays rows out under the preferred columns, in order. A row lacking a
// column gets a null cell; a preferred column nobody carries is still emitted.
// Without preferred columns the table uses the union of all columns.
func Select(rows []*models.FlatRow, preferred []string) *Selection {
	discovered := Union(rows)
	sel := &Selection{Discovered: discovered}

	columns := preferred
	if len(columns) == 0 {
		columns = discovered
	}

	known := make(map[string]bool, len(discovered))
	for _, c := range discovered {
		known[c] = true
	}
	chosen := make(map[string]bool, len(columns))
	for _, c := range columns {
		chosen[c] = true
		if !known[c] {
			sel.Missing = append(sel.Missing, c)
		}
	}
	for _, c := range discovered {
		if !chosen[c] {
			sel.Unselected = append(sel.Unselected, c)
		}
	}

	table := &models.Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]models.Value, 0, len(rows)),
	}
	for _, row := range rows {
		cells := make([]models.Value, len(columns))
		for i, c := range columns {
			if v, ok := row.Get(c); ok {
				cells[i] = v
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	sel.Table = table
	return sel
}
