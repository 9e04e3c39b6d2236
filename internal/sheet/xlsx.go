package sheet

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/meltforce/liftsheet/internal/models"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet name used when none is configured.
const DefaultSheet = "workout_sets"

// ErrCellValue is returned for a string a workbook cell cannot hold unchanged.
var ErrCellValue = errors.New("value cannot be stored in an xlsx cell")

// WriteXLSX writes the table as a single-sheet workbook. Numbers and booleans
// stay native cells; nulls become empty cells. The header row is bold and frozen.
// Strings over excelize.TotalCellChars characters or holding characters XML
// cannot carry fail with ErrCellValue.
func WriteXLSX(w io.Writer, t *models.Table, sheetName string) (err error) {
	if sheetName == "" {
		sheetName = DefaultSheet
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("naming sheet %q: %w", sheetName, err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		if reason := checkCell(c); reason != "" {
			return fmt.Errorf("%w: column name %q %s", ErrCellValue, c, reason)
		}
		header[i] = c
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, len(t.Columns))
		for j := range values {
			if j >= len(row) {
				continue
			}
			if row[j].Kind == models.KindString {
				if reason := checkCell(row[j].Str); reason != "" {
					return fmt.Errorf("%w: row %d, column %q %s", ErrCellValue, i+1, t.Columns[j], reason)
				}
			}
			values[j] = row[j].Cell()
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// checkCell returns why s would not survive a round trip through a cell, or "".
func checkCell(s string) string {
	if n := utf8.RuneCountInString(s); n > excelize.TotalCellChars {
		return fmt.Sprintf("is %d characters, over the %d a cell holds", n, excelize.TotalCellChars)
	}
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return "is not valid UTF-8"
			}
		}
		if !isXMLChar(r) {
			return fmt.Sprintf("contains control character %U", r)
		}
	}
	return ""
}

// isXMLChar reports whether r is allowed in XML 1.0 text.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
