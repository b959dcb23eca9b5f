package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Table is a set of equal-length named columns.
type Table struct {
	Name    string
	Headers []string
	Columns [][]float64
}

func (t Table) rows() (int, error) {
	if len(t.Headers) != len(t.Columns) {
		return 0, fmt.Errorf("export: table %q has %d headers for %d columns", t.Name, len(t.Headers), len(t.Columns))
	}
	if len(t.Columns) == 0 {
		return 0, nil
	}
	n := len(t.Columns[0])
	for i, c := range t.Columns {
		if len(c) != n {
			return 0, fmt.Errorf("export: column %q has %d rows, want %d", t.Headers[i], len(c), n)
		}
	}
	return n, nil
}

func CSV(w io.Writer, t Table) error {
	n, err := t.rows()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	row := make([]string, len(t.Columns))
	for r := 0; r < n; r++ {
		for c := range t.Columns {
			row[c] = strconv.FormatFloat(t.Columns[c][r], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX writes one worksheet per table, in order, plus an optional "info"
// sheet of key/value pairs.
func XLSX(w io.Writer, tables []Table, info [][2]string) error {
	if len(tables) == 0 {
		return ErrEmptyPlot
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		n, err := t.rows()
		if err != nil {
			return err
		}
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		header := make([]any, len(t.Headers))
		for c, h := range t.Headers {
			header[c] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		for r := 0; r < n; r++ {
			row := make([]any, len(t.Columns))
			for c := range t.Columns {
				row[c] = t.Columns[c][r]
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return err
			}
		}
	}

	if len(info) > 0 {
		if _, err := f.NewSheet("info"); err != nil {
			return err
		}
		for r, kv := range info {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			row := []any{kv[0], kv[1]}
			if err := f.SetSheetRow("info", cell, &row); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// JSON writes v indented.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
