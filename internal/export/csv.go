// Package export renders extraction results as CSV and Excel workbooks.
package export

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/Syzygyx/StealthOCR/internal/reprog"
)

// Rows converts records to CSV rows, header first. Output is deterministic:
// same records, same bytes.
func Rows(records []reprog.Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, reprog.Header())
	for _, r := range records {
		rows = append(rows, r.Fields())
	}
	return rows
}

// WriteCSV writes records to w in the canonical 16-column layout.
func WriteCSV(w io.Writer, records []reprog.Record) error {
	cw := csv.NewWriter(w)
	for _, row := range Rows(records) {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

// WriteCSVFile writes records to a CSV file at path.
func WriteCSVFile(path string, records []reprog.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}
