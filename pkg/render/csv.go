package render

import (
	"encoding/csv"
	"fmt"
	"io"
)

// writeCSV writes one header plus rows per table. Consecutive tables are
// separated by an empty line.
func writeCSV(w io.Writer, tables []Table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		cw := csv.NewWriter(w)
		header := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			header[j] = c.Name
		}
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write %s header: %w", t.Name, err)
		}

		record := make([]string, len(t.Columns))
		for _, row := range t.Rows {
			for j, c := range t.Columns {
				record[j], _ = formatCell(row[j], c.Kind)
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write %s row: %w", t.Name, err)
			}
		}

		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("failed to flush %s: %w", t.Name, err)
		}
	}
	return nil
}
