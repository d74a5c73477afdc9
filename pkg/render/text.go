package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/olekukonko/tablewriter"
)

func writeText(w io.Writer, tables []Table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeTextTable(w, t); err != nil {
			return fmt.Errorf("failed to render %s: %w", t.Name, err)
		}
	}
	return nil
}

func writeTextTable(w io.Writer, t Table) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n", t.Title, strings.Repeat("=", len(t.Title))); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	table.SetHeader(header)

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cells[i], _ = formatCell(row[i], c.Kind)
		}
		table.Append(cells)
	}
	table.Render()

	_, err := fmt.Fprintf(w, "(%s)\n", countNoun(len(t.Rows), t.Noun))
	return err
}

// countNoun returns "1 film", "20 films", "0 categories".
func countNoun(n int, noun string) string {
	if noun == "" {
		noun = "row"
	}
	if n != 1 {
		noun = inflection.Plural(noun)
	}
	return fmt.Sprintf("%d %s", n, noun)
}
