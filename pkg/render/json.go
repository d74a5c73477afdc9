package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

type jsonReport struct {
	Report string       `json:"report"`
	Title  string       `json:"title"`
	Rows   []orderedRow `json:"rows"`
}

// orderedRow marshals as an object whose keys keep column order.
type orderedRow struct {
	columns []Column
	values  []any
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(jsonValue(r.values[i], c.Kind))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue keeps numbers numeric and NULL as null; everything else is the
// same text the other formats print.
func jsonValue(v any, kind Kind) any {
	text, null := formatCell(v, kind)
	if null {
		return nil
	}
	switch kind {
	case Integer, Number:
		return json.Number(text)
	}
	return text
}

// writeJSON writes a single array with one object per table.
func writeJSON(w io.Writer, tables []Table) error {
	reports := make([]jsonReport, 0, len(tables))
	for _, t := range tables {
		rows := make([]orderedRow, len(t.Rows))
		for i, row := range t.Rows {
			rows[i] = orderedRow{columns: t.Columns, values: row}
		}
		reports = append(reports, jsonReport{Report: t.Name, Title: t.Title, Rows: rows})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
