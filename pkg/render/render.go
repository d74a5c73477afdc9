// Package render writes report tables as aligned text, CSV, JSON or YAML.
// Output is a pure function of the input tables.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ekaya-inc/rental-insights/pkg/apperrors"
)

// Kind tells the renderers how to format a column's cells.
type Kind int

const (
	Text Kind = iota
	Integer
	Number // two decimal places
	Date
	Month
	Timestamp
)

// Column is a named, typed table column.
type Column struct {
	Name string
	Kind Kind
}

// Table is a report result ready for output. Rows hold one value per column;
// a nil value or nil pointer is NULL.
type Table struct {
	Name    string // report identifier
	Title   string
	Noun    string // singular noun for a row, used in the text footer
	Columns []Column
	Rows    [][]any
}

// Format is an output format name.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatYAML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidOutputFormat, s)
}

// Write renders tables to w in the given format.
func Write(w io.Writer, format Format, tables ...Table) error {
	switch format {
	case FormatTable:
		return writeText(w, tables)
	case FormatCSV:
		return writeCSV(w, tables)
	case FormatJSON:
		return writeJSON(w, tables)
	case FormatYAML:
		return writeYAML(w, tables)
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidOutputFormat, format)
	}
}

const nullText = "NULL"

// deref unwraps the pointer cell types and reports NULL for nil.
func deref(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case *float64:
		if x == nil {
			return nil, true
		}
		return *x, false
	case *int:
		if x == nil {
			return nil, true
		}
		return *x, false
	case *int64:
		if x == nil {
			return nil, true
		}
		return *x, false
	case *time.Time:
		if x == nil {
			return nil, true
		}
		return *x, false
	case *string:
		if x == nil {
			return nil, true
		}
		return *x, false
	}
	return v, false
}

// formatCell renders a cell as text. The bool is true for NULL.
func formatCell(v any, kind Kind) (string, bool) {
	v, null := deref(v)
	if null {
		return nullText, true
	}

	switch x := v.(type) {
	case time.Time:
		switch kind {
		case Month:
			return x.Format("2006-01"), false
		case Timestamp:
			return x.Format(time.DateTime), false
		default:
			return x.Format(time.DateOnly), false
		}
	case float64:
		if kind == Integer {
			return strconv.FormatFloat(x, 'f', 0, 64), false
		}
		return strconv.FormatFloat(x, 'f', 2, 64), false
	case int:
		if kind == Number {
			return strconv.FormatFloat(float64(x), 'f', 2, 64), false
		}
		return strconv.Itoa(x), false
	case int64:
		if kind == Number {
			return strconv.FormatFloat(float64(x), 'f', 2, 64), false
		}
		return strconv.FormatInt(x, 10), false
	case string:
		return x, false
	case fmt.Stringer:
		return x.String(), false
	}
	return fmt.Sprint(v), false
}
