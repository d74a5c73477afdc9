package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/rental-insights/pkg/apperrors"
)

func float(v float64) *float64 { return &v }

func sampleTable() Table {
	return Table{
		Name:  "monthly-revenue",
		Title: "Monthly Revenue Trend",
		Noun:  "month",
		Columns: []Column{
			{Name: "month", Kind: Month},
			{Name: "payment_count", Kind: Integer},
			{Name: "total_revenue", Kind: Number},
			{Name: "growth_pct", Kind: Number},
		},
		Rows: [][]any{
			{time.Date(2005, 5, 1, 0, 0, 0, 0, time.UTC), 1, 4.99, (*float64)(nil)},
			{time.Date(2005, 6, 1, 0, 0, 0, 0, time.UTC), 1, 2.99, float(-40.08)},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"table", "CSV", " json ", "yaml"} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOutputFormat))
}

func TestFormatCell(t *testing.T) {
	ts := time.Date(2005, 8, 23, 15, 4, 5, 0, time.UTC)
	var nilTime *time.Time
	days := 3

	tests := []struct {
		name string
		v    any
		kind Kind
		want string
		null bool
	}{
		{"nil", nil, Text, "NULL", true},
		{"nil float", (*float64)(nil), Number, "NULL", true},
		{"nil time", nilTime, Date, "NULL", true},
		{"float", 6.666, Number, "6.67", false},
		{"int as number", 10, Number, "10.00", false},
		{"int", 42, Integer, "42", false},
		{"int64", int64(7), Integer, "7", false},
		{"int pointer", &days, Integer, "3", false},
		{"date", ts, Date, "2005-08-23", false},
		{"month", ts, Month, "2005-08", false},
		{"timestamp", ts, Timestamp, "2005-08-23 15:04:05", false},
		{"time pointer", &ts, Date, "2005-08-23", false},
		{"string", "Action", Text, "Action", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, null := formatCell(tt.v, tt.kind)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.null, null)
		})
	}
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, sampleTable()))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title, underline, border, header, border, 2 rows, border, footer
	require.Len(t, lines, 9)
	assert.Equal(t, "Monthly Revenue Trend", lines[0])
	assert.Equal(t, strings.Repeat("=", len("Monthly Revenue Trend")), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "+"))
	assert.Contains(t, lines[3], "month")
	assert.Contains(t, lines[3], "growth_pct", "headers keep their case and underscores")
	assert.Contains(t, lines[5], "2005-05")
	assert.Contains(t, lines[5], "NULL")
	assert.Contains(t, lines[6], "-40.08")
	assert.True(t, strings.HasPrefix(lines[7], "+"))
	assert.Equal(t, "(2 months)", lines[8])
}

func TestCountNoun(t *testing.T) {
	assert.Equal(t, "1 film", countNoun(1, "film"))
	assert.Equal(t, "20 films", countNoun(20, "film"))
	assert.Equal(t, "0 categories", countNoun(0, "category"))
	assert.Equal(t, "3 statuses", countNoun(3, "status"))
	assert.Equal(t, "2 rows", countNoun(2, ""))
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleTable()))

	assert.Equal(t,
		"month,payment_count,total_revenue,growth_pct\n"+
			"2005-05,1,4.99,NULL\n"+
			"2005-06,1,2.99,-40.08\n",
		buf.String())
}

func TestWrite_CSVSeparatesTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleTable(), sampleTable()))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n\n"))
}

func TestWrite_JSONKeepsColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleTable()))

	out := buf.String()
	assert.Less(t, strings.Index(out, `"month"`), strings.Index(out, `"payment_count"`))
	assert.Less(t, strings.Index(out, `"payment_count"`), strings.Index(out, `"growth_pct"`))

	var decoded []struct {
		Report string           `json:"report"`
		Rows   []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "monthly-revenue", decoded[0].Report)
	require.Len(t, decoded[0].Rows, 2)
	assert.Nil(t, decoded[0].Rows[0]["growth_pct"])
	assert.Equal(t, "2005-06", decoded[0].Rows[1]["month"])
	assert.InDelta(t, -40.08, decoded[0].Rows[1]["growth_pct"], 0.0001)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleTable()))

	var decoded []struct {
		Report string           `yaml:"report"`
		Rows   []map[string]any `yaml:"rows"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	require.Len(t, decoded[0].Rows, 2)
	assert.Nil(t, decoded[0].Rows[0]["growth_pct"])
	assert.Equal(t, "2005-05", decoded[0].Rows[0]["month"])
	assert.Equal(t, 1, decoded[0].Rows[0]["payment_count"])
	assert.Equal(t, -40.08, decoded[0].Rows[1]["growth_pct"])

	out := buf.String()
	assert.Less(t, strings.Index(out, "month:"), strings.Index(out, "payment_count:"))
}

func TestWrite_Deterministic(t *testing.T) {
	for _, f := range Formats {
		var a, b bytes.Buffer
		require.NoError(t, Write(&a, f, sampleTable()))
		require.NoError(t, Write(&b, f, sampleTable()))
		assert.Equal(t, a.Bytes(), b.Bytes(), string(f))
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), sampleTable())
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOutputFormat))
}
