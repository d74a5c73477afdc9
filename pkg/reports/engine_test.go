package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/rental-insights/pkg/apperrors"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

func TestCatalogue(t *testing.T) {
	defs := Catalogue()
	require.Len(t, defs, 10)

	assert.Equal(t, []string{
		"monthly-revenue",
		"top-films",
		"customer-lifetime",
		"store-profitability",
		"peak-hours",
		"inventory-turnover",
		"late-returns",
		"category-performance",
		"customer-acquisition",
		"actor-revenue",
	}, Names())

	for _, d := range defs {
		assert.NotEmpty(t, d.Title, d.Name)
		assert.NotEmpty(t, d.Description, d.Name)
		assert.NotEmpty(t, d.Noun, d.Name)
	}

	defs[0].Name = "changed"
	assert.Equal(t, "monthly-revenue", Catalogue()[0].Name, "callers get a copy")
}

func TestLookup(t *testing.T) {
	d, err := Lookup(" Top-Films ")
	require.NoError(t, err)
	assert.Equal(t, "top-films", d.Name)

	_, err = Lookup("rental-forecast")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownReport)
}

func TestSelect(t *testing.T) {
	defs, err := Select([]string{"late-returns", "monthly-revenue", "late-returns"})
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "monthly-revenue", defs[0].Name, "catalogue order")
	assert.Equal(t, "late-returns", defs[1].Name)

	all, err := Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	_, err = Select([]string{"nope"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownReport)
}

func TestDefinition_BuildColumnsMatchRows(t *testing.T) {
	ds := fixtureDataset(t)
	for _, d := range Catalogue() {
		table := d.Build(ds, fixtureOptions())
		assert.Equal(t, d.Name, table.Name)
		assert.Equal(t, d.Title, table.Title)
		for i, row := range table.Rows {
			assert.Len(t, row, len(table.Columns), "%s row %d", d.Name, i)
		}
	}
}

func TestEngine_Run(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine := NewEngine(zap.New(core))

	results, err := engine.Run(context.Background(), fixtureDataset(t), RunRequest{
		Reports: []string{"late-returns", "top-films"},
		Options: fixtureOptions(),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "top-films", results[0].Report.Name)
	assert.Equal(t, "late-returns", results[1].Report.Name)
	assert.Len(t, results[1].Table.Rows, 3)

	built := logs.FilterMessage("Report built").All()
	require.Len(t, built, 2)
	runID := built[0].ContextMap()["run_id"]
	assert.NotEmpty(t, runID)
	assert.Equal(t, runID, built[1].ContextMap()["run_id"])
}

func TestEngine_ParallelMatchesSerial(t *testing.T) {
	engine := NewEngine(nil)
	ds := fixtureDataset(t)

	serial, err := engine.Run(context.Background(), ds, RunRequest{Options: fixtureOptions()})
	require.NoError(t, err)
	parallel, err := engine.Run(context.Background(), ds, RunRequest{Options: fixtureOptions(), Parallel: true})
	require.NoError(t, err)

	assert.Equal(t, Tables(serial), Tables(parallel))
}

func TestEngine_RunErrors(t *testing.T) {
	engine := NewEngine(nil)
	ds := fixtureDataset(t)

	_, err := engine.Run(context.Background(), ds, RunRequest{Options: DefaultOptions(time.Time{})})
	assert.ErrorIs(t, err, apperrors.ErrMissingReferenceTime)

	_, err = engine.Run(context.Background(), ds, RunRequest{Reports: []string{"nope"}, Options: fixtureOptions()})
	assert.ErrorIs(t, err, apperrors.ErrUnknownReport)

	_, err = engine.Run(context.Background(), nil, RunRequest{Options: fixtureOptions()})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Run(ctx, ds, RunRequest{Options: fixtureOptions()})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = engine.Run(ctx, ds, RunRequest{Options: fixtureOptions(), Parallel: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, fixtureOptions().Validate())

	bad := []func(*Options){
		func(o *Options) { o.RetentionWindowDays = 0 },
		func(o *Options) { o.LateFeeMultiplier = amount("-0.5") },
		func(o *Options) { o.TopFilmsLimit = 0 },
		func(o *Options) { o.PeakHoursLimit = -1 },
		func(o *Options) { o.TopActorsLimit = 0 },
	}
	for i, mutate := range bad {
		o := fixtureOptions()
		mutate(&o)
		assert.Error(t, o.Validate(), "case %d", i)
	}
}

// Rendering the same snapshot twice must give identical bytes in every format.
func TestReports_Idempotent(t *testing.T) {
	engine := NewEngine(nil)

	render1 := func(format render.Format) []byte {
		ds, err := NewDataset(fixtureSnapshot(), Scope{})
		require.NoError(t, err)
		results, err := engine.Run(context.Background(), ds, RunRequest{Options: fixtureOptions(), Parallel: true})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, render.Write(&buf, format, Tables(results)...))
		return buf.Bytes()
	}

	for _, f := range render.Formats {
		first := render1(f)
		assert.NotEmpty(t, first)
		assert.Equal(t, first, render1(f), string(f))
	}
}
