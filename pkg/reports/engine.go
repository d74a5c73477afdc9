package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// Result is the output of one report within a run.
type Result struct {
	Report   Definition
	Table    render.Table
	Duration time.Duration
}

// RunRequest selects the reports to run and how to run them.
type RunRequest struct {
	Reports  []string // empty means all
	Options  Options
	Parallel bool
}

// Engine runs catalogue reports over a Dataset.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an Engine. A nil logger discards logs.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger.Named("reports")}
}

// Run executes the requested reports and returns their results in catalogue
// order. Reports share ds read-only, so Parallel runs them concurrently. The
// context is checked before each report starts.
func (e *Engine) Run(ctx context.Context, ds *Dataset, req RunRequest) ([]Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	if err := req.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report options: %w", err)
	}
	defs, err := Select(req.Reports)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	logger := e.logger.With(zap.String("run_id", runID.String()))
	logger.Info("Starting report run",
		zap.Int("reports", len(defs)),
		zap.Bool("parallel", req.Parallel),
		zap.Time("as_of", req.Options.AsOf))

	start := time.Now()
	results := make([]Result, len(defs))

	if req.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, d := range defs {
			g.Go(func() error {
				r, err := e.runOne(gctx, logger, ds, d, req.Options)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, d := range defs {
			r, err := e.runOne(ctx, logger, ds, d, req.Options)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
	}

	logger.Info("Report run complete",
		zap.Int("reports", len(results)),
		zap.Duration("duration", time.Since(start)))
	return results, nil
}

func (e *Engine) runOne(ctx context.Context, logger *zap.Logger, ds *Dataset, d Definition, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("report %s not started: %w", d.Name, err)
	}

	start := time.Now()
	table := d.Build(ds, opts)
	elapsed := time.Since(start)

	logger.Debug("Report built",
		zap.String("report", d.Name),
		zap.Int("rows", len(table.Rows)),
		zap.Duration("duration", elapsed))

	return Result{Report: d, Table: table, Duration: elapsed}, nil
}

// Tables returns the tables of results in order.
func Tables(results []Result) []render.Table {
	tables := make([]render.Table, len(results))
	for i, r := range results {
		tables[i] = r.Table
	}
	return tables
}
