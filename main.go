package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/rental-insights/pkg/adapters/datasource"
	_ "github.com/ekaya-inc/rental-insights/pkg/adapters/datasource/mssql"    // registers "mssql"
	_ "github.com/ekaya-inc/rental-insights/pkg/adapters/datasource/postgres" // registers "postgres"
	"github.com/ekaya-inc/rental-insights/pkg/config"
	"github.com/ekaya-inc/rental-insights/pkg/database"
	"github.com/ekaya-inc/rental-insights/pkg/logging"
	"github.com/ekaya-inc/rental-insights/pkg/render"
	"github.com/ekaya-inc/rental-insights/pkg/reports"
)

// Version is set at build time via ldflags
var Version = "dev"

// cliOptions holds the command-line flags. Empty values defer to the config file.
type cliOptions struct {
	configPath string
	reports    []string
	format     string
	asOf       string
	storeID    int64
	from       string
	to         string
	parallel   bool
	list       bool
	check      bool
	noCache    bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	var reportList string

	fs := flag.NewFlagSet("rental-insights", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "path to the YAML config file")
	fs.StringVar(&reportList, "report", "", "comma-separated reports to run (default all)")
	fs.StringVar(&opts.format, "format", "", "output format: "+joinFormats())
	fs.StringVar(&opts.asOf, "as-of", "", "reference time for age calculations (default: latest activity in the data)")
	fs.Int64Var(&opts.storeID, "store", 0, "restrict to one store id (0 = all stores)")
	fs.StringVar(&opts.from, "from", "", "inclusive start of the activity window")
	fs.StringVar(&opts.to, "to", "", "exclusive end of the activity window")
	fs.BoolVar(&opts.parallel, "parallel", false, "build reports concurrently")
	fs.BoolVar(&opts.list, "list", false, "list the available reports and exit")
	fs.BoolVar(&opts.check, "check", false, "verify the database connection and exit")
	fs.BoolVar(&opts.noCache, "no-cache", false, "bypass the Redis snapshot cache")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if fs.NArg() > 0 {
		return cliOptions{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	for _, name := range strings.Split(reportList, ",") {
		if name = strings.TrimSpace(name); name != "" {
			opts.reports = append(opts.reports, name)
		}
	}
	return opts, nil
}

func joinFormats() string {
	names := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// scope converts the scope flags into a reports.Scope.
func (o cliOptions) scope() (reports.Scope, error) {
	s := reports.Scope{StoreID: o.storeID}
	var err error
	if o.from != "" {
		if s.From, err = config.ParseReferenceTime(o.from); err != nil {
			return reports.Scope{}, fmt.Errorf("-from: %w", err)
		}
	}
	if o.to != "" {
		if s.To, err = config.ParseReferenceTime(o.to); err != nil {
			return reports.Scope{}, fmt.Errorf("-to: %w", err)
		}
	}
	return s, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "rental-insights: %s\n", logging.SanitizeError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.version {
		_, err := fmt.Fprintf(stdout, "rental-insights %s\n", Version)
		return err
	}

	cfg, err := config.Load(opts.configPath, Version)
	if err != nil {
		return err
	}

	format := render.Format(cfg.Reports.Format)
	if opts.format != "" {
		format = render.Format(opts.format)
	}
	if format, err = render.ParseFormat(string(format)); err != nil {
		return err
	}

	if opts.list {
		return render.Write(stdout, format, catalogueTable())
	}

	// Reject bad input before opening a connection.
	if _, err := reports.Select(opts.reports); err != nil {
		return err
	}
	scope, err := opts.scope()
	if err != nil {
		return err
	}
	if err := scope.Validate(); err != nil {
		return err
	}
	var asOf time.Time
	asOfValue := cfg.Reports.AsOf
	if opts.asOf != "" {
		asOfValue = opts.asOf
	}
	if asOfValue != "" {
		if asOf, err = config.ParseReferenceTime(asOfValue); err != nil {
			return fmt.Errorf("as-of: %w", err)
		}
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("database_type", cfg.Database.Type),
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)))

	connMap := cfg.Database.ConnectionMap()
	var reader datasource.SnapshotReader
	reader, err = datasource.NewReader(ctx, cfg.Database.Type, connMap, logger)
	if err != nil {
		return err
	}
	if cfg.Cache.Enabled() && !opts.noCache && !opts.check {
		client, err := database.NewRedisClient(ctx, &cfg.Cache)
		if err != nil {
			logger.Warn("Snapshot cache disabled", zap.String("error", logging.SanitizeError(err)))
		} else {
			defer client.Close()
			key := datasource.SnapshotCacheKey(cfg.Cache.Prefix, cfg.Database.Type, connMap)
			reader = datasource.NewCachedReader(reader, database.NewRedisBlobStore(client), key, cfg.Cache.TTL, logger)
		}
	}
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Warn("Failed to close datasource", zap.String("error", logging.SanitizeError(err)))
		}
	}()

	if opts.check {
		if err := reader.TestConnection(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(stdout, "connection ok")
		return err
	}

	snap, err := reader.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if asOf.IsZero() {
		asOf = snap.LatestActivity()
		logger.Info("Using latest activity as reference time", zap.Time("as_of", asOf))
	}

	ds, err := reports.NewDataset(snap, scope)
	if err != nil {
		return err
	}

	results, err := reports.NewEngine(logger).Run(ctx, ds, reports.RunRequest{
		Reports:  opts.reports,
		Options:  reports.OptionsFromConfig(cfg.Reports, asOf),
		Parallel: opts.parallel || cfg.Reports.Parallel,
	})
	if err != nil {
		return err
	}

	return render.Write(stdout, format, reports.Tables(results)...)
}

// catalogueTable describes the available reports.
func catalogueTable() render.Table {
	t := render.Table{
		Name:  "catalogue",
		Title: "Available reports",
		Noun:  "report",
		Columns: []render.Column{
			{Name: "name", Kind: render.Text},
			{Name: "title", Kind: render.Text},
			{Name: "description", Kind: render.Text},
		},
	}
	for _, d := range reports.Catalogue() {
		t.Rows = append(t.Rows, []any{d.Name, d.Title, d.Description})
	}
	return t
}
