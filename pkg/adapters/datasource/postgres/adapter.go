package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ekaya-inc/rental-insights/pkg/adapters/datasource"
	"github.com/ekaya-inc/rental-insights/pkg/config"
	"github.com/ekaya-inc/rental-insights/pkg/database"
	"github.com/ekaya-inc/rental-insights/pkg/logging"
	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/retry"
)

// Adapter provides PostgreSQL connectivity.
type Adapter struct {
	config *Config
	db     *database.DB
	logger *zap.Logger
}

// buildConnectionString builds a PostgreSQL URL with proper escaping.
// IMPORTANT: User-provided fields are escaped by net/url so that special characters
// in passwords (e.g., @, /, #, ?, spaces) cannot break URL parsing or inject parameters.
// When running in Docker, localhost is automatically resolved to host.docker.internal
// to allow connections to databases running on the host machine.
func buildConnectionString(cfg *Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}

	// Resolve localhost to host.docker.internal when running in Docker
	host := config.ResolveHostForDocker(cfg.Host)

	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// NewAdapter opens a connection pool to the rental store.
// Transient failures (refused connections, a server still starting) are retried.
func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	connStr := buildConnectionString(cfg)
	logger.Debug("Connecting to postgres", zap.String("dsn", logging.SanitizeConnectionString(connStr)))

	db, err := retry.DoIfRetryableWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            connStr,
			MaxConnections: cfg.MaxConnections,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", logging.SanitizedError(err))
	}

	return &Adapter{
		config: cfg,
		db:     db,
		logger: logger,
	}, nil
}

// TestConnection verifies the database is reachable with valid credentials.
// It checks:
// 1. Server connectivity (ping)
// 2. Database access (simple query)
// 3. Correct database name (to prevent connecting to wrong/default database)
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var result int
	if err := a.db.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	var currentDB string
	if err := a.db.QueryRow(ctx, "SELECT current_database()").Scan(&currentDB); err != nil {
		return fmt.Errorf("failed to get current database name: %w", err)
	}

	// PostgreSQL database names are case-sensitive, but we'll do case-insensitive comparison
	// to match MSSQL behavior and handle common configuration issues
	if !strings.EqualFold(currentDB, a.config.Database) {
		return fmt.Errorf("connected to wrong database: expected %q but connected to %q", a.config.Database, currentDB)
	}

	return nil
}

// LoadSnapshot reads every rental store table inside one REPEATABLE READ
// READ ONLY transaction. The transaction is always rolled back.
func (a *Adapter) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	tx, err := a.db.BeginSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tx.Rollback(context.Background()); err != nil && err != pgx.ErrTxClosed {
			a.logger.Warn("Failed to release snapshot transaction", zap.Error(err))
		}
	}()

	return datasource.LoadSnapshot(ctx, txQuerier{tx: tx}, a.logger)
}

// Close releases the connection pool.
func (a *Adapter) Close() error {
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

// txQuerier adapts a pgx transaction to datasource.Querier.
type txQuerier struct {
	tx pgx.Tx
}

func (q txQuerier) Query(ctx context.Context, query string) (datasource.Rows, error) {
	rows, err := q.tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows}, nil
}

// pgxRows gives pgx.Rows the error-returning Close of database/sql.
type pgxRows struct {
	pgx.Rows
}

func (r pgxRows) Close() error {
	r.Rows.Close()
	return r.Rows.Err()
}

// Ensure Adapter implements SnapshotReader at compile time.
var _ datasource.SnapshotReader = (*Adapter)(nil)
