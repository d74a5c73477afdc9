package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"         // SQL Server driver
	_ "github.com/microsoft/go-mssqldb/azuread" // Azure AD support
	"go.uber.org/zap"

	"github.com/ekaya-inc/rental-insights/pkg/adapters/datasource"
	"github.com/ekaya-inc/rental-insights/pkg/config"
	"github.com/ekaya-inc/rental-insights/pkg/logging"
	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/retry"
)

// Adapter provides SQL Server connectivity with SQL or Azure AD service principal authentication.
type Adapter struct {
	config *Config
	db     *sql.DB
	logger *zap.Logger
}

// NewAdapter creates a SQL Server adapter with the given config and verifies
// the connection. Transient failures are retried.
func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	driver, connStr := buildConnectionString(cfg)
	logger.Debug("Connecting to mssql",
		zap.String("driver", driver),
		zap.String("dsn", logging.SanitizeConnectionString(connStr)))

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", logging.SanitizedError(err))
	}
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}

	// sql.Open is lazy; the ping is the first real connection attempt.
	if err := retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("connection test failed: %w", logging.SanitizedError(err))
	}

	return &Adapter{
		config: cfg,
		db:     db,
		logger: logger,
	}, nil
}

// buildConnectionString returns the driver name and sqlserver:// URL for cfg.
// SQL authentication carries credentials in the userinfo; service principals
// use the azuresql driver with fedauth parameters.
func buildConnectionString(cfg *Config) (driver, connStr string) {
	query := url.Values{}
	query.Add("database", cfg.Database)

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}
	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", strconv.Itoa(cfg.ConnectionTimeout))
	}
	query.Add("app name", "rental-insights")

	u := url.URL{
		Scheme: "sqlserver",
		// Resolve localhost to host.docker.internal when running in Docker
		Host: net.JoinHostPort(config.ResolveHostForDocker(cfg.Host), strconv.Itoa(cfg.Port)),
	}

	driver = "sqlserver"
	switch cfg.AuthMethod {
	case AuthServicePrincipal:
		query.Add("fedauth", "ActiveDirectoryServicePrincipal")
		query.Add("user id", cfg.ClientID+"@"+cfg.TenantID)
		query.Add("password", cfg.ClientSecret)
		driver = "azuresql"
	default:
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}

	u.RawQuery = query.Encode()
	return driver, u.String()
}

// TestConnection verifies the database is reachable with valid credentials.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var result int
	if err := a.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	var currentDB string
	if err := a.db.QueryRowContext(ctx, "SELECT DB_NAME()").Scan(&currentDB); err != nil {
		return fmt.Errorf("failed to get current database name: %w", err)
	}
	if !strings.EqualFold(currentDB, a.config.Database) {
		return fmt.Errorf("connected to wrong database: expected %q but connected to %q", a.config.Database, currentDB)
	}

	return nil
}

// LoadSnapshot reads every rental store table inside one transaction that
// sees a single consistent state. SNAPSHOT isolation is used when the database
// allows it; otherwise the reads fall back to SERIALIZABLE, which holds range
// locks and blocks writers until the load finishes. go-mssqldb rejects
// read-only transactions, so the transaction only ever runs SELECTs and is
// always rolled back.
func (a *Adapter) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	var state int
	if err := a.db.QueryRowContext(ctx, snapshotIsolationStateQuery).Scan(&state); err != nil {
		return nil, fmt.Errorf("failed to read snapshot isolation state: %w", err)
	}
	level := snapshotIsolationLevel(state)
	if level != sql.LevelSnapshot {
		a.logger.Warn("Snapshot isolation is not enabled; loading under SERIALIZABLE",
			zap.String("database", a.config.Database),
			zap.Int("snapshot_isolation_state", state))
	}

	tx, err := a.db.BeginTx(ctx, &sql.TxOptions{Isolation: level})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			a.logger.Warn("Failed to release snapshot transaction", zap.Error(err))
		}
	}()

	return datasource.LoadSnapshot(ctx, txQuerier{tx: tx}, a.logger)
}

// snapshotIsolationStateQuery reads ALLOW_SNAPSHOT_ISOLATION for the current
// database: 0 off, 1 on, 2 turning off, 3 turning on.
const snapshotIsolationStateQuery = "SELECT CAST(snapshot_isolation_state AS INT) FROM sys.databases WHERE name = DB_NAME()"

// snapshotIsolationLevel picks the isolation level for a snapshot load from
// sys.databases.snapshot_isolation_state.
func snapshotIsolationLevel(state int) sql.IsolationLevel {
	if state == 1 {
		return sql.LevelSnapshot
	}
	return sql.LevelSerializable
}

// Close releases the connection pool.
func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// txQuerier adapts a database/sql transaction to datasource.Querier.
type txQuerier struct {
	tx *sql.Tx
}

func (q txQuerier) Query(ctx context.Context, query string) (datasource.Rows, error) {
	rows, err := q.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure Adapter implements SnapshotReader at compile time.
var _ datasource.SnapshotReader = (*Adapter)(nil)
