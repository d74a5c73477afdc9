package testhelpers

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/ekaya-inc/rental-insights/pkg/database"
)

// PostgresImage is the image the rental store fixture runs on.
const PostgresImage = "postgres:16-alpine"

const (
	storeUser     = "rental"
	storePassword = "test_password"
	storeDatabase = "dvdrental"
)

//go:embed migrations/*.sql
var fixtureMigrations embed.FS

// FixtureMigrations returns the embedded schema and seed migrations.
func FixtureMigrations() fs.FS {
	return fixtureMigrations
}

// TestStore is a PostgreSQL container seeded with a small DVD rental dataset.
type TestStore struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	ConnStr   string
	Host      string
	Port      int
	User      string
	Password  string
	Database  string
}

// ConnectionMap returns the settings in the form the datasource adapters accept.
func (s *TestStore) ConnectionMap() map[string]any {
	return map[string]any{
		"host":     s.Host,
		"port":     s.Port,
		"user":     s.User,
		"password": s.Password,
		"database": s.Database,
		"ssl_mode": "disable",
	}
}

var (
	sharedTestStore     *TestStore
	sharedTestStoreOnce sync.Once
	sharedTestStoreErr  error
)

// GetTestStore returns a shared PostgreSQL container for integration tests.
// The container is created once, migrated and seeded, then reused across all
// tests in the run. Tests must treat it as read-only.
func GetTestStore(t *testing.T) *TestStore {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestStoreOnce.Do(func() {
		sharedTestStore, sharedTestStoreErr = setupTestStore()
	})

	if sharedTestStoreErr != nil {
		t.Fatalf("Failed to setup test store: %v", sharedTestStoreErr)
	}

	return sharedTestStore
}

func setupTestStore() (*TestStore, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       storeDatabase,
			"POSTGRES_USER":     storeUser,
			"POSTGRES_PASSWORD": storePassword,
		},
		// The entrypoint restarts the server once after initdb.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		return nil, fmt.Errorf("invalid container port %q: %w", mapped.Port(), err)
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		storeUser, storePassword, host, port, storeDatabase)

	if err := seed(connStr); err != nil {
		return nil, err
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test store: %w", err)
	}

	return &TestStore{
		Container: container,
		Pool:      db.Pool,
		ConnStr:   connStr,
		Host:      host,
		Port:      port,
		User:      storeUser,
		Password:  storePassword,
		Database:  storeDatabase,
	}, nil
}

// seed applies the fixture migrations using database/sql (required by golang-migrate).
func seed(connStr string) error {
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open sql connection: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, fixtureMigrations, "migrations", zap.NewNop()); err != nil {
		return fmt.Errorf("failed to seed test store: %w", err)
	}
	return nil
}
