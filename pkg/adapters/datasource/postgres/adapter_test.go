package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/rental-insights/pkg/adapters/datasource"
	"github.com/ekaya-inc/rental-insights/pkg/testhelpers"
)

func TestFromMap(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		want    *Config
		wantErr string
	}{
		{
			name: "valid config with JSON port",
			config: map[string]any{
				"host":     "localhost",
				"port":     float64(5432), // JSON numbers are float64
				"user":     "testuser",
				"password": "testpass",
				"database": "testdb",
				"ssl_mode": "disable",
			},
			want: &Config{Host: "localhost", Port: 5432, User: "testuser", Password: "testpass", Database: "testdb", SSLMode: "disable"},
		},
		{
			name: "int port and pool size",
			config: map[string]any{
				"host":            "localhost",
				"port":            5433,
				"user":            "testuser",
				"database":        "testdb",
				"max_connections": 8,
			},
			want: &Config{Host: "localhost", Port: 5433, User: "testuser", Database: "testdb", SSLMode: DefaultSSLMode(), MaxConnections: 8},
		},
		{
			name: "defaults",
			config: map[string]any{
				"host":     "localhost",
				"user":     "testuser",
				"database": "testdb",
			},
			want: &Config{Host: "localhost", Port: DefaultPort(), User: "testuser", Database: "testdb", SSLMode: DefaultSSLMode()},
		},
		{
			name: "legacy name field",
			config: map[string]any{
				"host": "localhost",
				"user": "testuser",
				"name": "legacy",
			},
			want: &Config{Host: "localhost", Port: DefaultPort(), User: "testuser", Database: "legacy", SSLMode: DefaultSSLMode()},
		},
		{
			name:    "missing host",
			config:  map[string]any{"user": "testuser", "database": "testdb"},
			wantErr: "host is required",
		},
		{
			name:    "empty host",
			config:  map[string]any{"host": "", "user": "testuser", "database": "testdb"},
			wantErr: "host is required",
		},
		{
			name:    "missing user",
			config:  map[string]any{"host": "localhost", "database": "testdb"},
			wantErr: "user is required",
		},
		{
			name:    "missing database",
			config:  map[string]any{"host": "localhost", "user": "testuser"},
			wantErr: "database is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromMap(tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, 5432, DefaultPort())
	assert.Equal(t, "require", DefaultSSLMode())
}

func TestRegistered(t *testing.T) {
	assert.True(t, datasource.IsRegistered("postgres"))
}

// Integration tests - use the shared seeded container

func TestAdapter_Integration(t *testing.T) {
	store := testhelpers.GetTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reader, err := datasource.NewReader(ctx, "postgres", store.ConnectionMap(), zap.NewNop())
	require.NoError(t, err)
	defer reader.Close()

	require.NoError(t, reader.TestConnection(ctx))

	snap, err := reader.LoadSnapshot(ctx)
	require.NoError(t, err)

	assert.Len(t, snap.Films, 4)
	assert.Len(t, snap.Rentals, 4)
	assert.Len(t, snap.Payments, 4)
	assert.Len(t, snap.Customers, 3)
	assert.Len(t, snap.Stores, 2)

	assert.Equal(t, "ACADEMY DINOSAUR", snap.Films[0].Title)
	assert.Equal(t, "0.99", snap.Films[0].RentalRate.StringFixed(2))
	assert.Equal(t, 3, snap.Films[0].RentalDuration)

	assert.Nil(t, snap.Rentals[2].ReturnDate, "rental 3 was never returned")
	assert.Nil(t, snap.Payments[3].RentalID, "payment 4 has no rental")
	assert.Empty(t, snap.Customers[2].Email, "NULL email loads as empty")

	assert.Equal(t, time.Date(2005, 6, 30, 18, 0, 0, 0, time.UTC), snap.LatestActivity())
}

func TestAdapter_TestConnection_VerifiesDatabaseName(t *testing.T) {
	store := testhelpers.GetTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := &Config{
		Host:     store.Host,
		Port:     store.Port,
		User:     store.User,
		Password: store.Password,
		Database: "nonexistent_database_12345",
		SSLMode:  "disable",
	}

	// An unknown database is a permanent error, so no retries are attempted.
	adapter, err := NewAdapter(ctx, cfg, nil)
	if err != nil {
		assert.Contains(t, err.Error(), "does not exist")
		return
	}
	defer adapter.Close()

	assert.Error(t, adapter.TestConnection(ctx))
}

func TestAdapter_ConnectionFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping connection failure test in short mode")
	}

	cfg := &Config{
		Host:     "localhost",
		Port:     59999, // unlikely to be listening
		User:     "nonexistent",
		Password: "wrong-secret",
		Database: "nodb",
		SSLMode:  "disable",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewAdapter(ctx, cfg, nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "wrong-secret", "errors must not echo the password")
}

func TestNewAdapter_KeepsCancellation(t *testing.T) {
	cfg := &Config{
		Host:     "localhost",
		Port:     59999,
		User:     "nonexistent",
		Password: "wrong-secret",
		Database: "nodb",
		SSLMode:  "disable",
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAdapter(ctx, cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "callers can tell an interrupted connect from a failed one")
	assert.NotContains(t, err.Error(), "wrong-secret")
}
