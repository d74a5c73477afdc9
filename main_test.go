package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/rental-insights/pkg/apperrors"
	"github.com/ekaya-inc/rental-insights/pkg/database"
	"github.com/ekaya-inc/rental-insights/pkg/testhelpers"
)

// noConfig points config loading at a file that does not exist, so only the
// environment is read.
func noConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.yaml")
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseFlags([]string{
		"-report", "top-films, late-returns,,",
		"-format", "csv",
		"-store", "2",
		"-from", "2005-06-01",
		"-parallel",
	}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, []string{"top-films", "late-returns"}, opts.reports)
	assert.Equal(t, "csv", opts.format)
	assert.Equal(t, int64(2), opts.storeID)
	assert.True(t, opts.parallel)

	scope, err := opts.scope()
	require.NoError(t, err)
	assert.Equal(t, int64(2), scope.StoreID)
	assert.Equal(t, time.Date(2005, 6, 1, 0, 0, 0, 0, time.UTC), scope.From)
	assert.True(t, scope.To.IsZero())
}

func TestParseFlags_Errors(t *testing.T) {
	var stderr bytes.Buffer

	_, err := parseFlags([]string{"-nope"}, &stderr)
	assert.Error(t, err)

	_, err = parseFlags([]string{"extra"}, &stderr)
	assert.Error(t, err)

	opts, err := parseFlags([]string{"-to", "yesterday"}, &stderr)
	require.NoError(t, err)
	_, err = opts.scope()
	assert.Error(t, err)
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Equal(t, "rental-insights dev\n", stdout.String())
}

func TestRun_List(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", noConfig(t), "-list", "-format", "csv"}, &stdout, &stderr)
	require.NoError(t, err)

	records, err := csv.NewReader(&stdout).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 11, "header plus ten reports")
	assert.Equal(t, []string{"name", "title", "description"}, records[0])
	assert.Equal(t, "monthly-revenue", records[1][0])
	assert.Equal(t, "actor-revenue", records[10][0])
}

// Invalid input must fail before any connection is attempted; nothing listens
// on the configured port.
func TestRun_RejectsBadInputBeforeConnecting(t *testing.T) {
	t.Setenv("PGPORT", "1")

	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"unknown format", []string{"-format", "xml"}, apperrors.ErrInvalidOutputFormat},
		{"unknown report", []string{"-report", "forecast"}, apperrors.ErrUnknownReport},
		{"bad as-of", []string{"-as-of", "soon"}, nil},
		{"reversed window", []string{"-from", "2005-07-01", "-to", "2005-06-01"}, apperrors.ErrInvalidScope},
		{"empty window", []string{"-from", "2005-07-01", "-to", "2005-07-01"}, apperrors.ErrInvalidScope},
		{"negative store", []string{"-store", "-1"}, apperrors.ErrInvalidScope},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), append([]string{"-config", noConfig(t)}, tt.args...), &stdout, &stderr)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_Integration(t *testing.T) {
	store := testhelpers.GetTestStore(t)

	t.Setenv("PGTYPE", "postgres")
	t.Setenv("PGHOST", store.Host)
	t.Setenv("PGPORT", strconv.Itoa(store.Port))
	t.Setenv("PGUSER", store.User)
	t.Setenv("PGPASSWORD", store.Password)
	t.Setenv("PGDATABASE", store.Database)
	t.Setenv("PGSSLMODE", "disable")
	t.Setenv("LOG_LEVEL", "warn")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, []string{
		"-config", noConfig(t),
		"-report", "late-returns",
		"-format", "csv",
		"-as-of", "2005-07-01",
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	records, err := csv.NewReader(&stdout).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "On Time", records[1][0])
	assert.Equal(t, "2", records[1][1])
	assert.Equal(t, "Never Returned", records[3][0])

	stdout.Reset()
	require.NoError(t, run(ctx, []string{"-config", noConfig(t), "-check"}, &stdout, &stderr))
	assert.Equal(t, "connection ok\n", stdout.String())
}

func TestRun_WithSnapshotCache(t *testing.T) {
	store := testhelpers.GetTestStore(t)
	cache := testhelpers.GetTestRedis(t)
	prefix := fmt.Sprintf("main-test-%d", time.Now().UnixNano())

	t.Setenv("PGTYPE", "postgres")
	t.Setenv("PGHOST", store.Host)
	t.Setenv("PGPORT", strconv.Itoa(store.Port))
	t.Setenv("PGUSER", store.User)
	t.Setenv("PGPASSWORD", store.Password)
	t.Setenv("PGDATABASE", store.Database)
	t.Setenv("PGSSLMODE", "disable")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REDIS_HOST", cache.Host)
	t.Setenv("REDIS_PORT", strconv.Itoa(cache.Port))
	t.Setenv("CACHE_PREFIX", prefix)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	args := []string{"-config", noConfig(t), "-format", "json", "-as-of", "2005-07-01"}
	var first, second, stderr bytes.Buffer
	require.NoError(t, run(ctx, args, &first, &stderr), stderr.String())
	require.NoError(t, run(ctx, args, &second, &stderr), stderr.String())
	assert.Equal(t, first.String(), second.String(), "cached snapshot renders identically")

	client, err := database.NewRedisClient(ctx, &cache)
	require.NoError(t, err)
	defer client.Close()

	keys, err := client.Keys(ctx, prefix+":snapshot:*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}
