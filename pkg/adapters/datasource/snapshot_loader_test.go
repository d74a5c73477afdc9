package datasource

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/rental-insights/pkg/models"
)

// fakeRows serves canned rows, converting each value to its scan target's type.
type fakeRows struct {
	rows   [][]any
	pos    int
	closed bool
	err    error
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		v := reflect.ValueOf(row[i])
		if dv.Kind() == reflect.Pointer {
			p := reflect.New(dv.Type().Elem())
			p.Elem().Set(v.Convert(dv.Type().Elem()))
			dv.Set(p)
			continue
		}
		dv.Set(v.Convert(dv.Type()))
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

// fakeQuerier answers each table query from a map keyed by table name.
type fakeQuerier struct {
	tables  map[string][][]any
	opened  []*fakeRows
	queries []string
	failOn  string
}

func (q *fakeQuerier) Query(ctx context.Context, query string) (Rows, error) {
	q.queries = append(q.queries, query)
	for _, tl := range tableLoaders {
		if tl.query != query {
			continue
		}
		if tl.table == q.failOn {
			return nil, errors.New("relation does not exist")
		}
		rows := &fakeRows{rows: q.tables[tl.table]}
		q.opened = append(q.opened, rows)
		return rows, nil
	}
	return nil, fmt.Errorf("unexpected query %q", query)
}

func TestLoadSnapshot(t *testing.T) {
	rentedAt := time.Date(2005, 5, 24, 22, 53, 30, 0, time.UTC)
	returnedAt := time.Date(2005, 5, 26, 22, 4, 30, 0, time.UTC)

	q := &fakeQuerier{tables: map[string][][]any{
		"film":      {{int64(1), "ACADEMY DINOSAUR", int64(6), 0.99, 20.99}},
		"category":  {{int64(6), "Documentary"}},
		"rental":    {{int64(1), rentedAt, int64(367), int64(130), returnedAt, int64(1)}, {int64(2), rentedAt, int64(1525), int64(459), nil, int64(1)}},
		"payment":   {{int64(17503), int64(341), int64(2), int64(1520), 7.99, rentedAt}},
		"customer":  {{int64(130), int64(1), "CHARLOTTE", "HUNTER", "", rentedAt}},
		"city":      {{int64(300), "Lethbridge", int64(20)}},
		"country":   {{int64(20), "Canada"}},
		"inventory": {{int64(367), int64(80), int64(1)}},
	}}

	snap, err := LoadSnapshot(context.Background(), q, nil)
	require.NoError(t, err)

	require.Len(t, snap.Films, 1)
	assert.Equal(t, "ACADEMY DINOSAUR", snap.Films[0].Title)
	assert.Equal(t, 6, snap.Films[0].RentalDuration)
	assert.Equal(t, "0.99", snap.Films[0].RentalRate.String())
	assert.Equal(t, "20.99", snap.Films[0].ReplacementCost.String())

	require.Len(t, snap.Rentals, 2)
	require.NotNil(t, snap.Rentals[0].ReturnDate)
	assert.Equal(t, returnedAt, *snap.Rentals[0].ReturnDate)
	assert.Nil(t, snap.Rentals[1].ReturnDate, "NULL return_date stays nil")

	require.Len(t, snap.Payments, 1)
	require.NotNil(t, snap.Payments[0].RentalID)
	assert.Equal(t, int64(1520), *snap.Payments[0].RentalID)
	assert.Equal(t, "7.99", snap.Payments[0].Amount.String())

	assert.Equal(t, models.City{ID: 300, Name: "Lethbridge", CountryID: 20}, snap.Cities[0])
	assert.Empty(t, snap.Staff)
	assert.False(t, snap.LoadedAt.IsZero())

	assert.Len(t, q.queries, len(tableLoaders), "one query per table")
	for _, rows := range q.opened {
		assert.True(t, rows.closed, "every cursor is closed")
	}
}

func TestLoadSnapshot_QueriesArePortable(t *testing.T) {
	for _, tl := range tableLoaders {
		upper := strings.ToUpper(tl.query)
		assert.True(t, strings.HasPrefix(upper, "SELECT "), tl.table)
		assert.Contains(t, upper, " ORDER BY ", tl.table)
		assert.NotContains(t, tl.query, "*", tl.table)
		assert.NotContains(t, upper, "LIMIT", tl.table)
		assert.NotContains(t, tl.query, "::", tl.table)
	}
}

func TestLoadSnapshot_Errors(t *testing.T) {
	t.Run("query failure names the table", func(t *testing.T) {
		q := &fakeQuerier{failOn: "rental"}
		_, err := LoadSnapshot(context.Background(), q, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load rental")
	})

	t.Run("scan failure", func(t *testing.T) {
		q := &fakeQuerier{tables: map[string][][]any{"category": {{int64(1)}}}}
		_, err := LoadSnapshot(context.Background(), q, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load category: scan row 1")
		for _, rows := range q.opened {
			assert.True(t, rows.closed)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := LoadSnapshot(ctx, &fakeQuerier{}, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
