package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// Turnover band thresholds, in rentals per copy.
const (
	highTurnoverRatio   = 10
	mediumTurnoverRatio = 5
)

// TurnoverBandFor classifies rentals per copy against the unrounded ratio.
func TurnoverBandFor(rentals, copies int) models.TurnoverBand {
	switch {
	case rentals >= highTurnoverRatio*copies:
		return models.HighTurnover
	case rentals >= mediumTurnoverRatio*copies:
		return models.MediumTurnover
	default:
		return models.LowTurnover
	}
}

// InventoryTurnover reports every film with at least one copy, including films
// never rented, ordered by rentals per copy.
func InventoryTurnover(ds *Dataset, opts Options) []models.InventoryTurnover {
	rentals := make(map[int64]int)
	last := make(map[int64]time.Time)
	for _, r := range ds.rentals {
		f, _, ok := ds.filmOfRental(r)
		if !ok {
			continue
		}
		rentals[f.ID]++
		if r.RentalDate.After(last[f.ID]) {
			last[f.ID] = r.RentalDate
		}
	}

	type ranked struct {
		row      models.InventoryTurnover
		turnover decimal.Decimal
	}
	out := make([]ranked, 0, len(ds.copiesOfFilm))
	for _, id := range ds.filmIDs {
		copies := ds.copiesOfFilm[id]
		if copies == 0 {
			continue
		}
		f := ds.films[id]
		n := rentals[id]
		turnover := count(n).Div(count(copies))

		row := models.InventoryTurnover{
			FilmID:        f.ID,
			Title:         f.Title,
			Copies:        copies,
			RentalCount:   n,
			TurnoverRatio: money(turnover),
			Band:          TurnoverBandFor(n, copies),
		}
		if cats := ds.categoriesOf[id]; len(cats) > 0 {
			row.Category = cats[0].Name
		}
		if lr, ok := last[id]; ok {
			lastRental := lr
			days := daysBetween(lastRental, opts.AsOf)
			row.LastRentalDate = &lastRental
			row.DaysSinceLastRental = &days
		}
		out = append(out, ranked{row: row, turnover: turnover})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].turnover.Cmp(out[j].turnover); c != 0 {
			return c > 0
		}
		if out[i].row.Title != out[j].row.Title {
			return out[i].row.Title < out[j].row.Title
		}
		return out[i].row.FilmID < out[j].row.FilmID
	})

	rows := make([]models.InventoryTurnover, len(out))
	for i, r := range out {
		rows[i] = r.row
	}
	return rows
}

func inventoryTurnoverTable(ds *Dataset, opts Options) render.Table {
	rows := InventoryTurnover(ds, opts)
	t := render.Table{
		Columns: []render.Column{
			{Name: "film_id", Kind: render.Integer},
			{Name: "title", Kind: render.Text},
			{Name: "category", Kind: render.Text},
			{Name: "copies", Kind: render.Integer},
			{Name: "rental_count", Kind: render.Integer},
			{Name: "turnover_ratio", Kind: render.Number},
			{Name: "turnover_band", Kind: render.Text},
			{Name: "last_rental_date", Kind: render.Timestamp},
			{Name: "days_since_last_rental", Kind: render.Integer},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.FilmID, r.Title, r.Category, r.Copies, r.RentalCount,
			r.TurnoverRatio, string(r.Band), r.LastRentalDate, r.DaysSinceLastRental,
		})
	}
	return t
}
