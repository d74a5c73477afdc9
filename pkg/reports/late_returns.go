package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// DueDate is when a rental of film f becomes late.
func DueDate(r models.Rental, f models.Film) time.Time {
	return r.RentalDate.AddDate(0, 0, f.RentalDuration)
}

// ClassifyRental assigns exactly one return status. Days overdue is nil for
// on-time rentals; otherwise it counts whole days past the due date up to the
// return, or up to asOf for copies still out, and is never negative.
func ClassifyRental(r models.Rental, f models.Film, asOf time.Time) (models.ReturnStatus, *int) {
	due := DueDate(r, f)

	var status models.ReturnStatus
	var end time.Time
	switch {
	case r.ReturnDate == nil:
		status, end = models.NeverReturned, asOf
	case !r.ReturnDate.After(due):
		return models.OnTime, nil
	default:
		status, end = models.LateReturn, *r.ReturnDate
	}

	days := daysBetween(due, end)
	if days < 0 {
		days = 0
	}
	return status, &days
}

// LateReturns summarises rentals by return status in the fixed order On Time,
// Late Return, Never Returned. Every status appears, even with no rentals.
// Rentals whose film cannot be resolved have no due date and are left out.
func LateReturns(ds *Dataset, opts Options) []models.LateReturnSummary {
	type agg struct {
		rentals int
		days    int
		fees    decimal.Decimal
	}
	byStatus := make(map[models.ReturnStatus]*agg, len(models.ReturnStatuses))
	for _, s := range models.ReturnStatuses {
		byStatus[s] = &agg{}
	}

	total := 0
	for _, r := range ds.rentals {
		f, _, ok := ds.filmOfRental(r)
		if !ok {
			continue
		}
		status, overdue := ClassifyRental(r, f, opts.AsOf)
		a := byStatus[status]
		a.rentals++
		total++
		if overdue != nil {
			a.days += *overdue
			a.fees = a.fees.Add(count(*overdue).Mul(f.RentalRate).Mul(opts.LateFeeMultiplier))
		}
	}

	rows := make([]models.LateReturnSummary, 0, len(models.ReturnStatuses))
	for _, s := range models.ReturnStatuses {
		a := byStatus[s]
		row := models.LateReturnSummary{
			Status:            s,
			RentalCount:       a.rentals,
			PctOfRentals:      percent(count(a.rentals), count(total)),
			PotentialLateFees: money(a.fees),
		}
		if s != models.OnTime {
			row.AvgDaysOverdue = ratio(count(a.days), count(a.rentals))
		}
		rows = append(rows, row)
	}
	return rows
}

func lateReturnsTable(ds *Dataset, opts Options) render.Table {
	rows := LateReturns(ds, opts)
	t := render.Table{
		Columns: []render.Column{
			{Name: "return_status", Kind: render.Text},
			{Name: "rental_count", Kind: render.Integer},
			{Name: "pct_of_rentals", Kind: render.Number},
			{Name: "avg_days_overdue", Kind: render.Number},
			{Name: "potential_late_fees", Kind: render.Number},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			string(r.Status), r.RentalCount, r.PctOfRentals, r.AvgDaysOverdue, r.PotentialLateFees,
		})
	}
	return t
}
