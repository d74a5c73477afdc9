package reports

import (
	"sort"

	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// PeakHours counts rentals per (day of week, hour of day) slot, busiest first.
func PeakHours(ds *Dataset, opts Options) []models.PeakHour {
	type slot struct {
		day  models.Weekday
		hour int
	}
	counts := make(map[slot]int)
	for _, r := range ds.rentals {
		counts[slot{day: models.WeekdayOf(r.RentalDate), hour: r.RentalDate.Hour()}]++
	}

	rows := make([]models.PeakHour, 0, len(counts))
	for s, n := range counts {
		rows = append(rows, models.PeakHour{
			DayOfWeek:   s.day,
			DayName:     s.day.String(),
			HourOfDay:   s.hour,
			RentalCount: n,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RentalCount != rows[j].RentalCount {
			return rows[i].RentalCount > rows[j].RentalCount
		}
		if rows[i].DayOfWeek != rows[j].DayOfWeek {
			return rows[i].DayOfWeek < rows[j].DayOfWeek
		}
		return rows[i].HourOfDay < rows[j].HourOfDay
	})

	if len(rows) > opts.PeakHoursLimit {
		rows = rows[:opts.PeakHoursLimit]
	}
	return rows
}

func peakHoursTable(ds *Dataset, opts Options) render.Table {
	rows := PeakHours(ds, opts)
	t := render.Table{
		Columns: []render.Column{
			{Name: "day_of_week", Kind: render.Integer},
			{Name: "day_name", Kind: render.Text},
			{Name: "hour_of_day", Kind: render.Integer},
			{Name: "rental_count", Kind: render.Integer},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{int(r.DayOfWeek), r.DayName, r.HourOfDay, r.RentalCount})
	}
	return t
}
