package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// CustomerLifetimes returns one row per customer with at least one rental,
// highest lifetime value first. Customers who rented but never paid have a
// lifetime value of zero.
func CustomerLifetimes(ds *Dataset, _ Options) []models.CustomerLifetime {
	type history struct {
		rentals     int
		first, last time.Time
	}
	histories := make(map[int64]*history)
	for _, r := range ds.rentals {
		if _, ok := ds.customerByID[r.CustomerID]; !ok {
			continue
		}
		h, ok := histories[r.CustomerID]
		if !ok {
			h = &history{first: r.RentalDate, last: r.RentalDate}
			histories[r.CustomerID] = h
		}
		h.rentals++
		if r.RentalDate.Before(h.first) {
			h.first = r.RentalDate
		}
		if r.RentalDate.After(h.last) {
			h.last = r.RentalDate
		}
	}

	paid := make(map[int64]decimal.Decimal)
	for _, p := range ds.payments {
		paid[p.CustomerID] = paid[p.CustomerID].Add(p.Amount)
	}

	type ranked struct {
		row   models.CustomerLifetime
		value decimal.Decimal
	}
	out := make([]ranked, 0, len(histories))
	for _, c := range ds.customers {
		h, ok := histories[c.ID]
		if !ok {
			continue
		}
		out = append(out, ranked{
			value: paid[c.ID],
			row: models.CustomerLifetime{
				CustomerID:    c.ID,
				Name:          c.FirstName + " " + c.LastName,
				Email:         c.Email,
				RentalCount:   h.rentals,
				LifetimeValue: money(paid[c.ID]),
				FirstRental:   h.first,
				LastRental:    h.last,
				LifespanDays:  daysBetween(h.first, h.last),
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].value.Cmp(out[j].value); c != 0 {
			return c > 0
		}
		return out[i].row.CustomerID < out[j].row.CustomerID
	})

	rows := make([]models.CustomerLifetime, len(out))
	for i, r := range out {
		rows[i] = r.row
	}
	return rows
}

// SummarizeCustomerLifetimes averages the per-customer rows. A customer is
// active when their last rental falls within the retention window before AsOf.
func SummarizeCustomerLifetimes(rows []models.CustomerLifetime, opts Options) models.CustomerLifetimeSummary {
	var rentals, lifespan int
	var value decimal.Decimal
	active := 0
	cutoff := opts.AsOf.AddDate(0, 0, -opts.RetentionWindowDays)

	for _, r := range rows {
		rentals += r.RentalCount
		lifespan += r.LifespanDays
		value = value.Add(decimal.NewFromFloat(r.LifetimeValue))
		if !r.LastRental.Before(cutoff) {
			active++
		}
	}

	total := count(len(rows))
	return models.CustomerLifetimeSummary{
		TotalCustomers:   len(rows),
		AvgRentals:       ratio(count(rentals), total),
		AvgLifetimeValue: ratio(value, total),
		AvgLifespanDays:  ratio(count(lifespan), total),
		ActiveCustomers:  active,
		RetentionRatePct: percent(count(active), total),
	}
}

func customerLifetimeTable(ds *Dataset, opts Options) render.Table {
	s := SummarizeCustomerLifetimes(CustomerLifetimes(ds, opts), opts)
	return render.Table{
		Columns: []render.Column{
			{Name: "total_customers", Kind: render.Integer},
			{Name: "avg_rentals_per_customer", Kind: render.Number},
			{Name: "avg_lifetime_value", Kind: render.Number},
			{Name: "avg_lifespan_days", Kind: render.Number},
			{Name: "active_customers", Kind: render.Integer},
			{Name: "retention_rate_pct", Kind: render.Number},
		},
		Rows: [][]any{{
			s.TotalCustomers, s.AvgRentals, s.AvgLifetimeValue,
			s.AvgLifespanDays, s.ActiveCustomers, s.RetentionRatePct,
		}},
	}
}
