package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// MonthlyRevenueTrend groups payments by calendar month. Growth compares each
// month with the row before it; the first month, and any month following a
// month with zero revenue, has no growth figure.
func MonthlyRevenueTrend(ds *Dataset, _ Options) []models.MonthlyRevenue {
	type bucket struct {
		count int
		total decimal.Decimal
	}
	buckets := make(map[time.Time]*bucket)
	for _, p := range ds.payments {
		m := monthOf(p.PaymentDate)
		b, ok := buckets[m]
		if !ok {
			b = &bucket{}
			buckets[m] = b
		}
		b.count++
		b.total = b.total.Add(p.Amount)
	}

	months := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	rows := make([]models.MonthlyRevenue, 0, len(months))
	var prev *decimal.Decimal
	for _, m := range months {
		b := buckets[m]
		row := models.MonthlyRevenue{
			Month:        m,
			PaymentCount: b.count,
			TotalRevenue: money(b.total),
			AvgPayment:   money(b.total.Div(count(b.count))),
		}
		if prev != nil {
			row.GrowthPct = percent(b.total.Sub(*prev), *prev)
		}
		total := b.total
		prev = &total
		rows = append(rows, row)
	}
	return rows
}

func monthlyRevenueTable(ds *Dataset, opts Options) render.Table {
	rows := MonthlyRevenueTrend(ds, opts)
	t := render.Table{
		Columns: []render.Column{
			{Name: "month", Kind: render.Month},
			{Name: "payment_count", Kind: render.Integer},
			{Name: "total_revenue", Kind: render.Number},
			{Name: "avg_payment", Kind: render.Number},
			{Name: "month_over_month_growth_pct", Kind: render.Number},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Month, r.PaymentCount, r.TotalRevenue, r.AvgPayment, r.GrowthPct})
	}
	return t
}
