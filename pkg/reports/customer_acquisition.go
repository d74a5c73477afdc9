package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// CustomerAcquisition lists each month in which customers were created, with
// that month's payment revenue alongside. Months without payments have no
// revenue figure rather than zero.
func CustomerAcquisition(ds *Dataset, _ Options) []models.AcquisitionMonth {
	acquired := make(map[time.Time]int)
	for _, c := range ds.customers {
		if !ds.scope.Contains(c.CreateDate) {
			continue
		}
		acquired[monthOf(c.CreateDate)]++
	}

	revenue := make(map[time.Time]decimal.Decimal)
	for _, p := range ds.payments {
		m := monthOf(p.PaymentDate)
		revenue[m] = revenue[m].Add(p.Amount)
	}

	months := make([]time.Time, 0, len(acquired))
	for m := range acquired {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	rows := make([]models.AcquisitionMonth, 0, len(months))
	for _, m := range months {
		row := models.AcquisitionMonth{Month: m, NewCustomers: acquired[m]}
		if rev, ok := revenue[m]; ok {
			v := money(rev)
			row.MonthlyRevenue = &v
			row.RevenuePerNewCustomer = ratio(rev, count(row.NewCustomers))
		}
		rows = append(rows, row)
	}
	return rows
}

func customerAcquisitionTable(ds *Dataset, opts Options) render.Table {
	rows := CustomerAcquisition(ds, opts)
	t := render.Table{
		Columns: []render.Column{
			{Name: "month", Kind: render.Month},
			{Name: "new_customers", Kind: render.Integer},
			{Name: "monthly_revenue", Kind: render.Number},
			{Name: "revenue_per_new_customer", Kind: render.Number},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Month, r.NewCustomers, r.MonthlyRevenue, r.RevenuePerNewCustomer})
	}
	return t
}
