package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// StoreProfitability credits each paid rental to the home store of the
// customer who rented it. Customer count is the number of that store's
// customers with at least one paid rental.
func StoreProfitability(ds *Dataset, _ Options) []models.StoreProfitability {
	revenue := make(map[int64]decimal.Decimal)
	payers := make(map[int64]map[int64]struct{})
	for _, p := range ds.payments {
		if p.RentalID == nil {
			continue
		}
		r, ok := ds.rentalByID[*p.RentalID]
		if !ok {
			continue
		}
		c, ok := ds.customerByID[r.CustomerID]
		if !ok {
			continue
		}
		revenue[c.StoreID] = revenue[c.StoreID].Add(p.Amount)
		if payers[c.StoreID] == nil {
			payers[c.StoreID] = make(map[int64]struct{})
		}
		payers[c.StoreID][c.ID] = struct{}{}
	}

	type ranked struct {
		row     models.StoreProfitability
		revenue decimal.Decimal
	}
	out := make([]ranked, 0, len(ds.stores))
	for _, s := range ds.stores {
		loc := ds.storeLocations[s.ID]
		customers := len(payers[s.ID])
		staff := ds.staffPerStore[s.ID]
		out = append(out, ranked{
			revenue: revenue[s.ID],
			row: models.StoreProfitability{
				StoreID:            s.ID,
				City:               loc.city,
				Country:            loc.country,
				CustomerCount:      customers,
				StaffCount:         staff,
				TotalRevenue:       money(revenue[s.ID]),
				RevenuePerCustomer: ratio(revenue[s.ID], count(customers)),
				RevenuePerStaff:    ratio(revenue[s.ID], count(staff)),
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].revenue.Cmp(out[j].revenue); c != 0 {
			return c > 0
		}
		return out[i].row.StoreID < out[j].row.StoreID
	})

	rows := make([]models.StoreProfitability, len(out))
	for i, r := range out {
		rows[i] = r.row
	}
	return rows
}

func storeProfitabilityTable(ds *Dataset, opts Options) render.Table {
	rows := StoreProfitability(ds, opts)
	t := render.Table{
		Columns: []render.Column{
			{Name: "store_id", Kind: render.Integer},
			{Name: "city", Kind: render.Text},
			{Name: "country", Kind: render.Text},
			{Name: "customer_count", Kind: render.Integer},
			{Name: "staff_count", Kind: render.Integer},
			{Name: "total_revenue", Kind: render.Number},
			{Name: "revenue_per_customer", Kind: render.Number},
			{Name: "revenue_per_staff", Kind: render.Number},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.StoreID, r.City, r.Country, r.CustomerCount,
			r.StaffCount, r.TotalRevenue, r.RevenuePerCustomer, r.RevenuePerStaff,
		})
	}
	return t
}
