package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// CategoryPerformance reports every category with two independent dense
// ranks: by revenue and by number of paid rentals. A film listed under
// several categories counts toward each of them.
func CategoryPerformance(ds *Dataset, _ Options) []models.CategoryPerformance {
	revenue := make(map[int64]decimal.Decimal)
	rentals := make(map[int64]map[int64]struct{})
	for _, pr := range ds.paidRentals() {
		for _, c := range ds.categoriesOf[pr.film.ID] {
			revenue[c.ID] = revenue[c.ID].Add(pr.payment.Amount)
			if rentals[c.ID] == nil {
				rentals[c.ID] = make(map[int64]struct{})
			}
			rentals[c.ID][pr.rental.ID] = struct{}{}
		}
	}

	rows := make([]models.CategoryPerformance, len(ds.categories))
	revenueKeys := make([]decimal.Decimal, len(ds.categories))
	rentalKeys := make([]decimal.Decimal, len(ds.categories))
	for i, c := range ds.categories {
		n := len(rentals[c.ID])
		films := ds.filmsPerCat[c.ID]
		rows[i] = models.CategoryPerformance{
			CategoryID:       c.ID,
			Name:             c.Name,
			TotalRevenue:     money(revenue[c.ID]),
			RentalCount:      n,
			FilmCount:        films,
			RevenuePerRental: ratio(revenue[c.ID], count(n)),
			RentalsPerFilm:   ratio(count(n), count(films)),
		}
		revenueKeys[i] = revenue[c.ID]
		rentalKeys[i] = count(n)
	}

	revenueRanks := denseRank(revenueKeys)
	popularityRanks := denseRank(rentalKeys)
	for i := range rows {
		rows[i].RevenueRank = revenueRanks[i]
		rows[i].PopularityRank = popularityRanks[i]
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].RevenueRank != rows[j].RevenueRank {
			return rows[i].RevenueRank < rows[j].RevenueRank
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].CategoryID < rows[j].CategoryID
	})
	return rows
}

func categoryPerformanceTable(ds *Dataset, opts Options) render.Table {
	rows := CategoryPerformance(ds, opts)
	t := render.Table{
		Columns: []render.Column{
			{Name: "category", Kind: render.Text},
			{Name: "total_revenue", Kind: render.Number},
			{Name: "rental_count", Kind: render.Integer},
			{Name: "film_count", Kind: render.Integer},
			{Name: "revenue_per_rental", Kind: render.Number},
			{Name: "rentals_per_film", Kind: render.Number},
			{Name: "revenue_rank", Kind: render.Integer},
			{Name: "popularity_rank", Kind: render.Integer},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Name, r.TotalRevenue, r.RentalCount, r.FilmCount,
			r.RevenuePerRental, r.RentalsPerFilm, r.RevenueRank, r.PopularityRank,
		})
	}
	return t
}
