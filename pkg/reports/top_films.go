package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// TopFilms ranks films by the revenue of their paid rentals. Copies counts the
// distinct copies that produced a paid rental, so a film is only listed when
// it has at least one. A film in several categories is reported under the one
// with the lowest id; films with no category are left out.
func TopFilms(ds *Dataset, opts Options) []models.FilmRevenue {
	type agg struct {
		film    models.Film
		revenue decimal.Decimal
		rentals map[int64]struct{}
		copies  map[int64]struct{}
	}
	byFilm := make(map[int64]*agg)
	for _, pr := range ds.paidRentals() {
		a, ok := byFilm[pr.film.ID]
		if !ok {
			a = &agg{film: pr.film, rentals: map[int64]struct{}{}, copies: map[int64]struct{}{}}
			byFilm[pr.film.ID] = a
		}
		a.revenue = a.revenue.Add(pr.payment.Amount)
		a.rentals[pr.rental.ID] = struct{}{}
		a.copies[pr.copyID] = struct{}{}
	}

	type ranked struct {
		row     models.FilmRevenue
		revenue decimal.Decimal
	}
	out := make([]ranked, 0, len(byFilm))
	for _, a := range byFilm {
		cats := ds.categoriesOf[a.film.ID]
		if len(cats) == 0 || len(a.copies) == 0 {
			continue
		}
		copies := count(len(a.copies))
		out = append(out, ranked{
			revenue: a.revenue,
			row: models.FilmRevenue{
				FilmID:         a.film.ID,
				Title:          a.film.Title,
				Category:       cats[0].Name,
				TotalRevenue:   money(a.revenue),
				RentalCount:    len(a.rentals),
				CopiesInStock:  len(a.copies),
				RevenuePerCopy: ratio(a.revenue, copies),
				RentalsPerCopy: ratio(count(len(a.rentals)), copies),
			},
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].revenue.Cmp(out[j].revenue); c != 0 {
			return c > 0
		}
		if out[i].row.Title != out[j].row.Title {
			return out[i].row.Title < out[j].row.Title
		}
		return out[i].row.FilmID < out[j].row.FilmID
	})

	if len(out) > opts.TopFilmsLimit {
		out = out[:opts.TopFilmsLimit]
	}
	rows := make([]models.FilmRevenue, len(out))
	for i, r := range out {
		rows[i] = r.row
	}
	return rows
}

func topFilmsTable(ds *Dataset, opts Options) render.Table {
	rows := TopFilms(ds, opts)
	t := render.Table{
		Columns: []render.Column{
			{Name: "film_id", Kind: render.Integer},
			{Name: "title", Kind: render.Text},
			{Name: "category", Kind: render.Text},
			{Name: "total_revenue", Kind: render.Number},
			{Name: "rental_count", Kind: render.Integer},
			{Name: "copies_in_stock", Kind: render.Integer},
			{Name: "revenue_per_copy", Kind: render.Number},
			{Name: "rentals_per_copy", Kind: render.Number},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.FilmID, r.Title, r.Category, r.TotalRevenue,
			r.RentalCount, r.CopiesInStock, r.RevenuePerCopy, r.RentalsPerCopy,
		})
	}
	return t
}
