package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/rental-insights/pkg/models"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// ActorRevenue credits the full payment of each paid rental to every actor in
// the rented film. Only actors with at least one paid rental are listed.
// FilmCount is every film the actor appears in, rented or not.
func ActorRevenue(ds *Dataset, opts Options) []models.ActorRevenue {
	revenue := make(map[int64]decimal.Decimal)
	rentals := make(map[int64]map[int64]struct{})
	for _, pr := range ds.paidRentals() {
		for _, actorID := range ds.actorsOfFilm[pr.film.ID] {
			revenue[actorID] = revenue[actorID].Add(pr.payment.Amount)
			if rentals[actorID] == nil {
				rentals[actorID] = make(map[int64]struct{})
			}
			rentals[actorID][pr.rental.ID] = struct{}{}
		}
	}

	type ranked struct {
		row     models.ActorRevenue
		revenue decimal.Decimal
	}
	out := make([]ranked, 0, len(rentals))
	for _, a := range ds.actors {
		paid, ok := rentals[a.ID]
		if !ok {
			continue
		}
		films := len(ds.filmsOfActor[a.ID])
		out = append(out, ranked{
			revenue: revenue[a.ID],
			row: models.ActorRevenue{
				ActorID:        a.ID,
				Name:           a.FullName(),
				FilmCount:      films,
				RentalCount:    len(paid),
				TotalRevenue:   money(revenue[a.ID]),
				RevenuePerFilm: ratio(revenue[a.ID], count(films)),
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].revenue.Cmp(out[j].revenue); c != 0 {
			return c > 0
		}
		if out[i].row.Name != out[j].row.Name {
			return out[i].row.Name < out[j].row.Name
		}
		return out[i].row.ActorID < out[j].row.ActorID
	})

	if len(out) > opts.TopActorsLimit {
		out = out[:opts.TopActorsLimit]
	}
	rows := make([]models.ActorRevenue, len(out))
	for i, r := range out {
		rows[i] = r.row
	}
	return rows
}

func actorRevenueTable(ds *Dataset, opts Options) render.Table {
	rows := ActorRevenue(ds, opts)
	t := render.Table{
		Columns: []render.Column{
			{Name: "actor_id", Kind: render.Integer},
			{Name: "actor", Kind: render.Text},
			{Name: "film_count", Kind: render.Integer},
			{Name: "rental_count", Kind: render.Integer},
			{Name: "total_revenue", Kind: render.Number},
			{Name: "revenue_per_film", Kind: render.Number},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.ActorID, r.Name, r.FilmCount, r.RentalCount, r.TotalRevenue, r.RevenuePerFilm,
		})
	}
	return t
}
