package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ekaya-inc/rental-insights/pkg/logging"
	"github.com/ekaya-inc/rental-insights/pkg/models"
)

// tableLoader reads one table. Queries use only ANSI column lists, COALESCE
// and ORDER BY so both dialects run them unchanged.
type tableLoader struct {
	table string
	query string
	scan  func(rows Rows, snap *models.Snapshot) error
}

var tableLoaders = []tableLoader{
	{
		table: "film",
		query: `SELECT film_id, title, rental_duration, rental_rate, replacement_cost FROM film ORDER BY film_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var f models.Film
			var rate, cost float64
			if err := rows.Scan(&f.ID, &f.Title, &f.RentalDuration, &rate, &cost); err != nil {
				return err
			}
			f.RentalRate = decimal.NewFromFloat(rate)
			f.ReplacementCost = decimal.NewFromFloat(cost)
			snap.Films = append(snap.Films, f)
			return nil
		},
	},
	{
		table: "category",
		query: `SELECT category_id, name FROM category ORDER BY category_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var c models.Category
			if err := rows.Scan(&c.ID, &c.Name); err != nil {
				return err
			}
			snap.Categories = append(snap.Categories, c)
			return nil
		},
	},
	{
		table: "film_category",
		query: `SELECT film_id, category_id FROM film_category ORDER BY film_id, category_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var fc models.FilmCategory
			if err := rows.Scan(&fc.FilmID, &fc.CategoryID); err != nil {
				return err
			}
			snap.FilmCategories = append(snap.FilmCategories, fc)
			return nil
		},
	},
	{
		table: "actor",
		query: `SELECT actor_id, first_name, last_name FROM actor ORDER BY actor_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var a models.Actor
			if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
				return err
			}
			snap.Actors = append(snap.Actors, a)
			return nil
		},
	},
	{
		table: "film_actor",
		query: `SELECT actor_id, film_id FROM film_actor ORDER BY actor_id, film_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var fa models.FilmActor
			if err := rows.Scan(&fa.ActorID, &fa.FilmID); err != nil {
				return err
			}
			snap.FilmActors = append(snap.FilmActors, fa)
			return nil
		},
	},
	{
		table: "inventory",
		query: `SELECT inventory_id, film_id, store_id FROM inventory ORDER BY inventory_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var inv models.Inventory
			if err := rows.Scan(&inv.ID, &inv.FilmID, &inv.StoreID); err != nil {
				return err
			}
			snap.Inventory = append(snap.Inventory, inv)
			return nil
		},
	},
	{
		table: "rental",
		query: `SELECT rental_id, rental_date, inventory_id, customer_id, return_date, staff_id FROM rental ORDER BY rental_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var r models.Rental
			if err := rows.Scan(&r.ID, &r.RentalDate, &r.InventoryID, &r.CustomerID, &r.ReturnDate, &r.StaffID); err != nil {
				return err
			}
			snap.Rentals = append(snap.Rentals, r)
			return nil
		},
	},
	{
		table: "payment",
		query: `SELECT payment_id, customer_id, staff_id, rental_id, amount, payment_date FROM payment ORDER BY payment_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var p models.Payment
			var amount float64
			if err := rows.Scan(&p.ID, &p.CustomerID, &p.StaffID, &p.RentalID, &amount, &p.PaymentDate); err != nil {
				return err
			}
			p.Amount = decimal.NewFromFloat(amount)
			snap.Payments = append(snap.Payments, p)
			return nil
		},
	},
	{
		table: "customer",
		query: `SELECT customer_id, store_id, first_name, last_name, COALESCE(email, ''), create_date FROM customer ORDER BY customer_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var c models.Customer
			if err := rows.Scan(&c.ID, &c.StoreID, &c.FirstName, &c.LastName, &c.Email, &c.CreateDate); err != nil {
				return err
			}
			snap.Customers = append(snap.Customers, c)
			return nil
		},
	},
	{
		table: "store",
		query: `SELECT store_id, manager_staff_id, address_id FROM store ORDER BY store_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var s models.Store
			if err := rows.Scan(&s.ID, &s.ManagerStaffID, &s.AddressID); err != nil {
				return err
			}
			snap.Stores = append(snap.Stores, s)
			return nil
		},
	},
	{
		table: "staff",
		query: `SELECT staff_id, first_name, last_name, store_id FROM staff ORDER BY staff_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var s models.Staff
			if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.StoreID); err != nil {
				return err
			}
			snap.Staff = append(snap.Staff, s)
			return nil
		},
	},
	{
		table: "address",
		query: `SELECT address_id, city_id FROM address ORDER BY address_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var a models.Address
			if err := rows.Scan(&a.ID, &a.CityID); err != nil {
				return err
			}
			snap.Addresses = append(snap.Addresses, a)
			return nil
		},
	},
	{
		table: "city",
		query: `SELECT city_id, city, country_id FROM city ORDER BY city_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var c models.City
			if err := rows.Scan(&c.ID, &c.Name, &c.CountryID); err != nil {
				return err
			}
			snap.Cities = append(snap.Cities, c)
			return nil
		},
	},
	{
		table: "country",
		query: `SELECT country_id, country FROM country ORDER BY country_id`,
		scan: func(rows Rows, snap *models.Snapshot) error {
			var c models.Country
			if err := rows.Scan(&c.ID, &c.Name); err != nil {
				return err
			}
			snap.Countries = append(snap.Countries, c)
			return nil
		},
	},
}

// LoadSnapshot reads every table through q. The caller owns the transaction q
// is bound to; the loader only reads.
func LoadSnapshot(ctx context.Context, q Querier, logger *zap.Logger) (*models.Snapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	start := time.Now()
	snap := &models.Snapshot{}
	for _, tl := range tableLoaders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := loadTable(ctx, q, tl, snap)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", tl.table, err)
		}
		logger.Debug("Loaded table",
			zap.String("table", tl.table),
			zap.String("query", logging.SanitizeQuery(tl.query)),
			zap.Int("rows", n))
	}
	snap.LoadedAt = time.Now().UTC()

	logger.Info("Snapshot loaded",
		zap.Int("rentals", len(snap.Rentals)),
		zap.Int("payments", len(snap.Payments)),
		zap.Duration("duration", time.Since(start)))
	return snap, nil
}

func loadTable(ctx context.Context, q Querier, tl tableLoader, snap *models.Snapshot) (n int, err error) {
	rows, err := q.Query(ctx, tl.query)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for rows.Next() {
		if err := tl.scan(rows, snap); err != nil {
			return n, fmt.Errorf("scan row %d: %w", n+1, err)
		}
		n++
	}
	return n, rows.Err()
}
