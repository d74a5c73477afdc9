package reports

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/rental-insights/pkg/apperrors"
	"github.com/ekaya-inc/rental-insights/pkg/render"
)

// Definition describes one report and how to build its table.
type Definition struct {
	Name        string
	Title       string
	Description string
	Noun        string // what one row is, for the row-count footer

	build func(*Dataset, Options) render.Table
}

// Build runs the report over ds and returns its rendered table.
func (d Definition) Build(ds *Dataset, opts Options) render.Table {
	t := d.build(ds, opts)
	t.Name = d.Name
	t.Title = d.Title
	t.Noun = d.Noun
	return t
}

var catalogue = []Definition{
	{
		Name:        "monthly-revenue",
		Title:       "Monthly Revenue Trend",
		Description: "Payments, revenue and average payment per month with month-over-month growth",
		Noun:        "month",
		build:       monthlyRevenueTable,
	},
	{
		Name:        "top-films",
		Title:       "Top Films by Revenue",
		Description: "Highest-earning films with revenue and rentals per copy",
		Noun:        "film",
		build:       topFilmsTable,
	},
	{
		Name:        "customer-lifetime",
		Title:       "Customer Lifetime Value and Retention",
		Description: "Average rentals, value and lifespan per customer with the active retention rate",
		Noun:        "summary",
		build:       customerLifetimeTable,
	},
	{
		Name:        "store-profitability",
		Title:       "Store Profitability",
		Description: "Revenue per store with revenue per customer and per staff member",
		Noun:        "store",
		build:       storeProfitabilityTable,
	},
	{
		Name:        "peak-hours",
		Title:       "Peak Rental Hours",
		Description: "Busiest day-of-week and hour-of-day slots by rental count",
		Noun:        "slot",
		build:       peakHoursTable,
	},
	{
		Name:        "inventory-turnover",
		Title:       "Inventory Turnover",
		Description: "Rentals per copy for every stocked film, banded High, Medium or Low",
		Noun:        "film",
		build:       inventoryTurnoverTable,
	},
	{
		Name:        "late-returns",
		Title:       "Late Return Rate",
		Description: "Rentals by return status with days overdue and potential late fees",
		Noun:        "status",
		build:       lateReturnsTable,
	},
	{
		Name:        "category-performance",
		Title:       "Category Popularity and Profitability",
		Description: "Revenue and rentals per category with independent revenue and popularity ranks",
		Noun:        "category",
		build:       categoryPerformanceTable,
	},
	{
		Name:        "customer-acquisition",
		Title:       "Customer Acquisition vs Revenue",
		Description: "New customers per month against that month's revenue",
		Noun:        "month",
		build:       customerAcquisitionTable,
	},
	{
		Name:        "actor-revenue",
		Title:       "Actor Revenue Leaders",
		Description: "Actors whose films earned the most from paid rentals",
		Noun:        "actor",
		build:       actorRevenueTable,
	},
}

// Catalogue returns every report in presentation order.
func Catalogue() []Definition {
	return append([]Definition(nil), catalogue...)
}

// Names returns the report identifiers in presentation order.
func Names() []string {
	names := make([]string, len(catalogue))
	for i, d := range catalogue {
		names[i] = d.Name
	}
	return names
}

// Lookup finds a report by name, ignoring case and surrounding space.
func Lookup(name string) (Definition, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, d := range catalogue {
		if d.Name == key {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q (available: %s)", apperrors.ErrUnknownReport, name, strings.Join(Names(), ", "))
}

// Select resolves names to definitions in catalogue order, dropping duplicates.
// An empty list selects every report.
func Select(names []string) ([]Definition, error) {
	if len(names) == 0 {
		return Catalogue(), nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		d, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		wanted[d.Name] = true
	}

	var defs []Definition
	for _, d := range catalogue {
		if wanted[d.Name] {
			defs = append(defs, d)
		}
	}
	return defs, nil
}
