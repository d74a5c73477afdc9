package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/rental-insights/pkg/models"
)

// asOf is the reference time for the fixture snapshot.
var asOf = time.Date(2005, 7, 1, 0, 0, 0, 0, time.UTC)

func at(month time.Month, day, hour, minute int) time.Time {
	return time.Date(2005, month, day, hour, minute, 0, 0, time.UTC)
}

func atPtr(month time.Month, day, hour, minute int) *time.Time {
	t := at(month, day, hour, minute)
	return &t
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rentalRef(id int64) *int64 {
	return &id
}

// fixtureSnapshot is a two-store slice of the DVD rental schema:
//
//	r1 film 1 copy 1 store 1, customer 1, on time,            paid 4.99 in May
//	r2 film 1 copy 2 store 1, customer 1, returned 7 days late, paid 2.99 in June
//	r3 film 2 copy 3 store 2, customer 2, never returned,       paid 5.99 in June
//	r4 film 2 copy 3 store 2, customer 2, on time,              unpaid
//	p4 is a 1.00 payment by customer 2 with no rental
//
// Film 3 has a copy that was never rented; film 4 has no copies.
func fixtureSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Films: []models.Film{
			{ID: 1, Title: "ACADEMY DINOSAUR", RentalDuration: 3, RentalRate: amount("0.99"), ReplacementCost: amount("20.99")},
			{ID: 2, Title: "BRIDE INTRIGUE", RentalDuration: 5, RentalRate: amount("4.99"), ReplacementCost: amount("24.99")},
			{ID: 3, Title: "CHAMBER ITALIAN", RentalDuration: 7, RentalRate: amount("2.99"), ReplacementCost: amount("14.99")},
			{ID: 4, Title: "DRIVING POLISH", RentalDuration: 6, RentalRate: amount("4.99"), ReplacementCost: amount("21.99")},
		},
		Categories: []models.Category{
			{ID: 1, Name: "Action"},
			{ID: 2, Name: "Comedy"},
			{ID: 3, Name: "Drama"},
		},
		FilmCategories: []models.FilmCategory{
			{FilmID: 1, CategoryID: 1},
			{FilmID: 2, CategoryID: 2},
			{FilmID: 3, CategoryID: 1},
			{FilmID: 4, CategoryID: 2},
		},
		Actors: []models.Actor{
			{ID: 1, FirstName: "PENELOPE", LastName: "GUINESS"},
			{ID: 2, FirstName: "NICK", LastName: "WAHLBERG"},
			{ID: 3, FirstName: "ED", LastName: "CHASE"},
		},
		FilmActors: []models.FilmActor{
			{ActorID: 1, FilmID: 1},
			{ActorID: 1, FilmID: 2},
			{ActorID: 2, FilmID: 2},
			{ActorID: 3, FilmID: 4},
		},
		Inventory: []models.Inventory{
			{ID: 1, FilmID: 1, StoreID: 1},
			{ID: 2, FilmID: 1, StoreID: 1},
			{ID: 3, FilmID: 2, StoreID: 2},
			{ID: 4, FilmID: 3, StoreID: 1},
		},
		Rentals: []models.Rental{
			{ID: 1, RentalDate: at(5, 24, 22, 0), InventoryID: 1, CustomerID: 1, ReturnDate: atPtr(5, 26, 9, 0), StaffID: 1},
			{ID: 2, RentalDate: at(6, 10, 10, 0), InventoryID: 2, CustomerID: 1, ReturnDate: atPtr(6, 20, 10, 0), StaffID: 1},
			{ID: 3, RentalDate: at(6, 15, 10, 0), InventoryID: 3, CustomerID: 2, StaffID: 2},
			{ID: 4, RentalDate: at(5, 24, 23, 30), InventoryID: 3, CustomerID: 2, ReturnDate: atPtr(5, 25, 8, 0), StaffID: 2},
		},
		Payments: []models.Payment{
			{ID: 1, CustomerID: 1, StaffID: 1, RentalID: rentalRef(1), Amount: amount("4.99"), PaymentDate: at(5, 25, 11, 0)},
			{ID: 2, CustomerID: 1, StaffID: 1, RentalID: rentalRef(2), Amount: amount("2.99"), PaymentDate: at(6, 11, 12, 0)},
			{ID: 3, CustomerID: 2, StaffID: 2, RentalID: rentalRef(3), Amount: amount("5.99"), PaymentDate: at(6, 16, 9, 0)},
			{ID: 4, CustomerID: 2, StaffID: 2, Amount: amount("1.00"), PaymentDate: at(6, 30, 18, 0)},
		},
		Customers: []models.Customer{
			{ID: 1, StoreID: 1, FirstName: "MARY", LastName: "SMITH", Email: "mary.smith@sakilacustomer.org", CreateDate: at(5, 10, 0, 0)},
			{ID: 2, StoreID: 2, FirstName: "PATRICIA", LastName: "JOHNSON", Email: "patricia.johnson@sakilacustomer.org", CreateDate: at(5, 20, 0, 0)},
			{ID: 3, StoreID: 1, FirstName: "LINDA", LastName: "WILLIAMS", Email: "linda.williams@sakilacustomer.org", CreateDate: at(4, 2, 0, 0)},
		},
		Stores: []models.Store{
			{ID: 1, ManagerStaffID: 1, AddressID: 1},
			{ID: 2, ManagerStaffID: 2, AddressID: 2},
		},
		Staff: []models.Staff{
			{ID: 1, FirstName: "Mike", LastName: "Hillyer", StoreID: 1},
			{ID: 2, FirstName: "Jon", LastName: "Stephens", StoreID: 2},
		},
		Addresses: []models.Address{
			{ID: 1, CityID: 1},
			{ID: 2, CityID: 2},
		},
		Cities: []models.City{
			{ID: 1, Name: "Lethbridge", CountryID: 1},
			{ID: 2, Name: "Woodridge", CountryID: 2},
		},
		Countries: []models.Country{
			{ID: 1, Name: "Canada"},
			{ID: 2, Name: "Australia"},
		},
	}
}

func fixtureDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewDataset(fixtureSnapshot(), Scope{})
	require.NoError(t, err)
	return ds
}

func fixtureOptions() Options {
	return DefaultOptions(asOf)
}

func ptr(v float64) *float64 {
	return &v
}
