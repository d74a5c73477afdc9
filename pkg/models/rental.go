package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Film is a catalogue title. RentalDuration is the number of days a copy may
// be kept before it is late.
type Film struct {
	ID              int64           `json:"film_id"`
	Title           string          `json:"title"`
	RentalDuration  int             `json:"rental_duration"`
	RentalRate      decimal.Decimal `json:"rental_rate"`
	ReplacementCost decimal.Decimal `json:"replacement_cost"`
}

// Category is a film genre.
type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"name"`
}

// FilmCategory links a film to a category.
type FilmCategory struct {
	FilmID     int64 `json:"film_id"`
	CategoryID int64 `json:"category_id"`
}

// Actor appears in films through FilmActor.
type Actor struct {
	ID        int64  `json:"actor_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName returns "FIRST LAST".
func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}

// FilmActor links an actor to a film.
type FilmActor struct {
	ActorID int64 `json:"actor_id"`
	FilmID  int64 `json:"film_id"`
}

// Inventory is one physical copy of a film held at a store.
type Inventory struct {
	ID      int64 `json:"inventory_id"`
	FilmID  int64 `json:"film_id"`
	StoreID int64 `json:"store_id"`
}

// Rental is the event of a customer taking an inventory copy.
// ReturnDate is nil while the copy is still out; when set it is never before RentalDate.
type Rental struct {
	ID          int64      `json:"rental_id"`
	RentalDate  time.Time  `json:"rental_date"`
	InventoryID int64      `json:"inventory_id"`
	CustomerID  int64      `json:"customer_id"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	StaffID     int64      `json:"staff_id"`
}

// Returned reports whether the rental has a return date.
func (r Rental) Returned() bool {
	return r.ReturnDate != nil
}

// Payment is money received, usually against a rental. Not every rental has one.
type Payment struct {
	ID          int64           `json:"payment_id"`
	CustomerID  int64           `json:"customer_id"`
	StaffID     int64           `json:"staff_id"`
	RentalID    *int64          `json:"rental_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
}

// Customer is registered at a home store.
type Customer struct {
	ID         int64     `json:"customer_id"`
	StoreID    int64     `json:"store_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	CreateDate time.Time `json:"create_date"`
}

// Store is a rental branch.
type Store struct {
	ID             int64 `json:"store_id"`
	ManagerStaffID int64 `json:"manager_staff_id"`
	AddressID      int64 `json:"address_id"`
}

// Staff is an employee attached to a store.
type Staff struct {
	ID        int64  `json:"staff_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	StoreID   int64  `json:"store_id"`
}

// Address is a postal address; only the city link is read.
type Address struct {
	ID     int64 `json:"address_id"`
	CityID int64 `json:"city_id"`
}

// City belongs to a country.
type City struct {
	ID        int64  `json:"city_id"`
	Name      string `json:"city"`
	CountryID int64  `json:"country_id"`
}

// Country is the top of the location hierarchy.
type Country struct {
	ID   int64  `json:"country_id"`
	Name string `json:"country"`
}
