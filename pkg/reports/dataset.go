package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/ekaya-inc/rental-insights/pkg/apperrors"
	"github.com/ekaya-inc/rental-insights/pkg/models"
)

// Scope narrows the facts a report sees. The zero Scope covers the whole store.
type Scope struct {
	// StoreID keeps one store's inventory (and the rentals and payments made
	// through it), customers, staff and store row. Zero means every store.
	StoreID int64

	// From and To bound rental_date, payment_date and customer create_date to
	// [From, To). A zero bound is open.
	From time.Time
	To   time.Time
}

// IsZero reports whether the scope covers the whole store.
func (s Scope) IsZero() bool {
	return s.StoreID == 0 && s.From.IsZero() && s.To.IsZero()
}

// Contains reports whether t falls inside the date window.
func (s Scope) Contains(t time.Time) bool {
	if !s.From.IsZero() && t.Before(s.From) {
		return false
	}
	if !s.To.IsZero() && !t.Before(s.To) {
		return false
	}
	return true
}

// Validate checks the scope without a snapshot. Unknown store ids are only
// detected by NewDataset.
func (s Scope) Validate() error {
	if s.StoreID < 0 {
		return fmt.Errorf("%w: store id must not be negative", apperrors.ErrInvalidScope)
	}
	if !s.From.IsZero() && !s.To.IsZero() && !s.To.After(s.From) {
		return fmt.Errorf("%w: to (%s) must be after from (%s)", apperrors.ErrInvalidScope,
			s.To.Format(time.DateOnly), s.From.Format(time.DateOnly))
	}
	return nil
}

type location struct {
	city    string
	country string
}

// Dataset is a Snapshot indexed for the reports and restricted to a Scope.
// It is immutable once built and safe for concurrent readers.
type Dataset struct {
	scope Scope

	films          map[int64]models.Film
	filmIDs        []int64 // ascending
	categories     []models.Category
	categoriesOf   map[int64][]models.Category // film id -> categories, ascending id
	filmsPerCat    map[int64]int
	actors         []models.Actor
	filmsOfActor   map[int64][]int64
	actorsOfFilm   map[int64][]int64
	inventory      map[int64]models.Inventory
	copiesOfFilm   map[int64]int
	rentals        []models.Rental
	rentalByID     map[int64]models.Rental
	payments       []models.Payment
	customers      []models.Customer
	customerByID   map[int64]models.Customer
	stores         []models.Store
	staffPerStore  map[int64]int
	storeLocations map[int64]location
}

// NewDataset indexes snap and applies scope. The snapshot is not modified.
func NewDataset(snap *models.Snapshot, scope Scope) (*Dataset, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is required")
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	ds := &Dataset{
		scope:          scope,
		films:          make(map[int64]models.Film, len(snap.Films)),
		categoriesOf:   make(map[int64][]models.Category),
		filmsPerCat:    make(map[int64]int),
		filmsOfActor:   make(map[int64][]int64),
		actorsOfFilm:   make(map[int64][]int64),
		inventory:      make(map[int64]models.Inventory),
		copiesOfFilm:   make(map[int64]int),
		rentalByID:     make(map[int64]models.Rental),
		customerByID:   make(map[int64]models.Customer),
		staffPerStore:  make(map[int64]int),
		storeLocations: make(map[int64]location),
	}

	ds.indexCatalogue(snap)
	if err := ds.indexStores(snap); err != nil {
		return nil, err
	}
	ds.indexFacts(snap)

	return ds, nil
}

// Scope returns the scope the dataset was built with.
func (ds *Dataset) Scope() Scope {
	return ds.scope
}

// indexCatalogue indexes the film dimensions. They are never scoped.
func (ds *Dataset) indexCatalogue(snap *models.Snapshot) {
	for _, f := range snap.Films {
		ds.films[f.ID] = f
		ds.filmIDs = append(ds.filmIDs, f.ID)
	}
	sortIDs(ds.filmIDs)

	ds.categories = append([]models.Category(nil), snap.Categories...)
	sort.Slice(ds.categories, func(i, j int) bool { return ds.categories[i].ID < ds.categories[j].ID })
	categoryByID := make(map[int64]models.Category, len(ds.categories))
	for _, c := range ds.categories {
		categoryByID[c.ID] = c
	}

	for _, fc := range snap.FilmCategories {
		c, ok := categoryByID[fc.CategoryID]
		if !ok {
			continue
		}
		if _, ok := ds.films[fc.FilmID]; !ok {
			continue
		}
		ds.categoriesOf[fc.FilmID] = append(ds.categoriesOf[fc.FilmID], c)
		ds.filmsPerCat[c.ID]++
	}
	for id := range ds.categoriesOf {
		cats := ds.categoriesOf[id]
		sort.Slice(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	}

	ds.actors = append([]models.Actor(nil), snap.Actors...)
	sort.Slice(ds.actors, func(i, j int) bool { return ds.actors[i].ID < ds.actors[j].ID })
	for _, fa := range snap.FilmActors {
		if _, ok := ds.films[fa.FilmID]; !ok {
			continue
		}
		ds.filmsOfActor[fa.ActorID] = append(ds.filmsOfActor[fa.ActorID], fa.FilmID)
		ds.actorsOfFilm[fa.FilmID] = append(ds.actorsOfFilm[fa.FilmID], fa.ActorID)
	}
	for id := range ds.filmsOfActor {
		sortIDs(ds.filmsOfActor[id])
	}
	for id := range ds.actorsOfFilm {
		sortIDs(ds.actorsOfFilm[id])
	}
}

func (ds *Dataset) indexStores(snap *models.Snapshot) error {
	addresses := make(map[int64]models.Address, len(snap.Addresses))
	for _, a := range snap.Addresses {
		addresses[a.ID] = a
	}
	cities := make(map[int64]models.City, len(snap.Cities))
	for _, c := range snap.Cities {
		cities[c.ID] = c
	}
	countries := make(map[int64]models.Country, len(snap.Countries))
	for _, c := range snap.Countries {
		countries[c.ID] = c
	}

	found := ds.scope.StoreID == 0
	for _, s := range snap.Stores {
		if ds.scope.StoreID != 0 && s.ID != ds.scope.StoreID {
			continue
		}
		found = true
		ds.stores = append(ds.stores, s)

		var loc location
		if a, ok := addresses[s.AddressID]; ok {
			if c, ok := cities[a.CityID]; ok {
				loc.city = c.Name
				loc.country = countries[c.CountryID].Name
			}
		}
		ds.storeLocations[s.ID] = loc
	}
	if !found {
		return fmt.Errorf("%w: store %d not found", apperrors.ErrInvalidScope, ds.scope.StoreID)
	}
	sort.Slice(ds.stores, func(i, j int) bool { return ds.stores[i].ID < ds.stores[j].ID })

	for _, st := range snap.Staff {
		if ds.inStore(st.StoreID) {
			ds.staffPerStore[st.StoreID]++
		}
	}
	return nil
}

// indexFacts applies the scope to inventory, customers, rentals and payments.
func (ds *Dataset) indexFacts(snap *models.Snapshot) {
	for _, inv := range snap.Inventory {
		if !ds.inStore(inv.StoreID) {
			continue
		}
		ds.inventory[inv.ID] = inv
		ds.copiesOfFilm[inv.FilmID]++
	}

	for _, c := range snap.Customers {
		if !ds.inStore(c.StoreID) {
			continue
		}
		ds.customers = append(ds.customers, c)
		ds.customerByID[c.ID] = c
	}
	sort.Slice(ds.customers, func(i, j int) bool { return ds.customers[i].ID < ds.customers[j].ID })

	// Store scope follows the rented copy; the date window is applied separately
	// so a payment inside the window still counts when its rental started earlier.
	storeRentals := make(map[int64]bool, len(snap.Rentals))
	for _, r := range snap.Rentals {
		if ds.scope.StoreID != 0 {
			if _, ok := ds.inventory[r.InventoryID]; !ok {
				continue
			}
		}
		storeRentals[r.ID] = true
		ds.rentalByID[r.ID] = r
		if ds.scope.Contains(r.RentalDate) {
			ds.rentals = append(ds.rentals, r)
		}
	}
	sort.Slice(ds.rentals, func(i, j int) bool { return ds.rentals[i].ID < ds.rentals[j].ID })

	for _, p := range snap.Payments {
		if !ds.scope.Contains(p.PaymentDate) {
			continue
		}
		if ds.scope.StoreID != 0 {
			if p.RentalID != nil {
				if !storeRentals[*p.RentalID] {
					continue
				}
			} else if _, ok := ds.customerByID[p.CustomerID]; !ok {
				continue
			}
		}
		ds.payments = append(ds.payments, p)
	}
	sort.Slice(ds.payments, func(i, j int) bool { return ds.payments[i].ID < ds.payments[j].ID })
}

func (ds *Dataset) inStore(storeID int64) bool {
	return ds.scope.StoreID == 0 || storeID == ds.scope.StoreID
}

// filmOfRental follows rental -> inventory -> film. The bool is false when any
// link is missing or the copy is outside the store scope.
func (ds *Dataset) filmOfRental(r models.Rental) (models.Film, models.Inventory, bool) {
	inv, ok := ds.inventory[r.InventoryID]
	if !ok {
		return models.Film{}, models.Inventory{}, false
	}
	f, ok := ds.films[inv.FilmID]
	return f, inv, ok
}

// paidRental is one payment joined through its rental to the rented film.
type paidRental struct {
	payment models.Payment
	rental  models.Rental
	film    models.Film
	copyID  int64
}

// paidRentals inner-joins payment -> rental -> inventory -> film. Payments with
// no rental, or whose rental or copy is unknown, are dropped.
func (ds *Dataset) paidRentals() []paidRental {
	out := make([]paidRental, 0, len(ds.payments))
	for _, p := range ds.payments {
		if p.RentalID == nil {
			continue
		}
		r, ok := ds.rentalByID[*p.RentalID]
		if !ok {
			continue
		}
		f, inv, ok := ds.filmOfRental(r)
		if !ok {
			continue
		}
		out = append(out, paidRental{payment: p, rental: r, film: f, copyID: inv.ID})
	}
	return out
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
