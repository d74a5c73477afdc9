package models

import "time"

// Snapshot is a consistent, read-only copy of the rental store's tables taken
// inside a single read transaction. Slices are ordered by primary key.
type Snapshot struct {
	Films          []Film         `json:"films"`
	Categories     []Category     `json:"categories"`
	FilmCategories []FilmCategory `json:"film_categories"`
	Actors         []Actor        `json:"actors"`
	FilmActors     []FilmActor    `json:"film_actors"`
	Inventory      []Inventory    `json:"inventory"`
	Rentals        []Rental       `json:"rentals"`
	Payments       []Payment      `json:"payments"`
	Customers      []Customer     `json:"customers"`
	Stores         []Store        `json:"stores"`
	Staff          []Staff        `json:"staff"`
	Addresses      []Address      `json:"addresses"`
	Cities         []City         `json:"cities"`
	Countries      []Country      `json:"countries"`

	// LoadedAt is the wall-clock time the snapshot was read. It is informational
	// only; reports use an explicit reference time.
	LoadedAt time.Time `json:"loaded_at"`
}

// LatestActivity returns the most recent rental, return or payment timestamp,
// or the zero time for an empty snapshot. It is the default reference time for
// reports over a historical dump.
func (s *Snapshot) LatestActivity() time.Time {
	var latest time.Time
	for _, r := range s.Rentals {
		if r.RentalDate.After(latest) {
			latest = r.RentalDate
		}
		if r.ReturnDate != nil && r.ReturnDate.After(latest) {
			latest = *r.ReturnDate
		}
	}
	for _, p := range s.Payments {
		if p.PaymentDate.After(latest) {
			latest = p.PaymentDate
		}
	}
	return latest
}

// RowCounts returns the number of rows loaded per table, keyed by table name.
func (s *Snapshot) RowCounts() map[string]int {
	return map[string]int{
		"film":          len(s.Films),
		"category":      len(s.Categories),
		"film_category": len(s.FilmCategories),
		"actor":         len(s.Actors),
		"film_actor":    len(s.FilmActors),
		"inventory":     len(s.Inventory),
		"rental":        len(s.Rentals),
		"payment":       len(s.Payments),
		"customer":      len(s.Customers),
		"store":         len(s.Stores),
		"staff":         len(s.Staff),
		"address":       len(s.Addresses),
		"city":          len(s.Cities),
		"country":       len(s.Countries),
	}
}
