package models

import "time"

// Row types produced by the reports. Nullable numbers are pointers: a nil
// value means the figure is undefined (a zero denominator or no prior period).

// MonthlyRevenue is one month of the revenue trend.
type MonthlyRevenue struct {
	Month        time.Time `json:"month"`
	PaymentCount int       `json:"payment_count"`
	TotalRevenue float64   `json:"total_revenue"`
	AvgPayment   float64   `json:"avg_payment"`
	GrowthPct    *float64  `json:"month_over_month_growth_pct"`
}

// FilmRevenue is a film's earnings over its paid rentals.
type FilmRevenue struct {
	FilmID         int64    `json:"film_id"`
	Title          string   `json:"title"`
	Category       string   `json:"category"`
	TotalRevenue   float64  `json:"total_revenue"`
	RentalCount    int      `json:"rental_count"`
	CopiesInStock  int      `json:"copies_in_stock"`
	RevenuePerCopy *float64 `json:"revenue_per_copy"`
	RentalsPerCopy *float64 `json:"rentals_per_copy"`
}

// CustomerLifetime is one customer's observed history.
type CustomerLifetime struct {
	CustomerID    int64     `json:"customer_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	RentalCount   int       `json:"rental_count"`
	LifetimeValue float64   `json:"lifetime_value"`
	FirstRental   time.Time `json:"first_rental"`
	LastRental    time.Time `json:"last_rental"`
	LifespanDays  int       `json:"lifespan_days"`
}

// CustomerLifetimeSummary aggregates CustomerLifetime rows across all customers.
type CustomerLifetimeSummary struct {
	TotalCustomers   int      `json:"total_customers"`
	AvgRentals       *float64 `json:"avg_rentals_per_customer"`
	AvgLifetimeValue *float64 `json:"avg_lifetime_value"`
	AvgLifespanDays  *float64 `json:"avg_lifespan_days"`
	ActiveCustomers  int      `json:"active_customers"`
	RetentionRatePct *float64 `json:"retention_rate_pct"`
}

// StoreProfitability is one store's revenue and its per-head ratios.
type StoreProfitability struct {
	StoreID            int64    `json:"store_id"`
	City               string   `json:"city"`
	Country            string   `json:"country"`
	CustomerCount      int      `json:"customer_count"`
	StaffCount         int      `json:"staff_count"`
	TotalRevenue       float64  `json:"total_revenue"`
	RevenuePerCustomer *float64 `json:"revenue_per_customer"`
	RevenuePerStaff    *float64 `json:"revenue_per_staff"`
}

// PeakHour is the rental volume of one (day of week, hour of day) slot.
type PeakHour struct {
	DayOfWeek   Weekday `json:"day_of_week"`
	DayName     string  `json:"day_name"`
	HourOfDay   int     `json:"hour_of_day"`
	RentalCount int     `json:"rental_count"`
}

// TurnoverBand classifies a turnover ratio.
type TurnoverBand string

const (
	HighTurnover   TurnoverBand = "High Turnover"
	MediumTurnover TurnoverBand = "Medium Turnover"
	LowTurnover    TurnoverBand = "Low Turnover"
)

// InventoryTurnover is a film's utilisation of its copies.
type InventoryTurnover struct {
	FilmID              int64        `json:"film_id"`
	Title               string       `json:"title"`
	Category            string       `json:"category"`
	Copies              int          `json:"copies"`
	RentalCount         int          `json:"rental_count"`
	TurnoverRatio       float64      `json:"turnover_ratio"`
	Band                TurnoverBand `json:"turnover_band"`
	LastRentalDate      *time.Time   `json:"last_rental_date"`
	DaysSinceLastRental *int         `json:"days_since_last_rental"`
}

// ReturnStatus classifies a rental against its due date.
type ReturnStatus string

const (
	OnTime        ReturnStatus = "On Time"
	LateReturn    ReturnStatus = "Late Return"
	NeverReturned ReturnStatus = "Never Returned"
)

// ReturnStatuses lists every status in report order.
var ReturnStatuses = []ReturnStatus{OnTime, LateReturn, NeverReturned}

// LateReturnSummary aggregates the rentals of one ReturnStatus.
type LateReturnSummary struct {
	Status            ReturnStatus `json:"status"`
	RentalCount       int          `json:"rental_count"`
	PctOfRentals      *float64     `json:"pct_of_rentals"`
	AvgDaysOverdue    *float64     `json:"avg_days_overdue"`
	PotentialLateFees float64      `json:"potential_late_fees"`
}

// CategoryPerformance is a category's revenue and popularity with independent ranks.
type CategoryPerformance struct {
	CategoryID       int64    `json:"category_id"`
	Name             string   `json:"name"`
	TotalRevenue     float64  `json:"total_revenue"`
	RentalCount      int      `json:"rental_count"`
	FilmCount        int      `json:"film_count"`
	RevenuePerRental *float64 `json:"revenue_per_rental"`
	RentalsPerFilm   *float64 `json:"rentals_per_film"`
	RevenueRank      int      `json:"revenue_rank"`
	PopularityRank   int      `json:"popularity_rank"`
}

// AcquisitionMonth compares customers acquired in a month with that month's revenue.
type AcquisitionMonth struct {
	Month                 time.Time `json:"month"`
	NewCustomers          int       `json:"new_customers"`
	MonthlyRevenue        *float64  `json:"monthly_revenue"`
	RevenuePerNewCustomer *float64  `json:"revenue_per_new_customer"`
}

// ActorRevenue is the revenue earned by the films an actor appears in.
type ActorRevenue struct {
	ActorID        int64    `json:"actor_id"`
	Name           string   `json:"name"`
	FilmCount      int      `json:"film_count"`
	RentalCount    int      `json:"rental_count"`
	TotalRevenue   float64  `json:"total_revenue"`
	RevenuePerFilm *float64 `json:"revenue_per_film"`
}
