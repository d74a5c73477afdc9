package reports

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/rental-insights/pkg/apperrors"
	"github.com/ekaya-inc/rental-insights/pkg/config"
)

// Options carries the reference time and the tunables shared by all reports.
type Options struct {
	// AsOf stands in for "now" wherever a report measures elapsed time.
	AsOf time.Time

	RetentionWindowDays int
	LateFeeMultiplier   decimal.Decimal
	TopFilmsLimit       int
	PeakHoursLimit      int
	TopActorsLimit      int
}

// DefaultOptions returns the stock tunables for the given reference time.
func DefaultOptions(asOf time.Time) Options {
	return Options{
		AsOf:                asOf,
		RetentionWindowDays: 30,
		LateFeeMultiplier:   decimal.NewFromFloat(0.5),
		TopFilmsLimit:       20,
		PeakHoursLimit:      20,
		TopActorsLimit:      10,
	}
}

// OptionsFromConfig builds Options from the reports section of the config.
// The reference time is passed separately because it may come from the snapshot.
func OptionsFromConfig(cfg config.ReportsConfig, asOf time.Time) Options {
	return Options{
		AsOf:                asOf,
		RetentionWindowDays: cfg.RetentionWindowDays,
		LateFeeMultiplier:   decimal.NewFromFloat(cfg.LateFeeMultiplier),
		TopFilmsLimit:       cfg.TopFilmsLimit,
		PeakHoursLimit:      cfg.PeakHoursLimit,
		TopActorsLimit:      cfg.TopActorsLimit,
	}
}

// Validate checks the options before any report runs.
func (o Options) Validate() error {
	if o.AsOf.IsZero() {
		return apperrors.ErrMissingReferenceTime
	}
	if o.RetentionWindowDays <= 0 {
		return fmt.Errorf("retention window must be positive, got %d", o.RetentionWindowDays)
	}
	if o.LateFeeMultiplier.IsNegative() {
		return fmt.Errorf("late fee multiplier must not be negative, got %s", o.LateFeeMultiplier)
	}
	if o.TopFilmsLimit <= 0 || o.PeakHoursLimit <= 0 || o.TopActorsLimit <= 0 {
		return fmt.Errorf("report limits must be positive")
	}
	return nil
}
