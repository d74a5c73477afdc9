package reports

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// money rounds half away from zero to cents.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// ratio returns num/den rounded to 2 places, or nil when den is zero.
func ratio(num, den decimal.Decimal) *float64 {
	if den.IsZero() {
		return nil
	}
	v := num.Div(den).Round(2).InexactFloat64()
	return &v
}

// percent returns num/den*100 rounded to 2 places, or nil when den is zero.
func percent(num, den decimal.Decimal) *float64 {
	return ratio(num.Mul(hundred), den)
}

func count(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// monthOf returns midnight UTC on the first of t's calendar month, read in
// t's own location. Months from different locations compare equal.
func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// daysBetween is the number of whole days elapsed from a to b, floored.
func daysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}

// denseRank assigns 1 to the largest key, with equal keys sharing a rank and
// no gaps after ties. keys[i] is the sort key of item i.
func denseRank(keys []decimal.Decimal) []int {
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return keys[order[a]].GreaterThan(keys[order[b]]) })

	ranks := make([]int, len(keys))
	rank := 0
	for pos, i := range order {
		if pos == 0 || !keys[i].Equal(keys[order[pos-1]]) {
			rank++
		}
		ranks[i] = rank
	}
	return ranks
}
