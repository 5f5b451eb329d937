package report

import (
	"sort"
	"time"

	"bilancio/internal/core"
)

// DiscoverYears scans every expense and income date, unfiltered by
// period, and returns the distinct years in descending order. When the
// ledger holds no records at all it falls back to the year of now, so
// the result is never empty.
func DiscoverYears(categories []core.Category, income []core.IncomeRecord, now time.Time) []int {
	seen := make(map[int]struct{})
	for _, c := range categories {
		for _, et := range c.ExpenseTypes {
			for _, r := range et.Expenses {
				seen[r.Date.Year()] = struct{}{}
			}
		}
	}
	for _, r := range income {
		seen[r.Date.Year()] = struct{}{}
	}
	if len(seen) == 0 {
		return []int{now.Year()}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// SnapYear corrects a selected year against the available set: a member
// is kept as-is, anything else snaps to the most recent available year.
func SnapYear(years []int, selected int) int {
	for _, y := range years {
		if y == selected {
			return selected
		}
	}
	if len(years) == 0 {
		return selected
	}
	return years[0]
}
