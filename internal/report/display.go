package report

import "github.com/shopspring/decimal"

// NoDataDash is the placeholder for empty expense-type month cells.
// Category rows and subrows deliberately use different "no data"
// conventions; both are presentation mappings over the same aggregate
// and live here rather than inside the engine.
const NoDataDash = "-"

// CategoryCell renders a category-row month cell: 0 when absent.
func CategoryCell(monthly map[string]decimal.Decimal, label string) string {
	if v, ok := monthly[label]; ok {
		return v.String()
	}
	return "0"
}

// SubrowCell renders an expense-type month cell: a dash when absent,
// the numeric value when present.
func SubrowCell(monthly map[string]decimal.Decimal, label string) string {
	if v, ok := monthly[label]; ok {
		return v.String()
	}
	return NoDataDash
}

// SurplusLabel names the sign of income minus expenses; the magnitude is
// what gets displayed.
func SurplusLabel(surplus decimal.Decimal) string {
	if surplus.IsNegative() {
		return "Deficit"
	}
	return "Surplus"
}
