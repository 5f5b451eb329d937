// Package report implements the financial aggregation and time-bucketing
// engine: period windows, year discovery, per-category aggregation, the
// two-level reporting grid and its CSV projection.
//
// Everything in this package is a pure function of its inputs. The engine
// never mutates the ledger snapshot it is handed and every invocation
// builds fresh aggregate structures.
package report

import (
	"time"

	"bilancio/internal/core"
)

// Mode selects how a period scopes the ledger.
type Mode string

const (
	ModeMonthly Mode = "monthly"
	ModeYearly  Mode = "yearly"
)

// Period is the monthly or yearly window aggregation is scoped to.
// Month is only meaningful in monthly mode.
type Period struct {
	Mode  Mode
	Year  int
	Month time.Month
}

// MonthLabels are the fixed bucket keys for yearly-mode aggregation,
// independent of locale.
var MonthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MonthLabel returns the bucket key for a month.
func MonthLabel(m time.Month) string {
	return MonthLabels[int(m)-1]
}

// Window returns the inclusive [start, end] dates of the period. Month
// lengths are computed, so February and leap years come out right.
func (p Period) Window() (start, end core.Date) {
	if p.Mode == ModeMonthly {
		start = core.NewDate(p.Year, p.Month, 1)
		end = core.NewDate(p.Year, p.Month+1, 0)
		return start, end
	}
	return core.NewDate(p.Year, time.January, 1), core.NewDate(p.Year, time.December, 31)
}

// Contains reports whether a date falls inside the period. Membership is
// decided on calendar components, matching Window.
func (p Period) Contains(d core.Date) bool {
	if d.Year() != p.Year {
		return false
	}
	if p.Mode == ModeMonthly {
		return d.Time.Month() == p.Month
	}
	return true
}
