// Package services orchestrates ledger fetches and the report pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/report"
)

// Snapshot is the atomic output bundle of one recomputation: aggregates,
// grid, totals and the selectable year set. It is immutable once
// published.
type Snapshot struct {
	Owner         string
	Period        report.Period
	Aggregation   report.Aggregation
	Grid          []report.GridRow
	MonthlyTotals map[string]decimal.Decimal
	GrandTotal    decimal.Decimal
	Years         []int
	Generation    uint64
	ComputedAt    time.Time
}

// ReportService funnels every recomputation trigger (owner change,
// period change, record writes) through one entry point and publishes
// each result as a single atomic replace. A failed cycle leaves the
// previously published snapshot untouched.
type ReportService struct {
	categories ledger.CategoryReader
	income     ledger.IncomeReader
	now        func() time.Time

	// YearsChanged, when set, fires exactly once per change of the
	// available-years set, with the snapped selection.
	YearsChanged func(years []int, selected int)

	admitted atomic.Uint64
	errs     chan error

	mu        sync.Mutex
	current   *Snapshot
	lastYears []int
}

// Option configures a ReportService.
type Option func(*ReportService)

// WithClock replaces the service clock. The default period and the year
// discovery fallback derive from it, never from an ambient read inside
// the engine.
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) { s.now = now }
}

func NewReportService(categories ledger.CategoryReader, income ledger.IncomeReader, opts ...Option) *ReportService {
	s := &ReportService{
		categories: categories,
		income:     income,
		now:        time.Now,
		errs:       make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPeriod is the initial selection: the current month.
func (s *ReportService) DefaultPeriod() report.Period {
	now := s.now()
	return report.Period{Mode: report.ModeMonthly, Year: now.Year(), Month: now.Month()}
}

// Errors exposes fetch failures for consumers that want to surface them.
// Each failed cycle reports at most once; an unread error from a
// previous cycle is not duplicated.
func (s *ReportService) Errors() <-chan error {
	return s.errs
}

// Refresh recomputes the full report bundle for an owner and period.
//
// Category and income fetches run concurrently; any failure aborts the
// cycle before the engine is invoked. The selected year is snapped to
// the discovered year set, then the whole pipeline runs synchronously
// and the result replaces the current snapshot, last write wins: a
// cycle admitted earlier never overwrites one admitted after it.
func (s *ReportService) Refresh(ctx context.Context, owner string, period report.Period) (*Snapshot, error) {
	generation := s.admitted.Add(1)

	var (
		categories []core.Category
		income     []core.IncomeRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.categories.FetchCategoriesWithExpenses(gctx, owner)
		if err != nil {
			return fmt.Errorf("fetch categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		income, err = s.income.FetchIncome(gctx, owner, core.Date{}, core.Date{})
		if err != nil {
			return fmt.Errorf("fetch income: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "Ledger fetch failed, keeping previous snapshot",
			"owner", owner, "error", err)
		s.reportError(err)
		return nil, err
	}

	years := report.DiscoverYears(categories, income, s.now())
	period.Year = report.SnapYear(years, period.Year)

	agg := report.Aggregate(categories, income, period)
	grid := report.ProjectGrid(agg.Categories)
	monthly, grand := report.GridTotals(grid)

	snap := &Snapshot{
		Owner:         owner,
		Period:        period,
		Aggregation:   agg,
		Grid:          grid,
		MonthlyTotals: monthly,
		GrandTotal:    grand,
		Years:         years,
		Generation:    generation,
		ComputedAt:    s.now(),
	}
	s.publish(snap)
	return snap, nil
}

// Snapshot returns the currently published bundle, if any.
func (s *ReportService) Snapshot() (*Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != nil
}

// publish installs a snapshot unless a newer-admitted one already won.
// The years-changed hook fires here so it triggers exactly once per
// change of the available set.
func (s *ReportService) publish(snap *Snapshot) {
	var notify func()

	s.mu.Lock()
	if s.current == nil || snap.Generation > s.current.Generation {
		s.current = snap
		if !equalYears(s.lastYears, snap.Years) {
			s.lastYears = append([]int(nil), snap.Years...)
			if s.YearsChanged != nil {
				years := snap.Years
				selected := snap.Period.Year
				notify = func() { s.YearsChanged(years, selected) }
			}
		}
	}
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func (s *ReportService) reportError(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

func equalYears(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ExportCSV renders a snapshot's grid as CSV together with its suggested
// download name.
func ExportCSV(snap *Snapshot) (filename, content string) {
	return report.CSVFileName(snap.Period.Year),
		report.MarshalCSV(snap.Grid, snap.MonthlyTotals, snap.GrandTotal)
}
