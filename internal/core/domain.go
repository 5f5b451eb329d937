package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Date is a calendar date pinned to UTC midnight. Year and month are
	// always derived from its calendar components, never from a localized
	// timestamp, so aggregation buckets are stable near year boundaries.
	Date struct {
		time.Time
	}

	// ExpenseRecord is a single dated amount inside an expense type.
	// Records are immutable once loaded into the engine.
	ExpenseRecord struct {
		Amount decimal.Decimal
		Date   Date
	}

	// ExpenseType groups expense records under a category.
	ExpenseType struct {
		ID       int64
		Name     string
		Expenses []ExpenseRecord
	}

	// Category is the top-level grouping of the ledger.
	Category struct {
		ID           int64
		Name         string
		Color        string
		ExpenseTypes []ExpenseType
	}

	// IncomeRecord is a dated income amount, not tied to any category.
	IncomeRecord struct {
		Amount decimal.Decimal
		Date   Date
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "YYYY-MM-DD" string. The components are taken
// as written, without local-timezone shifting.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date back in ISO form.
func (d Date) String() string {
	return d.Format(dateLayout)
}

func (r ExpenseRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (t ExpenseType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	for _, r := range t.Expenses {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	for _, t := range c.ExpenseTypes {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r IncomeRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
