// Package memory provides an in-memory ledger backend for development
// and tests, optionally seeded from a YAML fixture file.
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"bilancio/internal/core"
)

type Store struct {
	mu         sync.Mutex
	categories []core.Category
	incomes    []core.IncomeRecord
	nextID     int64
}

// Seed mirrors the YAML fixture layout. Amounts are decimal strings and
// dates are ISO "YYYY-MM-DD".
type Seed struct {
	Categories []struct {
		Name         string `yaml:"name"`
		Color        string `yaml:"color"`
		ExpenseTypes []struct {
			Name     string `yaml:"name"`
			Expenses []struct {
				Amount string `yaml:"amount"`
				Date   string `yaml:"date"`
			} `yaml:"expenses"`
		} `yaml:"expense_types"`
	} `yaml:"categories"`
	Incomes []struct {
		Amount string `yaml:"amount"`
		Date   string `yaml:"date"`
	} `yaml:"incomes"`
}

func New() *Store {
	return &Store{nextID: 1}
}

// NewFromFile seeds a store from a YAML fixture. A missing file yields
// an empty store; a malformed one is an error.
func NewFromFile(path string) (*Store, error) {
	s := New()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := s.Load(seed); err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	return s, nil
}

// Load replaces the store contents with the seed data.
func (s *Store) Load(seed Seed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = nil
	s.incomes = nil
	s.nextID = 1

	for _, c := range seed.Categories {
		cat := core.Category{ID: s.nextID, Name: c.Name, Color: c.Color}
		s.nextID++
		for _, et := range c.ExpenseTypes {
			typ := core.ExpenseType{ID: s.nextID, Name: et.Name}
			s.nextID++
			for _, e := range et.Expenses {
				rec, err := parseRecord(e.Amount, e.Date)
				if err != nil {
					return fmt.Errorf("expense %q/%q: %w", c.Name, et.Name, err)
				}
				typ.Expenses = append(typ.Expenses, rec)
			}
			cat.ExpenseTypes = append(cat.ExpenseTypes, typ)
		}
		if err := cat.Validate(); err != nil {
			return fmt.Errorf("category %q: %w", c.Name, err)
		}
		s.categories = append(s.categories, cat)
	}

	for _, in := range seed.Incomes {
		rec, err := parseRecord(in.Amount, in.Date)
		if err != nil {
			return fmt.Errorf("income: %w", err)
		}
		s.incomes = append(s.incomes, core.IncomeRecord{Amount: rec.Amount, Date: rec.Date})
	}
	return nil
}

func parseRecord(amount, date string) (core.ExpenseRecord, error) {
	amt, err := core.ParseAmount(amount)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("amount %q: %w", amount, err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("date %q: %w", date, err)
	}
	return core.ExpenseRecord{Amount: amt, Date: d}, nil
}

// FetchCategoriesWithExpenses implements ledger.CategoryReader. Owner is
// ignored: the memory backend is single-owner by construction.
func (s *Store) FetchCategoriesWithExpenses(_ context.Context, _ string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, len(s.categories))
	for i, c := range s.categories {
		out[i] = cloneCategory(c)
	}
	return out, nil
}

// FetchIncome implements ledger.IncomeReader.
func (s *Store) FetchIncome(_ context.Context, _ string, from, to core.Date) ([]core.IncomeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.IncomeRecord, 0, len(s.incomes))
	for _, r := range s.incomes {
		if !from.IsZero() && r.Date.Before(from.Time) {
			continue
		}
		if !to.IsZero() && r.Date.After(to.Time) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// AppendExpense implements ledger.ExpenseWriter.
func (s *Store) AppendExpense(_ context.Context, _ string, expenseTypeID int64, r core.ExpenseRecord) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for ci := range s.categories {
		for ti := range s.categories[ci].ExpenseTypes {
			if s.categories[ci].ExpenseTypes[ti].ID != expenseTypeID {
				continue
			}
			id := s.nextID
			s.nextID++
			et := &s.categories[ci].ExpenseTypes[ti]
			et.Expenses = append(et.Expenses, r)
			return id, nil
		}
	}
	return 0, fmt.Errorf("expense type %d not found", expenseTypeID)
}

// AppendIncome implements ledger.IncomeWriter.
func (s *Store) AppendIncome(_ context.Context, _ string, r core.IncomeRecord) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.incomes = append(s.incomes, r)
	return id, nil
}

func cloneCategory(c core.Category) core.Category {
	out := c
	out.ExpenseTypes = make([]core.ExpenseType, len(c.ExpenseTypes))
	for i, et := range c.ExpenseTypes {
		cp := et
		cp.Expenses = append([]core.ExpenseRecord(nil), et.Expenses...)
		out.ExpenseTypes[i] = cp
	}
	return out
}
