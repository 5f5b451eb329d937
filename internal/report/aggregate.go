package report

import (
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

type (
	// AggregatedExpenseType carries one expense type's totals for the
	// active period. Monthly is populated only in yearly mode, keyed by
	// the fixed 3-letter month labels.
	AggregatedExpenseType struct {
		ID               int64
		Name             string
		Total            decimal.Decimal
		Monthly          map[string]decimal.Decimal
		TransactionCount int
	}

	// AggregatedCategory carries one category's totals. Total always
	// equals the sum of its expense-type totals, and Percentage is the
	// category's share of total expenses in the 0-100 range.
	AggregatedCategory struct {
		ID           int64
		Name         string
		Color        string
		Total        decimal.Decimal
		ExpenseTypes []AggregatedExpenseType
		Percentage   float64
	}

	// Aggregation is the full output bundle of one engine invocation.
	Aggregation struct {
		Period        Period
		Categories    []AggregatedCategory
		TotalIncome   decimal.Decimal
		TotalExpenses decimal.Decimal
	}
)

var hundred = decimal.NewFromInt(100)

// Aggregate scopes a ledger snapshot to the period and produces category
// and expense-type totals, yearly-mode month buckets, transaction counts
// and overall income/expense figures.
//
// Categories and expense types keep the order the ledger store returned
// them in, and every category and expense type appears in the output even
// when nothing matched the period. The inputs are never mutated.
func Aggregate(categories []core.Category, income []core.IncomeRecord, p Period) Aggregation {
	agg := Aggregation{
		Period:        p,
		Categories:    make([]AggregatedCategory, 0, len(categories)),
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}

	for _, r := range income {
		if p.Contains(r.Date) {
			agg.TotalIncome = agg.TotalIncome.Add(r.Amount)
		}
	}

	// First pass: totals. Percentages need the grand total across all
	// categories, so they are filled in afterwards.
	for _, c := range categories {
		ac := AggregatedCategory{
			ID:           c.ID,
			Name:         c.Name,
			Color:        c.Color,
			Total:        decimal.Zero,
			ExpenseTypes: make([]AggregatedExpenseType, 0, len(c.ExpenseTypes)),
		}
		for _, et := range c.ExpenseTypes {
			at := AggregatedExpenseType{
				ID:    et.ID,
				Name:  et.Name,
				Total: decimal.Zero,
			}
			if p.Mode == ModeYearly {
				at.Monthly = make(map[string]decimal.Decimal)
			}
			for _, r := range et.Expenses {
				if !p.Contains(r.Date) {
					continue
				}
				at.Total = at.Total.Add(r.Amount)
				at.TransactionCount++
				if p.Mode == ModeYearly {
					label := MonthLabel(r.Date.Time.Month())
					at.Monthly[label] = at.Monthly[label].Add(r.Amount)
				}
			}
			ac.Total = ac.Total.Add(at.Total)
			ac.ExpenseTypes = append(ac.ExpenseTypes, at)
		}
		agg.TotalExpenses = agg.TotalExpenses.Add(ac.Total)
		agg.Categories = append(agg.Categories, ac)
	}

	// Second pass: percentages.
	if agg.TotalExpenses.IsPositive() {
		for i := range agg.Categories {
			pct, _ := agg.Categories[i].Total.Mul(hundred).Div(agg.TotalExpenses).Float64()
			agg.Categories[i].Percentage = pct
		}
	}

	return agg
}

// Surplus is total income minus total expenses. Negative means deficit.
func (a Aggregation) Surplus() decimal.Decimal {
	return a.TotalIncome.Sub(a.TotalExpenses)
}

// MonthlySeries sums the yearly-mode month buckets across all categories
// into a fixed 12-point series ordered Jan..Dec. In monthly mode every
// point is zero.
func (a Aggregation) MonthlySeries() []decimal.Decimal {
	series := make([]decimal.Decimal, len(MonthLabels))
	for i := range series {
		series[i] = decimal.Zero
	}
	for _, c := range a.Categories {
		for _, et := range c.ExpenseTypes {
			for i, label := range MonthLabels {
				if v, ok := et.Monthly[label]; ok {
					series[i] = series[i].Add(v)
				}
			}
		}
	}
	return series
}

// TransactionCount is the number of expense records matching the period.
func (a Aggregation) TransactionCount() int {
	var n int
	for _, c := range a.Categories {
		for _, et := range c.ExpenseTypes {
			n += et.TransactionCount
		}
	}
	return n
}
