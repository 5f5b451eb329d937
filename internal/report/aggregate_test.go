package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func groceries() []core.Category {
	return []core.Category{
		{
			ID:    1,
			Name:  "Groceries",
			Color: "#4caf50",
			ExpenseTypes: []core.ExpenseType{
				{
					ID:   10,
					Name: "Food",
					Expenses: []core.ExpenseRecord{
						{Amount: decimal.NewFromInt(100), Date: core.NewDate(2024, time.January, 5)},
						{Amount: decimal.NewFromInt(50), Date: core.NewDate(2024, time.February, 10)},
					},
				},
			},
		},
	}
}

// Scenario A: yearly aggregation buckets amounts by month label.
func TestAggregateYearly(t *testing.T) {
	agg := Aggregate(groceries(), nil, Period{Mode: ModeYearly, Year: 2024})

	require.Len(t, agg.Categories, 1)
	cat := agg.Categories[0]
	assert.Equal(t, "Groceries", cat.Name)
	assert.Equal(t, "150", cat.Total.String())
	assert.InDelta(t, 100.0, cat.Percentage, 1e-9)

	require.Len(t, cat.ExpenseTypes, 1)
	food := cat.ExpenseTypes[0]
	assert.Equal(t, "150", food.Total.String())
	assert.Equal(t, 2, food.TransactionCount)
	assert.Equal(t, "100", food.Monthly["Jan"].String())
	assert.Equal(t, "50", food.Monthly["Feb"].String())
	assert.Len(t, food.Monthly, 2)

	assert.Equal(t, "150", agg.TotalExpenses.String())
	assert.Equal(t, "0", agg.TotalIncome.String())
}

// Scenario B: monthly aggregation excludes records outside the month and
// produces no month buckets.
func TestAggregateMonthly(t *testing.T) {
	agg := Aggregate(groceries(), nil, Period{Mode: ModeMonthly, Year: 2024, Month: time.January})

	require.Len(t, agg.Categories, 1)
	food := agg.Categories[0].ExpenseTypes[0]
	assert.Equal(t, "100", food.Total.String())
	assert.Equal(t, 1, food.TransactionCount)
	assert.Empty(t, food.Monthly)
	assert.Equal(t, "100", agg.TotalExpenses.String())
}

// Scenario C: income only, no categories.
func TestAggregateIncomeOnly(t *testing.T) {
	income := []core.IncomeRecord{
		{Amount: decimal.NewFromInt(500), Date: core.NewDate(2024, time.March, 1)},
	}
	agg := Aggregate(nil, income, Period{Mode: ModeYearly, Year: 2024})

	assert.Empty(t, agg.Categories)
	assert.Equal(t, "500", agg.TotalIncome.String())
	assert.Equal(t, "0", agg.TotalExpenses.String())
	assert.Equal(t, "500", agg.Surplus().String())
	assert.Equal(t, "Surplus", SurplusLabel(agg.Surplus()))
}

// Scenario D: percentages split 75/25 and sum to 100.
func TestAggregatePercentages(t *testing.T) {
	cats := []core.Category{
		{ID: 1, Name: "Housing", ExpenseTypes: []core.ExpenseType{
			{ID: 10, Name: "Rent", Expenses: []core.ExpenseRecord{
				{Amount: decimal.NewFromInt(300), Date: core.NewDate(2024, time.June, 1)},
			}},
		}},
		{ID: 2, Name: "Fun", ExpenseTypes: []core.ExpenseType{
			{ID: 20, Name: "Cinema", Expenses: []core.ExpenseRecord{
				{Amount: decimal.NewFromInt(100), Date: core.NewDate(2024, time.June, 2)},
			}},
		}},
	}
	agg := Aggregate(cats, nil, Period{Mode: ModeYearly, Year: 2024})

	assert.Equal(t, "400", agg.TotalExpenses.String())
	assert.InDelta(t, 75.0, agg.Categories[0].Percentage, 1e-9)
	assert.InDelta(t, 25.0, agg.Categories[1].Percentage, 1e-9)

	var sum float64
	for _, c := range agg.Categories {
		sum += c.Percentage
	}
	assert.InDelta(t, 100.0, sum, 1e-6)
}

func TestAggregateEmptyStructuresKept(t *testing.T) {
	cats := []core.Category{
		{ID: 1, Name: "Empty"},
		{ID: 2, Name: "Stale", ExpenseTypes: []core.ExpenseType{
			{ID: 20, Name: "Old", Expenses: []core.ExpenseRecord{
				{Amount: decimal.NewFromInt(10), Date: core.NewDate(2020, time.May, 1)},
			}},
		}},
	}
	agg := Aggregate(cats, nil, Period{Mode: ModeYearly, Year: 2024})

	// Categories and expense types with nothing in the period still show
	// up, zero-valued, never omitted.
	require.Len(t, agg.Categories, 2)
	assert.Equal(t, "0", agg.Categories[0].Total.String())
	require.Len(t, agg.Categories[1].ExpenseTypes, 1)
	assert.Equal(t, "0", agg.Categories[1].ExpenseTypes[0].Total.String())
	assert.Equal(t, 0, agg.Categories[1].ExpenseTypes[0].TransactionCount)
	assert.Equal(t, 0.0, agg.Categories[0].Percentage)
	assert.Equal(t, "0", agg.TotalExpenses.String())
}

func TestAggregateCategorySumsMatchGrandTotal(t *testing.T) {
	cats := append(groceries(), core.Category{
		ID: 2, Name: "Transport", ExpenseTypes: []core.ExpenseType{
			{ID: 30, Name: "Fuel", Expenses: []core.ExpenseRecord{
				{Amount: decimal.RequireFromString("33.33"), Date: core.NewDate(2024, time.April, 4)},
				{Amount: decimal.RequireFromString("66.67"), Date: core.NewDate(2024, time.April, 20)},
			}},
		},
	})
	agg := Aggregate(cats, nil, Period{Mode: ModeYearly, Year: 2024})

	sum := decimal.Zero
	for _, c := range agg.Categories {
		sum = sum.Add(c.Total)
		typeSum := decimal.Zero
		for _, et := range c.ExpenseTypes {
			typeSum = typeSum.Add(et.Total)
		}
		assert.True(t, c.Total.Equal(typeSum), "category total must equal sum of its expense types")
	}
	assert.True(t, agg.TotalExpenses.Equal(sum))
}

func TestAggregateDoesNotMutateInputs(t *testing.T) {
	cats := groceries()
	before := cats[0].ExpenseTypes[0].Expenses[0].Amount.String()
	first := Aggregate(cats, nil, Period{Mode: ModeYearly, Year: 2024})
	second := Aggregate(cats, nil, Period{Mode: ModeYearly, Year: 2024})

	assert.Equal(t, before, cats[0].ExpenseTypes[0].Expenses[0].Amount.String())
	assert.Equal(t, first.TotalExpenses.String(), second.TotalExpenses.String())
	assert.Equal(t, first.Categories[0].ExpenseTypes[0].Monthly, second.Categories[0].ExpenseTypes[0].Monthly)
}

func TestAggregateIncomeFilteredByPeriod(t *testing.T) {
	income := []core.IncomeRecord{
		{Amount: decimal.NewFromInt(500), Date: core.NewDate(2024, time.January, 31)},
		{Amount: decimal.NewFromInt(700), Date: core.NewDate(2024, time.February, 1)},
		{Amount: decimal.NewFromInt(900), Date: core.NewDate(2023, time.January, 15)},
	}
	monthly := Aggregate(nil, income, Period{Mode: ModeMonthly, Year: 2024, Month: time.January})
	assert.Equal(t, "500", monthly.TotalIncome.String())

	yearly := Aggregate(nil, income, Period{Mode: ModeYearly, Year: 2024})
	assert.Equal(t, "1200", yearly.TotalIncome.String())
}

func TestMonthlySeriesAndCounts(t *testing.T) {
	agg := Aggregate(groceries(), nil, Period{Mode: ModeYearly, Year: 2024})
	series := agg.MonthlySeries()

	require.Len(t, series, 12)
	assert.Equal(t, "100", series[0].String())
	assert.Equal(t, "50", series[1].String())
	for i := 2; i < 12; i++ {
		assert.True(t, series[i].IsZero())
	}
	assert.Equal(t, 2, agg.TransactionCount())
}
