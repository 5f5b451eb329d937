package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"bilancio/internal/core"
)

func expenseIn(year int, month time.Month) core.Category {
	return core.Category{
		Name: "c",
		ExpenseTypes: []core.ExpenseType{
			{Name: "t", Expenses: []core.ExpenseRecord{
				{Amount: decimal.NewFromInt(1), Date: core.NewDate(year, month, 15)},
			}},
		},
	}
}

func TestDiscoverYearsDescendingDistinct(t *testing.T) {
	cats := []core.Category{
		expenseIn(2022, time.March),
		expenseIn(2024, time.July),
		expenseIn(2022, time.November),
	}
	income := []core.IncomeRecord{
		{Amount: decimal.NewFromInt(5), Date: core.NewDate(2023, time.May, 1)},
	}
	years := DiscoverYears(cats, income, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []int{2024, 2023, 2022}, years)
}

func TestDiscoverYearsOrderIndependent(t *testing.T) {
	a := []core.Category{expenseIn(2022, time.March), expenseIn(2024, time.July)}
	b := []core.Category{expenseIn(2024, time.July), expenseIn(2022, time.March)}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, DiscoverYears(a, nil, now), DiscoverYears(b, nil, now))
	// Idempotent as well.
	assert.Equal(t, DiscoverYears(a, nil, now), DiscoverYears(a, nil, now))
}

func TestDiscoverYearsFallback(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, []int{2026}, DiscoverYears(nil, nil, now))

	// Categories with no records still fall back.
	empty := []core.Category{{Name: "c", ExpenseTypes: []core.ExpenseType{{Name: "t"}}}}
	assert.Equal(t, []int{2026}, DiscoverYears(empty, nil, now))
}

// Scenario: records only in 2022 and 2024, selection on 2023 snaps to
// the most recent available year.
func TestSnapYear(t *testing.T) {
	cats := []core.Category{expenseIn(2022, time.March), expenseIn(2024, time.July)}
	years := DiscoverYears(cats, nil, time.Now())
	assert.Equal(t, []int{2024, 2022}, years)

	assert.Equal(t, 2024, SnapYear(years, 2023))
	assert.Equal(t, 2022, SnapYear(years, 2022))
	assert.Equal(t, 2024, SnapYear(years, 2024))
	assert.Equal(t, 2023, SnapYear(nil, 2023))
}
