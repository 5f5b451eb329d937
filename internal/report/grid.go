package report

import "github.com/shopspring/decimal"

type (
	// GridSubrow is the expense-type level of the reporting grid.
	GridSubrow struct {
		ID           int64
		Name         string
		CategoryName string
		Monthly      map[string]decimal.Decimal
		YearTotal    decimal.Decimal
	}

	// GridRow is the category level of the reporting grid, with its
	// expense types nested as subrows.
	GridRow struct {
		ID           int64
		Name         string
		Color        string
		Monthly      map[string]decimal.Decimal
		YearTotal    decimal.Decimal
		ExpenseTypes []GridSubrow
	}
)

// ProjectGrid reshapes aggregated categories into the two-level tabular
// structure. Category month cells are re-summed from the subrows over the
// 12 fixed labels, which cross-checks the engine's own yearly buckets.
// The full tree is always produced; row expansion is UI state that never
// reaches this layer.
func ProjectGrid(categories []AggregatedCategory) []GridRow {
	rows := make([]GridRow, 0, len(categories))
	for _, c := range categories {
		row := GridRow{
			ID:           c.ID,
			Name:         c.Name,
			Color:        c.Color,
			Monthly:      make(map[string]decimal.Decimal),
			YearTotal:    c.Total,
			ExpenseTypes: make([]GridSubrow, 0, len(c.ExpenseTypes)),
		}
		for _, et := range c.ExpenseTypes {
			sub := GridSubrow{
				ID:           et.ID,
				Name:         et.Name,
				CategoryName: c.Name,
				Monthly:      make(map[string]decimal.Decimal),
				YearTotal:    et.Total,
			}
			for label, v := range et.Monthly {
				sub.Monthly[label] = v
			}
			row.ExpenseTypes = append(row.ExpenseTypes, sub)
			for _, label := range MonthLabels {
				if v, ok := sub.Monthly[label]; ok {
					row.Monthly[label] = row.Monthly[label].Add(v)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// GridTotals computes the synthetic totals row and totals column:
// per-month sums across all category rows and the overall grand total.
func GridTotals(rows []GridRow) (monthly map[string]decimal.Decimal, grand decimal.Decimal) {
	monthly = make(map[string]decimal.Decimal)
	grand = decimal.Zero
	for _, row := range rows {
		for _, label := range MonthLabels {
			if v, ok := row.Monthly[label]; ok {
				monthly[label] = monthly[label].Add(v)
			}
		}
		grand = grand.Add(row.YearTotal)
	}
	return monthly, grand
}
