package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MarshalCSV flattens the grid into delimited text: a fixed header,
// one row per category, one two-space-indented row per expense type and
// a final TOTAL row. Month cells with no data serialize as the literal 0.
//
// Names containing the delimiter are written as-is; no quoting or
// escaping is performed. Known limitation.
func MarshalCSV(rows []GridRow, monthly map[string]decimal.Decimal, grand decimal.Decimal) string {
	var b strings.Builder

	b.WriteString("Category/Type")
	for _, label := range MonthLabels {
		b.WriteByte(',')
		b.WriteString(label)
	}
	b.WriteString(",Year Total\n")

	for _, row := range rows {
		writeCSVLine(&b, row.Name, row.Monthly, row.YearTotal)
		for _, sub := range row.ExpenseTypes {
			writeCSVLine(&b, "  "+sub.Name, sub.Monthly, sub.YearTotal)
		}
	}
	writeCSVLine(&b, "TOTAL", monthly, grand)

	return b.String()
}

func writeCSVLine(b *strings.Builder, name string, monthly map[string]decimal.Decimal, total decimal.Decimal) {
	b.WriteString(name)
	for _, label := range MonthLabels {
		b.WriteByte(',')
		if v, ok := monthly[label]; ok {
			b.WriteString(v.String())
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteByte(',')
	b.WriteString(total.String())
	b.WriteByte('\n')
}

// CSVFileName is the suggested download name for a yearly export.
func CSVFileName(year int) string {
	return fmt.Sprintf("expense-breakdown-%d.csv", year)
}
