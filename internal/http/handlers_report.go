package http

import (
	"errors"
	"log/slog"
	"net/http"

	"bilancio/internal/report"
	"bilancio/internal/services"
)

type (
	expenseTypeJSON struct {
		ID               int64             `json:"id"`
		Name             string            `json:"name"`
		Total            string            `json:"total"`
		Monthly          map[string]string `json:"monthly,omitempty"`
		TransactionCount int               `json:"transaction_count"`
	}

	categoryJSON struct {
		ID           int64             `json:"id"`
		Name         string            `json:"name"`
		Color        string            `json:"color"`
		Total        string            `json:"total"`
		Percentage   float64           `json:"percentage"`
		ExpenseTypes []expenseTypeJSON `json:"expense_types"`
	}

	subrowJSON struct {
		ID           int64    `json:"id"`
		Name         string   `json:"name"`
		CategoryName string   `json:"category_name"`
		Cells        []string `json:"cells"`
		YearTotal    string   `json:"year_total"`
	}

	gridRowJSON struct {
		ID           int64        `json:"id"`
		Name         string       `json:"name"`
		Color        string       `json:"color"`
		Cells        []string     `json:"cells"`
		YearTotal    string       `json:"year_total"`
		ExpenseTypes []subrowJSON `json:"expense_types"`
	}

	summaryJSON struct {
		TotalIncome   string `json:"total_income"`
		TotalExpenses string `json:"total_expenses"`
		Surplus       string `json:"surplus"`
		SurplusLabel  string `json:"surplus_label"`
		Transactions  int    `json:"transactions"`
	}

	periodJSON struct {
		Mode  string `json:"mode"`
		Year  int    `json:"year"`
		Month int    `json:"month,omitempty"`
	}

	reportJSON struct {
		Owner         string         `json:"owner"`
		Period        periodJSON     `json:"period"`
		Summary       summaryJSON    `json:"summary"`
		Categories    []categoryJSON `json:"categories"`
		Grid          []gridRowJSON  `json:"grid"`
		MonthLabels   []string       `json:"month_labels"`
		MonthlyTotals []string       `json:"monthly_totals"`
		GrandTotal    string         `json:"grand_total"`
		Years         []int          `json:"years"`
	}
)

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, err := s.snapshot(r)
	if err != nil {
		s.snapshotError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildReportJSON(snap))
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, err := s.snapshot(r)
	if err != nil {
		s.snapshotError(w, r, err)
		return
	}
	filename, content := services.ExportCSV(snap)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, err := s.snapshot(r)
	if err != nil {
		s.snapshotError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"years":    snap.Years,
		"selected": snap.Period.Year,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, err := s.snapshot(r)
	if err != nil {
		s.snapshotError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildSummaryJSON(snap))
}

// handleChart serves the 12-point monthly expense series for charts.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, err := s.snapshot(r)
	if err != nil {
		s.snapshotError(w, r, err)
		return
	}
	series := snap.Aggregation.MonthlySeries()
	points := make([]string, len(series))
	for i, v := range series {
		points[i] = v.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":         snap.Period.Year,
		"labels":       report.MonthLabels[:],
		"amounts":      points,
		"transactions": snap.Aggregation.TransactionCount(),
	})
}

func (s *Server) snapshotError(w http.ResponseWriter, r *http.Request, err error) {
	var bad errBadRequest
	if errors.As(err, &bad) {
		writeError(w, http.StatusBadRequest, bad.Error())
		return
	}
	slog.ErrorContext(r.Context(), "Report snapshot error", "error", err, "url", r.URL.Path)
	writeError(w, http.StatusBadGateway, "report temporarily unavailable")
}

func buildReportJSON(snap *services.Snapshot) reportJSON {
	out := reportJSON{
		Owner:       snap.Owner,
		Period:      buildPeriodJSON(snap.Period),
		Summary:     buildSummaryJSON(snap),
		Categories:  make([]categoryJSON, 0, len(snap.Aggregation.Categories)),
		Grid:        make([]gridRowJSON, 0, len(snap.Grid)),
		MonthLabels: report.MonthLabels[:],
		GrandTotal:  snap.GrandTotal.String(),
		Years:       snap.Years,
	}

	for _, c := range snap.Aggregation.Categories {
		cj := categoryJSON{
			ID:           c.ID,
			Name:         c.Name,
			Color:        c.Color,
			Total:        c.Total.String(),
			Percentage:   c.Percentage,
			ExpenseTypes: make([]expenseTypeJSON, 0, len(c.ExpenseTypes)),
		}
		for _, et := range c.ExpenseTypes {
			tj := expenseTypeJSON{
				ID:               et.ID,
				Name:             et.Name,
				Total:            et.Total.String(),
				TransactionCount: et.TransactionCount,
			}
			if len(et.Monthly) > 0 {
				tj.Monthly = make(map[string]string, len(et.Monthly))
				for label, v := range et.Monthly {
					tj.Monthly[label] = v.String()
				}
			}
			cj.ExpenseTypes = append(cj.ExpenseTypes, tj)
		}
		out.Categories = append(out.Categories, cj)
	}

	for _, row := range snap.Grid {
		rj := gridRowJSON{
			ID:           row.ID,
			Name:         row.Name,
			Color:        row.Color,
			Cells:        make([]string, 0, len(report.MonthLabels)),
			YearTotal:    row.YearTotal.String(),
			ExpenseTypes: make([]subrowJSON, 0, len(row.ExpenseTypes)),
		}
		for _, label := range report.MonthLabels {
			rj.Cells = append(rj.Cells, report.CategoryCell(row.Monthly, label))
		}
		for _, sub := range row.ExpenseTypes {
			sj := subrowJSON{
				ID:           sub.ID,
				Name:         sub.Name,
				CategoryName: sub.CategoryName,
				Cells:        make([]string, 0, len(report.MonthLabels)),
				YearTotal:    sub.YearTotal.String(),
			}
			for _, label := range report.MonthLabels {
				sj.Cells = append(sj.Cells, report.SubrowCell(sub.Monthly, label))
			}
			rj.ExpenseTypes = append(rj.ExpenseTypes, sj)
		}
		out.Grid = append(out.Grid, rj)
	}

	out.MonthlyTotals = make([]string, 0, len(report.MonthLabels))
	for _, label := range report.MonthLabels {
		out.MonthlyTotals = append(out.MonthlyTotals, report.CategoryCell(snap.MonthlyTotals, label))
	}
	return out
}

func buildSummaryJSON(snap *services.Snapshot) summaryJSON {
	surplus := snap.Aggregation.Surplus()
	return summaryJSON{
		TotalIncome:   snap.Aggregation.TotalIncome.String(),
		TotalExpenses: snap.Aggregation.TotalExpenses.String(),
		Surplus:       surplus.Abs().String(),
		SurplusLabel:  report.SurplusLabel(surplus),
		Transactions:  snap.Aggregation.TransactionCount(),
	}
}

func buildPeriodJSON(p report.Period) periodJSON {
	out := periodJSON{Mode: string(p.Mode), Year: p.Year}
	if p.Mode == report.ModeMonthly {
		out.Month = int(p.Month)
	}
	return out
}
