package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"bilancio/internal/ledger/memory"
	"bilancio/internal/services"
)

const testSeed = `
categories:
  - name: Groceries
    color: "#4CAF50"
    expense_types:
      - name: Food
        expenses:
          - amount: "100"
            date: "2024-01-10"
          - amount: "50"
            date: "2024-02-05"
  - name: Housing
    color: "#2196F3"
    expense_types:
      - name: Rent
        expenses:
          - amount: "800"
            date: "2024-01-01"
incomes:
  - amount: "2000"
    date: "2024-01-31"
  - amount: "2000"
    date: "2024-02-28"
`

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	var seed memory.Seed
	require.NoError(t, yaml.Unmarshal([]byte(testSeed), &seed))
	store := memory.New()
	require.NoError(t, store.Load(seed))

	reports := services.NewReportService(store, store, services.WithClock(func() time.Time {
		return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	}))

	s := NewServer(":0", reports, store, nil, Options{DefaultOwner: "default"})
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	return ts, store
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestReportEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var got reportJSON
	resp := getJSON(t, ts, "/api/report?mode=yearly&year=2024", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	assert.Equal(t, "default", got.Owner)
	assert.Equal(t, "yearly", got.Period.Mode)
	assert.Equal(t, 2024, got.Period.Year)

	assert.Equal(t, "4000", got.Summary.TotalIncome)
	assert.Equal(t, "950", got.Summary.TotalExpenses)
	assert.Equal(t, "3050", got.Summary.Surplus)
	assert.Equal(t, "Surplus", got.Summary.SurplusLabel)
	assert.Equal(t, 3, got.Summary.Transactions)

	require.Len(t, got.Categories, 2)
	assert.Equal(t, "Groceries", got.Categories[0].Name)
	assert.Equal(t, "150", got.Categories[0].Total)

	require.Len(t, got.Grid, 2)
	groceries := got.Grid[0]
	require.Len(t, groceries.Cells, 12)
	assert.Equal(t, "100", groceries.Cells[0])
	assert.Equal(t, "50", groceries.Cells[1])
	assert.Equal(t, "0", groceries.Cells[2])
	assert.Equal(t, "150", groceries.YearTotal)

	require.Len(t, groceries.ExpenseTypes, 1)
	food := groceries.ExpenseTypes[0]
	assert.Equal(t, "Groceries", food.CategoryName)
	assert.Equal(t, "100", food.Cells[0])
	assert.Equal(t, "-", food.Cells[2])

	assert.Equal(t, "900", got.MonthlyTotals[0])
	assert.Equal(t, "950", got.GrandTotal)
	assert.Equal(t, []int{2024}, got.Years)
}

func TestReportDefaultsToCurrentMonth(t *testing.T) {
	ts, _ := newTestServer(t)

	var got reportJSON
	resp := getJSON(t, ts, "/api/report", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "monthly", got.Period.Mode)
	assert.Equal(t, 2024, got.Period.Year)
	assert.Equal(t, 6, got.Period.Month)
	// June has no records; the aggregate is present but zero.
	assert.Equal(t, "0", got.Summary.TotalExpenses)
	require.Len(t, got.Categories, 2)
	assert.Equal(t, "0", got.Categories[0].Total)
}

func TestReportRejectsBadPeriod(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{
		"/api/report?month=13",
		"/api/report?month=0",
		"/api/report?year=abc",
		"/api/report?mode=weekly",
	} {
		resp := getJSON(t, ts, path, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestYearSnapping(t *testing.T) {
	ts, _ := newTestServer(t)

	// 2031 has no data; the service snaps to the newest available year.
	var got reportJSON
	resp := getJSON(t, ts, "/api/report?mode=yearly&year=2031", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2024, got.Period.Year)
}

func TestCSVDownload(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/report/csv?mode=yearly&year=2024")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="expense-breakdown-2024.csv"`,
		resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	assert.Equal(t, "Category/Type,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec,Year Total", lines[0])
	assert.Equal(t, "Groceries,100,50,0,0,0,0,0,0,0,0,0,0,150", lines[1])
	assert.Equal(t, "  Food,100,50,0,0,0,0,0,0,0,0,0,0,150", lines[2])
	assert.Equal(t, "TOTAL,900,50,0,0,0,0,0,0,0,0,0,0,950", lines[len(lines)-1])
}

func TestYearsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var got struct {
		Years    []int `json:"years"`
		Selected int   `json:"selected"`
	}
	resp := getJSON(t, ts, "/api/years?mode=yearly&year=2024", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{2024}, got.Years)
	assert.Equal(t, 2024, got.Selected)
}

func TestChartEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var got struct {
		Year         int      `json:"year"`
		Labels       []string `json:"labels"`
		Amounts      []string `json:"amounts"`
		Transactions int      `json:"transactions"`
	}
	resp := getJSON(t, ts, "/api/chart?mode=yearly&year=2024", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got.Amounts, 12)
	assert.Equal(t, "900", got.Amounts[0])
	assert.Equal(t, "50", got.Amounts[1])
	assert.Equal(t, "0", got.Amounts[11])
	assert.Equal(t, "Jan", got.Labels[0])
	assert.Equal(t, 3, got.Transactions)
}

func TestCreateExpenseInvalidatesCache(t *testing.T) {
	ts, _ := newTestServer(t)

	// Prime the cache.
	var before reportJSON
	getJSON(t, ts, "/api/report?mode=yearly&year=2024", &before)
	require.Equal(t, "950", before.Summary.TotalExpenses)

	// Food has ID 2 in seed order (Groceries=1, Food=2).
	body := `{"expense_type_id": 2, "amount": "25.50", "date": "2024-03-01"}`
	resp, err := http.Post(ts.URL+"/api/expenses", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created createdResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotZero(t, created.ID)

	var after reportJSON
	getJSON(t, ts, "/api/report?mode=yearly&year=2024", &after)
	assert.Equal(t, "975.5", after.Summary.TotalExpenses)
	assert.Equal(t, "25.5", after.Grid[0].Cells[2])
}

func TestCreateExpenseValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"missing type", `{"amount": "10", "date": "2024-01-01"}`, http.StatusBadRequest},
		{"bad amount", `{"expense_type_id": 2, "amount": "-5", "date": "2024-01-01"}`, http.StatusBadRequest},
		{"bad date", `{"expense_type_id": 2, "amount": "10", "date": "01/02/2024"}`, http.StatusBadRequest},
		{"unknown type", `{"expense_type_id": 999, "amount": "10", "date": "2024-01-01"}`, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/expenses", "application/json",
				bytes.NewReader([]byte(tc.body)))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestCreateIncome(t *testing.T) {
	ts, _ := newTestServer(t)

	body := `{"amount": "1500", "date": "2024-03-15"}`
	resp, err := http.Post(ts.URL+"/api/incomes", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got reportJSON
	getJSON(t, ts, "/api/report?mode=yearly&year=2024", &got)
	assert.Equal(t, "5500", got.Summary.TotalIncome)
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/report", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/expenses")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp := getJSON(t, ts, path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
