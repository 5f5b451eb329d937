package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Time.Month() != time.February || d.Day() != 29 {
		t.Fatalf("unexpected components: %v", d)
	}

	bads := []string{"", "2024-13-01", "2024-02-30", "29/02/2024", "garbage"}
	for i, s := range bads {
		if _, err := ParseDate(s); err == nil {
			t.Fatalf("case %d expected error for %q", i, s)
		}
	}
}

// Year extraction must come from the calendar components as written,
// never shifted by a process-local offset.
func TestDateYearStableAcrossTimezones(t *testing.T) {
	orig := time.Local
	defer func() { time.Local = orig }()
	for _, name := range []string{"Pacific/Auckland", "America/New_York"} {
		loc, err := time.LoadLocation(name)
		if err != nil {
			t.Skipf("tzdata unavailable: %v", err)
		}
		time.Local = loc
		d, err := ParseDate("2024-12-31")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if d.Year() != 2024 {
			t.Fatalf("year shifted to %d under %s", d.Year(), name)
		}
		if d.Time.Month() != time.December {
			t.Fatalf("month shifted to %v under %s", d.Time.Month(), name)
		}
	}
}

func TestExpenseRecordValidate(t *testing.T) {
	good := ExpenseRecord{Amount: decimal.NewFromInt(10), Date: NewDate(2024, time.January, 5)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ExpenseRecord{
		{Amount: decimal.NewFromInt(10)},                             // zero date
		{Amount: decimal.Zero, Date: NewDate(2024, time.January, 5)}, // zero amount
		{Amount: decimal.NewFromInt(-1), Date: NewDate(2024, time.January, 5)},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{
		Name: "Groceries",
		ExpenseTypes: []ExpenseType{
			{Name: "Food", Expenses: []ExpenseRecord{{Amount: decimal.NewFromInt(1), Date: NewDate(2024, time.March, 1)}}},
		},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if err := (Category{Name: " "}).Validate(); err == nil {
		t.Fatalf("expected error for blank name")
	}
	bad := Category{Name: "c", ExpenseTypes: []ExpenseType{{Name: ""}}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for blank expense type name")
	}
}
