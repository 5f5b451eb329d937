package ledger

import (
	"context"

	"bilancio/internal/core"
)

// Ports for the ledger store. The report pipeline only ever consumes
// these; which backend satisfies them is wiring.
type (
	// CategoryReader returns the owner's full category tree with nested
	// expense types and expense records, position-ordered. The engine
	// preserves this order in its output.
	CategoryReader interface {
		FetchCategoriesWithExpenses(ctx context.Context, owner string) ([]core.Category, error)
	}

	// IncomeReader returns the owner's income records. A zero from/to
	// date leaves that bound open.
	IncomeReader interface {
		FetchIncome(ctx context.Context, owner string, from, to core.Date) ([]core.IncomeRecord, error)
	}

	// ExpenseWriter appends one expense record under an expense type.
	ExpenseWriter interface {
		AppendExpense(ctx context.Context, owner string, expenseTypeID int64, r core.ExpenseRecord) (id int64, err error)
	}

	// IncomeWriter appends one income record.
	IncomeWriter interface {
		AppendIncome(ctx context.Context, owner string, r core.IncomeRecord) (id int64, err error)
	}

	// Store is the full ledger surface.
	Store interface {
		CategoryReader
		IncomeReader
		ExpenseWriter
		IncomeWriter
	}
)
