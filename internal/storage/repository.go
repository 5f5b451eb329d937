package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"bilancio/internal/core"
)

// SQLiteRepository is the ledger store backed by SQLite. It satisfies
// the ledger ports consumed by the report pipeline.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FetchCategoriesWithExpenses implements ledger.CategoryReader. The tree
// comes back position-ordered, every category and expense type included
// even when it has no records.
func (r *SQLiteRepository) FetchCategoriesWithExpenses(ctx context.Context, owner string) ([]core.Category, error) {
	categories, index, err := r.fetchCategories(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return categories, nil
	}

	typeIndex, err := r.fetchExpenseTypes(ctx, owner, categories, index)
	if err != nil {
		return nil, err
	}
	if err := r.fetchExpenses(ctx, owner, categories, index, typeIndex); err != nil {
		return nil, err
	}

	return categories, nil
}

// fetchCategories returns the owner's categories and an id->slice-index map.
func (r *SQLiteRepository) fetchCategories(ctx context.Context, owner string) ([]core.Category, map[int64]int, error) {
	rows, err := r.db.QueryContext(ctx, listCategories, owner)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	index := make(map[int64]int)
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, nil, fmt.Errorf("scan category: %w", err)
		}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, index, nil
}

func (r *SQLiteRepository) fetchExpenseTypes(ctx context.Context, owner string, categories []core.Category, index map[int64]int) (map[int64]*core.ExpenseType, error) {
	rows, err := r.db.QueryContext(ctx, listExpenseTypes, owner)
	if err != nil {
		return nil, fmt.Errorf("list expense types: %w", err)
	}
	defer rows.Close()

	// Types are appended in query order; pointers stay valid because the
	// second pass below never grows the slices again.
	positions := make(map[int64][2]int)
	for rows.Next() {
		var (
			et    core.ExpenseType
			catID int64
		)
		if err := rows.Scan(&et.ID, &catID, &et.Name); err != nil {
			return nil, fmt.Errorf("scan expense type: %w", err)
		}
		ci, ok := index[catID]
		if !ok {
			continue
		}
		categories[ci].ExpenseTypes = append(categories[ci].ExpenseTypes, et)
		positions[et.ID] = [2]int{ci, len(categories[ci].ExpenseTypes) - 1}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense types: %w", err)
	}

	typeIndex := make(map[int64]*core.ExpenseType, len(positions))
	for id, pos := range positions {
		typeIndex[id] = &categories[pos[0]].ExpenseTypes[pos[1]]
	}
	return typeIndex, nil
}

func (r *SQLiteRepository) fetchExpenses(ctx context.Context, owner string, categories []core.Category, index map[int64]int, typeIndex map[int64]*core.ExpenseType) error {
	rows, err := r.db.QueryContext(ctx, listExpenses, owner)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			typeID  int64
			cents   int64
			dateStr string
		)
		if err := rows.Scan(&typeID, &cents, &dateStr); err != nil {
			return fmt.Errorf("scan expense: %w", err)
		}
		et, ok := typeIndex[typeID]
		if !ok {
			continue
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return fmt.Errorf("parse expense date %q: %w", dateStr, err)
		}
		et.Expenses = append(et.Expenses, core.ExpenseRecord{
			Amount: core.AmountFromCents(cents),
			Date:   date,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate expenses: %w", err)
	}
	return nil
}

// FetchIncome implements ledger.IncomeReader. Zero bounds are open.
func (r *SQLiteRepository) FetchIncome(ctx context.Context, owner string, from, to core.Date) ([]core.IncomeRecord, error) {
	fromStr, toStr := "0000-00-00", "9999-12-31"
	if !from.IsZero() {
		fromStr = from.String()
	}
	if !to.IsZero() {
		toStr = to.String()
	}

	rows, err := r.db.QueryContext(ctx, listIncomes, owner, fromStr, toStr)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	records := []core.IncomeRecord{}
	for rows.Next() {
		var (
			cents   int64
			dateStr string
		)
		if err := rows.Scan(&cents, &dateStr); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse income date %q: %w", dateStr, err)
		}
		records = append(records, core.IncomeRecord{
			Amount: core.AmountFromCents(cents),
			Date:   date,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incomes: %w", err)
	}
	return records, nil
}

// AppendExpense implements ledger.ExpenseWriter. The expense type must
// belong to the owner.
func (r *SQLiteRepository) AppendExpense(ctx context.Context, owner string, expenseTypeID int64, rec core.ExpenseRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	var exists int
	err := r.db.QueryRowContext(ctx, expenseTypeOwned, expenseTypeID, owner).Scan(&exists)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("expense type %d not found for owner", expenseTypeID)
	}
	if err != nil {
		return 0, fmt.Errorf("check expense type: %w", err)
	}

	res, err := r.db.ExecContext(ctx, insertExpense,
		expenseTypeID, core.AmountToCents(rec.Amount), rec.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"expense_type_id", expenseTypeID,
		"amount", rec.Amount.String(),
		"date", rec.Date.String())
	return id, nil
}

// AppendIncome implements ledger.IncomeWriter.
func (r *SQLiteRepository) AppendIncome(ctx context.Context, owner string, rec core.IncomeRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, insertIncome,
		owner, core.AmountToCents(rec.Amount), rec.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income insert id: %w", err)
	}

	slog.InfoContext(ctx, "Income saved",
		"id", id,
		"amount", rec.Amount.String(),
		"date", rec.Date.String())
	return id, nil
}

// CreateCategory adds a category at the end of the owner's ordering.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, owner, name, color string) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertCategory, owner, name, color, owner)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category insert id: %w", err)
	}
	return id, nil
}

// CreateExpenseType adds an expense type at the end of its category.
func (r *SQLiteRepository) CreateExpenseType(ctx context.Context, categoryID int64, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertExpenseType, categoryID, name, categoryID)
	if err != nil {
		return 0, fmt.Errorf("insert expense type: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense type insert id: %w", err)
	}
	return id, nil
}
