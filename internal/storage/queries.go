package storage

// Hand-written SQL for the ledger schema. Ordering matters: the report
// engine preserves store order, so categories and expense types always
// come back by (position, id).
const (
	listCategories = `
SELECT id, name, color
FROM categories
WHERE owner = ?
ORDER BY position, id`

	listExpenseTypes = `
SELECT et.id, et.category_id, et.name
FROM expense_types et
JOIN categories c ON c.id = et.category_id
WHERE c.owner = ?
ORDER BY et.category_id, et.position, et.id`

	listExpenses = `
SELECT e.expense_type_id, e.amount_cents, e.date
FROM expenses e
JOIN expense_types et ON et.id = e.expense_type_id
JOIN categories c ON c.id = et.category_id
WHERE c.owner = ?
ORDER BY e.date, e.id`

	listIncomes = `
SELECT amount_cents, date
FROM incomes
WHERE owner = ? AND date >= ? AND date <= ?
ORDER BY date, id`

	expenseTypeOwned = `
SELECT 1
FROM expense_types et
JOIN categories c ON c.id = et.category_id
WHERE et.id = ? AND c.owner = ?`

	insertExpense = `
INSERT INTO expenses (expense_type_id, amount_cents, date)
VALUES (?, ?, ?)`

	insertIncome = `
INSERT INTO incomes (owner, amount_cents, date)
VALUES (?, ?, ?)`

	insertCategory = `
INSERT INTO categories (owner, name, color, position)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM categories WHERE owner = ?))`

	insertExpenseType = `
INSERT INTO expense_types (category_id, name, position)
VALUES (?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM expense_types WHERE category_id = ?))`
)
