package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salesledger/models"
)

type LedgerStore struct {
	db DBTX
}

func NewLedgerStore(db DBTX) *LedgerStore {
	return &LedgerStore{db: db}
}

// ListSalesmen returns the distinct salesman names over all entries.
func (s *LedgerStore) ListSalesmen(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT salesman FROM ledger_entries ORDER BY salesman`)
	if err != nil {
		return nil, fmt.Errorf("list salesmen: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan salesman: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *LedgerStore) SalesmanExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ledger_entries WHERE LOWER(salesman) = LOWER(?)`,
		strings.TrimSpace(name)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count entries: %w", err)
	}
	return count > 0, nil
}

// ListEntries returns the salesman's ledger rows in insertion order.
func (s *LedgerStore) ListEntries(ctx context.Context, salesman string) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, salesman, product, issued, returned, expense, payment
		FROM ledger_entries
		WHERE LOWER(salesman) = LOWER(?)
		ORDER BY id`, strings.TrimSpace(salesman))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *LedgerStore) GetEntry(ctx context.Context, salesman, product string) (*models.LedgerEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, salesman, product, issued, returned, expense, payment
		FROM ledger_entries
		WHERE LOWER(salesman) = LOWER(?) AND LOWER(product) = LOWER(?)`,
		strings.TrimSpace(salesman), strings.TrimSpace(product))
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUnknownSalesman
		}
		return nil, err
	}
	return e, nil
}

// UpsertEntry creates a zeroed row for the pair when it does not exist
// yet; it is a no-op otherwise. Pair uniqueness is maintained here, by
// upsert-on-sync, not by a database constraint.
func (s *LedgerStore) UpsertEntry(ctx context.Context, salesman, product string) error {
	salesman = strings.ToLower(strings.TrimSpace(salesman))
	product = strings.ToLower(strings.TrimSpace(product))

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ledger_entries
		WHERE LOWER(salesman) = ? AND LOWER(product) = ?`, salesman, product).Scan(&count)
	if err != nil {
		return fmt.Errorf("count pair: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (salesman, product, issued, returned, expense, payment)
		VALUES (?, ?, 0, 0, '0', '0')`, salesman, product)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// FanOutNewProduct gives every known salesman a zeroed entry for the
// product.
func (s *LedgerStore) FanOutNewProduct(ctx context.Context, product string) error {
	salesmen, err := s.ListSalesmen(ctx)
	if err != nil {
		return err
	}
	for _, salesman := range salesmen {
		if err := s.UpsertEntry(ctx, salesman, product); err != nil {
			return err
		}
	}
	return nil
}

// FanOutNewSalesman gives the salesman a zeroed entry for every
// product currently in inventory.
func (s *LedgerStore) FanOutNewSalesman(ctx context.Context, salesman string, products []string) error {
	for _, product := range products {
		if err := s.UpsertEntry(ctx, salesman, product); err != nil {
			return err
		}
	}
	return nil
}

// UpdateIssue sets the cumulative issued quantity and the recomputed
// payment for the pair.
func (s *LedgerStore) UpdateIssue(ctx context.Context, salesman, product string, issued int, payment decimal.Decimal) error {
	return s.updatePair(ctx, `
		UPDATE ledger_entries SET issued = ?, payment = ?
		WHERE LOWER(salesman) = LOWER(?) AND LOWER(product) = LOWER(?)`,
		issued, payment.String(), salesman, product)
}

// UpdateReturn sets the cumulative returned quantity and the
// recomputed payment for the pair.
func (s *LedgerStore) UpdateReturn(ctx context.Context, salesman, product string, returned int, payment decimal.Decimal) error {
	return s.updatePair(ctx, `
		UPDATE ledger_entries SET returned = ?, payment = ?
		WHERE LOWER(salesman) = LOWER(?) AND LOWER(product) = LOWER(?)`,
		returned, payment.String(), salesman, product)
}

// UpdateExpense overwrites the salesman-level expense on every entry
// of the salesman.
func (s *LedgerStore) UpdateExpense(ctx context.Context, salesman string, expense decimal.Decimal) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ledger_entries SET expense = ?
		WHERE LOWER(salesman) = LOWER(?)`,
		expense.String(), strings.TrimSpace(salesman))
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return models.ErrUnknownSalesman
	}
	return nil
}

// ZeroAll resets issued, returned, payment and expense on every entry,
// preserving the rows and their salesman/product identity.
func (s *LedgerStore) ZeroAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE ledger_entries SET issued = 0, returned = 0, payment = '0', expense = '0'`)
	if err != nil {
		return fmt.Errorf("zero entries: %w", err)
	}
	return nil
}

// DeleteSalesman removes every entry for the salesman.
func (s *LedgerStore) DeleteSalesman(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM ledger_entries WHERE LOWER(salesman) = LOWER(?)`,
		strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete salesman: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return models.ErrUnknownSalesman
	}
	return nil
}

// RecordTransaction appends one issue or return event to the history.
func (s *LedgerStore) RecordTransaction(ctx context.Context, salesman, product, kind string, quantity int) error {
	if kind != models.TxnIssue && kind != models.TxnReturn {
		return fmt.Errorf("%w: invalid transaction kind %q", models.ErrValidation, kind)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_transactions (salesman, product, kind, quantity)
		VALUES (?, ?, ?, ?)`,
		strings.ToLower(strings.TrimSpace(salesman)),
		strings.ToLower(strings.TrimSpace(product)), kind, quantity)
	if err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}

// ListIssueQuantities returns the individual issue amounts for the
// pair, oldest first. Backs the per-issue report columns.
func (s *LedgerStore) ListIssueQuantities(ctx context.Context, salesman, product string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT quantity FROM ledger_transactions
		WHERE LOWER(salesman) = LOWER(?) AND LOWER(product) = LOWER(?) AND kind = ?
		ORDER BY id`,
		strings.TrimSpace(salesman), strings.TrimSpace(product), models.TxnIssue)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	quantities := []int{}
	for rows.Next() {
		var q int
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		quantities = append(quantities, q)
	}
	return quantities, rows.Err()
}

// ListTransactionsByDate returns every issue/return event recorded on
// the given day, newest first.
func (s *LedgerStore) ListTransactionsByDate(ctx context.Context, date string) ([]models.LedgerTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, salesman, product, kind, quantity, created_at
		FROM ledger_transactions
		WHERE strftime('%Y-%m-%d', created_at) = ?
		ORDER BY id DESC`, date)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []models.LedgerTransaction{}
	for rows.Next() {
		var t models.LedgerTransaction
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Salesman, &t.Product, &t.Kind, &t.Quantity, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse transaction created_at: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// DeleteTransactionsForSalesman drops the salesman's history together
// with their ledger entries.
func (s *LedgerStore) DeleteTransactionsForSalesman(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM ledger_transactions WHERE LOWER(salesman) = LOWER(?)`,
		strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	return nil
}

// ClearTransactions purges the whole history; paired with ZeroAll when
// records are cleared after a reporting period.
func (s *LedgerStore) ClearTransactions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ledger_transactions`)
	if err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	return nil
}

func (s *LedgerStore) updatePair(ctx context.Context, query string, field any, payment string, salesman, product string) error {
	result, err := s.db.ExecContext(ctx, query, field, payment,
		strings.TrimSpace(salesman), strings.TrimSpace(product))
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return models.ErrUnknownSalesman
	}
	return nil
}

func scanEntry(r rowScanner) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	if err := r.Scan(&e.ID, &e.Salesman, &e.Product, &e.Issued, &e.Returned, &e.Expense, &e.Payment); err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	return &e, nil
}
