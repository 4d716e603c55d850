// Package engine holds the reconciliation logic between the inventory
// store and the salesman ledger. Every command runs inside a single
// SQL transaction: either both stores move to the next state or
// neither does, and a failed command leaves prior state unchanged.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salesledger/models"
	"salesledger/store"
)

// ReportNotifier is told after a successful command that a salesman's
// figures changed. It is a notification only; the engine never fails a
// command over it.
type ReportNotifier interface {
	SalesmanChanged(name string)
}

type Engine struct {
	db       *sql.DB
	notifier ReportNotifier
}

func New(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// SetNotifier wires the report side effect. Optional.
func (e *Engine) SetNotifier(n ReportNotifier) {
	e.notifier = n
}

// AddProduct inserts or merges a product, then fans a zeroed ledger
// entry out to every known salesman.
func (e *Engine) AddProduct(ctx context.Context, name string, quantity int, unitPrice decimal.Decimal, category string) (*models.Product, error) {
	var product *models.Product
	err := e.withTx(ctx, func(inv *store.InventoryStore, led *store.LedgerStore) error {
		p, err := inv.UpsertProduct(ctx, name, quantity, unitPrice, category)
		if err != nil {
			return err
		}
		if err := led.FanOutNewProduct(ctx, p.Name); err != nil {
			return err
		}
		product = p
		return nil
	})
	return product, err
}

// EditProduct overwrites quantity and unit price of a product and
// refreshes ledger payments that reference it, since payment is
// derived from the live unit price.
func (e *Engine) EditProduct(ctx context.Context, id, newQuantity int, newUnitPrice decimal.Decimal) (*models.Product, error) {
	var product *models.Product
	err := e.withTx(ctx, func(inv *store.InventoryStore, led *store.LedgerStore) error {
		p, err := inv.EditProduct(ctx, id, newQuantity, newUnitPrice)
		if err != nil {
			return err
		}
		product = p
		return e.refreshPayments(ctx, led, p)
	})
	return product, err
}

func (e *Engine) DeleteProduct(ctx context.Context, id int) error {
	return e.withTx(ctx, func(inv *store.InventoryStore, _ *store.LedgerStore) error {
		return inv.DeleteProduct(ctx, id)
	})
}

// AddSalesman registers a new salesman and fans a zeroed entry out for
// every product currently in inventory.
func (e *Engine) AddSalesman(ctx context.Context, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("%w: salesman name is required", models.ErrValidation)
	}
	return e.withTx(ctx, func(inv *store.InventoryStore, led *store.LedgerStore) error {
		exists, err := led.SalesmanExists(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrDuplicateSalesman
		}
		products, err := inv.ListProducts(ctx)
		if err != nil {
			return err
		}
		names := make([]string, len(products))
		for i, p := range products {
			names[i] = p.Name
		}
		return led.FanOutNewSalesman(ctx, name, names)
	})
}

// DeleteSalesman removes the salesman's ledger rows and history.
// Inventory is untouched: stock still out with the salesman is not
// returned automatically.
func (e *Engine) DeleteSalesman(ctx context.Context, name string) error {
	return e.withTx(ctx, func(_ *store.InventoryStore, led *store.LedgerStore) error {
		if err := led.DeleteSalesman(ctx, name); err != nil {
			return err
		}
		return led.DeleteTransactionsForSalesman(ctx, name)
	})
}

// RecordIssue moves q units of product from inventory onto the
// salesman's ledger and recomputes the pair's payment.
func (e *Engine) RecordIssue(ctx context.Context, salesman, product string, q int) error {
	if q <= 0 {
		return fmt.Errorf("%w: issue quantity must be greater than 0", models.ErrValidation)
	}
	err := e.withTx(ctx, func(inv *store.InventoryStore, led *store.LedgerStore) error {
		p, err := inv.FindByName(ctx, product)
		if err != nil {
			return err
		}
		exists, err := led.SalesmanExists(ctx, salesman)
		if err != nil {
			return err
		}
		if !exists {
			return models.ErrUnknownSalesman
		}
		if q > p.Quantity {
			return fmt.Errorf("%w: %d requested, %d available for %q",
				models.ErrInsufficientStock, q, p.Quantity, p.Name)
		}

		if _, err := inv.AdjustQuantity(ctx, p.Name, -q); err != nil {
			return err
		}
		if err := led.UpsertEntry(ctx, salesman, p.Name); err != nil {
			return err
		}
		entry, err := led.GetEntry(ctx, salesman, p.Name)
		if err != nil {
			return err
		}
		issued := entry.Issued + q
		payment := paymentFor(issued, entry.Returned, p.UnitPrice)
		if err := led.UpdateIssue(ctx, salesman, p.Name, issued, payment); err != nil {
			return err
		}
		return led.RecordTransaction(ctx, salesman, p.Name, models.TxnIssue, q)
	})
	if err != nil {
		return err
	}
	e.notify(salesman)
	return nil
}

// RecordReturn moves r units of product back from the salesman's
// ledger into inventory. A return that would bring the cumulative
// returned quantity up to or past the issued quantity is rejected.
func (e *Engine) RecordReturn(ctx context.Context, salesman, product string, r int) error {
	if r <= 0 {
		return fmt.Errorf("%w: return quantity must be greater than 0", models.ErrValidation)
	}
	err := e.withTx(ctx, func(inv *store.InventoryStore, led *store.LedgerStore) error {
		p, err := inv.FindByName(ctx, product)
		if err != nil {
			return err
		}
		entry, err := led.GetEntry(ctx, salesman, p.Name)
		if err != nil {
			return err
		}
		returned := entry.Returned + r
		if returned >= entry.Issued {
			return fmt.Errorf("%w: return of %d would reach the issued quantity %d",
				models.ErrValidation, returned, entry.Issued)
		}

		if _, err := inv.AdjustQuantity(ctx, p.Name, r); err != nil {
			return err
		}
		payment := paymentFor(entry.Issued, returned, p.UnitPrice)
		if err := led.UpdateReturn(ctx, salesman, p.Name, returned, payment); err != nil {
			return err
		}
		return led.RecordTransaction(ctx, salesman, p.Name, models.TxnReturn, r)
	})
	if err != nil {
		return err
	}
	e.notify(salesman)
	return nil
}

// RecordExpense overwrites the salesman-level expense. Expenses are
// informational and never reconciled against payments.
func (e *Engine) RecordExpense(ctx context.Context, salesman string, expense decimal.Decimal) error {
	if expense.IsNegative() {
		return fmt.Errorf("%w: expense cannot be negative", models.ErrValidation)
	}
	err := e.withTx(ctx, func(_ *store.InventoryStore, led *store.LedgerStore) error {
		return led.UpdateExpense(ctx, salesman, expense)
	})
	if err != nil {
		return err
	}
	e.notify(salesman)
	return nil
}

// ClearRecords zeroes every ledger entry and purges the issue/return
// history. Rows and their salesman/product identity survive. Intended
// to run after reports for the period have been generated.
func (e *Engine) ClearRecords(ctx context.Context) error {
	return e.withTx(ctx, func(_ *store.InventoryStore, led *store.LedgerStore) error {
		if err := led.ZeroAll(ctx); err != nil {
			return err
		}
		return led.ClearTransactions(ctx)
	})
}

// Snapshot joins the salesman's ledger rows with live inventory prices
// for the report renderer. A product missing from inventory is
// reported with rate 0.
func (e *Engine) Snapshot(ctx context.Context, salesman string) (*models.ReportSnapshot, error) {
	inv := store.NewInventoryStore(e.db)
	led := store.NewLedgerStore(e.db)

	exists, err := led.SalesmanExists(ctx, salesman)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrUnknownSalesman
	}

	entries, err := led.ListEntries(ctx, salesman)
	if err != nil {
		return nil, err
	}

	snap := &models.ReportSnapshot{
		Salesman:     strings.ToLower(strings.TrimSpace(salesman)),
		Rows:         make([]models.ReportRow, 0, len(entries)),
		TotalPayment: decimal.Zero,
		Expense:      decimal.Zero,
		GeneratedAt:  time.Now(),
	}
	for _, entry := range entries {
		rate := decimal.Zero
		if p, err := inv.FindByName(ctx, entry.Product); err == nil {
			rate = p.UnitPrice
		} else if !isUnknown(err) {
			return nil, err
		}
		issues, err := led.ListIssueQuantities(ctx, salesman, entry.Product)
		if err != nil {
			return nil, err
		}
		snap.Rows = append(snap.Rows, models.ReportRow{
			Product:     entry.Product,
			Issues:      issues,
			TotalIssued: entry.Issued,
			Returned:    entry.Returned,
			Rate:        rate,
			Sales:       entry.Sales(),
			Payment:     entry.Payment,
		})
		snap.TotalPayment = snap.TotalPayment.Add(entry.Payment)
		snap.Expense = entry.Expense
	}
	return snap, nil
}

func (e *Engine) ListProducts(ctx context.Context) ([]models.Product, error) {
	return store.NewInventoryStore(e.db).ListProducts(ctx)
}

func (e *Engine) ListSalesmen(ctx context.Context) ([]string, error) {
	return store.NewLedgerStore(e.db).ListSalesmen(ctx)
}

func (e *Engine) ListEntries(ctx context.Context, salesman string) ([]models.LedgerEntry, error) {
	led := store.NewLedgerStore(e.db)
	exists, err := led.SalesmanExists(ctx, salesman)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrUnknownSalesman
	}
	return led.ListEntries(ctx, salesman)
}

func (e *Engine) ListTransactionsByDate(ctx context.Context, date string) ([]models.LedgerTransaction, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: invalid date %q, use YYYY-MM-DD", models.ErrValidation, date)
	}
	return store.NewLedgerStore(e.db).ListTransactionsByDate(ctx, date)
}

// refreshPayments rewrites the payment of every ledger row holding the
// edited product.
func (e *Engine) refreshPayments(ctx context.Context, led *store.LedgerStore, p *models.Product) error {
	salesmen, err := led.ListSalesmen(ctx)
	if err != nil {
		return err
	}
	for _, salesman := range salesmen {
		entry, err := led.GetEntry(ctx, salesman, p.Name)
		if err != nil {
			if isUnknown(err) {
				continue
			}
			return err
		}
		payment := paymentFor(entry.Issued, entry.Returned, p.UnitPrice)
		if err := led.UpdateIssue(ctx, salesman, p.Name, entry.Issued, payment); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) withTx(ctx context.Context, fn func(inv *store.InventoryStore, led *store.LedgerStore) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(store.NewInventoryStore(tx), store.NewLedgerStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (e *Engine) notify(salesman string) {
	if e.notifier == nil {
		return
	}
	e.notifier.SalesmanChanged(strings.ToLower(strings.TrimSpace(salesman)))
}

func paymentFor(issued, returned int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(issued - returned)))
}

func isUnknown(err error) bool {
	return errors.Is(err, models.ErrUnknownProduct) || errors.Is(err, models.ErrUnknownSalesman)
}
