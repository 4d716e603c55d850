package engine

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/config"
	"salesledger/models"
	"salesledger/store"
)

func newTestEngine(t *testing.T) (*Engine, *sql.DB) {
	t.Helper()
	db, err := config.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), db
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seed puts one product and one salesman in place.
func seed(t *testing.T, e *Engine, product string, stock int, rate string, salesman string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.AddProduct(ctx, product, stock, price(rate), "")
	require.NoError(t, err)
	require.NoError(t, e.AddSalesman(ctx, salesman))
}

func getProduct(t *testing.T, db *sql.DB, name string) *models.Product {
	t.Helper()
	p, err := store.NewInventoryStore(db).FindByName(context.Background(), name)
	require.NoError(t, err)
	return p
}

func getEntry(t *testing.T, db *sql.DB, salesman, product string) *models.LedgerEntry {
	t.Helper()
	e, err := store.NewLedgerStore(db).GetEntry(context.Background(), salesman, product)
	require.NoError(t, err)
	return e
}

func TestRecordIssue(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 50, "20", "asha")

	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 30))

	p := getProduct(t, db, "rice")
	assert.Equal(t, 20, p.Quantity)
	assert.True(t, p.TotalValue.Equal(price("400")))

	entry := getEntry(t, db, "asha", "rice")
	assert.Equal(t, 30, entry.Issued)
	assert.True(t, entry.Payment.Equal(price("600")), "payment = (issued - returned) * rate")
}

func TestRecordIssue_Accumulates(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 50, "20", "asha")

	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 10))
	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 15))

	entry := getEntry(t, db, "asha", "rice")
	assert.Equal(t, 25, entry.Issued)
	assert.Equal(t, 25, getProduct(t, db, "rice").Quantity)

	issues, err := store.NewLedgerStore(db).ListIssueQuantities(ctx, "asha", "rice")
	require.NoError(t, err)
	assert.Equal(t, []int{10, 15}, issues)
}

func TestRecordIssue_InsufficientStockLeavesStateUnchanged(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 10, "20", "asha")

	err := e.RecordIssue(ctx, "asha", "rice", 15)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	assert.Equal(t, 10, getProduct(t, db, "rice").Quantity)
	entry := getEntry(t, db, "asha", "rice")
	assert.Equal(t, 0, entry.Issued)
	assert.True(t, entry.Payment.IsZero())
}

func TestRecordIssue_Errors(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 10, "20", "asha")

	assert.ErrorIs(t, e.RecordIssue(ctx, "asha", "rice", 0), models.ErrValidation)
	assert.ErrorIs(t, e.RecordIssue(ctx, "asha", "wheat", 5), models.ErrUnknownProduct)
	assert.ErrorIs(t, e.RecordIssue(ctx, "nobody", "rice", 5), models.ErrUnknownSalesman)
}

func TestRecordReturn(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 50, "20", "asha")
	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 30))

	require.NoError(t, e.RecordReturn(ctx, "asha", "rice", 10))

	assert.Equal(t, 30, getProduct(t, db, "rice").Quantity)
	entry := getEntry(t, db, "asha", "rice")
	assert.Equal(t, 10, entry.Returned)
	assert.Equal(t, 20, entry.Sales())
	assert.True(t, entry.Payment.Equal(price("400")))
}

func TestRecordReturn_FullReturnRejected(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 50, "20", "asha")
	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 5))

	// Returning everything issued is disallowed; the cumulative
	// returned quantity must stay strictly below the issued quantity.
	assert.ErrorIs(t, e.RecordReturn(ctx, "asha", "rice", 5), models.ErrValidation)

	require.NoError(t, e.RecordReturn(ctx, "asha", "rice", 4))
	entry := getEntry(t, db, "asha", "rice")
	assert.Equal(t, 4, entry.Returned)
	assert.Equal(t, 1, entry.Sales())

	// A second return bumping the cumulative total to the issued
	// quantity is rejected too.
	assert.ErrorIs(t, e.RecordReturn(ctx, "asha", "rice", 1), models.ErrValidation)
	assert.ErrorIs(t, e.RecordReturn(ctx, "asha", "rice", 0), models.ErrValidation)
}

func TestStockConservation(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	const initialStock = 100
	seed(t, e, "rice", initialStock, "20", "asha")
	require.NoError(t, e.AddSalesman(ctx, "binu"))

	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 30))
	require.NoError(t, e.RecordIssue(ctx, "binu", "rice", 20))
	require.NoError(t, e.RecordReturn(ctx, "asha", "rice", 5))
	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 10))
	require.NoError(t, e.RecordReturn(ctx, "binu", "rice", 8))

	outstanding := 0
	for _, name := range []string{"asha", "binu"} {
		entry := getEntry(t, db, name, "rice")
		outstanding += entry.Sales()
	}
	assert.Equal(t, initialStock, getProduct(t, db, "rice").Quantity+outstanding,
		"stock is conserved across issues and returns")
}

func TestPaymentInvariantAfterEveryOperation(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 100, "17.50", "asha")

	steps := []func() error{
		func() error { return e.RecordIssue(ctx, "asha", "rice", 12) },
		func() error { return e.RecordReturn(ctx, "asha", "rice", 3) },
		func() error { return e.RecordIssue(ctx, "asha", "rice", 7) },
		func() error { return e.RecordReturn(ctx, "asha", "rice", 2) },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)

		p := getProduct(t, db, "rice")
		entry := getEntry(t, db, "asha", "rice")
		want := p.UnitPrice.Mul(decimal.NewFromInt(int64(entry.Sales())))
		assert.True(t, entry.Payment.Equal(want), "step %d: payment %s, want %s", i, entry.Payment, want)
		assert.True(t, p.TotalValue.Equal(p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))),
			"step %d: total_value must track quantity * unit_price", i)
	}
}

func TestAddProduct_FansOutToExistingSalesmen(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.AddSalesman(ctx, "asha"))
	_, err := e.AddProduct(ctx, "Rice", 50, price("20.00"), "")
	require.NoError(t, err)

	entry := getEntry(t, db, "asha", "rice")
	assert.Equal(t, 0, entry.Issued)
	assert.Equal(t, 0, entry.Returned)
	assert.True(t, entry.Payment.IsZero())
}

func TestAddSalesman(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	_, err := e.AddProduct(ctx, "rice", 50, price("20"), "")
	require.NoError(t, err)
	_, err = e.AddProduct(ctx, "wheat", 20, price("30"), "")
	require.NoError(t, err)

	require.NoError(t, e.AddSalesman(ctx, "Asha"))

	entries, err := e.ListEntries(ctx, "asha")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "new salesman gets an entry per product")

	assert.ErrorIs(t, e.AddSalesman(ctx, "ASHA"), models.ErrDuplicateSalesman)
	assert.ErrorIs(t, e.AddSalesman(ctx, "  "), models.ErrValidation)

	// Verify nothing half-applied for the duplicate.
	salesmen, err := store.NewLedgerStore(db).ListSalesmen(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"asha"}, salesmen)
}

func TestDeleteSalesman_LeavesInventoryUntouched(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 50, "20", "asha")
	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 30))

	require.NoError(t, e.DeleteSalesman(ctx, "asha"))

	_, err := e.ListEntries(ctx, "asha")
	assert.ErrorIs(t, err, models.ErrUnknownSalesman)

	// Issued stock is not returned automatically.
	assert.Equal(t, 20, getProduct(t, db, "rice").Quantity)
}

func TestRecordExpense(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 50, "20", "asha")

	require.NoError(t, e.RecordExpense(ctx, "asha", price("75.25")))
	assert.True(t, getEntry(t, db, "asha", "rice").Expense.Equal(price("75.25")))

	// Unconditional overwrite, no reconciliation against payment.
	require.NoError(t, e.RecordExpense(ctx, "asha", price("10")))
	assert.True(t, getEntry(t, db, "asha", "rice").Expense.Equal(price("10")))

	assert.ErrorIs(t, e.RecordExpense(ctx, "asha", price("-1")), models.ErrValidation)
	assert.ErrorIs(t, e.RecordExpense(ctx, "nobody", price("5")), models.ErrUnknownSalesman)
}

func TestClearRecords(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 50, "20", "asha")
	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 30))
	require.NoError(t, e.RecordExpense(ctx, "asha", price("40")))

	require.NoError(t, e.ClearRecords(ctx))

	entry := getEntry(t, db, "asha", "rice")
	assert.Equal(t, 0, entry.Issued)
	assert.Equal(t, 0, entry.Returned)
	assert.True(t, entry.Payment.IsZero())
	assert.True(t, entry.Expense.IsZero())

	issues, err := store.NewLedgerStore(db).ListIssueQuantities(ctx, "asha", "rice")
	require.NoError(t, err)
	assert.Empty(t, issues, "history is purged together with the zeroing")

	// Inventory keeps whatever the ledger had outstanding.
	assert.Equal(t, 20, getProduct(t, db, "rice").Quantity)
}

func TestEditProduct_RefreshesPayments(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 50, "20", "asha")
	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 10))

	p := getProduct(t, db, "rice")
	_, err := e.EditProduct(ctx, p.ID, p.Quantity, price("25"))
	require.NoError(t, err)

	entry := getEntry(t, db, "asha", "rice")
	assert.True(t, entry.Payment.Equal(price("250")), "payment follows the live unit price")
}

func TestSnapshot(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 50, "20", "asha")
	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 10))
	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 5))
	require.NoError(t, e.RecordReturn(ctx, "asha", "rice", 2))
	require.NoError(t, e.RecordExpense(ctx, "asha", price("12")))

	snap, err := e.Snapshot(ctx, "asha")
	require.NoError(t, err)

	assert.Equal(t, "asha", snap.Salesman)
	assert.True(t, snap.Expense.Equal(price("12")))
	assert.True(t, snap.TotalPayment.Equal(price("260")))
	require.Len(t, snap.Rows, 1)

	row := snap.Rows[0]
	assert.Equal(t, "rice", row.Product)
	assert.Equal(t, []int{10, 5}, row.Issues)
	assert.Equal(t, 15, row.TotalIssued)
	assert.Equal(t, 2, row.Returned)
	assert.Equal(t, 13, row.Sales)
	assert.True(t, row.Rate.Equal(price("20")))

	_, err = e.Snapshot(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrUnknownSalesman)
}

func TestSnapshot_DeletedProductHasZeroRate(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 50, "20", "asha")
	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 10))

	require.NoError(t, e.DeleteProduct(ctx, getProduct(t, db, "rice").ID))

	snap, err := e.Snapshot(ctx, "asha")
	require.NoError(t, err)
	require.Len(t, snap.Rows, 1)
	assert.True(t, snap.Rows[0].Rate.IsZero(), "orphaned ledger rows read the missing product as rate 0")
}

type recordingNotifier struct {
	changed []string
}

func (r *recordingNotifier) SalesmanChanged(name string) {
	r.changed = append(r.changed, name)
}

func TestNotifierFiresAfterSuccessfulCommandsOnly(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	seed(t, e, "rice", 10, "20", "asha")

	n := &recordingNotifier{}
	e.SetNotifier(n)

	require.NoError(t, e.RecordIssue(ctx, "asha", "rice", 5))
	assert.Error(t, e.RecordIssue(ctx, "asha", "rice", 100))
	require.NoError(t, e.RecordExpense(ctx, "asha", price("3")))

	assert.Equal(t, []string{"asha", "asha"}, n.changed)
}
