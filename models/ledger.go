package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the cumulative ledger row for one (salesman, product)
// pair. Issued and Returned accumulate across commands; Payment is
// derived as (issued - returned) * unit price and refreshed on every
// edit. Expense is a salesman-level amount denormalized onto each of
// the salesman's rows.
type LedgerEntry struct {
	ID       int             `json:"id"`
	Salesman string          `json:"salesman"`
	Product  string          `json:"product"`
	Issued   int             `json:"issued"`
	Returned int             `json:"returned"`
	Expense  decimal.Decimal `json:"expense"`
	Payment  decimal.Decimal `json:"payment"`
}

// Sales is the quantity considered sold for payment purposes.
func (e LedgerEntry) Sales() int {
	return e.Issued - e.Returned
}

// Transaction kinds recorded in the issue/return history.
const (
	TxnIssue  = "issue"
	TxnReturn = "return"
)

// LedgerTransaction is one issue or return event. The cumulative
// ledger rows are authoritative for balances; this history only backs
// the per-issue report columns and the by-date listing.
type LedgerTransaction struct {
	ID        int       `json:"id"`
	Salesman  string    `json:"salesman"`
	Product   string    `json:"product"`
	Kind      string    `json:"kind"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
