package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportRow is one product line of a salesman report: the individual
// issue amounts in order, the cumulative totals, and the live unit
// rate (zero when the product no longer exists in inventory).
type ReportRow struct {
	Product     string          `json:"product"`
	Issues      []int           `json:"issues"`
	TotalIssued int             `json:"total_issued"`
	Returned    int             `json:"returned"`
	Rate        decimal.Decimal `json:"rate"`
	Sales       int             `json:"sales"`
	Payment     decimal.Decimal `json:"payment"`
}

// ReportSnapshot is the ledger state for one salesman joined with
// inventory prices, as handed to the report renderer. It carries no
// references back into the stores.
type ReportSnapshot struct {
	Salesman     string          `json:"salesman"`
	Rows         []ReportRow     `json:"rows"`
	TotalPayment decimal.Decimal `json:"total_payment"`
	Expense      decimal.Decimal `json:"expense"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
