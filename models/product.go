package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is one inventory row. TotalValue is derived from quantity and
// unit price and is rewritten on every mutation of either.
type Product struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalValue decimal.Decimal `json:"total_value"`
	Category   string          `json:"category"`
	CreatedAt  time.Time       `json:"created_at"`
}
