package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"salesledger/engine"
)

type LedgerController struct {
	engine *engine.Engine
}

func NewLedgerController(e *engine.Engine) *LedgerController {
	return &LedgerController{engine: e}
}

type pairRequest struct {
	Salesman string `json:"salesman" binding:"required"`
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity"`
}

// RecordIssue assigns stock from inventory to a salesman's ledger.
func (lc *LedgerController) RecordIssue(c *gin.Context) {
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := lc.engine.RecordIssue(c.Request.Context(), req.Salesman, req.Product, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue recorded successfully"})
}

// RecordReturn reverses part of a previously issued quantity back into
// inventory.
func (lc *LedgerController) RecordReturn(c *gin.Context) {
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := lc.engine.RecordReturn(c.Request.Context(), req.Salesman, req.Product, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Return recorded successfully"})
}

// RecordExpense overwrites a salesman-level expense amount.
func (lc *LedgerController) RecordExpense(c *gin.Context) {
	var req struct {
		Salesman string          `json:"salesman" binding:"required"`
		Expense  decimal.Decimal `json:"expense"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := lc.engine.RecordExpense(c.Request.Context(), req.Salesman, req.Expense); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense recorded successfully"})
}

// ClearRecords zeroes all ledger figures while preserving the rows.
func (lc *LedgerController) ClearRecords(c *gin.Context) {
	if err := lc.engine.ClearRecords(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All records cleared"})
}

// ListTransactionsByDate retrieves the issue/return events of one day.
func (lc *LedgerController) ListTransactionsByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing date parameter"})
		return
	}

	txns, err := lc.engine.ListTransactionsByDate(c.Request.Context(), date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}
