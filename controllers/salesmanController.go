package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesledger/engine"
)

type SalesmanController struct {
	engine *engine.Engine
}

func NewSalesmanController(e *engine.Engine) *SalesmanController {
	return &SalesmanController{engine: e}
}

// CreateSalesman registers a salesman and fans out zeroed ledger
// entries for every product in inventory.
func (sc *SalesmanController) CreateSalesman(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sc.engine.AddSalesman(c.Request.Context(), req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Salesman added successfully"})
}

// ListSalesmen retrieves the distinct salesman names.
func (sc *SalesmanController) ListSalesmen(c *gin.Context) {
	salesmen, err := sc.engine.ListSalesmen(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, salesmen)
}

// ListEntries retrieves the ledger rows for one salesman.
func (sc *SalesmanController) ListEntries(c *gin.Context) {
	entries, err := sc.engine.ListEntries(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// DeleteSalesman removes the salesman's ledger rows and history;
// inventory stays untouched.
func (sc *SalesmanController) DeleteSalesman(c *gin.Context) {
	if err := sc.engine.DeleteSalesman(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Salesman deleted successfully"})
}
