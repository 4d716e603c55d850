package routes

import (
	"github.com/gin-gonic/gin"

	"salesledger/controllers"
	"salesledger/engine"
	"salesledger/report"
)

func RegisterRoutes(router *gin.Engine, e *engine.Engine, renderer *report.Renderer) {
	products := controllers.NewProductController(e)
	salesmen := controllers.NewSalesmanController(e)
	ledger := controllers.NewLedgerController(e)
	reports := controllers.NewReportController(e, renderer)

	api := router.Group("/api")
	{
		// Product routes
		api.POST("/products", products.CreateProduct)
		api.GET("/products", products.ListProducts)
		api.PUT("/products/:id", products.UpdateProduct)
		api.DELETE("/products/:id", products.DeleteProduct)

		// Salesman routes
		api.POST("/salesmen", salesmen.CreateSalesman)
		api.GET("/salesmen", salesmen.ListSalesmen)
		api.GET("/salesmen/:name/entries", salesmen.ListEntries)
		api.DELETE("/salesmen/:name", salesmen.DeleteSalesman)

		// Ledger routes
		api.POST("/ledger/issue", ledger.RecordIssue)
		api.POST("/ledger/return", ledger.RecordReturn)
		api.POST("/ledger/expense", ledger.RecordExpense)
		api.POST("/ledger/clear", ledger.ClearRecords)
		api.GET("/ledger/transactions", ledger.ListTransactionsByDate)

		// Report routes
		api.POST("/reports/:name", reports.GenerateReport)
	}
}
