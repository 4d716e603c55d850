package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"salesledger/engine"
)

type ProductController struct {
	engine *engine.Engine
}

func NewProductController(e *engine.Engine) *ProductController {
	return &ProductController{engine: e}
}

// CreateProduct handles adding stock: a new product row, or a quantity
// merge when name, price and category match an existing one.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req struct {
		Name      string          `json:"name" binding:"required"`
		Quantity  int             `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unit_price"`
		Category  string          `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := pc.engine.AddProduct(c.Request.Context(), req.Name, req.Quantity, req.UnitPrice, req.Category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// ListProducts retrieves all products
func (pc *ProductController) ListProducts(c *gin.Context) {
	products, err := pc.engine.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// UpdateProduct overwrites quantity and unit price of a product.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req struct {
		Quantity  int             `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unit_price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := pc.engine.EditProduct(c.Request.Context(), id, req.Quantity, req.UnitPrice)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles deleting a product
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := pc.engine.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
