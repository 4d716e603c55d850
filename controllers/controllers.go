package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salesledger/models"
	"salesledger/report"
)

// writeError maps domain errors onto HTTP status codes. Anything
// outside the taxonomy is a persistence failure and surfaces as 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnknownProduct), errors.Is(err, models.ErrUnknownSalesman):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientStock), errors.Is(err, models.ErrDuplicateSalesman):
		status = http.StatusConflict
	case errors.Is(err, report.ErrReportBusy):
		status = http.StatusLocked
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
