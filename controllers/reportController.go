package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesledger/engine"
	"salesledger/report"
)

type ReportController struct {
	engine   *engine.Engine
	renderer *report.Renderer
}

func NewReportController(e *engine.Engine, r *report.Renderer) *ReportController {
	return &ReportController{engine: e, renderer: r}
}

// GenerateReport renders the salesman's PDF for today and returns the
// file path.
func (rc *ReportController) GenerateReport(c *gin.Context) {
	snap, err := rc.engine.Snapshot(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}

	path, err := rc.renderer.Render(snap)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report generated successfully", "path": path})
}
