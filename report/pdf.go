// Package report renders per-salesman sales reports as PDF files. The
// renderer owns no state: it consumes a snapshot and writes one
// document per salesman per reporting day.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"salesledger/models"
)

// ErrReportBusy means the target file appears to be open in another
// program. Best-effort check, not a lock.
var ErrReportBusy = errors.New("report file is open elsewhere")

type Renderer struct {
	baseDir string
}

func NewRenderer(baseDir string) *Renderer {
	return &Renderer{baseDir: baseDir}
}

// OutputPath is {base}/{salesman lowercased}/{MonthName}/{YYYY-MM-DD}.pdf,
// keyed by the snapshot's generation time.
func (r *Renderer) OutputPath(snap *models.ReportSnapshot) string {
	return filepath.Join(
		r.baseDir,
		strings.ToLower(snap.Salesman),
		snap.GeneratedAt.Month().String(),
		snap.GeneratedAt.Format("2006-01-02")+".pdf",
	)
}

// Render writes the snapshot as a PDF and returns the file path. An
// existing report for the same day is overwritten unless it appears to
// be open for writing.
func (r *Renderer) Render(snap *models.ReportSnapshot) (string, error) {
	path := r.OutputPath(snap)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create report folder: %w", err)
	}
	if err := checkWritable(path); err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, "Sales Report for "+snap.Salesman, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(190, 8, "Total Payment: Rs "+snap.TotalPayment.StringFixed(2), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 8, "Expense: Rs "+snap.Expense.StringFixed(2), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// One issue column per recorded issue event, sized by the widest
	// row so every row lines up.
	maxIssues := 0
	for _, row := range snap.Rows {
		if len(row.Issues) > maxIssues {
			maxIssues = len(row.Issues)
		}
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 8, "Product", "1", 0, "C", false, 0, "")
	for i := 1; i <= maxIssues; i++ {
		pdf.CellFormat(15, 8, "Issue "+strconv.Itoa(i), "1", 0, "C", false, 0, "")
	}
	pdf.CellFormat(18, 8, "T.Issues", "1", 0, "C", false, 0, "")
	pdf.CellFormat(18, 8, "Returns", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 8, "Rate", "1", 0, "C", false, 0, "")
	pdf.CellFormat(15, 8, "Sales", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Payment", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, row := range snap.Rows {
		pdf.CellFormat(35, 8, row.Product, "1", 0, "C", false, 0, "")
		for _, q := range row.Issues {
			pdf.CellFormat(15, 8, strconv.Itoa(q), "1", 0, "C", false, 0, "")
		}
		for i := len(row.Issues); i < maxIssues; i++ {
			pdf.CellFormat(15, 8, "", "1", 0, "C", false, 0, "")
		}
		pdf.CellFormat(18, 8, strconv.Itoa(row.TotalIssued), "1", 0, "C", false, 0, "")
		pdf.CellFormat(18, 8, strconv.Itoa(row.Returned), "1", 0, "C", false, 0, "")
		rate := "N/A"
		if !row.Rate.IsZero() {
			rate = "Rs " + row.Rate.StringFixed(2)
		}
		pdf.CellFormat(22, 8, rate, "1", 0, "C", false, 0, "")
		pdf.CellFormat(15, 8, strconv.Itoa(row.Sales), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, "Rs "+row.Payment.StringFixed(2), "1", 1, "C", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// checkWritable probes an existing file for write access. A file held
// open by a PDF viewer with an exclusive lock fails the probe.
func checkWritable(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrReportBusy, path)
	}
	return f.Close()
}
