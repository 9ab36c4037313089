package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/tutorhub/class-ledger-api/internal/models"
)

// StatementExporter renders a student's credit statement as a PDF.
type StatementExporter struct{}

// NewStatementExporter constructs an exporter.
func NewStatementExporter() *StatementExporter {
	return &StatementExporter{}
}

// Render produces a credit statement PDF: current balances per course
// followed by the ledger entries, newest first.
func (e *StatementExporter) Render(studentID string, balances []models.CourseCreditSummary, entries []models.CreditEntry) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(fmt.Sprintf("credit statement %s", studentID)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(130, 8, "Course", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, "Balance", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, balance := range balances {
		pdf.CellFormat(130, 7, balance.CourseName, "1", 0, "", false, 0, "")
		pdf.CellFormat(60, 7, fmt.Sprintf("%d", balance.Credit), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 8, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 8, "Reason", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, "Delta", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, entry := range entries {
		pdf.CellFormat(60, 7, entry.CreatedAt.Format(time.RFC3339), "1", 0, "", false, 0, "")
		pdf.CellFormat(70, 7, string(entry.Reason), "1", 0, "", false, 0, "")
		pdf.CellFormat(60, 7, fmt.Sprintf("%+d", entry.Delta), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render credit statement: %w", err)
	}
	return buf.Bytes(), nil
}
