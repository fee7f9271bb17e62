package report

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bizops/internal/pkg/money"
)

const (
	dateLayout  = "2006-01-02"
	humanLayout = "Jan 02, 2006"
	sheetName   = "Tasks"
)

var exportColumns = []string{"Date", "Project", "Description", "Status", "Amount", "Deductions", "Net"}

// WorkerPDF renders the worker report as a one-table PDF document.
func WorkerPDF(r *WorkerReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Worker Report: "+r.Worker.Name, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("Worker Report: "+r.Worker.Name))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, period(r))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Summary")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	// Core PDF fonts are cp1252 and have no glyph for ₵ or ₦.
	for _, line := range summaryLines(r, money.FormatCode) {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	widths := []float64{24, 32, 46, 22, 22, 22, 22}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range exportColumns {
		pdf.CellFormat(widths[i], 7, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range r.Rows {
		cells := []string{
			row.Date.Format(dateLayout),
			row.Project,
			truncate(row.Description, 28),
			string(row.Status),
			row.Amount.StringFixed(2),
			row.Deductions.StringFixed(2),
			row.Net.StringFixed(2),
		}
		for i, cell := range cells {
			align := "L"
			if i >= 4 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// WorkerXLSX renders the report rows as a single-sheet workbook.
func WorkerXLSX(r *WorkerReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}
	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return nil, err
		}
	}
	for n, row := range r.Rows {
		values := []any{
			row.Date.Format(dateLayout),
			row.Project,
			row.Description,
			string(row.Status),
			row.Amount.InexactFloat64(),
			row.Deductions.InexactFloat64(),
			row.Net.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, n+2)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// WhatsAppMessage is the plain text weekly summary sent to a worker.
func WhatsAppMessage(r *WorkerReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Weekly Work Report for %s*\n", r.Worker.Name)
	b.WriteString(period(r) + "\n\n*Summary*\n")
	for _, line := range summaryLines(r, money.Format) {
		b.WriteString(line + "\n")
	}
	return b.String()
}

// WhatsAppLink opens a chat with the worker prefilled with the summary. Empty when the worker has no number.
func WhatsAppLink(r *WorkerReport) string {
	number := strings.Map(func(c rune) rune {
		if c >= '0' && c <= '9' {
			return c
		}
		return -1
	}, r.Worker.Whatsapp)
	if number == "" {
		return ""
	}
	return "https://wa.me/" + number + "?text=" + url.QueryEscape(WhatsAppMessage(r))
}

func summaryLines(r *WorkerReport, format func(string, decimal.Decimal) string) []string {
	return []string{
		fmt.Sprintf("Total Tasks: %d", r.Week.Count),
		fmt.Sprintf("Assigned Tasks: %d", r.Stats.AssignedCount),
		fmt.Sprintf("Completed Tasks: %d", r.Stats.CompletedCount),
		"Weekly Project Total: " + format(r.Currency, r.Stats.WeeklyProjectTotal),
		"Total Deductions: " + format(r.Currency, r.Week.Deductions),
		"Completed Earnings: " + format(r.Currency, r.Stats.CompletedEarnings),
	}
}

func period(r *WorkerReport) string {
	return fmt.Sprintf("Period: %s - %s", r.Window.Start.Format(humanLayout), r.Window.End.Format(humanLayout))
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
