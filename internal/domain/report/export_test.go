package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bizops/internal/domain/task"
	"bizops/internal/domain/workforce"
	"bizops/internal/pkg/earnings"
	"bizops/internal/pkg/money"
)

func sampleReport() *WorkerReport {
	return &WorkerReport{
		Currency: "GHS",
		Worker:   workforce.Worker{ID: uuid.New(), Name: "Kofi Mensah", Whatsapp: "+233 (20) 555-0101"},
		Window:   earnings.WeekOf(day(11)),
		Stats: earnings.WorkerStats{
			CompletedEarnings:  amt("90"),
			WeeklyProjectTotal: amt("150"),
			AssignedCount:      1,
			CompletedCount:     1,
		},
		Week: earnings.Totals{Count: 2, Gross: amt("160"), Deductions: amt("10"), Net: amt("150")},
		Rows: []TaskRow{
			{TaskID: uuid.New(), Date: day(10), Project: "Braiding", Description: "Box braids", Status: task.StatusCompleted,
				Amount: amt("100"), Deductions: amt("10"), Net: amt("90")},
			{TaskID: uuid.New(), Date: day(11), Project: "Wash", Status: task.StatusPending,
				Amount: amt("60"), Deductions: amt("0"), Net: amt("60")},
		},
	}
}

func TestWorkerPDF(t *testing.T) {
	data, err := WorkerPDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPDFSummaryAvoidsSymbolsOutsideCoreFonts(t *testing.T) {
	for _, code := range []string{"GHS", "NGN"} {
		r := sampleReport()
		r.Currency = code
		lines := summaryLines(r, money.FormatCode)
		assert.Contains(t, lines, "Completed Earnings: "+code+" 90.00")
		for _, line := range lines {
			for _, c := range line {
				assert.Less(t, c, rune(128), "%q", line)
			}
		}
	}
}

func TestWorkerXLSX(t *testing.T) {
	data, err := WorkerXLSX(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportColumns, rows[0])
	assert.Equal(t, "2026-03-10", rows[1][0])
	assert.Equal(t, "Braiding", rows[1][1])
	assert.Equal(t, "90", rows[1][6])
}

func TestWhatsAppMessage(t *testing.T) {
	msg := WhatsAppMessage(sampleReport())
	assert.True(t, strings.HasPrefix(msg, "*Weekly Work Report for Kofi Mensah*"))
	assert.Contains(t, msg, "Period: Mar 09, 2026 - Mar 15, 2026")
	assert.Contains(t, msg, "Completed Tasks: 1")
	assert.Contains(t, msg, "Completed Earnings: ₵90.00")

	link := WhatsAppLink(sampleReport())
	assert.True(t, strings.HasPrefix(link, "https://wa.me/233205550101?text="))

	rep := sampleReport()
	rep.Worker.Whatsapp = ""
	assert.Empty(t, WhatsAppLink(rep))
}
