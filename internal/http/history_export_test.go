package httpapi

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
)

func TestGenerateHistoryWorkbook(t *testing.T) {
	points := []domain.HistoryPoint{
		{TimeISO: "2024-01-01T10:00:00Z", Value: "72.5", Flag: 0},
		{TimeISO: "2024-01-01T10:01:00Z", Value: "", Flag: 1},
	}

	data, err := GenerateHistoryWorkbook("hr", points)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"History"}, f.GetSheetList())

	rows, err := f.GetRows("History")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Time", "Value", "Flag"}, rows[0])
	assert.Equal(t, []string{"2024-01-01T10:00:00Z", "72.5", "0"}, rows[1])

	v, err := f.GetCellValue("History", "B3")
	require.NoError(t, err)
	assert.Empty(t, v)
	flag, err := f.GetCellValue("History", "C3")
	require.NoError(t, err)
	assert.Equal(t, "1", flag)
}

func TestGenerateHistoryWorkbook_Empty(t *testing.T) {
	data, err := GenerateHistoryWorkbook("hr", nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("History")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExportHistory(t *testing.T) {
	svc := &fakeMonitoring{history: []domain.HistoryPoint{{TimeISO: "2024-01-01T10:00:00Z", Value: "98", Flag: 0}}}
	r := newTestRouter(svc, &fakeAlerts{}, newFakeResolver())

	w := do(t, r, http.MethodGet, "/monitoring/api/v1/patients/7/history/export?param=spo2&limit=10", "3", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=history-7-spo2.xlsx", w.Header().Get("Content-Disposition"))
	assert.Equal(t, 10, svc.lastQuery.Limit)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("History", "B2")
	require.NoError(t, err)
	assert.Equal(t, "98", v)
}

func TestSafeFilePart(t *testing.T) {
	assert.Equal(t, "spo2", safeFilePart("spo2"))
	assert.Equal(t, "a_b_c", safeFilePart("a/b c"))
}
