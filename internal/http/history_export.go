package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
)

const historySheet = "History"

// HistoryExportHeader 导出表头
var HistoryExportHeader = []string{"Time", "Value", "Flag"}

// GET /monitoring/api/v1/patients/{patientID}/history/export?param=&date=&limit=
func (h *MonitoringHandler) ExportHistory(w http.ResponseWriter, r *http.Request, patient string) {
	patientID, q, ok := h.historyRequest(w, r, patient)
	if !ok {
		return
	}
	points, err := h.svc.History(r.Context(), patientID, q)
	if err != nil {
		h.writeHistoryError(w, patientID, q, err)
		return
	}

	data, err := GenerateHistoryWorkbook(q.ParameterID, points)
	if err != nil {
		h.logger.Error("GenerateHistoryWorkbook failed",
			zap.Int64("patient_id", patientID),
			zap.String("parameter_id", q.ParameterID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail("failed to export history"))
		return
	}

	filename := fmt.Sprintf("history-%d-%s.xlsx", patientID, safeFilePart(q.ParameterID))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GenerateHistoryWorkbook 把历史序列写入 XLSX（第 1 行表头，数据从第 2 行开始）
// 无读数的点 Value 列留空
func GenerateHistoryWorkbook(parameterID string, points []domain.HistoryPoint) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(historySheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(historySheet, "A1", &HistoryExportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(historySheet, "A1", "C1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(historySheet, "A", "A", 24); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, p := range points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := []any{p.TimeISO, historyCellValue(p.Value), p.Flag}
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "History " + parameterID,
		Creator: "dashmed-monitoring",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

// historyCellValue 数值写成数字单元格，其它原样保留
func historyCellValue(v string) any {
	if v == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

func safeFilePart(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
