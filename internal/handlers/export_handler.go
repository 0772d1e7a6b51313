package handlers

import (
	"log"
	"net/http"

	"github.com/maynagashev/errorlog/internal/services"
)

// ExportHandler обрабатывает HTTP-запросы на экспорт журнала в документ Word.
type ExportHandler struct {
	reportService services.ReportService
}

// NewExportHandler создает новый экземпляр ExportHandler.
func NewExportHandler(rs services.ReportService) *ExportHandler {
	return &ExportHandler{reportService: rs}
}

// ExportWord обрабатывает GET запрос на генерацию отчёта.
// Документ отдаётся в JSON с base64-кодированием поля content;
// копия сохраняется сервисом в директорию отчётов.
func (h *ExportHandler) ExportWord(w http.ResponseWriter, r *http.Request) {
	log.Printf("[ExportHandler:ExportWord] Запрос на генерацию отчёта")

	report, err := h.reportService.GenerateReport(r.Context())
	if err != nil {
		log.Printf("[ExportHandler:ExportWord] Ошибка генерации отчёта: %v", err)
		http.Error(w, "Внутренняя ошибка сервера при генерации отчёта", http.StatusInternalServerError)
		return
	}

	log.Printf("[ExportHandler:ExportWord] Отчёт %s сформирован (%d байт)", report.Filename, len(report.Content))
	writeJSON(w, http.StatusOK, services.AttachmentContent{
		Filename: report.Filename,
		Content:  report.Content,
		MimeType: report.MimeType,
	})
}
