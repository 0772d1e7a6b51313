package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/errorlog/internal/services"
)

// Лимит памяти при разборе multipart-формы, остальное уходит во временные файлы.
const maxMultipartMemory = 32 << 20 // 32 MB

// RecordHandler обрабатывает HTTP-запросы, связанные с записями журнала ошибок.
type RecordHandler struct {
	recordService services.RecordService
}

// NewRecordHandler создает новый экземпляр RecordHandler.
func NewRecordHandler(rs services.RecordService) *RecordHandler {
	return &RecordHandler{recordService: rs}
}

// Create обрабатывает POST запрос на создание записи с файлами.
// Поля приходят multipart-формой: скалярные значения + tags как JSON-массив
// + ноль или более файлов в поле files.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, files, closeFiles, err := parseRecordForm(r)
	if err != nil {
		log.Printf("[RecordHandler:Create] Ошибка разбора формы: %v", err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}
	defer closeFiles()

	record, err := h.recordService.CreateRecord(r.Context(), input, files)
	if err != nil {
		writeServiceError(w, "RecordHandler:Create", err)
		return
	}

	log.Printf("[RecordHandler:Create] Создана запись %s", record.ID)
	writeJSON(w, http.StatusOK, record)
}

// List обрабатывает GET запрос на получение всех записей.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.recordService.ListRecords(r.Context())
	if err != nil {
		writeServiceError(w, "RecordHandler:List", err)
		return
	}

	log.Printf("[RecordHandler:List] Отдано записей: %d", len(records))
	writeJSON(w, http.StatusOK, records)
}

// Get обрабатывает GET запрос на получение одной записи по id.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "errorID")
	log.Printf("[RecordHandler:Get] Запрос записи %s", recordID)

	record, err := h.recordService.GetRecord(r.Context(), recordID)
	if err != nil {
		writeServiceError(w, "RecordHandler:Get", err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Update обрабатывает PUT запрос на полное обновление записи.
// Все скалярные поля заменяются, новые файлы добавляются к существующим.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "errorID")

	input, files, closeFiles, err := parseRecordForm(r)
	if err != nil {
		log.Printf("[RecordHandler:Update] Ошибка разбора формы для записи %s: %v", recordID, err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}
	defer closeFiles()

	record, err := h.recordService.UpdateRecord(r.Context(), recordID, input, files)
	if err != nil {
		writeServiceError(w, "RecordHandler:Update", err)
		return
	}

	log.Printf("[RecordHandler:Update] Обновлена запись %s", recordID)
	writeJSON(w, http.StatusOK, record)
}

// Delete обрабатывает DELETE запрос на удаление записи с вложениями.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "errorID")

	if err := h.recordService.DeleteRecord(r.Context(), recordID); err != nil {
		writeServiceError(w, "RecordHandler:Delete", err)
		return
	}

	log.Printf("[RecordHandler:Delete] Удалена запись %s", recordID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Запись успешно удалена"})
}

// GetFile обрабатывает GET запрос на получение содержимого вложения.
// Содержимое отдаётся в JSON с base64-кодированием поля content.
func (h *RecordHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	attachmentID := chi.URLParam(r, "fileID")

	content, err := h.recordService.GetAttachmentContent(r.Context(), attachmentID)
	if err != nil {
		writeServiceError(w, "RecordHandler:GetFile", err)
		return
	}

	log.Printf("[RecordHandler:GetFile] Отдан файл %s (%s)", attachmentID, content.Filename)
	writeJSON(w, http.StatusOK, content)
}

// parseRecordForm разбирает multipart-форму создания/обновления записи.
// Возвращает типизированные поля, открытые файлы и функцию их закрытия.
func parseRecordForm(r *http.Request) (services.RecordInput, []services.FileUpload, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return services.RecordInput{}, nil, noop, err
	}

	// tags приходит одной строкой с JSON-массивом, по умолчанию пустым
	tagsRaw := r.FormValue("tags")
	if tagsRaw == "" {
		tagsRaw = "[]"
	}
	var tags []string
	if err := json.Unmarshal([]byte(tagsRaw), &tags); err != nil {
		return services.RecordInput{}, nil, noop, err
	}

	input := services.RecordInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Severity:    r.FormValue("severity"),
		Category:    optionalFormValue(r, "category"),
		Tags:        tags,
		Solution:    optionalFormValue(r, "solution"),
		Status:      r.FormValue("status"),
	}

	files, closeFiles, err := openUploads(r)
	if err != nil {
		return services.RecordInput{}, nil, noop, err
	}
	return input, files, closeFiles, nil
}

// optionalFormValue возвращает значение поля формы или nil, если поле пустое.
func optionalFormValue(r *http.Request, key string) *string {
	value := r.FormValue(key)
	if value == "" {
		return nil
	}
	return &value
}

// openUploads открывает все файлы из поля files multipart-формы.
// Вторым значением возвращается функция закрытия всех открытых файлов.
func openUploads(r *http.Request) ([]services.FileUpload, func(), error) {
	opened := []multipart.File{}
	closeAll := func() {
		for _, f := range opened {
			if closeErr := f.Close(); closeErr != nil {
				log.Printf("[RecordHandler] Ошибка закрытия загруженного файла: %v", closeErr)
			}
		}
	}

	uploads := []services.FileUpload{}
	if r.MultipartForm == nil {
		return uploads, closeAll, nil
	}
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, file)
		uploads = append(uploads, services.FileUpload{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Content:  file,
		})
	}
	return uploads, closeAll, nil
}

// writeJSON отправляет ответ в JSON с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[RecordHandler] Ошибка кодирования ответа: %v", err)
	}
}

// writeServiceError преобразует ошибку сервисного слоя в HTTP-статус:
// ошибки валидации — 400, «не найдено» — 404, всё остальное — 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyTitle),
		errors.Is(err, services.ErrEmptyDescription),
		errors.Is(err, services.ErrInvalidSeverity),
		errors.Is(err, services.ErrInvalidStatus):
		log.Printf("[%s] Отклонён запрос: %v", op, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrRecordNotFound):
		log.Printf("[%s] Запись не найдена: %v", op, err)
		http.Error(w, "Запись не найдена", http.StatusNotFound)
	case errors.Is(err, services.ErrAttachmentNotFound):
		log.Printf("[%s] Файл не найден: %v", op, err)
		http.Error(w, "Файл не найден", http.StatusNotFound)
	default:
		log.Printf("[%s] Внутренняя ошибка: %v", op, err)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}
