package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	docx "github.com/fumiama/go-docx"
	"github.com/maynagashev/errorlog/internal/models"
	"github.com/maynagashev/errorlog/internal/repository"
	"github.com/maynagashev/errorlog/internal/storage"
)

// MIME-тип документа Word.
const ReportMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Плейсхолдеры для пустых полей в документе.
const (
	placeholderNA   = "N/A"
	placeholderNone = "None"
)

// Формат отметок времени в документе.
const reportTimeFormat = "2006-01-02 15:04:05"

// Report — сгенерированный документ отчёта.
type Report struct {
	Filename string
	MimeType string
	Content  []byte
}

// ReportService определяет интерфейс генератора отчёта по журналу ошибок.
type ReportService interface {
	// GenerateReport собирает все записи журнала в документ Word.
	// Возвращает документ в памяти и сохраняет его копию в директорию отчётов.
	GenerateReport(ctx context.Context) (*Report, error)
}

// reportService реализует генерацию отчёта поверх репозиториев и блоб-хранилища.
var _ ReportService = (*reportService)(nil) // Проверка соответствия интерфейсу

type reportService struct {
	recordRepo     repository.RecordRepository
	attachmentRepo repository.AttachmentRepository
	blobStore      storage.BlobStore
	reportsDir     string
}

// NewReportService создает новый экземпляр сервиса отчётов.
// reportsDir — директория, куда сохраняется копия каждого отчёта.
func NewReportService(
	recordRepo repository.RecordRepository,
	attachmentRepo repository.AttachmentRepository,
	blobStore storage.BlobStore,
	reportsDir string,
) ReportService {
	return &reportService{
		recordRepo:     recordRepo,
		attachmentRepo: attachmentRepo,
		blobStore:      blobStore,
		reportsDir:     reportsDir,
	}
}

// GenerateReport читает все записи с вложениями и собирает документ:
// на каждую запись — текстовые поля в фиксированном порядке, затем
// изображения парами в таблицах по два в ряд. Между записями — разрыв страницы.
//
// Сбой сохранения копии на диск логируется и не отменяет возврат документа:
// та же политика «best effort», что и для остальных путей очистки.
func (s *reportService) GenerateReport(ctx context.Context) (*Report, error) {
	records, err := s.recordRepo.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей для отчёта: %w", err)
	}
	for i := range records {
		attachments, attachErr := s.attachmentRepo.ListAttachmentsByRecordID(ctx, records[i].ID)
		if attachErr != nil {
			return nil, fmt.Errorf("ошибка получения вложений записи %s: %w", records[i].ID, attachErr)
		}
		records[i].Files = attachments
	}
	log.Printf("[ReportService] Для отчёта получено записей: %d", len(records))

	doc := docx.New().WithDefaultTheme()

	title := doc.AddParagraph().Justification("center")
	title.AddText("Error Log Report").Size("40").Bold()

	for idx, record := range records {
		s.renderRecord(ctx, doc, idx+1, &record)
		// Разрыв страницы после каждой записи, кроме последней
		if idx < len(records)-1 {
			doc.AddParagraph().AddPageBreaks()
		}
	}

	var buf bytes.Buffer
	if _, err = doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("ошибка сериализации документа: %w", err)
	}

	report := &Report{
		Filename: fmt.Sprintf("Error_Log_Export_%s.docx", time.Now().Format("2006-01-02")),
		MimeType: ReportMimeType,
		Content:  buf.Bytes(),
	}
	log.Printf("[ReportService] Документ отчёта сформирован (%d байт)", len(report.Content))

	s.persistCopy(report)
	return report, nil
}

// renderRecord добавляет в документ текстовые поля одной записи и её изображения.
func (s *reportService) renderRecord(ctx context.Context, doc *docx.Docx, number int, record *models.Record) {
	heading := doc.AddParagraph()
	heading.AddText(fmt.Sprintf("Record %d", number)).Size("32").Bold()

	filenames := make([]string, 0, len(record.Files))
	for _, file := range record.Files {
		filenames = append(filenames, file.Filename)
	}

	// Фиксированный порядок полей записи
	doc.AddParagraph().AddText("Title: " + valueOrNA(record.Title))
	doc.AddParagraph().AddText("Description: " + valueOrNA(record.Description))
	doc.AddParagraph().AddText("Severity: " + valueOrNA(record.Severity))
	doc.AddParagraph().AddText("Category: " + optionalOrNA(record.Category))
	doc.AddParagraph().AddText("Tags: " + joinedOrNone(record.Tags))
	doc.AddParagraph().AddText("Solution: " + optionalOrNA(record.Solution))
	doc.AddParagraph().AddText("Status: " + valueOrNA(record.Status))
	doc.AddParagraph().AddText("Created At: " + record.CreatedAt.Format(reportTimeFormat))
	doc.AddParagraph().AddText("Updated At: " + record.UpdatedAt.Format(reportTimeFormat))
	doc.AddParagraph().AddText("Files: " + joinedOrNone(filenames))

	if len(record.Files) == 0 {
		return
	}

	subheading := doc.AddParagraph()
	subheading.AddText(fmt.Sprintf("Images for Record %d: %s", number, record.Title)).Size("28").Bold()

	// Собираем содержимое изображений; файлы, которые не удалось прочитать,
	// помечаем однострочной заметкой вместо прерывания всего отчёта
	type imageFile struct {
		data     []byte
		filename string
	}
	images := []imageFile{}
	for _, file := range record.Files {
		if !strings.HasPrefix(file.MimeType, "image/") {
			continue
		}
		data, err := s.blobStore.ReadFile(ctx, file.StoragePath)
		if err != nil {
			log.Printf("[ReportService] Не удалось прочитать изображение '%s' записи %d: %v",
				file.Filename, number, err)
			doc.AddParagraph().AddText("Failed to load image: " + file.Filename)
			continue
		}
		images = append(images, imageFile{data: data, filename: file.Filename})
	}

	// Изображения парами: таблица из одной строки и двух ячеек на каждую пару
	for i := 0; i < len(images); i += 2 {
		table := doc.AddTable(1, 2, 0, nil)
		cells := table.TableRows[0].TableCells
		for j := 0; j < 2 && i+j < len(images); j++ {
			image := images[i+j]
			cell := cells[j].AddParagraph()
			if _, err := cell.AddInlineDrawing(image.data); err != nil {
				log.Printf("[ReportService] Не удалось добавить изображение '%s' записи %d: %v",
					image.filename, number, err)
				cell.AddText("Failed to load image: " + image.filename)
			}
		}
	}
}

// persistCopy сохраняет копию отчёта в директорию отчётов.
// Сбой записи логируется и не считается ошибкой генерации.
func (s *reportService) persistCopy(report *Report) {
	if err := os.MkdirAll(s.reportsDir, 0o750); err != nil {
		log.Printf("[ReportService] Не удалось создать директорию отчётов %s: %v", s.reportsDir, err)
		return
	}

	path := filepath.Join(s.reportsDir, report.Filename)
	if err := os.WriteFile(path, report.Content, 0o600); err != nil {
		log.Printf("[ReportService] Не удалось сохранить копию отчёта %s: %v", path, err)
		return
	}
	log.Printf("[ReportService] Копия отчёта сохранена: %s", path)
}

// valueOrNA возвращает значение или плейсхолдер, если оно пустое.
func valueOrNA(value string) string {
	if value == "" {
		return placeholderNA
	}
	return value
}

// optionalOrNA возвращает значение опционального поля или плейсхолдер.
func optionalOrNA(value *string) string {
	if value == nil || *value == "" {
		return placeholderNA
	}
	return *value
}

// joinedOrNone объединяет элементы через запятую или возвращает плейсхолдер.
func joinedOrNone(items []string) string {
	if len(items) == 0 {
		return placeholderNone
	}
	return strings.Join(items, ", ")
}
