package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/maynagashev/errorlog/internal/models"
	"github.com/maynagashev/errorlog/internal/repository"
	"github.com/maynagashev/errorlog/internal/storage"
)

// RecordInput — типизированный набор скалярных полей записи для создания
// и полного обновления. Обновление всегда заменяет все поля целиком,
// частичные обновления не поддерживаются.
type RecordInput struct {
	Title       string
	Description string
	Severity    string
	Category    *string
	Tags        []string
	Solution    *string
	Status      string
}

// FileUpload — один загружаемый файл: исходное имя, заявленный тип и содержимое.
type FileUpload struct {
	Filename string
	MimeType string
	Content  io.Reader
}

// AttachmentContent — содержимое вложения для передачи вызывающей стороне.
// Поле Content кодируется в base64 при сериализации в JSON.
type AttachmentContent struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
	MimeType string `json:"mimetype"`
}

// RecordService определяет интерфейс сервиса работы с записями журнала ошибок.
type RecordService interface {
	CreateRecord(ctx context.Context, input RecordInput, files []FileUpload) (*models.Record, error)
	GetRecord(ctx context.Context, recordID string) (*models.Record, error)
	ListRecords(ctx context.Context) ([]models.Record, error)
	UpdateRecord(ctx context.Context, recordID string, input RecordInput, files []FileUpload) (*models.Record, error)
	DeleteRecord(ctx context.Context, recordID string) error
	GetAttachmentContent(ctx context.Context, attachmentID string) (*AttachmentContent, error)
}

// recordService реализует логику работы с записями журнала.
var _ RecordService = (*recordService)(nil) // Проверка соответствия интерфейсу

type recordService struct {
	recordRepo     repository.RecordRepository
	attachmentRepo repository.AttachmentRepository
	blobStore      storage.BlobStore
}

// NewRecordService создает новый экземпляр сервиса записей.
func NewRecordService(
	recordRepo repository.RecordRepository,
	attachmentRepo repository.AttachmentRepository,
	blobStore storage.BlobStore,
) RecordService {
	return &recordService{
		recordRepo:     recordRepo,
		attachmentRepo: attachmentRepo,
		blobStore:      blobStore,
	}
}

// validateInput проверяет обязательные поля и enum-инварианты до любой записи в БД.
func validateInput(input RecordInput) error {
	if input.Title == "" {
		return ErrEmptyTitle
	}
	if input.Description == "" {
		return ErrEmptyDescription
	}
	if !models.IsValidSeverity(input.Severity) {
		return ErrInvalidSeverity
	}
	if !models.IsValidStatus(input.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// CreateRecord создает запись журнала и сохраняет приложенные файлы.
// Сбой сохранения отдельного файла после вставки строки записи не откатывает
// запись: политика «хотя бы частичный успех», как и во всех путях очистки.
func (s *recordService) CreateRecord(
	ctx context.Context,
	input RecordInput,
	files []FileUpload,
) (*models.Record, error) {
	if err := validateInput(input); err != nil {
		log.Printf("[RecordService] Отклонено создание записи: %v", err)
		return nil, err
	}

	now := time.Now()
	record := &models.Record{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		Severity:    input.Severity,
		Category:    input.Category,
		Tags:        models.TagList(input.Tags),
		Solution:    input.Solution,
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if record.Tags == nil {
		record.Tags = models.TagList{}
	}

	if err := s.recordRepo.CreateRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("ошибка создания записи: %w", err)
	}
	log.Printf("[RecordService] Создана запись %s", record.ID)

	record.Files = s.saveFiles(ctx, record.ID, files)
	return record, nil
}

// GetRecord возвращает запись вместе с метаданными её вложений.
func (s *recordService) GetRecord(ctx context.Context, recordID string) (*models.Record, error) {
	record, err := s.recordRepo.GetRecordByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи: %w", err)
	}

	record.Files, err = s.attachmentRepo.ListAttachmentsByRecordID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения вложений записи: %w", err)
	}
	return record, nil
}

// ListRecords возвращает все записи журнала с метаданными вложений
// в порядке вставки.
func (s *recordService) ListRecords(ctx context.Context) ([]models.Record, error) {
	records, err := s.recordRepo.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка записей: %w", err)
	}

	for i := range records {
		attachments, attachErr := s.attachmentRepo.ListAttachmentsByRecordID(ctx, records[i].ID)
		if attachErr != nil {
			return nil, fmt.Errorf("ошибка получения вложений записи %s: %w", records[i].ID, attachErr)
		}
		records[i].Files = attachments
	}

	log.Printf("[RecordService] Получено записей: %d", len(records))
	return records, nil
}

// UpdateRecord полностью заменяет скалярные поля записи, сохраняя created_at
// и уже существующие вложения. Новые файлы добавляются к существующим.
func (s *recordService) UpdateRecord(
	ctx context.Context,
	recordID string,
	input RecordInput,
	files []FileUpload,
) (*models.Record, error) {
	existing, err := s.recordRepo.GetRecordByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("ошибка поиска записи для обновления: %w", err)
	}

	if err = validateInput(input); err != nil {
		log.Printf("[RecordService] Отклонено обновление записи %s: %v", recordID, err)
		return nil, err
	}

	record := &models.Record{
		ID:          recordID,
		Title:       input.Title,
		Description: input.Description,
		Severity:    input.Severity,
		Category:    input.Category,
		Tags:        models.TagList(input.Tags),
		Solution:    input.Solution,
		Status:      input.Status,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now(),
	}
	if record.Tags == nil {
		record.Tags = models.TagList{}
	}

	if err = s.recordRepo.UpdateRecord(ctx, record); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("ошибка обновления записи: %w", err)
	}
	log.Printf("[RecordService] Обновлена запись %s", recordID)

	// Новые файлы добавляются, существующие вложения не трогаем
	s.saveFiles(ctx, recordID, files)

	record.Files, err = s.attachmentRepo.ListAttachmentsByRecordID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения вложений записи: %w", err)
	}
	return record, nil
}

// DeleteRecord удаляет запись, строки её вложений и их файлы в хранилище.
// Сбой удаления отдельного файла логируется и не блокирует удаление строк.
func (s *recordService) DeleteRecord(ctx context.Context, recordID string) error {
	attachments, err := s.attachmentRepo.ListAttachmentsByRecordID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("ошибка получения вложений удаляемой записи: %w", err)
	}

	for _, attachment := range attachments {
		if deleteErr := s.blobStore.DeleteFile(ctx, attachment.StoragePath); deleteErr != nil {
			log.Printf("[RecordService] Не удалось удалить файл %s записи %s: %v",
				attachment.StoragePath, recordID, deleteErr)
		}
	}

	if err = s.recordRepo.DeleteRecord(ctx, recordID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("ошибка удаления записи: %w", err)
	}

	log.Printf("[RecordService] Запись %s удалена вместе с вложениями", recordID)
	return nil
}

// GetAttachmentContent возвращает имя, содержимое и тип вложения по его id.
// Отсутствие строки метаданных или самого файла на диске — NotFound.
func (s *recordService) GetAttachmentContent(
	ctx context.Context,
	attachmentID string,
) (*AttachmentContent, error) {
	attachment, err := s.attachmentRepo.GetAttachmentByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAttachmentNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("ошибка получения метаданных файла: %w", err)
	}

	data, err := s.blobStore.ReadFile(ctx, attachment.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			log.Printf("[RecordService] Файл %s отсутствует на диске (%s)", attachmentID, attachment.StoragePath)
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("ошибка чтения содержимого файла: %w", err)
	}

	return &AttachmentContent{
		Filename: attachment.Filename,
		Content:  data,
		MimeType: attachment.MimeType,
	}, nil
}

// saveFiles сохраняет загруженные файлы: байты в блоб-хранилище, метаданные в БД.
// Файлы без имени пропускаются. Сбой по отдельному файлу логируется и не
// прерывает сохранение остальных; осиротевший после сбоя метаданных блоб
// убирается тут же.
func (s *recordService) saveFiles(ctx context.Context, recordID string, files []FileUpload) []models.Attachment {
	saved := []models.Attachment{}
	for _, file := range files {
		if file.Filename == "" {
			log.Printf("[RecordService] Пропущен файл без имени для записи %s", recordID)
			continue
		}

		mimeType := file.MimeType
		if mimeType == "" {
			// По умолчанию считаем бинарным потоком
			mimeType = "application/octet-stream"
		}

		result, err := s.blobStore.SaveFile(ctx, file.Content, file.Filename)
		if err != nil {
			log.Printf("[RecordService] Не удалось сохранить файл '%s' записи %s: %v",
				file.Filename, recordID, err)
			continue
		}

		attachment := &models.Attachment{
			ID:          result.ID,
			RecordID:    recordID,
			Filename:    file.Filename,
			StoragePath: result.StoragePath,
			Size:        result.Size,
			MimeType:    mimeType,
		}
		if err = s.attachmentRepo.CreateAttachment(ctx, attachment); err != nil {
			log.Printf("[RecordService] Не удалось сохранить метаданные файла '%s' записи %s: %v",
				file.Filename, recordID, err)
			if deleteErr := s.blobStore.DeleteFile(ctx, result.StoragePath); deleteErr != nil {
				log.Printf("[RecordService] Не удалось убрать осиротевший файл %s: %v",
					result.StoragePath, deleteErr)
			}
			continue
		}

		saved = append(saved, *attachment)
	}
	return saved
}

// Кастомные ошибки сервиса.
var (
	ErrRecordNotFound     = errors.New("запись журнала не найдена")
	ErrAttachmentNotFound = errors.New("файл не найден")
	ErrEmptyTitle         = errors.New("не заполнен заголовок записи")
	ErrEmptyDescription   = errors.New("не заполнено описание записи")
	ErrInvalidSeverity    = errors.New("недопустимое значение severity")
	ErrInvalidStatus      = errors.New("недопустимое значение status")
)
