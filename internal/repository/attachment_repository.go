package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/maynagashev/errorlog/internal/models"
)

// AttachmentRepository определяет методы для работы с метаданными вложений.
type AttachmentRepository interface {
	CreateAttachment(ctx context.Context, attachment *models.Attachment) error
	GetAttachmentByID(ctx context.Context, attachmentID string) (*models.Attachment, error)
	ListAttachmentsByRecordID(ctx context.Context, recordID string) ([]models.Attachment, error)
}

// sqliteAttachmentRepository реализует AttachmentRepository для SQLite.
type sqliteAttachmentRepository struct {
	db *sqlx.DB
}

// NewSQLiteAttachmentRepository создает новый экземпляр репозитория вложений.
func NewSQLiteAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &sqliteAttachmentRepository{db: db}
}

// CreateAttachment вставляет строку метаданных вложения.
// Запись-владелец (error_id) должна существовать на момент вставки.
func (r *sqliteAttachmentRepository) CreateAttachment(ctx context.Context, attachment *models.Attachment) error {
	query := `INSERT INTO files (id, error_id, filename, filepath, size, mimetype)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		attachment.ID, attachment.RecordID, attachment.Filename,
		attachment.StoragePath, attachment.Size, attachment.MimeType)
	if err != nil {
		log.Printf("[AttachmentRepo] Ошибка при сохранении метаданных файла %s: %v", attachment.ID, err)
		return fmt.Errorf("ошибка выполнения запроса на сохранение метаданных файла: %w", err)
	}

	log.Printf("[AttachmentRepo] Сохранены метаданные файла %s для записи %s", attachment.ID, attachment.RecordID)
	return nil
}

// GetAttachmentByID находит метаданные вложения по идентификатору.
// Возвращает метаданные или ErrAttachmentNotFound.
func (r *sqliteAttachmentRepository) GetAttachmentByID(
	ctx context.Context,
	attachmentID string,
) (*models.Attachment, error) {
	query := `SELECT id, error_id, filename, filepath, size, mimetype FROM files WHERE id = ?`
	var attachment models.Attachment

	err := r.db.GetContext(ctx, &attachment, query, attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[AttachmentRepo] Файл %s не найден", attachmentID)
			return nil, ErrAttachmentNotFound
		}
		log.Printf("[AttachmentRepo] Ошибка при поиске файла %s: %v", attachmentID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение метаданных файла: %w", err)
	}

	return &attachment, nil
}

// ListAttachmentsByRecordID возвращает метаданные всех вложений записи
// в порядке загрузки (по id).
func (r *sqliteAttachmentRepository) ListAttachmentsByRecordID(
	ctx context.Context,
	recordID string,
) ([]models.Attachment, error) {
	query := `SELECT id, error_id, filename, filepath, size, mimetype FROM files WHERE error_id = ? ORDER BY rowid`
	attachments := []models.Attachment{}

	if err := r.db.SelectContext(ctx, &attachments, query, recordID); err != nil {
		log.Printf("[AttachmentRepo] Ошибка при получении файлов записи %s: %v", recordID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение файлов записи: %w", err)
	}

	return attachments, nil
}

// Кастомные ошибки репозитория.
var (
	ErrAttachmentNotFound = errors.New("файл не найден")
)
