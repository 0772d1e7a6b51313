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

// RecordRepository определяет методы для работы со строками записей журнала.
// Вложения записей лежат в отдельной таблице и обслуживаются AttachmentRepository.
type RecordRepository interface {
	CreateRecord(ctx context.Context, record *models.Record) error
	GetRecordByID(ctx context.Context, recordID string) (*models.Record, error)
	ListRecords(ctx context.Context) ([]models.Record, error)
	UpdateRecord(ctx context.Context, record *models.Record) error
	DeleteRecord(ctx context.Context, recordID string) error
}

// sqliteRecordRepository реализует RecordRepository для SQLite.
type sqliteRecordRepository struct {
	db *sqlx.DB
}

// NewSQLiteRecordRepository создает новый экземпляр репозитория записей.
func NewSQLiteRecordRepository(db *sqlx.DB) RecordRepository {
	return &sqliteRecordRepository{db: db}
}

// CreateRecord вставляет одну строку записи. ID и отметки времени
// должны быть заполнены вызывающей стороной до вставки.
func (r *sqliteRecordRepository) CreateRecord(ctx context.Context, record *models.Record) error {
	query := `INSERT INTO errors (id, title, description, severity, category, tags, solution, status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.Title, record.Description, record.Severity, record.Category,
		record.Tags, record.Solution, record.Status, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		log.Printf("[RecordRepo] Ошибка при создании записи %s: %v", record.ID, err)
		return fmt.Errorf("ошибка выполнения запроса на создание записи: %w", err)
	}

	log.Printf("[RecordRepo] Создана запись с ID %s", record.ID)
	return nil
}

// GetRecordByID находит запись по идентификатору.
// Возвращает запись без вложений или ErrRecordNotFound.
func (r *sqliteRecordRepository) GetRecordByID(ctx context.Context, recordID string) (*models.Record, error) {
	query := `SELECT id, title, description, severity, category, tags, solution, status, created_at, updated_at
	          FROM errors WHERE id = ?`
	var record models.Record

	err := r.db.GetContext(ctx, &record, query, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[RecordRepo] Запись %s не найдена", recordID)
			return nil, ErrRecordNotFound
		}
		log.Printf("[RecordRepo] Ошибка при поиске записи %s: %v", recordID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение записи: %w", err)
	}

	return &record, nil
}

// ListRecords возвращает все записи журнала без вложений.
// Порядок перечисления фиксированный: по времени создания, затем по id
// (фактически — порядок вставки).
func (r *sqliteRecordRepository) ListRecords(ctx context.Context) ([]models.Record, error) {
	query := `SELECT id, title, description, severity, category, tags, solution, status, created_at, updated_at
	          FROM errors ORDER BY created_at, id`
	records := []models.Record{}

	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		log.Printf("[RecordRepo] Ошибка при получении списка записей: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка записей: %w", err)
	}

	return records, nil
}

// UpdateRecord заменяет все скалярные поля записи.
// created_at не трогаем: отметка ставится один раз при создании.
func (r *sqliteRecordRepository) UpdateRecord(ctx context.Context, record *models.Record) error {
	query := `UPDATE errors SET title = ?, description = ?, severity = ?, category = ?,
	          tags = ?, solution = ?, status = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		record.Title, record.Description, record.Severity, record.Category,
		record.Tags, record.Solution, record.Status, record.UpdatedAt, record.ID)
	if err != nil {
		log.Printf("[RecordRepo] Ошибка при обновлении записи %s: %v", record.ID, err)
		return fmt.Errorf("ошибка выполнения запроса на обновление записи: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения результата обновления записи: %w", err)
	}
	if rowsAffected == 0 {
		log.Printf("[RecordRepo] Запись %s не найдена для обновления", record.ID)
		return ErrRecordNotFound
	}

	log.Printf("[RecordRepo] Запись %s обновлена", record.ID)
	return nil
}

// DeleteRecord удаляет запись вместе со строками её вложений одной транзакцией.
// Файлы в блоб-хранилище удаляет вызывающая сторона до вызова этого метода.
func (r *sqliteRecordRepository) DeleteRecord(ctx context.Context, recordID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции удаления: %w", err)
	}
	// Rollback после успешного Commit безопасен и возвращает sql.ErrTxDone
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			log.Printf("[RecordRepo] Ошибка отката транзакции удаления записи %s: %v", recordID, rollbackErr)
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM files WHERE error_id = ?`, recordID); err != nil {
		log.Printf("[RecordRepo] Ошибка удаления строк вложений записи %s: %v", recordID, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление вложений: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM errors WHERE id = ?`, recordID)
	if err != nil {
		log.Printf("[RecordRepo] Ошибка удаления записи %s: %v", recordID, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление записи: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения результата удаления записи: %w", err)
	}
	if rowsAffected == 0 {
		log.Printf("[RecordRepo] Запись %s не найдена для удаления", recordID)
		return ErrRecordNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции удаления: %w", err)
	}

	log.Printf("[RecordRepo] Запись %s удалена вместе со строками вложений", recordID)
	return nil
}

// Кастомные ошибки репозитория.
var (
	ErrRecordNotFound = errors.New("запись журнала не найдена")
)
