package storage

import (
	"context"
	"errors"
	"io"
)

// BlobStore определяет интерфейс для хранилища сырых байтов загруженных файлов.
type BlobStore interface {
	// SaveFile сохраняет содержимое reader под сгенерированным именем,
	// сохраняя расширение исходного файла. Возвращает идентификатор,
	// локатор и размер сохранённого файла.
	SaveFile(ctx context.Context, reader io.Reader, originalFilename string) (*SaveResult, error)
	// ReadFile читает содержимое файла по локатору.
	// Возвращает ErrBlobNotFound, если файла нет на диске.
	ReadFile(ctx context.Context, storagePath string) ([]byte, error)
	// DeleteFile удаляет файл по локатору.
	// Возвращает nil, если файл уже не существует.
	DeleteFile(ctx context.Context, storagePath string) error
}

// SaveResult — результат сохранения файла в хранилище.
type SaveResult struct {
	// ID — сгенерированный идентификатор файла (базовое имя без расширения)
	ID string
	// StoragePath — локатор файла, используется для последующего чтения и удаления
	StoragePath string
	// Size — размер записанных данных в байтах
	Size int64
}

// Кастомные ошибки хранилища.
var (
	ErrBlobNotFound  = errors.New("файл не найден в хранилище")
	ErrEmptyFilename = errors.New("не указано имя загружаемого файла")
)
