package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DiskStore реализует BlobStore поверх плоской директории на диске.
// Имя файла в хранилище: {uuid}{исходное расширение}. Имена не пересекаются
// с именами исходных файлов, поэтому коллизии загрузок исключены.
type DiskStore struct {
	// dataDir — корневая директория хранения файлов
	dataDir string
}

// Проверка соответствия интерфейсу.
var _ BlobStore = (*DiskStore)(nil)

// NewDiskStore создает новый DiskStore. Проверяет и создает директорию,
// если она не существует.
func NewDiskStore(dataDir string) (*DiskStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию загрузок %s: %w", dataDir, err)
	}
	return &DiskStore{dataDir: dataDir}, nil
}

// SaveFile записывает данные из reader на диск.
//
// Паттерн: temp файл → запись → fsync → atomic rename, чтобы сбой посреди
// записи не оставил в директории частично записанный файл под постоянным именем.
func (s *DiskStore) SaveFile(_ context.Context, reader io.Reader, originalFilename string) (*SaveResult, error) {
	if originalFilename == "" {
		return nil, ErrEmptyFilename
	}

	fileID := uuid.New().String()
	storageName := fileID + filepath.Ext(originalFilename)
	fullPath := filepath.Join(s.dataDir, storageName)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	// fsync для гарантии записи на диск
	if err = f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err = f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err = os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	log.Printf("[DiskStore] Файл '%s' сохранён как %s (%d байт)", originalFilename, fullPath, size)
	return &SaveResult{
		ID:          fileID,
		StoragePath: fullPath,
		Size:        size,
	}, nil
}

// ReadFile читает содержимое файла по локатору.
// Отсутствие файла — восстановимая ситуация для вызывающего кода,
// поэтому возвращается сигнальная ошибка ErrBlobNotFound.
func (s *DiskStore) ReadFile(_ context.Context, storagePath string) ([]byte, error) {
	data, err := os.ReadFile(storagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[DiskStore] Файл %s не найден на диске", storagePath)
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", storagePath, err)
	}
	return data, nil
}

// DeleteFile удаляет файл по локатору.
// Возвращает nil, если файл уже не существует.
func (s *DiskStore) DeleteFile(_ context.Context, storagePath string) error {
	err := os.Remove(storagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[DiskStore] Файл %s уже отсутствует, удалять нечего", storagePath)
			return nil
		}
		return fmt.Errorf("ошибка удаления файла %s: %w", storagePath, err)
	}
	log.Printf("[DiskStore] Файл %s удалён", storagePath)
	return nil
}

// DataDir возвращает путь к директории данных.
func (s *DiskStore) DataDir() string {
	return s.dataDir
}
