package storage_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maynagashev/errorlog/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiskStoreCreatesDirectory(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "uploads")

	store, err := storage.NewDiskStore(dataDir)
	require.NoError(t, err)
	assert.Equal(t, dataDir, store.DataDir())
	assert.DirExists(t, dataDir)
}

func TestSaveAndReadFile(t *testing.T) {
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := []byte("данные загруженного файла")
	result, err := store.SaveFile(ctx, bytes.NewReader(content), "screenshot.png")
	require.NoError(t, err)
	require.NotEmpty(t, result.ID)
	assert.Equal(t, int64(len(content)), result.Size)

	// Имя в хранилище: сгенерированный id + исходное расширение
	assert.Equal(t, result.ID+".png", filepath.Base(result.StoragePath))

	// Round-trip: содержимое побайтно совпадает с загруженным
	got, err := store.ReadFile(ctx, result.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSaveFileWithoutExtension(t *testing.T) {
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	result, err := store.SaveFile(context.Background(), strings.NewReader("log"), "core")
	require.NoError(t, err)
	assert.Equal(t, result.ID, filepath.Base(result.StoragePath))
}

func TestSaveFileEmptyContent(t *testing.T) {
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// Файл без содержимого допустим: отклоняется только пустое имя
	result, err := store.SaveFile(ctx, strings.NewReader(""), "empty.log")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Size)

	got, err := store.ReadFile(ctx, result.StoragePath)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveFileEmptyFilename(t *testing.T) {
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	result, err := store.SaveFile(context.Background(), strings.NewReader("data"), "")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, storage.ErrEmptyFilename)
}

func TestSaveFileLeavesNoTempFiles(t *testing.T) {
	dataDir := t.TempDir()
	store, err := storage.NewDiskStore(dataDir)
	require.NoError(t, err)

	_, err = store.SaveFile(context.Background(), strings.NewReader("data"), "a.txt")
	require.NoError(t, err)

	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"),
			"временный файл не должен оставаться после сохранения: %s", entry.Name())
	}
}

func TestSaveFileNamesDoNotCollide(t *testing.T) {
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// Один и тот же исходный файл сохраняется под разными именами
	first, err := store.SaveFile(ctx, strings.NewReader("one"), "report.pdf")
	require.NoError(t, err)
	second, err := store.SaveFile(ctx, strings.NewReader("two"), "report.pdf")
	require.NoError(t, err)
	assert.NotEqual(t, first.StoragePath, second.StoragePath)
}

func TestReadFileNotFound(t *testing.T) {
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	got, err := store.ReadFile(context.Background(), filepath.Join(store.DataDir(), "missing.png"))
	assert.Nil(t, got)
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)
}

func TestDeleteFile(t *testing.T) {
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	result, err := store.SaveFile(ctx, strings.NewReader("data"), "a.txt")
	require.NoError(t, err)

	require.NoError(t, store.DeleteFile(ctx, result.StoragePath))
	assert.NoFileExists(t, result.StoragePath)

	// Повторное удаление уже отсутствующего файла — не ошибка
	assert.NoError(t, store.DeleteFile(ctx, result.StoragePath))
}
