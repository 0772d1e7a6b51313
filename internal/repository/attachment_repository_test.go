package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/maynagashev/errorlog/internal/models"
	"github.com/maynagashev/errorlog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Вспомогательная функция: вложение для указанной записи.
func newTestAttachment(recordID, filename string) *models.Attachment {
	id := uuid.New().String()
	return &models.Attachment{
		ID:          id,
		RecordID:    recordID,
		Filename:    filename,
		StoragePath: "/tmp/uploads/" + id + ".png",
		Size:        1024,
		MimeType:    "image/png",
	}
}

func TestCreateAndGetAttachment(t *testing.T) {
	db := setupTestDB(t)
	recordRepo := repository.NewSQLiteRecordRepository(db)
	attachmentRepo := repository.NewSQLiteAttachmentRepository(db)
	ctx := context.Background()

	record := newTestRecord("запись с файлом")
	require.NoError(t, recordRepo.CreateRecord(ctx, record))

	attachment := newTestAttachment(record.ID, "screenshot.png")
	require.NoError(t, attachmentRepo.CreateAttachment(ctx, attachment))

	got, err := attachmentRepo.GetAttachmentByID(ctx, attachment.ID)
	require.NoError(t, err)
	assert.Equal(t, attachment, got)
}

func TestCreateAttachmentRequiresExistingRecord(t *testing.T) {
	db := setupTestDB(t)
	attachmentRepo := repository.NewSQLiteAttachmentRepository(db)

	// Внешний ключ не даёт привязать файл к несуществующей записи
	attachment := newTestAttachment(uuid.New().String(), "orphan.png")
	err := attachmentRepo.CreateAttachment(context.Background(), attachment)
	require.Error(t, err)
}

func TestGetAttachmentNotFound(t *testing.T) {
	db := setupTestDB(t)
	attachmentRepo := repository.NewSQLiteAttachmentRepository(db)

	got, err := attachmentRepo.GetAttachmentByID(context.Background(), uuid.New().String())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, repository.ErrAttachmentNotFound)
}

func TestListAttachmentsByRecordID(t *testing.T) {
	db := setupTestDB(t)
	recordRepo := repository.NewSQLiteRecordRepository(db)
	attachmentRepo := repository.NewSQLiteAttachmentRepository(db)
	ctx := context.Background()

	record := newTestRecord("запись с файлами")
	require.NoError(t, recordRepo.CreateRecord(ctx, record))
	other := newTestRecord("другая запись")
	require.NoError(t, recordRepo.CreateRecord(ctx, other))

	filenames := []string{"first.png", "second.log", "third.jpg"}
	for _, filename := range filenames {
		require.NoError(t, attachmentRepo.CreateAttachment(ctx, newTestAttachment(record.ID, filename)))
	}
	require.NoError(t, attachmentRepo.CreateAttachment(ctx, newTestAttachment(other.ID, "foreign.png")))

	attachments, err := attachmentRepo.ListAttachmentsByRecordID(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, attachments, 3)

	// Вложения возвращаются в порядке загрузки и только своей записи
	for i, filename := range filenames {
		assert.Equal(t, filename, attachments[i].Filename, fmt.Sprintf("вложение %d", i))
		assert.Equal(t, record.ID, attachments[i].RecordID)
	}
}

func TestListAttachmentsEmpty(t *testing.T) {
	db := setupTestDB(t)
	recordRepo := repository.NewSQLiteRecordRepository(db)
	attachmentRepo := repository.NewSQLiteAttachmentRepository(db)
	ctx := context.Background()

	record := newTestRecord("запись без файлов")
	require.NoError(t, recordRepo.CreateRecord(ctx, record))

	attachments, err := attachmentRepo.ListAttachmentsByRecordID(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, attachments)
}
