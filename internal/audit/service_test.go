package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/readinglog/internal/database/audit"
	"github.com/mrlokans/readinglog/internal/entities"
)

func setupTestService(t *testing.T, archive *Archive) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return NewService(auditRepo.NewRepository(db), archive), db
}

func TestService_LogImport(t *testing.T) {
	svc, db := setupTestService(t, nil)

	t.Run("successful import", func(t *testing.T) {
		res := svc.LogImport(1, ImportRecord{
			Format:            entities.FileFormatCSV,
			Filename:          "books.csv",
			Total:             12,
			Imported:          10,
			SkippedDuplicates: 1,
			Failed:            1,
			ArchiveFile:       "abc.csv",
		})
		require.True(t, res.OK())

		var event entities.AuditEvent
		err := db.Where("action = ?", "csv_import").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "Imported 10 of 12 books from books.csv", event.Description)
		assert.Equal(t, "abc.csv", event.ArchiveFile)
		assert.Contains(t, event.Metadata, `"skipped_duplicates":1`)
	})

	t.Run("failed import", func(t *testing.T) {
		res := svc.LogImport(1, ImportRecord{
			Format:   entities.FileFormatJSON,
			Filename: "books.json",
			Err:      errors.New("database is locked"),
		})
		require.True(t, res.OK())

		var event entities.AuditEvent
		err := db.Where("action = ?", "json_import").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Contains(t, event.ErrorMsg, "database is locked")
	})

	t.Run("client path is reduced to a file name", func(t *testing.T) {
		res := svc.LogImport(3, ImportRecord{
			Format:   entities.FileFormatCSV,
			Filename: `C:\Users\reader\my "books".csv`,
			Total:    1,
			Imported: 1,
		})
		require.True(t, res.OK())

		var event entities.AuditEvent
		require.NoError(t, db.Where("user_id = ?", 3).First(&event).Error)
		assert.Equal(t, "Imported 1 of 1 books from my books.csv", event.Description)
	})
}

func TestService_LogExport(t *testing.T) {
	svc, db := setupTestService(t, nil)

	res := svc.LogExport(2, ExportRecord{Format: entities.FileFormatJSON, Books: 3, FavoritesOnly: true})
	require.True(t, res.OK())

	events, total, err := svc.GetEvents(2, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "json_export", events[0].Action)
	assert.Equal(t, "Exported 3 books as JSON", events[0].Description)
	assert.Contains(t, events[0].Metadata, `"favorites_only":true`)

	var count int64
	require.NoError(t, db.Model(&entities.AuditEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestService_LogFailureIsReportedNotRaised(t *testing.T) {
	svc, db := setupTestService(t, nil)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	res := svc.LogExport(1, ExportRecord{Format: entities.FileFormatCSV})

	assert.False(t, res.OK())
	assert.Equal(t, "export audit event", res.Op)
}

func TestService_ArchiveUpload(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		svc, _ := setupTestService(t, nil)

		name, res := svc.ArchiveUpload([]byte("title\n"), entities.FileFormatCSV)

		assert.Empty(t, name)
		assert.True(t, res.OK())
	})

	t.Run("enabled", func(t *testing.T) {
		dir := t.TempDir()
		svc, _ := setupTestService(t, NewArchive(dir))

		name, res := svc.ArchiveUpload([]byte("title\nDune\n"), entities.FileFormatCSV)

		require.True(t, res.OK())
		assert.Equal(t, ".csv", filepath.Ext(name))
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "title\nDune\n", string(data))
	})
}

func TestService_Prune(t *testing.T) {
	dir := t.TempDir()
	archive := NewArchive(dir)
	svc, db := setupTestService(t, archive)

	oldFile, err := archive.Save([]byte("[]"), "json")
	require.NoError(t, err)
	newFile, err := archive.Save([]byte("[]"), "json")
	require.NoError(t, err)

	require.NoError(t, db.Create(&entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventImport,
		Action:      "json_import",
		ArchiveFile: oldFile,
		Status:      entities.AuditStatusSuccess,
		CreatedAt:   time.Now().Add(-40 * 24 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventImport,
		Action:      "json_import",
		ArchiveFile: newFile,
		Status:      entities.AuditStatusSuccess,
		CreatedAt:   time.Now(),
	}).Error)

	deleted, err := svc.Prune(30 * 24 * time.Hour)

	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	_, err = os.Stat(filepath.Join(dir, oldFile))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, newFile))
	assert.NoError(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
