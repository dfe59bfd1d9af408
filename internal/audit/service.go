package audit

import (
	"fmt"
	"log"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/mrlokans/readinglog/internal/besteffort"
	"github.com/mrlokans/readinglog/internal/database/audit"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/utils"
)

// Service records import and export activity.
type Service struct {
	repo    *audit.Repository
	archive *Archive
}

// NewService creates a new audit service. archive may be nil, in which case
// uploads are not archived.
func NewService(repo *audit.Repository, archive *Archive) *Service {
	return &Service{repo: repo, archive: archive}
}

// ImportRecord describes one finished (or failed) import.
type ImportRecord struct {
	Format            entities.FileFormat
	Filename          string
	Total             int
	Imported          int
	SkippedDuplicates int
	Failed            int
	ArchiveFile       string
	Err               error
}

// ExportRecord describes one finished (or failed) export.
type ExportRecord struct {
	Format        entities.FileFormat
	Books         int
	FavoritesOnly bool
	Err           error
}

// ArchiveUpload stores the raw upload when archiving is enabled.
func (s *Service) ArchiveUpload(data []byte, format entities.FileFormat) (string, besteffort.Result) {
	const op = "upload archive"
	if s.archive == nil {
		return "", besteffort.Skipped(op)
	}
	var filename string
	res := besteffort.Run(op, func() error {
		var err error
		filename, err = s.archive.Save(data, format.Extension())
		return err
	})
	return filename, res
}

func (s *Service) LogImport(userID uint, rec ImportRecord) besteffort.Result {
	rec.Filename = utils.SanitizeFilename(rec.Filename)
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventImport,
		Action:      string(rec.Format) + "_import",
		Description: fmt.Sprintf("Imported %d of %d books from %s", rec.Imported, rec.Total, rec.Filename),
		ArchiveFile: rec.ArchiveFile,
		Status:      entities.AuditStatusSuccess,
	}
	event.Metadata = metadata(map[string]any{
		"filename":           rec.Filename,
		"total":              rec.Total,
		"imported":           rec.Imported,
		"skipped_duplicates": rec.SkippedDuplicates,
		"failed":             rec.Failed,
	})
	if rec.Err != nil {
		event.Status = entities.AuditStatusFailed
		event.Description = fmt.Sprintf("Import of %s failed", rec.Filename)
		event.ErrorMsg = truncate(rec.Err.Error(), 500)
	}

	return besteffort.Run("import audit event", func() error {
		return s.repo.LogEvent(event)
	})
}

func (s *Service) LogExport(userID uint, rec ExportRecord) besteffort.Result {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventExport,
		Action:      string(rec.Format) + "_export",
		Description: fmt.Sprintf("Exported %d books as %s", rec.Books, rec.Format.Label()),
		Status:      entities.AuditStatusSuccess,
	}
	event.Metadata = metadata(map[string]any{
		"books":          rec.Books,
		"favorites_only": rec.FavoritesOnly,
	})
	if rec.Err != nil {
		event.Status = entities.AuditStatusFailed
		event.Description = fmt.Sprintf("%s export failed", rec.Format.Label())
		event.ErrorMsg = truncate(rec.Err.Error(), 500)
	}

	return besteffort.Run("export audit event", func() error {
		return s.repo.LogEvent(event)
	})
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// Prune removes events older than retention together with the uploads they
// archived. Archive files that cannot be removed are logged and skipped.
func (s *Service) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	if s.archive != nil {
		files, err := s.repo.ArchivedFilesBefore(cutoff)
		if err != nil {
			return 0, fmt.Errorf("failed to list archived uploads: %w", err)
		}
		for _, f := range files {
			besteffort.Run("remove archived upload "+f, func() error {
				return s.archive.Remove(f)
			}).Log()
		}
	}

	deleted, err := s.repo.DeleteOldEvents(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit events: %w", err)
	}
	return deleted, nil
}

func metadata(m map[string]any) string {
	b, err := json.Marshal(m)
	if err != nil {
		log.Printf("Failed to encode audit metadata: %v", err)
		return ""
	}
	return string(b)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
