package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/importers"
)

// ImportResult is what an import call reports back to the caller.
type ImportResult struct {
	Message string          `json:"message"`
	Stats   importers.Stats `json:"stats"`
}

// ImportService runs uploads through the import pipeline and stores the
// rows that pass.
type ImportService struct {
	pipeline     *importers.Pipeline
	books        BookWriter
	auditor      ImportAuditor
	errorPreview int
}

// NewImportService creates a new ImportService. auditor may be nil.
func NewImportService(pipeline *importers.Pipeline, books BookWriter, auditor ImportAuditor, errorPreview int) *ImportService {
	if errorPreview <= 0 {
		errorPreview = importers.DefaultErrorPreview
	}
	return &ImportService{
		pipeline:     pipeline,
		books:        books,
		auditor:      auditor,
		errorPreview: errorPreview,
	}
}

// Import processes one upload for the user. A *importers.FileError rejects
// the upload as a whole; any other error means storage failed and nothing
// about persistence can be assumed.
func (s *ImportService) Import(ctx context.Context, userID uint, upload importers.Upload) (*ImportResult, error) {
	batch, err := s.pipeline.Process(ctx, userID, upload)
	if err != nil {
		var fileErr *importers.FileError
		if errors.As(err, &fileErr) {
			log.Printf("Import for user %d rejected: %s", userID, fileErr.Message)
		}
		s.logImport(userID, audit.ImportRecord{Format: upload.Format, Filename: upload.Filename, Err: err})
		return nil, err
	}

	archiveFile := s.archive(batch)

	imported, err := s.books.InsertBooks(ctx, userID, batch.Valid)
	if err != nil {
		s.logImport(userID, audit.ImportRecord{
			Format:      upload.Format,
			Filename:    upload.Filename,
			Total:       batch.Total(),
			ArchiveFile: archiveFile,
			Err:         err,
		})
		return nil, fmt.Errorf("failed to store imported books: %w", err)
	}

	stats := importers.Summarize(batch, imported, s.errorPreview)
	log.Printf("Import for user %d from %s: %d imported, %d duplicates, %d failed",
		userID, upload.Filename, stats.Imported, stats.SkippedDuplicates, stats.Failed)

	s.logImport(userID, audit.ImportRecord{
		Format:            upload.Format,
		Filename:          upload.Filename,
		Total:             stats.Total,
		Imported:          stats.Imported,
		SkippedDuplicates: stats.SkippedDuplicates,
		Failed:            stats.Failed,
		ArchiveFile:       archiveFile,
	})

	return &ImportResult{Message: "Import completed", Stats: stats}, nil
}

func (s *ImportService) archive(batch *importers.Batch) string {
	if s.auditor == nil {
		return ""
	}
	name, res := s.auditor.ArchiveUpload(batch.Raw, batch.Format)
	res.Log()
	return name
}

func (s *ImportService) logImport(userID uint, rec audit.ImportRecord) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogImport(userID, rec).Log()
}
