package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/exporters"
)

// ErrNothingToExport is returned when the filtered library is empty.
var ErrNothingToExport = errors.New("no books found to export")

// Attachment is a named document ready to be served as a download.
type Attachment struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ExportService struct {
	books   BookLister
	auditor ExportAuditor
	now     func() time.Time
}

// NewExportService creates a new ExportService. auditor may be nil.
func NewExportService(books BookLister, auditor ExportAuditor) *ExportService {
	return &ExportService{books: books, auditor: auditor, now: time.Now}
}

// WithClock replaces the clock used to stamp export file names.
func (s *ExportService) WithClock(now func() time.Time) *ExportService {
	s.now = now
	return s
}

// Export encodes the user's books, optionally only favorites.
func (s *ExportService) Export(ctx context.Context, userID uint, format entities.FileFormat, favoritesOnly bool) (*Attachment, error) {
	att, count, err := s.export(ctx, userID, format, favoritesOnly)
	if s.auditor != nil && !errors.Is(err, ErrNothingToExport) {
		s.auditor.LogExport(userID, audit.ExportRecord{
			Format:        format,
			Books:         count,
			FavoritesOnly: favoritesOnly,
			Err:           err,
		}).Log()
	}
	return att, err
}

func (s *ExportService) export(ctx context.Context, userID uint, format entities.FileFormat, favoritesOnly bool) (*Attachment, int, error) {
	books, err := s.books.ListBooks(ctx, userID, favoritesOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load books: %w", err)
	}
	if len(books) == 0 {
		return nil, 0, ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := exporters.Encode(&buf, format, books); err != nil {
		return nil, len(books), err
	}

	return &Attachment{
		Filename:    ExportFilename(format, s.now()),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, len(books), nil
}

// Template returns the CSV import template.
func (s *ExportService) Template() (*Attachment, error) {
	var buf bytes.Buffer
	if err := exporters.WriteTemplate(&buf); err != nil {
		return nil, err
	}
	return &Attachment{
		Filename:    exporters.TemplateFilename,
		ContentType: entities.FileFormatCSV.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// ExportFilename builds names like books_export_20250115_093000.json.
func ExportFilename(format entities.FileFormat, at time.Time) string {
	return fmt.Sprintf("books_export_%s.%s", at.UTC().Format("20060102_150405"), format.Extension())
}
