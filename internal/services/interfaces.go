package services

import (
	"context"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/besteffort"
	"github.com/mrlokans/readinglog/internal/entities"
)

// BookWriter persists validated books for a user.
type BookWriter interface {
	InsertBooks(ctx context.Context, userID uint, books []entities.Book) (int, error)
}

// BookLister reads a user's books for export.
type BookLister interface {
	ListBooks(ctx context.Context, userID uint, favoritesOnly bool) ([]entities.Book, error)
}

// ImportAuditor records imports. Its failures are reported, never raised.
type ImportAuditor interface {
	ArchiveUpload(data []byte, format entities.FileFormat) (string, besteffort.Result)
	LogImport(userID uint, rec audit.ImportRecord) besteffort.Result
}

// ExportAuditor records exports. Its failures are reported, never raised.
type ExportAuditor interface {
	LogExport(userID uint, rec audit.ExportRecord) besteffort.Result
}
