package importers

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/readinglog/internal/entities"
)

// DefaultMaxFileSize is the upload cap used when none is configured.
const DefaultMaxFileSize int64 = 50 * 1024 * 1024

// KeySource reads the title/author projection of a user's stored books.
type KeySource interface {
	ExistingKeys(ctx context.Context, userID uint) ([]entities.TitleAuthor, error)
}

// Batch is the outcome of processing one upload: rows that passed, in file
// order, and one error entry per rejected row, also in file order.
type Batch struct {
	Format entities.FileFormat
	Valid  []entities.Book
	Errors []ErrorEntry
	// Raw holds the uploaded bytes as received, for archiving.
	Raw []byte
}

func (b *Batch) Total() int {
	return len(b.Valid) + len(b.Errors)
}

// Pipeline validates an upload and splits its rows into valid books and
// rejections:
//
//	upload → size/name checks → decode → seed index → per row: normalize → dedup
//
// Rows are processed strictly in file order so that the first occurrence of
// a duplicate key wins.
type Pipeline struct {
	keys     KeySource
	maxBytes int64
	now      func() time.Time
}

func NewPipeline(keys KeySource, maxBytes int64) *Pipeline {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}
	return &Pipeline{keys: keys, maxBytes: maxBytes, now: time.Now}
}

// WithClock replaces the clock used for defaulted reading_started values.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

func (p *Pipeline) MaxBytes() int64 {
	return p.maxBytes
}

// Process returns a *FileError when the upload is rejected as a whole. Any
// other error comes from the key source.
func (p *Pipeline) Process(ctx context.Context, userID uint, upload Upload) (*Batch, error) {
	dialect, ok := DialectFor(upload.Format)
	if !ok {
		return nil, fileError(ErrUnsupportedFormat, "Unsupported format: %s", upload.Format)
	}
	if err := checkFilename(upload.Filename, upload.Format); err != nil {
		return nil, err
	}

	raw, err := readLimited(upload.Body, p.maxBytes)
	if err != nil {
		return nil, err
	}
	data, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(upload.Format, data)
	if err != nil {
		return nil, err
	}

	existing, err := p.keys.ExistingKeys(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing books: %w", err)
	}
	index := NewDuplicateIndex()
	index.Seed(existing)

	normalizer := NewNormalizer(dialect, p.now)
	batch := &Batch{Format: upload.Format, Raw: raw}

	for _, row := range rows {
		book, rowErr := normalizer.Normalize(row)
		if rowErr == nil && !index.CheckAndInsert(book.DuplicateKey()) {
			rowErr = DuplicateEntry()
		}
		if rowErr != nil {
			batch.Errors = append(batch.Errors, ErrorEntry{
				Row:    row.Number,
				Error:  rowErr.Message,
				Data:   row.Title(),
				Reason: rowErr.Reason,
			})
			continue
		}
		book.UserID = userID
		batch.Valid = append(batch.Valid, *book)
	}

	return batch, nil
}
