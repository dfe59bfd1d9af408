package exporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mrlokans/readinglog/internal/entities"
)

// CSVHeader is the fixed column order of CSV exports and templates.
var CSVHeader = []string{
	"title", "author", "isbn", "genre", "rating", "description", "cover_image",
	"reading_started", "reading_finished", "is_favorite", "page_count",
	"publisher", "publication_year", "language", "format", "created_at", "updated_at",
}

// jsonBook fixes the field order of JSON exports. Absent values are null.
type jsonBook struct {
	ID              *string `json:"id"`
	Title           string  `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	Genre           *string `json:"genre"`
	Rating          float64 `json:"rating"`
	Description     *string `json:"description"`
	CoverImage      *string `json:"cover_image"`
	ReadingStarted  *string `json:"reading_started"`
	ReadingFinished *string `json:"reading_finished"`
	IsFavorite      bool    `json:"is_favorite"`
	PageCount       *int    `json:"page_count"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publication_year"`
	Language        string  `json:"language"`
	Format          *string `json:"format"`
	CreatedAt       *string `json:"created_at"`
	UpdatedAt       *string `json:"updated_at"`
}

func toJSONBook(b entities.Book) jsonBook {
	out := jsonBook{
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Genre:           b.Genre,
		Rating:          b.Rating,
		Description:     b.Description,
		CoverImage:      b.CoverImage,
		ReadingStarted:  timestamp(b.ReadingStarted),
		IsFavorite:      b.IsFavorite,
		PageCount:       b.PageCount,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		Language:        b.Language,
		CreatedAt:       timestamp(b.CreatedAt),
		UpdatedAt:       timestamp(b.UpdatedAt),
	}
	if b.PublicID != "" {
		id := b.PublicID
		out.ID = &id
	}
	if b.ReadingFinished != nil {
		out.ReadingFinished = timestamp(*b.ReadingFinished)
	}
	if b.Format != nil {
		f := string(*b.Format)
		out.Format = &f
	}
	return out
}

// WriteJSON writes books as a pretty-printed JSON array.
func WriteJSON(w io.Writer, books []entities.Book) error {
	out := make([]jsonBook, 0, len(books))
	for _, b := range books {
		out = append(out, toJSONBook(b))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return nil
}

// WriteCSV writes books as CSV with a UTF-8 byte order mark in front of the
// header. Readers must drop the BOM before treating the stream as plain UTF-8.
func WriteCSV(w io.Writer, books []entities.Book) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, b := range books {
		if err := cw.Write(csvRecord(b)); err != nil {
			return fmt.Errorf("failed to write CSV row for %q: %w", b.Title, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV export: %w", err)
	}
	return bw.Close()
}

// Encode writes books in the requested format.
func Encode(w io.Writer, format entities.FileFormat, books []entities.Book) error {
	switch format {
	case entities.FileFormatJSON:
		return WriteJSON(w, books)
	case entities.FileFormatCSV:
		return WriteCSV(w, books)
	}
	return fmt.Errorf("unsupported export format: %s", format)
}

func csvRecord(b entities.Book) []string {
	format := ""
	if b.Format != nil {
		format = string(*b.Format)
	}
	finished := ""
	if b.ReadingFinished != nil {
		finished = deref(timestamp(*b.ReadingFinished))
	}
	return []string{
		b.Title,
		deref(b.Author),
		deref(b.ISBN),
		deref(b.Genre),
		formatRating(b.Rating),
		deref(b.Description),
		deref(b.CoverImage),
		deref(timestamp(b.ReadingStarted)),
		finished,
		strconv.FormatBool(b.IsFavorite),
		intOrEmpty(b.PageCount),
		deref(b.Publisher),
		intOrEmpty(b.PublicationYear),
		b.Language,
		format,
		deref(timestamp(b.CreatedAt)),
		deref(timestamp(b.UpdatedAt)),
	}
}

// timestamp renders t as RFC 3339 in UTC, or nil for the zero time.
func timestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

// formatRating always keeps one decimal place: 5 renders as "5.0".
func formatRating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
