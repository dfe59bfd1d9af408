package exporters

import (
	"io"
	"time"

	"github.com/mrlokans/readinglog/internal/entities"
)

// TemplateFilename is the attachment name of the import template.
const TemplateFilename = "books_import_template.csv"

// TemplateBooks returns the two sample rows of the import template.
func TemplateBooks() []entities.Book {
	paperback := entities.BookFormatPaperback
	ebook := entities.BookFormatEbook
	gatsbyFinished := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	return []entities.Book{
		{
			Title:           "The Great Gatsby",
			Author:          ptr("F. Scott Fitzgerald"),
			ISBN:            ptr("9780743273565"),
			Genre:           ptr("Classic"),
			Rating:          4.5,
			Description:     ptr("A classic American novel"),
			ReadingStarted:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			ReadingFinished: &gatsbyFinished,
			IsFavorite:      true,
			PageCount:       ptr(180),
			Publisher:       ptr("Scribner"),
			PublicationYear: ptr(1925),
			Language:        entities.DefaultLanguage,
			Format:          &paperback,
		},
		{
			Title:           "1984",
			Author:          ptr("George Orwell"),
			ISBN:            ptr("9780451524935"),
			Genre:           ptr("Dystopian"),
			Rating:          5.0,
			Description:     ptr("A dystopian social science fiction novel"),
			ReadingStarted:  time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
			PageCount:       ptr(328),
			Publisher:       ptr("Secker & Warburg"),
			PublicationYear: ptr(1949),
			Language:        entities.DefaultLanguage,
			Format:          &ebook,
		},
	}
}

// WriteTemplate writes the sample rows through the regular CSV encoder.
func WriteTemplate(w io.Writer) error {
	return WriteCSV(w, TemplateBooks())
}

func ptr[T any](v T) *T {
	return &v
}
