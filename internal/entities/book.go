package entities

import (
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type BookFormat string

const (
	BookFormatPaperback BookFormat = "paperback"
	BookFormatHardcover BookFormat = "hardcover"
	BookFormatEbook     BookFormat = "ebook"
	BookFormatAudiobook BookFormat = "audiobook"
)

// ParseBookFormat matches case-insensitively against the known formats.
func ParseBookFormat(s string) (BookFormat, bool) {
	switch f := BookFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case BookFormatPaperback, BookFormatHardcover, BookFormatEbook, BookFormatAudiobook:
		return f, true
	}
	return "", false
}

// DefaultLanguage is assigned when a record carries no language.
const DefaultLanguage = "English"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:100" json:"username"`
	Token     string    `gorm:"uniqueIndex;size:64" json:"-"` // API token, hidden from JSON
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book is the canonical book record. Optional fields are pointers so that
// "absent" survives storage and export as null rather than a zero value.
type Book struct {
	ID              uint        `gorm:"primaryKey" json:"-"`
	PublicID        string      `gorm:"uniqueIndex;size:32" json:"id"`
	UserID          uint        `gorm:"index" json:"-"`
	Title           string      `gorm:"index;size:512;not null" json:"title"`
	Author          *string     `gorm:"index;size:256" json:"author"`
	ISBN            *string     `gorm:"size:20" json:"isbn"`
	Genre           *string     `gorm:"size:100" json:"genre"`
	Rating          float64     `gorm:"default:0" json:"rating"`
	Description     *string     `gorm:"type:text" json:"description"`
	CoverImage      *string     `gorm:"size:2048" json:"cover_image"`
	ReadingStarted  time.Time   `gorm:"index;not null" json:"reading_started"`
	ReadingFinished *time.Time  `json:"reading_finished"`
	IsFavorite      bool        `gorm:"index;default:false" json:"is_favorite"`
	PageCount       *int        `json:"page_count"`
	Publisher       *string     `gorm:"size:256" json:"publisher"`
	PublicationYear *int        `json:"publication_year"`
	Language        string      `gorm:"size:50;default:'English'" json:"language"`
	Format          *BookFormat `gorm:"size:20" json:"format"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// BeforeCreate assigns the public identifier exposed in exports.
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.PublicID != "" {
		return nil
	}
	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("generate book id: %w", err)
	}
	b.PublicID = "book-" + id
	return nil
}

// AuthorOrEmpty returns the author, or "" when absent.
func (b *Book) AuthorOrEmpty() string {
	if b.Author == nil {
		return ""
	}
	return *b.Author
}

// DuplicateKey returns the key two records must share to be the same book.
func (b *Book) DuplicateKey() DuplicateKey {
	return NewDuplicateKey(b.Title, b.AuthorOrEmpty())
}

// TitleAuthor is the projection of a stored book used to seed duplicate detection.
type TitleAuthor struct {
	Title  string
	Author *string
}

// DuplicateKey identifies a book by its trimmed, lowercased title and author.
type DuplicateKey struct {
	Title  string
	Author string
}

func NewDuplicateKey(title, author string) DuplicateKey {
	lower := cases.Lower(language.Und)
	return DuplicateKey{
		Title:  lower.String(strings.TrimSpace(title)),
		Author: lower.String(strings.TrimSpace(author)),
	}
}

func (k DuplicateKey) String() string {
	return k.Title + "|" + k.Author
}
