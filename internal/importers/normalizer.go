package importers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/readinglog/internal/entities"
)

const (
	minRating = 0.0
	maxRating = 5.0

	minPublicationYear = 1000
)

// FallbackPolicy decides what happens when a field value fails to parse.
type FallbackPolicy int

const (
	// FallbackAbsent drops the value and keeps the record's default.
	FallbackAbsent FallbackPolicy = iota
	// FallbackReject fails the whole row.
	FallbackReject
)

// Layouts without an offset are read as UTC.
var isoDateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Dialect holds the per-format differences in how raw values are read.
type Dialect struct {
	Format         entities.FileFormat
	DateLayouts    []string
	Policies       map[string]FallbackPolicy
	SetsCoverImage bool
}

// JSONDialect reads ISO 8601 dates, rejects rows with a bad rating and keeps
// cover images.
var JSONDialect = Dialect{
	Format:         entities.FileFormatJSON,
	DateLayouts:    isoDateTimeLayouts,
	Policies:       map[string]FallbackPolicy{"rating": FallbackReject},
	SetsCoverImage: true,
}

// CSVDialect coerces a bad rating to 0.0 and never sets a cover image.
var CSVDialect = Dialect{
	Format:      entities.FileFormatCSV,
	DateLayouts: isoDateTimeLayouts,
	Policies:    map[string]FallbackPolicy{"rating": FallbackAbsent},
}

func DialectFor(format entities.FileFormat) (Dialect, bool) {
	switch format {
	case entities.FileFormatJSON:
		return JSONDialect, true
	case entities.FileFormatCSV:
		return CSVDialect, true
	}
	return Dialect{}, false
}

func (d Dialect) policy(field string) FallbackPolicy {
	if p, ok := d.Policies[field]; ok {
		return p
	}
	return FallbackAbsent
}

func (d Dialect) parseTime(s string) (time.Time, bool) {
	for _, layout := range d.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// fieldRule parses one optional field. A parse error is handled according to
// the dialect's policy for the field; reject builds the row error in that case.
type fieldRule struct {
	field  string
	parse  func(v any) (any, error)
	apply  func(b *entities.Book, v any)
	reject func() *RowError
}

var errInvalidValue = errors.New("invalid value")

// Normalizer turns raw rows into canonical books. It holds no state between
// rows.
type Normalizer struct {
	dialect Dialect
	now     func() time.Time
	rules   []fieldRule
}

func NewNormalizer(dialect Dialect, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	n := &Normalizer{dialect: dialect, now: now}
	n.rules = []fieldRule{
		{
			field:  "rating",
			parse:  parseRating,
			apply:  func(b *entities.Book, v any) { b.Rating = v.(float64) },
			reject: InvalidRating,
		},
		{
			field: "page_count",
			parse: parsePageCount,
			apply: func(b *entities.Book, v any) { pc := v.(int); b.PageCount = &pc },
		},
		{
			field: "publication_year",
			parse: n.parsePublicationYear,
			apply: func(b *entities.Book, v any) { y := v.(int); b.PublicationYear = &y },
		},
		{
			field: "format",
			parse: parseFormat,
			apply: func(b *entities.Book, v any) { f := v.(entities.BookFormat); b.Format = &f },
		},
		{
			field: "is_favorite",
			parse: parseBool,
			apply: func(b *entities.Book, v any) { b.IsFavorite = v.(bool) },
		},
	}
	return n
}

// Normalize validates one row. Checks run in a fixed order and the first
// failure is returned.
func (n *Normalizer) Normalize(row RawRow) (*entities.Book, *RowError) {
	if row.NotObject {
		return nil, InvalidRow("Row must be an object")
	}

	title := text(row.value("title"))
	if title == nil {
		return nil, MissingField("title")
	}

	book := &entities.Book{
		Title:    *title,
		Rating:   0.0,
		Language: entities.DefaultLanguage,
	}

	started, ok, err := n.timestamp(row, "reading_started")
	if err != nil {
		return nil, err
	}
	if !ok {
		started = n.now().UTC()
	}
	book.ReadingStarted = started

	finished, ok, err := n.timestamp(row, "reading_finished")
	if err != nil {
		return nil, err
	}
	if ok {
		if finished.Before(started) {
			return nil, DateOrderViolation()
		}
		book.ReadingFinished = &finished
	}

	for _, rule := range n.rules {
		raw := row.value(rule.field)
		if isBlank(raw) {
			continue
		}
		v, err := rule.parse(raw)
		if err != nil {
			if n.dialect.policy(rule.field) == FallbackReject && rule.reject != nil {
				return nil, rule.reject()
			}
			continue
		}
		rule.apply(book, v)
	}

	book.Author = text(row.value("author"))
	book.ISBN = text(row.value("isbn"))
	book.Genre = text(row.value("genre"))
	book.Description = text(row.value("description"))
	book.Publisher = text(row.value("publisher"))
	if n.dialect.SetsCoverImage {
		book.CoverImage = text(row.value("cover_image"))
	}
	if lang := text(row.value("language")); lang != nil {
		book.Language = *lang
	}

	return book, nil
}

// timestamp reports ok=false when the field is absent or blank.
func (n *Normalizer) timestamp(row RawRow, field string) (time.Time, bool, *RowError) {
	raw := row.value(field)
	if isBlank(raw) {
		return time.Time{}, false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return time.Time{}, false, InvalidDate(field)
	}
	t, ok := n.dialect.parseTime(strings.TrimSpace(s))
	if !ok {
		return time.Time{}, false, InvalidDate(field)
	}
	return t, true, nil
}

func (n *Normalizer) parsePublicationYear(v any) (any, error) {
	year, err := parseInt(v)
	if err != nil {
		return nil, err
	}
	if year < minPublicationYear || year > n.now().Year() {
		return nil, fmt.Errorf("publication year %d: %w", year, errInvalidValue)
	}
	return year, nil
}

func parseRating(v any) (any, error) {
	var r float64
	switch val := v.(type) {
	case float64:
		r = val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, errInvalidValue
		}
		r = f
	default:
		return nil, errInvalidValue
	}
	if !(r >= minRating && r <= maxRating) {
		return nil, errInvalidValue
	}
	return r, nil
}

func parsePageCount(v any) (any, error) {
	pc, err := parseInt(v)
	if err != nil {
		return nil, err
	}
	if pc <= 0 {
		return nil, errInvalidValue
	}
	return pc, nil
}

func parseFormat(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errInvalidValue
	}
	f, ok := entities.ParseBookFormat(s)
	if !ok {
		return nil, errInvalidValue
	}
	return f, nil
}

func parseBool(v any) (any, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case float64:
		return val != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes", "y":
			return true, nil
		}
		return false, nil
	}
	return nil, errInvalidValue
}

// parseInt truncates JSON numbers and parses CSV strings as base-10 integers.
func parseInt(v any) (int, error) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) || math.Abs(val) > math.MaxInt32 {
			return 0, errInvalidValue
		}
		return int(val), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, errInvalidValue
		}
		return i, nil
	}
	return 0, errInvalidValue
}

// text returns the trimmed string form of a scalar, or nil when it is blank
// or not a scalar.
func text(v any) *string {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	default:
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}
