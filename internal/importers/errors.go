package importers

import (
	"errors"
	"fmt"
)

// Kinds of file-level rejection. A FileError wraps exactly one of them.
var (
	ErrInvalidFilename   = errors.New("invalid filename")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFormatMismatch    = errors.New("format does not match file extension")
	ErrFileTooLarge      = errors.New("file too large")
	ErrEncoding          = errors.New("file is not valid UTF-8")
	ErrMalformed         = errors.New("malformed document")
)

// FileError rejects a whole upload before any row is processed.
type FileError struct {
	Kind    error
	Message string
}

func (e *FileError) Error() string { return e.Message }

func (e *FileError) Unwrap() error { return e.Kind }

func fileError(kind error, format string, args ...any) *FileError {
	return &FileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// RowReason classifies why a single row was rejected.
type RowReason string

const (
	ReasonMissingField  RowReason = "missing_field"
	ReasonInvalidDate   RowReason = "invalid_date"
	ReasonDateOrder     RowReason = "date_order"
	ReasonInvalidRating RowReason = "invalid_rating"
	ReasonInvalidRow    RowReason = "invalid_row"
	ReasonDuplicate     RowReason = "duplicate"
)

// RowError rejects one row; the batch carries on with the next one.
type RowError struct {
	Reason  RowReason
	Field   string
	Message string
}

func (e *RowError) Error() string { return e.Message }

func MissingField(field string) *RowError {
	return &RowError{
		Reason:  ReasonMissingField,
		Field:   field,
		Message: "Missing required field: " + field,
	}
}

func InvalidDate(field string) *RowError {
	return &RowError{
		Reason:  ReasonInvalidDate,
		Field:   field,
		Message: "Invalid date format for " + field,
	}
}

func DateOrderViolation() *RowError {
	return &RowError{
		Reason:  ReasonDateOrder,
		Field:   "reading_finished",
		Message: "Finish date cannot be before start date",
	}
}

func InvalidRating() *RowError {
	return &RowError{
		Reason:  ReasonInvalidRating,
		Field:   "rating",
		Message: fmt.Sprintf("Rating must be between %g and %g", minRating, maxRating),
	}
}

func InvalidRow(message string) *RowError {
	return &RowError{Reason: ReasonInvalidRow, Message: message}
}

func DuplicateEntry() *RowError {
	return &RowError{
		Reason:  ReasonDuplicate,
		Message: "Duplicate entry: book already exists",
	}
}

// ErrorEntry is the per-row report returned to the caller.
type ErrorEntry struct {
	Row    int       `json:"row"`
	Error  string    `json:"error"`
	Data   string    `json:"data"`
	Reason RowReason `json:"-"`
}

// IsDuplicate reports whether the row was rejected only because its key was taken.
func (e ErrorEntry) IsDuplicate() bool {
	return e.Reason == ReasonDuplicate
}
