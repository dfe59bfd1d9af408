package importers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/segmentio/encoding/json"
	"golang.org/x/text/encoding/unicode"

	"github.com/mrlokans/readinglog/internal/entities"
)

// Upload is a file handed to the import pipeline.
type Upload struct {
	Filename string
	Format   entities.FileFormat
	Body     io.Reader
}

// RawRow is one decoded record before normalization. CSV rows carry only
// string values; JSON rows carry whatever the document held.
type RawRow struct {
	Number    int
	Fields    map[string]any
	NotObject bool
}

func (r RawRow) value(field string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[field]
}

// Title returns the best-effort title used to label error entries.
func (r RawRow) Title() string {
	if title := text(r.value("title")); title != nil {
		return *title
	}
	return "Unknown"
}

func checkFilename(name string, format entities.FileFormat) error {
	if strings.TrimSpace(name) == "" {
		return fileError(ErrInvalidFilename, "Invalid filename")
	}
	if !strings.EqualFold(filepath.Ext(name), "."+format.Extension()) {
		return fileError(ErrFormatMismatch, "File extension must be .%s for %s format",
			format.Extension(), format.Label())
	}
	return nil
}

// readLimited reads at most limit bytes and rejects the upload as soon as one
// more byte is available.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fileError(ErrMalformed, "Failed to read file: %v", err)
	}
	if int64(len(data)) > limit {
		return nil, fileError(ErrFileTooLarge, "File too large. Maximum size is %s",
			humanize.IBytes(uint64(limit)))
	}
	return data, nil
}

// decodeText validates UTF-8 and drops a leading byte order mark. Validation
// runs first since the decoder would otherwise replace invalid sequences.
func decodeText(data []byte) ([]byte, error) {
	if !utf8.Valid(data) {
		return nil, fileError(ErrEncoding, "File encoding error. Please use UTF-8 encoding")
	}
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fileError(ErrEncoding, "File encoding error. Please use UTF-8 encoding")
	}
	return out, nil
}

func decodeRows(format entities.FileFormat, data []byte) ([]RawRow, error) {
	switch format {
	case entities.FileFormatJSON:
		return decodeJSON(data)
	case entities.FileFormatCSV:
		return decodeCSV(data)
	}
	return nil, fileError(ErrUnsupportedFormat, "Unsupported format: %s", format)
}

func decodeJSON(data []byte) ([]RawRow, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fileError(ErrMalformed, "Invalid JSON format: %v", err)
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, fileError(ErrMalformed, "JSON file must contain an array of books")
	}

	rows := make([]RawRow, 0, len(items))
	for i, item := range items {
		row := RawRow{Number: i + 1}
		if fields, ok := item.(map[string]any); ok {
			row.Fields = fields
		} else {
			row.NotObject = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeCSV(data []byte) ([]RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fileError(ErrMalformed, "CSV file is empty or has no headers")
	}
	if err != nil {
		return nil, fileError(ErrMalformed, "Invalid CSV format: %v", err)
	}

	// A repeated column name reads from its last occurrence.
	headerIndex := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		headerIndex[name] = i
	}
	if len(headerIndex) == 0 {
		return nil, fileError(ErrMalformed, "CSV file is empty or has no headers")
	}

	var rows []RawRow
	rowNum := 1 // header
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fileError(ErrMalformed, "Invalid CSV format: %v", err)
		}
		rowNum++

		fields := make(map[string]any, len(headerIndex))
		for name, idx := range headerIndex {
			if idx < len(record) {
				fields[name] = record[idx]
			}
		}
		rows = append(rows, RawRow{Number: rowNum, Fields: fields})
	}
	return rows, nil
}
