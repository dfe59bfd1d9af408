package entities

import "strings"

// FileFormat is the encoding of an import or export document.
type FileFormat string

const (
	FileFormatJSON FileFormat = "json"
	FileFormatCSV  FileFormat = "csv"
)

func ParseFileFormat(s string) (FileFormat, bool) {
	switch f := FileFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FileFormatJSON, FileFormatCSV:
		return f, true
	}
	return "", false
}

// Extension returns the file extension without the leading dot.
func (f FileFormat) Extension() string {
	return string(f)
}

func (f FileFormat) ContentType() string {
	switch f {
	case FileFormatJSON:
		return "application/json"
	case FileFormatCSV:
		return "text/csv"
	}
	return "application/octet-stream"
}

// Label is the upper-case name used in user-facing messages.
func (f FileFormat) Label() string {
	return strings.ToUpper(string(f))
}
