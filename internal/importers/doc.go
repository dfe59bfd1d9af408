// Package importers turns uploaded book files into canonical records.
//
// # Flow
//
//	Upload → checks (name, extension, size, UTF-8) → Format Adapter → RawRow
//	RawRow → Normalizer → DuplicateIndex → Batch{Valid, Errors}
//
// File-level problems reject the whole upload with a *FileError before any
// row is looked at. Row-level problems become an ErrorEntry and processing
// moves on to the next row.
//
// # Dialects
//
// JSON and CSV share one Normalizer. They differ only in the Dialect it is
// built with:
//
//   - CSV also accepts bare YYYY-MM-DD dates (UTC midnight).
//   - A bad rating rejects a JSON row but is coerced to 0.0 in a CSV row.
//   - CSV rows never set cover_image.
//
// # Duplicates
//
// A book is a duplicate when its lowercased, trimmed (title, author) pair was
// already stored for the user or appeared earlier in the same file. The first
// occurrence in file order wins.
package importers
