package importers

// DefaultErrorPreview is how many error entries an import result lists.
const DefaultErrorPreview = 10

// Stats summarizes an import. SkippedDuplicates and Failed are exact even when
// Errors is truncated.
type Stats struct {
	Total             int          `json:"total"`
	Imported          int          `json:"imported"`
	SkippedDuplicates int          `json:"skipped_duplicates"`
	Failed            int          `json:"failed"`
	Errors            []ErrorEntry `json:"errors"`
}

// Summarize builds the stats for a batch of which imported rows were stored.
// The preview lists genuine failures before duplicates, each group in row
// order, capped at limit entries.
func Summarize(batch *Batch, imported, limit int) Stats {
	if limit <= 0 {
		limit = DefaultErrorPreview
	}

	var failures, duplicates []ErrorEntry
	for _, e := range batch.Errors {
		if e.IsDuplicate() {
			duplicates = append(duplicates, e)
		} else {
			failures = append(failures, e)
		}
	}

	preview := make([]ErrorEntry, 0, len(batch.Errors))
	preview = append(preview, failures...)
	preview = append(preview, duplicates...)
	if len(preview) > limit {
		preview = preview[:limit]
	}

	return Stats{
		Total:             batch.Total(),
		Imported:          imported,
		SkippedDuplicates: len(duplicates),
		Failed:            len(failures),
		Errors:            preview,
	}
}
