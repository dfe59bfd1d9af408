package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readinglog/internal/entities"
)

func TestSummarize_OrdersFailuresBeforeDuplicates(t *testing.T) {
	batch := &Batch{
		Valid: []entities.Book{{Title: "Dune"}},
		Errors: []ErrorEntry{
			{Row: 2, Error: "Duplicate entry: book already exists", Reason: ReasonDuplicate},
			{Row: 3, Error: "Missing required field: title", Reason: ReasonMissingField},
			{Row: 5, Error: "Duplicate entry: book already exists", Reason: ReasonDuplicate},
			{Row: 6, Error: "Invalid date format for reading_started", Reason: ReasonInvalidDate},
		},
	}

	stats := Summarize(batch, 1, DefaultErrorPreview)

	require.Len(t, stats.Errors, 4)
	var rows []int
	for _, e := range stats.Errors {
		rows = append(rows, e.Row)
	}
	assert.Equal(t, []int{3, 6, 2, 5}, rows)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 2, stats.SkippedDuplicates)
}

func TestSummarize_TruncatesPreviewButKeepsExactCounts(t *testing.T) {
	batch := &Batch{}
	for i := 0; i < 8; i++ {
		batch.Errors = append(batch.Errors, ErrorEntry{Row: 2 + i, Reason: ReasonDuplicate})
	}
	for i := 0; i < 7; i++ {
		batch.Errors = append(batch.Errors, ErrorEntry{Row: 20 + i, Reason: ReasonInvalidDate})
	}

	stats := Summarize(batch, 0, DefaultErrorPreview)

	require.Len(t, stats.Errors, 10)
	assert.Equal(t, 20, stats.Errors[0].Row)
	assert.Equal(t, ReasonDuplicate, stats.Errors[9].Reason)
	assert.Equal(t, 7, stats.Failed)
	assert.Equal(t, 8, stats.SkippedDuplicates)
	assert.Equal(t, 15, stats.Total)
}

func TestSummarize_EmptyBatch(t *testing.T) {
	stats := Summarize(&Batch{}, 0, 0)

	assert.NotNil(t, stats.Errors)
	assert.Empty(t, stats.Errors)
	assert.Zero(t, stats.Total)
}

func TestSummarize_ImportedMayTrailValid(t *testing.T) {
	batch := &Batch{Valid: []entities.Book{{Title: "A"}, {Title: "B"}}}

	stats := Summarize(batch, 1, 3)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Imported)
}
