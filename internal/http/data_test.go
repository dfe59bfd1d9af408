package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/database"
	auditrepo "github.com/mrlokans/readinglog/internal/database/audit"
	"github.com/mrlokans/readinglog/internal/database/books"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/importers"
	"github.com/mrlokans/readinglog/internal/services"
)

type testServer struct {
	router *gin.Engine
	db     *database.Database
}

func setupDataServer(t *testing.T, maxBytes int64) *testServer {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "library.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	bookRepo := books.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB), nil)
	pipeline := importers.NewPipeline(bookRepo, maxBytes)

	router := NewRouter(RouterConfig{
		Importer:       services.NewImportService(pipeline, bookRepo, auditService, 0),
		Exporter:       services.NewExportService(bookRepo, auditService),
		History:        auditService,
		Database:       db,
		MaxUploadBytes: pipeline.MaxBytes(),
		Version:        "test",
	})
	return &testServer{router: router, db: db}
}

func uploadRequest(t *testing.T, query, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/data/import"+query, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func decodeImport(t *testing.T, w *httptest.ResponseRecorder) services.ImportResult {
	t.Helper()
	var result services.ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

const sampleJSON = `[
  {"title": "Dune", "author": "Frank Herbert", "rating": 4.5, "reading_started": "2024-01-05T00:00:00Z", "is_favorite": true},
  {"title": "Solaris", "author": "Stanislaw Lem", "reading_started": "2024-03-01T00:00:00Z"},
  {"author": "Nobody"},
  {"title": "dune", "author": "FRANK HERBERT"}
]`

func TestDataController_ImportJSON(t *testing.T) {
	s := setupDataServer(t, 0)

	w := s.do(uploadRequest(t, "?format_type=json", "books.json", sampleJSON))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeImport(t, w)
	assert.Equal(t, "Import completed", result.Message)
	assert.Equal(t, 4, result.Stats.Total)
	assert.Equal(t, 2, result.Stats.Imported)
	assert.Equal(t, 1, result.Stats.SkippedDuplicates)
	assert.Equal(t, 1, result.Stats.Failed)
	require.Len(t, result.Stats.Errors, 2)
	assert.Equal(t, 3, result.Stats.Errors[0].Row)
	assert.Equal(t, "Missing required field: title", result.Stats.Errors[0].Error)
	assert.Equal(t, "Unknown", result.Stats.Errors[0].Data)
	assert.Equal(t, "Duplicate entry: book already exists", result.Stats.Errors[1].Error)
	assert.Contains(t, w.Body.String(), `"skipped_duplicates":1`)
}

func TestDataController_ImportRejections(t *testing.T) {
	s := setupDataServer(t, 64)

	tests := []struct {
		name     string
		query    string
		filename string
		content  string
		status   int
		message  string
	}{
		{"missing format", "", "books.csv", "title\nDune\n", http.StatusBadRequest, "format_type is required"},
		{"unknown format", "?format_type=xml", "books.xml", "<books/>", http.StatusBadRequest, "format_type must be one of: json csv"},
		{"missing file", "?format_type=csv", "", "", http.StatusBadRequest, "No file provided"},
		{"wrong extension", "?format_type=json", "books.csv", "[]", http.StatusBadRequest, "File extension must be .json for JSON format"},
		{"too large", "?format_type=csv", "books.csv", "title\n" + strings.Repeat("x", 100), http.StatusRequestEntityTooLarge, "File too large. Maximum size is 64 B"},
		{"not an array", "?format_type=json", "books.json", `{"title":"Dune"}`, http.StatusBadRequest, "JSON file must contain an array of books"},
		{"bad encoding", "?format_type=csv", "books.csv", "title\n\xff\xfe\n", http.StatusBadRequest, "File encoding error. Please use UTF-8 encoding"},
		{"empty csv", "?format_type=csv", "books.csv", "", http.StatusBadRequest, "CSV file is empty or has no headers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(uploadRequest(t, tt.query, tt.filename, tt.content))

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}

	count, err := books.NewRepository(s.db.DB).CountBooks(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDataController_ExportRoundTrip(t *testing.T) {
	s := setupDataServer(t, 0)
	require.Equal(t, http.StatusOK, s.do(uploadRequest(t, "?format_type=json", "books.json", sampleJSON)).Code)

	t.Run("json", func(t *testing.T) {
		w := s.get("/api/data/export/json")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Regexp(t, `^attachment; filename="books_export_\d{8}_\d{6}\.json"$`, w.Header().Get("Content-Disposition"))

		var exported []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exported))
		require.Len(t, exported, 2)
		assert.Equal(t, "Solaris", exported[0]["title"], "newest reading_started first")
		assert.Equal(t, "Dune", exported[1]["title"])
		assert.Equal(t, 0.0, exported[0]["rating"])
		assert.Nil(t, exported[0]["page_count"])
		assert.Regexp(t, `^book-`, exported[0]["id"])
	})

	t.Run("csv favorites only", func(t *testing.T) {
		w := s.get("/api/data/export/csv?include_favorites_only=true")

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.True(t, strings.HasPrefix(body, "\ufefftitle,author,"))
		assert.Contains(t, body, "Dune")
		assert.NotContains(t, body, "Solaris")
	})

	t.Run("reimport of export is all duplicates", func(t *testing.T) {
		exported := s.get("/api/data/export/csv").Body.String()

		w := s.do(uploadRequest(t, "?format_type=csv", "export.csv", exported))

		require.Equal(t, http.StatusOK, w.Code)
		result := decodeImport(t, w)
		assert.Equal(t, 0, result.Stats.Imported)
		assert.Equal(t, 2, result.Stats.SkippedDuplicates)
	})
}

func TestDataController_ExportEmpty(t *testing.T) {
	s := setupDataServer(t, 0)

	for _, path := range []string{"/api/data/export/json", "/api/data/export/csv?include_favorites_only=1"} {
		w := s.get(path)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"No books found to export"}`, w.Body.String())
	}
}

func TestDataController_ExportBadQuery(t *testing.T) {
	s := setupDataServer(t, 0)

	w := s.get("/api/data/export/json?include_favorites_only=maybe")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDataController_Template(t *testing.T) {
	s := setupDataServer(t, 0)

	w := s.get("/api/data/template/csv")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="books_import_template.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "The Great Gatsby")

	imported := s.do(uploadRequest(t, "?format_type=csv", "template.csv", w.Body.String()))
	require.Equal(t, http.StatusOK, imported.Code)
	assert.Equal(t, 2, decodeImport(t, imported).Stats.Imported)
}

func TestDataController_History(t *testing.T) {
	s := setupDataServer(t, 0)
	s.do(uploadRequest(t, "?format_type=json", "books.json", sampleJSON))
	s.get("/api/data/export/json")

	w := s.get("/api/data/history?limit=1")

	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data    []entities.AuditEvent `json:"data"`
		Total   int64                 `json:"total"`
		HasMore bool                  `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Data, 1)

	assert.Equal(t, http.StatusBadRequest, s.get("/api/data/history?limit=500").Code)
}

type failingImporter struct{}

func (failingImporter) Import(context.Context, uint, importers.Upload) (*services.ImportResult, error) {
	return nil, errors.New("failed to store imported books: disk I/O error")
}

func TestDataController_ImportStorageFailure(t *testing.T) {
	router := NewRouter(RouterConfig{Importer: failingImporter{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "?format_type=csv", "books.csv", "title\nDune\n"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
