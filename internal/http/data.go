package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/importers"
	"github.com/mrlokans/readinglog/internal/services"
	"github.com/mrlokans/readinglog/internal/validation"
)

// Importer runs an upload through the import pipeline.
type Importer interface {
	Import(ctx context.Context, userID uint, upload importers.Upload) (*services.ImportResult, error)
}

// Exporter produces export documents and the import template.
type Exporter interface {
	Export(ctx context.Context, userID uint, format entities.FileFormat, favoritesOnly bool) (*services.Attachment, error)
	Template() (*services.Attachment, error)
}

// HistoryReader lists a user's import and export events.
type HistoryReader interface {
	GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type importQuery struct {
	FormatType string `form:"format_type" validate:"required,oneof=json csv"`
}

type exportQuery struct {
	IncludeFavoritesOnly bool `form:"include_favorites_only"`
}

type historyQuery struct {
	Limit  int `form:"limit" validate:"gte=1,lte=100"`
	Offset int `form:"offset" validate:"gte=0"`
}

// DataController serves book import, export, template and history endpoints.
type DataController struct {
	importer  Importer
	exporter  Exporter
	history   HistoryReader
	validator *validation.Validator
}

// NewDataController creates the controller. history may be nil, in which
// case the history endpoint reports an empty list.
func NewDataController(importer Importer, exporter Exporter, history HistoryReader) *DataController {
	return &DataController{
		importer:  importer,
		exporter:  exporter,
		history:   history,
		validator: validation.New(),
	}
}

// RegisterRoutes mounts the data endpoints under /api/data.
func (dc *DataController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/data")
	group.POST("/import", dc.Import)
	group.GET("/export/json", dc.exportHandler(entities.FileFormatJSON))
	group.GET("/export/csv", dc.exportHandler(entities.FileFormatCSV))
	group.GET("/template/csv", dc.Template)
	group.GET("/history", dc.History)
}

// Import accepts a multipart upload in field "file".
// POST /api/data/import?format_type=json|csv
func (dc *DataController) Import(c *gin.Context) {
	var q importQuery
	if !dc.bindQuery(c, &q) {
		return
	}
	format, _ := entities.ParseFileFormat(q.FormatType)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "No file provided")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open upload")
		return
	}
	defer file.Close()

	result, err := dc.importer.Import(c.Request.Context(), GetUserID(c), importers.Upload{
		Filename: fileHeader.Filename,
		Format:   format,
		Body:     file,
	})
	if err != nil {
		var fileErr *importers.FileError
		if errors.As(err, &fileErr) {
			respondError(c, fileErrorStatus(fileErr), fileErr.Message)
			return
		}
		respondInternalError(c, err, "import books")
		return
	}

	c.JSON(http.StatusOK, result)
}

func fileErrorStatus(err *importers.FileError) int {
	if errors.Is(err, importers.ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// GET /api/data/export/json and /api/data/export/csv
func (dc *DataController) exportHandler(format entities.FileFormat) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q exportQuery
		if !dc.bindQuery(c, &q) {
			return
		}

		att, err := dc.exporter.Export(c.Request.Context(), GetUserID(c), format, q.IncludeFavoritesOnly)
		if errors.Is(err, services.ErrNothingToExport) {
			respondNotFound(c, "No books found to export")
			return
		}
		if err != nil {
			respondInternalError(c, err, "export books as "+format.Label())
			return
		}

		respondAttachment(c, att)
	}
}

// Template returns the sample CSV import file.
// GET /api/data/template/csv
func (dc *DataController) Template(c *gin.Context) {
	att, err := dc.exporter.Template()
	if err != nil {
		respondInternalError(c, err, "render import template")
		return
	}
	respondAttachment(c, att)
}

// History lists the caller's recent imports and exports.
// GET /api/data/history?limit=25&offset=0
func (dc *DataController) History(c *gin.Context) {
	q := historyQuery{Limit: 25}
	if !dc.bindQuery(c, &q) {
		return
	}

	events := []entities.AuditEvent{}
	var total int64
	if dc.history != nil {
		found, count, err := dc.history.GetEvents(GetUserID(c), q.Limit, q.Offset)
		if err != nil {
			respondInternalError(c, err, "load import history")
			return
		}
		if found != nil {
			events = found
		}
		total = count
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   q.Limit,
		Offset:  q.Offset,
		HasMore: int64(q.Offset+len(events)) < total,
	})
}

// bindQuery decodes query parameters into dst and validates them, replying
// 400 on failure.
func (dc *DataController) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		respondBadRequest(c, "invalid query parameters: "+err.Error())
		return false
	}
	if err := dc.validator.Validate(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Details: verr.Fields})
			return false
		}
		respondBadRequest(c, err.Error())
		return false
	}
	return true
}
