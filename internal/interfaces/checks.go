package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/auth"
	"github.com/mrlokans/readinglog/internal/database"
	"github.com/mrlokans/readinglog/internal/database/books"
	"github.com/mrlokans/readinglog/internal/http"
	"github.com/mrlokans/readinglog/internal/importers"
	"github.com/mrlokans/readinglog/internal/scheduler"
	"github.com/mrlokans/readinglog/internal/services"
	"github.com/mrlokans/readinglog/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ importers.KeySource = (*books.Repository)(nil)
var _ services.BookWriter = (*books.Repository)(nil)
var _ services.BookLister = (*books.Repository)(nil)
var _ auth.TokenStore = (*database.Database)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ services.ImportAuditor = (*audit.Service)(nil)
var _ services.ExportAuditor = (*audit.Service)(nil)
var _ http.HistoryReader = (*audit.Service)(nil)
var _ tasks.AuditPruner = (*audit.Service)(nil)

// =============================================================================
// HTTP Layer
// =============================================================================

var _ http.Importer = (*services.ImportService)(nil)
var _ http.Exporter = (*services.ExportService)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ scheduler.Enqueuer = (*tasks.Client)(nil)
