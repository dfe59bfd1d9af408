// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - importers.KeySource: existing (title, author) pairs for duplicate seeding (internal/importers/pipeline.go)
//   - services.BookWriter / services.BookLister: bulk insert and export queries (internal/services/interfaces.go)
//   - auth.TokenStore: API token lookup (internal/auth/middleware.go)
//
// ## Audit Interfaces
//
//   - services.ImportAuditor / services.ExportAuditor: best-effort activity records
//   - http.HistoryReader: the history endpoint
//   - tasks.AuditPruner: retention
//
// # Adding a New File Format
//
//  1. Add the FileFormat constant in internal/entities/file_format.go
//     with its extension and content type.
//
//  2. Decode it into importers.RawRow values in internal/importers/formats.go
//     and describe its dialect in internal/importers/normalizer.go:
//
//     var XMLDialect = Dialect{
//         Format:      entities.FileFormatXML,
//         DateLayouts: isoDateTimeLayouts,
//         Policies:    map[string]FallbackPolicy{"rating": FallbackReject},
//     }
//
//  3. Encode it in internal/exporters/serializer.go and add the
//     export route in internal/http/data.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
