// Package database provides the SQLite storage layer.
//
//	database/
//	├── database.go      # Connection setup, migrations, users
//	├── books/           # Title/author projection, bulk insert, export listing
//	└── audit/           # Import/export audit trail
//
// Each sub-package exposes a Repository built from the shared *gorm.DB:
//
//	db, err := database.NewDatabase("./readinglog.db")
//	booksRepo := books.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
package database
