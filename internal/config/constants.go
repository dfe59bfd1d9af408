package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./readinglog.db"

	// DefaultMaxFileSize caps import uploads at 50 MiB.
	DefaultMaxFileSize int64 = 50 * 1024 * 1024

	// DefaultErrorPreview is how many row errors an import response lists.
	DefaultErrorPreview = 10
)
