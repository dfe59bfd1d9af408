// Package cli defines the readinglog command line: the HTTP server plus
// offline import, export and maintenance commands that run the same services
// directly against the configured database.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/entrypoint"
	"github.com/mrlokans/readinglog/internal/importers"
)

// NewApp builds the command tree. Running without a command starts the server.
func NewApp(version string) *cli.App {
	return &cli.App{
		Name:    "readinglog",
		Usage:   "Reading journal with JSON and CSV import/export",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "database path, overrides DATABASE_PATH",
			},
		},
		Action: func(c *cli.Context) error {
			return entrypoint.Run(loadConfig(c), version)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP server",
				Action: func(c *cli.Context) error {
					return entrypoint.Run(loadConfig(c), version)
				},
			},
			importCommand(),
			exportCommand(),
			templateCommand(),
			createUserCommand(),
			pruneCommand(),
		},
	}
}

func loadConfig(c *cli.Context) *config.Config {
	cfg := config.NewConfig()
	if path := c.String("db"); path != "" {
		cfg.Database.Path = path
	}
	return cfg
}

// withComponents opens storage for one offline command.
func withComponents(c *cli.Context, fn func(*entrypoint.Components) error) error {
	cfg := loadConfig(c)
	if err := cfg.Validate(); err != nil {
		return err
	}

	components, err := entrypoint.Build(cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	return fn(components)
}

func userFlag() cli.Flag {
	return &cli.UintFlag{
		Name:  "user",
		Usage: "owner user id (0 is the single-user library)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "format",
		Usage:    "json or csv",
		Required: true,
	}
}

func parseFormat(c *cli.Context) (entities.FileFormat, error) {
	format, ok := entities.ParseFileFormat(c.String("format"))
	if !ok {
		return "", fmt.Errorf("unsupported format %q, use json or csv", c.String("format"))
	}
	return format, nil
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "import books from a JSON or CSV file",
		Flags: []cli.Flag{
			userFlag(),
			formatFlag(),
			&cli.StringFlag{Name: "file", Usage: "file to import", Required: true},
		},
		Action: func(c *cli.Context) error {
			format, err := parseFormat(c)
			if err != nil {
				return err
			}

			f, err := os.Open(c.String("file"))
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			return withComponents(c, func(app *entrypoint.Components) error {
				userID := uint(c.Uint("user"))
				result, err := app.Imports.Import(c.Context, userID, importers.Upload{
					Filename: filepath.Base(f.Name()),
					Format:   format,
					Body:     f,
				})
				if err != nil {
					return err
				}

				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, string(out))

				if total, err := app.Books.CountBooks(c.Context, userID); err == nil {
					log.Printf("Library for user %d now holds %d books", userID, total)
				}
				return nil
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "export books to a JSON or CSV file",
		Flags: []cli.Flag{
			userFlag(),
			formatFlag(),
			&cli.BoolFlag{Name: "favorites-only", Usage: "only export favorite books"},
			&cli.StringFlag{Name: "out", Usage: "output path, defaults to the generated export name"},
		},
		Action: func(c *cli.Context) error {
			format, err := parseFormat(c)
			if err != nil {
				return err
			}

			return withComponents(c, func(app *entrypoint.Components) error {
				att, err := app.Exports.Export(c.Context, uint(c.Uint("user")), format, c.Bool("favorites-only"))
				if err != nil {
					return err
				}
				return writeOutput(c, c.String("out"), att.Filename, att.Body)
			})
		},
	}
}

func templateCommand() *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "write the CSV import template",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "output path, defaults to books_import_template.csv"},
		},
		Action: func(c *cli.Context) error {
			return withComponents(c, func(app *entrypoint.Components) error {
				att, err := app.Exports.Template()
				if err != nil {
					return err
				}
				return writeOutput(c, c.String("out"), att.Filename, att.Body)
			})
		},
	}
}

func createUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-user",
		Usage: "create a user and print its API token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
		},
		Action: func(c *cli.Context) error {
			return withComponents(c, func(app *entrypoint.Components) error {
				username := c.String("username")
				if existing, err := app.DB.GetUserByUsername(username); err == nil {
					return fmt.Errorf("user %q already exists (id %d)", existing.Username, existing.ID)
				}

				user, err := app.DB.CreateUser(username)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Created user %q (id %d)\nAPI token: %s\n", user.Username, user.ID, user.Token)
				return nil
			})
		},
	}
}

func pruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "delete audit history older than the retention period",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Usage: "retention in days, defaults to AUDIT_RETENTION_DAYS"},
		},
		Action: func(c *cli.Context) error {
			cfg := loadConfig(c)
			days := c.Int("days")
			if days <= 0 {
				days = cfg.Audit.RetentionDays
			}

			return withComponents(c, func(app *entrypoint.Components) error {
				deleted, err := app.Audit.Prune(time.Duration(days) * 24 * time.Hour)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Pruned %d audit events older than %d days\n", deleted, days)
				return nil
			})
		},
	}
}

func writeOutput(c *cli.Context, path, defaultName string, body []byte) error {
	if path == "" {
		path = defaultName
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s (%d bytes)\n", path, len(body))
	return nil
}

// Run executes the app and returns the process exit code.
func Run(ctx context.Context, version string, args []string) int {
	if err := NewApp(version).RunContext(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
