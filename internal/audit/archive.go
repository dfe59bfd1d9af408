package audit

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Archive keeps raw copies of uploaded import files.
type Archive struct {
	Dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{Dir: dir}
}

// Save writes data to a file named with a random UUID and the given
// extension, returning the file name relative to Dir.
func (a *Archive) Save(data []byte, ext string) (string, error) {
	if err := a.ensureDir(); err != nil {
		return "", fmt.Errorf("failed to ensure archive directory: %w", err)
	}

	filename := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	path := filepath.Join(a.Dir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}

	log.Printf("Archived upload: %s (%d bytes)", path, len(data))
	return filename, nil
}

// Remove deletes an archived file. A missing file is not an error.
func (a *Archive) Remove(filename string) error {
	if filename == "" || filepath.Base(filename) != filename {
		return fmt.Errorf("invalid archive file name %q", filename)
	}
	err := os.Remove(filepath.Join(a.Dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (a *Archive) ensureDir() error {
	if _, err := os.Stat(a.Dir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	return nil
}
