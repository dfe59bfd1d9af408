package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "archive")
	archive := NewArchive(dir)

	t.Run("Save creates directory and file", func(t *testing.T) {
		name, err := archive.Save([]byte("payload"), "json")
		require.NoError(t, err)
		assert.Equal(t, ".json", filepath.Ext(name))

		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("Save generates unique names", func(t *testing.T) {
		first, err := archive.Save([]byte("a"), "csv")
		require.NoError(t, err)
		second, err := archive.Save([]byte("b"), "csv")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("Remove deletes file", func(t *testing.T) {
		name, err := archive.Save([]byte("x"), "csv")
		require.NoError(t, err)

		require.NoError(t, archive.Remove(name))
		_, err = os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Remove missing file is not an error", func(t *testing.T) {
		assert.NoError(t, archive.Remove("does-not-exist.csv"))
	})

	t.Run("Remove refuses paths", func(t *testing.T) {
		assert.Error(t, archive.Remove("../escape.csv"))
		assert.Error(t, archive.Remove(""))
	})
}
