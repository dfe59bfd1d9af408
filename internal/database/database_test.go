package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbPath, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabase_Migrations(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"users", "books", "audit_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestDatabase_Ping(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, db.Ping(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestDatabase_Users(t *testing.T) {
	db := setupTestDB(t)

	user, err := db.CreateUser("reader")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Len(t, user.Token, 64)

	t.Run("lookup by token", func(t *testing.T) {
		found, err := db.GetUserByToken(user.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := db.GetUserByToken("nope")
		assert.Error(t, err)
	})

	t.Run("lookup by username", func(t *testing.T) {
		found, err := db.GetUserByUsername("reader")
		require.NoError(t, err)
		assert.Equal(t, user.Token, found.Token)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := db.CreateUser("reader")
		assert.Error(t, err)
	})
}
