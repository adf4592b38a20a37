package database

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/hugh/recipe-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_SQLiteAndMigrate(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "recipes.db"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := Connect(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "tags", "ingredients", "recipes", "recipe_tags", "recipe_ingredients"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	user := models.User{Email: "db@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotZero(t, user.ID)
}
