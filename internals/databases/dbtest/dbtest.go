// Package dbtest opens an isolated in-memory SQLite database with the full schema.
package dbtest

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "csesociety_backend/internals/databases"
)

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]+`)

func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := reUnsafe.ReplaceAllString(t.Name(), "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory db alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}
