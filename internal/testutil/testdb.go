// Package testutil provides a throwaway SQLite database with the catalog
// schema migrated, plus small fixture helpers.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalogadmin/internal/config"
	"catalogadmin/internal/db"
	"catalogadmin/internal/models"
)

// NewDB opens a fresh database file under t.TempDir and closes it on cleanup.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "catalog.db") + "?_pragma=busy_timeout(5000)"
	gdb, err := db.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return gdb
}

func FixtureCategory(t testing.TB, gdb *gorm.DB, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

func FixtureProduct(t testing.TB, gdb *gorm.DB, categoryID uint, name string, image *string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, CategoryID: categoryID, Image: image, IsActive: true}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func FixtureFile(t testing.TB, gdb *gorm.DB, productID uint, name, path string) *models.File {
	t.Helper()
	f := &models.File{Name: name, Path: path, ProductID: productID}
	require.NoError(t, gdb.Create(f).Error)
	return f
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
