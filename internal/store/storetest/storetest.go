// Package storetest opens a migrated registration store on a throwaway
// sqlite file for tests.
package storetest

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farellandr/thm-registration/internal/store"
)

func New(t testing.TB) *store.RegistrationStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "registrations.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	s := store.NewRegistrationStore(db)
	if err := s.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
