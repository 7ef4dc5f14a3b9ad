package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

// CreateFixture creates a fixture in the database.
func CreateFixture(t *testing.T, db *gorm.DB, model interface{}) {
	t.Helper()

	if err := db.Create(model).Error; err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
}

// CreateFixtures creates multiple fixtures in the database.
func CreateFixtures(t *testing.T, db *gorm.DB, models ...interface{}) {
	t.Helper()

	for _, model := range models {
		CreateFixture(t, db, model)
	}
}

// WriteFile writes content to name inside dir, creating parents, and
// returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture file: %v", err)
	}
	return p
}
