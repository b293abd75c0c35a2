package database

import (
	"path/filepath"
	"testing"

	"github.com/yi-nology/lab_portal/pkg/config"
)

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portal.db")
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", SQLite: config.SQLiteConfig{Path: path}}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("query: %v", err)
	}
}

func TestOpenRejectsMisconfiguration(t *testing.T) {
	cases := []config.DatabaseConfig{
		{Driver: "sqlite"},
		{Driver: "mysql"},
		{Driver: "postgres"},
		{Driver: "oracle"},
	}
	for _, cfg := range cases {
		if _, err := Open(cfg, nil); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}
