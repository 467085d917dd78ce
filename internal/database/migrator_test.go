package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPendingSkipsAppliedAndResetFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "003_reset_all.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "004_dir.sql"), 0o755); err != nil {
		t.Fatal(err)
	}

	m := NewMigrator(nil, dir)
	got, err := m.pending(map[string]bool{"002_b.sql": true})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "001_a.sql" {
		t.Errorf("pending = %v", got)
	}
}

func TestPendingMissingDirectory(t *testing.T) {
	m := NewMigrator(nil, filepath.Join(t.TempDir(), "absent"))
	if _, err := m.pending(nil); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRepositoryMigrationsAreOrdered(t *testing.T) {
	m := NewMigrator(nil, "../../migrations")
	got, err := m.pending(map[string]bool{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[0] != "001_storage_slots.sql" {
		t.Errorf("migrations = %v", got)
	}
}
