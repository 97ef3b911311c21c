package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadRejectsMissingColumns(t *testing.T) {
	path := writeCatalog(t, "Type,Material,Size\nBolt,Steel,M8\n")

	if _, err := Load(nil, path); err == nil {
		t.Fatal("Expected an error for a catalog missing required columns")
	}
}

func TestLoadAcceptsHeaderOnlyCatalog(t *testing.T) {
	path := writeCatalog(t, "Type,Material,Size,Length,Coating,Thread Type,Description\n")

	n, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Header-only catalog should load cleanly: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 rows, got %d", n)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(nil, filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("Expected an error for a missing catalog file")
	}
}
