package imagestore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/meterwatch/meter-reading-api/internal/imagestore"
)

func TestSave_WritesImageFile(t *testing.T) {
	dir := t.TempDir()
	store := imagestore.NewStore(dir)

	id := uuid.New()
	data := []byte("raw image bytes")

	if err := store.Save(id, data); err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}

	saved, err := os.ReadFile(filepath.Join(dir, id.String()+".png"))
	if err != nil {
		t.Fatalf("Failed to read saved image: %v", err)
	}

	if string(saved) != "raw image bytes" {
		t.Errorf("Saved bytes do not match, got %q", saved)
	}
}

func TestSave_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	store := imagestore.NewStore(dir)

	if err := store.Save(uuid.New(), []byte("x")); err != nil {
		t.Fatalf("Failed to save into missing directory: %v", err)
	}
}

func TestFileName(t *testing.T) {
	id := uuid.MustParse("6f1b0c6a-8c1d-4e26-9d8e-000000000001")

	if got := imagestore.FileName(id); got != "6f1b0c6a-8c1d-4e26-9d8e-000000000001.png" {
		t.Errorf("Unexpected file name: %s", got)
	}
}
