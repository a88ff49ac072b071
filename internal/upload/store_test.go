package upload

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/estately/estately/internal/infrastructure/logger"
)

func newTestStore(t *testing.T, maxMB int) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads", maxMB, logger.NewLogger("error"))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return store
}

func TestSaveReturnsURL(t *testing.T) {
	store := newTestStore(t, 1)

	url, err := store.Save("receipt.png", strings.NewReader("fake png bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/") {
		t.Errorf("url = %q", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("url missing extension: %q", url)
	}
	if strings.Contains(url, "receipt") {
		t.Errorf("client filename leaked into url: %q", url)
	}
}

func TestSaveRejectsUnsupportedExtension(t *testing.T) {
	store := newTestStore(t, 1)

	if _, err := store.Save("malware.exe", strings.NewReader("nope")); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store := newTestStore(t, 1)

	big := strings.NewReader(strings.Repeat("x", 2<<20))
	if _, err := store.Save("big.pdf", big); err == nil {
		t.Fatal("expected error for oversized file")
	}
}

func TestRemoveDeletesSavedFile(t *testing.T) {
	store := newTestStore(t, 1)

	url, err := store.Save("receipt.png", strings.NewReader("fake png bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	onDisk := filepath.Join(store.root, path.Base(url))
	if _, err := os.Stat(onDisk); err != nil {
		t.Fatalf("saved file missing before Remove: %v", err)
	}

	if err := store.Remove(url); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Errorf("file still on disk after Remove: %v", err)
	}
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	store := newTestStore(t, 1)

	if err := store.Remove("http://localhost:8080/uploads/gone.png"); err != nil {
		t.Errorf("Remove of missing file: %v", err)
	}
}

func TestRemoveRejectsBareURL(t *testing.T) {
	store := newTestStore(t, 1)

	if err := store.Remove("/"); err == nil {
		t.Error("expected error for url with no file segment")
	}
}
