package tool

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestBuildTransferItem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case-001.json")
	if err := os.WriteFile(path, []byte(`{"case":"001"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	item, err := BuildTransferItem(path)
	if err != nil {
		t.Fatalf("build item: %v", err)
	}
	if item.Name != "case-001.json" || item.ID != "case-001.json" {
		t.Errorf("unexpected name/id: %+v", item)
	}
	if item.MimeType != "application/json" {
		t.Errorf("expected application/json, got %q", item.MimeType)
	}
	if item.Size != 14 {
		t.Errorf("expected size 14, got %d", item.Size)
	}
	rc, err := item.Payload.Open()
	if err != nil {
		t.Fatalf("open payload: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != `{"case":"001"}` {
		t.Errorf("unexpected payload: %s", data)
	}
}

func TestBuildTransferItemRejectsDirectory(t *testing.T) {
	if _, err := BuildTransferItem(t.TempDir()); err == nil {
		t.Error("expected error for directory")
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, p := range []string{filepath.Join(dir, "a.txt"), filepath.Join(nested, "b.txt")} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	single := filepath.Join(t.TempDir(), "c.txt")
	if err := os.WriteFile(single, []byte("y"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	files, err := ExpandPaths([]string{dir, single})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("expected 3 files, got %d: %v", len(files), files)
	}
}

func TestDetectMimeTypeSniffsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.unknownext")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := DetectMimeType(path); got != "image/png" {
		t.Errorf("expected image/png, got %q", got)
	}
}
