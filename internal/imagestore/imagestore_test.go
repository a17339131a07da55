package imagestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndPath(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	name, err := s.Save([]byte("fake image bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Errorf("name = %q, want .jpg suffix", name)
	}

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Errorf("content mismatch: %q", data)
	}
}

func TestSaveUniqueNames(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	a, _ := s.Save([]byte("one"), "image/png")
	b, _ := s.Save([]byte("two"), "image/png")
	if a == b {
		t.Errorf("expected unique names, got %q twice", a)
	}
}

func TestPathIgnoresTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	got := s.Path("../../etc/passwd")
	if got != filepath.Join(dir, "passwd") {
		t.Errorf("Path = %q, escapes upload dir", got)
	}
}

func TestRemoveMissingFile(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Remove("nope.png"); err != nil {
		t.Errorf("remove missing: %v", err)
	}
}
