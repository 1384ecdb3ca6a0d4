package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/LucasGeos/GKG/internal/apperr"
	"github.com/LucasGeos/GKG/internal/checksum"
)

func tempData(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempData(t)
	content := []byte(`{"name":"route"}`)
	if err := s.Write("inbox/route.json", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("inbox/route.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissing(t *testing.T) {
	s := tempData(t)
	_, err := s.Read("inbox/nope.json")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := s.Delete("inbox/nope.json"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempData(t)
	_ = s.Write("selections/a.selection.json", []byte("{}"))
	if err := s.Delete("selections/a.selection.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("selections/a.selection.json"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestMoveToRejected(t *testing.T) {
	s := tempData(t)
	_ = s.Write("inbox/bad.yaml", []byte("data"))
	if err := s.Move("inbox/bad.yaml", "rejected/bad.yaml"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("rejected/bad.yaml")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("inbox/bad.yaml"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestList_OnlyJobDocuments(t *testing.T) {
	s := tempData(t)
	_ = s.Write("inbox/a.json", []byte("a"))
	_ = s.Write("inbox/sub/b.yml", []byte("b"))
	_ = s.Write("inbox/c.yaml", []byte("c"))
	_ = s.Write("inbox/readme.txt", []byte("not a job"))
	_ = s.Write("inbox/a.selection.json", []byte("output"))
	_ = s.Write("inbox/.hidden.json", []byte("tmp"))
	_ = s.Write("selections/x.json", []byte("elsewhere"))

	items, err := s.List("inbox")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(items), items)
	}
	byPath := make(map[string]string)
	for _, it := range items {
		byPath[it.Path] = it.Checksum
	}
	if got, want := byPath["inbox/sub/b.yml"], checksum.Sum([]byte("b")); got != want {
		t.Errorf("checksum(inbox/sub/b.yml) = %q, want %q", got, want)
	}
}

func TestList_MissingDir(t *testing.T) {
	s := tempData(t)
	items, err := s.List("inbox")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %v, want none", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempData(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.json",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestRel(t *testing.T) {
	s := tempData(t)
	rel, err := s.Rel(filepath.Join(s.Root(), "inbox", "a.json"))
	if err != nil {
		t.Fatalf("Rel: %v", err)
	}
	if rel != "inbox/a.json" {
		t.Errorf("rel = %q, want %q", rel, "inbox/a.json")
	}
	if _, err := s.Rel(filepath.Dir(s.Root())); err == nil {
		t.Error("expected error for path outside root")
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempData(t)
	_ = s.Write("selections/r.selection.json", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("selections/r.selection.json", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("selections/r.selection.json")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, "selections", ".gkg-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "gkg-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
