package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *VersionedStore {
	t.Helper()

	s := NewVersionedStore(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	// Pin the clock so filenames are stable.
	s.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestStoreFirstWrite(t *testing.T) {
	s := testStore(t)

	path, created, err := s.Store("guide", []byte("# one\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("first write should create a file")
	}
	if filepath.Base(path) != "20250314_guide.md" {
		t.Errorf("unexpected filename: %s", filepath.Base(path))
	}
}

func TestStoreSkipsUnchangedContent(t *testing.T) {
	s := testStore(t)
	content := []byte("# same\n")

	first, _, err := s.Store("guide", content)
	if err != nil {
		t.Fatal(err)
	}

	second, created, err := s.Store("guide", content)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("unchanged content must not create a new version")
	}
	if second != first {
		t.Errorf("expected existing path %s, got %s", first, second)
	}

	files, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("expected a single file, got %v", files)
	}
}

func TestStoreVersionsChangedContent(t *testing.T) {
	s := testStore(t)

	if _, _, err := s.Store("guide", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	path, created, err := s.Store("guide", []byte("v2"))
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("changed content should create a new version")
	}
	if filepath.Base(path) != "20250314_guide_v2.md" {
		t.Errorf("unexpected filename: %s", filepath.Base(path))
	}

	// A third distinct write compares against v2, not v1.
	path, created, err = s.Store("guide", []byte("v3"))
	if err != nil {
		t.Fatal(err)
	}
	if !created || filepath.Base(path) != "20250314_guide_v3.md" {
		t.Errorf("unexpected result: created=%v path=%s", created, filepath.Base(path))
	}

	// Re-sending the newest content is a no-op even with older versions present.
	_, created, err = s.Store("guide", []byte("v3"))
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("newest version content must not be re-written")
	}
}

func TestStoreSeparateDates(t *testing.T) {
	s := testStore(t)

	if _, _, err := s.Store("guide", []byte("content")); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC) }
	path, created, err := s.Store("guide", []byte("content"))
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("a new date starts a fresh version chain")
	}
	if filepath.Base(path) != "20250315_guide.md" {
		t.Errorf("unexpected filename: %s", filepath.Base(path))
	}
}

func TestContains(t *testing.T) {
	s := testStore(t)

	if _, _, err := s.Store("guide", []byte("x")); err != nil {
		t.Fatal(err)
	}

	ok, err := s.Contains("20250314_guide.md")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected stored file to be found")
	}

	ok, err = s.Contains("nope.md")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("unexpected file found")
	}
}

func TestLatestIgnoresOtherStems(t *testing.T) {
	s := testStore(t)

	// A similarly named file must not be mistaken for a version.
	if err := os.WriteFile(filepath.Join(s.dir, "20250314_guidebook.md"), []byte("other"), 0644); err != nil {
		t.Fatal(err)
	}

	path, created, err := s.Store("guide", []byte("mine"))
	if err != nil {
		t.Fatal(err)
	}
	if !created || filepath.Base(path) != "20250314_guide.md" {
		t.Errorf("unexpected result: created=%v path=%s", created, filepath.Base(path))
	}
}
