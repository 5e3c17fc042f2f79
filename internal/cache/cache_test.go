package cache

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestDirStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.ReadOnly() {
		t.Fatal("directory store should be writable")
	}

	key := ModuleIndexKey("foo")
	if err := s.Put(key, []byte(`{"name":"foo"}`)); err != nil {
		t.Fatal(err)
	}
	data, ok, err := s.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get(%q) = %q, %v, %v", key, data, ok, err)
	}
	if string(data) != `{"name":"foo"}` {
		t.Errorf("data = %s, want the stored JSON", data)
	}

	keys, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != key {
		t.Errorf("List() = %v, want [%s]", keys, key)
	}
}

func TestDirStoreMissingKey(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	_, ok, err := s.Get("nonexistent.cod.db")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected ok=false for a missing key")
	}
}

func TestDirStoreNestedClassKey(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	key := ClassKey("net_rim_os", "net/rim/device/api/ui/Field")
	if err := s.Put(key, []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(key); !ok {
		t.Fatal("expected to read back the nested class cache entry")
	}
}

func TestZipStoreIsReadOnly(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "archive.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("foo.cod.db")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(`{"name":"foo"}`)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s, err := Open(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if !s.ReadOnly() {
		t.Fatal("zip-backed store should be read-only")
	}
	data, ok, err := s.Get("foo.cod.db")
	if err != nil || !ok {
		t.Fatalf("Get = %q, %v, %v", data, ok, err)
	}
	if string(data) != `{"name":"foo"}` {
		t.Errorf("data = %s, want the zip entry contents", data)
	}
	if err := s.Put("bar.cod.db", []byte("x")); err != ErrReadOnly {
		t.Errorf("Put on a zip store = %v, want ErrReadOnly", err)
	}
}

func TestOpenDetectsZipRegardlessOfExtension(t *testing.T) {
	dir := t.TempDir()
	// no ".zip" suffix at all: detection must be by magic, not extension.
	path := filepath.Join(dir, "cacheroot")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if !s.ReadOnly() {
		t.Fatal("expected the extensionless archive to be detected as a zip store")
	}
}
