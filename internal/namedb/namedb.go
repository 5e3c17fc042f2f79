// Package namedb reads and writes the routine/field renaming database: a
// small ZIP container holding two JSON-encoded name maps, used to recover
// human-readable method and field names a resolver has chosen to assign
// (from a symbol map, a previous session's manual annotation, or similar)
// in place of a bare accessor name.
package namedb

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	routineEntry = "routine_names"
	fieldEntry   = "field_names"
)

// NameDB holds the two renaming maps, keyed by the same accessor string the
// original format address renaming by (a routine's JTS signature, or
// "<class>/<field>" for fields).
type NameDB struct {
	path         string
	RoutineNames map[string]string
	FieldNames   map[string]string
}

// Open reads db at path. A missing file is not an error: Open returns an
// empty, writable NameDB that Save will create on first write, mirroring
// resolve.py's open_name_db behavior when name_db_path names a file that
// doesn't exist yet.
func Open(path string) (*NameDB, error) {
	db := &NameDB{path: path, RoutineNames: map[string]string{}, FieldNames: map[string]string{}}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("namedb: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("namedb: stat %s: %w", path, err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("namedb: open zip %s: %w", path, err)
	}
	if err := readEntry(zr, routineEntry, &db.RoutineNames); err != nil {
		return nil, err
	}
	if err := readEntry(zr, fieldEntry, &db.FieldNames); err != nil {
		return nil, err
	}
	return db, nil
}

func readEntry(zr *zip.Reader, name string, out *map[string]string) error {
	rc, err := zr.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil // entry absent: leave the map empty rather than failing
	}
	if err != nil {
		return fmt.Errorf("namedb: open entry %s: %w", name, err)
	}
	defer rc.Close()
	return json.NewDecoder(rc).Decode(out)
}

// Save writes both maps back to the path Open was given, creating the file
// if it doesn't exist yet.
func (db *NameDB) Save() error {
	f, err := os.Create(db.path)
	if err != nil {
		return fmt.Errorf("namedb: create %s: %w", db.path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	if err := writeEntry(zw, routineEntry, db.RoutineNames); err != nil {
		return err
	}
	if err := writeEntry(zw, fieldEntry, db.FieldNames); err != nil {
		return err
	}
	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, m map[string]string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("namedb: create entry %s: %w", name, err)
	}
	if err := json.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("namedb: encode entry %s: %w", name, err)
	}
	return nil
}

// RoutineName returns the renamed form of a routine identified by its JTS
// signature accessor string, or ok=false if no rename has been recorded.
func (db *NameDB) RoutineName(accessor string) (string, bool) {
	name, ok := db.RoutineNames[accessor]
	return name, ok
}

// FieldName returns the renamed form of a "<class>/<field>" accessor
// string, or ok=false if no rename has been recorded.
func (db *NameDB) FieldName(accessor string) (string, bool) {
	name, ok := db.FieldNames[accessor]
	return name, ok
}

// SetRoutineName records a rename and persists it immediately, matching
// resolve.py's rename_routine, which saves on every call rather than
// batching.
func (db *NameDB) SetRoutineName(accessor, name string) error {
	db.RoutineNames[accessor] = name
	return db.Save()
}

// SetFieldName records a rename and persists it immediately.
func (db *NameDB) SetFieldName(accessor, name string) error {
	db.FieldNames[accessor] = name
	return db.Save()
}
