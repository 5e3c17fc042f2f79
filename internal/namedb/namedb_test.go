package namedb

import (
	"path/filepath"
	"testing"
)

func TestOpenMissingFileIsEmptyNotError(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "missing.zip"))
	if err != nil {
		t.Fatal(err)
	}
	if len(db.RoutineNames) != 0 || len(db.FieldNames) != 0 {
		t.Fatalf("expected empty maps for a missing db, got %+v / %+v", db.RoutineNames, db.FieldNames)
	}
}

func TestSaveThenOpenRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.zip")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SetRoutineName("Lcom/foo/Bar;.baz()V", "onClick"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetFieldName("com/foo/Bar/m_field0", "counter"); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if name, ok := reopened.RoutineName("Lcom/foo/Bar;.baz()V"); !ok || name != "onClick" {
		t.Errorf("RoutineName = %q, %v, want onClick, true", name, ok)
	}
	if name, ok := reopened.FieldName("com/foo/Bar/m_field0"); !ok || name != "counter" {
		t.Errorf("FieldName = %q, %v, want counter, true", name, ok)
	}
}

func TestUnknownAccessorNotFound(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "names.zip"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := db.RoutineName("nope"); ok {
		t.Fatal("expected ok=false for an unrecorded accessor")
	}
}
