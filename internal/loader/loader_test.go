package loader

import (
	"fmt"
	"testing"

	"codtool/internal/codec"
	"codtool/internal/codfmt"
)

func constHandle(c *Class) *Handle[Class] {
	return NewHandle("", "", func(string, string) (*Class, error) { return c, nil })
}

func tInt() *codec.TypeToken  { return &codec.TypeToken{Code: codec.CodeInt, Primitive: "int"} }
func tLong() *codec.TypeToken { return &codec.TypeToken{Code: codec.CodeLong, Primitive: "long"} }

func TestClassFieldByOffsetAcrossSuperclasses(t *testing.T) {
	base := &Class{
		Name: "Base",
		Fields: []*Field{
			{Name: "b_wide", Type: tLong()},
			{Name: "b_narrow", Type: tInt()},
		},
	}
	leaf := &Class{
		Name:       "Leaf",
		Superclass: constHandle(base),
		Fields: []*Field{
			{Name: "l_narrow", Type: tInt()},
		},
	}

	// flattened table: b_wide, b_wide (2 slots), b_narrow, l_narrow
	tests := []struct {
		offset   int
		wantName string
		wantOK   bool
	}{
		{0, "b_wide", true},
		{1, "b_wide", true},
		{2, "b_narrow", true},
		{3, "l_narrow", true},
		{4, "", false},
		{-1, "", false},
	}
	for _, tt := range tests {
		f, ok := leaf.FieldByOffset(tt.offset)
		if ok != tt.wantOK {
			t.Errorf("offset %d: ok = %v, want %v", tt.offset, ok, tt.wantOK)
			continue
		}
		if ok && f.Name != tt.wantName {
			t.Errorf("offset %d: name = %q, want %q", tt.offset, f.Name, tt.wantName)
		}
	}
}

func TestClassFieldByOffsetUnresolvableSuperclassTruncates(t *testing.T) {
	broken := NewHandle("", "", func(string, string) (*Class, error) { return nil, fmt.Errorf("not found") })
	leaf := &Class{
		Name:       "Leaf",
		Superclass: broken,
		Fields:     []*Field{{Name: "only", Type: tInt()}},
	}
	f, ok := leaf.FieldByOffset(0)
	if !ok || f.Name != "only" {
		t.Fatalf("expected to fall back to leaf's own fields, got %+v, %v", f, ok)
	}
	if _, ok := leaf.FieldByOffset(1); ok {
		t.Error("offset 1 should be out of range once the superclass fails to resolve")
	}
}

// newTestModule builds a Module with just enough of a DataSection for
// resolveClassID's local-index path (mod_index 0) to find a single class at
// offset 0, without going through a real .cod file parse.
func newTestModule(name string) *Module {
	return &Module{
		Name: name,
		Raw: &codfmt.RawModule{
			DataSection: &codfmt.DataSection{
				ClassDefs:    []*codfmt.ClassDef{{}},
				ClassOffsets: []uint16{0},
			},
		},
		classesByOffset: map[uint16]*Class{},
		classesByName:   map[string]*Class{},
	}
}

func TestModuleResolverFieldTypeAndRoutineSignature(t *testing.T) {
	l := New()
	m := newTestModule("main")

	callee := &Class{
		Module:       m,
		Name:         "Target",
		StaticFields: []*Field{{Name: "counter", Static: true, Type: tInt()}},
		Routines: []*Routine{
			{Name: "run", ParamTypes: codec.TypeList{tInt()}, ReturnType: tLong()},
		},
	}
	m.classesByOffset[0] = callee
	m.classesByName["Target"] = callee
	l.moduleByName[m.Name] = m

	r := NewModuleResolver(l, m)

	ft, ok := r.FieldType(0, 0, 0)
	if !ok || ft.Primitive != "int" {
		t.Fatalf("FieldType = %+v, %v", ft, ok)
	}
	if _, ok := r.FieldType(0, 0, 5); ok {
		t.Error("expected out-of-range member index to fail")
	}

	params, ret, ok := r.RoutineSignature(0, 0, 0)
	if !ok || len(params) != 1 || ret.Primitive != "long" {
		t.Fatalf("RoutineSignature = %v, %+v, %v", params, ret, ok)
	}

	name, ok := r.RoutineName(0, 0, 0)
	if !ok || name != "Target.run" {
		t.Fatalf("RoutineName = %q, %v", name, ok)
	}

	ct, ok := r.ClassType(0, 0)
	if !ok || ct.Resolved == nil || ct.Resolved.Name != "Target" {
		t.Fatalf("ClassType = %+v, %v", ct, ok)
	}
}

func TestModuleResolverFieldTypeByOffsetCrossClass(t *testing.T) {
	l := New()
	m := newTestModule("main")

	receiverClass := &Class{
		Module: m,
		Name:   "Holder",
		Fields: []*Field{{Name: "value", Type: tInt()}},
	}
	m.classesByOffset[0] = receiverClass
	m.classesByName["Holder"] = receiverClass
	l.moduleByName[m.Name] = m

	r := NewModuleResolver(l, m)
	receiver := &codec.TypeToken{IsObject: true, Code: codec.CodeClass7, Resolved: &codec.ResolvedClass{Name: "Holder"}}

	_, ft, ok := r.FieldTypeByOffset(receiver, 0)
	if !ok || ft.Primitive != "int" {
		t.Fatalf("FieldTypeByOffset = %+v, %v", ft, ok)
	}
	if _, _, ok := r.FieldTypeByOffset(receiver, 9); ok {
		t.Error("expected out-of-range offset to fail")
	}
	if _, _, ok := r.FieldTypeByOffset(&codec.TypeToken{}, 0); ok {
		t.Error("expected an unresolved receiver to fail")
	}
}
