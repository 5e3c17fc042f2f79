package codfmt

import (
	"fmt"

	"codtool/internal/bytestream"
	"codtool/internal/codec"
)

// ModuleRef is one (name, version) string-pool offset pair naming a sibling
// or imported module.
type ModuleRef struct {
	NameOffset    uint16
	VersionOffset uint16
}

// MemberFixup normalizes the two on-disk member-fixup shapes (short
// MemberRef with a single type pool reference, long LongMemberRef with
// separate param/return type references) into one view. ReturnType and
// ParamTypes are zero when the table used the short form; Type is zero when
// it used the long form.
type MemberFixup struct {
	ClassRef   uint16
	Name       uint16
	Type       uint16
	ParamTypes uint16
	ReturnType uint16
	Offsets    []uint16
}

// LocalFieldFixup is a within-class field fixup (class/field index pair).
type LocalFieldFixup struct {
	ClassIndex uint8
	FieldIndex uint8
	Offsets    []uint16
}

// ClassRefFixup is a fixup into the class_refs pool.
type ClassRefFixup struct {
	ClassRef uint16
	Offsets  []uint16
}

// ModCodeFixup patches a single raw byte at each offset (module-code
// relocations, e.g. baked-in module index constants).
type ModCodeFixup struct {
	Value   uint8
	Offsets []uint16
}

// DataSection is the fully parsed data section of a module.
type DataSection struct {
	Start int
	Raw   []byte

	Header *DataHeader

	ClassOffsets []uint16
	Modules      []ModuleRef
	Siblings     []uint16
	Aliases      []uint16
	Exports      []ExportedData

	StaticData []StaticData
	ClassDefs  []*ClassDef

	IfaceMethodRefs []IfaceMethodRef
	ClassRefs       []ClassRef

	RoutineFixups        []MemberFixup
	StaticRoutineFixups  []MemberFixup
	VirtualRoutineFixups []MemberFixup
	ClassRefFixups       []ClassRefFixup
	FieldFixups          []MemberFixup
	LocalFieldFixups     []LocalFieldFixup
	StaticFieldFixups    []MemberFixup
	ModCodeFixups        []ModCodeFixup

	ModuleName    string
	ModuleVersion string
}

// ParseDataSection reads the data section. r must be positioned at its
// start; dataSize is the module header's data_size field.
func ParseDataSection(r *bytestream.Reader, dataSize int) (*DataSection, error) {
	ds := &DataSection{Start: r.Tell()}
	dsStart := ds.Start

	r.Mark()
	raw, err := r.Bytes(dataSize)
	r.Revert()
	if err != nil {
		return nil, fmt.Errorf("codfmt: data section raw copy: %w", err)
	}
	ds.Raw = raw

	ds.Header, err = ParseDataHeader(r)
	if err != nil {
		return nil, err
	}
	h := ds.Header

	if ds.ClassOffsets, err = bytestream.ReadFixed(r, int(h.NumClasses), (*bytestream.Reader).U16LE); err != nil {
		return nil, fmt.Errorf("codfmt: data section class offsets: %w", err)
	}

	names, err := bytestream.ReadFixed(r, int(h.NumMods), (*bytestream.Reader).U16LE)
	if err != nil {
		return nil, fmt.Errorf("codfmt: data section module names: %w", err)
	}
	versions, err := bytestream.ReadFixed(r, int(h.NumMods), (*bytestream.Reader).U16LE)
	if err != nil {
		return nil, fmt.Errorf("codfmt: data section module versions: %w", err)
	}
	ds.Modules = make([]ModuleRef, len(names))
	for i := range names {
		ds.Modules[i] = ModuleRef{NameOffset: names[i], VersionOffset: versions[i]}
	}

	if ds.Siblings, err = bytestream.ReadBounded(r, dsStart+int(h.OffAliases), (*bytestream.Reader).U16LE); err != nil {
		return nil, fmt.Errorf("codfmt: data section siblings: %w", err)
	}
	if ds.Aliases, err = bytestream.ReadBounded(r, dsStart+int(h.OffExports), (*bytestream.Reader).U16LE); err != nil {
		return nil, fmt.Errorf("codfmt: data section aliases: %w", err)
	}
	if ds.Exports, err = bytestream.ReadBounded(r, dsStart+int(h.OffDataPool), parseExportedData); err != nil {
		return nil, fmt.Errorf("codfmt: data section exports: %w", err)
	}

	if err := r.Seek(dsStart + int(h.OffStaticData)); err != nil {
		return nil, fmt.Errorf("codfmt: data section seek static data: %w", err)
	}
	if ds.StaticData, err = bytestream.ReadBounded(r, dsStart+int(h.OffClassDefs), parseStaticData); err != nil {
		return nil, fmt.Errorf("codfmt: data section static data: %w", err)
	}

	ds.ClassDefs = make([]*ClassDef, len(ds.ClassOffsets))
	for i, coff := range ds.ClassOffsets {
		if err := r.Seek(dsStart + int(coff)); err != nil {
			return nil, fmt.Errorf("codfmt: data section seek class def %d: %w", i, err)
		}
		cd, err := ParseClassDef(r)
		if err != nil {
			return nil, fmt.Errorf("codfmt: class def %d: %w", i, err)
		}
		ds.ClassDefs[i] = cd
	}

	if err := r.Seek(dsStart + int(h.OffIfaceMethodRefs)); err != nil {
		return nil, fmt.Errorf("codfmt: data section seek iface method refs: %w", err)
	}
	if ds.IfaceMethodRefs, err = bytestream.ReadBounded(r, dsStart+int(h.OffClassRefs), parseIfaceMethodRef); err != nil {
		return nil, fmt.Errorf("codfmt: data section iface method refs: %w", err)
	}
	if ds.ClassRefs, err = bytestream.ReadBounded(r, dsStart+int(h.OffRoutineFxps), parseClassRef); err != nil {
		return nil, fmt.Errorf("codfmt: data section class refs: %w", err)
	}

	longRefs := h.Version == 6
	impRoutines := h.Version == 5
	impStaticFields := h.Version == 5
	impClassRefs := h.Version == 5

	checkFixupAlignment := func(expected int, name string) error {
		r.Align(2)
		if got := r.Tell(); got != dsStart+expected {
			return fmt.Errorf("codfmt: %s misaligned: at %d, want %d", name, got, dsStart+expected)
		}
		return nil
	}

	memberFixups := func(explicit bool) ([]MemberFixup, error) {
		if longRefs {
			raw, err := parseFixupList(r, readCountSignedShort, parseLongMemberRef, 2, explicit)
			if err != nil {
				return nil, err
			}
			out := make([]MemberFixup, len(raw))
			for i, f := range raw {
				out[i] = MemberFixup{ClassRef: f.Member.ClassRef, Name: f.Member.Name, ParamTypes: f.Member.ParamTypes, ReturnType: f.Member.ReturnType, Offsets: f.Offsets}
			}
			return out, nil
		}
		raw, err := parseFixupList(r, readCountSignedShort, parseMemberRef, 2, explicit)
		if err != nil {
			return nil, err
		}
		out := make([]MemberFixup, len(raw))
		for i, f := range raw {
			out[i] = MemberFixup{ClassRef: f.Member.ClassRef, Name: f.Member.Name, Type: f.Member.Type, Offsets: f.Offsets}
		}
		return out, nil
	}

	if err := checkFixupAlignment(int(h.OffRoutineFxps), "routine fixups"); err != nil {
		return nil, err
	}
	if ds.RoutineFixups, err = memberFixups(!impRoutines); err != nil {
		return nil, fmt.Errorf("codfmt: routine fixups: %w", err)
	}
	if err := checkFixupAlignment(int(h.OffStaticRoutineFxps), "static routine fixups"); err != nil {
		return nil, err
	}
	if ds.StaticRoutineFixups, err = memberFixups(!impRoutines); err != nil {
		return nil, fmt.Errorf("codfmt: static routine fixups: %w", err)
	}
	if err := checkFixupAlignment(int(h.OffVirtualRoutineFxps), "virtual routine fixups"); err != nil {
		return nil, err
	}
	if ds.VirtualRoutineFixups, err = memberFixups(true); err != nil {
		return nil, fmt.Errorf("codfmt: virtual routine fixups: %w", err)
	}

	if err := checkFixupAlignment(int(h.OffClassRefFxps), "class ref fixups"); err != nil {
		return nil, err
	}
	rawClassRefFixups, err := parseFixupList(r, readCountWord, readWordAsT, 2, !impClassRefs)
	if err != nil {
		return nil, fmt.Errorf("codfmt: class ref fixups: %w", err)
	}
	ds.ClassRefFixups = make([]ClassRefFixup, len(rawClassRefFixups))
	for i, f := range rawClassRefFixups {
		ds.ClassRefFixups[i] = ClassRefFixup{ClassRef: f.Member, Offsets: f.Offsets}
	}

	if err := checkFixupAlignment(int(h.OffFieldFxps), "field fixups"); err != nil {
		return nil, err
	}
	if ds.FieldFixups, err = memberFixups(true); err != nil {
		return nil, fmt.Errorf("codfmt: field fixups: %w", err)
	}
	if err := checkFixupAlignment(int(h.OffLocalFieldFxps), "local field fixups"); err != nil {
		return nil, err
	}
	rawLocalFieldFixups, err := parseFixupList(r, readCountWord, parseLocalMemberRef, 1, true)
	if err != nil {
		return nil, fmt.Errorf("codfmt: local field fixups: %w", err)
	}
	ds.LocalFieldFixups = make([]LocalFieldFixup, len(rawLocalFieldFixups))
	for i, f := range rawLocalFieldFixups {
		ds.LocalFieldFixups[i] = LocalFieldFixup{ClassIndex: f.Member.ClassIndex, FieldIndex: f.Member.FieldIndex, Offsets: f.Offsets}
	}

	if err := checkFixupAlignment(int(h.OffStaticFieldFxps), "static field fixups"); err != nil {
		return nil, err
	}
	if ds.StaticFieldFixups, err = memberFixups(!impStaticFields); err != nil {
		return nil, fmt.Errorf("codfmt: static field fixups: %w", err)
	}

	if err := checkFixupAlignment(int(h.OffModCodeFxps), "module code fixups"); err != nil {
		return nil, err
	}
	rawModCodeFixups, err := parseFixupList(r, readCountWord, readByteAsT, 1, true)
	if err != nil {
		return nil, fmt.Errorf("codfmt: module code fixups: %w", err)
	}
	ds.ModCodeFixups = make([]ModCodeFixup, len(rawModCodeFixups))
	for i, f := range rawModCodeFixups {
		ds.ModCodeFixups[i] = ModCodeFixup{Value: f.Member, Offsets: f.Offsets}
	}

	if err := r.Seek(dsStart + dataSize); err != nil {
		return nil, fmt.Errorf("codfmt: data section seek end: %w", err)
	}

	if len(ds.Modules) > 0 {
		nameBytes, err := r.CStringAt(dsStart + int(ds.Modules[0].NameOffset))
		if err != nil {
			return nil, fmt.Errorf("codfmt: module name: %w", err)
		}
		verBytes, err := r.CStringAt(dsStart + int(ds.Modules[0].VersionOffset))
		if err != nil {
			return nil, fmt.Errorf("codfmt: module version: %w", err)
		}
		ds.ModuleName = codec.Unescape(string(nameBytes))
		ds.ModuleVersion = codec.Unescape(string(verBytes))
	}

	return ds, nil
}
