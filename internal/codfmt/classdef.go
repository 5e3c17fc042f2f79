package codfmt

import (
	"fmt"

	"codtool/internal/bytestream"
	"codtool/internal/codec"
)

// ClassDef is one class definition within the data section. Offsets are
// relative to the class def's own start.
type ClassDef struct {
	Start int

	PackName    uint16
	ClassName   uint16
	Superclass  codec.ClassID
	StaticStart uint16
	ClinitOffset uint16
	InitOffset   uint16
	CreateSize   uint16
	SecureIndex  uint16
	Index        uint16
	CodeStart    uint16
	CodeEnd      uint16
	Flags        uint16

	OffVirtualRoutines    uint16
	OffNonvirtualRoutines uint16
	OffStaticRoutines     uint16
	OffFields             uint16
	OffStaticFields       uint16
	OffIfaces             uint16
	OffFieldAttrs         uint16
	OffStaticFieldAttrs   uint16

	VirtualRoutines    []uint16
	NonvirtualRoutines []uint16
	StaticRoutines     []uint16

	Fields       []FieldDef
	StaticFields []StaticFieldDef
	Ifaces       []codec.ClassID

	FieldAttrs       []uint8
	StaticFieldAttrs []uint8
}

// ParseClassDef reads one class definition starting at the reader's
// current position (which becomes the def's relative-offset origin).
func ParseClassDef(r *bytestream.Reader) (*ClassDef, error) {
	start := r.Tell()
	c := &ClassDef{Start: start}
	var err error

	if c.PackName, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("codfmt: class def pack_name: %w", err)
	}
	if c.ClassName, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("codfmt: class def class_name: %w", err)
	}
	if c.Superclass, err = parseClassID(r); err != nil {
		return nil, fmt.Errorf("codfmt: class def superclass: %w", err)
	}
	fields16 := []*uint16{
		&c.StaticStart, &c.ClinitOffset, &c.InitOffset, &c.CreateSize,
		&c.SecureIndex, &c.Index, &c.CodeStart, &c.CodeEnd, &c.Flags,
		&c.OffVirtualRoutines, &c.OffNonvirtualRoutines, &c.OffStaticRoutines,
		&c.OffFields, &c.OffStaticFields, &c.OffIfaces,
		&c.OffFieldAttrs, &c.OffStaticFieldAttrs,
	}
	for i, p := range fields16 {
		v, err := r.U16LE()
		if err != nil {
			return nil, fmt.Errorf("codfmt: class def field %d: %w", i, err)
		}
		*p = v
	}

	if err := r.Seek(start + int(c.OffVirtualRoutines)); err != nil {
		return nil, fmt.Errorf("codfmt: class def seek virtual routines: %w", err)
	}
	if c.VirtualRoutines, err = bytestream.ReadBounded(r, start+int(c.OffNonvirtualRoutines), (*bytestream.Reader).U16LE); err != nil {
		return nil, fmt.Errorf("codfmt: class def virtual routines: %w", err)
	}
	if c.NonvirtualRoutines, err = bytestream.ReadBounded(r, start+int(c.OffStaticRoutines), (*bytestream.Reader).U16LE); err != nil {
		return nil, fmt.Errorf("codfmt: class def nonvirtual routines: %w", err)
	}
	if c.StaticRoutines, err = bytestream.ReadBounded(r, start+int(c.OffFields), (*bytestream.Reader).U16LE); err != nil {
		return nil, fmt.Errorf("codfmt: class def static routines: %w", err)
	}
	if c.Fields, err = bytestream.ReadBounded(r, start+int(c.OffStaticFields), parseFieldDef); err != nil {
		return nil, fmt.Errorf("codfmt: class def fields: %w", err)
	}
	if c.StaticFields, err = bytestream.ReadBounded(r, start+int(c.OffIfaces), parseStaticFieldDef); err != nil {
		return nil, fmt.Errorf("codfmt: class def static fields: %w", err)
	}
	if c.Ifaces, err = bytestream.ReadBounded(r, start+int(c.OffFieldAttrs), parseClassID); err != nil {
		return nil, fmt.Errorf("codfmt: class def ifaces: %w", err)
	}
	if c.FieldAttrs, err = bytestream.ReadFixed(r, len(c.Fields), (*bytestream.Reader).U8); err != nil {
		return nil, fmt.Errorf("codfmt: class def field attrs: %w", err)
	}
	if c.StaticFieldAttrs, err = bytestream.ReadFixed(r, len(c.StaticFields), (*bytestream.Reader).U8); err != nil {
		return nil, fmt.Errorf("codfmt: class def static field attrs: %w", err)
	}
	return c, nil
}
