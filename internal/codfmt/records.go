package codfmt

import (
	"fmt"

	"codtool/internal/bytestream"
	"codtool/internal/codec"
)

// EntryPoint is one of the two fixed module entry-point descriptors carried
// in the data header.
type EntryPoint struct {
	Offset     uint16
	Name       uint16
	ParamTypes uint16
}

func parseEntryPoint(r *bytestream.Reader) (EntryPoint, error) {
	var e EntryPoint
	var err error
	if e.Offset, err = r.U16LE(); err != nil {
		return e, err
	}
	if e.Name, err = r.U16LE(); err != nil {
		return e, err
	}
	if e.ParamTypes, err = r.U16LE(); err != nil {
		return e, err
	}
	return e, nil
}

// ExportedData names a data-pool value exported by this module.
type ExportedData struct {
	Name       uint16
	Length     uint16
	DataOffset uint16
}

func parseExportedData(r *bytestream.Reader) (ExportedData, error) {
	var e ExportedData
	var err error
	if e.Name, err = r.U16LE(); err != nil {
		return e, err
	}
	if e.Length, err = r.U16LE(); err != nil {
		return e, err
	}
	if e.DataOffset, err = r.U16LE(); err != nil {
		return e, err
	}
	return e, nil
}

// StaticData is one module-level static variable slot.
type StaticData struct {
	Address uint16
	Value   int32
}

func parseStaticData(r *bytestream.Reader) (StaticData, error) {
	var s StaticData
	var err error
	if s.Address, err = r.U16LE(); err != nil {
		return s, err
	}
	if s.Value, err = r.I32LE(); err != nil {
		return s, err
	}
	return s, nil
}

// IfaceMethodRef is an interface method reference record.
type IfaceMethodRef struct {
	ClassID    codec.ClassID
	Name       uint16
	ParamTypes uint16
	ReturnType uint16
}

func parseIfaceMethodRef(r *bytestream.Reader) (IfaceMethodRef, error) {
	var m IfaceMethodRef
	var err error
	if m.ClassID, err = parseClassID(r); err != nil {
		return m, err
	}
	if m.Name, err = r.U16LE(); err != nil {
		return m, err
	}
	if m.ParamTypes, err = r.U16LE(); err != nil {
		return m, err
	}
	if m.ReturnType, err = r.U16LE(); err != nil {
		return m, err
	}
	return m, nil
}

// ClassRef is an external class reference record.
type ClassRef struct {
	ModIndex  uint16
	PackName  uint16
	ClassName uint16
	Extra     codec.ClassID
}

func parseClassRef(r *bytestream.Reader) (ClassRef, error) {
	var c ClassRef
	var err error
	if c.ModIndex, err = r.U16LE(); err != nil {
		return c, err
	}
	if c.PackName, err = r.U16LE(); err != nil {
		return c, err
	}
	if c.ClassName, err = r.U16LE(); err != nil {
		return c, err
	}
	if c.Extra, err = parseClassID(r); err != nil {
		return c, err
	}
	return c, nil
}

// FieldDef is an instance field definition record.
type FieldDef struct {
	Name uint16
	Type uint16
}

func parseFieldDef(r *bytestream.Reader) (FieldDef, error) {
	var f FieldDef
	var err error
	if f.Name, err = r.U16LE(); err != nil {
		return f, err
	}
	if f.Type, err = r.U16LE(); err != nil {
		return f, err
	}
	return f, nil
}

// StaticFieldDef is a static field definition record.
type StaticFieldDef struct {
	Name    uint16
	Type    uint16
	Address uint16
}

func parseStaticFieldDef(r *bytestream.Reader) (StaticFieldDef, error) {
	var f StaticFieldDef
	var err error
	if f.Name, err = r.U16LE(); err != nil {
		return f, err
	}
	if f.Type, err = r.U16LE(); err != nil {
		return f, err
	}
	if f.Address, err = r.U16LE(); err != nil {
		return f, err
	}
	return f, nil
}

// MemberRef is a short field/method fixup target (version-5 data sections).
type MemberRef struct {
	ClassRef uint16
	Name     uint16
	Type     uint16
}

func parseMemberRef(r *bytestream.Reader) (MemberRef, error) {
	var m MemberRef
	var err error
	if m.ClassRef, err = r.U16LE(); err != nil {
		return m, err
	}
	if m.Name, err = r.U16LE(); err != nil {
		return m, err
	}
	if m.Type, err = r.U16LE(); err != nil {
		return m, err
	}
	return m, nil
}

// LongMemberRef is a long method fixup target (version-6 data sections),
// carrying separate parameter and return type pool references.
type LongMemberRef struct {
	ClassRef   uint16
	Name       uint16
	ParamTypes uint16
	ReturnType uint16
}

func parseLongMemberRef(r *bytestream.Reader) (LongMemberRef, error) {
	var m LongMemberRef
	var err error
	if m.ClassRef, err = r.U16LE(); err != nil {
		return m, err
	}
	if m.Name, err = r.U16LE(); err != nil {
		return m, err
	}
	if m.ParamTypes, err = r.U16LE(); err != nil {
		return m, err
	}
	if m.ReturnType, err = r.U16LE(); err != nil {
		return m, err
	}
	return m, nil
}

// LocalMemberRef is a within-class field fixup target: a class/field index
// pair rather than a pool reference.
type LocalMemberRef struct {
	ClassIndex uint8
	FieldIndex uint8
}

func parseLocalMemberRef(r *bytestream.Reader) (LocalMemberRef, error) {
	var m LocalMemberRef
	var err error
	if m.ClassIndex, err = r.U8(); err != nil {
		return m, err
	}
	if m.FieldIndex, err = r.U8(); err != nil {
		return m, err
	}
	return m, nil
}

func parseClassID(r *bytestream.Reader) (codec.ClassID, error) {
	modIdx, err := r.U8()
	if err != nil {
		return codec.ClassID{}, fmt.Errorf("class id mod index: %w", err)
	}
	classIdx, err := r.U8()
	if err != nil {
		return codec.ClassID{}, fmt.Errorf("class id class index: %w", err)
	}
	return codec.ClassID{ModIndex: modIdx, ClassIndex: classIdx}, nil
}

// readPUS reads a "packed unsigned short": little-endian base-128 varint,
// continuation in the MSB of each byte, masked to 16 bits.
func readPUS(r *bytestream.Reader) (uint16, error) {
	var total uint32
	var bits uint
	for {
		b, err := r.U8()
		if err != nil {
			return 0, fmt.Errorf("packed unsigned short: %w", err)
		}
		total += uint32(b&0x7f) << bits
		bits += 7
		if b&0x80 == 0 {
			break
		}
	}
	return uint16(total & 0xffff), nil
}

// parseFixupOffsetVector reads a PUS-delimited byte-length vector of
// PUS-encoded deltas and returns their running sum: the absolute bytecode
// offsets a fixup entry patches.
func parseFixupOffsetVector(r *bytestream.Reader) ([]uint16, error) {
	size, err := readPUS(r)
	if err != nil {
		return nil, fmt.Errorf("fixup offset vector size: %w", err)
	}
	end := r.Tell() + int(size)
	var deltas []uint16
	for r.Tell() < end {
		d, err := readPUS(r)
		if err != nil {
			return nil, fmt.Errorf("fixup offset delta: %w", err)
		}
		deltas = append(deltas, d)
	}
	if len(deltas) == 0 {
		return nil, nil
	}
	offsets := make([]uint16, len(deltas))
	offsets[0] = deltas[0]
	for i := 1; i < len(deltas); i++ {
		offsets[i] = offsets[i-1] + deltas[i]
	}
	return offsets, nil
}
