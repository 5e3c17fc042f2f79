package codfmt

import (
	"fmt"

	"codtool/internal/bytestream"
)

// DataHeader is the fixed-size header at the start of the data section,
// carrying the section's sub-offsets (all relative to the data section's
// own start) and the two module entry points.
type DataHeader struct {
	Flags     uint8
	Version   uint8
	NumICalls uint16
	NumMods   uint8
	NumClasses uint8

	OffExports            uint16
	OffDataPool           uint16
	OffStaticData         uint16
	OffClassDefs          uint16
	OffTypeLists          uint16
	OffIfaceMethodRefs    uint16
	OffClassRefs          uint16
	OffRoutineFxps        uint16
	OffStaticRoutineFxps  uint16
	OffVirtualRoutineFxps uint16
	OffClassRefFxps       uint16
	OffAliases            uint16
	OffFieldFxps          uint16
	OffLocalFieldFxps     uint16
	OffStaticFieldFxps    uint16
	OffModCodeFxps        uint16

	StaticSize  uint16
	EntryPoints [2]EntryPoint
}

func ParseDataHeader(r *bytestream.Reader) (*DataHeader, error) {
	h := &DataHeader{}
	var err error
	if h.Flags, err = r.U8(); err != nil {
		return nil, fmt.Errorf("codfmt: data header flags: %w", err)
	}
	if h.Version, err = r.U8(); err != nil {
		return nil, fmt.Errorf("codfmt: data header version: %w", err)
	}
	if h.NumICalls, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("codfmt: data header num_icalls: %w", err)
	}
	if h.NumMods, err = r.U8(); err != nil {
		return nil, fmt.Errorf("codfmt: data header num_mods: %w", err)
	}
	if h.NumClasses, err = r.U8(); err != nil {
		return nil, fmt.Errorf("codfmt: data header num_classes: %w", err)
	}

	offsets := []*uint16{
		&h.OffExports, &h.OffDataPool, &h.OffStaticData, &h.OffClassDefs,
		&h.OffTypeLists, &h.OffIfaceMethodRefs, &h.OffClassRefs,
		&h.OffRoutineFxps, &h.OffStaticRoutineFxps, &h.OffVirtualRoutineFxps,
		&h.OffClassRefFxps, &h.OffAliases, &h.OffFieldFxps,
		&h.OffLocalFieldFxps, &h.OffStaticFieldFxps, &h.OffModCodeFxps,
	}
	for i, p := range offsets {
		v, err := r.U16LE()
		if err != nil {
			return nil, fmt.Errorf("codfmt: data header offset field %d: %w", i, err)
		}
		*p = v
	}

	if h.StaticSize, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("codfmt: data header static_size: %w", err)
	}
	for i := range h.EntryPoints {
		ep, err := parseEntryPoint(r)
		if err != nil {
			return nil, fmt.Errorf("codfmt: data header entry point %d: %w", i, err)
		}
		h.EntryPoints[i] = ep
	}

	if !supportedDataVersions[h.Version] {
		return nil, fmt.Errorf("codfmt: unsupported data section version %d", h.Version)
	}
	return h, nil
}
