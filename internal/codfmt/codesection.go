package codfmt

import (
	"fmt"

	"codtool/internal/bytestream"
)

// CodeSection holds every routine's bytecode, in class-def order
// (virtual, then nonvirtual, then static routines per class).
type CodeSection struct {
	Start    int
	Routines []*RoutineDef
}

// ParseCodeSection reads every routine referenced by classDefs' routine
// offset arrays. r must be positioned at the code section start; codeSize
// is the module header's code_size field.
func ParseCodeSection(r *bytestream.Reader, codeSize int, classDefs []*ClassDef) (*CodeSection, error) {
	cs := &CodeSection{Start: r.Tell()}
	for ci, cd := range classDefs {
		var roffs []uint16
		roffs = append(roffs, cd.VirtualRoutines...)
		roffs = append(roffs, cd.NonvirtualRoutines...)
		roffs = append(roffs, cd.StaticRoutines...)
		for ri, roff := range roffs {
			if err := r.Seek(cs.Start + int(roff)); err != nil {
				return nil, fmt.Errorf("codfmt: seek routine class %d entry %d: %w", ci, ri, err)
			}
			rd, err := ParseRoutineDef(r, cs.Start)
			if err != nil {
				return nil, fmt.Errorf("codfmt: routine class %d entry %d: %w", ci, ri, err)
			}
			cs.Routines = append(cs.Routines, rd)
		}
	}
	if err := r.Seek(cs.Start + codeSize); err != nil {
		return nil, fmt.Errorf("codfmt: code section seek end: %w", err)
	}
	return cs, nil
}
