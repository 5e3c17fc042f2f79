package codfmt

import (
	"fmt"

	"codtool/internal/bytestream"
)

// FixupKind distinguishes the eight fixup tables a data section carries.
type FixupKind int

const (
	FixupRoutine FixupKind = iota
	FixupStaticRoutine
	FixupVirtualRoutine
	FixupClassRef
	FixupField
	FixupLocalField
	FixupStaticField
	FixupModCode
)

// Fixup pairs a resolved-at-link-time member reference with the bytecode
// offsets it patches. Offsets is nil for tables whose count encodes "no
// explicit offset vector follows" (count >= 0 and not explicit).
type Fixup[T any] struct {
	Member  T
	Offsets []uint16
}

// parseFixupList mirrors xFixupList: a signed or unsigned count prefix
// (negative counts for signed forms imply an offset vector follows even
// when not marked explicit), then that many (member, optional offset
// vector) pairs, each member preceded by an alignment pad.
func parseFixupList[T any](
	r *bytestream.Reader,
	readCount func(*bytestream.Reader) (int32, error),
	readMember func(*bytestream.Reader) (T, error),
	align int,
	explicit bool,
) ([]Fixup[T], error) {
	cnt, err := readCount(r)
	if err != nil {
		return nil, fmt.Errorf("fixup list count: %w", err)
	}
	hasOffsets := explicit || cnt < 0
	n := int(cnt)
	if n < 0 {
		n = -n
	}
	out := make([]Fixup[T], 0, n)
	for i := 0; i < n; i++ {
		r.Align(align)
		member, err := readMember(r)
		if err != nil {
			return out, fmt.Errorf("fixup list entry %d: %w", i, err)
		}
		var offsets []uint16
		if hasOffsets {
			offsets, err = parseFixupOffsetVector(r)
			if err != nil {
				return out, fmt.Errorf("fixup list entry %d offsets: %w", i, err)
			}
		}
		out = append(out, Fixup[T]{Member: member, Offsets: offsets})
	}
	return out, nil
}

func readCountSignedShort(r *bytestream.Reader) (int32, error) {
	v, err := r.I16LE()
	return int32(v), err
}

func readCountWord(r *bytestream.Reader) (int32, error) {
	v, err := r.U16LE()
	return int32(v), err
}

func readByteAsT(r *bytestream.Reader) (byte, error) { return r.U8() }

func readWordAsT(r *bytestream.Reader) (uint16, error) { return r.U16LE() }
