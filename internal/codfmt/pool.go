package codfmt

import (
	"bytes"
	"fmt"

	"codtool/internal/bytestream"
	"codtool/internal/codec"
)

// rawCString returns the NUL-terminated byte run at offset within the
// data section's raw copy (offsets into the pool are relative to the data
// section start, matching class def / module ref offset conventions).
func (ds *DataSection) rawCString(offset uint16) ([]byte, error) {
	if int(offset) > len(ds.Raw) {
		return nil, fmt.Errorf("codfmt: pool offset %d beyond data section (len %d)", offset, len(ds.Raw))
	}
	rest := ds.Raw[offset:]
	idx := bytes.IndexByte(rest, 0)
	if idx < 0 {
		return nil, fmt.Errorf("codfmt: unterminated pool entry at %d", offset)
	}
	return rest[:idx], nil
}

// Identifier decodes a packed-identifier pool entry (class/package/field/
// method name) at the given data-section-relative offset.
func (ds *DataSection) Identifier(offset uint16) (string, error) {
	b, err := ds.rawCString(offset)
	if err != nil {
		return "", err
	}
	return codec.DecodeIdentifier(b), nil
}

// StringLiteral decodes a packed string-pool entry (ldc-style string
// constant) at the given offset. Unlike Identifier, dots are not
// canonicalized to slashes.
func (ds *DataSection) StringLiteral(offset uint16) (string, error) {
	b, err := ds.rawCString(offset)
	if err != nil {
		return "", err
	}
	return codec.DecodeString(b), nil
}

// TypeToken decodes a single type token at the given pool offset (a field's
// declared type, or a routine's return type).
func (ds *DataSection) TypeToken(offset uint16) (*codec.TypeToken, error) {
	if int(offset) > len(ds.Raw) {
		return nil, fmt.Errorf("codfmt: type token offset %d beyond data section (len %d)", offset, len(ds.Raw))
	}
	r, err := bytestream.NewAt(ds.Raw, int(offset))
	if err != nil {
		return nil, fmt.Errorf("codfmt: type token at %d: %w", offset, err)
	}
	return codec.ParseTypeToken(r)
}

// TypeList decodes a run-length-encoded type list at the given pool offset
// (a routine's parameter types).
func (ds *DataSection) TypeList(offset uint16) (codec.TypeList, error) {
	if int(offset) > len(ds.Raw) {
		return nil, fmt.Errorf("codfmt: type list offset %d beyond data section (len %d)", offset, len(ds.Raw))
	}
	r, err := bytestream.NewAt(ds.Raw, int(offset))
	if err != nil {
		return nil, fmt.Errorf("codfmt: type list at %d: %w", offset, err)
	}
	return codec.ParseTypeList(r)
}
