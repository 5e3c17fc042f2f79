// Package bytestream provides a seekable, endian-aware cursor over an
// immutable byte buffer, with mark/revert and array-read combinators for
// the module container parser.
package bytestream

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrEndOfInput is returned whenever a read would run past the end of the
// buffer. Reads never silently truncate.
var ErrEndOfInput = errors.New("bytestream: end of input")

// Reader is a cursor over a read-only byte buffer.
type Reader struct {
	data  []byte
	pos   int
	marks []int
}

// New wraps data starting at offset 0.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// NewAt wraps data with the cursor starting at offset.
func NewAt(data []byte, offset int) (*Reader, error) {
	r := &Reader{data: data}
	if err := r.Seek(offset); err != nil {
		return nil, err
	}
	return r, nil
}

// Len returns the total buffer length.
func (r *Reader) Len() int { return len(r.data) }

// Tell returns the current cursor position.
func (r *Reader) Tell() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Seek moves the cursor to an absolute offset within the buffer.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.data) {
		return fmt.Errorf("%w: seek to %d (len %d)", ErrEndOfInput, off, len(r.data))
	}
	r.pos = off
	return nil
}

// Skip advances the cursor by delta bytes, which may be negative.
func (r *Reader) Skip(delta int) error {
	return r.Seek(r.pos + delta)
}

// Mark pushes the current position onto the mark stack.
func (r *Reader) Mark() {
	r.marks = append(r.marks, r.pos)
}

// Revert pops the most recent mark and restores the cursor to it.
// It is a programming error to call Revert without a matching Mark.
func (r *Reader) Revert() {
	n := len(r.marks)
	if n == 0 {
		panic("bytestream: Revert without matching Mark")
	}
	r.pos = r.marks[n-1]
	r.marks = r.marks[:n-1]
}

// DropMark pops the most recent mark without restoring position.
func (r *Reader) DropMark() {
	n := len(r.marks)
	if n == 0 {
		panic("bytestream: DropMark without matching Mark")
	}
	r.marks = r.marks[:n-1]
}

// Align advances the cursor to the next multiple of n, relative to the
// start of the buffer. Required before reading several fixup tables.
func (r *Reader) Align(n int) {
	if n <= 1 {
		return
	}
	if rem := r.pos % n; rem != 0 {
		r.pos += n - rem
	}
}

// Bytes reads n raw bytes. Returns ErrEndOfInput if fewer than n remain.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: need %d bytes at %d, have %d", ErrEndOfInput, n, r.pos, r.Remaining())
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// PeekBytes reads n bytes without advancing the cursor.
func (r *Reader) PeekBytes(n int) ([]byte, error) {
	r.Mark()
	defer r.Revert()
	return r.Bytes(n)
}

// U8 reads an unsigned byte.
func (r *Reader) U8() (uint8, error) {
	if r.pos >= len(r.data) {
		return 0, ErrEndOfInput
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// I8 reads a signed byte.
func (r *Reader) I8() (int8, error) {
	b, err := r.U8()
	return int8(b), err
}

// U16LE / U16BE read a 16-bit unsigned integer in the given endianness.
func (r *Reader) U16LE() (uint16, error) { return readUint16(r, binary.LittleEndian) }
func (r *Reader) U16BE() (uint16, error) { return readUint16(r, binary.BigEndian) }

func readUint16(r *Reader, order binary.ByteOrder) (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(b), nil
}

// I16LE / I16BE read a 16-bit signed integer.
func (r *Reader) I16LE() (int16, error) {
	v, err := r.U16LE()
	return int16(v), err
}

func (r *Reader) I16BE() (int16, error) {
	v, err := r.U16BE()
	return int16(v), err
}

// U32LE / U32BE read a 32-bit unsigned integer.
func (r *Reader) U32LE() (uint32, error) { return readUint32(r, binary.LittleEndian) }
func (r *Reader) U32BE() (uint32, error) { return readUint32(r, binary.BigEndian) }

func readUint32(r *Reader, order binary.ByteOrder) (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(b), nil
}

// I32LE / I32BE read a 32-bit signed integer.
func (r *Reader) I32LE() (int32, error) {
	v, err := r.U32LE()
	return int32(v), err
}

func (r *Reader) I32BE() (int32, error) {
	v, err := r.U32BE()
	return int32(v), err
}

// I64LE reads a 64-bit signed integer, little-endian.
func (r *Reader) I64LE() (int64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// CString reads a NUL-terminated byte sequence, excluding the terminator,
// and consumes the terminator.
func (r *Reader) CString() ([]byte, error) {
	start := r.pos
	for r.pos < len(r.data) {
		if r.data[r.pos] == 0 {
			out := make([]byte, r.pos-start)
			copy(out, r.data[start:r.pos])
			r.pos++
			return out, nil
		}
		r.pos++
	}
	return nil, fmt.Errorf("%w: unterminated string at %d", ErrEndOfInput, start)
}

// CStringAt reads a NUL-terminated byte sequence at an absolute offset
// without disturbing the current cursor position.
func (r *Reader) CStringAt(offset int) ([]byte, error) {
	r.Mark()
	defer r.Revert()
	if err := r.Seek(offset); err != nil {
		return nil, err
	}
	return r.CString()
}

// ReadFixed reads exactly n elements with fn, collecting them in order.
func ReadFixed[T any](r *Reader, n int, fn func(*Reader) (T, error)) ([]T, error) {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := fn(r)
		if err != nil {
			return out, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadBounded reads elements with fn until the cursor reaches endOffset
// exactly. It errors if a read overshoots endOffset.
func ReadBounded[T any](r *Reader, endOffset int, fn func(*Reader) (T, error)) ([]T, error) {
	var out []T
	for r.pos < endOffset {
		v, err := fn(r)
		if err != nil {
			return out, err
		}
		out = append(out, v)
		if r.pos > endOffset {
			return out, fmt.Errorf("bytestream: bounded read overshot end %d (at %d)", endOffset, r.pos)
		}
	}
	return out, nil
}

// ReadTerminated reads elements with fn until a sentinel value (peeked via
// peekSentinel) is observed; the sentinel is consumed but not returned.
func ReadTerminated[T any](r *Reader, peekSentinel func(*Reader) (bool, error), fn func(*Reader) (T, error)) ([]T, error) {
	var out []T
	for {
		isSentinel, err := peekSentinel(r)
		if err != nil {
			return out, err
		}
		if isSentinel {
			return out, nil
		}
		v, err := fn(r)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// ReadExceptionBounded reads elements with fn until endOffset is reached,
// recording (rather than aborting on) per-element errors via onError; used
// by best-effort parsing. The returned slice omits failed elements.
func ReadExceptionBounded[T any](r *Reader, endOffset int, fn func(*Reader) (T, error), onError func(offset int, err error)) []T {
	var out []T
	for r.pos < endOffset {
		start := r.pos
		v, err := fn(r)
		if err != nil {
			onError(start, err)
			// Best-effort recovery: stop this sub-list rather than loop forever
			// if the cursor failed to advance.
			if r.pos <= start {
				break
			}
			continue
		}
		out = append(out, v)
	}
	return out
}
