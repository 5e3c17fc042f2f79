package bytestream

import (
	"errors"
	"testing"
)

func TestU16LERoundTrip(t *testing.T) {
	r := New([]byte{0x34, 0x12})
	v, err := r.U16LE()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("got 0x%x, want 0x1234", v)
	}
}

func TestShortReadFails(t *testing.T) {
	r := New([]byte{0x01})
	if _, err := r.U16LE(); !errors.Is(err, ErrEndOfInput) {
		t.Fatalf("expected ErrEndOfInput, got %v", err)
	}
	// Cursor must not have moved on a failed read.
	if r.Tell() != 0 {
		t.Errorf("cursor moved on failed read: %d", r.Tell())
	}
}

func TestMarkRevert(t *testing.T) {
	r := New([]byte{1, 2, 3, 4, 5})
	r.Mark()
	_, _ = r.Bytes(3)
	if r.Tell() != 3 {
		t.Fatalf("tell = %d, want 3", r.Tell())
	}
	r.Revert()
	if r.Tell() != 0 {
		t.Fatalf("tell after revert = %d, want 0", r.Tell())
	}
}

func TestAlign(t *testing.T) {
	r := New(make([]byte, 16))
	_, _ = r.Bytes(3)
	r.Align(2)
	if r.Tell() != 4 {
		t.Fatalf("tell = %d, want 4", r.Tell())
	}
	r.Align(2)
	if r.Tell() != 4 {
		t.Fatalf("aligning an already-aligned cursor moved it: %d", r.Tell())
	}
}

func TestReadBoundedOvershoot(t *testing.T) {
	r := New([]byte{1, 2, 3})
	_, err := ReadBounded(r, 1, func(r *Reader) (uint16, error) {
		return r.U16LE()
	})
	// The first 2-byte read starts before endOffset=1 but ends at 2, past
	// it, so the overshoot must be reported.
	if err == nil {
		t.Fatal("expected an overshoot error when a read crosses endOffset")
	}
}

func TestReadTerminated(t *testing.T) {
	data := []byte{1, 2, 0xFF, 0xFF, 9}
	r := New(data)
	out, err := ReadTerminated(r,
		func(r *Reader) (bool, error) {
			b, perr := r.PeekBytes(2)
			if perr != nil {
				return false, nil
			}
			return b[0] == 0xFF && b[1] == 0xFF, nil
		},
		func(r *Reader) (uint8, error) { return r.U8() },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0] != 1 || out[1] != 2 {
		t.Fatalf("got %v, want [1 2]", out)
	}
	if r.Tell() != 4 {
		t.Fatalf("tell after sentinel = %d, want 4", r.Tell())
	}
}

func TestCStringUnterminated(t *testing.T) {
	r := New([]byte{'a', 'b'})
	if _, err := r.CString(); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}
