package codfmt

import (
	"fmt"

	"codtool/internal/bytestream"
	"codtool/internal/codec"
)

// StackMapEntry is one out-of-line stack-map slot preceding a routine's
// header, read only when StackSize > 0.
type StackMapEntry struct {
	Label uint16
	Type  uint16
}

func parseStackMapEntry(r *bytestream.Reader) (StackMapEntry, error) {
	var e StackMapEntry
	var err error
	if e.Label, err = r.U16LE(); err != nil {
		return e, err
	}
	if e.Type, err = r.U16LE(); err != nil {
		return e, err
	}
	return e, nil
}

// ExHandler is one exception handler range within a routine's bytecode.
// TypeOffset is rebased to be relative to the code section start.
type ExHandler struct {
	Start      uint16
	End        uint16
	Target     uint16
	Type       codec.ClassID
	TypeOffset int
}

// RoutineDef is one method's header, bytecode, and exception handlers.
//
// The header has two on-disk encodings, distinguished by peeking the byte
// 5 positions before the routine's nominal start: short (9 bytes, 2-bit
// packed stack_size/max_locals/max_stack) when that byte is > 1, long (14
// bytes, byte-granular stack_size/max_locals/max_stack) otherwise. Both
// encodings end exactly at the routine's nominal start, so the cursor lands
// there naturally after reading the header fields — no seek-back needed.
type RoutineDef struct {
	HeaderStart int
	ShortHeader bool

	Name       uint16
	ParamTypes uint16
	ReturnType uint16
	CodeSize   int
	Attrs      uint16
	StackSize  int
	MaxLocals  int
	MaxStack   int

	StackMap []StackMapEntry

	CodeOffset int
	ByteCode   []byte

	Handlers []ExHandler
}

const routineAttrHasHandlers = 0x40

// ParseRoutineDef reads one routine definition. r must be positioned at the
// routine's nominal start (the offset stored in a class def's routine
// offset arrays, seeked relative to the code section start). codeSectionStart
// rebases exception handler type offsets to be code-section-relative.
func ParseRoutineDef(r *bytestream.Reader, codeSectionStart int) (*RoutineDef, error) {
	offset := r.Tell()

	if err := r.Seek(offset - 5); err != nil {
		return nil, fmt.Errorf("codfmt: routine def header probe: %w", err)
	}
	probe, err := r.U8()
	if err != nil {
		return nil, fmt.Errorf("codfmt: routine def header probe: %w", err)
	}
	shortHeader := probe > 1

	headerOffset := offset - 14
	if shortHeader {
		headerOffset = offset - 9
	}
	if err := r.Seek(headerOffset); err != nil {
		return nil, fmt.Errorf("codfmt: routine def seek header: %w", err)
	}

	rd := &RoutineDef{HeaderStart: headerOffset, ShortHeader: shortHeader}
	if shortHeader {
		if rd.ReturnType, err = r.U16LE(); err != nil {
			return nil, fmt.Errorf("codfmt: routine def return_type: %w", err)
		}
		if rd.ParamTypes, err = r.U16LE(); err != nil {
			return nil, fmt.Errorf("codfmt: routine def param_types: %w", err)
		}
		codeSizeByte, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("codfmt: routine def code_size: %w", err)
		}
		rd.CodeSize = int(codeSizeByte) - 2
		attrsByte, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("codfmt: routine def attrs: %w", err)
		}
		rd.Attrs = uint16(attrsByte)
		if rd.Name, err = r.U16LE(); err != nil {
			return nil, fmt.Errorf("codfmt: routine def name: %w", err)
		}
		x, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("codfmt: routine def packed sizes: %w", err)
		}
		rd.StackSize = int((x >> 6) & 3)
		rd.MaxLocals = int((x >> 4) & 3)
		rd.MaxStack = int(x & 3)
	} else {
		if rd.Name, err = r.U16LE(); err != nil {
			return nil, fmt.Errorf("codfmt: routine def name: %w", err)
		}
		if rd.ParamTypes, err = r.U16LE(); err != nil {
			return nil, fmt.Errorf("codfmt: routine def param_types: %w", err)
		}
		if rd.ReturnType, err = r.U16LE(); err != nil {
			return nil, fmt.Errorf("codfmt: routine def return_type: %w", err)
		}
		codeSize, err := r.U16LE()
		if err != nil {
			return nil, fmt.Errorf("codfmt: routine def code_size: %w", err)
		}
		rd.CodeSize = int(codeSize)
		if rd.Attrs, err = r.U16LE(); err != nil {
			return nil, fmt.Errorf("codfmt: routine def attrs: %w", err)
		}
		stackSize, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("codfmt: routine def stack_size: %w", err)
		}
		rd.StackSize = int(stackSize)
		maxLocals, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("codfmt: routine def max_locals: %w", err)
		}
		rd.MaxLocals = int(maxLocals)
		if _, err := r.U8(); err != nil { // unused padding byte
			return nil, fmt.Errorf("codfmt: routine def unused byte: %w", err)
		}
		maxStack, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("codfmt: routine def max_stack: %w", err)
		}
		rd.MaxStack = int(maxStack)
	}

	if rd.StackSize > 0 {
		r.Mark()
		if err := r.Seek(headerOffset - rd.StackSize*4); err != nil {
			r.Revert()
			return nil, fmt.Errorf("codfmt: routine def seek stack map: %w", err)
		}
		rd.StackMap, err = bytestream.ReadFixed(r, rd.StackSize, parseStackMapEntry)
		r.Revert()
		if err != nil {
			return nil, fmt.Errorf("codfmt: routine def stack map: %w", err)
		}
	}

	rd.CodeOffset = r.Tell()
	if rd.CodeOffset != offset {
		return nil, fmt.Errorf("codfmt: routine def header decode landed at %d, want %d", rd.CodeOffset, offset)
	}
	if rd.CodeSize < 0 {
		return nil, fmt.Errorf("codfmt: routine def negative code_size %d", rd.CodeSize)
	}
	rd.ByteCode, err = r.Bytes(rd.CodeSize)
	if err != nil {
		return nil, fmt.Errorf("codfmt: routine def bytecode: %w", err)
	}

	if rd.Attrs&routineAttrHasHandlers != 0 {
		rd.Handlers, err = parseExceptionHandlers(r, codeSectionStart)
		if err != nil {
			return nil, fmt.Errorf("codfmt: routine def handlers: %w", err)
		}
	}
	return rd, nil
}

// parseExceptionHandlers reads a sentinel-terminated (0xFFFF) list of
// exception handler ranges. Each handler's "start" field is the word that
// was already peeked to test for the sentinel, so the cursor backs up 2
// bytes before reparsing it as a full ExHandler record.
func parseExceptionHandlers(r *bytestream.Reader, codeSectionStart int) ([]ExHandler, error) {
	var out []ExHandler
	for {
		xh, err := r.U16LE()
		if err != nil {
			return out, fmt.Errorf("handler sentinel probe: %w", err)
		}
		if xh == 0xFFFF {
			return out, nil
		}
		if err := r.Skip(-2); err != nil {
			return out, fmt.Errorf("handler rewind: %w", err)
		}
		h, err := parseExHandler(r)
		if err != nil {
			return out, err
		}
		h.TypeOffset -= codeSectionStart
		out = append(out, h)
	}
}

func parseExHandler(r *bytestream.Reader) (ExHandler, error) {
	var h ExHandler
	var err error
	if h.Start, err = r.U16LE(); err != nil {
		return h, fmt.Errorf("handler start: %w", err)
	}
	if h.End, err = r.U16LE(); err != nil {
		return h, fmt.Errorf("handler end: %w", err)
	}
	if h.Target, err = r.U16LE(); err != nil {
		return h, fmt.Errorf("handler target: %w", err)
	}
	if h.Type, err = parseClassID(r); err != nil {
		return h, fmt.Errorf("handler type: %w", err)
	}
	h.TypeOffset = r.Tell() - 2
	return h, nil
}
