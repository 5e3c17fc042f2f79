package codec

import (
	"fmt"
	"strings"

	"codtool/internal/bytestream"
)

// TypeList is an ordered sequence of type tokens, e.g. a method's parameter
// types or a stack-map's local/stack type row.
type TypeList []*TypeToken

// ParseTypeList reads a length-prefixed, run-length-encoded list of type
// tokens.
//
// The length header is itself variable-width: a plain byte (bits 4-6 of the
// first byte) for short lists, or a two-byte extended form (top bit of the
// first byte set, plus a continuation nybble) for lists needing more than a
// handful of entries. After the first token, every subsequent token is
// preceded by an RLE header byte whose top nybble + 1 gives the repeat count
// for that token.
func ParseTypeList(r *bytestream.Reader) (TypeList, error) {
	start := r.Tell()
	lenHdr, err := r.U8()
	if err != nil {
		return nil, fmt.Errorf("type list header: %w", err)
	}

	var length int
	if lenHdr&0x80 != 0 {
		length = int(lenHdr & 0x7f)
		lenHdr2, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("type list extended header: %w", err)
		}
		if length&0x40 != 0 {
			length &= 0xbf // mask out 0x40
			length <<= 4
			length += int(lenHdr2&0xf0) >> 4
		}
		length--
	} else {
		length = int(lenHdr&0x70) >> 4
	}

	if length <= 0 {
		return nil, nil
	}
	length--
	if length == 0 {
		return nil, nil
	}
	end := r.Tell() + length

	first, err := ParseTypeToken(r)
	if err != nil {
		return nil, fmt.Errorf("bad_type_list[0x%05x:0x%05x]: %w", start, end, err)
	}
	list := TypeList{first}

	for r.Tell() < end {
		rleHdr, err := r.U8()
		if err != nil {
			return list, fmt.Errorf("bad_type_list[0x%05x:0x%05x]: %w", start, end, err)
		}
		item, err := ParseTypeToken(r)
		if err != nil {
			return list, fmt.Errorf("bad_type_list[0x%05x:0x%05x]: %w", start, end, err)
		}
		run := int(rleHdr>>4) + 1
		for i := 0; i < run; i++ {
			list = append(list, item)
		}
	}
	return list, nil
}

// Resolve resolves every object-typed token in the list.
func (tl TypeList) Resolve(r ClassResolver) error {
	for i, t := range tl {
		if err := t.Resolve(r); err != nil {
			return fmt.Errorf("type list element %d: %w", i, err)
		}
	}
	return nil
}

// Slots sums the slot width of every element.
func (tl TypeList) Slots() int {
	n := 0
	for _, t := range tl {
		n += t.Slots()
	}
	return n
}

// JTS concatenates every element's descriptor. skipFirst drops the leading
// token, used when the first slot is a synthetic return-type or receiver
// placeholder.
func (tl TypeList) JTS(skipFirst bool) string {
	elems := tl
	if skipFirst && len(tl) > 0 {
		elems = tl[1:]
	}
	var sb strings.Builder
	for _, t := range elems {
		if t == nil {
			sb.WriteString("*")
			continue
		}
		sb.WriteString(t.JTS())
	}
	return sb.String()
}

func (tl TypeList) String() string { return tl.JTS(false) }

// SplitJTS splits a concatenated descriptor string into its individual
// per-token substrings, e.g. "ILjava/lang/String;[I" -> ["I",
// "Ljava/lang/String;", "[I"].
func SplitJTS(jts string) ([]string, error) {
	var out []string
	i, n := 0, len(jts)
	mark := 0
	for i < n {
		c := jts[i]
		switch {
		case c == 'L':
			i++
			found := false
			for i < n {
				cc := jts[i]
				i++
				if cc == ';' {
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("codec: JTS syntax error in %q: no terminator for class name", jts)
			}
			out = append(out, jts[mark:i])
			mark = i
		case c == '[':
			i++
		case isJTSPrimitiveOrWildcard(c):
			i++
			out = append(out, jts[mark:i])
			mark = i
		default:
			return nil, fmt.Errorf("codec: JTS syntax error: unexpected %q in %q", c, jts)
		}
	}
	if mark != n {
		return nil, fmt.Errorf("codec: trailing unparsed JTS in %q", jts)
	}
	return out, nil
}

func isJTSPrimitiveOrWildcard(c byte) bool {
	if c == '*' {
		return true
	}
	_, ok := jtsPrimitives[c]
	return ok
}

// ParseJTSList parses a concatenated descriptor string into a TypeList.
func ParseJTSList(jts string, resolveClass func(name string) *ResolvedClass) (TypeList, error) {
	parts, err := SplitJTS(jts)
	if err != nil {
		return nil, err
	}
	list := make(TypeList, 0, len(parts))
	for _, p := range parts {
		tt, err := ParseJTSToken(p, resolveClass)
		if err != nil {
			return nil, err
		}
		list = append(list, tt)
	}
	return list, nil
}
