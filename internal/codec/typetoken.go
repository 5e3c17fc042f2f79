package codec

import (
	"fmt"
	"strings"

	"codtool/internal/bytestream"
)

// TypeCode is the low nybble of a type token's header byte.
type TypeCode int

const (
	CodeWildcard TypeCode = 0 // synthetic "unknown" type used by the heuristic scanner
	CodeBoolean  TypeCode = 1
	CodeByte     TypeCode = 2
	CodeChar     TypeCode = 3
	CodeShort    TypeCode = 4
	CodeInt      TypeCode = 5
	CodeLong     TypeCode = 6
	CodeClass7   TypeCode = 7
	CodeArray    TypeCode = 8
	CodeClass9   TypeCode = 9
	CodeVoid     TypeCode = 10
	CodeFloat    TypeCode = 11
	CodeDouble   TypeCode = 12
	CodeString   TypeCode = 14 // java/lang/String, resolved by name rather than by class id
)

var primitiveName = map[TypeCode]string{
	CodeBoolean: "boolean",
	CodeByte:    "byte",
	CodeChar:    "char",
	CodeShort:   "short",
	CodeInt:     "int",
	CodeLong:    "long",
	CodeVoid:    "void",
	CodeFloat:   "float",
	CodeDouble:  "double",
}

var primitiveChar = map[string]string{
	"boolean": "Z",
	"byte":    "B",
	"char":    "C",
	"short":   "S",
	"int":     "I",
	"long":    "J",
	"void":    "V",
	"float":   "F",
	"double":  "D",
}

// jtsPrimitives maps a JTS primitive letter to (name, code).
var jtsPrimitives = map[byte]struct {
	name string
	code TypeCode
}{
	'Z': {"boolean", CodeBoolean},
	'B': {"byte", CodeByte},
	'C': {"char", CodeChar},
	'S': {"short", CodeShort},
	'I': {"int", CodeInt},
	'J': {"long", CodeLong},
	'V': {"void", CodeVoid},
	'F': {"float", CodeFloat},
	'D': {"double", CodeDouble},
}

// ClassID is an unresolved (mod_index, class_index) class reference pair, as
// it appears inline in a type token.
type ClassID struct {
	ModIndex   uint8
	ClassIndex uint8
}

// ResolvedClass is the outcome of resolving a TypeToken's object reference.
type ResolvedClass struct {
	Name string
}

// ClassResolver resolves the two ways a TypeToken can reference a class:
// by (mod_index, class_index) pair, or (string sentinel only) by name.
type ClassResolver interface {
	ResolveByID(id ClassID) (*ResolvedClass, error)
	ResolveByName(name string) (*ResolvedClass, error)
}

// TypeToken is a COD type reference: a primitive, an array of either, or an
// object reference (including the code-14 java/lang/String sentinel).
type TypeToken struct {
	Code      TypeCode
	Primitive string // set when the (possibly array element) type is a primitive
	IsArray   bool
	Dims      int
	IsObject  bool
	ClassID   ClassID // valid when IsObject && Code != CodeString
	Resolved  *ResolvedClass
}

// ParseTypeToken reads one type token from r. The header byte's low nybble
// selects the type code; codes 7 and 9 (and array-of-object under 8) read a
// following (mod_index, class_index) pair. Code 14 reads NO further bytes:
// it resolves by the fixed name "java/lang/String" at Resolve time, not by
// id — the original parser sets this up as a deferred by-name lookup rather
// than grouping it with 7/9's by-id lookup.
func ParseTypeToken(r *bytestream.Reader) (*TypeToken, error) {
	hdr, err := r.U8()
	if err != nil {
		return nil, fmt.Errorf("type token header: %w", err)
	}
	tc := TypeCode(hdr & 0x0f)
	tt := &TypeToken{Code: tc}

	switch tc {
	case CodeArray:
		dims, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("array dims: %w", err)
		}
		elemCode, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("array elem code: %w", err)
		}
		tt.IsArray = true
		tt.Dims = int(dims)
		tt.Code = TypeCode(elemCode)
		if tt.Code == CodeClass7 {
			tt.IsObject = true
			id, err := readClassID(r)
			if err != nil {
				return nil, err
			}
			tt.ClassID = id
		} else {
			name, ok := primitiveName[tt.Code]
			if !ok {
				return nil, fmt.Errorf("bad array element type code %d at %d", tt.Code, r.Tell())
			}
			tt.Primitive = name
		}
	case CodeClass7, CodeClass9:
		tt.IsObject = true
		id, err := readClassID(r)
		if err != nil {
			return nil, err
		}
		tt.ClassID = id
	case CodeString:
		tt.IsObject = true
	case CodeWildcard:
		// Synthetic wildcard; no payload. Never appears in well-formed module
		// bytecode, only in scanner-internal type lists.
	default:
		name, ok := primitiveName[tc]
		if !ok {
			return nil, fmt.Errorf("bad type code %d at %d", tc, r.Tell())
		}
		tt.Primitive = name
	}
	return tt, nil
}

func readClassID(r *bytestream.Reader) (ClassID, error) {
	modIdx, err := r.U8()
	if err != nil {
		return ClassID{}, fmt.Errorf("class id mod index: %w", err)
	}
	classIdx, err := r.U8()
	if err != nil {
		return ClassID{}, fmt.Errorf("class id class index: %w", err)
	}
	return ClassID{ModIndex: modIdx, ClassIndex: classIdx}, nil
}

// Resolve fills in Resolved for object-typed tokens. Primitives are no-ops.
func (t *TypeToken) Resolve(r ClassResolver) error {
	if !t.IsObject {
		return nil
	}
	var rc *ResolvedClass
	var err error
	if t.Code == CodeString {
		rc, err = r.ResolveByName("java/lang/String")
	} else {
		rc, err = r.ResolveByID(t.ClassID)
	}
	if err != nil {
		return fmt.Errorf("resolve type token: %w", err)
	}
	t.Resolved = rc
	return nil
}

// Slots returns the local-variable/stack slot width: 2 for non-array
// long/double, 0 for void, 1 otherwise.
func (t *TypeToken) Slots() int {
	switch {
	case (t.Code == CodeLong || t.Code == CodeDouble) && !t.IsArray:
		return 2
	case t.Code == CodeVoid:
		return 0
	default:
		return 1
	}
}

// JTS renders the token as a JVM-style type descriptor, e.g. "[[I" or
// "Ljava/lang/String;". Unresolved object references render with a
// placeholder rather than panicking.
func (t *TypeToken) JTS() string {
	var base string
	switch {
	case t.Code == CodeWildcard:
		base = "*"
	case t.IsObject:
		name := fmt.Sprintf("<unresolved:%d/%d>", t.ClassID.ModIndex, t.ClassID.ClassIndex)
		if t.Code == CodeString {
			name = "java/lang/String"
		}
		if t.Resolved != nil {
			name = t.Resolved.Name
		}
		base = "L" + name + ";"
	default:
		base = primitiveChar[t.Primitive]
	}
	if t.IsArray {
		base = strings.Repeat("[", t.Dims) + base
	}
	return base
}

func (t *TypeToken) String() string { return t.JTS() }

// primitiveWiden holds the strict widening order used by Compare: a
// narrower primitive compares less than "int" (gt implies more defined).
var primitiveWiden = map[[2]string]int{
	{"I", "S"}: 1, {"I", "C"}: 1, {"I", "B"}: 1, {"I", "Z"}: 1,
	{"S", "I"}: -1, {"C", "I"}: -1, {"B", "I"}: -1, {"Z", "I"}: -1,
}

// Compare implements the scanner's widening-order comparison: 0 when equal,
// -1/1 along the declared primitive widening lattice. Comparing two object
// types requires a class hierarchy and is out of scope here; callers in the
// scanner package do that comparison against the loader's class graph
// instead.
func (t *TypeToken) Compare(other *TypeToken) (int, error) {
	a, b := t.JTS(), other.JTS()
	if a == b {
		return 0, nil
	}
	if a == "*" {
		return -1, nil
	}
	if b == "*" {
		return 1, nil
	}
	if t.IsArray != other.IsArray || t.IsObject || other.IsObject {
		return 0, fmt.Errorf("codec: type compare mismatch: %s and %s", a, b)
	}
	if v, ok := primitiveWiden[[2]string{a, b}]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("codec: type compare mismatch: %s and %s", a, b)
}

// ParseJTSToken parses a single JVM-style descriptor token (one element of a
// SplitJTS result) into a TypeToken. resolveClass is only consulted for
// object types; it may be nil for wildcard/primitive-only callers.
func ParseJTSToken(jts string, resolveClass func(name string) *ResolvedClass) (*TypeToken, error) {
	i, dims := 0, 0
	for i < len(jts) && jts[i] == '[' {
		dims++
		i++
	}
	if i >= len(jts) {
		return nil, fmt.Errorf("codec: empty JTS token")
	}
	tt := &TypeToken{IsArray: dims > 0, Dims: dims}
	switch c := jts[i]; {
	case c == 'L':
		if jts[len(jts)-1] != ';' {
			return nil, fmt.Errorf("codec: JTS class token %q missing trailing ';'", jts)
		}
		name := jts[i+1 : len(jts)-1]
		tt.Code = CodeClass7
		tt.IsObject = true
		if resolveClass != nil {
			tt.Resolved = resolveClass(name)
		} else {
			tt.Resolved = &ResolvedClass{Name: name}
		}
	case c == '*':
		tt.Code = CodeWildcard
	default:
		p, ok := jtsPrimitives[c]
		if !ok {
			return nil, fmt.Errorf("codec: unknown JTS type char %q in %q", c, jts)
		}
		tt.Code = p.code
		tt.Primitive = p.name
	}
	return tt, nil
}
