package his

import "codtool/internal/codec"

// Convenience constructors for the handful of primitive types the transfer
// functions need to push by themselves, without going through the binary
// parser or the JTS text form.
func prim(name string) *codec.TypeToken {
	code, ok := primitiveCodes[name]
	if !ok {
		panic("his: unknown primitive " + name)
	}
	return &codec.TypeToken{Code: code, Primitive: name}
}

var primitiveCodes = map[string]codec.TypeCode{
	"boolean": codec.CodeBoolean,
	"byte":    codec.CodeByte,
	"char":    codec.CodeChar,
	"short":   codec.CodeShort,
	"int":     codec.CodeInt,
	"long":    codec.CodeLong,
	"void":    codec.CodeVoid,
	"float":   codec.CodeFloat,
	"double":  codec.CodeDouble,
}

var (
	tInt    = prim("int")
	tLong   = prim("long")
	tFloat  = prim("float")
	tDouble = prim("double")
	tWild   = &codec.TypeToken{Code: codec.CodeWildcard}
	tObject = &codec.TypeToken{Code: codec.CodeClass7, IsObject: true}
)

// Resolver looks up the static types a reference-carrying instruction needs
// but can't derive from its own operand bytes: a field's declared type, or
// a routine's parameter/return signature. It is deliberately narrow so the
// scanner can run against a stub in tests without a full module graph; a
// concrete implementation backed by internal/loader is wired in by the
// caller that owns a *loader.Loader.
type Resolver interface {
	// FieldType resolves a static field reference (class + member-table
	// index, as encoded by getstatic/putstatic and friends) to its declared
	// type. ok is false if the reference can't be resolved (e.g. missing
	// fixup entry); the scan then falls back to the wildcard type rather
	// than failing.
	FieldType(modByte, classByte byte, memberIndex int64) (tt *codec.TypeToken, ok bool)

	// FieldTypeByOffset resolves an instance field access (getfield/putfield
	// and friends encode only a byte offset into the receiver's layout, not
	// a class/member pair) given the receiver's own tracked type. name is
	// the field's declared name, used to patch the operand with its
	// concrete target.
	FieldTypeByOffset(receiver *codec.TypeToken, offset int64) (name string, tt *codec.TypeToken, ok bool)

	// RoutineSignature resolves an invoke target's parameter types and
	// return type.
	RoutineSignature(modByte, classByte byte, memberIndex int64) (params codec.TypeList, ret *codec.TypeToken, ok bool)

	// VirtualSignature resolves an invokevirtual(_short) target through the
	// receiver's own class's virtual function table, by vtable slot index,
	// to the concrete method this call dispatches to.
	VirtualSignature(receiver *codec.TypeToken, vftIndex int64) (name string, params codec.TypeList, ret *codec.TypeToken, ok bool)

	// ClassType resolves a classref operand to the object type it names.
	ClassType(modByte, classByte byte) (tt *codec.TypeToken, ok bool)
}

// Counters accumulates the operand-patching outcomes a scan session
// produces, summarized into Stats once the scan completes.
type Counters struct {
	FieldsPatched      int
	FieldPatchFailed   int
	VirtualsPatched    int
	VirtualPatchFailed int
}
