package his

import (
	"testing"

	"codtool/internal/codec"
	"codtool/internal/dartfmt"
	"codtool/internal/disasm"
)

// stubResolver is a minimal Resolver backed by plain maps, standing in for
// the loader-backed implementation a real scan wires in.
type stubResolver struct {
	fields       map[int64]*codec.TypeToken
	fieldsByOff  map[int64]*codec.TypeToken
	fieldNames   map[int64]string
	sigs         map[int64]sigEntry
	virtuals     map[int64]sigEntry
	classes      map[int64]*codec.TypeToken
}

type sigEntry struct {
	name   string
	params codec.TypeList
	ret    *codec.TypeToken
}

func (r *stubResolver) FieldType(modByte, classByte byte, memberIndex int64) (*codec.TypeToken, bool) {
	tt, ok := r.fields[memberIndex]
	return tt, ok
}

func (r *stubResolver) FieldTypeByOffset(receiver *codec.TypeToken, offset int64) (string, *codec.TypeToken, bool) {
	tt, ok := r.fieldsByOff[offset]
	return r.fieldNames[offset], tt, ok
}

func (r *stubResolver) RoutineSignature(modByte, classByte byte, memberIndex int64) (codec.TypeList, *codec.TypeToken, bool) {
	e, ok := r.sigs[memberIndex]
	if !ok {
		return nil, nil, false
	}
	return e.params, e.ret, true
}

func (r *stubResolver) VirtualSignature(receiver *codec.TypeToken, vftIndex int64) (string, codec.TypeList, *codec.TypeToken, bool) {
	e, ok := r.virtuals[vftIndex]
	if !ok {
		return "", nil, nil, false
	}
	return e.name, e.params, e.ret, true
}

func (r *stubResolver) ClassType(modByte, classByte byte) (*codec.TypeToken, bool) {
	tt, ok := r.classes[int64(classByte)]
	return tt, ok
}

func newFrame(stack TStack, locals ...*codec.TypeToken) frame {
	return frame{stack: stack, locals: locals}
}

func TestApplyBipush(t *testing.T) {
	f := newFrame(nil)
	inst := disasm.Inst{Mnemonic: "bipush", Operands: []disasm.Operand{{Kind: disasm.OperandInt, I: 5}}}
	out, err := apply(inst, f, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 1 || out.stack.Top().JTS() != tInt.JTS() {
		t.Fatalf("stack = %+v, want one int", out.stack)
	}
}

func TestApplyPop(t *testing.T) {
	f := newFrame(TStack{tInt})
	out, err := apply(disasm.Inst{Mnemonic: "pop"}, f, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 0 {
		t.Fatalf("stack = %+v, want empty", out.stack)
	}
}

func TestApplyIadd(t *testing.T) {
	f := newFrame(TStack{tInt, tInt})
	out, err := apply(disasm.Inst{Mnemonic: "iadd"}, f, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 1 || out.stack.Top().JTS() != tInt.JTS() {
		t.Fatalf("stack = %+v, want one int", out.stack)
	}
}

func TestApplyIaddUnderflow(t *testing.T) {
	f := newFrame(TStack{tInt})
	if _, err := apply(disasm.Inst{Mnemonic: "iadd"}, f, nil, nil); err == nil {
		t.Fatal("expected underflow error")
	}
}

func TestApplyUnknownMnemonicLeavesFrameUnchangedAndLogsDiag(t *testing.T) {
	f := newFrame(TStack{tInt})
	diags := &dartfmt.Diags{}
	out, err := apply(disasm.Inst{Mnemonic: "totally_made_up_op"}, f, nil, diags)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 1 {
		t.Fatalf("stack = %+v, want unchanged", out.stack)
	}
	if diags.Len() != 1 {
		t.Fatalf("diags logged = %d, want 1", diags.Len())
	}
}

func TestApplyInvokestaticResolvesSignature(t *testing.T) {
	res := &stubResolver{
		sigs: map[int64]sigEntry{
			7: {params: codec.TypeList{tInt, tInt}, ret: tLong},
		},
	}
	f := newFrame(TStack{tInt, tInt})
	inst := disasm.Inst{Mnemonic: "invokestatic", Operands: []disasm.Operand{{Kind: disasm.OperandMemberRef, I: 7}}}
	out, err := apply(inst, f, res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 2 || out.stack.Top().JTS() != tLong.JTS() {
		t.Fatalf("stack = %+v, want [long,long] (wide return)", out.stack)
	}
}

func TestApplyInvokespecialPopsReceiver(t *testing.T) {
	res := &stubResolver{
		sigs: map[int64]sigEntry{
			3: {params: codec.TypeList{tInt}, ret: nil},
		},
	}
	f := newFrame(TStack{tObject, tInt}) // receiver, then one int argument
	inst := disasm.Inst{Mnemonic: "invokespecial", Operands: []disasm.Operand{{Kind: disasm.OperandMemberRef, I: 3}}}
	out, err := apply(inst, f, res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 0 {
		t.Fatalf("stack = %+v, want empty (receiver + arg popped, void return)", out.stack)
	}
}

func TestApplyInvokevirtualFallsBackToWildcardReturn(t *testing.T) {
	// invokevirtual's operand carries a vtable offset plus an argument count,
	// never a class reference a Resolver could look a signature up by.
	f := newFrame(TStack{tObject, tInt})
	inst := disasm.Inst{Mnemonic: "invokevirtual", Operands: []disasm.Operand{{Kind: disasm.OperandIntPair, I: 12, I2: 2}}}
	out, err := apply(inst, f, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 1 || out.stack.Top().JTS() != tWild.JTS() {
		t.Fatalf("stack = %+v, want one wildcard", out.stack)
	}
}

func TestApplyGetstaticResolvesByClassRef(t *testing.T) {
	res := &stubResolver{fields: map[int64]*codec.TypeToken{9: tObject}}
	inst := disasm.Inst{Mnemonic: "getstatic", Operands: []disasm.Operand{{Kind: disasm.OperandMemberRef, I: 9}}}
	out, err := apply(inst, newFrame(nil), res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.stack.Top().JTS() != tObject.JTS() {
		t.Fatalf("top = %v, want resolved object field type", out.stack.Top())
	}
}

func TestApplyGetfieldResolvesByReceiverOffset(t *testing.T) {
	res := &stubResolver{fieldsByOff: map[int64]*codec.TypeToken{4: tInt}}
	inst := disasm.Inst{Mnemonic: "getfield", Operands: []disasm.Operand{{Kind: disasm.OperandInt, I: 4}}}
	out, err := apply(inst, newFrame(TStack{tObject}), res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 1 || out.stack.Top().JTS() != tInt.JTS() {
		t.Fatalf("stack = %+v, want one resolved int field", out.stack)
	}
}

func TestApplyAloadZeroGetfieldUsesLocalZeroAsReceiver(t *testing.T) {
	res := &stubResolver{fieldsByOff: map[int64]*codec.TypeToken{2: tFloat}}
	f := newFrame(nil, tObject)
	inst := disasm.Inst{Mnemonic: "aload_0_getfield", Operands: []disasm.Operand{{Kind: disasm.OperandInt, I: 2}}}
	out, err := apply(inst, f, res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 1 || out.stack.Top().JTS() != tFloat.JTS() {
		t.Fatalf("stack = %+v, want one resolved float field", out.stack)
	}
}

func TestApplyPutfieldPopsValueAndReceiver(t *testing.T) {
	f := newFrame(TStack{tObject, tInt})
	out, err := apply(disasm.Inst{Mnemonic: "putfield"}, f, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 0 {
		t.Fatalf("stack = %+v, want empty", out.stack)
	}
}

func TestApplyDupAndCheckcast(t *testing.T) {
	f := newFrame(TStack{tObject})
	out, err := apply(disasm.Inst{Mnemonic: "dup"}, f, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 2 {
		t.Fatalf("stack = %+v, want 2 after dup", out.stack)
	}
	out, err = apply(disasm.Inst{Mnemonic: "checkcast"}, out, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.stack) != 2 {
		t.Fatalf("stack = %+v, want unchanged length after checkcast", out.stack)
	}
}

func TestApplyDupUnderflow(t *testing.T) {
	if _, err := apply(disasm.Inst{Mnemonic: "dup"}, newFrame(nil), nil, nil); err == nil {
		t.Fatal("expected underflow error on empty stack")
	}
}

func TestApplyLoadStoreShorthandUsesFixedSlot(t *testing.T) {
	f := newFrame(nil, tInt, tLong, tLong, tFloat)
	out, err := apply(disasm.Inst{Mnemonic: "iload_3"}, f, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.stack.Top().JTS() != tFloat.JTS() {
		t.Fatalf("iload_3 pushed %v, want local slot 3's type (float)", out.stack.Top())
	}

	f2 := newFrame(TStack{tDouble})
	out2, err := apply(disasm.Inst{Mnemonic: "istore_2"}, f2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out2.locals) < 3 || out2.locals[2].JTS() != tDouble.JTS() {
		t.Fatalf("locals = %+v, want slot 2 set to the stored type", out2.locals)
	}
}
