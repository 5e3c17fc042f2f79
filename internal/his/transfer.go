package his

import (
	"fmt"

	"codtool/internal/codec"
	"codtool/internal/dartfmt"
	"codtool/internal/disasm"
	"codtool/internal/errkind"
)

// frame is the abstract machine state flowing through a block scan: a type
// stack and a local variable array (seeded from the routine's local count,
// and grown by setLocal when a store indexes past its end). Counters is a shared pointer
// threaded alongside the stack/locals (not cloned with them) so every
// handler invocation accumulates into the same session-wide totals.
type frame struct {
	stack    TStack
	locals   []*codec.TypeToken
	Counters *Counters
}

// apply simulates one instruction's effect on f, returning the resulting
// frame. Unrecognized mnemonics are a documented no-op: the stack is left
// unchanged and a diagnostic is recorded, rather than aborting the scan,
// mirroring the scanner's own implicit-no-op-plus-warning behavior for
// instructions it has no handler for.
func apply(inst disasm.Inst, f frame, res Resolver, diags *dartfmt.Diags) (frame, error) {
	h, ok := handlers[inst.Mnemonic]
	if !ok {
		if diags != nil {
			diags.Addf(uint64(inst.Offset), dartfmt.DiagUnknownTag,
				"no stack-effect handler for %s, leaving frame unchanged", inst.Mnemonic)
		}
		return f, nil
	}
	return h(inst, f, res)
}

type handlerFunc func(inst disasm.Inst, f frame, res Resolver) (frame, error)

func push1(f frame, tt *codec.TypeToken) (frame, error) {
	if err := f.stack.Push(tt, 1); err != nil {
		return f, err
	}
	return f, nil
}

func popN(f frame, n int) (frame, error) {
	if _, err := f.stack.Pop(n); err != nil {
		return f, err
	}
	return f, nil
}

func popPush(f frame, popSlots int, tt *codec.TypeToken) (frame, error) {
	if popSlots > 0 {
		if _, err := f.stack.Pop(popSlots); err != nil {
			return f, err
		}
	}
	if err := f.stack.Push(tt, 1); err != nil {
		return f, err
	}
	return f, nil
}

// localIndex extracts the local-slot index from an instruction's first
// integer operand, falling back to 0 for the _0.._7 shorthand forms that
// carry no operand at all (the mnemonic's own trailing digit is the index,
// handled by the caller's table split instead).
func localIndex(inst disasm.Inst) int {
	if len(inst.Operands) == 0 {
		return 0
	}
	return int(inst.Operands[0].I)
}

func getLocal(f frame, idx int) *codec.TypeToken {
	if idx < 0 || idx >= len(f.locals) || f.locals[idx] == nil {
		return tWild
	}
	return f.locals[idx]
}

func setLocal(f frame, idx int, tt *codec.TypeToken) frame {
	if idx < 0 {
		return f
	}
	for idx >= len(f.locals) {
		f.locals = append(f.locals, nil)
	}
	f.locals[idx] = tt
	if tt.Slots() == 2 && idx+1 < len(f.locals) {
		f.locals[idx+1] = tt
	}
	return f
}

// staticFieldType resolves a getstatic/putstatic-family reference: its
// operand is a genuine (class, member index) pair, decoded as OperandMemberRef.
func staticFieldType(inst disasm.Inst, res Resolver) *codec.TypeToken {
	if len(inst.Operands) == 0 || res == nil {
		return tWild
	}
	op := inst.Operands[0]
	tt, ok := res.FieldType(op.ClassRef.ModByte, op.ClassRef.ClassByte, op.I)
	if !ok {
		return tWild
	}
	return tt
}

// stackAt returns the stack element depthFromTop slots below the top (0 is
// the top itself), or nil if the stack is too shallow.
func stackAt(f frame, depthFromTop int) *codec.TypeToken {
	n := len(f.stack)
	idx := n - 1 - depthFromTop
	if idx < 0 || idx >= n {
		return nil
	}
	return f.stack[idx]
}

// resolveAndPatchField resolves a getfield/putfield-family operand's target
// field against the receiver's tracked type, and — if resolved — patches
// the operand in place with the concrete field's name/type so a later
// listing shows it instead of a bare byte offset. A receiver whose own
// type isn't yet tracked (nil, or still the wildcard) is not a failure:
// the scan simply hasn't learned enough to patch this operand yet, so it
// falls back to the wildcard silently, matching every other best-effort
// fallback in this file. A tracked, non-wildcard receiver whose offset
// doesn't resolve to any declared field is a genuine patch failure and
// aborts the block scan.
func resolveAndPatchField(inst disasm.Inst, receiver *codec.TypeToken, res Resolver, c *Counters) (*codec.TypeToken, error) {
	if len(inst.Operands) == 0 || res == nil || receiver == nil || receiver.Code == codec.CodeWildcard {
		return tWild, nil
	}
	name, tt, ok := res.FieldTypeByOffset(receiver, inst.Operands[0].I)
	if !ok {
		if c != nil {
			c.FieldPatchFailed++
		}
		return nil, errkind.New(errkind.FieldPatchFailed, "", "", inst.Operands[0].I,
			fmt.Errorf("no field at offset %d on %s", inst.Operands[0].I, receiver.JTS()))
	}
	inst.Operands[0].ResolvedName = name
	inst.Operands[0].ResolvedJTS = tt.JTS()
	if c != nil {
		c.FieldsPatched++
	}
	return tt, nil
}

// resolveAndPatchVirtual is resolveAndPatchField's counterpart for
// invokevirtual(_short): the operand's slot indexes the receiver's own
// class's VFT rather than a field layout.
func resolveAndPatchVirtual(inst disasm.Inst, receiver *codec.TypeToken, res Resolver, c *Counters) (*codec.TypeToken, error) {
	if len(inst.Operands) == 0 || res == nil || receiver == nil || receiver.Code == codec.CodeWildcard {
		return tWild, nil
	}
	name, _, ret, ok := res.VirtualSignature(receiver, inst.Operands[0].I)
	if !ok {
		if c != nil {
			c.VirtualPatchFailed++
		}
		return nil, errkind.New(errkind.VirtualPatchFailed, "", "", inst.Operands[0].I,
			fmt.Errorf("no virtual method at vft slot %d on %s", inst.Operands[0].I, receiver.JTS()))
	}
	inst.Operands[0].ResolvedName = name
	if ret != nil {
		inst.Operands[0].ResolvedJTS = ret.JTS()
	}
	if c != nil {
		c.VirtualsPatched++
	}
	return ret, nil
}

func routineSignature(inst disasm.Inst, res Resolver) (codec.TypeList, *codec.TypeToken) {
	if len(inst.Operands) == 0 || res == nil {
		return nil, tWild
	}
	op := inst.Operands[0]
	params, ret, ok := res.RoutineSignature(op.ClassRef.ModByte, op.ClassRef.ClassByte, op.I)
	if !ok {
		return nil, tWild
	}
	return params, ret
}

// invokeByRef pops one argument slot per parameter (plus an implicit
// receiver unless static), then pushes the return value unless it's void.
// Used by the invoke shapes that carry an explicit (class, member index)
// reference — invokestatic*, invokespecial*, invokestaticqc* — the ones a
// Resolver can actually look a signature up for.
func invokeByRef(inst disasm.Inst, f frame, res Resolver, static bool) (frame, error) {
	params, ret := routineSignature(inst, res)
	popSlots := params.Slots()
	if !static {
		popSlots++ // receiver object reference
	}
	if popSlots > 0 {
		if _, err := f.stack.Pop(popSlots); err != nil {
			return f, err
		}
	}
	if ret != nil && ret.Code != codec.CodeVoid {
		if err := f.stack.Push(ret, 1); err != nil {
			return f, err
		}
	}
	return f, nil
}

// invokeByCount pops exactly n stack slots (the encoded argument-plus-
// receiver count, already resolved at link time into the instruction
// itself) and pushes ret unless it's nil or void. Used by the invoke shapes
// that carry an argument count rather than an inline class/member
// reference: invokevirtual(_short), whose ret comes from the receiver's VFT
// once the receiver's type is tracked (the wildcard otherwise);
// invokeinterface, which always pushes the wildcard; the invoke*native
// forms, which push nothing, an int or a long according to the mnemonic;
// and jumpspecial, which pushes nothing.
func invokeByCount(f frame, n int, ret *codec.TypeToken) (frame, error) {
	if n > 0 {
		if _, err := f.stack.Pop(n); err != nil {
			return f, err
		}
	}
	if ret != nil && ret.Code != codec.CodeVoid {
		if err := f.stack.Push(ret, 1); err != nil {
			return f, err
		}
	}
	return f, nil
}

// handlers maps mnemonic to stack-effect simulator. Grouped by the same
// families original_source's his.py dispatches on via per-mnemonic _<name>
// methods.
var handlers map[string]handlerFunc

func init() {
	handlers = map[string]handlerFunc{}
	regConsts()
	regLoadsStores()
	regFields()
	regArith()
	regArrays()
	regStackOps()
	regInvokes()
	regObjects()
	regConversions()
	regCompares()
	regMisc()
}

func reg(names []string, h handlerFunc) {
	for _, n := range names {
		handlers[n] = h
	}
}

func regConsts() {
	reg([]string{"aconst_null"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return push1(f, tObject)
	})
	reg([]string{"iconst_0", "iconst_1"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return push1(f, tInt)
	})
	reg([]string{"dconst_0", "dconst_1"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return push1(f, tDouble)
	})
	reg([]string{"fconst_0", "fconst_1", "fconst_2"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return push1(f, tFloat)
	})
	reg([]string{"bipush", "sipush", "iipush"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return push1(f, tInt)
	})
	reg([]string{"lipush"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return push1(f, tLong)
	})
	reg([]string{"ldc", "ldc_unicode", "ldc_nullstr", "ldc_class", "ldc_class_lib"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return push1(f, tObject)
	})
	reg([]string{"arrayinit", "stringarrayinit"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return push1(f, tObject)
	})
}

// loadLocal reads the type already recorded for a local slot rather than
// assuming a fixed type from the opcode: a slot's tracked type came either
// from the routine's own parameter signature or from whatever was last
// stored there, both of which are more precise than the mnemonic's nominal
// int/long/object hint.
func loadLocal(inst disasm.Inst, f frame) (frame, error) {
	return push1(f, getLocal(f, localIndex(inst)))
}

func storeLocal(inst disasm.Inst, f frame) (frame, error) {
	idx := localIndex(inst)
	v, err := f.stack.Pop(1)
	if err != nil {
		return f, err
	}
	return setLocal(f, idx, v[0]), nil
}

func regLoadsStores() {
	loadHandler := func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return loadLocal(inst, f) }
	reg([]string{"iload", "iload_wide", "aload", "aload_wide", "lload", "lload_wide"}, loadHandler)
	for i := 0; i <= 7; i++ {
		idx := i
		fixedLoad := func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
			return push1(f, getLocal(f, idx))
		}
		reg([]string{shorthand("iload", idx), shorthand("aload", idx)}, fixedLoad)
	}

	storeHandler := func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return storeLocal(inst, f) }
	reg([]string{"istore", "istore_wide", "astore", "astore_wide", "lstore", "lstore_wide"}, storeHandler)
	for i := 0; i <= 7; i++ {
		idx := i
		fixedStore := func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
			v, err := f.stack.Pop(1)
			if err != nil {
				return f, err
			}
			return setLocal(f, idx, v[0]), nil
		}
		reg([]string{shorthand("istore", idx), shorthand("astore", idx)}, fixedStore)
	}
}

func shorthand(base string, i int) string {
	return base + "_" + [...]string{"0", "1", "2", "3", "4", "5", "6", "7"}[i]
}

func regFields() {
	// getstatic/putstatic family: genuine (class, member index) operand.
	reg([]string{"getstatic", "getstatic_lib"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return push1(f, staticFieldType(inst, res))
	})
	reg([]string{"lgetstatic", "lgetstatic_lib"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return push1(f, tLong)
	})
	reg([]string{"putstatic", "putstatic_lib"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 1) })
	reg([]string{"lputstatic", "lputstatic_lib"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 2) })

	// getfield/putfield family: bare byte offset, resolved against the
	// receiver's own tracked type (top of stack for get*, one below the
	// value being stored for put*), patching the operand in place.
	reg([]string{"getfield", "getfield_wide"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		if len(f.stack) == 0 {
			return f, errUnderflow(inst.Mnemonic)
		}
		tt, err := resolveAndPatchField(inst, f.stack.Top(), res, f.Counters)
		if err != nil {
			return f, err
		}
		if _, err := f.stack.Pop(1); err != nil {
			return f, err
		}
		return push1(f, tt)
	})
	reg([]string{"lgetfield", "lgetfield_wide"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		if len(f.stack) == 0 {
			return f, errUnderflow(inst.Mnemonic)
		}
		if _, err := resolveAndPatchField(inst, f.stack.Top(), res, f.Counters); err != nil {
			return f, err
		}
		return popPush(f, 1, tLong)
	})
	reg([]string{"aload_0_getfield", "aload_0_getfield_wide"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		tt, err := resolveAndPatchField(inst, getLocal(f, 0), res, f.Counters)
		if err != nil {
			return f, err
		}
		return push1(f, tt)
	})
	reg([]string{"putfield", "putfield_wide"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		if _, err := resolveAndPatchField(inst, stackAt(f, 1), res, f.Counters); err != nil {
			return f, err
		}
		return popN(f, 2)
	})
	reg([]string{"lputfield", "lputfield_wide"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		if _, err := resolveAndPatchField(inst, stackAt(f, 2), res, f.Counters); err != nil {
			return f, err
		}
		return popN(f, 3)
	})
	reg([]string{"putfield_return", "putfield_return_wide"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		if _, err := resolveAndPatchField(inst, stackAt(f, 1), res, f.Counters); err != nil {
			return f, err
		}
		return popN(f, 2) // value + receiver
	})
}

func regArith() {
	binaryInt := func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tInt) }
	binaryLong := func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 4, tLong) }
	binaryFloat := func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tFloat) }
	binaryDouble := func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 4, tDouble) }
	unaryInt := func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tInt) }
	unaryLong := func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tLong) }

	reg([]string{"iadd", "isub", "imul", "idiv", "irem", "iand", "ior", "ixor",
		"ishl", "ishr", "iushr"}, binaryInt)
	reg([]string{"ladd", "lsub", "lmul", "ldiv", "lrem", "land", "lor", "lxor"}, binaryLong)
	// shift counts are single-slot ints even for the long operand forms
	reg([]string{"lshl", "lshr", "lushr"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		if _, err := f.stack.Pop(1); err != nil { // shift count
			return f, err
		}
		return popPush(f, 2, tLong)
	})
	reg([]string{"fadd", "fsub", "fmul", "fdiv", "frem"}, binaryFloat)
	reg([]string{"dadd", "dsub", "dmul", "ddiv", "drem"}, binaryDouble)
	reg([]string{"ineg"}, unaryInt)
	reg([]string{"lneg"}, unaryLong)
	reg([]string{"fneg"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tFloat) })
	reg([]string{"dneg"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tDouble) })
	reg([]string{"iinc", "iinc_wide"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return f, nil })
}

func regCompares() {
	cmp := func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tInt) }
	cmpWide := func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 4, tInt) }
	reg([]string{"lcmp", "fcmpl", "fcmpg"}, cmp)
	reg([]string{"dcmpl", "dcmpg"}, cmpWide)
	reg([]string{
		"if_icmpeq", "if_acmpeq", "if_icmpne", "if_acmpne", "if_icmpgt",
		"if_icmpge", "if_icmplt", "if_icmple",
	}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 2) })
	reg([]string{"ifeq", "ifne", "ifgt", "ifge", "iflt", "ifle", "ifnull", "ifnonnull"},
		func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 1) })
}

func regConversions() {
	reg([]string{"i2b", "i2s", "i2c"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tInt) })
	reg([]string{"i2l"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tLong) })
	reg([]string{"l2i"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tInt) })
	reg([]string{"i2f"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tFloat) })
	reg([]string{"i2d"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tDouble) })
	reg([]string{"l2f"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tFloat) })
	reg([]string{"l2d"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tDouble) })
	reg([]string{"f2i"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tInt) })
	reg([]string{"f2l"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tLong) })
	reg([]string{"f2d"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tDouble) })
	reg([]string{"d2i"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tInt) })
	reg([]string{"d2l"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tLong) })
	reg([]string{"d2f"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tFloat) })
}

func regArrays() {
	reg([]string{"newarray", "newarray_object", "newarray_object_lib"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return popPush(f, 1, tObject) // pop length, push array ref
	})
	reg([]string{"multianewarray", "multianewarray_object", "multianewarray_object_lib"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		dims := 1
		if len(inst.Operands) > 0 && inst.Operands[0].I2 > 0 {
			dims = int(inst.Operands[0].I2)
		}
		if _, err := f.stack.Pop(dims); err != nil {
			return f, err
		}
		return push1(f, tObject)
	})
	reg([]string{"arraylength"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tInt) })
	reg([]string{"baload", "saload", "caload", "iaload"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tInt) })
	reg([]string{"laload"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tLong) })
	reg([]string{"aaload", "stringaload"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 2, tObject) })
	reg([]string{"bastore", "castore", "sastore", "iastore"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 3) })
	reg([]string{"lastore"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 4) })
	reg([]string{"aastore"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 3) })
}

func regStackOps() {
	reg([]string{"pop"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 1) })
	reg([]string{"pop2"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 2) })
	reg([]string{"nop", "breakpoint"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return f, nil })
	reg([]string{"dup"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		if len(f.stack) == 0 {
			return f, errUnderflow("dup")
		}
		return push1(f, f.stack.Top())
	})
	reg([]string{"dup2"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		if len(f.stack) < 2 {
			return f, errUnderflow("dup2")
		}
		a, b := f.stack[len(f.stack)-2], f.stack[len(f.stack)-1]
		f.stack = append(f.stack, a, b)
		return f, nil
	})
	reg([]string{"swap"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		n := len(f.stack)
		if n < 2 {
			return f, errUnderflow("swap")
		}
		f.stack[n-1], f.stack[n-2] = f.stack[n-2], f.stack[n-1]
		return f, nil
	})
	reg([]string{"dup_x1"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		n := len(f.stack)
		if n < 2 {
			return f, errUnderflow("dup_x1")
		}
		top := f.stack[n-1]
		f.stack = append(f.stack[:n-2], top, f.stack[n-2], top)
		return f, nil
	})
	reg([]string{"dup_x2"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		n := len(f.stack)
		if n < 3 {
			return f, errUnderflow("dup_x2")
		}
		top := f.stack[n-1]
		tail := append(TStack{}, f.stack[n-3], f.stack[n-2], top)
		f.stack = append(append(f.stack[:n-3], top), tail...)
		return f, nil
	})
	reg([]string{"dup2_x1", "dup2_x2"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		// rare wide-dup forms; conservatively duplicate the top pair in place.
		if len(f.stack) < 2 {
			return f, errUnderflow(inst.Mnemonic)
		}
		a, b := f.stack[len(f.stack)-2], f.stack[len(f.stack)-1]
		f.stack = append(f.stack, a, b)
		return f, nil
	})
}

func regInvokes() {
	// invokespecial/invokenonvirtual carry a (mod byte, method index) member
	// reference a Resolver can look a signature up by.
	reg([]string{"invokenonvirtual", "invokenonvirtual_lib", "invokespecial", "invokespecial_lib"},
		func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return invokeByRef(inst, f, res, false) })
	reg([]string{"invokestatic", "invokestatic_lib", "invokestaticqc", "invokestaticqc_lib"},
		func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return invokeByRef(inst, f, res, true) })

	// invokevirtual(_short) carries a vtable slot index in I and the
	// encoded local/argument count (receiver included) in I2: the receiver
	// itself sits argSlots deep on the stack, so once its own type is
	// tracked the slot resolves through that class's VFT and the operand
	// is patched with the concrete target. invokeinterface/invoke*native
	// resolve through a runtime interface-method table or native function
	// address instead, for which no per-class VFT applies, so they keep
	// falling back to the wildcard (a later interprocedural pass with full
	// call-graph information could do better for invokeinterface).
	reg([]string{"invokevirtual", "invokevirtual_short"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		argSlots := operandI2(inst)
		if argSlots < 1 {
			argSlots = 1
		}
		ret, err := resolveAndPatchVirtual(inst, stackAt(f, argSlots-1), res, f.Counters)
		if err != nil {
			return f, err
		}
		return invokeByCount(f, argSlots, ret)
	})
	reg([]string{"invokeinterface"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return invokeByCount(f, operandI2(inst), tWild) // the single u8 field: local/argument count
	})
	reg([]string{"invokenative"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return invokeByCount(f, operandI(inst), nil)
	})
	reg([]string{"iinvokenative"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return invokeByCount(f, operandI(inst), tInt)
	})
	reg([]string{"linvokenative"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		return invokeByCount(f, operandI(inst), tLong)
	})

	// jumpspecial transfers control to another routine's entry without
	// returning here (it's classified as a terminal), so it pops whatever
	// argument slots are resolvable but never pushes a result into this
	// frame.
	reg([]string{"jumpspecial", "jumpspecial_lib"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		params, _ := routineSignature(inst, res)
		return invokeByCount(f, params.Slots(), nil)
	})
}

func operandI(inst disasm.Inst) int {
	if len(inst.Operands) == 0 {
		return 0
	}
	return int(inst.Operands[0].I)
}

func operandI2(inst disasm.Inst) int {
	if len(inst.Operands) == 0 {
		return 0
	}
	return int(inst.Operands[0].I2)
}

func regObjects() {
	reg([]string{"new", "new_lib"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		tt := tObject
		if len(inst.Operands) > 0 && res != nil {
			if t, ok := res.ClassType(inst.Operands[0].ClassRef.ModByte, inst.Operands[0].ClassRef.ClassByte); ok {
				tt = t
			}
		}
		return push1(f, tt)
	})
	reg([]string{"instanceof", "instanceof_lib", "instanceof_array", "instanceof_arrayobject", "instanceof_arrayobject_lib"},
		func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tInt) })
	reg([]string{"checkcast", "checkcast_lib", "checkcast_array", "checkcast_arrayobject", "checkcast_arrayobject_lib",
		"checkcastbranch", "checkcastbranch_lib", "checkcastbranch_array"},
		func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
			if len(f.stack) == 0 {
				return f, errUnderflow(inst.Mnemonic)
			}
			top := f.stack.Top() // checkcast leaves the (narrowed) reference on top
			if _, err := f.stack.Pop(1); err != nil {
				return f, err
			}
			return push1(f, top)
		})
	reg([]string{"athrow"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 1) })
	reg([]string{"monitorenter", "monitorexit"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 1) })
}

func regMisc() {
	returnsInt := []string{"ireturn", "ireturn_bipush", "ireturn_sipush", "ireturn_iipush"}
	reg(returnsInt, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 1) })
	reg([]string{"ireturn_field", "ireturn_field_wide"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return f, nil })
	reg([]string{"areturn", "areturn_field", "areturn_field_wide"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) {
		if inst.Mnemonic == "areturn" {
			return popN(f, 1)
		}
		return f, nil
	})
	reg([]string{"lreturn"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 2) })
	reg([]string{"return", "clinit_return", "noenter_return", "halt", "clinit_wait", "clinit", "clinit_lib",
		"synch", "synch_static", "enter", "enter_wide", "enter_narrow", "xenter", "xenter_wide", "op01xx", "isreal"},
		func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return f, nil })
	reg([]string{"tableswitch", "lookupswitch", "lookupswitch_short"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popN(f, 1) })
	reg([]string{"stringlength"}, func(inst disasm.Inst, f frame, res Resolver) (frame, error) { return popPush(f, 1, tInt) })
}

func errUnderflow(mnemonic string) error {
	return &stackError{mnemonic}
}

type stackError struct{ mnemonic string }

func (e *stackError) Error() string { return "his: stack underflow simulating " + e.mnemonic }
