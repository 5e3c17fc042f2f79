package disasm

// Opcode identifies one instruction in the 512-slot bytecode space: 256
// direct codes plus 256 reached only through the escape prefix (see Esc).
type Opcode int

// Esc is the byte value that extends the next opcode's range by 256. It
// never appears as a final opcode itself.
const Esc = 216

// Mnemonic returns the instruction name for an opcode (unused slots give
// their unused_XX name), or "" if op is outside the table.
func Mnemonic(op Opcode) string {
	if int(op) < 0 || int(op) >= len(opcodeNames) {
		return ""
	}
	return opcodeNames[op]
}

// opcodeNames is the full 292-entry mnemonic table, indexed by opcode
// value. Unused slots are named unused_XX for traceability back to their
// byte value; bad/reserved slots are listed in badOpcodeSet below.
var opcodeNames = []string{
	"breakpoint", "invokevirtual", "invokeinterface", "invokenonvirtual",
	"invokenonvirtual_lib", "invokespecial", "invokespecial_lib", "invokestatic",
	"invokestatic_lib", "iinvokenative", "invokenative", "linvokenative",
	"jumpspecial", "jumpspecial_lib", "enter", "enter_wide", "xenter",
	"xenter_wide", "synch", "synch_static", "clinit_wait", "ireturn_bipush",
	"ireturn_sipush", "ireturn_iipush", "ireturn", "ireturn_field",
	"ireturn_field_wide", "areturn", "areturn_field", "areturn_field_wide",
	"lreturn", "return", "clinit_return", "noenter_return", "aconst_null",
	"iconst_0", "bipush", "sipush", "iipush", "lipush", "ldc", "unused_29",
	"ldc_unicode", "unused_2b", "iconst_1", "arrayinit", "unused_2e",
	"tableswitch", "unused_30", "iload", "iload_wide", "aload", "aload_wide",
	"lload", "lload_wide", "iload_0", "iload_1", "iload_2", "iload_3",
	"iload_4", "iload_5", "iload_6", "iload_7", "aload_0", "aload_1", "aload_2",
	"aload_3", "aload_4", "aload_5", "aload_6", "aload_7", "istore",
	"istore_wide", "astore", "astore_wide", "lstore", "lstore_wide", "istore_0",
	"istore_1", "istore_2", "istore_3", "istore_4", "istore_5", "istore_6",
	"istore_7", "astore_0", "astore_1", "astore_2", "astore_3", "astore_4",
	"astore_5", "astore_6", "astore_7", "putfield_return", "putfield_return_wide",
	"putfield", "putfield_wide", "lputfield", "lputfield_wide", "getfield",
	"getfield_wide", "lgetfield", "lgetfield_wide", "aload_0_getfield",
	"aload_0_getfield_wide", "putstatic", "putstatic_lib", "lputstatic",
	"lputstatic_lib", "getstatic", "getstatic_lib", "lgetstatic", "lgetstatic_lib",
	"i2b", "i2s", "i2c", "i2l", "l2i", "ineg", "lneg", "iinc", "iinc_wide", "iadd",
	"ladd", "isub", "lsub", "imul", "lmul", "idiv", "ldiv", "irem", "lrem", "iand",
	"land", "ior", "lor", "ixor", "lxor", "ishl", "lshl", "ishr", "lshr", "iushr",
	"lushr", "lcmp", "if_icmpeq", "if_acmpeq", "ifeq", "if_icmpne", "if_acmpne",
	"ifne", "if_icmpgt", "ifgt", "if_icmpge", "ifge", "if_icmplt", "iflt",
	"if_icmple", "ifle", "ifnull", "ifnonnull", "goto", "goto_w",
	"lookupswitch_short", "lookupswitch", "newarray", "multianewarray",
	"arraylength", "newarray_object", "newarray_object_lib",
	"multianewarray_object", "multianewarray_object_lib", "baload", "saload",
	"caload", "iaload", "aaload", "laload", "bastore", "castore", "sastore",
	"iastore", "aastore", "lastore", "new", "new_lib", "clinit", "clinit_lib",
	"athrow", "instanceof_array", "checkcast_array", "instanceof",
	"instanceof_lib", "checkcast", "checkcast_lib", "checkcastbranch",
	"checkcastbranch_lib", "checkcastbranch_array", "instanceof_arrayobject",
	"instanceof_arrayobject_lib", "checkcast_arrayobject",
	"checkcast_arrayobject_lib", "monitorenter", "monitorexit", "nop", "pop",
	"pop2", "dup", "dup2", "dup_x1", "dup_x2", "dup2_x1", "dup2_x2", "swap",
	"unused_d6", "isreal", "op01xx", "stringlength", "stringaload",
	"invokestaticqc", "invokestaticqc_lib", "enter_narrow", "invokevirtual_short",
	"ldc_nullstr", "unused_e0", "unused_e1", "unused_e2", "unused_e3", "unused_e4",
	"unused_e5", "unused_e6", "unused_e7", "unused_e8", "unused_e9", "unused_ea",
	"unused_eb", "unused_ec", "unused_ed", "unused_ee", "unused_ef", "unused_f0",
	"unused_f1", "unused_f2", "unused_f3", "unused_f4", "unused_f5", "unused_f6",
	"unused_f7", "unused_f8", "unused_f9", "halt", "threaddeath", "errOp1",
	"errOp2", "unused_fe", "unused_ff", "fadd", "dadd", "fsub", "dsub", "fmul",
	"dmul", "fdiv", "ddiv", "frem", "drem", "fneg", "dneg", "i2f", "i2d", "l2f",
	"l2d", "f2i", "f2l", "f2d", "d2i", "d2l", "d2f", "fcmpl", "fcmpg", "dcmpl",
	"dcmpg", "stringarrayinit", "jmpback", "jmpforward", "dconst_0", "dconst_1",
	"fconst_0", "fconst_1", "fconst_2", "ldc_class", "ldc_class_lib",
}

// opcodeSizes gives the fixed instruction length (opcode byte(s) included)
// for every mnemonic in opcodeNames, in the same order. 0 means variable
// length (the operand decoder computes it).
var opcodeSizes = []int{
	1, 4, 6, 4, 5, 4, 5, 4, 5, 4, 4, 4, 3, 4, 1, 4, 1, 4, 1, 2, 1, 2, 3, 5, 1, 2, 2,
	1, 2, 2, 1, 1, 1, 1, 1, 1, 2, 3, 5, 9, 3, 1, 5, 1, 1, 6, 1, 0, 1, 2, 3, 2, 3, 2,
	3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 3, 2, 3, 2, 3, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 4, 5, 4,
	5, 4, 5, 4, 5, 1, 1, 1, 1, 1, 1, 1, 3, 5, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	3, 0, 0, 2, 4, 1, 2, 3, 4, 5, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 3, 2, 3, 1,
	3, 3, 2, 3, 2, 3, 4, 5, 5, 3, 4, 3, 4, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 4, 5, 1, 2, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 3, 3, 1, 1, 1, 1, 1, 2, 3,
}

// Operand cluster membership, mirroring each equivalent-operand-shape group.
// Ranges and singleton sets are expressed as map[Opcode]bool for O(1) tests.
var (
	branchNear    = rangeSet(145, 161)
	branchFar     = opSet(162)
	branchUp      = opSet(283)
	branchDown    = opSet(284)
	singleUByte   = opSet(49, 51, 53, 71, 73, 75)
	singleSByte   = opSet(21, 36)
	singleSWord   = opSet(22, 37)
	singleUWord   = opSet(50, 52, 54, 72, 74, 76)
	singleInt     = opSet(23, 38)
	stringArrInit = opSet(282)
	arrayInit     = opSet(45)
	constraints   = opSet(15, 17)
	lookupswitch  = opSet(163, 164)
	lookupswitchExtra = opSet(163)
	tableswitchOp = opSet(47)
	twoByte       = opSet(120)
	twoWord       = opSet(121)
	singleSLong   = opSet(39)

	classFieldref      = rangeSet(105, 112)
	classFieldrefExtra = opSet(106, 108, 110, 112)
	relFieldref        = opSet(25, 28, 93, 95, 97, 99, 101, 103)
	relFarFieldref     = opSet(26, 29, 94, 96, 98, 100, 102, 104)

	invokestaticOp    = opSet(7, 8, 219, 220)
	invokestaticExtra = opSet(8, 220)
	invokenativeOp    = opSet(9, 10, 11)
	jumpspecialOp     = opSet(12, 13)
	jumpspecialExtra  = opSet(13)
	invokespecialOp    = opSet(3, 4, 5, 6)
	invokespecialExtra = opSet(4, 6)
	invokevirtualOp      = opSet(1)
	invokevirtualShortOp = opSet(222)
	invokeinterfaceOp    = opSet(2)

	ldcOp    = opSet(40, 42)
	ldcExtra = opSet(42)

	classrefOp      = opSet(19, 168, 169, 184, 185, 186, 187, 191, 192, 193, 194, 290, 291)
	classrefExtra   = opSet(169, 185, 187, 192, 194, 291)
	classrefCheckOp    = opSet(198, 199, 200, 201)
	classrefCheckExtra = opSet(199, 201)

	newarrayOp        = opSet(165)
	multinewarrayOp   = opSet(166)
	multinewarrayObjOp    = opSet(170, 171)
	multinewarrayObjExtra = opSet(171)

	checkcastbranchOp    = opSet(195, 196)
	checkcastbranchExtra = opSet(196)

	typecheckArrayOp      = opSet(189, 190, 197)
	typecheckArrayOpExtra = opSet(197)

	badOps = badOpcodeSet()
)

func opSet(vals ...int) map[Opcode]bool {
	m := make(map[Opcode]bool, len(vals))
	for _, v := range vals {
		m[Opcode(v)] = true
	}
	return m
}

func rangeSet(lo, hi int) map[Opcode]bool {
	m := make(map[Opcode]bool, hi-lo+1)
	for v := lo; v <= hi; v++ {
		m[Opcode(v)] = true
	}
	return m
}

func badOpcodeSet() map[Opcode]bool {
	m := opSet(41, 43, 46, 48, 214)
	for v := 224; v < 250; v++ {
		m[Opcode(v)] = true
	}
	for v := 251; v < 256; v++ {
		m[Opcode(v)] = true
	}
	return m
}

// arrayTypeNames maps a newarray/arrayinit type code to its primitive name.
var arrayTypeNames = map[byte]string{
	1: "boolean", 2: "byte", 3: "char", 4: "short", 5: "int", 6: "long",
	11: "float", 12: "double",
}

// arrayElemSizes maps the same type codes to their element byte width.
var arrayElemSizes = map[byte]int{
	1: 1, 2: 1, 3: 1, 4: 2, 5: 4, 6: 8, 11: 4, 12: 8,
}

// branches, conditionalBranches and compoundBranches classify mnemonics by
// their control-flow shape, independent of operand decoding.
var (
	branches = map[string]bool{
		"goto": true, "goto_w": true, "jmpback": true, "jmpforward": true,
	}
	conditionalBranches = map[string]bool{
		"if_icmpeq": true, "if_acmpeq": true, "ifeq": true, "if_icmpne": true,
		"if_acmpne": true, "ifne": true, "if_icmpgt": true, "ifgt": true,
		"if_icmpge": true, "ifge": true, "if_icmplt": true, "iflt": true,
		"if_icmple": true, "ifle": true, "ifnull": true, "ifnonnull": true,
		"checkcastbranch": true, "checkcastbranch_lib": true,
		"checkcastbranch_array": true,
	}
	compoundBranches = map[string]bool{
		"tableswitch": true, "lookupswitch_short": true, "lookupswitch": true,
	}
	terminals = map[string]bool{
		"ireturn_bipush": true, "ireturn_sipush": true, "ireturn_iipush": true,
		"ireturn": true, "ireturn_field": true, "ireturn_field_wide": true,
		"areturn": true, "areturn_field": true, "areturn_field_wide": true,
		"lreturn": true, "return": true, "clinit_return": true,
		"noenter_return": true, "jumpspecial": true, "jumpspecial_lib": true,
		"halt": true, "putfield_return": true,
	}
	throwers = map[string]bool{"athrow": true}
	potentialThrowers = map[string]bool{
		"invokevirtual": true, "invokeinterface": true, "invokenonvirtual": true,
		"invokenonvirtual_lib": true, "invokespecial": true, "invokespecial_lib": true,
		"invokestatic": true, "invokestatic_lib": true, "iinvokenative": true,
		"invokenative": true, "linvokenative": true, "invokestaticqc": true,
		"invokestaticqc_lib": true, "invokevirtual_short": true,
	}
)
