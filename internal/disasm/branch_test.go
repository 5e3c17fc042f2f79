package disasm

import "testing"

func TestClassifyReturn(t *testing.T) {
	insts, err := Decode([]byte{31}, Options{}) // return
	if err != nil {
		t.Fatal(err)
	}
	bi := Classify(insts[0])
	if !bi.IsTerm || len(bi.Targets) != 0 {
		t.Errorf("return: got %+v, want terminal with no targets", bi)
	}
}

func TestClassifyGoto(t *testing.T) {
	// goto_w (opcode 162) takes a signed short, the far-branch cluster.
	data := []byte{162, 0x00, 0x10} // target = 0 + 0x10 + 1 = 17
	insts, err := Decode(data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	bi := Classify(insts[0])
	if !bi.IsTerm || bi.Cond {
		t.Errorf("goto_w should be an unconditional terminator, got %+v", bi)
	}
	if len(bi.Targets) != 1 || bi.Targets[0] != 17 {
		t.Errorf("targets = %v, want [17]", bi.Targets)
	}
}

func TestClassifyConditionalBranch(t *testing.T) {
	// ifeq (opcode 147) is in the near-branch cluster (signed byte operand).
	data := []byte{147, 5} // target = 0 + 5 + 1 = 6
	insts, err := Decode(data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	bi := Classify(insts[0])
	if bi.IsTerm {
		t.Error("ifeq should not be a hard terminator (it can fall through)")
	}
	if !bi.Cond {
		t.Error("ifeq should be conditional")
	}
	if len(bi.Targets) != 1 || bi.Targets[0] != 6 {
		t.Errorf("targets = %v, want [6]", bi.Targets)
	}
}

func TestClassifyPotentialThrower(t *testing.T) {
	insts, err := Decode([]byte{7, 1, 0x00, 0x02}, Options{}) // invokestatic: may throw, else falls through
	if err != nil {
		t.Fatal(err)
	}
	bi := Classify(insts[0])
	if bi.IsTerm || !bi.Cond {
		t.Errorf("invokestatic should fall through as a potential thrower, got %+v", bi)
	}
}

func TestClassifyAthrow(t *testing.T) {
	insts, err := Decode([]byte{188}, Options{}) // athrow
	if err != nil {
		t.Fatal(err)
	}
	if insts[0].Mnemonic != "athrow" {
		t.Fatalf("mnemonic = %q, want athrow", insts[0].Mnemonic)
	}
	bi := Classify(insts[0])
	if !bi.IsTerm {
		t.Error("athrow should be terminal")
	}
}
