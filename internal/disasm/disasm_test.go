package disasm

import "testing"

func TestDecodeSimpleSequence(t *testing.T) {
	// nop (204), pop (205), return (31)
	data := []byte{204, 205, 31}
	insts, err := Decode(data, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(insts) != 3 {
		t.Fatalf("got %d instructions, want 3", len(insts))
	}
	want := []string{"nop", "pop", "return"}
	for i, w := range want {
		if insts[i].Mnemonic != w {
			t.Errorf("insts[%d].Mnemonic = %q, want %q", i, insts[i].Mnemonic, w)
		}
		if insts[i].Size != 1 {
			t.Errorf("insts[%d].Size = %d, want 1", i, insts[i].Size)
		}
	}
	if insts[1].Offset != 1 || insts[2].Offset != 2 {
		t.Errorf("unexpected offsets: %+v", insts)
	}
}

func TestDecodeBipush(t *testing.T) {
	// bipush (opcode 36) takes a signed byte operand.
	data := []byte{36, 0xFF} // -1
	insts, err := Decode(data, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(insts) != 1 {
		t.Fatalf("got %d instructions, want 1", len(insts))
	}
	if insts[0].Mnemonic != "bipush" {
		t.Fatalf("mnemonic = %q, want bipush", insts[0].Mnemonic)
	}
	if len(insts[0].Operands) != 1 || insts[0].Operands[0].I != -1 {
		t.Errorf("operand = %+v, want -1", insts[0].Operands)
	}
	if insts[0].Size != 2 {
		t.Errorf("size = %d, want 2", insts[0].Size)
	}
}

func TestDecodeEscapedOpcode(t *testing.T) {
	// Esc (216) + byte 0 selects opcode 256 ("fadd").
	data := []byte{byte(Esc), 0}
	insts, err := Decode(data, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(insts) != 1 {
		t.Fatalf("got %d instructions, want 1", len(insts))
	}
	if insts[0].Opcode != 256 {
		t.Errorf("opcode = %d, want 256", insts[0].Opcode)
	}
	if insts[0].Mnemonic != "fadd" {
		t.Errorf("mnemonic = %q, want fadd", insts[0].Mnemonic)
	}
	if insts[0].Offset != 0 {
		t.Errorf("offset = %d, want 0 (escape byte's own offset)", insts[0].Offset)
	}
	if insts[0].Size != 2 {
		t.Errorf("size = %d, want 2 (escape + opcode byte)", insts[0].Size)
	}
}

func TestDecodeEmpty(t *testing.T) {
	insts, err := Decode(nil, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(insts) != 0 {
		t.Fatalf("got %d instructions for nil data", len(insts))
	}
}

func TestDecodeMaxSteps(t *testing.T) {
	data := make([]byte, 100) // 100 nops
	for i := range data {
		data[i] = 204
	}
	insts, err := Decode(data, Options{MaxSteps: 10})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(insts) != 10 {
		t.Fatalf("got %d instructions, want 10", len(insts))
	}
}

func TestDecodeBadOpcode(t *testing.T) {
	data := []byte{224} // in the bad/reserved range
	_, err := Decode(data, Options{})
	if err == nil {
		t.Fatal("expected error for bad opcode")
	}
}
