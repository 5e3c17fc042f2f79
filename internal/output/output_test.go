package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codtool/internal/disasm"
)

func TestWriteModuleIndexJSON(t *testing.T) {
	dir := t.TempDir()
	idx := ModuleIndex{Name: "net_rim_os", Version: "7", Path: "/tmp/net_rim_os.cod", Classes: []string{"Field", "Label"}}
	if err := WriteModuleIndexJSON(dir, idx); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "net_rim_os.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Field") {
		t.Errorf("index json missing class name: %s", data)
	}
}

func TestWriteRoutineScanJSONNestedName(t *testing.T) {
	dir := t.TempDir()
	scan := RoutineScan{Name: "Field/onFocus", Blocks: 3, Scanned: 3}
	if err := WriteRoutineScanJSON(dir, "Field/onFocus", scan); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "scans", "Field", "onFocus.json")); err != nil {
		t.Fatal(err)
	}
}

func TestFormatInsts(t *testing.T) {
	insts := []disasm.Inst{
		{Offset: 0, Mnemonic: "bipush", Operands: []disasm.Operand{{Kind: disasm.OperandInt, I: 5}}},
		{Offset: 2, Mnemonic: "return"},
	}
	text := FormatInsts(insts)
	if !strings.Contains(text, "0000: bipush 5") {
		t.Errorf("expected formatted bipush line, got:\n%s", text)
	}
	if !strings.Contains(text, "0002: return") {
		t.Errorf("expected formatted return line, got:\n%s", text)
	}
}

func TestWriteDOT(t *testing.T) {
	dir := t.TempDir()
	if err := WriteDOT(dir, "callgraph", "digraph{}"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "callgraph.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "digraph{}" {
		t.Errorf("dot contents = %q", data)
	}
}
