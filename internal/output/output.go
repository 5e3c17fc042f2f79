// Package output writes codtool analysis results to files: module/class
// indexes and routine scan summaries as JSON, disassembly listings as
// text, and call graphs as DOT.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codtool/internal/disasm"
	"codtool/internal/his"
)

// ModuleIndex is the JSON-serializable summary of one loaded module,
// suitable for a quick human or tool scan without re-parsing the .cod
// container.
type ModuleIndex struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Path    string   `json:"path"`
	Classes []string `json:"classes"`
}

// WriteModuleIndexJSON writes a module's class index to <dir>/<name>.json.
func WriteModuleIndexJSON(dir string, idx ModuleIndex) error {
	return writeJSON(filepath.Join(dir, idx.Name+".json"), idx)
}

// RoutineScan is the JSON-serializable summary of one routine's heuristic
// type scan, independent of the in-memory his.Result it was derived from.
type RoutineScan struct {
	Name    string     `json:"name"`
	Blocks  int        `json:"blocks"`
	Scanned int        `json:"scanned"`
	Failed  int        `json:"failed"`
	Opcodes []string   `json:"opcodes,omitempty"`
	Stats   *his.Stats `json:"stats,omitempty"`
}

// WriteRoutineScanJSON writes a routine scan summary to
// <dir>/scans/<name>.json. name may contain path separators (e.g.
// "OwnerClass/method_0") for per-class directory grouping.
func WriteRoutineScanJSON(dir, name string, scan RoutineScan) error {
	path := filepath.Join(dir, "scans", name+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("output: mkdir scans: %w", err)
	}
	return writeJSON(path, scan)
}

// WriteDisasm writes a routine's decoded instructions as a plain text
// listing to <dir>/asm/<name>.txt.
func WriteDisasm(dir, name string, insts []disasm.Inst) error {
	path := filepath.Join(dir, "asm", name+".txt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("output: mkdir asm: %w", err)
	}
	return os.WriteFile(path, []byte(FormatInsts(insts)), 0o644)
}

// FormatInsts renders a decoded instruction stream as one line per
// instruction: byte offset, mnemonic, and a compact rendering of its
// operands.
func FormatInsts(insts []disasm.Inst) string {
	var b strings.Builder
	for _, inst := range insts {
		fmt.Fprintf(&b, "%04x: %s", inst.Offset, inst.Mnemonic)
		for _, op := range inst.Operands {
			b.WriteByte(' ')
			b.WriteString(formatOperand(op))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatOperand(op disasm.Operand) string {
	switch op.Kind {
	case disasm.OperandNone:
		return ""
	case disasm.OperandInt:
		return fmt.Sprintf("%d", op.I)
	case disasm.OperandIntPair:
		return fmt.Sprintf("%d,%d", op.I, op.I2)
	case disasm.OperandIntTriple:
		return fmt.Sprintf("%d,%d,%d", op.I, op.I2, op.I3)
	case disasm.OperandClassRef:
		return fmt.Sprintf("class(mod=%d,cls=%d)", op.ClassRef.ModByte, op.ClassRef.ClassByte)
	case disasm.OperandMemberRef:
		return fmt.Sprintf("member(mod=%d,cls=%d,#%d)", op.ClassRef.ModByte, op.ClassRef.ClassByte, op.I)
	case disasm.OperandArrayInit:
		return fmt.Sprintf("%s[%d]", op.Str, len(op.Ints))
	case disasm.OperandStringArrayInit:
		return fmt.Sprintf("strings[%d]", len(op.Ints))
	case disasm.OperandTableSwitch:
		return fmt.Sprintf("default=%d cases=%d", op.I, len(op.Targets))
	case disasm.OperandLookupSwitch:
		return fmt.Sprintf("default=%d cases=%d", op.I, len(op.Cases))
	case disasm.OperandTypecheckArray:
		return fmt.Sprintf("%s dims=%d", op.Str, op.I)
	default:
		return "?"
	}
}

// WriteDOT writes a DOT graph description, already formatted as text by
// the caller (cmd/codtool's formatDOT for call graphs), to
// <dir>/<name>.dot.
func WriteDOT(dir, name, dot string) error {
	path := filepath.Join(dir, name+".dot")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", dir, err)
	}
	return os.WriteFile(path, []byte(dot), 0o644)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("output: mkdir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}
