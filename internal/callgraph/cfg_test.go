package callgraph

import (
	"testing"

	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	"codtool/internal/disasm"
)

type stubNameResolver map[string]string

func key(mod, class byte, member int64) string {
	return string(rune(mod)) + string(rune(class)) + string(rune(member))
}

func (r stubNameResolver) RoutineName(mod, class byte, member int64) (string, bool) {
	name, ok := r[key(mod, class, member)]
	return name, ok
}

// diamond builds:
//
//	block0 (nop, ifeq -> block2): falls through to block1, branches to block2
//	block1 (invokestatic "Bar.run", goto -> block3)
//	block2 (invokevirtual vtable slot, falls through to block3)
//	block3 (return, join)
func diamond() []disasm.Inst {
	return []disasm.Inst{
		{Offset: 0, Mnemonic: "nop"},
		{Offset: 1, Mnemonic: "ifeq", Operands: []disasm.Operand{{Kind: disasm.OperandInt, I: 4}}},
		{Offset: 2, Mnemonic: "invokestatic", Operands: []disasm.Operand{
			{Kind: disasm.OperandMemberRef, ClassRef: disasm.ClassRef{ModByte: 0, ClassByte: 1}, I: 5},
		}},
		{Offset: 3, Mnemonic: "goto", Operands: []disasm.Operand{{Kind: disasm.OperandInt, I: 6}}},
		{Offset: 4, Mnemonic: "invokevirtual", Operands: []disasm.Operand{{Kind: disasm.OperandIntPair, I: 0x10, I2: 1}}},
		{Offset: 5, Mnemonic: "nop"},
		{Offset: 6, Mnemonic: "return"},
	}
}

func TestBuildRoutineCFGDiamond(t *testing.T) {
	insts := diamond()
	res := stubNameResolver{key(0, 1, 5): "Bar.run"}
	edges := ExtractCallEdges(insts, res)

	lcfg, nblocks := BuildRoutineCFG("MyClass.myMethod", insts, edges)
	if nblocks != 4 {
		t.Fatalf("expected 4 blocks, got %d", nblocks)
	}
	if lcfg.Name != "MyClass.myMethod" {
		t.Errorf("name = %q", lcfg.Name)
	}

	b0 := lcfg.Blocks[0]
	if len(b0.Succs) != 2 {
		t.Errorf("block0 succs = %+v, want 2 (fallthrough + taken)", b0.Succs)
	}

	b1 := lcfg.Blocks[1]
	if len(b1.Calls) != 1 || b1.Calls[0].Callee != "Bar.run" {
		t.Errorf("block1 calls = %+v, want [Bar.run]", b1.Calls)
	}

	b2 := lcfg.Blocks[2]
	if len(b2.Calls) != 1 || b2.Calls[0].Callee != "vtable+0x10" {
		t.Errorf("block2 calls = %+v, want [vtable+0x10]", b2.Calls)
	}

	b3 := lcfg.Blocks[3]
	if !b3.Term {
		t.Error("block3 (return) should be terminal")
	}

	cg := &lattice.CFGGraph{Funcs: []*lattice.FuncCFG{lcfg}}
	dot := render.DOTCFG(cg, "call graph example")
	if dot == "" {
		t.Error("expected non-empty DOT output")
	}
}

func TestExtractCallEdgesUnresolvedStaticCallGetsPlaceholderName(t *testing.T) {
	insts := []disasm.Inst{
		{Offset: 0, Mnemonic: "invokestatic", Operands: []disasm.Operand{
			{Kind: disasm.OperandMemberRef, ClassRef: disasm.ClassRef{ModByte: 2, ClassByte: 3}, I: 9},
		}},
	}
	edges := ExtractCallEdges(insts, stubNameResolver{})
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].Resolved {
		t.Error("expected Resolved=false for an unknown member reference")
	}
	if edges[0].Kind != CallStatic {
		t.Errorf("kind = %q, want static", edges[0].Kind)
	}
}

func TestBuildModuleCallGraph(t *testing.T) {
	routines := []RoutineInfo{
		{
			Name: "main",
			CallEdges: []CallEdge{
				{Kind: CallStatic, Callee: "Foo.init", Resolved: true},
				{Kind: CallStatic, Callee: "Bar.run", Resolved: true},
			},
		},
		{
			Name: "Foo.init",
			CallEdges: []CallEdge{
				{Kind: CallStatic, Callee: "Logger.log", Resolved: true},
			},
		},
		{
			Name: "Bar.run",
			CallEdges: []CallEdge{
				{Kind: CallStatic, Callee: "Logger.log", Resolved: true},
				{Kind: CallVirtual, Callee: "vtable+0x20"},
			},
		},
		{Name: "Logger.log"},
	}

	g := BuildModuleCallGraph(routines)
	if len(g.Nodes) != 4 {
		t.Errorf("expected 4 nodes, got %d", len(g.Nodes))
	}

	dot := render.DOT(g, "call graph example")
	if dot == "" {
		t.Error("expected non-empty DOT output")
	}
}
