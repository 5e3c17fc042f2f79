// Package callgraph resolves invoke-family bytecode instructions into call
// edges and exposes them as lattice graph values for a downstream renderer.
package callgraph

import (
	"fmt"

	"github.com/zboralski/lattice"

	"codtool/internal/disasm"
)

// NameResolver looks up the fully qualified name of a routine referenced by
// a (mod byte, class byte, member index) triple, the same reference shape
// invokestatic/invokespecial/invokenonvirtual/jumpspecial carry inline.
// internal/loader.ModuleResolver backs this in practice.
type NameResolver interface {
	RoutineName(modByte, classByte byte, memberIdx int64) (name string, ok bool)
}

// CallKind classifies how a call edge's target was determined.
type CallKind string

const (
	CallStatic    CallKind = "static"    // invokestatic*/invokespecial*/invokenonvirtual*/jumpspecial*: resolved via a class reference
	CallVirtual   CallKind = "virtual"   // invokevirtual(_short): vtable slot, not statically resolvable
	CallInterface CallKind = "interface" // invokeinterface: interface member index, not statically resolvable
	CallNative    CallKind = "native"    // invoke*native: native function address
)

// CallEdge is one call site within a routine's bytecode.
type CallEdge struct {
	FromOffset int
	Kind       CallKind
	Callee     string // resolved routine name, or a synthetic vtable/interface/native label
	Resolved   bool   // true when Callee names an actual routine rather than a synthetic label
}

// RoutineInfo holds the data needed to build a CFG and call graph node for
// one routine.
type RoutineInfo struct {
	Name      string
	Insts     []disasm.Inst
	CallEdges []CallEdge
}

var (
	staticInvokeMnemonics = map[string]bool{
		"invokenonvirtual": true, "invokenonvirtual_lib": true,
		"invokespecial": true, "invokespecial_lib": true,
		"invokestatic": true, "invokestatic_lib": true,
		"invokestaticqc": true, "invokestaticqc_lib": true,
		"jumpspecial": true, "jumpspecial_lib": true,
	}
	virtualInvokeMnemonics = map[string]bool{
		"invokevirtual": true, "invokevirtual_short": true,
	}
	nativeInvokeMnemonics = map[string]bool{
		"invokenative": true, "iinvokenative": true, "linvokenative": true,
	}
)

// ExtractCallEdges walks insts and resolves every invoke-family instruction
// into a CallEdge. Statically-referenced targets (a genuine class
// reference in the operand) are resolved by name through res; vtable,
// interface, and native call shapes carry no resolvable reference and get
// a synthetic, offset-derived label instead.
func ExtractCallEdges(insts []disasm.Inst, res NameResolver) []CallEdge {
	var edges []CallEdge
	for _, inst := range insts {
		switch {
		case staticInvokeMnemonics[inst.Mnemonic]:
			if len(inst.Operands) == 0 {
				continue
			}
			op := inst.Operands[0]
			name, ok := res.RoutineName(op.ClassRef.ModByte, op.ClassRef.ClassByte, op.I)
			if !ok {
				name = fmt.Sprintf("unresolved(mod=%d,class=%d,member=%d)", op.ClassRef.ModByte, op.ClassRef.ClassByte, op.I)
			}
			edges = append(edges, CallEdge{FromOffset: inst.Offset, Kind: CallStatic, Callee: name, Resolved: ok})

		case virtualInvokeMnemonics[inst.Mnemonic]:
			if len(inst.Operands) == 0 {
				continue
			}
			edges = append(edges, CallEdge{
				FromOffset: inst.Offset,
				Kind:       CallVirtual,
				Callee:     fmt.Sprintf("vtable+0x%x", inst.Operands[0].I),
			})

		case inst.Mnemonic == "invokeinterface":
			if len(inst.Operands) == 0 {
				continue
			}
			edges = append(edges, CallEdge{
				FromOffset: inst.Offset,
				Kind:       CallInterface,
				Callee:     fmt.Sprintf("iface#%d", inst.Operands[0].I3),
			})

		case nativeInvokeMnemonics[inst.Mnemonic]:
			if len(inst.Operands) == 0 {
				continue
			}
			edges = append(edges, CallEdge{
				FromOffset: inst.Offset,
				Kind:       CallNative,
				Callee:     fmt.Sprintf("native+0x%x", inst.Operands[0].I),
			})
		}
	}
	return edges
}

// BuildModuleCallGraph constructs a lattice.Graph from a module's routines:
// each routine becomes a node, each resolved or synthetic call edge an
// edge. Unresolved edges with no callee label are skipped (there are none
// today, since every branch above always derives one, but the guard keeps
// the invariant explicit as new invoke shapes are added).
func BuildModuleCallGraph(routines []RoutineInfo) *lattice.Graph {
	g := &lattice.Graph{}
	for _, r := range routines {
		g.Nodes = append(g.Nodes, r.Name)
		for _, e := range r.CallEdges {
			if e.Callee == "" {
				continue
			}
			g.Edges = append(g.Edges, lattice.Edge{Caller: r.Name, Callee: e.Callee})
		}
	}
	g.Dedup()
	return g
}
