package callgraph

import (
	"github.com/zboralski/lattice"

	"codtool/internal/cfg"
	"codtool/internal/disasm"
)

// BuildModuleCFG constructs a lattice.CFGGraph from a module's routines.
// Each RoutineInfo is converted to a lattice.FuncCFG via internal/cfg.Build
// and mapped to lattice's graph types.
func BuildModuleCFG(routines []RoutineInfo) *lattice.CFGGraph {
	cg := &lattice.CFGGraph{}
	for _, r := range routines {
		g := cfg.Build(r.Name, r.Insts, nil)
		cg.Funcs = append(cg.Funcs, convertFuncCFG(&g, r.CallEdges))
	}
	return cg
}

// BuildRoutineCFG builds a single-routine lattice.FuncCFG from its decoded
// instructions and already-extracted call edges (see ExtractCallEdges). It
// returns the FuncCFG and its block count, so a caller can filter out
// trivial single-block routines before rendering.
func BuildRoutineCFG(name string, insts []disasm.Inst, edges []CallEdge) (*lattice.FuncCFG, int) {
	g := cfg.Build(name, insts, nil)
	lcfg := convertFuncCFG(&g, edges)
	return lcfg, len(g.Blocks)
}

// convertFuncCFG maps a cfg.CFG to a lattice.FuncCFG. Call edges are
// mapped into blocks by matching each instruction's byte offset.
func convertFuncCFG(g *cfg.CFG, edges []CallEdge) *lattice.FuncCFG {
	edgeByOffset := make(map[int]CallEdge, len(edges))
	for _, e := range edges {
		edgeByOffset[e.FromOffset] = e
	}

	lcfg := &lattice.FuncCFG{Name: g.Name}
	for _, b := range g.Blocks {
		lb := &lattice.BasicBlock{
			ID:    b.ID,
			Start: b.Start,
			End:   b.End,
			Term:  b.IsTerm,
		}

		for _, succ := range g.Succs[b.ID] {
			lb.Succs = append(lb.Succs, lattice.Successor{
				BlockID: succ.BlockID,
				Cond:    succ.Kind,
			})
		}

		for idx := b.Start; idx < b.End && idx < len(g.Insts); idx++ {
			if e, ok := edgeByOffset[g.Insts[idx].Offset]; ok {
				lb.Calls = append(lb.Calls, lattice.CallSite{
					Offset: idx,
					Callee: e.Callee,
				})
			}
		}

		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}
