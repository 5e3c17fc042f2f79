// Package cfg builds control-flow graphs over a disassembled routine's
// instructions: basic-block partitioning, successor edges, and (unlike the
// teacher's forward-only design) a reverse predecessor map, since the
// heuristic instruction scanner's join step needs parent exit states, not
// just forward edges.
package cfg

import (
	"sort"

	"codtool/internal/disasm"
)

// BasicBlock is a maximal run of instructions with a single entry point.
type BasicBlock struct {
	ID      int
	Start   int // index into CFG.Insts (inclusive)
	End     int // index into CFG.Insts (exclusive)
	IsEntry bool
	IsTerm  bool // ends with a non-falling-through instruction
}

// Edge is a control-flow successor (or, in Preds, predecessor) edge.
type Edge struct {
	BlockID int
	Kind    string // "taken", "fallthrough", "case", "handler"; a switch's default target is also labelled "case"
}

// CFG is a routine's control flow graph.
type CFG struct {
	Name   string
	Blocks []BasicBlock
	Insts  []disasm.Inst
	Succs  map[int][]Edge
	Preds  map[int][]Edge
}

// ExceptionRange marks a byte range protected by a handler, used to seed
// additional block leaders at the handler's target (mirroring how a
// try/catch target is always a join point, never provably reached by
// straight-line fallthrough).
type ExceptionRange struct {
	Start, End, Target int
}

// Build partitions a routine's decoded instructions into basic blocks and
// computes successor/predecessor edges.
//
// Leaders are: instruction 0, every branch/switch target, the instruction
// following every terminator, and every exception handler target. This is
// the same three-part leader rule the teacher's ARM64 builder used,
// extended with the handler-target rule bytecode methods need because
// asynchronous control transfer (an athrow, or any potential-thrower) can
// enter a handler block from the middle of a reachable run.
func Build(name string, insts []disasm.Inst, handlers []ExceptionRange) CFG {
	if len(insts) == 0 {
		return CFG{Name: name, Succs: map[int][]Edge{}, Preds: map[int][]Edge{}}
	}

	offToIdx := make(map[int]int, len(insts))
	for i, inst := range insts {
		offToIdx[inst.Offset] = i
	}

	leaders := map[int]bool{0: true}
	branchOf := make([]disasm.BranchInfo, len(insts))

	for i, inst := range insts {
		bi := disasm.Classify(inst)
		branchOf[i] = bi
		if (bi.IsTerm || len(bi.Targets) > 0) && i+1 < len(insts) {
			leaders[i+1] = true
		}
		for _, t := range bi.Targets {
			if idx, ok := offToIdx[t]; ok {
				leaders[idx] = true
			}
		}
	}
	for _, h := range handlers {
		if idx, ok := offToIdx[h.Target]; ok {
			leaders[idx] = true
		}
	}

	sorted := make([]int, 0, len(leaders))
	for idx := range leaders {
		sorted = append(sorted, idx)
	}
	sort.Ints(sorted)

	blocks := make([]BasicBlock, len(sorted))
	leaderToBlock := make(map[int]int, len(sorted))
	for i, start := range sorted {
		end := len(insts)
		if i+1 < len(sorted) {
			end = sorted[i+1]
		}
		blocks[i] = BasicBlock{ID: i, Start: start, End: end, IsEntry: start == 0}
		leaderToBlock[start] = i
	}

	succs := make(map[int][]Edge, len(blocks))
	addEdge := func(from, to int, kind string) {
		succs[from] = append(succs[from], Edge{BlockID: to, Kind: kind})
	}

	for i := range blocks {
		blk := &blocks[i]
		if blk.End <= blk.Start {
			continue
		}
		lastIdx := blk.End - 1
		bi := branchOf[lastIdx]

		if bi.IsTerm && len(bi.Targets) == 0 {
			blk.IsTerm = true
			continue
		}

		if len(bi.Targets) > 1 {
			// Compound branch (switch): one edge per case/default.
			for _, t := range bi.Targets {
				if idx, ok := offToIdx[t]; ok {
					if bid, ok := leaderToBlock[idx]; ok {
						addEdge(blk.ID, bid, "case")
					}
				}
			}
			blk.IsTerm = true
			continue
		}

		if len(bi.Targets) == 1 {
			idx, ok := offToIdx[bi.Targets[0]]
			if ok {
				if bid, ok := leaderToBlock[idx]; ok {
					addEdge(blk.ID, bid, "taken")
				}
			}
			if bi.Cond {
				if nextBlk, ok := leaderToBlock[blk.End]; ok {
					addEdge(blk.ID, nextBlk, "fallthrough")
				}
			} else {
				blk.IsTerm = true
			}
			continue
		}

		// No branch targets: straight fallthrough.
		if nextBlk, ok := leaderToBlock[blk.End]; ok {
			addEdge(blk.ID, nextBlk, "fallthrough")
		}
	}

	for _, h := range handlers {
		handlerIdx, ok := offToIdx[h.Target]
		if !ok {
			continue
		}
		handlerBlock, ok := leaderToBlock[handlerIdx]
		if !ok {
			continue
		}
		for i := range blocks {
			blk := &blocks[i]
			if blk.Start >= len(insts) || blk.End <= blk.Start {
				continue
			}
			if insts[blk.Start].Offset >= h.Start && insts[blk.Start].Offset < h.End {
				addEdge(blk.ID, handlerBlock, "handler")
			}
		}
	}

	preds := make(map[int][]Edge, len(blocks))
	for from, edges := range succs {
		for _, e := range edges {
			preds[e.BlockID] = append(preds[e.BlockID], Edge{BlockID: from, Kind: e.Kind})
		}
	}

	return CFG{Name: name, Blocks: blocks, Insts: insts, Succs: succs, Preds: preds}
}
