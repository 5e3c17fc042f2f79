package his

import (
	"fmt"

	"codtool/internal/cfg"
	"codtool/internal/codec"
	"codtool/internal/dartfmt"
	"codtool/internal/errkind"
)

// maxRescan bounds how many times any one block may be rescanned before the
// scheduler gives up on it and moves on, breaking out of join-point cycles
// that would otherwise never reach a fixed point (two loop-carried locals
// widening against each other indefinitely).
const maxRescan = 50

// maxFullRestarts bounds how many attempts Scan makes at the whole
// worklist, the first one included: an attempt that finishes with failed
// blocks still outstanding is followed by a fresh one, and the last
// attempt's result is returned as is, failed blocks and all.
const maxFullRestarts = 3

// BlockResult is the recovered type information for one basic block: its
// stack and locals on entry, and the same on exit (after simulating every
// instruction in the block in order).
type BlockResult struct {
	StartStack  TStack
	StartLocals []*codec.TypeToken
	EndStack    TStack
	EndLocals   []*codec.TypeToken
	Failed      bool
}

// Result is a completed scan of one routine.
type Result struct {
	CFG     cfg.CFG
	Blocks  []BlockResult // indexed by BasicBlock.ID
	Visited []bool
}

// Session carries the resolver and diagnostics shared across a scan.
type Session struct {
	Resolver Resolver
	Diags    *dartfmt.Diags
	Opts     dartfmt.Options
	Counters *Counters
}

// Scan runs the fixed-point abstract interpretation over cfg, starting from
// paramTypes seeded into the first localCount slots (locals beyond the
// parameter list start as wildcard, exactly as his.py seeds all 256 local
// slots with a wildcard placeholder before overwriting the prefix occupied
// by the routine's actual parameters). If an attempt finishes with any
// block still failed, the whole worklist is re-driven from scratch, for at
// most maxFullRestarts attempts in all, the same retry-on-exception posture his.py's scan
// loop takes before giving up on a routine.
func (s *Session) Scan(g cfg.CFG, paramTypes codec.TypeList, localCount int) Result {
	var res Result
	for attempt := 1; attempt <= maxFullRestarts; attempt++ {
		res = s.scanAttempt(g, paramTypes, localCount)
		if !anyFailed(res) {
			break
		}
	}
	return res
}

func anyFailed(res Result) bool {
	for _, b := range res.Blocks {
		if b.Failed {
			return true
		}
	}
	return false
}

func (s *Session) scanAttempt(g cfg.CFG, paramTypes codec.TypeList, localCount int) Result {
	res := Result{CFG: g, Blocks: make([]BlockResult, len(g.Blocks)), Visited: make([]bool, len(g.Blocks))}
	if len(g.Blocks) == 0 {
		return res
	}
	if localCount < 1 {
		localCount = 1
	}

	initLocals := make([]*codec.TypeToken, localCount)
	for i := range initLocals {
		initLocals[i] = tWild
	}
	slot := 0
	for _, p := range paramTypes {
		if slot >= localCount {
			break
		}
		initLocals[slot] = p
		slot++
		if p.Slots() == 2 && slot < localCount {
			initLocals[slot] = p
			slot++
		}
	}
	res.Blocks[0].StartLocals = initLocals

	rescans := make([]int, len(g.Blocks))

	candidates := []int{0}
	inQueue := make([]bool, len(g.Blocks))
	inQueue[0] = true

	for len(candidates) > 0 {
		id := s.pickCandidate(candidates, g, res.Visited)
		candidates = removeInt(candidates, id)
		inQueue[id] = false

		if rescans[id] > maxRescan {
			res.Blocks[id].Failed = true
			rescanErr := errkind.New(errkind.MaxRescanExceeded, "", g.Name, int64(g.Insts[g.Blocks[id].Start].Offset),
				fmt.Errorf("block %d exceeded rescan cap (%d)", id, maxRescan))
			if s.Diags != nil {
				s.Diags.Addf(uint64(g.Insts[g.Blocks[id].Start].Offset), dartfmt.DiagInvalid, "%s", rescanErr.Error())
			}
			continue
		}
		rescans[id]++

		startStack, startLocals := s.startingState(g, id, res)
		res.Blocks[id].StartStack = startStack
		res.Blocks[id].StartLocals = startLocals

		endStack, endLocals, err := s.simulateBlock(g, id, startStack, startLocals)
		if err != nil {
			res.Blocks[id].Failed = true
			if s.Diags != nil {
				s.Diags.Addf(uint64(g.Insts[g.Blocks[id].Start].Offset), dartfmt.DiagInvalid,
					"block %d: %v", id, err)
			}
			continue
		}

		changed := !res.Visited[id] ||
			!endStack.Equal(res.Blocks[id].EndStack) ||
			!sameLocals(endLocals, res.Blocks[id].EndLocals)

		res.Blocks[id].EndStack = endStack
		res.Blocks[id].EndLocals = endLocals
		res.Visited[id] = true

		if !changed {
			continue
		}
		for _, succ := range g.Succs[id] {
			if !inQueue[succ.BlockID] {
				candidates = append(candidates, succ.BlockID)
				inQueue[succ.BlockID] = true
			}
		}
	}
	return res
}

// pickCandidate prefers a block whose parents have ALL already been
// scanned (so its starting state is as informed as possible), falling back
// to FIFO order when no such block exists — the same priority his.py's
// _get_next_bb applies before giving up and taking the front of the queue.
func (s *Session) pickCandidate(candidates []int, g cfg.CFG, visited []bool) int {
	for _, id := range candidates {
		allParentsScanned := true
		for _, p := range g.Preds[id] {
			if !visited[p.BlockID] {
				allParentsScanned = false
				break
			}
		}
		if allParentsScanned {
			return id
		}
	}
	return candidates[0]
}

func (s *Session) startingState(g cfg.CFG, id int, res Result) (TStack, []*codec.TypeToken) {
	if id == 0 {
		return res.Blocks[0].StartStack, res.Blocks[0].StartLocals
	}
	var stacks []TStack
	var localLists []TStack
	for _, p := range g.Preds[id] {
		if !res.Visited[p.BlockID] {
			continue
		}
		stacks = append(stacks, res.Blocks[p.BlockID].EndStack)
		localLists = append(localLists, TStack(res.Blocks[p.BlockID].EndLocals))
	}
	stack := mergeLists(stacks)
	locals := mergeLists(localLists)
	if locals == nil {
		locals = res.Blocks[0].StartLocals // no scanned parent yet: inherit the seed
	}
	return stack, []*codec.TypeToken(locals)
}

func (s *Session) simulateBlock(g cfg.CFG, id int, startStack TStack, startLocals []*codec.TypeToken) (TStack, []*codec.TypeToken, error) {
	blk := g.Blocks[id]
	f := frame{stack: startStack.Clone(), locals: append([]*codec.TypeToken(nil), startLocals...), Counters: s.Counters}
	for i := blk.Start; i < blk.End; i++ {
		// Written through g.Insts by index, not the local by-value inst
		// below: TOTOS is a scalar field, unlike Operands (a slice, so
		// already shared with g.Insts' backing array), so a copy's field
		// write would otherwise be silently lost.
		g.Insts[i].TOTOS = f.stack.Top()
		inst := g.Insts[i]
		next, err := apply(inst, f, s.Resolver, s.Diags)
		if err != nil {
			return nil, nil, fmt.Errorf("offset 0x%x (%s): %w", inst.Offset, inst.Mnemonic, err)
		}
		f = next
	}
	return f.stack, f.locals, nil
}

func removeInt(s []int, v int) []int {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func sameLocals(a, b []*codec.TypeToken) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if (a[i] == nil) != (b[i] == nil) {
			return false
		}
		if a[i] != nil && a[i].JTS() != b[i].JTS() {
			return false
		}
	}
	return true
}
