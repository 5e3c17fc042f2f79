package his

import (
	"fmt"

	"codtool/internal/cfg"
	"codtool/internal/dartfmt"
	"codtool/internal/disasm"
	"codtool/internal/loader"
)

// NewSession builds a scan session against res (nil is valid: every
// reference-carrying instruction then resolves to the wildcard type) and
// accumulates diagnostics into diags (also nilable).
func NewSession(res Resolver, diags *dartfmt.Diags, opts dartfmt.Options) *Session {
	return &Session{Resolver: res, Diags: diags, Opts: opts, Counters: &Counters{}}
}

// Stats summarizes a completed scan for reporting, the rough equivalent of
// the counters a heuristic scanner logs at the end of a run.
type Stats struct {
	Blocks      int
	Scanned     int
	Failed      int
	UnknownOpts int

	FieldsPatched      int
	FieldPatchFailed   int
	VirtualsPatched    int
	VirtualPatchFailed int
}

// Summarize counts outcomes across a Result plus whatever diagnostics this
// session accumulated while producing it.
func (s *Session) Summarize(res Result) Stats {
	st := Stats{Blocks: len(res.Blocks)}
	for i, b := range res.Blocks {
		if res.Visited[i] {
			st.Scanned++
		}
		if b.Failed {
			st.Failed++
		}
	}
	if s.Diags != nil {
		for _, d := range s.Diags.Items() {
			if d.Kind == dartfmt.DiagUnknownTag {
				st.UnknownOpts++
			}
		}
	}
	if s.Counters != nil {
		st.FieldsPatched = s.Counters.FieldsPatched
		st.FieldPatchFailed = s.Counters.FieldPatchFailed
		st.VirtualsPatched = s.Counters.VirtualsPatched
		st.VirtualPatchFailed = s.Counters.VirtualPatchFailed
	}
	return st
}

// ScanRoutine decodes and scans a loaded routine end to end: disassembly,
// control-flow recovery (exception handler targets included), and the
// fixed-point type scan seeded from the routine's own parameter signature.
func (s *Session) ScanRoutine(r *loader.Routine) (Result, error) {
	insts, err := disasm.Decode(r.Def.ByteCode, disasm.Options{})
	if err != nil && len(insts) == 0 {
		return Result{}, fmt.Errorf("his: decode %s: %w", r.Name, err)
	}

	handlers := make([]cfg.ExceptionRange, len(r.Def.Handlers))
	for i, h := range r.Def.Handlers {
		handlers[i] = cfg.ExceptionRange{
			Start:  int(h.Start),
			End:    int(h.End),
			Target: int(h.Target),
		}
	}

	g := cfg.Build(r.Name, insts, handlers)
	localCount := r.Def.MaxLocals
	if localCount < 1 {
		localCount = 1
	}
	return s.Scan(g, r.ParamTypes, localCount), nil
}
