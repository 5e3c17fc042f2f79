package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zboralski/lattice"

	"codtool/internal/callgraph"
	"codtool/internal/disasm"
	"codtool/internal/loader"
	"codtool/internal/output"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <cod-file>...",
	Short: "Extract each module's call graph and write it as a DOT file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		mods, err := a.loadPaths(args)
		if err != nil {
			return err
		}
		if flagAppDump {
			mods = a.Loader.LoadedModules()
			sort.Slice(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name })
		}

		if flagIndividual {
			for _, m := range mods {
				routines := moduleRoutines(a, m)
				graph := callgraph.BuildModuleCallGraph(routines)
				if err := output.WriteDOT(flagOutDir, m.Name+"_callgraph", formatDOT(graph.Nodes, graph.Edges)); err != nil {
					return err
				}
			}
			return nil
		}

		var all []callgraph.RoutineInfo
		for _, m := range mods {
			all = append(all, moduleRoutines(a, m)...)
		}
		graph := callgraph.BuildModuleCallGraph(all)
		return output.WriteDOT(flagOutDir, "program_callgraph", formatDOT(graph.Nodes, graph.Edges))
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

// moduleRoutines decodes every routine in m and extracts its call edges,
// resolved against m's own import table.
func moduleRoutines(a *App, m *loader.Module) []callgraph.RoutineInfo {
	res := loader.NewModuleResolver(a.Loader, m)
	names := m.ClassNames()
	sort.Strings(names)

	var routines []callgraph.RoutineInfo
	for _, cn := range names {
		c, _ := m.Class(cn)
		for _, r := range c.Routines {
			insts, derr := disasm.Decode(r.Def.ByteCode, disasm.Options{})
			if derr != nil && len(insts) == 0 {
				continue
			}
			name := c.Name + "." + r.Name
			edges := callgraph.ExtractCallEdges(insts, res)
			routines = append(routines, callgraph.RoutineInfo{Name: name, Insts: insts, CallEdges: edges})
		}
	}
	return routines
}

// formatDOT renders a directed graph as a DOT source string. Node and edge
// labels are double-quoted with internal quotes escaped, since a routine's
// display name may itself contain punctuation (slashes, parens, the JTS
// signature characters).
func formatDOT(nodes []string, edges []lattice.Edge) string {
	var b strings.Builder
	b.WriteString("digraph callgraph {\n")
	for _, n := range nodes {
		fmt.Fprintf(&b, "  %s;\n", dotQuote(n))
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "  %s -> %s;\n", dotQuote(e.Caller), dotQuote(e.Callee))
	}
	b.WriteString("}\n")
	return b.String()
}

func dotQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
