package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"codtool/internal/dartfmt"
	"codtool/internal/his"
	"codtool/internal/loader"
	"codtool/internal/output"
)

var scanClassName string

var scanCmd = &cobra.Command{
	Use:   "scan <cod-file>...",
	Short: "Run the heuristic instruction scanner over every routine and write a scan summary",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagHiscan {
			fmt.Println("hiscan disabled (--enable-hiscan=false), skipping")
			return nil
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		mods, err := a.loadPaths(args)
		if err != nil {
			return err
		}

		opts := dartfmt.Options{Mode: dartfmt.ModeBestEffort}
		var scanned, failed int
		for _, m := range mods {
			res := loader.NewModuleResolver(a.Loader, m)
			names := m.ClassNames()
			sort.Strings(names)
			for _, cn := range names {
				if scanClassName != "" && cn != scanClassName {
					continue
				}
				c, _ := m.Class(cn)
				for _, r := range c.Routines {
					diags := &dartfmt.Diags{}
					sess := his.NewSession(res, diags, opts)
					result, serr := sess.ScanRoutine(r)
					if serr != nil {
						fmt.Printf("%s/%s: scan failed: %v\n", c.Name, r.Name, serr)
						failed++
						continue
					}
					stats := sess.Summarize(result)
					name := c.Name + "/" + r.Name
					out := output.RoutineScan{
						Name:    name,
						Blocks:  stats.Blocks,
						Scanned: stats.Scanned,
						Failed:  stats.Failed,
						Stats:   &stats,
					}
					if err := output.WriteRoutineScanJSON(flagOutDir, name, out); err != nil {
						return fmt.Errorf("write scan for %s: %w", name, err)
					}
					scanned++
				}
			}
		}
		fmt.Printf("scanned %d routine(s), %d failed to decode\n", scanned, failed)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanClassName, "class", "", "restrict scanning to one class")
	rootCmd.AddCommand(scanCmd)
}
