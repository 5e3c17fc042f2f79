package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"codtool/internal/disasm"
	"codtool/internal/output"
)

var disasmClassName string

var disasmCmd = &cobra.Command{
	Use:   "disasm <cod-file>...",
	Short: "Disassemble every routine and write a per-routine text listing",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagFormat != "text" {
			return fmt.Errorf("disasm only supports --format=text today, got %q", flagFormat)
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

		var failed int
		for _, m := range mods {
			names := m.ClassNames()
			sort.Strings(names)
			for _, cn := range names {
				if disasmClassName != "" && cn != disasmClassName {
					continue
				}
				c, _ := m.Class(cn)
				for _, r := range c.Routines {
					insts, derr := disasm.Decode(r.Def.ByteCode, disasm.Options{})
					if derr != nil && len(insts) == 0 {
						fmt.Printf("%s/%s: decode failed: %v\n", c.Name, r.Name, derr)
						failed++
						continue
					}
					name := c.Name + "/" + r.Name
					if err := output.WriteDisasm(flagOutDir, name, insts); err != nil {
						return fmt.Errorf("write disasm for %s: %w", name, err)
					}
				}
			}
		}
		if failed > 0 {
			fmt.Printf("%d routine(s) failed to decode\n", failed)
		}
		return nil
	},
}

func init() {
	disasmCmd.Flags().StringVar(&disasmClassName, "class", "", "restrict disassembly to one class")
	rootCmd.AddCommand(disasmCmd)
}
