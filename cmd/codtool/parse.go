package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"codtool/internal/loader"
	"codtool/internal/output"
)

var parseCmd = &cobra.Command{
	Use:   "parse <cod-file>...",
	Short: "Parse one or more .cod modules and write a class index for each",
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
		for _, m := range mods {
			idx := moduleIndex(m)
			if err := output.WriteModuleIndexJSON(flagOutDir, idx); err != nil {
				return fmt.Errorf("write index for %s: %w", m.Name, err)
			}
			fmt.Printf("%s: %d classes\n", m.Name, len(idx.Classes))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

// moduleIndex builds the JSON-serializable summary of a loaded module.
func moduleIndex(m *loader.Module) output.ModuleIndex {
	names := m.ClassNames()
	sort.Strings(names)
	return output.ModuleIndex{Name: m.Name, Version: m.Version, Path: m.Path, Classes: names}
}
