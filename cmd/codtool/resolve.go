package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"codtool/internal/loader"
)

var resolveClassName string

var resolveCmd = &cobra.Command{
	Use:   "resolve <cod-file>...",
	Short: "Load modules and resolve superclass/interface handles, field and routine tables",
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

		if resolveClassName != "" {
			c, ok := findClass(mods, resolveClassName)
			if !ok {
				return fmt.Errorf("class %s not found in %d loaded module(s)", resolveClassName, len(mods))
			}
			printClass(c)
			return nil
		}

		for _, m := range mods {
			names := m.ClassNames()
			sort.Strings(names)
			fmt.Printf("%s (%d classes)\n", m.Name, len(names))
			for _, n := range names {
				c, _ := m.Class(n)
				super := "<none>"
				if c.Superclass != nil {
					if s, err := c.Superclass.Get(); err == nil && s != nil {
						super = s.Name
					} else {
						super = "<unresolved>"
					}
				}
				fmt.Printf("  %s extends %s (%d fields, %d routines)\n", n, super, len(c.Fields), len(c.Routines))
			}
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveClassName, "class", "", "fully-qualified class name to resolve in detail")
	rootCmd.AddCommand(resolveCmd)
}

func findClass(mods []*loader.Module, name string) (*loader.Class, bool) {
	for _, m := range mods {
		if c, ok := m.Class(name); ok {
			return c, true
		}
	}
	return nil, false
}

func printClass(c *loader.Class) {
	fmt.Printf("class %s (module %s)\n", c.Name, c.Module.Name)
	if c.Superclass != nil {
		if s, err := c.Superclass.Get(); err == nil && s != nil {
			fmt.Printf("  superclass: %s\n", s.Name)
		} else {
			fmt.Printf("  superclass: <unresolved>\n")
		}
	}
	for _, ih := range c.Ifaces {
		if iface, err := ih.Get(); err == nil && iface != nil {
			fmt.Printf("  implements: %s\n", iface.Name)
		} else {
			fmt.Printf("  implements: <unresolved>\n")
		}
	}
	for _, f := range c.Fields {
		fmt.Printf("  field %s %s\n", f.Name, jtsOf(f))
	}
	for _, f := range c.StaticFields {
		fmt.Printf("  static field %s %s (addr 0x%x)\n", f.Name, jtsOf(f), f.Address)
	}
	for _, r := range c.Routines {
		fmt.Printf("  routine %s(%s)%s\n", r.Name, r.ParamTypes.JTS(false), returnJTS(r))
	}
}

func jtsOf(f *loader.Field) string {
	if f.Type == nil {
		return "?"
	}
	return f.Type.JTS()
}

func returnJTS(r *loader.Routine) string {
	if r.ReturnType == nil {
		return "?"
	}
	return r.ReturnType.JTS()
}
