package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"codtool/internal/cache"
	"codtool/internal/loader"
	"codtool/internal/namedb"
)

var (
	flagCacheDir   string
	flagNamesDB    string
	flagOutDir     string
	flagMaxModules int
	flagIndividual bool
	flagHiscan     bool
	flagAppDump    bool
	flagFormat     string
)

var validFormats = map[string]bool{
	"text": true, "xml": true, "classfile": true, "archive": true, "cache": true,
}

var rootCmd = &cobra.Command{
	Use:   "codtool",
	Short: "Static analysis toolchain for BlackBerry/RIM .cod modules",
	Long: `codtool loads .cod bytecode modules, resolves their cross-module class
references, disassembles routines, runs the heuristic instruction scanner
to recover stack/local types, and extracts call graphs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !validFormats[flagFormat] {
			return fmt.Errorf("unsupported format %q (want text|xml|classfile|archive|cache)", flagFormat)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagCacheDir, "cache-dir", "", "cache root: plain directory, or a ZIP archive for read-only use")
	pf.StringVar(&flagNamesDB, "names-db", "", "routine/field rename database (ZIP container)")
	pf.StringVar(&flagOutDir, "out", "out", "output directory")
	pf.IntVar(&flagMaxModules, "max-modules", 0, "maximum modules to load (0 = unlimited)")
	pf.BoolVar(&flagIndividual, "individual", false, "process each module independently rather than as one program")
	pf.BoolVar(&flagHiscan, "enable-hiscan", true, "run the heuristic instruction scanner over each routine")
	pf.BoolVar(&flagAppDump, "application-dump", false, "dump every loaded module, not only ones named on the command line")
	pf.StringVar(&flagFormat, "format", "text", "disassembly output format: text|xml|classfile|archive|cache")
}

// Execute runs the codtool command tree, printing an error and exiting
// nonzero on argument errors or fatal load failures.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// App bundles the resources shared across subcommands: the module loader,
// the on-disk cache (nil unless --cache-dir is set), and the rename
// database (nil unless --names-db is set).
type App struct {
	Loader *loader.Loader
	Cache  cache.Store
	Names  *namedb.NameDB
}

// newApp opens the cache and name database named by the persistent flags,
// if any, and returns an App ready to load modules.
func newApp() (*App, error) {
	a := &App{Loader: loader.New()}
	if flagCacheDir != "" {
		store, err := cache.Open(flagCacheDir)
		if err != nil {
			return nil, fmt.Errorf("open cache %s: %w", flagCacheDir, err)
		}
		a.Cache = store
	}
	if flagNamesDB != "" {
		db, err := namedb.Open(flagNamesDB)
		if err != nil {
			return nil, fmt.Errorf("open names db %s: %w", flagNamesDB, err)
		}
		a.Names = db
	}
	return a, nil
}

// Close releases the loader's mmapped files and the cache's file handle.
func (a *App) Close() error {
	var firstErr error
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := a.Loader.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// loadPaths registers each path under its basename (minus the .cod
// extension) and loads every registered module, respecting --max-modules.
// It returns the loaded modules in the same order paths were given.
func (a *App) loadPaths(paths []string) ([]*loader.Module, error) {
	if flagMaxModules > 0 && len(paths) > flagMaxModules {
		paths = paths[:flagMaxModules]
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = moduleNameForPath(p)
		a.Loader.RegisterPath(names[i], p)
	}
	if err := a.Loader.LoadModules(names); err != nil {
		return nil, err
	}
	mods := make([]*loader.Module, len(names))
	for i, n := range names {
		m, err := a.Loader.LoadModule(n)
		if err != nil {
			return nil, err
		}
		mods[i] = m
	}
	return mods, nil
}

func moduleNameForPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
