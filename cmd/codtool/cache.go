package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codtool/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the on-disk module/class cache named by --cache-dir",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every key stored in the cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireCache()
		if err != nil {
			return err
		}
		defer store.Close()

		keys, err := store.List()
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	},
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the size of one cached entry, or report it missing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireCache()
		if err != nil {
			return err
		}
		defer store.Close()

		data, ok, err := store.Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("key %q not found in cache", args[0])
		}
		fmt.Printf("%s: %d bytes\n", args[0], len(data))
		return nil
	},
}

func requireCache() (cache.Store, error) {
	if flagCacheDir == "" {
		return nil, fmt.Errorf("cache subcommands require --cache-dir")
	}
	return cache.Open(flagCacheDir)
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheGetCmd)
	rootCmd.AddCommand(cacheCmd)
}
