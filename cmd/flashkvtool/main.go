// Command flashkvtool exercises the flashkv public API against a
// file-backed block device, for manual testing and fixture generation.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "flashkvtool",
	Short: "Exercise a flashkv store against a file-backed region",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "flashkv.jsonc", "path to the region's JSON-with-comments config file")

	// Parsed directly off pflag.CommandLine rather than through a
	// cobra.Command's Flags(), so it takes effect before any
	// subcommand's RunE runs. UnknownFlags lets it ignore whatever
	// subcommand-specific flags come later on the line.
	pflag.CommandLine.ParseErrorsWhitelist.UnknownFlags = true
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pflag.Parse()
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
