package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fetchplan",
		Short: "Eager-load path compiler tooling",
		Long: `fetchplan compiles declarative traversal paths over an entity graph
into merged eager-load directive trees. This tool inspects what the
compiler produces for a given schema and set of paths.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(explainCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fetchplan %s (%s)\n", Version, GitCommit)
	},
}
