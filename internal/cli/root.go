// Package cli wires the wfmon command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configFlag is the --config override shared by all commands.
var configFlag string

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wfmon",
	Short: "Terminal dashboard for workflow engine progress",
	Long: `wfmon watches a workflow engine's log (or a scheduler's queue) and
renders live progress: completed, running, pending, and failed jobs,
percent complete, and an ETA.

Supported engines: snakemake, nextflow, cromwell, slurm.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default: .wfmon.yaml, searched upward)")
}
