// Package cli wires the fetchpool commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:     "fetchpool",
	Short:   "Asynchronous HTTP requests with a bounded-concurrency pool",
	Version: version,
	Long: `Fetchpool issues HTTP requests asynchronously and schedules batches of
them through a FIFO pool with a fixed concurrency limit, so many requests
can run against rate-limited backends without overwhelming them.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(postCmd)
	RootCmd.AddCommand(batchCmd)
}
