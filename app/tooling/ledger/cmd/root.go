// Package cmd contains the ledger client commands.
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	url     string
	timeout time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:5001", "Url of the node.")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 5*time.Minute, "Time allowed for the node to answer.")
}

var rootCmd = &cobra.Command{
	Use:          "ledger",
	Short:        "Client for a jazcoin ledger node",
	SilenceUsage: true,
}

// Execute runs the command selected on the command line.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
