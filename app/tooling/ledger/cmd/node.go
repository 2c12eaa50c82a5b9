package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect address [address...]",
	Short: "Register peer nodes with the node.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes := struct {
			Nodes []string `json:"nodes"`
		}{
			Nodes: args,
		}

		return call(cmd.Context(), cmd.OutOrStdout(), http.MethodPost, "/v1/node/connect", nodes)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Replace the chain with the longest valid chain of the peers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.Context(), cmd.OutOrStdout(), http.MethodGet, "/v1/node/resolve", nil)
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(resolveCmd)
}
