package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a new block with the pooled transactions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.Context(), cmd.OutOrStdout(), http.MethodGet, "/v1/mine", nil)
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the full chain held by the node.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.Context(), cmd.OutOrStdout(), http.MethodGet, "/v1/chain", nil)
	},
}

var validCmd = &cobra.Command{
	Use:   "valid",
	Short: "Check the chain held by the node is valid.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.Context(), cmd.OutOrStdout(), http.MethodGet, "/v1/chain/valid", nil)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(validCmd)
}
