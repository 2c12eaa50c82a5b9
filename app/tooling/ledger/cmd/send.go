package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var (
	sender   string
	receiver string
	amount   float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Pool a transaction for the next mined block.",
	RunE: func(cmd *cobra.Command, args []string) error {
		tx := struct {
			Sender   string  `json:"sender"`
			Receiver string  `json:"receiver"`
			Amount   float64 `json:"amount"`
		}{
			Sender:   sender,
			Receiver: receiver,
			Amount:   amount,
		}

		return call(cmd.Context(), cmd.OutOrStdout(), http.MethodPost, "/v1/tx/add", tx)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sender, "from", "f", "", "Sender of the transaction.")
	sendCmd.Flags().StringVarP(&receiver, "to", "r", "", "Receiver of the transaction.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}
