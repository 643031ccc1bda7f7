// Command selection serves the product selection ledger and quota
// calculator behind the event payment form.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const Domain = "selection"

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "selection",
	Short: "Product selection ledger and guest quota calculator",
	Long: `selection keeps the list of products picked for an event, computes the
per-guest quota, and exposes both over gRPC and HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(callCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
