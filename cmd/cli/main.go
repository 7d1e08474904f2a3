// Command cli talks to a running matchmaker server over its HTTP API.
package main

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var api = &client{}

var rootCmd = &cobra.Command{
	Use:           "matchmaker-cli",
	Short:         "Queue players and inspect matches on a matchmaker server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		api.http.Timeout = api.timeout
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&api.host, "host", "http://localhost:8080", "Base URL of the matchmaker server")
	rootCmd.PersistentFlags().DurationVar(&api.timeout, "timeout", 10*time.Second, "Request timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
