package cmd

import (
	"github.com/spf13/cobra"

	"soundcrate/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP API server",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
