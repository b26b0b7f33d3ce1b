// Package cmd defines the command line entry points.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soundcrate/server"
)

var rootCmd = &cobra.Command{
	Use:   "soundcrate",
	Short: "Soundcrate is a personal music library service.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
