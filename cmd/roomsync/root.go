package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roomsync",
	Short: "Roomsync mirrors remote session state into a local snapshot",
	Long: `Roomsync connects to a session's data channel, folds the authority's
state broadcasts into a local snapshot and renders it live. It can also
export the authoritative state to a file and replay an export into a
fresh session.`,
}

// Execute runs the root command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "roomsync.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("url", "", "Data channel websocket URL (overrides config)")
	rootCmd.PersistentFlags().String("session", "", "Session ID (overrides config)")
}
