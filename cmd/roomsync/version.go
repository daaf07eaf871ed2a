package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/syncroot/roomsync"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of roomsync",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("roomsync version %s\n", strings.TrimSpace(roomsync.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
