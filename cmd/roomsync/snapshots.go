package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/syncroot/roomsync/internal/config"
	"github.com/syncroot/roomsync/pkg/adapters/file"
	redisstore "github.com/syncroot/roomsync/pkg/adapters/redis"
	"github.com/syncroot/roomsync/pkg/ports"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect archived session snapshots",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		ids, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No archived snapshots.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var snapshotsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print an archived snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		blob, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(blob, '\n'))
		return err
	},
}

// openStore picks the Redis archive when configured, otherwise the
// filesystem archive under the export directory.
func openStore(cmd *cobra.Command) (ports.SnapshotStore, func(), error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Redis.Addr != "" {
		archive := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		return archive, func() { _ = archive.Close() }, nil
	}
	return file.NewStore(cfg.Export.Dir), func() {}, nil
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsShowCmd)
}
