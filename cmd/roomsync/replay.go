package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/syncroot/roomsync/internal/config"
	"github.com/syncroot/roomsync/pkg/adapters/websocket"
	"github.com/syncroot/roomsync/pkg/ports"
	"github.com/syncroot/roomsync/pkg/reducer"
	"github.com/syncroot/roomsync/pkg/session"
	"github.com/syncroot/roomsync/pkg/variants/arcade"
	"github.com/syncroot/roomsync/pkg/variants/commerce"
)

var replayCmd = &cobra.Command{
	Use:   "replay <export.json>",
	Short: "Load an exported snapshot into the session",
	Long: `Sends a previously exported snapshot to the remote authority via a
reliable load request. The authority validates the blob and rebroadcasts
fresh state; this command waits for that broadcast before exiting.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime(cmd)
		if err != nil {
			return err
		}

		blob, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read export: %w", err)
		}

		ch, err := websocket.Dial(cmd.Context(), cfg.Channel.URL, websocket.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}

		if cfg.Session.Variant == "arcade" {
			return replay(cmd.Context(), cfg, logger, ch, arcade.NewRegistry(), arcade.NewSnapshot(), blob)
		}
		return replay(cmd.Context(), cfg, logger, ch, commerce.NewRegistry(), commerce.NewSnapshot(), blob)
	},
}

// replay submits the blob and waits for the authority's rebroadcast so
// the caller knows the load took effect.
func replay[S any](ctx context.Context, cfg *config.Config, logger *slog.Logger, ch ports.DataChannel, reg *reducer.Registry[S], initial S, blob []byte) error {
	sync := session.New(cfg.Session.ID, ch, reg, initial,
		session.WithLogger[S](logger),
		session.WithAckTimeout[S](cfg.Session.AckTimeout),
	)
	if err := sync.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sync.Close()

	sub, cancel := sync.Subscribe()
	defer cancel()

	if err := sync.RequestLoad(ctx, blob); err != nil {
		return fmt.Errorf("load rejected: %w", err)
	}

	timer := time.NewTimer(cfg.Session.AckTimeout)
	defer timer.Stop()

	select {
	case <-sub:
		fmt.Println("Snapshot loaded; authority rebroadcast received.")
		return nil
	case <-timer.C:
		return fmt.Errorf("no state broadcast within %s after load", cfg.Session.AckTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
