package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/syncroot/roomsync/internal/config"
	"github.com/syncroot/roomsync/internal/logging"
	"github.com/syncroot/roomsync/internal/metrics"
	"github.com/syncroot/roomsync/internal/presentation/view"
	"github.com/syncroot/roomsync/pkg/adapters/file"
	httpadapter "github.com/syncroot/roomsync/pkg/adapters/http"
	redisstore "github.com/syncroot/roomsync/pkg/adapters/redis"
	"github.com/syncroot/roomsync/pkg/adapters/websocket"
	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/ports"
	"github.com/syncroot/roomsync/pkg/reducer"
	"github.com/syncroot/roomsync/pkg/session"
	"github.com/syncroot/roomsync/pkg/variants/arcade"
	"github.com/syncroot/roomsync/pkg/variants/commerce"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to a session and mirror its state live",
	Long: `Connects to the session's data channel, applies the authority's state
broadcasts and renders the snapshot to the terminal. Acknowledged saves
are exported to the configured directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime(cmd)
		if err != nil {
			return err
		}

		switch cfg.Session.Variant {
		case "arcade":
			dashboard := view.NewDashboardPlain()
			if term.IsTerminal(int(os.Stdout.Fd())) {
				dashboard = view.NewDashboard()
			}
			return runSession(cmd.Context(), cfg, logger, arcade.NewRegistry(), arcade.NewSnapshot(), dashboard.Render)
		default:
			storefront := view.NewStorefront()
			return runSession(cmd.Context(), cfg, logger, commerce.NewRegistry(), commerce.NewSnapshot(), func(snap commerce.Snapshot) string {
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					return storefront.Markdown(snap)
				}
				out, err := storefront.Render(snap)
				if err != nil {
					return storefront.Markdown(snap)
				}
				return out
			})
		}
	},
}

// loadRuntime merges the config file with command line overrides and
// builds the logger.
func loadRuntime(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if url, _ := cmd.Flags().GetString("url"); url != "" {
		cfg.Channel.URL = url
	}
	if id, _ := cmd.Flags().GetString("session"); id != "" {
		cfg.Session.ID = id
	}
	if variant, _ := cmd.Flags().GetString("variant"); variant != "" {
		cfg.Session.Variant = variant
	}
	if dir, _ := cmd.Flags().GetString("export-dir"); dir != "" {
		cfg.Export.Dir = dir
	}
	if addr, _ := cmd.Flags().GetString("http"); addr != "" {
		cfg.HTTP.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if cfg.Channel.URL == "" {
		return nil, nil, fmt.Errorf("no channel URL configured (set channel.url or --url)")
	}

	return cfg, logging.New(parseLevel(cfg.Log.Level)), nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// runSession wires the adapters around a synchronizer and blocks until
// the session ends or a signal arrives.
func runSession[S any](ctx context.Context, cfg *config.Config, logger *slog.Logger, reg *reducer.Registry[S], initial S, render func(S) string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch, err := websocket.Dial(ctx, cfg.Channel.URL, websocket.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	// Acknowledged saves are exported to disk, and mirrored to Redis when
	// an archive is configured.
	exporter := file.NewExporter(cfg.Export.Dir, cfg.Export.Prefix)
	saveRoute := domain.RouteKey{Kind: domain.KindSaveAck, Topic: domain.TopicSystem}
	if cfg.Redis.Addr == "" {
		reg.HandleEffect(saveRoute, exporter.Effect())
	} else {
		archive := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisstore.WithTTL(cfg.Redis.TTL))
		defer archive.Close()
		reg.HandleEffect(saveRoute, archivingEffect(cfg.Session.ID, exporter, archive))
	}

	m := metrics.New()
	hooks := metrics.Combine(m.Hooks(), domain.LifecycleHooks{
		OnPhaseChange: func(ctx context.Context, ev *domain.PhaseEvent) {
			logger.Info("phase change", "from", string(ev.From), "to", string(ev.To))
		},
	})
	sync := session.New(cfg.Session.ID, ch, reg, initial,
		session.WithLogger[S](logger),
		session.WithAckTimeout[S](cfg.Session.AckTimeout),
		session.WithHooks[S](hooks),
	)

	if err := sync.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sync.Close()

	if cfg.HTTP.Addr != "" {
		srv := &http.Server{
			Addr: cfg.HTTP.Addr,
			Handler: httpadapter.NewHandler(sync,
				httpadapter.WithLogger[S](logger),
				httpadapter.WithMetricsHandler[S](m.Handler()),
			),
		}
		go func() {
			logger.Info("observer API listening", "addr", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("observer API failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	sub, cancel := sync.Subscribe()
	defer cancel()

	logger.Info("session connected",
		"session_id", cfg.Session.ID,
		"variant", cfg.Session.Variant,
		"url", cfg.Channel.URL,
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case snap, ok := <-sub:
			if !ok {
				logger.Info("session ended by remote")
				return nil
			}
			fmt.Println(render(snap))
		}
	}
}

// archivingEffect exports to disk first, then mirrors the blob into the
// snapshot store. The disk copy is authoritative for replay.
func archivingEffect(sessionID string, exporter *file.Exporter, store ports.SnapshotStore) ports.EffectFunc {
	fileEffect := exporter.Effect()
	return func(ctx context.Context, env domain.Envelope) error {
		if err := fileEffect(ctx, env); err != nil {
			return err
		}
		return store.Save(ctx, sessionID, env.Raw)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("variant", "", "State variant: commerce or arcade (overrides config)")
	runCmd.Flags().String("export-dir", "", "Directory for exported snapshots (overrides config)")
	runCmd.Flags().String("http", "", "Listen address for the observer API, e.g. :8090")
}
