package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"videothingy/clipdeck/config"
	"videothingy/clipdeck/handlers"
	"videothingy/clipdeck/internal/ffmpeg"
	"videothingy/clipdeck/internal/renderclient"
	"videothingy/clipdeck/internal/store"
	"videothingy/clipdeck/internal/worker"
	"videothingy/clipdeck/middleware"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
}

func openStore(cfg config.Config, logger *logrus.Entry) (store.Store, error) {
	switch cfg.Store.Driver {
	case "supabase":
		client, err := config.InitSupabase(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
		if err != nil {
			return nil, err
		}
		return store.NewSupabase(client, logger), nil
	case "memory":
		return store.NewMemory(), nil
	default:
		return store.OpenSQLite(cfg.Store.SQLitePath, logger)
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := config.InitLogger(cfg.LogLevel)
	log := logger.WithField("component", "serve")

	st, err := openStore(cfg, logger.WithField("component", "store"))
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer st.Close()

	if err := os.MkdirAll(cfg.Render.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	dispatcher := worker.NewDispatcher(cfg.Render.Workers, cfg.Render.QueueSize, logger.WithField("component", "worker"))
	dispatcher.Run(ctx)
	defer dispatcher.Stop()

	tool := ffmpeg.New(logger.WithField("component", "ffmpeg"))
	h := handlers.NewApplicationHandler(st, dispatcher, logger, cfg)
	h.Extractor = tool
	h.Prober = tool
	if cfg.Render.GRPCAddr != "" {
		rc, err := renderclient.New(cfg.Render.GRPCAddr, logger.WithField("component", "renderclient"))
		if err != nil {
			return err
		}
		defer rc.Close()
		h.Renderer = rc
	}
	defer h.Sessions.CloseAll()

	app := fiber.New(fiber.Config{AppName: "clipdeck"})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.RequestIDHeader,
	}))
	app.Use(middleware.RequestLogger(logger))
	h.RegisterRoutes(app)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.WithFields(logrus.Fields{"addr": addr, "store": cfg.Store.Driver}).Info("Starting clipdeck")
		errCh <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		return err
	case <-sig:
		log.Info("Shutting down clipdeck...")
	case <-ctx.Done():
	}
	return app.Shutdown()
}
