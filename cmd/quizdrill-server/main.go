package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/at-ishikawa/quizdrill/internal/bootstrap"
	"github.com/at-ishikawa/quizdrill/internal/config"
	"github.com/at-ishikawa/quizdrill/internal/logger"
	"github.com/at-ishikawa/quizdrill/internal/server"
)

var (
	configFile string
	debugMode  bool
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "quizdrill-server",
		Short:         "quizdrill JSON API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	log := logger.New(logger.Options{Debug: debugMode, File: cfg.Log.File})
	defer func() {
		_ = log.Sync()
	}()
	app := bootstrap.New(log)

	d, err := bootstrap.OpenDrill(cfg, log)
	if err != nil {
		return err
	}
	app.AddCloser("database", d.Close)

	// A missing bank is reported, not fatal: requests answer 503 until it loads
	if _, err := d.Service.Catalog(ctx); err != nil {
		log.Warn("question bank is not loadable yet", zap.Error(err))
	}

	if !debugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics := server.NewMetrics()
	router := server.NewRouter(server.RouterConfig{
		QuizHandler:    server.NewQuizHandler(d.Service, cfg.Quiz, metrics, log),
		Metrics:        metrics,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		if cfg.Questions.Watch {
			go func() {
				if err := d.Catalog.Watch(ctx); err != nil {
					log.Error("question bank watcher stopped", zap.Error(err))
				}
			}()
		}

		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
