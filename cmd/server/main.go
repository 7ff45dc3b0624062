package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kargig/divemap-sub000/internal/api"
	"github.com/kargig/divemap-sub000/internal/config"
	"github.com/kargig/divemap-sub000/internal/site"
	"github.com/kargig/divemap-sub000/internal/websocket"
	"github.com/kargig/divemap-sub000/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting gas calculator server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
		logger.Int("site_count", len(cfg.Sites.Sites)),
		logger.Bool("rule_of_thirds", cfg.Calculators.RuleOfThirds),
		logger.Any("cors_allowed_origins", cfg.Server.CORSAllowedOrigins),
	)

	siteService := site.NewService(cfg.Sites.Sites, log)
	calculators := api.NewCalculators(cfg.Calculators, siteService)

	// Create WebSocket server
	wsServer := websocket.NewServer(log)
	wsServer.SetMessageHandler(api.NewCalcMessageHandler(calculators, log))

	// Start WebSocket server
	go wsServer.Run()

	handler := api.NewHandler(calculators, siteService, cfg, log, wsServer)
	router := api.NewRouter(handler, wsServer, cfg, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-sigCh:
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("HTTP server error", logger.String("addr", server.Addr), logger.Error(err))
		exitCode = 1
	}

	// Disconnect websocket clients before draining HTTP
	wsServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	}

	log.Info("Server fully stopped")
	if exitCode != 0 {
		log.Sync()
		os.Exit(exitCode)
	}
}
