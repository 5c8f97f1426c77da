package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prasenjit/go-chainer/internal/api"
	"github.com/prasenjit/go-chainer/internal/config"
	"github.com/prasenjit/go-chainer/internal/events"
	"github.com/prasenjit/go-chainer/internal/stats"
	"github.com/prasenjit/go-chainer/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Go-Chainer admin server",
	Long: `Starts the Go-Chainer admin API server.

The server will:
  - Load previously uploaded specs and analyses from the data directory
  - Expose the Admin API at /_api/ (upload specs, analyze, run sequences)
  - Stream live execution events at /_api/events/stream

Configuration is loaded from config.yaml in the current directory,
or specify a custom config file with the --config flag.`,
	RunE: runServe,
}

var portFlag int

func init() {
	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "Override server port")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

// loadConfig returns the parsed config file when one was found, defaults
// otherwise. Flag overrides are applied by the caller.
func loadConfig() *config.Config {
	if path := viper.ConfigFileUsed(); path != "" {
		cfg, err := config.Load(path)
		if err == nil {
			return cfg
		}
		log.Printf("Failed to parse %s: %v, using defaults", path, err)
	}
	return config.Default()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	port := cfg.Server.Port
	host := cfg.Server.Host
	storageType := cfg.Storage.Type
	storagePath := cfg.Storage.Path
	maxEvents := cfg.Events.MaxEvents

	if p := viper.GetInt("server.port"); p > 0 && p != port {
		port = p // env or flag override
	}
	if portFlag > 0 {
		port = portFlag
	}

	if storagePath != "" && !filepath.IsAbs(storagePath) {
		cwd, err := os.Getwd()
		if err == nil {
			storagePath = filepath.Join(cwd, storagePath)
		}
	}

	log.Printf("Using data directory: %s", storagePath)

	var store storage.Storage
	var err error
	if storageType == "file" {
		store, err = storage.NewFileStorage(storagePath)
		if err != nil {
			return fmt.Errorf("failed to initialize file storage: %w", err)
		}
	} else {
		store = storage.NewMemoryStorage()
	}
	defer store.Close()

	statsCollector := stats.NewCollector()
	eventService := events.NewService(maxEvents)

	handler := api.NewHandler(store, statsCollector, eventService, cfg.Runner)
	router := api.NewRouter(handler)

	addr := fmt.Sprintf("%s:%d", host, port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // sequence runs can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting Go-Chainer server on %s", addr)
		log.Printf("Admin API available at http://%s/_api/", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}
