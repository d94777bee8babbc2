package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/yt-courier-go/api"
	"github.com/yourusername/yt-courier-go/internal/app"
	"github.com/yourusername/yt-courier-go/internal/domain"
	"github.com/yourusername/yt-courier-go/internal/infrastructure"
	"github.com/yourusername/yt-courier-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	// Load configuration; a missing BOT_TOKEN is an unrecoverable
	// startup error
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting yt-courier bot",
		zap.String("version", "1.0.0"),
		zap.Bool("admin_api", config.Server.Enabled))

	// Create directories
	if err := createDirectories(config); err != nil {
		log.Fatal("Failed to create directories", zap.Error(err))
	}

	// Initialize user store
	users, err := infrastructure.NewSQLiteUserRepository(config.Database.Path)
	if err != nil {
		log.Fatal("Failed to initialize user store", zap.Error(err))
	}
	defer users.Close()

	// Initialize failed-item ledger and restore persisted state
	ledgerStore, err := infrastructure.NewFileLedgerStore(config.Download.FailedDir)
	if err != nil {
		log.Fatal("Failed to initialize ledger store", zap.Error(err))
	}
	ledger := app.NewFailedLedger(ledgerStore, log)
	if err := ledger.Load(); err != nil {
		log.Fatal("Failed to restore ledger state", zap.Error(err))
	}

	// Initialize transport
	transport, err := infrastructure.NewTelegramTransport(
		config.Telegram.Token, config.Telegram.PollTimeout, log)
	if err != nil {
		log.Fatal("Failed to initialize telegram transport", zap.Error(err))
	}

	// Wire the download pipeline
	fetcher := infrastructure.NewYouTubeFetcher(log)
	extractor := infrastructure.NewFFmpegExtractor(config.Download.FFmpegBinary, log)
	archiver := infrastructure.NewZipArchiver()

	downloads := app.NewDownloadService(
		fetcher, extractor, archiver, transport, ledger, users, &config.Download, log)

	sessions := app.NewSessionStore(config.Download.SessionTTL)
	conversation := app.NewConversation(sessions, downloads, ledger, users, transport, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var listening atomic.Bool

	// Start the admin HTTP server
	var server *http.Server
	if config.Server.Enabled {
		router := api.SetupRouter(ledger, users, listening.Load, log)
		addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
		server = &http.Server{Addr: addr, Handler: router}

		go func() {
			log.Info("Admin API listening", zap.String("addr", addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal("Failed to start admin API", zap.Error(err))
			}
		}()
	}

	// Start the receive loop
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		listening.Store(true)
		transport.Listen(ctx, conversation.Handle)
		listening.Store(false)
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	cancel()

	select {
	case <-loopDone:
	case <-time.After(10 * time.Second):
		log.Warn("Receive loop did not stop in time")
	}

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Admin API forced to shutdown", zap.Error(err))
		}
	}

	log.Info("Bot exited")
}

func createDirectories(config *domain.Config) error {
	dirs := []string{
		config.Download.BaseDir,
		config.Download.DownloadsDir,
		config.Download.ArchivesDir,
		config.Download.FailedDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
