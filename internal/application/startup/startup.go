// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/LodestarLearning/lodestar-go/internal/application/container"
	appconfig "github.com/LodestarLearning/lodestar-go/internal/config"
	"github.com/LodestarLearning/lodestar-go/internal/presentation/http/server"
	"github.com/LodestarLearning/lodestar-go/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until a
// shutdown signal arrives.
func Initialize(cfg appconfig.Config) error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("Initializing lesson engine...")

	appContainer, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	logger := appContainer.Logger
	logger.Startup().Info("Container initialization complete, switching to channeled logging")

	// Load every lesson document before accepting traffic.
	startLoadTime := time.Now()
	if err := appContainer.DocumentService.LoadAll(); err != nil {
		return fmt.Errorf("failed to load lesson documents: %w", err)
	}
	logger.Startup().Info("Lesson documents loaded",
		"directory", cfg.LessonDirectory(),
		"count", len(appContainer.DocumentService.ListDocuments()),
		"duration", time.Since(startLoadTime))

	// Background workers: session expiry, perf retention, sysop dashboard.
	workers, workerCtx := errgroup.WithContext(ctx)
	workers.Go(func() error {
		appContainer.Sessions.StartCleanupLoop(cfg.CleanupInterval(), workerCtx.Done(),
			appContainer.StateService.ReleaseSessions)
		return nil
	})
	workers.Go(func() error {
		ticker := time.NewTicker(config.PerfCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return nil
			case <-ticker.C:
				appContainer.PerfTracker.Cleanup()
			}
		}
	})
	workers.Go(func() error {
		appContainer.SysOpBroadcaster.Run(workerCtx.Done())
		return nil
	})
	logger.Startup().Info("Background workers started",
		"sessionCleanupInterval", cfg.CleanupInterval(),
		"perfCleanupInterval", config.PerfCleanupInterval)

	httpServer := server.New(appContainer)
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", httpServer.Addr())
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"address", httpServer.Addr())

	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()
	cancelBackgroundTasks()
	if err := workers.Wait(); err != nil {
		logger.Shutdown().Error("Background worker error during shutdown", "error", err.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return appContainer.Close()
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
