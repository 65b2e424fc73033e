// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/LodestarLearning/lodestar-go/internal/application/services"
	appconfig "github.com/LodestarLearning/lodestar-go/internal/config"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/messaging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
	"github.com/LodestarLearning/lodestar-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	Config appconfig.Config

	// Observability
	Logger         *logging.ChanneledLogger
	LogBroadcaster *logging.LogBroadcaster
	PerfTracker    *performance.Tracker

	// Infrastructure
	Sessions         *state.SessionsStore
	Broadcaster      messaging.Broadcaster
	SysOpBroadcaster *messaging.SysOpBroadcaster

	// Application services
	DocumentService *services.DocumentService
	StateService    *services.StateService
	EditingService  *services.EditingService
	FragmentService *services.FragmentService
	ExportService   *services.ExportService
}

// NewContainer creates and wires all singleton services
func NewContainer(cfg appconfig.Config) (*Container, error) {
	var defaultLevel slog.Level
	if err := defaultLevel.UnmarshalText([]byte(config.DefaultLogLevel)); err != nil {
		defaultLevel = slog.LevelInfo
	}

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    config.LogToFile,
		OutputToConsole: config.LogToConsole,
		LogDirectory:    config.LogDirectory,
		JSONFormat:      config.LogJSONFormat,
		TimestampFormat: time.RFC3339,
		DefaultLevel:    defaultLevel,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	sessions := state.NewSessionsStore(cfg.SessionTTL(), logger)
	broadcaster := messaging.NewSSEBroadcaster(logger)
	sysopBroadcaster := messaging.NewSysOpBroadcaster(sessions)

	documentService := services.NewDocumentService(cfg.LessonDirectory(), logger, perfTracker)
	stateService := services.NewStateService(sessions, documentService, broadcaster, logger, perfTracker)
	editingService := services.NewEditingService(sessions, broadcaster, logger)
	fragmentService := services.NewFragmentService(sessions, documentService, logger, perfTracker)
	exportService := services.NewExportService(fragmentService, logger, perfTracker)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		LogBroadcaster:   logging.GetBroadcaster(),
		PerfTracker:      perfTracker,
		Sessions:         sessions,
		Broadcaster:      broadcaster,
		SysOpBroadcaster: sysopBroadcaster,
		DocumentService:  documentService,
		StateService:     stateService,
		EditingService:   editingService,
		FragmentService:  fragmentService,
		ExportService:    exportService,
	}, nil
}

// Close releases container-owned resources in shutdown order.
func (c *Container) Close() error {
	c.LogBroadcaster.Shutdown()
	return c.Logger.Close()
}
