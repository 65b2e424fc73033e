package cli

import (
	"github.com/spf13/cobra"

	"github.com/LodestarLearning/lodestar-go/internal/application/startup"
	"github.com/LodestarLearning/lodestar-go/internal/config"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port, lessonDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the lesson engine server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if *port != "" {
				cfg.Server.Port = *port
			}
			if *lessonDir != "" {
				cfg.Lessons.Directory = *lessonDir
			}
			return startup.Initialize(cfg)
		},
	}
}
