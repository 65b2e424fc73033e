// Package cli wires the cobra command tree for the lesson engine.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
	lessonDir  string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	if envPort == "" {
		envPort = "8080"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "lodestar-go",
		Short: "Reactive lesson engine with inline authoring",
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&lessonDir, "lessons", "", "lesson content directory (overrides config)")
	cmd.AddCommand(NewServeCmd(&configPath, &port, &lessonDir))
	cmd.AddCommand(NewValidateCmd(&configPath, &lessonDir))
	return cmd
}
