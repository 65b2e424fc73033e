package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/LodestarLearning/lodestar-go/internal/config"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/lesson"
)

// NewValidateCmd builds the CLI subcommand that checks lesson files without
// starting the server.
func NewValidateCmd(configPath, lessonDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate all lesson documents and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if *lessonDir != "" {
				cfg.Lessons.Directory = *lessonDir
			}
			return validateLessons(cmd, cfg.LessonDirectory())
		},
	}
}

func validateLessons(cmd *cobra.Command, directory string) error {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return fmt.Errorf("read lesson directory %q: %w", directory, err)
	}

	var checked, failed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		checked++

		path := filepath.Join(directory, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			failed++
			cmd.PrintErrf("%s: %v\n", entry.Name(), err)
			continue
		}

		var doc lesson.Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			failed++
			cmd.PrintErrf("%s: %v\n", entry.Name(), err)
			continue
		}
		if err := doc.Validate(); err != nil {
			failed++
			cmd.PrintErrf("%s: %v\n", entry.Name(), err)
			continue
		}
		cmd.Printf("%s: ok (%s, %d blocks)\n", entry.Name(), doc.ID, len(doc.Blocks))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lesson files failed validation", failed, checked)
	}
	cmd.Printf("%d lesson files validated\n", checked)
	return nil
}
