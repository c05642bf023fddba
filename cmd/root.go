package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/rewind/internal/config"
	"github.com/fakeyudi/rewind/internal/export"
	"github.com/fakeyudi/rewind/internal/recording"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "rewind",
	Short: "Record, replay and convert motion/event capture sessions",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// rendererFor selects the export renderer for a format name.
func rendererFor(format string) (export.Renderer, string, error) {
	switch format {
	case "json":
		return &export.JSONRenderer{}, ".json", nil
	case "csv":
		return &export.CSVRenderer{}, ".csv", nil
	}
	return nil, "", fmt.Errorf("unknown format %q (want json or csv)", format)
}

// parserFor selects the export parser by file extension.
func parserFor(path string) export.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return &export.CSVParser{}
	default:
		return &export.JSONParser{}
	}
}

// loadRecording reads and parses a recording file.
func loadRecording(path string) (*recording.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, err
	}
	return parserFor(path).Parse(data)
}
