package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var convertFormat string

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a recording between the JSON and CSV formats",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]

		rec, err := loadRecording(in)
		if err != nil {
			return err
		}

		format := convertFormat
		if format == "" {
			// Infer from the output extension.
			switch strings.ToLower(filepath.Ext(out)) {
			case ".csv":
				format = "csv"
			case ".json":
				format = "json"
			default:
				format = cfg.DefaultFormat
			}
		}
		renderer, _, err := rendererFor(format)
		if err != nil {
			return err
		}

		data, err := renderer.Render(rec)
		if err != nil {
			return fmt.Errorf("render recording: %w", err)
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}

		cmd.Printf("Converted %s -> %s (%s)\n", in, out, format)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertFormat, "format", "", "Target format: json or csv (default from output extension)")
	rootCmd.AddCommand(convertCmd)
}
