package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/rewind/internal/demo"
)

var (
	demoOutput   string
	demoFormat   string
	demoSubjects int
	demoDuration float64
	demoRate     float64
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a synthetic capture session and write the recording",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := demo.DefaultOptions()
		opts.Subjects = demoSubjects
		opts.Duration = demoDuration
		opts.SampleRate = demoRate
		opts.PositionThreshold = cfg.PositionThreshold
		opts.RotationThreshold = cfg.RotationThreshold

		rec, warnings, err := demo.Generate(opts)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}

		format := demoFormat
		if format == "" {
			format = cfg.DefaultFormat
		}
		renderer, ext, err := rendererFor(format)
		if err != nil {
			return err
		}
		data, err := renderer.Render(rec)
		if err != nil {
			return fmt.Errorf("render recording: %w", err)
		}

		outputPath := demoOutput
		if outputPath == "" {
			outputPath = filepath.Join(cfg.OutputDir, "demo"+ext)
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}

		cmd.Printf("Recorded %d subjects over %.1fs. Output: %s\n",
			len(rec.Subjects), rec.Duration(), outputPath)
		return nil
	},
}

func init() {
	demoCmd.Flags().StringVarP(&demoOutput, "output", "o", "", "Output file (default <output_dir>/demo.<ext>)")
	demoCmd.Flags().StringVar(&demoFormat, "format", "", "Output format: json or csv (overrides config)")
	demoCmd.Flags().IntVar(&demoSubjects, "subjects", 3, "Number of orbiting subjects")
	demoCmd.Flags().Float64Var(&demoDuration, "duration", 30, "Virtual capture duration in seconds")
	demoCmd.Flags().Float64Var(&demoRate, "rate", 10, "Samples per virtual second")
	rootCmd.AddCommand(demoCmd)
}
