package cmd

import (
	"sort"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print statistics about a recording file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := loadRecording(args[0])
		if err != nil {
			return err
		}

		cmd.Printf("Name:       %s\n", rec.Name)
		cmd.Printf("Duration:   %.3fs\n", rec.Duration())
		cmd.Printf("Start time: %.3fs\n", rec.StartTime())
		cmd.Printf("Subjects:   %d\n", len(rec.Subjects))
		cmd.Printf("Samples:    %d\n", rec.SampleCount())
		cmd.Printf("Global events: %d\n", len(rec.GlobalEvents))
		if len(rec.Metadata) > 0 {
			cmd.Println("Metadata:")
			keys := make([]string, 0, len(rec.Metadata))
			for k := range rec.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				cmd.Printf("  %s = %s\n", k, rec.Metadata[k])
			}
		}
		cmd.Println()

		for _, s := range rec.Subjects {
			cmd.Printf("  [%d] %s: %d positions, %d rotations, %d lifecycle, %d events\n",
				s.SubjectID, s.Name,
				len(s.Positions), len(s.Rotations),
				len(s.LifecycleEvents), len(s.CustomEvents))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
