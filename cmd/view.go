package cmd

import (
	"os"
	"sort"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/rewind/internal/recording"
	"github.com/fakeyudi/rewind/internal/tui"
)

var (
	plainOutput bool
	watchFile   bool
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Replay a recording interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		rec, err := loadRecording(path)
		if err != nil {
			return err
		}

		// Without a terminal there is nothing to play back interactively.
		if plainOutput || !term.IsTerminal(os.Stdout.Fd()) {
			printRecording(cmd, rec)
			return nil
		}
		return tui.Run(rec, path, watchFile, loadRecording)
	},
}

// printRecording writes a plain-text summary of the recording.
func printRecording(cmd *cobra.Command, rec *recording.Recording) {
	cmd.Println("## Recording")
	cmd.Printf("  Name:      %s\n", rec.Name)
	cmd.Printf("  Duration:  %.3fs\n", rec.Duration())
	cmd.Printf("  Subjects:  %d\n", len(rec.Subjects))
	cmd.Println()

	cmd.Println("## Metadata")
	if len(rec.Metadata) == 0 {
		cmd.Println("  (none)")
	} else {
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

	cmd.Println("## Subjects")
	if len(rec.Subjects) == 0 {
		cmd.Println("  (none)")
	} else {
		for _, s := range rec.Subjects {
			cmd.Printf("  [%d] %s: %d positions, %d rotations\n",
				s.SubjectID, s.Name, len(s.Positions), len(s.Rotations))
			for _, lc := range s.LifecycleEvents {
				cmd.Printf("      %8.3fs  %s\n", lc.Time, lc.Event)
			}
			for _, ev := range s.CustomEvents {
				cmd.Printf("      %8.3fs  %s\n", ev.Time, ev.Name)
			}
		}
	}
	cmd.Println()

	cmd.Println("## Global Events")
	if len(rec.GlobalEvents) == 0 {
		cmd.Println("  (none)")
	} else {
		for _, ev := range rec.GlobalEvents {
			cmd.Printf("  %8.3fs  %s\n", ev.Time, ev.Name)
		}
	}
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of the interactive viewer")
	viewCmd.Flags().BoolVar(&watchFile, "watch", false, "reload the recording when the file changes")
	rootCmd.AddCommand(viewCmd)
}
