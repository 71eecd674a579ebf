package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "videoclip <transcript> <video>",
		Short:        "Cut short-form vertical clips from a video and its transcript",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], args[1])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "out", "Output directory")
	root.Flags().Int("clips", 3, "Maximum number of clips")
	root.Flags().Int("min", 15, "Minimum clip duration seconds")
	root.Flags().Int("max", 60, "Maximum clip duration seconds")
	root.Flags().Bool("captions", true, "Burn captions into each clip")
	root.Flags().Bool("enhance", true, "Apply visual and audio enhancements")
	root.Flags().Bool("zoom", true, "Auto-zoom landscape sources to vertical")
	root.Flags().String("music", "", "Background music file to mix in")
	root.Flags().Int("music-volume", 30, "Background music volume percent")
	root.Flags().String("scorer", "heuristic", "Segment scorer: heuristic or model")
	root.Flags().String("title", "", "Video title used in clip names")
	root.Flags().Int("workers", 0, "Concurrent clip renders (0 = default)")
	root.Flags().Bool("verbose", false, "Debug logging")

	// Hidden tuning flag (internal)
	root.Flags().Int64("seed", 0, "Heuristic jitter seed (0 = clock)")
	_ = root.Flags().MarkHidden("seed")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
