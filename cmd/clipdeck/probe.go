package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"videothingy/clipdeck/config"
	"videothingy/clipdeck/internal/ffmpeg"
	"videothingy/clipdeck/internal/timecode"
)

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Print a media file's duration using ffprobe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool := ffmpeg.New(config.Component("probe"))
		d, err := tool.ProbeDuration(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.3f\t%s\n", d, timecode.FormatClock(d))
		return nil
	},
}
