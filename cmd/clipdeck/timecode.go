package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"videothingy/clipdeck/internal/timecode"
)

var timecodeCmd = &cobra.Command{
	Use:   "timecode <seconds>|<h:m:s>",
	Short: "Convert between seconds and hours/minutes/seconds fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := convertTimecode(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// convertTimecode turns "h:m:s" into seconds and seconds into canonical
// "h:m:s" fields.
func convertTimecode(arg string) (string, error) {
	if parts := strings.Split(arg, ":"); len(parts) == 3 {
		s, err := timecode.ToSeconds(timecode.TimeInput{Hours: parts[0], Minutes: parts[1], Seconds: parts[2]})
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	}
	secs, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return "", fmt.Errorf("%q: %w", arg, timecode.ErrInvalid)
	}
	t := timecode.FromSeconds(secs)
	return fmt.Sprintf("%s:%s:%s", t.Hours, t.Minutes, t.Seconds), nil
}
