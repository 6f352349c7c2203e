// Package export renders a clip set into interchange formats for NLEs.
package export

import (
	"fmt"
	"math"
	"strings"

	"videothingy/clipdeck/internal/clips"
)

const DefaultFrameRate = 30.0

// EDLOptions names the reel and media written into the list.
type EDLOptions struct {
	Title     string
	MediaPath string
	FrameRate float64
}

// GenerateEDL writes a CMX3600 style edit list with one event per clip in
// list order. Record times butt the clips end to end.
func GenerateEDL(list []clips.Clip, opts EDLOptions) string {
	fps := int(math.Round(opts.FrameRate))
	if fps <= 0 {
		fps = int(DefaultFrameRate)
	}
	title := opts.Title
	if title == "" {
		title = "clipdeck"
	}

	dropFrame := math.Abs(opts.FrameRate-29.97) < 0.01 || math.Abs(opts.FrameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if dropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	record := 0
	for i, c := range list {
		in := toFrames(c.StartTime, fps)
		out := toFrames(c.EndTime, fps)
		length := out - in

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V",
				Timecode(in, fps), Timecode(out, fps), Timecode(record, fps), Timecode(record+length, fps)),
			fmt.Sprintf("* FROM CLIP NAME:  clip-%d %s", i+1, c.ID),
		)
		if opts.MediaPath != "" {
			lines = append(lines, fmt.Sprintf("* MEDIA PATH:  %s", opts.MediaPath))
		}
		record += length
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// Timecode formats a frame count as HH:MM:SS:FF.
func Timecode(frames, fps int) string {
	if frames < 0 {
		frames = 0
	}
	ff := frames % fps
	total := frames / fps
	return fmt.Sprintf("%02d:%02d:%02d:%02d", total/3600, (total/60)%60, total%60, ff)
}

func toFrames(seconds float64, fps int) int {
	return int(math.Round(seconds * float64(fps)))
}
