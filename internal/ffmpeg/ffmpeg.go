// Package ffmpeg shells out to ffprobe and ffmpeg.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNoDuration is returned when ffprobe reports no usable duration.
var ErrNoDuration = errors.New("ffprobe reported no duration")

// Runner executes an external command and returns its stdout. Tests swap it
// for a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w\nStderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

// probeOutput is the part of ffprobe's JSON we read.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Tool wraps the two binaries.
type Tool struct {
	Runner  Runner
	FFprobe string
	FFmpeg  string
	Logger  *logrus.Entry
}

func New(logger *logrus.Entry) *Tool {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Tool{Runner: ExecRunner{}, FFprobe: "ffprobe", FFmpeg: "ffmpeg", Logger: logger.WithField("component", "ffmpeg")}
}

// ProbeDuration returns the media duration in seconds.
func (t *Tool) ProbeDuration(ctx context.Context, path string) (float64, error) {
	out, err := t.Runner.Run(ctx, t.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, err
	}
	return parseDuration(out)
}

func parseDuration(out []byte) (float64, error) {
	var p probeOutput
	if err := json.Unmarshal(out, &p); err != nil {
		return 0, fmt.Errorf("error unmarshalling ffprobe output: %w", err)
	}
	if p.Format.Duration == "" || p.Format.Duration == "N/A" {
		return 0, ErrNoDuration
	}
	d, err := strconv.ParseFloat(p.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing duration string '%s': %w", p.Format.Duration, err)
	}
	if d <= 0 {
		return 0, ErrNoDuration
	}
	return d, nil
}

// ExtractClip writes [start, end) of input to output, re-encoding for frame
// accuracy.
func (t *Tool) ExtractClip(ctx context.Context, input, output string, start, end float64) error {
	if end <= start {
		return fmt.Errorf("extract clip: end %.3f before start %.3f", end, start)
	}
	_, err := t.Runner.Run(ctx, t.FFmpeg, ExtractArgs(input, output, start, end)...)
	if err != nil {
		return err
	}
	t.Logger.WithFields(logrus.Fields{
		"input":  input,
		"output": output,
		"start":  start,
		"end":    end,
	}).Info("extracted clip")
	return nil
}

// ExtractArgs builds the ffmpeg argument list for ExtractClip.
func ExtractArgs(input, output string, start, end float64) []string {
	return []string{
		"-y",
		"-ss", strconv.FormatFloat(start, 'f', 3, 64),
		"-i", input,
		"-t", strconv.FormatFloat(end-start, 'f', 3, 64),
		output,
	}
}
