package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/nicorenaldo/supercell-hackathon/pkg/evidence"
)

// FFmpegSource implements evidence.FrameSource by shelling out to
// ffmpeg and ffprobe. Both binaries must be on PATH.
type FFmpegSource struct {
	ffmpegPath  string
	ffprobePath string
	logger      *slog.Logger
}

var _ evidence.FrameSource = (*FFmpegSource)(nil)

// NewFFmpegSource creates a frame source using the system ffmpeg tools.
func NewFFmpegSource(logger *slog.Logger) *FFmpegSource {
	return &FFmpegSource{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		logger:      logger,
	}
}

// Duration probes the recording length in seconds.
func (f *FFmpegSource) Duration(ctx context.Context, ref string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		ref,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w: %s", err, stderr.String())
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", stdout.String(), err)
	}
	return dur, nil
}

// FrameAt extracts a single JPEG frame at the given timestamp.
// Seeking before the input is fast and accurate enough at this scale.
func (f *FFmpegSource) FrameAt(ctx context.Context, ref string, ts float64) (evidence.Frame, error) {
	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-ss", strconv.FormatFloat(ts, 'f', 3, 64),
		"-i", ref,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed at %.3fs: %w: %s", ts, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no frame at %.3fs", ts)
	}
	return stdout.Bytes(), nil
}
