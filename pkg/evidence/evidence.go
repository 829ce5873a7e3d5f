// Package evidence converts a raw recording into per-sentence dialog
// evidence: one transcribed utterance plus the facial-emotion distribution
// observed while it was spoken.
//
// The heavy collaborators (speech-to-text, frame decoding, face/emotion
// classification) sit behind interfaces; this package owns the sampling and
// aggregation policy that turns their flaky per-frame output into stable
// per-sentence readings.
package evidence

import (
	"context"
	"errors"

	"github.com/nicorenaldo/supercell-hackathon/pkg/emotion"
)

// ErrMediaProcessing reports an unrecoverable recording failure. Per-frame
// failures never surface as this error; only a recording that cannot be
// read at all does.
var ErrMediaProcessing = errors.New("could not process recording")

// ErrNoFace is returned by a Classifier when no face is present in a frame.
var ErrNoFace = errors.New("no face detected")

// Segment is one transcribed span of speech. Times are seconds from the
// start of the recording.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Frame is one encoded still image extracted from the recording.
type Frame []byte

// Observation is a single frame's classifier output: raw per-category
// scores plus the face-detection confidence used to weight it.
type Observation struct {
	Scores     map[emotion.Category]float64
	Confidence float64
}

// Transcriber produces timestamped transcript segments for a recording.
// A silent recording yields an empty slice, not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, ref string) ([]Segment, error)
}

// FrameSource reads still frames out of a recording.
type FrameSource interface {
	// Duration returns the recording length in seconds.
	Duration(ctx context.Context, ref string) (float64, error)

	// FrameAt extracts the frame nearest to ts seconds.
	FrameAt(ctx context.Context, ref string, ts float64) (Frame, error)
}

// Classifier scores the facial emotion visible in a frame.
// Returns ErrNoFace when no face is detected.
type Classifier interface {
	Classify(ctx context.Context, frame Frame) (*Observation, error)
}

// SentenceEvidence is one spoken sentence with its aggregated emotion
// reading. Slices of SentenceEvidence are chronological by Start and are
// not modified after the aggregator returns them.
type SentenceEvidence struct {
	Text    string               `json:"text"`
	Start   float64              `json:"start_time"`
	End     float64              `json:"end_time"`
	Emotion emotion.Distribution `json:"emotions"`
	Metrics emotion.Metrics      `json:"metrics"`
}
