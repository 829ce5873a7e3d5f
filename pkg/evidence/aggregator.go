package evidence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nicorenaldo/supercell-hackathon/pkg/emotion"
)

// Policy tunes the sampling and aggregation behavior of the Aggregator.
type Policy struct {
	// MinSegmentDuration drops transcript segments shorter than this many
	// seconds; they are too brief for reliable emotion sampling.
	MinSegmentDuration float64

	// BandStart and BandEnd bound the fraction of a segment's duration
	// that frames are sampled from. Segment edges are contaminated by
	// UI-interaction artifacts (the player reaching for the stop button),
	// so sampling stays in the middle band.
	BandStart float64
	BandEnd   float64

	// FrameInterval is the spacing in seconds between sampled frames
	// within the band.
	FrameInterval float64

	// ConfidenceFloor discards frames whose face-detection confidence is
	// at or below this value. Discarded entirely, not down-weighted.
	ConfidenceFloor float64

	// FallbackWindow and FallbackSpan shape the synthetic segments used
	// when transcription finds no speech at all: fixed windows of
	// FallbackWindow seconds covering up to FallbackSpan seconds of the
	// recording, each with empty text.
	FallbackWindow float64
	FallbackSpan   float64

	// AdvancedMetrics enables the stability/transition/variance metrics.
	// When false, every segment carries the default metrics.
	AdvancedMetrics bool
}

// DefaultPolicy returns the tuning used in production.
func DefaultPolicy() Policy {
	return Policy{
		MinSegmentDuration: 0.3,
		BandStart:          0.33,
		BandEnd:            0.66,
		FrameInterval:      0.1,
		ConfidenceFloor:    0.1,
		FallbackWindow:     3,
		FallbackSpan:       30,
		AdvancedMetrics:    true,
	}
}

// Aggregator turns a recording into one SentenceEvidence per spoken
// sentence. Safe for concurrent use as long as its collaborators are.
type Aggregator struct {
	transcriber Transcriber
	frames      FrameSource
	classifier  Classifier
	policy      Policy
	logger      *slog.Logger
}

// NewAggregator creates an aggregator with the given collaborators.
func NewAggregator(t Transcriber, f FrameSource, c Classifier, policy Policy, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		transcriber: t,
		frames:      f,
		classifier:  c,
		policy:      policy,
		logger:      logger,
	}
}

// Process transcribes the recording and aggregates a per-sentence emotion
// reading for each retained segment. A recording that cannot be read at
// all fails with ErrMediaProcessing; individual frame failures are
// substituted with fallbacks and never propagate.
func (a *Aggregator) Process(ctx context.Context, ref string) ([]SentenceEvidence, error) {
	segments, err := a.transcriber.Transcribe(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: transcription of %s failed: %v", ErrMediaProcessing, ref, err)
	}

	if len(segments) == 0 {
		// No speech detected. The player still gets emotion-driven
		// narrative beats, read from synthetic fixed-width windows.
		segments = a.syntheticSegments(ctx, ref)
		a.logger.Debug("no transcript segments, using synthetic windows",
			"ref", ref, "windows", len(segments))
	}

	out := make([]SentenceEvidence, 0, len(segments))
	for i, seg := range segments {
		if seg.Duration() < a.policy.MinSegmentDuration {
			a.logger.Debug("dropping short segment",
				"index", i, "duration", seg.Duration())
			continue
		}
		candidates, weights := a.sampleSegment(ctx, ref, seg)
		out = append(out, a.aggregate(seg, candidates, weights))
	}

	return out, nil
}

// syntheticSegments builds empty-text windows covering the start of the
// recording. Used when transcription found no speech.
func (a *Aggregator) syntheticSegments(ctx context.Context, ref string) []Segment {
	span := a.policy.FallbackSpan
	if dur, err := a.frames.Duration(ctx, ref); err != nil {
		a.logger.Warn("could not probe recording duration, assuming fallback span",
			"ref", ref, "error", err)
	} else if dur < span {
		span = dur
	}

	var segments []Segment
	for start := 0.0; start < span; start += a.policy.FallbackWindow {
		segments = append(segments, Segment{
			Start: start,
			End:   start + a.policy.FallbackWindow,
		})
	}
	if len(segments) == 0 {
		segments = []Segment{{Start: 0, End: a.policy.FallbackWindow}}
	}
	return segments
}

// sampleSegment classifies frames from the segment's middle band and
// returns the surviving observations with their confidence weights.
// Every per-frame failure is swallowed here.
func (a *Aggregator) sampleSegment(ctx context.Context, ref string, seg Segment) ([]Observation, []float64) {
	dur := seg.Duration()
	from := seg.Start + dur*a.policy.BandStart
	to := seg.Start + dur*a.policy.BandEnd

	var timestamps []float64
	for i := 0; ; i++ {
		ts := from + float64(i)*a.policy.FrameInterval
		if ts > to {
			break
		}
		timestamps = append(timestamps, ts)
	}
	if len(timestamps) == 0 {
		// Band collapsed to near-zero width; take the segment midpoint.
		timestamps = []float64{seg.Start + dur/2}
	}

	var candidates []Observation
	var weights []float64
	for _, ts := range timestamps {
		frame, err := a.frames.FrameAt(ctx, ref, ts)
		if err != nil {
			a.logger.Debug("frame extraction failed", "ts", ts, "error", err)
			continue
		}
		obs, err := a.classifier.Classify(ctx, frame)
		if err != nil {
			a.logger.Debug("classification failed", "ts", ts, "error", err)
			continue
		}
		if obs.Confidence <= a.policy.ConfidenceFloor {
			a.logger.Debug("frame confidence below floor",
				"ts", ts, "confidence", obs.Confidence)
			continue
		}
		candidates = append(candidates, *obs)
		weights = append(weights, obs.Confidence)
	}
	return candidates, weights
}

// aggregate collapses a segment's frame observations into one evidence
// entry: confidence-weighted mean for two or more frames, the single
// observation as-is for one, and the neutral fallback for none.
func (a *Aggregator) aggregate(seg Segment, candidates []Observation, weights []float64) SentenceEvidence {
	ev := SentenceEvidence{
		Text:    seg.Text,
		Start:   seg.Start,
		End:     seg.End,
		Metrics: emotion.DefaultMetrics(),
	}

	switch len(candidates) {
	case 0:
		ev.Emotion = emotion.Neutral100()
	case 1:
		d := emotion.FromScores(candidates[0].Scores)
		if err := d.Normalize(); err != nil {
			d = emotion.Neutral100()
		}
		ev.Emotion = d
	default:
		ev.Emotion = weightedMean(candidates, weights)
		if a.policy.AdvancedMetrics {
			frames := make([]emotion.Distribution, len(candidates))
			for i, c := range candidates {
				frames[i] = emotion.FromScores(c.Scores)
			}
			ev.Metrics = emotion.ComputeMetrics(frames)
		}
	}
	return ev
}

// weightedMean computes the confidence-weighted mean per category and
// renormalizes to 100. Falls back to neutral when the weighted scores
// degenerate to zero.
func weightedMean(candidates []Observation, weights []float64) emotion.Distribution {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return emotion.Neutral100()
	}

	scores := make(map[emotion.Category]float64, len(emotion.Categories))
	for i, c := range candidates {
		for cat, v := range c.Scores {
			scores[cat] += v * weights[i] / total
		}
	}

	d := emotion.FromScores(scores)
	if err := d.Normalize(); err != nil {
		return emotion.Neutral100()
	}
	return d
}
