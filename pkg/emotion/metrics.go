package emotion

// Volatility labels derived from the stability and transition metrics.
const (
	VolatilityStable   = "stable"
	VolatilityModerate = "moderate"
	VolatilityVolatile = "volatile"
)

// ConsistencyThreshold is the transition percentage below which a segment's
// emotion sequence is considered consistent.
const ConsistencyThreshold = 30.0

// Metrics describes how the per-frame emotion readings behaved across one
// segment, independent of their averaged distribution.
type Metrics struct {
	// Stability is the percentage of frames sharing the single most common
	// dominant emotion. 100 when fewer than two frames were observed.
	Stability float64 `json:"stability"`

	// TransitionScore is the percentage of adjacent frame pairs whose
	// dominant emotion differs. 0 when fewer than two frames were observed.
	TransitionScore float64 `json:"transition_score"`

	// Consistent is true when TransitionScore is below ConsistencyThreshold.
	Consistent bool `json:"consistent_emotion"`

	// Variance holds, per category, the capped score variance across frames
	// (population variance x10, capped at 100). Exposes emotional noise
	// independent of the mean.
	Variance map[Category]float64 `json:"variance,omitempty"`
}

// DefaultMetrics returns the metrics for a segment with fewer than two
// usable frames: perfectly stable, no transitions, zero variance.
func DefaultMetrics() Metrics {
	v := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		v[c] = 0
	}
	return Metrics{
		Stability:       100,
		TransitionScore: 0,
		Consistent:      true,
		Variance:        v,
	}
}

// Volatility categorizes the segment's emotional behavior.
func (m Metrics) Volatility() string {
	switch {
	case m.Stability >= 80 && m.TransitionScore <= 20:
		return VolatilityStable
	case m.Stability <= 40 || m.TransitionScore >= 60:
		return VolatilityVolatile
	default:
		return VolatilityModerate
	}
}

// StabilityOf computes the stability metric for a chronological sequence of
// per-frame dominant emotions.
func StabilityOf(seq []Category) float64 {
	if len(seq) < 2 {
		return 100
	}
	counts := make(map[Category]int, len(Categories))
	for _, c := range seq {
		counts[c]++
	}
	most := 0
	for _, n := range counts {
		if n > most {
			most = n
		}
	}
	return round1(float64(most) / float64(len(seq)) * 100)
}

// TransitionScoreOf computes the transition metric for a chronological
// sequence of per-frame dominant emotions.
func TransitionScoreOf(seq []Category) float64 {
	if len(seq) < 2 {
		return 0
	}
	transitions := 0
	for i := 1; i < len(seq); i++ {
		if seq[i] != seq[i-1] {
			transitions++
		}
	}
	return round1(float64(transitions) / float64(len(seq)-1) * 100)
}

// ComputeMetrics derives stability, transition and variance metrics from a
// chronological sequence of per-frame distributions.
func ComputeMetrics(frames []Distribution) Metrics {
	if len(frames) < 2 {
		return DefaultMetrics()
	}

	seq := make([]Category, len(frames))
	for i, f := range frames {
		seq[i] = f.Dominant()
	}

	variance := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		var mean float64
		for _, f := range frames {
			mean += f.Score(c)
		}
		mean /= float64(len(frames))

		var v float64
		for _, f := range frames {
			d := f.Score(c) - mean
			v += d * d
		}
		v /= float64(len(frames))

		scaled := v * 10
		if scaled > 100 {
			scaled = 100
		}
		variance[c] = round1(scaled)
	}

	transition := TransitionScoreOf(seq)
	return Metrics{
		Stability:       StabilityOf(seq),
		TransitionScore: transition,
		Consistent:      transition < ConsistencyThreshold,
		Variance:        variance,
	}
}
