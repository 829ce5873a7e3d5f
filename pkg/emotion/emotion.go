package emotion

import (
	"errors"
	"fmt"
	"math"
)

// Category identifies one of the seven facial emotion classes produced by
// the classifier.
type Category string

const (
	Anger    Category = "anger"
	Disgust  Category = "disgust"
	Fear     Category = "fear"
	Joy      Category = "joy"
	Sadness  Category = "sadness"
	Surprise Category = "surprise"
	Neutral  Category = "neutral"
)

// Categories lists the emotion classes in declaration order.
// Dominant breaks ties by this order, so it must never be reordered.
var Categories = [7]Category{Anger, Disgust, Fear, Joy, Sadness, Surprise, Neutral}

// ErrDegenerateInput reports a distribution whose scores are all zero.
// Normalizing such a distribution would fabricate data, so it fails
// instead; callers supply a fallback (see Neutral100) when no face was
// detected.
var ErrDegenerateInput = errors.New("all emotion scores are zero")

// Distribution holds the seven emotion scores for one sampling window.
// After Normalize the scores sum to 100.
type Distribution struct {
	Anger    float64 `json:"anger"`
	Disgust  float64 `json:"disgust"`
	Fear     float64 `json:"fear"`
	Joy      float64 `json:"joy"`
	Sadness  float64 `json:"sadness"`
	Surprise float64 `json:"surprise"`
	Neutral  float64 `json:"neutral"`
}

// Neutral100 is the fallback distribution used when no usable frame was
// classified for a segment.
func Neutral100() Distribution {
	return Distribution{Neutral: 100}
}

// FromScores builds a distribution from a category-score map. Unknown keys
// are ignored, missing categories default to zero.
func FromScores(scores map[Category]float64) Distribution {
	var d Distribution
	for c, v := range scores {
		d.set(c, v)
	}
	return d
}

// Score returns the value for one category.
func (d Distribution) Score(c Category) float64 {
	switch c {
	case Anger:
		return d.Anger
	case Disgust:
		return d.Disgust
	case Fear:
		return d.Fear
	case Joy:
		return d.Joy
	case Sadness:
		return d.Sadness
	case Surprise:
		return d.Surprise
	case Neutral:
		return d.Neutral
	}
	return 0
}

func (d *Distribution) set(c Category, v float64) {
	switch c {
	case Anger:
		d.Anger = v
	case Disgust:
		d.Disgust = v
	case Fear:
		d.Fear = v
	case Joy:
		d.Joy = v
	case Sadness:
		d.Sadness = v
	case Surprise:
		d.Surprise = v
	case Neutral:
		d.Neutral = v
	}
}

// Sum returns the total of the seven scores.
func (d Distribution) Sum() float64 {
	var sum float64
	for _, c := range Categories {
		sum += d.Score(c)
	}
	return sum
}

// Normalize rescales the seven scores so they sum to 100, rounding each to
// one decimal place for stable serialization. An all-zero distribution
// returns ErrDegenerateInput.
func (d *Distribution) Normalize() error {
	sum := d.Sum()
	if sum == 0 {
		return fmt.Errorf("normalize: %w", ErrDegenerateInput)
	}
	for _, c := range Categories {
		d.set(c, round1(d.Score(c)/sum*100))
	}
	return nil
}

// Dominant returns the highest-scoring category. Exact ties resolve to the
// earlier category in declaration order, keeping the result deterministic.
func (d Distribution) Dominant() Category {
	best := Categories[0]
	for _, c := range Categories[1:] {
		if d.Score(c) > d.Score(best) {
			best = c
		}
	}
	return best
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
