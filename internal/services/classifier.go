package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nicorenaldo/supercell-hackathon/pkg/emotion"
	"github.com/nicorenaldo/supercell-hackathon/pkg/evidence"
)

// ClassifierService implements evidence.Classifier against an HTTP
// facial emotion recognition service. Frames are posted as raw JPEG
// bytes; the service answers with per-category scores and a face
// detection confidence.
type ClassifierService struct {
	baseURL    string
	httpClient *http.Client
}

var _ evidence.Classifier = (*ClassifierService)(nil)

type classifyResponse struct {
	Emotions   map[string]float64 `json:"emotions"`
	Confidence float64            `json:"face_confidence"`
	Error      string             `json:"error,omitempty"`
}

// NewClassifierService creates a classifier client.
func NewClassifierService(baseURL string) *ClassifierService {
	return &ClassifierService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *ClassifierService) Classify(ctx context.Context, frame evidence.Frame) (*evidence.Observation, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/classify", bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// The service answers 422 when no face is found in the frame.
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, evidence.ErrNoFace
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classification failed with status %d: %s", resp.StatusCode, string(body))
	}

	var cr classifyResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if cr.Error != "" {
		return nil, fmt.Errorf("classification error: %s", cr.Error)
	}

	scores := make(map[emotion.Category]float64, len(cr.Emotions))
	for name, v := range cr.Emotions {
		scores[emotion.Category(name)] = v
	}

	return &evidence.Observation{
		Scores:     scores,
		Confidence: cr.Confidence,
	}, nil
}
