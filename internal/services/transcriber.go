package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nicorenaldo/supercell-hackathon/pkg/evidence"
)

// TranscriberService implements evidence.Transcriber against an HTTP
// speech-to-text service. The ref passed to Transcribe is a local file
// path; the recording is uploaded as multipart form data.
type TranscriberService struct {
	baseURL    string
	httpClient *http.Client
}

var _ evidence.Transcriber = (*TranscriberService)(nil)

type transcribeResponse struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Error string `json:"error,omitempty"`
}

// NewTranscriberService creates a transcriber client.
func NewTranscriberService(baseURL string) *TranscriberService {
	return &TranscriberService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (t *TranscriberService) Transcribe(ctx context.Context, ref string) ([]evidence.Segment, error) {
	file, err := os.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tr transcribeResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("transcription error: %s", tr.Error)
	}

	segments := make([]evidence.Segment, len(tr.Segments))
	for i, s := range tr.Segments {
		segments[i] = evidence.Segment{Start: s.Start, End: s.End, Text: s.Text}
	}
	return segments, nil
}
