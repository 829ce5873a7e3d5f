// Package media handles recording files: staging uploads to disk and
// extracting frames and durations with ffmpeg.
package media

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Manager stages uploaded recordings under a per-session directory.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager creates a manager rooted at dir, creating it if needed.
func NewManager(dir string, logger *slog.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recordings directory: %w", err)
	}
	return &Manager{root: dir, logger: logger}, nil
}

// Stage writes an uploaded recording to disk and returns its path.
// Recordings are grouped by session and numbered by turn.
func (m *Manager) Stage(sessionID uuid.UUID, turn int, r io.Reader, ext string) (string, error) {
	dir := filepath.Join(m.root, sessionID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	if ext == "" {
		ext = ".webm"
	}
	path := filepath.Join(dir, fmt.Sprintf("recording_%d%s", turn, ext))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create recording file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write recording: %w", err)
	}
	if n == 0 {
		os.Remove(path)
		return "", fmt.Errorf("empty recording upload")
	}

	m.logger.Debug("Recording staged", "path", path, "bytes", n)
	return path, nil
}

// CleanupSession removes all staged recordings for a session.
func (m *Manager) CleanupSession(sessionID uuid.UUID) error {
	return os.RemoveAll(filepath.Join(m.root, sessionID.String()))
}
