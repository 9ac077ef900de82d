// Package transcript provides a file Recorder: each session writes a CSV
// transcript plus a JSON metadata document under the respondent's directory.
package transcript

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/emilianodellacasa/colloquio/pkg/domain"
)

var csvHeader = []string{"timestamp", "question_id", "question", "answer", "assistant_reply"}

// Recorder implements ports.Recorder on the local filesystem.
// Turns are flushed to the CSV as they arrive so a crash loses at most the
// metadata document.
type Recorder struct {
	mu       sync.Mutex
	file     *os.File
	writer   *csv.Writer
	baseName string
	dir      string
	branches []domain.BranchRecord
	turns    int
	now      func() time.Time
	closed   bool
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder opens a session transcript under baseDir/patientID/. The CSV
// and metadata files share a timestamp-derived base name so multiple
// sessions per respondent coexist.
func NewRecorder(baseDir, patientID string, opts ...Option) (*Recorder, error) {
	r := &Recorder{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}

	r.dir = filepath.Join(baseDir, patientID)
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating transcript directory %s: %w", r.dir, err)
	}

	r.baseName = "session_" + r.now().Format("20060102_150405")
	path := filepath.Join(r.dir, r.baseName+".csv")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating transcript %s: %w", path, err)
	}
	r.file = file
	r.writer = csv.NewWriter(file)

	if err := r.writer.Write(csvHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("writing transcript header: %w", err)
	}
	r.writer.Flush()
	return r, r.writer.Error()
}

// Path returns the transcript CSV location.
func (r *Recorder) Path() string {
	return filepath.Join(r.dir, r.baseName+".csv")
}

// MetaPath returns the metadata document location.
func (r *Recorder) MetaPath() string {
	return filepath.Join(r.dir, r.baseName+"_meta.json")
}

// RecordTurn appends one exchange to the CSV transcript.
func (r *Recorder) RecordTurn(ctx context.Context, turn domain.TurnRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("transcript already finalized")
	}

	row := []string{
		r.now().Format(time.RFC3339),
		strconv.Itoa(turn.QuestionID),
		turn.Question,
		turn.Answer,
		turn.BridgeReply,
	}
	if err := r.writer.Write(row); err != nil {
		return fmt.Errorf("writing transcript row: %w", err)
	}
	r.writer.Flush()
	if err := r.writer.Error(); err != nil {
		return fmt.Errorf("flushing transcript: %w", err)
	}
	r.turns++
	return nil
}

// RecordBranch collects deepening events for the metadata document.
func (r *Recorder) RecordBranch(ctx context.Context, branch domain.BranchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("transcript already finalized")
	}
	r.branches = append(r.branches, branch)
	return nil
}

// metaDocument is the JSON shape of the session metadata file.
type metaDocument struct {
	SessionID       string                `json:"session_id"`
	PatientID       string                `json:"patient_id,omitempty"`
	StartedAt       time.Time             `json:"started_at"`
	EndedAt         time.Time             `json:"ended_at"`
	DurationSeconds float64               `json:"duration_seconds"`
	Questions       int                   `json:"questions"`
	Turns           int                   `json:"turns"`
	Branches        []domain.BranchRecord `json:"branches"`
	Signals         []domain.Signal       `json:"signals"`
	Profile         map[string]string     `json:"profile,omitempty"`
}

// Finalize writes the metadata document and closes the transcript.
func (r *Recorder) Finalize(ctx context.Context, summary domain.SessionSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("transcript already finalized")
	}
	r.closed = true

	r.writer.Flush()
	closeErr := r.file.Close()

	meta := metaDocument{
		SessionID:       summary.SessionID,
		PatientID:       summary.PatientID,
		StartedAt:       summary.StartedAt,
		EndedAt:         summary.EndedAt,
		DurationSeconds: summary.EndedAt.Sub(summary.StartedAt).Seconds(),
		Questions:       summary.Questions,
		Turns:           r.turns,
		Branches:        r.branches,
		Signals:         summary.Signals,
		Profile:         summary.Profile,
	}
	if meta.Branches == nil {
		meta.Branches = []domain.BranchRecord{}
	}
	if meta.Signals == nil {
		meta.Signals = []domain.Signal{}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session metadata: %w", err)
	}
	if err := os.WriteFile(r.MetaPath(), data, 0o644); err != nil {
		return fmt.Errorf("writing session metadata: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("closing transcript: %w", closeErr)
	}
	return nil
}
