package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emilianodellacasa/colloquio/internal/branch"
	"github.com/emilianodellacasa/colloquio/internal/bridge"
	"github.com/emilianodellacasa/colloquio/internal/logging"
	"github.com/emilianodellacasa/colloquio/internal/sequencer"
	"github.com/emilianodellacasa/colloquio/pkg/adapters/file"
	"github.com/emilianodellacasa/colloquio/pkg/classify"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/emilianodellacasa/colloquio/pkg/templates"
)

// Session configurations compared by the harness.
const (
	ConfigFull      = "FULL"
	ConfigNoRouting = "NO_ROUTING"
)

// ManifestFile is the name of the batch manifest inside the output directory.
const ManifestFile = "manifest.json"

// SessionsDir is the subdirectory holding the persisted session states.
const SessionsDir = "sessions"

// ManifestEntry describes one generated session.
type ManifestEntry struct {
	SessionID string `json:"session_id"`
	Config    string `json:"config"`
	Style     string `json:"style"`
	Questions int    `json:"questions"`
	Turns     int    `json:"turns"`
}

// Manifest describes a whole evaluation batch.
type Manifest struct {
	Seed          int64           `json:"seed"`
	GeneratedAt   time.Time       `json:"generated_at"`
	QuestionCount int             `json:"question_count"`
	Sessions      []ManifestEntry `json:"sessions"`
}

// Runner generates evaluation batches: sessions alternate between the FULL
// configuration and the NO_ROUTING baseline while styles rotate, so both
// configurations see the same respondent mix.
type Runner struct {
	questions []domain.Question
	templates *templates.Registry
	outDir    string
	sessions  int
	seed      int64
	logger    *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithSessions sets the batch size.
func WithSessions(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.sessions = n
		}
	}
}

// WithSeed fixes the batch random seed.
func WithSeed(seed int64) Option {
	return func(r *Runner) {
		r.seed = seed
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner builds an evaluation Runner writing under outDir.
func NewRunner(questions []domain.Question, reg *templates.Registry, outDir string, opts ...Option) *Runner {
	r := &Runner{
		questions: questions,
		templates: reg,
		outDir:    outDir,
		sessions:  10,
		seed:      42,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run generates the batch, persists every session state and writes the
// manifest. Each session is seeded from the batch seed and its index, so
// rerunning a batch reproduces it exactly.
func (r *Runner) Run(ctx context.Context) (*Manifest, error) {
	store, err := file.NewStore(filepath.Join(r.outDir, SessionsDir))
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Seed:          r.seed,
		GeneratedAt:   time.Now(),
		QuestionCount: len(r.questions),
		Sessions:      make([]ManifestEntry, 0, r.sessions),
	}

	for i := 0; i < r.sessions; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		config := ConfigFull
		if i%2 == 1 {
			config = ConfigNoRouting
		}
		style := Styles[(i/2)%len(Styles)]
		sessionID := fmt.Sprintf("eval-%s-%03d", strings.ToLower(config), i)

		rng := rand.New(rand.NewSource(r.seed + int64(i)))
		cls := classify.Default()
		controller := branch.NewController(cls, r.templates, branch.WithRand(rng))
		// A nil generation capability keeps bridges deterministic: every
		// bridge is the static fallback.
		generator := bridge.NewGenerator(nil)

		opts := []sequencer.Option{
			sequencer.WithStore(store),
			sequencer.WithLogger(r.logger),
		}
		if config == ConfigNoRouting {
			opts = append(opts, sequencer.WithRoutingDisabled())
		}

		seq := sequencer.New(r.questions, NewSimulator(style, rng), cls, controller, generator, opts...)
		state := domain.NewSessionState(sessionID)
		if err := seq.Run(ctx, state); err != nil {
			return nil, fmt.Errorf("running session %s: %w", sessionID, err)
		}

		manifest.Sessions = append(manifest.Sessions, ManifestEntry{
			SessionID: sessionID,
			Config:    config,
			Style:     string(style),
			Questions: len(state.Signals),
			Turns:     len(state.QAHistory),
		})
		r.logger.Info("generated session",
			"session_id", sessionID, "config", config, "style", style,
			"turns", len(state.QAHistory))
	}

	if err := r.writeManifest(manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (r *Runner) writeManifest(m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(r.outDir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a batch manifest from an output directory.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
