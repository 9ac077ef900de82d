package colloquio

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/emilianodellacasa/colloquio/internal/branch"
	"github.com/emilianodellacasa/colloquio/internal/bridge"
	"github.com/emilianodellacasa/colloquio/internal/logging"
	"github.com/emilianodellacasa/colloquio/internal/sequencer"
	"github.com/emilianodellacasa/colloquio/pkg/classify"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/emilianodellacasa/colloquio/pkg/ports"
	"github.com/emilianodellacasa/colloquio/pkg/templates"
)

// Engine is the high-level entry point of the library. It wires the
// classifier, branch controller, bridge generator and turn sequencer behind
// a single Run call.
type Engine struct {
	questions  []domain.Question
	input      ports.InputHandler
	classifier *classify.Classifier
	templates  *templates.Registry

	generator ports.Generator
	retriever ports.ContextRetriever
	recorder  ports.Recorder
	store     ports.StateStore
	hooks     domain.LifecycleHooks

	gender          string
	maxDepth        int
	maxSentences    int
	rng             *rand.Rand
	routingDisabled bool
	patientID       string
	profileSummary  map[string]string
	logger          *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithClassifier replaces the default classification rule set.
func WithClassifier(cls *classify.Classifier) Option {
	return func(e *Engine) {
		e.classifier = cls
	}
}

// WithTemplates sets the follow-up template registry. Without one the
// engine never opens deepening episodes.
func WithTemplates(reg *templates.Registry) Option {
	return func(e *Engine) {
		e.templates = reg
	}
}

// WithGenerator sets the external text-generation capability used for
// bridge replies. Without one every bridge is a deterministic fallback.
func WithGenerator(gen ports.Generator) Option {
	return func(e *Engine) {
		e.generator = gen
	}
}

// WithRetriever sets the respondent-context retriever.
func WithRetriever(r ports.ContextRetriever) Option {
	return func(e *Engine) {
		e.retriever = r
	}
}

// WithRecorder sets the session recorder.
func WithRecorder(rec ports.Recorder) Option {
	return func(e *Engine) {
		e.recorder = rec
	}
}

// WithStore enables session persistence and resume.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithGender adapts question wording and bridge replies to the
// respondent's gender label.
func WithGender(genderLabel string) Option {
	return func(e *Engine) {
		e.gender = genderLabel
	}
}

// WithMaxDepth bounds deepening episodes.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithMaxSentences bounds bridge reply length.
func WithMaxSentences(n int) Option {
	return func(e *Engine) {
		e.maxSentences = n
	}
}

// WithRand injects the random source used for template selection.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithRoutingDisabled keeps classification running but never opens
// deepening episodes.
func WithRoutingDisabled() Option {
	return func(e *Engine) {
		e.routingDisabled = true
	}
}

// WithPatientID tags recordings with the respondent's anonymous id.
func WithPatientID(id string) Option {
	return func(e *Engine) {
		e.patientID = id
	}
}

// WithProfileSummary attaches profile key/values to the session summary.
func WithProfileSummary(profile map[string]string) Option {
	return func(e *Engine) {
		e.profileSummary = profile
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine over a question set and an input capability.
// An empty question set is accepted; Run then ends the session immediately.
func New(questions []domain.Question, input ports.InputHandler, opts ...Option) (*Engine, error) {
	if input == nil {
		return nil, fmt.Errorf("an input handler is required")
	}

	e := &Engine{
		questions:    questions,
		input:        input,
		classifier:   classify.Default(),
		templates:    templates.New(nil),
		maxDepth:     branch.DefaultMaxDepth,
		maxSentences: bridge.DefaultMaxSentences,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run conducts a new session and returns its terminal state. The session ID
// is generated; pass it to Resume to continue an interrupted session.
func (e *Engine) Run(ctx context.Context) (*domain.SessionState, error) {
	state := domain.NewSessionState(uuid.NewString())
	return state, e.run(ctx, state)
}

// Resume loads a persisted session and continues it from where it stopped.
// A session already marked done is returned unchanged.
func (e *Engine) Resume(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	if e.store == nil {
		return nil, fmt.Errorf("resume requires a state store")
	}
	state, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Done {
		return state, nil
	}
	return state, e.run(ctx, state)
}

func (e *Engine) run(ctx context.Context, state *domain.SessionState) error {
	controller := branch.NewController(e.classifier, e.templates,
		branch.WithMaxDepth(e.maxDepth),
		branch.WithRand(e.rng),
		branch.WithRecorder(e.recorder),
		branch.WithLogger(e.logger),
	)

	bridgeOpts := []bridge.Option{
		bridge.WithMaxSentences(e.maxSentences),
		bridge.WithGender(e.gender),
		bridge.WithLogger(e.logger),
	}
	if e.hooks.OnGenerationFallback != nil {
		bridgeOpts = append(bridgeOpts, bridge.WithFallbackHook(e.hooks.OnGenerationFallback))
	}
	generator := bridge.NewGenerator(e.generator, bridgeOpts...)

	seqOpts := []sequencer.Option{
		sequencer.WithRetriever(e.retriever),
		sequencer.WithRecorder(e.recorder),
		sequencer.WithHooks(e.hooks),
		sequencer.WithGender(e.gender),
		sequencer.WithPatientID(e.patientID),
		sequencer.WithProfileSummary(e.profileSummary),
		sequencer.WithLogger(e.logger),
	}
	if e.store != nil {
		seqOpts = append(seqOpts, sequencer.WithStore(e.store))
	}
	if e.routingDisabled {
		seqOpts = append(seqOpts, sequencer.WithRoutingDisabled())
	}

	seq := sequencer.New(e.questions, e.input, e.classifier, controller, generator, seqOpts...)
	return seq.Run(ctx, state)
}
