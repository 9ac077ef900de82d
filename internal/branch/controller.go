// Package branch implements the bounded deepening loop controller.
//
// The controller decides, after each classified answer, whether the engine
// enters, continues, or exits a deepening sub-dialogue. At most one episode
// is opened per main question and its length never exceeds the configured
// depth bound.
package branch

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/emilianodellacasa/colloquio/internal/logging"
	"github.com/emilianodellacasa/colloquio/pkg/classify"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/emilianodellacasa/colloquio/pkg/ports"
	"github.com/emilianodellacasa/colloquio/pkg/templates"
)

// DefaultMaxDepth bounds the length of one deepening episode.
const DefaultMaxDepth = 2

// Decision is the routing outcome for one classified answer.
type Decision struct {
	// Deepen is true when the engine should ask a follow-up before bridging.
	Deepen bool
	// Category is the branch category the follow-up was drawn from.
	Category string
	// FollowUp is the selected follow-up question text.
	FollowUp string
}

// Controller routes classified answers into or out of deepening episodes.
type Controller struct {
	classifier *classify.Classifier
	templates  *templates.Registry
	recorder   ports.Recorder
	maxDepth   int
	rng        *rand.Rand
	logger     *slog.Logger
}

// Option configures the Controller.
type Option func(*Controller)

// WithMaxDepth overrides the episode length bound.
func WithMaxDepth(depth int) Option {
	return func(c *Controller) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// WithRand injects the random source used for template selection.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) {
		c.rng = rng
	}
}

// WithRecorder sets the session recorder notified on branch entry.
func WithRecorder(rec ports.Recorder) Option {
	return func(c *Controller) {
		c.recorder = rec
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController builds a Controller over a classifier and template registry.
func NewController(cls *classify.Classifier, reg *templates.Registry, opts ...Option) *Controller {
	c := &Controller{
		classifier: cls,
		templates:  reg,
		maxDepth:   DefaultMaxDepth,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxDepth returns the configured episode bound.
func (c *Controller) MaxDepth() int {
	return c.maxDepth
}

// Route applies the branch state machine to the freshly classified answer
// and updates the deepening bookkeeping on the state. The category priority
// (evasive over themes, themes in configured order) is identical for the
// first branch decision and for continuation checks, so the loop cannot
// oscillate between categories with different precedence rules.
func (c *Controller) Route(ctx context.Context, state *domain.SessionState, res classify.Result) Decision {
	switch state.Mode {
	case domain.ModeDeepening:
		return c.routeDeepening(ctx, state, res)
	default:
		return c.routeMain(ctx, state, res)
	}
}

func (c *Controller) routeMain(ctx context.Context, state *domain.SessionState, res classify.Result) Decision {
	if state.BranchCount != 0 {
		// One episode per main question: once the loop has exited, the
		// answer proceeds straight to the bridge.
		return Decision{}
	}

	category := res.Category()
	if category == "" {
		return Decision{}
	}

	followUp, ok := c.pick(category)
	if !ok {
		// Category lookup miss is recoverable: skip branching for this turn.
		c.logger.Warn("no follow-up templates for category, skipping branch", "category", category)
		return Decision{}
	}

	state.Mode = domain.ModeDeepening
	state.BranchCount = 1
	state.BranchType = category
	state.PendingQuestion = followUp

	c.notify(ctx, category, followUp)
	return Decision{Deepen: true, Category: category, FollowUp: followUp}
}

func (c *Controller) routeDeepening(ctx context.Context, state *domain.SessionState, res classify.Result) Decision {
	if state.BranchCount >= c.maxDepth {
		// Depth bound reached: force exit regardless of the classification.
		c.exit(state)
		return Decision{}
	}

	category := res.Category()
	if category == "" {
		c.exit(state)
		return Decision{}
	}

	followUp, ok := c.pick(category)
	if !ok {
		c.logger.Warn("no follow-up templates for category, exiting branch", "category", category)
		c.exit(state)
		return Decision{}
	}

	// Continue the episode. BranchType keeps the category that opened it.
	state.BranchCount++
	state.PendingQuestion = followUp

	c.notify(ctx, category, followUp)
	return Decision{Deepen: true, Category: category, FollowUp: followUp}
}

func (c *Controller) exit(state *domain.SessionState) {
	state.Mode = domain.ModeMain
	state.PendingQuestion = ""
}

func (c *Controller) pick(category string) (string, bool) {
	tpl, ok := c.templates.Pick(category, c.rng)
	if !ok {
		return "", false
	}
	return tpl.Text, true
}

func (c *Controller) notify(ctx context.Context, category, followUp string) {
	if c.recorder == nil {
		return
	}
	err := c.recorder.RecordBranch(ctx, domain.BranchRecord{
		Category:    category,
		DisplayName: c.classifier.DisplayName(category),
		FollowUp:    followUp,
	})
	if err != nil {
		c.logger.Warn("failed to record branch", "err", err)
	}
}
