// Package bridge produces the transition message surfaced after a main
// question's answer is accepted.
//
// Text synthesis is delegated to the external generation capability; this
// package owns prompt assembly, the post-processing pipeline and the
// attempt, validate, retry once, fallback policy that makes the output a
// total function: Bridge never returns an empty string.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/emilianodellacasa/colloquio/internal/logging"
	"github.com/emilianodellacasa/colloquio/internal/text"
	"github.com/emilianodellacasa/colloquio/pkg/classify"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/emilianodellacasa/colloquio/pkg/ports"
)

const (
	// DefaultMaxSentences bounds the length of a bridge reply.
	DefaultMaxSentences = 3

	// shortAnswerThreshold selects the short-answer fallback.
	shortAnswerThreshold = 15

	// FallbackShort is the deterministic reply used when generation fails
	// after a short answer.
	FallbackShort = "Capisco, la ringrazio. Passiamo alla prossima domanda."

	// FallbackGeneral is the deterministic reply used when generation fails
	// after a fuller answer.
	FallbackGeneral = "La ringrazio per aver condiviso questo con me. Procediamo con la prossima domanda."
)

// Input carries everything the bridge prompt is assembled from.
type Input struct {
	Question       string
	Answer         string
	ProfileContext string
	Classification classify.Result
}

// Generator builds bridge replies.
type Generator struct {
	llm          ports.Generator
	maxSentences int
	gender       string
	logger       *slog.Logger
	onFallback   func(context.Context, string)
}

// Option configures the Generator.
type Option func(*Generator)

// WithMaxSentences overrides the reply length bound.
func WithMaxSentences(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxSentences = n
		}
	}
}

// WithGender applies grammatical agreement for the respondent's gender to
// the post-processed reply.
func WithGender(genderLabel string) Option {
	return func(g *Generator) {
		g.gender = genderLabel
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithFallbackHook registers a callback invoked whenever a deterministic
// fallback replaces generated text (used for metrics).
func WithFallbackHook(fn func(context.Context, string)) Option {
	return func(g *Generator) {
		g.onFallback = fn
	}
}

// NewGenerator builds a bridge Generator over the external text-generation
// capability. A nil capability is valid and always yields fallbacks.
func NewGenerator(llm ports.Generator, opts ...Option) *Generator {
	g := &Generator{
		llm:          llm,
		maxSentences: DefaultMaxSentences,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Bridge produces the transition reply for an accepted answer. The result is
// always non-empty: collaborator failures degrade to a deterministic
// fallback chosen by answer length.
func (g *Generator) Bridge(ctx context.Context, in Input) string {
	fallback := g.fallbackFor(in.Answer)

	if g.llm == nil {
		g.fellBack(ctx, "no generator configured")
		return fallback
	}

	out := g.generateValidated(ctx, generateValidatedRequest{
		prompt:       g.prompt(in, false),
		strictPrompt: g.prompt(in, true),
		post:         g.postProcess,
		valid:        validReply,
		fallback:     fallback,
	})
	return out
}

// generateValidatedRequest groups the parameters of one guarded generation.
type generateValidatedRequest struct {
	prompt       domain.Prompt
	strictPrompt domain.Prompt
	post         func(string) string
	valid        func(string) bool
	fallback     string
}

// generateValidated applies the uniform attempt, validate, retry once,
// fallback policy to a generation call.
func (g *Generator) generateValidated(ctx context.Context, req generateValidatedRequest) string {
	if out, ok := g.attempt(ctx, req.prompt, req.post, req.valid); ok {
		return out
	}

	if out, ok := g.attempt(ctx, req.strictPrompt, req.post, req.valid); ok {
		return out
	}

	g.fellBack(ctx, "generation failed validation twice")
	return req.fallback
}

func (g *Generator) attempt(ctx context.Context, prompt domain.Prompt, post func(string) string, valid func(string) bool) (string, bool) {
	raw, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("generation call failed", "err", err)
		return "", false
	}

	out := post(raw)
	if !valid(out) {
		g.logger.Debug("generated reply rejected", "reply", out)
		return "", false
	}
	return out, true
}

// postProcess runs the composable cleanup pipeline over raw model output.
func (g *Generator) postProcess(raw string) string {
	out := text.StripQuestions(raw)
	out = text.StripLabels(out)
	out = text.TrimToMaxSentences(out, g.maxSentences)
	out = text.CoerceGender(out, g.gender)
	return out
}

func validReply(s string) bool {
	return strings.TrimSpace(s) != "" && text.IsFormal(s)
}

func (g *Generator) fallbackFor(answer string) string {
	if utf8.RuneCountInString(strings.TrimSpace(answer)) <= shortAnswerThreshold {
		return FallbackShort
	}
	return FallbackGeneral
}

func (g *Generator) fellBack(ctx context.Context, reason string) {
	g.logger.Warn("using deterministic bridge fallback", "reason", reason)
	if g.onFallback != nil {
		g.onFallback(ctx, reason)
	}
}

// prompt assembles the generation request. Wording is intentionally simple:
// the engine's contract is with the post-processing pipeline, not with any
// specific model.
func (g *Generator) prompt(in Input, strict bool) domain.Prompt {
	var sys strings.Builder
	sys.WriteString("Sei un assistente empatico che accompagna una persona anziana in un diario quotidiano. ")
	sys.WriteString("Rispondi in italiano, con il Lei formale, in massimo ")
	fmt.Fprintf(&sys, "%d frasi. ", g.maxSentences)
	sys.WriteString("Non fare domande: offri solo una breve riflessione di conforto che faccia da ponte verso la domanda successiva.")
	if strict {
		sys.WriteString(" ATTENZIONE: usa esclusivamente il Lei formale, mai il tu, e non terminare con una domanda.")
	}

	var usr strings.Builder
	fmt.Fprintf(&usr, "Domanda: %s\n", in.Question)
	fmt.Fprintf(&usr, "Risposta: %s\n", in.Answer)
	if in.Classification.Theme != "" {
		fmt.Fprintf(&usr, "Tema rilevato: %s\n", in.Classification.Theme)
	}
	if in.Classification.Evasive {
		usr.WriteString("La risposta è stata evasiva: resta delicato e non insistere.\n")
	}
	if in.ProfileContext != "" {
		fmt.Fprintf(&usr, "Contesto sul profilo:\n%s\n", in.ProfileContext)
	}

	return domain.Prompt{System: sys.String(), User: usr.String()}
}
