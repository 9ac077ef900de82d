package branch

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianodellacasa/colloquio/internal/testutils"
	"github.com/emilianodellacasa/colloquio/pkg/classify"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/emilianodellacasa/colloquio/pkg/templates"
)

func testTemplates() *templates.Registry {
	return templates.New(map[string][]templates.Template{
		classify.CategoryEvasive: {
			{Text: "Capisco. C'è qualcosa, anche piccolo, che le è rimasto in mente?"},
		},
		classify.ThemeAnsiaPanico: {
			{Text: "In quale momento ha avvertito questa agitazione?"},
		},
		classify.ThemeTristezza: {
			{Text: "Cosa le ha dato più sconforto?"},
		},
	})
}

func newController(rec *testutils.MemoryRecorder, opts ...Option) *Controller {
	base := []Option{WithRand(rand.New(rand.NewSource(1)))}
	if rec != nil {
		base = append(base, WithRecorder(rec))
	}
	return NewController(classify.Default(), testTemplates(), append(base, opts...)...)
}

func TestRoute_EvasiveAnswerOpensDeepening(t *testing.T) {
	rec := &testutils.MemoryRecorder{}
	c := newController(rec)
	state := domain.NewSessionState("s1")

	// Scenario: "niente" is evasive with no theme.
	res := classify.Default().Classify("niente")
	require.True(t, res.Evasive)
	require.Empty(t, res.Theme)

	dec := c.Route(context.Background(), state, res)

	assert.True(t, dec.Deepen)
	assert.Equal(t, classify.CategoryEvasive, dec.Category)
	assert.NotEmpty(t, dec.FollowUp)
	assert.Equal(t, domain.ModeDeepening, state.Mode)
	assert.Equal(t, 1, state.BranchCount)
	assert.Equal(t, classify.CategoryEvasive, state.BranchType)
	assert.Equal(t, dec.FollowUp, state.PendingQuestion)

	require.Len(t, rec.Branches, 1)
	assert.Equal(t, "Risposta evasiva", rec.Branches[0].DisplayName)
}

func TestRoute_ThemeAnswerOpensDeepening(t *testing.T) {
	c := newController(nil)
	state := domain.NewSessionState("s1")

	res := classify.Default().Classify("Ho avuto attacchi di panico")
	require.False(t, res.Evasive)
	require.Equal(t, classify.ThemeAnsiaPanico, res.Theme)

	dec := c.Route(context.Background(), state, res)

	assert.True(t, dec.Deepen)
	assert.Equal(t, classify.ThemeAnsiaPanico, state.BranchType)
	assert.Equal(t, 1, state.BranchCount)
}

func TestRoute_NeutralAnswerDoesNotBranch(t *testing.T) {
	c := newController(nil)
	state := domain.NewSessionState("s1")

	dec := c.Route(context.Background(), state, classify.Default().Classify("Ho visto i miei nipoti"))

	assert.False(t, dec.Deepen)
	assert.Equal(t, domain.ModeMain, state.Mode)
	assert.Zero(t, state.BranchCount)
}

func TestRoute_SingleEpisodePerMainQuestion(t *testing.T) {
	c := newController(nil)
	state := domain.NewSessionState("s1")
	res := classify.Default().Classify("niente")

	// Open and immediately exit an episode.
	require.True(t, c.Route(context.Background(), state, res).Deepen)
	state.Mode = domain.ModeDeepening
	exit := c.Route(context.Background(), state, classify.Default().Classify("Ho passato la giornata con mia figlia al mercato"))
	require.False(t, exit.Deepen)
	require.Equal(t, domain.ModeMain, state.Mode)

	// A second evasive answer for the same main question must not reopen.
	dec := c.Route(context.Background(), state, res)
	assert.False(t, dec.Deepen)
}

func TestRoute_MaxDepthForcesExit(t *testing.T) {
	c := newController(nil) // default depth 2
	state := domain.NewSessionState("s1")
	evasive := classify.Default().Classify("non ricordo")

	// Scenario: two consecutive deepening turns both evasive.
	require.True(t, c.Route(context.Background(), state, evasive).Deepen)
	require.Equal(t, 1, state.BranchCount)

	require.True(t, c.Route(context.Background(), state, evasive).Deepen)
	require.Equal(t, 2, state.BranchCount)

	// Third check: the bound is reached, exit is forced even though the
	// answer is still evasive.
	dec := c.Route(context.Background(), state, evasive)
	assert.False(t, dec.Deepen)
	assert.Equal(t, domain.ModeMain, state.Mode)
	assert.Equal(t, 2, state.BranchCount)
	assert.Empty(t, state.PendingQuestion)
}

func TestRoute_ContinuationUsesCurrentCategory(t *testing.T) {
	c := newController(nil, WithMaxDepth(3))
	state := domain.NewSessionState("s1")

	require.True(t, c.Route(context.Background(), state, classify.Default().Classify("niente")).Deepen)
	require.Equal(t, classify.CategoryEvasive, state.BranchType)

	// The follow-up answer carries a theme: the episode continues with a
	// template from the theme category, but BranchType keeps the category
	// that opened the episode.
	dec := c.Route(context.Background(), state, classify.Default().Classify("Sono triste e sconfortato"))
	assert.True(t, dec.Deepen)
	assert.Equal(t, classify.ThemeTristezza, dec.Category)
	assert.Equal(t, classify.CategoryEvasive, state.BranchType)
	assert.Equal(t, 2, state.BranchCount)
}

func TestRoute_MissingTemplatesSkipBranch(t *testing.T) {
	// Registry without a category for dolore_fisico.
	c := newController(nil)
	state := domain.NewSessionState("s1")

	dec := c.Route(context.Background(), state, classify.Default().Classify("Ho dolore alla schiena"))

	assert.False(t, dec.Deepen)
	assert.Equal(t, domain.ModeMain, state.Mode)
	assert.Zero(t, state.BranchCount)
}

func TestRoute_RecorderFailureDoesNotBlockBranching(t *testing.T) {
	rec := &testutils.MemoryRecorder{FailWith: assert.AnError}
	c := newController(rec)
	state := domain.NewSessionState("s1")

	dec := c.Route(context.Background(), state, classify.Default().Classify("niente"))
	assert.True(t, dec.Deepen)
}
