package sequencer

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianodellacasa/colloquio/internal/branch"
	"github.com/emilianodellacasa/colloquio/internal/bridge"
	"github.com/emilianodellacasa/colloquio/internal/testutils"
	"github.com/emilianodellacasa/colloquio/internal/text"
	"github.com/emilianodellacasa/colloquio/pkg/classify"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/emilianodellacasa/colloquio/pkg/ports"
	"github.com/emilianodellacasa/colloquio/pkg/templates"
)

const bridgeReply = "La ringrazio, mi ha raccontato una cosa importante."

func twoQuestions() []domain.Question {
	return []domain.Question{
		{Index: 0, Text: "Come è andata la sua giornata?"},
		{Index: 1, Text: "Cosa l'ha fatta sorridere oggi?"},
	}
}

func fullTemplates() *templates.Registry {
	return templates.New(map[string][]templates.Template{
		classify.CategoryEvasive:   {{Text: "C'è qualcosa, anche piccolo, che le è rimasto in mente?"}},
		classify.ThemeAnsiaPanico:  {{Text: "In quale momento ha avvertito questa agitazione?"}},
		classify.ThemeDoloreFisico: {{Text: "Da quanto tempo sente questo dolore?"}},
		classify.ThemeSolitudine:   {{Text: "C'è qualcuno che le farebbe piacere sentire?"}},
		classify.ThemeTristezza:    {{Text: "Cosa le ha dato più sconforto?"}},
	})
}

type harness struct {
	input     *testutils.ScriptedInput
	generator *testutils.StubGenerator
	recorder  *testutils.MemoryRecorder
	state     *domain.SessionState
}

func newHarness(questions []domain.Question, answers []string, opts ...Option) (*Sequencer, *harness) {
	h := &harness{
		input:     testutils.NewScriptedInput(answers...),
		generator: &testutils.StubGenerator{Reply: bridgeReply},
		recorder:  &testutils.MemoryRecorder{},
		state:     domain.NewSessionState("s1"),
	}
	cls := classify.Default()
	ctl := branch.NewController(cls, fullTemplates(),
		branch.WithRand(rand.New(rand.NewSource(1))),
		branch.WithRecorder(h.recorder))
	gen := bridge.NewGenerator(h.generator)

	base := []Option{WithRecorder(h.recorder)}
	seq := New(questions, h.input, cls, ctl, gen, append(base, opts...)...)
	return seq, h
}

func TestRun_PlainSessionWalksAllQuestions(t *testing.T) {
	seq, h := newHarness(twoQuestions(), []string{
		"Ho passato la mattina in giardino a potare le rose",
		"La telefonata di mia nipote mi ha fatto molto piacere",
	})

	require.NoError(t, seq.Run(context.Background(), h.state))

	assert.True(t, h.state.Done)
	require.Len(t, h.state.QAHistory, 2)
	assert.Len(t, h.state.Signals, 2)
	assert.Equal(t, 1, h.state.QAHistory[0].QuestionID)
	assert.Equal(t, 2, h.state.QAHistory[1].QuestionID)
	assert.Equal(t, bridgeReply, h.state.QAHistory[0].BridgeReply)
	assert.Equal(t, bridgeReply, h.state.QAHistory[1].BridgeReply)

	// The bridge reply is composed into the next question's display.
	require.Len(t, h.input.Displays, 2)
	assert.Equal(t, "Come è andata la sua giornata?", h.input.Displays[0])
	assert.Equal(t, bridgeReply+"\n\nCosa l'ha fatta sorridere oggi?", h.input.Displays[1])

	require.Len(t, h.recorder.Turns, 2)
	assert.True(t, h.recorder.Finalized)
	assert.Equal(t, 2, h.recorder.Summary.Questions)
}

func TestRun_EvasiveAnswerTriggersDeepeningTurn(t *testing.T) {
	seq, h := newHarness(twoQuestions()[:1], []string{
		"niente",
		"Mi è rimasta in mente la visita del dottore",
	})

	require.NoError(t, seq.Run(context.Background(), h.state))

	require.Len(t, h.state.QAHistory, 2) // main answer + one follow-up
	assert.Equal(t, "niente", h.state.QAHistory[0].Answer)
	assert.Empty(t, h.state.QAHistory[0].BridgeReply)
	assert.Equal(t, bridgeReply, h.state.QAHistory[1].BridgeReply)

	// One signal for the main question, none for the deepening turn.
	require.Len(t, h.state.Signals, 1)
	assert.True(t, h.state.Signals[0].Evasive)

	require.Len(t, h.input.Displays, 2)
	assert.Equal(t, "C'è qualcosa, anche piccolo, che le è rimasto in mente?", h.input.Displays[1])

	require.Len(t, h.recorder.Branches, 1)
	assert.Equal(t, "Risposta evasiva", h.recorder.Branches[0].DisplayName)
	assert.Len(t, h.recorder.Turns, 2)
}

func TestRun_DeepeningBoundedByMaxDepth(t *testing.T) {
	seq, h := newHarness(twoQuestions()[:1], []string{"non ricordo", "non so", "boh"})

	require.NoError(t, seq.Run(context.Background(), h.state))

	// Main turn plus exactly two deepening turns, then a forced bridge.
	require.Len(t, h.state.QAHistory, 3)
	assert.Equal(t, bridgeReply, h.state.QAHistory[2].BridgeReply)
	assert.Len(t, h.state.Signals, 1)
	assert.Len(t, h.recorder.Branches, 2)
	assert.True(t, h.state.Done)
}

func TestRun_QuitDiscardsInFlightTurn(t *testing.T) {
	seq, h := newHarness(twoQuestions(), []string{
		"Ho passato la mattina in giardino a potare le rose",
		// The scripted input quits on the second question.
	})

	require.NoError(t, seq.Run(context.Background(), h.state))

	assert.True(t, h.state.Done)
	assert.Len(t, h.state.QAHistory, 1)
	assert.Len(t, h.state.Signals, 1)
	assert.True(t, h.recorder.Finalized)
	assert.Equal(t, 1, h.recorder.Summary.Questions)
}

func TestRun_QuitDuringDeepeningSkipsBridge(t *testing.T) {
	seq, h := newHarness(twoQuestions()[:1], []string{"niente"})

	require.NoError(t, seq.Run(context.Background(), h.state))

	// The main answer was saved; the follow-up was never answered.
	require.Len(t, h.state.QAHistory, 1)
	assert.Empty(t, h.state.QAHistory[0].BridgeReply)
	assert.Empty(t, h.generator.Prompts)

	// The saved turn still reaches the recorder before finalization.
	require.Len(t, h.recorder.Turns, 1)
	assert.True(t, h.recorder.Finalized)
}

func TestRun_ContextCancellationEndsSessionCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seq, h := newHarness(twoQuestions(), []string{"qualsiasi"})

	require.NoError(t, seq.Run(ctx, h.state))

	assert.True(t, h.state.Done)
	assert.Empty(t, h.state.QAHistory)
	assert.True(t, h.recorder.Finalized)
}

func TestRun_RoutingDisabledStillCollectsSignals(t *testing.T) {
	seq, h := newHarness(twoQuestions(), []string{"niente", "boh"}, WithRoutingDisabled())

	require.NoError(t, seq.Run(context.Background(), h.state))

	// Both answers are evasive but no deepening turn was ever asked.
	require.Len(t, h.state.QAHistory, 2)
	require.Len(t, h.state.Signals, 2)
	assert.True(t, h.state.Signals[0].Evasive)
	assert.True(t, h.state.Signals[1].Evasive)
	assert.Empty(t, h.recorder.Branches)
	assert.Len(t, h.input.Displays, 2)
}

func TestRun_RetrieverFailureDoesNotAbort(t *testing.T) {
	retriever := &testutils.StubRetriever{Err: assert.AnError}
	seq, h := newHarness(twoQuestions()[:1],
		[]string{"Tutto sommato una giornata serena"},
		WithRetriever(retriever))

	require.NoError(t, seq.Run(context.Background(), h.state))

	assert.True(t, h.state.Done)
	assert.Empty(t, h.state.ProfileContext)
	require.Len(t, h.state.QAHistory, 1)
}

func TestRun_RetrievedContextReachesGeneration(t *testing.T) {
	retriever := &testutils.StubRetriever{Context: "- famiglia: due figli"}
	seq, h := newHarness(twoQuestions()[:1],
		[]string{"Ho pranzato con i miei figli"},
		WithRetriever(retriever))

	require.NoError(t, seq.Run(context.Background(), h.state))

	require.Len(t, h.generator.Prompts, 1)
	assert.Contains(t, h.generator.Prompts[0].User, "due figli")
	assert.Equal(t, []string{"Come è andata la sua giornata?"}, retriever.Queries)
}

func TestRun_GenderFormattingAppliedToMainQuestions(t *testing.T) {
	questions := []domain.Question{{Index: 0, Text: "Come si è sentito oggi?"}}
	seq, h := newHarness(questions,
		[]string{"Oggi è stata una buona giornata nel complesso"},
		WithGender(text.GenderFeminine))

	require.NoError(t, seq.Run(context.Background(), h.state))

	require.Len(t, h.input.Displays, 1)
	assert.Equal(t, "Come si è sentita oggi?", h.input.Displays[0])
	assert.Equal(t, "Come si è sentita oggi?", h.state.QAHistory[0].Question)
}

func TestRun_EmptyQuestionSetEndsImmediately(t *testing.T) {
	seq, h := newHarness(nil, nil)

	require.NoError(t, seq.Run(context.Background(), h.state))

	assert.True(t, h.state.Done)
	assert.Empty(t, h.input.Displays)
	assert.True(t, h.recorder.Finalized)
	assert.Equal(t, 0, h.recorder.Summary.Questions)
}

func TestRun_LifecycleHooksFire(t *testing.T) {
	var (
		mu       sync.Mutex
		turns    []domain.TurnEvent
		branches []domain.BranchEvent
		ended    *domain.SessionEvent
	)
	hooks := domain.LifecycleHooks{
		OnTurn: func(_ context.Context, ev *domain.TurnEvent) {
			mu.Lock()
			defer mu.Unlock()
			turns = append(turns, *ev)
		},
		OnBranch: func(_ context.Context, ev *domain.BranchEvent) {
			mu.Lock()
			defer mu.Unlock()
			branches = append(branches, *ev)
		},
		OnSessionEnd: func(_ context.Context, ev *domain.SessionEvent) {
			mu.Lock()
			defer mu.Unlock()
			ended = ev
		},
	}

	seq, h := newHarness(twoQuestions()[:1],
		[]string{"niente", "La visita di mia sorella mi è rimasta in mente"},
		WithHooks(hooks))

	require.NoError(t, seq.Run(context.Background(), h.state))

	require.Len(t, turns, 2)
	assert.Equal(t, domain.ModeMain, turns[0].Mode)
	assert.True(t, turns[0].Evasive)
	assert.Equal(t, domain.ModeDeepening, turns[1].Mode)

	require.Len(t, branches, 1)
	assert.Equal(t, classify.CategoryEvasive, branches[0].Category)
	assert.Equal(t, 1, branches[0].Depth)

	require.NotNil(t, ended)
	assert.True(t, ended.Completed)
	assert.Equal(t, 1, ended.Questions)
}

func TestRun_SessionSummaryCarriesIdentity(t *testing.T) {
	seq, h := newHarness(twoQuestions()[:1],
		[]string{"Una giornata tranquilla, senza particolari novità"},
		WithPatientID("P_12ab34cd"),
		WithProfileSummary(map[string]string{"nome": "Maria"}))

	require.NoError(t, seq.Run(context.Background(), h.state))

	require.NotNil(t, h.recorder.Summary)
	assert.Equal(t, "P_12ab34cd", h.recorder.Summary.PatientID)
	assert.Equal(t, "Maria", h.recorder.Summary.Profile["nome"])
	assert.False(t, h.recorder.Summary.EndedAt.Before(h.recorder.Summary.StartedAt))
}

// stubStore captures saves so persistence can be asserted without a real
// adapter.
type stubStore struct {
	saves []string
}

func (s *stubStore) Save(_ context.Context, sessionID string, state *domain.SessionState) error {
	s.saves = append(s.saves, sessionID)
	return nil
}

func (s *stubStore) Load(context.Context, string) (*domain.SessionState, error) {
	return nil, domain.ErrSessionNotFound
}

func (s *stubStore) Delete(context.Context, string) error { return nil }

func (s *stubStore) List(context.Context) ([]string, error) { return nil, nil }

var _ ports.StateStore = (*stubStore)(nil)

func TestRun_StatePersistedOnAdvanceAndFinish(t *testing.T) {
	store := &stubStore{}
	seq, h := newHarness(twoQuestions(), []string{
		"Ho letto il giornale e fatto una passeggiata",
		"Il sole di questa mattina mi ha messo allegria",
	}, WithStore(store))

	require.NoError(t, seq.Run(context.Background(), h.state))

	// One save per advance plus the terminal save.
	assert.GreaterOrEqual(t, len(store.saves), 2)
	for _, id := range store.saves {
		assert.Equal(t, "s1", id)
	}
}

func TestRun_ResumeContinuesFromSavedIndex(t *testing.T) {
	seq, h := newHarness(twoQuestions(), []string{
		"La telefonata di mia nipote mi ha fatto molto piacere",
	})
	// State as persisted after the first question was answered and advanced.
	h.state.CurrentIndex = 1
	h.state.QAHistory = []domain.QARecord{{
		QuestionID:  1,
		Question:    "Come è andata la sua giornata?",
		Answer:      "Bene, nel complesso",
		BridgeReply: bridgeReply,
	}}
	h.state.Signals = []domain.Signal{{QuestionID: 1}}

	require.NoError(t, seq.Run(context.Background(), h.state))

	assert.True(t, h.state.Done)
	require.Len(t, h.state.QAHistory, 2)
	assert.Len(t, h.state.Signals, 2)
	require.Len(t, h.input.Displays, 1)
	assert.True(t, strings.HasPrefix(h.input.Displays[0], "Cosa l'ha fatta"))

	// Only the new turn is recorded; the resumed history is not replayed.
	assert.Len(t, h.recorder.Turns, 1)
}
