package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"

	colloquio "github.com/emilianodellacasa/colloquio"
	"github.com/emilianodellacasa/colloquio/internal/logging"
	"github.com/emilianodellacasa/colloquio/internal/metrics"
	"github.com/emilianodellacasa/colloquio/internal/profile"
	filestore "github.com/emilianodellacasa/colloquio/pkg/adapters/file"
	redisstore "github.com/emilianodellacasa/colloquio/pkg/adapters/redis"
	"github.com/emilianodellacasa/colloquio/pkg/adapters/transcript"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/emilianodellacasa/colloquio/pkg/persistence/middleware"
	"github.com/emilianodellacasa/colloquio/pkg/ports"
)

// RunOptions collects everything the run command needs to assemble a session.
type RunOptions struct {
	QuestionsPath string
	TemplatesPath string
	ProfilesDir   string
	ProfilePath   string
	OutputDir     string
	StateDir      string
	RedisURL      string
	ResumeID      string
	NoRouting     bool
	NoPII         bool
	Plain         bool
	Debug         bool

	// Generator is the optional text-generation capability. When nil every
	// bridge reply falls back to the deterministic phrasing.
	Generator ports.Generator

	// Metrics receives the session collectors. Defaults to a private
	// registry; pass prometheus.DefaultRegisterer to expose them.
	Metrics prometheus.Registerer

	In  io.Reader
	Out io.Writer
}

// RunSession assembles the engine from the options and conducts (or resumes)
// one interview session on the terminal.
func RunSession(ctx context.Context, opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := logging.New(opts.Debug)

	questions := DefaultQuestions()
	if opts.QuestionsPath != "" {
		loaded, err := LoadQuestions(opts.QuestionsPath)
		if err != nil {
			return err
		}
		questions = loaded
	}
	registry, err := LoadTemplates(opts.TemplatesPath)
	if err != nil {
		return err
	}

	prof, err := pickProfile(opts)
	if err != nil {
		return err
	}

	store, err := openStore(opts)
	if err != nil {
		return err
	}

	patientID := "P_ANON"
	if prof != nil {
		patientID = prof.PatientID
	}

	recorder, rawRecorder, err := openRecorder(opts, patientID)
	if err != nil {
		return err
	}

	registerer := opts.Metrics
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	collectors := metrics.NewCollectors(registerer)

	inputOpts := []InputOption{}
	if opts.Plain {
		inputOpts = append(inputOpts, WithPlainOutput())
	}
	input := NewStdinInput(opts.In, opts.Out, inputOpts...)

	engineOpts := []colloquio.Option{
		colloquio.WithTemplates(registry),
		colloquio.WithRecorder(recorder),
		colloquio.WithStore(store),
		colloquio.WithLifecycleHooks(collectors.Hooks()),
		colloquio.WithPatientID(patientID),
		colloquio.WithLogger(logger),
	}
	if opts.Generator != nil {
		engineOpts = append(engineOpts, colloquio.WithGenerator(opts.Generator))
	}
	if prof != nil {
		engineOpts = append(engineOpts,
			colloquio.WithRetriever(profile.NewRetriever(prof)),
			colloquio.WithGender(prof.GenderLabel()),
			colloquio.WithProfileSummary(prof.Summary()),
		)
	}
	if opts.NoRouting {
		engineOpts = append(engineOpts, colloquio.WithRoutingDisabled())
	}

	eng, err := colloquio.New(questions, input, engineOpts...)
	if err != nil {
		return err
	}

	if prof != nil {
		fmt.Fprintf(opts.Out, "Session for %s (%s)\n\n", prof.DisplayName(), patientID)
	}

	var state *domain.SessionState
	if opts.ResumeID != "" {
		state, err = eng.Resume(ctx, opts.ResumeID)
	} else {
		state, err = eng.Run(ctx)
	}
	if err != nil {
		return err
	}

	printSummary(opts.Out, state, len(questions), rawRecorder)
	return nil
}

func pickProfile(opts RunOptions) (*profile.Profile, error) {
	if opts.ProfilePath != "" {
		return profile.Load(opts.ProfilePath)
	}
	if opts.ProfilesDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(opts.ProfilesDir); os.IsNotExist(err) {
		return nil, nil
	}
	return SelectProfile(opts.ProfilesDir, opts.In, opts.Out)
}

// openStore picks Redis when a URL is given, otherwise a file store under
// the state directory.
func openStore(opts RunOptions) (ports.StateStore, error) {
	if opts.RedisURL != "" {
		parsed, err := backend.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		return redisstore.NewFromClient(backend.NewClient(parsed)), nil
	}
	dir := opts.StateDir
	if dir == "" {
		dir = filepath.Join(defaultOutputDir(opts), "state")
	}
	return filestore.NewStore(dir)
}

// openRecorder builds the transcript recorder, wrapped in the PII scrubber
// unless disabled. The bare recorder is also returned so the summary can
// print the transcript path.
func openRecorder(opts RunOptions, patientID string) (ports.Recorder, *transcript.Recorder, error) {
	raw, err := transcript.NewRecorder(defaultOutputDir(opts), patientID)
	if err != nil {
		return nil, nil, err
	}
	if opts.NoPII {
		return raw, raw, nil
	}
	scrub := middleware.NewPIIMiddleware()
	return scrub(raw), raw, nil
}

func defaultOutputDir(opts RunOptions) string {
	if opts.OutputDir != "" {
		return opts.OutputDir
	}
	return "colloqui"
}

func printSummary(out io.Writer, state *domain.SessionState, totalQuestions int, rec *transcript.Recorder) {
	if len(state.QAHistory) > 0 {
		if last := state.QAHistory[len(state.QAHistory)-1]; last.BridgeReply != "" {
			fmt.Fprintf(out, "\n%s\n", last.BridgeReply)
		}
	}

	status := "interrupted"
	if len(state.Signals) >= totalQuestions {
		status = "completed"
	}
	fmt.Fprintf(out, "\nSession %s %s: %d of %d questions, %d turns\n",
		state.SessionID, status, len(state.Signals), totalQuestions, len(state.QAHistory))

	for _, sig := range state.Signals {
		if sig.Evasive || sig.Theme != "" {
			fmt.Fprintf(out, "  q%d: evasive=%t theme=%s\n", sig.QuestionID, sig.Evasive, sig.Theme)
		}
	}
	if rec != nil {
		fmt.Fprintf(out, "Transcript: %s\n", rec.Path())
	}
}
