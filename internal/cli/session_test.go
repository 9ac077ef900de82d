package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filestore "github.com/emilianodellacasa/colloquio/pkg/adapters/file"
)

func sessionOptions(t *testing.T, answers string) (RunOptions, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	questions := writeFile(t, "questions.yaml", `questions:
  - "Come è andata la sua giornata?"
  - "Come si è sentito oggi?"
`)

	var out bytes.Buffer
	return RunOptions{
		QuestionsPath: questions,
		OutputDir:     filepath.Join(dir, "out"),
		StateDir:      filepath.Join(dir, "state"),
		Plain:         true,
		In:            strings.NewReader(answers),
		Out:           &out,
	}, &out
}

func TestRunSession_CompletesAndWritesTranscript(t *testing.T) {
	opts, out := sessionOptions(t, "Ho letto il giornale in giardino\nMi sono riposato dopo pranzo\n")

	require.NoError(t, RunSession(context.Background(), opts))

	assert.Contains(t, out.String(), "completed")
	assert.Contains(t, out.String(), "2 of 2 questions")

	// One transcript CSV under the anonymous patient directory.
	entries, err := os.ReadDir(filepath.Join(opts.OutputDir, "P_ANON"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRunSession_QuitThenResume(t *testing.T) {
	opts, out := sessionOptions(t, "Ho letto il giornale in giardino\nq\n")
	require.NoError(t, RunSession(context.Background(), opts))
	assert.Contains(t, out.String(), "interrupted")

	store, err := filestore.NewStore(opts.StateDir)
	require.NoError(t, err)
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)

	resume, resumeOut := sessionOptions(t, "Mi sono riposato dopo pranzo\n")
	resume.StateDir = opts.StateDir
	resume.OutputDir = opts.OutputDir
	resume.ResumeID = ids[0]

	require.NoError(t, RunSession(context.Background(), resume))
	assert.Contains(t, resumeOut.String(), "completed")
}

func TestRunSession_BadQuestionsPath(t *testing.T) {
	opts, _ := sessionOptions(t, "")
	opts.QuestionsPath = filepath.Join(t.TempDir(), "absent.yaml")

	assert.Error(t, RunSession(context.Background(), opts))
}

func TestRunSession_ProfileDrivesPatientID(t *testing.T) {
	opts, out := sessionOptions(t, "Ho letto il giornale in giardino\nMi sono riposato dopo pranzo\n")
	profilePath := filepath.Join(t.TempDir(), "maria.json")
	require.NoError(t, os.WriteFile(profilePath, []byte(`{"nome": "Maria", "eta": 78, "genere": "F"}`), 0o644))
	opts.ProfilePath = profilePath

	require.NoError(t, RunSession(context.Background(), opts))

	assert.Contains(t, out.String(), "Maria")
	assert.Contains(t, out.String(), "P_")
	assert.NotContains(t, out.String(), "P_ANON")
}
