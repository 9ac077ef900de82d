package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianodellacasa/colloquio/pkg/domain"
)

func TestStdinInput_ReadsTrimmedAnswer(t *testing.T) {
	var out bytes.Buffer
	input := NewStdinInput(strings.NewReader("  una risposta qualunque  \n"), &out, WithPlainOutput())

	answer, err := input.Ask(context.Background(), "Come va?")
	require.NoError(t, err)

	assert.Equal(t, "una risposta qualunque", answer)
	assert.Contains(t, out.String(), "Come va?")
	assert.Contains(t, out.String(), "> ")
}

func TestStdinInput_QuitWordClosesSession(t *testing.T) {
	for _, word := range []string{"q", "Q", "esci", "ESCI"} {
		input := NewStdinInput(strings.NewReader(word+"\n"), &bytes.Buffer{}, WithPlainOutput())

		_, err := input.Ask(context.Background(), "Come va?")
		assert.ErrorIs(t, err, domain.ErrSessionClosed, "word %q", word)
	}
}

func TestStdinInput_QuitWordInsideAnswerIsKept(t *testing.T) {
	input := NewStdinInput(strings.NewReader("oggi esci tu con il cane\n"), &bytes.Buffer{}, WithPlainOutput())

	answer, err := input.Ask(context.Background(), "Come va?")
	require.NoError(t, err)
	assert.Equal(t, "oggi esci tu con il cane", answer)
}

func TestStdinInput_EOFClosesSession(t *testing.T) {
	input := NewStdinInput(strings.NewReader(""), &bytes.Buffer{}, WithPlainOutput())

	_, err := input.Ask(context.Background(), "Come va?")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestStdinInput_FinalLineWithoutNewline(t *testing.T) {
	input := NewStdinInput(strings.NewReader("ultima risposta senza invio"), &bytes.Buffer{}, WithPlainOutput())

	answer, err := input.Ask(context.Background(), "Come va?")
	require.NoError(t, err)
	assert.Equal(t, "ultima risposta senza invio", answer)
}

func TestStdinInput_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	input := NewStdinInput(strings.NewReader("mai letta\n"), &bytes.Buffer{}, WithPlainOutput())

	_, err := input.Ask(ctx, "Come va?")
	assert.ErrorIs(t, err, context.Canceled)
}
