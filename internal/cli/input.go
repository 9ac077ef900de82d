package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emilianodellacasa/colloquio/internal/presentation/tui"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
)

// quitWords are the answers that end the session when typed on their own.
var quitWords = []string{"q", "esci"}

// StdinInput reads answers line by line from a reader, rendering each
// question as markdown before display. A lone quit word or EOF closes the
// session.
type StdinInput struct {
	reader *bufio.Reader
	out    io.Writer
	render func(string) (string, error)
}

// InputOption configures a StdinInput.
type InputOption func(*StdinInput)

// WithPlainOutput disables markdown rendering.
func WithPlainOutput() InputOption {
	return func(s *StdinInput) {
		s.render = func(text string) (string, error) { return text, nil }
	}
}

// NewStdinInput builds an input handler over the given reader and writer.
func NewStdinInput(in io.Reader, out io.Writer, opts ...InputOption) *StdinInput {
	s := &StdinInput{
		reader: bufio.NewReader(in),
		out:    out,
		render: tui.NewRenderer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask displays the question and blocks until the respondent answers.
func (s *StdinInput) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	display := question
	if rendered, err := s.render(question); err == nil {
		display = rendered
	}
	fmt.Fprintln(s.out, display)
	fmt.Fprint(s.out, "> ")

	line, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			answer := strings.TrimSpace(line)
			if answer != "" && !isQuitWord(answer) {
				return answer, nil
			}
			return "", domain.ErrSessionClosed
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}

	answer := strings.TrimSpace(line)
	if isQuitWord(answer) {
		return "", domain.ErrSessionClosed
	}
	return answer, nil
}

func isQuitWord(answer string) bool {
	for _, w := range quitWords {
		if strings.EqualFold(answer, w) {
			return true
		}
	}
	return false
}
