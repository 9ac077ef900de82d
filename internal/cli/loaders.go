// Package cli wires the interactive commands: file loading, the stdin input
// handler, profile selection and session assembly.
package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/emilianodellacasa/colloquio/pkg/classify"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/emilianodellacasa/colloquio/pkg/templates"
)

// questionsDocument accepts both a bare list of strings and a document with
// a "questions" key. JSON files parse through the YAML decoder as well.
type questionsDocument struct {
	Questions []string `yaml:"questions"`
}

// LoadQuestions reads a question set from a YAML or JSON file.
func LoadQuestions(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading questions %s: %w", path, err)
	}

	var doc questionsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		var bare []string
		if bareErr := yaml.Unmarshal(data, &bare); bareErr != nil {
			return nil, fmt.Errorf("parsing questions %s: %w", path, err)
		}
		doc.Questions = bare
	}
	if len(doc.Questions) == 0 {
		var bare []string
		if err := yaml.Unmarshal(data, &bare); err == nil {
			doc.Questions = bare
		}
	}
	if len(doc.Questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	questions := make([]domain.Question, len(doc.Questions))
	for i, text := range doc.Questions {
		questions[i] = domain.Question{Index: i, Text: text}
	}
	return questions, nil
}

// DefaultQuestions is the stock daily-interview question set.
func DefaultQuestions() []domain.Question {
	texts := []string{
		"Come è andata la sua giornata oggi?",
		"Come si è sentito nel corso della giornata?",
		"C'è stato un momento in cui si è sentito particolarmente preoccupato?",
		"Ha avuto modo di parlare con qualcuno oggi?",
		"C'è qualcosa che la preoccupa pensando a domani?",
	}
	questions := make([]domain.Question, len(texts))
	for i, text := range texts {
		questions[i] = domain.Question{Index: i, Text: text}
	}
	return questions
}

// LoadTemplates reads a follow-up template registry from a YAML file, or
// returns the default registry when path is empty.
func LoadTemplates(path string) (*templates.Registry, error) {
	if path == "" {
		return DefaultTemplates(), nil
	}
	return templates.Load(path)
}

// DefaultTemplates covers every default category with formal follow-ups.
func DefaultTemplates() *templates.Registry {
	return templates.New(map[string][]templates.Template{
		classify.CategoryEvasive: {
			{Text: "Capisco. C'è qualcosa, anche piccolo, che le è rimasto in mente della giornata?"},
			{Text: "Va bene così. Se ci ripensa, c'è un momento che vorrebbe raccontarmi?"},
		},
		classify.ThemeAnsiaPanico: {
			{Text: "Mi dispiace sentirlo. In quale momento ha avvertito questa agitazione?"},
			{Text: "Capisco. C'è qualcosa che di solito la aiuta quando si sente così?"},
		},
		classify.ThemeDoloreFisico: {
			{Text: "Mi dispiace. Da quanto tempo avverte questo fastidio?"},
			{Text: "Capisco. Il dolore le ha impedito di fare qualcosa che aveva in programma?"},
		},
		classify.ThemeSolitudine: {
			{Text: "La capisco. C'è qualcuno che le farebbe piacere sentire in questi giorni?"},
			{Text: "Dev'essere pesante. Cosa le manca di più della compagnia?"},
		},
		classify.ThemeTristezza: {
			{Text: "Mi dispiace che si senta così. Cosa le ha dato più sconforto oggi?"},
			{Text: "Capisco. C'è stato qualcosa, anche piccolo, che l'ha sollevata un poco?"},
		},
	})
}
