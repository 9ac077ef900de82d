// Package eval generates batches of simulated interview sessions so routing
// behavior can be compared against a no-routing baseline.
package eval

import (
	"context"
	"math/rand"
)

// Style selects the answer pool a simulated respondent draws from.
type Style string

const (
	// StyleCollaborative gives full, neutral answers.
	StyleCollaborative Style = "collaborativo"
	// StyleEvasive gives short refusals.
	StyleEvasive Style = "evasivo"
	// StyleAnxious gives answers carrying anxiety-themed wording.
	StyleAnxious Style = "ansioso"
	// StyleMixed draws from all pools.
	StyleMixed Style = "misto"
)

// Styles lists the simulation styles in rotation order.
var Styles = []Style{StyleCollaborative, StyleEvasive, StyleAnxious, StyleMixed}

var collaborativeAnswers = []string{
	"Ho passato la mattina in giardino e il pomeriggio a leggere",
	"Sono andata al mercato con mia figlia, c'era una bella giornata",
	"Ho cucinato il pranzo della domenica e ho riposato un poco",
	"Ho sentito al telefono mia nipote, mi ha raccontato della scuola",
	"Ho fatto una passeggiata fino alla chiesa e ho incontrato una vicina",
}

var evasiveAnswers = []string{
	"niente",
	"non so",
	"non ricordo",
	"boh",
	"nulla",
}

var anxiousAnswers = []string{
	"Ho avuto un po' di ansia per la visita di controllo",
	"Stanotte mi sono svegliata con il batticuore",
	"Sono agitata da stamattina e non capisco il motivo",
	"Ho sentito una forte agitazione prima di uscire",
}

// Simulator is a scripted respondent: deterministic given its random source
// and style, and it never quits.
type Simulator struct {
	style Style
	rng   *rand.Rand
}

// NewSimulator builds a respondent of the given style.
func NewSimulator(style Style, rng *rand.Rand) *Simulator {
	return &Simulator{style: style, rng: rng}
}

// Ask implements ports.InputHandler.
func (s *Simulator) Ask(ctx context.Context, display string) (string, error) {
	pool := s.pool()
	return pool[s.rng.Intn(len(pool))], nil
}

func (s *Simulator) pool() []string {
	switch s.style {
	case StyleEvasive:
		return evasiveAnswers
	case StyleAnxious:
		return anxiousAnswers
	case StyleMixed:
		switch s.rng.Intn(3) {
		case 0:
			return evasiveAnswers
		case 1:
			return anxiousAnswers
		default:
			return collaborativeAnswers
		}
	default:
		return collaborativeAnswers
	}
}
