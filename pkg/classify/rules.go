package classify

// Theme identifiers used by the default rule set.
const (
	ThemeAnsiaPanico  = "ansia_panico"
	ThemeDoloreFisico = "dolore_fisico"
	ThemeSolitudine   = "solitudine"
	ThemeTristezza    = "tristezza"
)

// defaultEvasiveKeywords are short refusals typical of evasive answers.
var defaultEvasiveKeywords = []string{
	"no", "niente", "non ricordo", "non so", "nulla",
	"non mi viene in mente", "boh", "mah",
}

// defaultThemes lists the theme keyword sets in priority order. Stems are
// used where Italian inflection varies (ansios- matches ansioso/ansiosa).
var defaultThemes = []ThemeRule{
	{
		ID:          ThemeAnsiaPanico,
		DisplayName: "Ansia/Panico",
		Keywords: []string{
			"panico", "ansia", "ansios", "paura", "spavent",
			"affann", "respir", "batticuore", "battito", "tremor",
			"agitat", "agitaz", "nervos", "preoccup", "timor",
		},
	},
	{
		ID:          ThemeDoloreFisico,
		DisplayName: "Dolore fisico",
		Keywords: []string{
			"dolor", "fa male", "mal di", "fanno male", "male dappertutto",
			"fitte", "fitta", "bruciore", "brucior", "indolenzit",
			"male alla", "male al", "male tutto", "sofferenza", "soffr",
		},
	},
	{
		ID:          ThemeSolitudine,
		DisplayName: "Solitudine",
		Keywords: []string{
			"solo", "sola", "solitudin", "nessuno", "abbandon",
			"isolat", "trovarmi", "compagnia", "da sol",
		},
	},
	{
		ID:          ThemeTristezza,
		DisplayName: "Tristezza",
		Keywords: []string{
			"triste", "tristezz", "vuoto", "vuota", "sconfort",
			"scoraggiat", "demoralizzat", "non ce la", "depress",
			"piang", "lacrim", "malinconi", "giù di morale",
		},
	},
}
