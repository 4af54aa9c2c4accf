// internal/matching/synonyms.go
package matching

import "strings"

const (
	LevelBachiller     = "bachiller"
	LevelTecnico       = "tecnico"
	LevelUniversitario = "universitario"
	LevelMaestria      = "maestria"
	LevelDoctorado     = "doctorado"
)

var canonicalLevelOrder = []string{
	LevelBachiller,
	LevelTecnico,
	LevelUniversitario,
	LevelMaestria,
	LevelDoctorado,
}

// defaultEducationSynonyms maps an education-level key to the lowercase
// fragments searched for in candidate degree titles.
var defaultEducationSynonyms = map[string][]string{
	LevelBachiller:     {"bachiller", "bachillerato", "secundaria", "high school"},
	LevelTecnico:       {"técnico", "tecnico", "tecnólogo", "tecnologo", "technician"},
	LevelUniversitario: {"licenciatura", "ingeniería", "ingenieria", "bachelor", "grado"},
	LevelMaestria:      {"maestría", "maestria", "máster", "master", "magíster", "magister"},
	LevelDoctorado:     {"doctorado", "doctor", "phd", "ph.d"},
}

var levelLabels = map[string]string{
	LevelBachiller:     "Bachiller",
	LevelTecnico:       "Técnico",
	LevelUniversitario: "Universitario",
	LevelMaestria:      "Maestría",
	LevelDoctorado:     "Doctorado",
}

// English is detected by these fragments in the language name, which covers
// "Inglés", "ingles", "English" and "english (US)".
var englishFragments = []string{"ingl", "engl"}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
)

func normalizeLevelKey(key string) string {
	return accentFolder.Replace(strings.ToLower(strings.TrimSpace(key)))
}

func isCanonicalLevel(level string) bool {
	for _, l := range canonicalLevelOrder {
		if l == level {
			return true
		}
	}
	return false
}

// LevelLabel returns the display name for an education-level key.
func LevelLabel(key string) string {
	if label, ok := levelLabels[normalizeLevelKey(key)]; ok {
		return label
	}
	return key
}

func synonymsFor(table map[string][]string, key string) []string {
	if terms, ok := table[normalizeLevelKey(key)]; ok && len(terms) > 0 {
		return terms
	}
	return []string{strings.ToLower(strings.TrimSpace(key))}
}

func copyTable(table map[string][]string) map[string][]string {
	out := make(map[string][]string, len(table))
	for key, terms := range table {
		out[key] = append([]string(nil), terms...)
	}
	return out
}

// DefaultEducationSynonyms returns a copy of the built-in synonym table.
func DefaultEducationSynonyms() map[string][]string {
	return copyTable(defaultEducationSynonyms)
}

// EducationSynonyms returns the default search terms for a level key.
func EducationSynonyms(key string) []string {
	return append([]string(nil), synonymsFor(defaultEducationSynonyms, key)...)
}

var englishLanguageNames = []string{"inglés", "ingles", "english"}

// EnglishLanguageNames returns the whole-word spellings used where fragments
// cannot be, such as exact matching and search queries.
func EnglishLanguageNames() []string {
	return append([]string(nil), englishLanguageNames...)
}
