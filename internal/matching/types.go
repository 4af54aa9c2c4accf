// internal/matching/types.go
package matching

import "strings"

type Proficiency string

const (
	ProficiencyBasic        Proficiency = "basic"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyNative       Proficiency = "native"
)

var proficiencyAliases = map[string]Proficiency{
	"basic":        ProficiencyBasic,
	"basico":       ProficiencyBasic,
	"básico":       ProficiencyBasic,
	"intermediate": ProficiencyIntermediate,
	"intermedio":   ProficiencyIntermediate,
	"advanced":     ProficiencyAdvanced,
	"avanzado":     ProficiencyAdvanced,
	"native":       ProficiencyNative,
	"nativo":       ProficiencyNative,
}

// Normalize maps Spanish spellings and casing variants onto the canonical
// values. Unknown values are returned lowercased and untouched.
func (p Proficiency) Normalize() Proficiency {
	key := strings.ToLower(strings.TrimSpace(string(p)))
	if canonical, ok := proficiencyAliases[key]; ok {
		return canonical
	}
	return Proficiency(key)
}

// IsFluent reports whether the proficiency earns full language credit.
func (p Proficiency) IsFluent() bool {
	switch p.Normalize() {
	case ProficiencyAdvanced, ProficiencyNative:
		return true
	}
	return false
}

type SkillLevel string

const (
	SkillLevelBeginner     SkillLevel = "beginner"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelAdvanced     SkillLevel = "advanced"
	SkillLevelExpert       SkillLevel = "expert"
)

var skillLevelAliases = map[string]SkillLevel{
	"beginner":     SkillLevelBeginner,
	"principiante": SkillLevelBeginner,
	"basico":       SkillLevelBeginner,
	"básico":       SkillLevelBeginner,
	"intermediate": SkillLevelIntermediate,
	"intermedio":   SkillLevelIntermediate,
	"advanced":     SkillLevelAdvanced,
	"avanzado":     SkillLevelAdvanced,
	"expert":       SkillLevelExpert,
	"experto":      SkillLevelExpert,
}

func (l SkillLevel) Normalize() SkillLevel {
	key := strings.ToLower(strings.TrimSpace(string(l)))
	if canonical, ok := skillLevelAliases[key]; ok {
		return canonical
	}
	return SkillLevel(key)
}

type Education struct {
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	Institution  string `json:"institution,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
}

type Language struct {
	Language    string      `json:"language"`
	Proficiency Proficiency `json:"proficiency"`
}

type Skill struct {
	SkillName string     `json:"skill_name"`
	Level     SkillLevel `json:"level"`
}

// CandidateProfile is the aggregate of a job seeker's education, language and
// skill records as loaded from storage.
type CandidateProfile struct {
	ID        string      `json:"id,omitempty"`
	Education []Education `json:"education"`
	Languages []Language  `json:"languages"`
	Skills    []Skill     `json:"skills"`
}

type Status string

const (
	StatusMatch   Status = "match"
	StatusPartial Status = "partial"
	StatusMissing Status = "missing"
)

const (
	CategoryEducation   = "Formación Académica"
	CategoryLanguage    = "Idioma"
	CategoryOfficeTools = "Herramientas Ofimáticas"
	CategorySoftware    = "Software Específico"

	ItemEnglish = "Inglés"
)

type MatchEntry struct {
	Category string `json:"category"`
	Item     string `json:"item"`
	Status   Status `json:"status"`
	Details  string `json:"details,omitempty"`
}

// MatchResult is built fresh on every Analyze call and is never shared.
type MatchResult struct {
	Score        int          `json:"score"`
	Matches      []MatchEntry `json:"matches"`
	EarnedPoints int          `json:"earned_points"`
	TotalPoints  int          `json:"total_points"`
}

type StatusCounts struct {
	Matched int `json:"matched"`
	Partial int `json:"partial"`
	Missing int `json:"missing"`
}

func (r MatchResult) Counts() StatusCounts {
	var c StatusCounts
	for _, m := range r.Matches {
		switch m.Status {
		case StatusMatch:
			c.Matched++
		case StatusPartial:
			c.Partial++
		case StatusMissing:
			c.Missing++
		}
	}
	return c
}
