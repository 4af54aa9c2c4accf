// internal/matching/scorer.go
package matching

import (
	"fmt"
	"math"
	"strings"
)

const (
	educationPoints  = 10
	languagePoints   = 10
	officeToolPoints = 5
	softwarePoints   = 10
	partialDivisor   = 2
	maxScore         = 100
)

// Scorer computes candidate-to-requisition compatibility. A Scorer is
// immutable once built and may be shared between goroutines.
type Scorer struct {
	degreeMatcher   Matcher
	languageMatcher Matcher
	skillMatcher    Matcher
	synonyms        map[string][]string
	englishTerms    []string
}

type Option func(*Scorer)

// WithMatcher sets the predicate for every category.
func WithMatcher(m Matcher) Option {
	return func(s *Scorer) {
		s.degreeMatcher = m
		s.languageMatcher = m
		s.skillMatcher = m
	}
}

func WithDegreeMatcher(m Matcher) Option {
	return func(s *Scorer) { s.degreeMatcher = m }
}

func WithLanguageMatcher(m Matcher) Option {
	return func(s *Scorer) { s.languageMatcher = m }
}

func WithSkillMatcher(m Matcher) Option {
	return func(s *Scorer) { s.skillMatcher = m }
}

// WithEducationSynonyms overrides or extends the synonym table. Keys are
// normalized the same way requisition level keys are.
func WithEducationSynonyms(table map[string][]string) Option {
	return func(s *Scorer) {
		for key, terms := range table {
			lowered := make([]string, 0, len(terms))
			for _, t := range terms {
				lowered = append(lowered, strings.ToLower(t))
			}
			s.synonyms[normalizeLevelKey(key)] = lowered
		}
	}
}

// WithEnglishTerms replaces the terms used to find the candidate's English
// entry in the languages list.
func WithEnglishTerms(terms ...string) Option {
	return func(s *Scorer) {
		s.englishTerms = append([]string(nil), terms...)
	}
}

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		degreeMatcher:   ContainsMatcher{},
		languageMatcher: ContainsMatcher{},
		skillMatcher:    ContainsMatcher{},
		synonyms:        copyTable(defaultEducationSynonyms),
		englishTerms:    append([]string(nil), englishFragments...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScorerForStrategy builds a scorer for a named matching strategy.
// The exact strategy also switches English detection to whole language names.
func ScorerForStrategy(strategy string) (*Scorer, error) {
	m, err := MatcherByName(strategy)
	if err != nil {
		return nil, err
	}
	if _, exact := m.(ExactMatcher); exact {
		return NewScorer(WithMatcher(m), WithEnglishTerms(englishLanguageNames...)), nil
	}
	return NewScorer(WithMatcher(m)), nil
}

var defaultScorer = NewScorer()

// Analyze scores a candidate against a requisition with the default
// substring strategy.
func Analyze(candidate CandidateProfile, requisition Requisition) MatchResult {
	return defaultScorer.Analyze(candidate, requisition)
}

type tally struct {
	earned  int
	total   int
	matches []MatchEntry
}

func (t *tally) add(possible, earned int, entry MatchEntry) {
	t.total += possible
	t.earned += earned
	t.matches = append(t.matches, entry)
}

// Analyze never fails: absent requirements are skipped and absent candidate
// data scores as missing.
func (s *Scorer) Analyze(candidate CandidateProfile, requisition Requisition) MatchResult {
	t := &tally{matches: []MatchEntry{}}

	s.scoreEducation(t, candidate, requisition)
	s.scoreEnglish(t, candidate, requisition)
	s.scoreOfficeTools(t, candidate, requisition)
	s.scoreSoftware(t, candidate, requisition)

	return MatchResult{
		Score:        percentage(t.earned, t.total),
		Matches:      t.matches,
		EarnedPoints: t.earned,
		TotalPoints:  t.total,
	}
}

func (s *Scorer) scoreEducation(t *tally, candidate CandidateProfile, requisition Requisition) {
	for _, key := range requisition.FormacionAcademica.RequiredLevels() {
		entry := MatchEntry{
			Category: CategoryEducation,
			Item:     LevelLabel(key),
			Status:   StatusMissing,
		}

		if degree, ok := s.findDegree(candidate.Education, synonymsFor(s.synonyms, key)); ok {
			entry.Status = StatusMatch
			entry.Details = degree
			t.add(educationPoints, educationPoints, entry)
			continue
		}
		t.add(educationPoints, 0, entry)
	}
}

func (s *Scorer) findDegree(education []Education, synonyms []string) (string, bool) {
	for _, ed := range education {
		if ed.Degree == "" {
			continue
		}
		for _, term := range synonyms {
			if s.degreeMatcher.Matches(term, ed.Degree) {
				return ed.Degree, true
			}
		}
	}
	return "", false
}

func (s *Scorer) scoreEnglish(t *tally, candidate CandidateProfile, requisition Requisition) {
	if !requisition.EnglishRequired() {
		return
	}

	entry := MatchEntry{
		Category: CategoryLanguage,
		Item:     ItemEnglish,
		Status:   StatusMissing,
	}

	lang, ok := s.findEnglish(candidate.Languages)
	switch {
	case !ok:
		t.add(languagePoints, 0, entry)
	case lang.Proficiency.IsFluent():
		entry.Status = StatusMatch
		entry.Details = string(lang.Proficiency)
		t.add(languagePoints, languagePoints, entry)
	default:
		entry.Status = StatusPartial
		entry.Details = string(lang.Proficiency)
		t.add(languagePoints, languagePoints/partialDivisor, entry)
	}
}

func (s *Scorer) findEnglish(languages []Language) (Language, bool) {
	for _, lang := range languages {
		for _, term := range s.englishTerms {
			if s.languageMatcher.Matches(term, lang.Language) {
				return lang, true
			}
		}
	}
	return Language{}, false
}

// scoreOfficeTools awards full credit on presence of the tool. The required
// level is not compared against the candidate's level.
func (s *Scorer) scoreOfficeTools(t *tally, candidate CandidateProfile, requisition Requisition) {
	for _, tool := range OfficeTools {
		if _, required := requisition.HabilidadInformatica.RequiredLevel(tool.Key); !required {
			continue
		}

		entry := MatchEntry{
			Category: CategoryOfficeTools,
			Item:     tool.Label,
			Status:   StatusMissing,
		}
		if skill, ok := s.findSkill(candidate.Skills, tool.Key); ok {
			entry.Status = StatusMatch
			entry.Details = string(skill.Level)
			t.add(officeToolPoints, officeToolPoints, entry)
			continue
		}
		t.add(officeToolPoints, 0, entry)
	}
}

func (s *Scorer) scoreSoftware(t *tally, candidate CandidateProfile, requisition Requisition) {
	for _, name := range requisition.HabilidadInformatica.Software() {
		entry := MatchEntry{
			Category: CategorySoftware,
			Item:     name,
			Status:   StatusMissing,
		}
		if skill, ok := s.findSkill(candidate.Skills, name); ok {
			entry.Status = StatusMatch
			entry.Details = string(skill.Level)
			t.add(softwarePoints, softwarePoints, entry)
			continue
		}
		t.add(softwarePoints, 0, entry)
	}
}

func (s *Scorer) findSkill(skills []Skill, required string) (Skill, bool) {
	for _, skill := range skills {
		if s.skillMatcher.Matches(required, skill.SkillName) {
			return skill, true
		}
	}
	return Skill{}, false
}

func percentage(earned, total int) int {
	if total <= 0 {
		return 0
	}
	score := int(math.Round(float64(maxScore*earned) / float64(total)))
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func (r MatchResult) String() string {
	c := r.Counts()
	return fmt.Sprintf("score=%d earned=%d/%d matched=%d partial=%d missing=%d",
		r.Score, r.EarnedPoints, r.TotalPoints, c.Matched, c.Partial, c.Missing)
}
