// internal/matching/matcher.go
package matching

import (
	"fmt"
	"strings"
)

// Matcher decides whether a candidate value satisfies a required term.
type Matcher interface {
	Matches(required, candidateValue string) bool
}

type MatcherFunc func(required, candidateValue string) bool

func (f MatcherFunc) Matches(required, candidateValue string) bool {
	return f(required, candidateValue)
}

// ContainsMatcher is a case-insensitive substring match: "word" matches
// "Microsoft Word Online".
type ContainsMatcher struct{}

func (ContainsMatcher) Matches(required, candidateValue string) bool {
	required = strings.ToLower(strings.TrimSpace(required))
	if required == "" {
		return false
	}
	return strings.Contains(strings.ToLower(candidateValue), required)
}

// ExactMatcher requires the whole candidate value to equal the required
// term, ignoring case and surrounding whitespace.
type ExactMatcher struct{}

func (ExactMatcher) Matches(required, candidateValue string) bool {
	required = strings.TrimSpace(required)
	if required == "" {
		return false
	}
	return strings.EqualFold(required, strings.TrimSpace(candidateValue))
}

const (
	StrategyContains = "contains"
	StrategyExact    = "exact"
)

func MatcherByName(name string) (Matcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyContains:
		return ContainsMatcher{}, nil
	case StrategyExact:
		return ExactMatcher{}, nil
	default:
		return nil, fmt.Errorf("unknown match strategy %q", name)
	}
}
