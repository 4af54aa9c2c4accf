// internal/matching/matcher_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsMatcher(t *testing.T) {
	m := ContainsMatcher{}

	assert.True(t, m.Matches("word", "Microsoft Word Online"))
	assert.True(t, m.Matches("Excel", "excel"))
	assert.True(t, m.Matches("ingeniería", "INGENIERÍA CIVIL"))
	assert.False(t, m.Matches("sap", "Photoshop"))
	assert.False(t, m.Matches("", "anything"))
	assert.False(t, m.Matches("   ", "anything"))
}

func TestExactMatcher(t *testing.T) {
	m := ExactMatcher{}

	assert.True(t, m.Matches("Excel", " excel "))
	assert.False(t, m.Matches("word", "Microsoft Word"))
	assert.False(t, m.Matches("", ""))
}

func TestMatcherByName(t *testing.T) {
	tests := []struct {
		name    string
		want    Matcher
		wantErr bool
	}{
		{"", ContainsMatcher{}, false},
		{"contains", ContainsMatcher{}, false},
		{" EXACT ", ExactMatcher{}, false},
		{"levenshtein", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := MatcherByName(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestMatcherFunc(t *testing.T) {
	var calls int
	m := MatcherFunc(func(required, value string) bool {
		calls++
		return required == value
	})

	assert.True(t, m.Matches("a", "a"))
	assert.False(t, m.Matches("a", "b"))
	assert.Equal(t, 2, calls)
}
