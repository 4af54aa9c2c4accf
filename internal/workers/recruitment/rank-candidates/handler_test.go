// internal/workers/recruitment/rank-candidates/handler_test.go
package rankcandidates

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "recruitment-workers/internal/common/errors"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/matching"
	"recruitment-workers/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockProfileLoader struct {
	mock.Mock
}

func (m *MockProfileLoader) LoadCandidate(ctx context.Context, id string) (*matching.CandidateProfile, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*matching.CandidateProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileLoader) LoadRequisition(ctx context.Context, id string) (*matching.Requisition, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*matching.Requisition), args.Error(1)
	}
	return nil, args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		MaxItems:    10,
		Concurrency: 2,
		Strategy:    matching.StrategyContains,
		Timeout:     5 * time.Second,
	}
}

func createTestRequisition() *matching.Requisition {
	english := true
	excel := "avanzado"
	return &matching.Requisition{
		ID: "req-1",
		FormacionAcademica: matching.AcademicRequirements{
			Levels: map[string]bool{"universitario": true},
		},
		IdiomaIngles: &english,
		HabilidadInformatica: &matching.ComputerSkills{
			Excel:              &excel,
			SoftwareEspecifico: []matching.SoftwareRequirement{{Nombre: "SAP"}},
		},
	}
}

// fullMatch scores 100 against createTestRequisition.
func fullMatch(id string) *matching.CandidateProfile {
	return &matching.CandidateProfile{
		ID:        id,
		Education: []matching.Education{{Degree: "Licenciatura en Finanzas"}},
		Languages: []matching.Language{{Language: "English", Proficiency: matching.ProficiencyAdvanced}},
		Skills:    []matching.Skill{{SkillName: "Excel"}, {SkillName: "SAP"}},
	}
}

// partialMatch scores 57: degree, partial English, Excel.
func partialMatch(id string) *matching.CandidateProfile {
	return &matching.CandidateProfile{
		ID:        id,
		Education: []matching.Education{{Degree: "Licenciatura en Contaduría"}},
		Languages: []matching.Language{{Language: "Inglés", Proficiency: matching.ProficiencyIntermediate}},
		Skills:    []matching.Skill{{SkillName: "Excel"}},
	}
}

// noEnglish scores 71: degree, Excel, SAP.
func noEnglish(id string) *matching.CandidateProfile {
	return &matching.CandidateProfile{
		ID:        id,
		Education: []matching.Education{{Degree: "Licenciatura en Sistemas"}},
		Skills:    []matching.Skill{{SkillName: "excel"}, {SkillName: "SAP R/3"}},
	}
}

func ids(ranked []RankedCandidate) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.CandidateID
	}
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_RanksInlineProfiles(t *testing.T) {
	loader := new(MockProfileLoader)
	handler, err := NewHandler(createTestConfig(), loader, logger.NewTestLogger(t))
	require.NoError(t, err)

	input := &Input{
		Requisition: createTestRequisition(),
		Profiles: []matching.CandidateProfile{
			*partialMatch("cand-b"),
			*fullMatch("cand-z"),
			*noEnglish("cand-c"),
			{ID: "cand-empty"},
			*fullMatch("cand-a"),
		},
	}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, []string{"cand-a", "cand-z", "cand-c", "cand-b", "cand-empty"}, ids(output.RankedCandidates))
	assert.Equal(t, 5, output.EvaluatedCount)
	assert.Equal(t, 0, output.SkippedCount)

	for i, r := range output.RankedCandidates {
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, 100, output.RankedCandidates[0].MatchScore)
	assert.Equal(t, 4, output.RankedCandidates[0].MatchedCount)
	assert.Equal(t, 71, output.RankedCandidates[2].MatchScore)
	assert.Equal(t, 57, output.RankedCandidates[3].MatchScore)
	assert.Equal(t, 1, output.RankedCandidates[3].PartialCount)
	assert.Equal(t, 0, output.RankedCandidates[4].MatchScore)

	loader.AssertNotCalled(t, "LoadCandidate", mock.Anything, mock.Anything)
}

func TestHandler_Execute_LoadsMissingProfiles(t *testing.T) {
	loader := new(MockProfileLoader)
	handler, err := NewHandler(createTestConfig(), loader, logger.NewTestLogger(t))
	require.NoError(t, err)

	loader.On("LoadRequisition", mock.Anything, "req-1").Return(createTestRequisition(), nil)
	loader.On("LoadCandidate", mock.Anything, "cand-1").Return(partialMatch("cand-1"), nil).Once()
	loader.On("LoadCandidate", mock.Anything, "cand-2").Return(fullMatch("cand-2"), nil).Once()
	loader.On("LoadCandidate", mock.Anything, "cand-3").
		Return(nil, fmt.Errorf("%w: cand-3", repository.ErrCandidateNotFound)).Once()

	output, err := handler.Execute(context.Background(), &Input{
		RequisitionID: "req-1",
		CandidateIDs:  []string{"cand-1", "cand-2", "cand-1", "", "cand-3"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"cand-2", "cand-1"}, ids(output.RankedCandidates))
	assert.Equal(t, 2, output.EvaluatedCount)
	assert.Equal(t, 1, output.SkippedCount)
	loader.AssertExpectations(t)
}

func TestHandler_Execute_SearchResults(t *testing.T) {
	loader := new(MockProfileLoader)
	handler, err := NewHandler(createTestConfig(), loader, logger.NewTestLogger(t))
	require.NoError(t, err)

	loader.On("LoadCandidate", mock.Anything, "cand-x").Return(fullMatch("cand-x"), nil)
	loader.On("LoadCandidate", mock.Anything, "cand-y").Return(fullMatch("cand-y"), nil)

	output, err := handler.Execute(context.Background(), &Input{
		Requisition: createTestRequisition(),
		SearchResults: []SearchResult{
			{CandidateID: "cand-x", SearchScore: 1.2},
			{CandidateID: "cand-y", SearchScore: 4.5},
		},
	})
	require.NoError(t, err)

	// equal match scores fall back to the search score
	assert.Equal(t, []string{"cand-y", "cand-x"}, ids(output.RankedCandidates))
	assert.Equal(t, 4.5, output.RankedCandidates[0].SearchScore)
}

func TestHandler_Execute_MinScoreAndLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		minScore int
		maxItems int
		expected []string
	}{
		{
			name:     "min score drops weak candidates",
			minScore: 60,
			expected: []string{"cand-a", "cand-c"},
		},
		{
			name:     "limit truncates after sorting",
			limit:    2,
			expected: []string{"cand-a", "cand-c"},
		},
		{
			name:     "limit above max items is capped",
			limit:    50,
			maxItems: 1,
			expected: []string{"cand-a"},
		},
		{
			name:     "min score above every candidate",
			minScore: 101,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			if tt.maxItems > 0 {
				cfg.MaxItems = tt.maxItems
			}
			handler, err := NewHandler(cfg, new(MockProfileLoader), logger.NewTestLogger(t))
			require.NoError(t, err)

			output, err := handler.Execute(context.Background(), &Input{
				Requisition: createTestRequisition(),
				Profiles: []matching.CandidateProfile{
					*partialMatch("cand-b"), *noEnglish("cand-c"), *fullMatch("cand-a"),
				},
				Limit:    tt.limit,
				MinScore: tt.minScore,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(output.RankedCandidates))
			assert.NotNil(t, output.RankedCandidates)
			assert.Equal(t, 3, output.EvaluatedCount)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name          string
		input         *Input
		setupMock     func(m *MockProfileLoader)
		expectedCode  apperrors.ErrorCode
		expectedBPMN  string
		expectRetries int
	}{
		{
			name:         "no requisition",
			input:        &Input{CandidateIDs: []string{"cand-1"}},
			setupMock:    func(m *MockProfileLoader) {},
			expectedCode: apperrors.ErrCodeMatchInputMissing,
			expectedBPMN: "MATCH_INPUT_MISSING",
		},
		{
			name:  "requisition not found",
			input: &Input{RequisitionID: "req-x"},
			setupMock: func(m *MockProfileLoader) {
				m.On("LoadRequisition", mock.Anything, "req-x").
					Return(nil, fmt.Errorf("%w: req-x", repository.ErrRequisitionNotFound))
			},
			expectedCode: apperrors.ErrCodeRequisitionNotFound,
			expectedBPMN: "REQUISITION_NOT_FOUND",
		},
		{
			name:  "requisition query failure",
			input: &Input{RequisitionID: "req-1"},
			setupMock: func(m *MockProfileLoader) {
				m.On("LoadRequisition", mock.Anything, "req-1").
					Return(nil, fmt.Errorf("%w: connection refused", repository.ErrQueryFailed))
			},
			expectedCode:  apperrors.ErrCodeDatabaseConnectionFailed,
			expectedBPMN:  "DATABASE_CONNECTION_FAILED",
			expectRetries: 3,
		},
		{
			name:  "requisition lookup timeout",
			input: &Input{RequisitionID: "req-slow"},
			setupMock: func(m *MockProfileLoader) {
				m.On("LoadRequisition", mock.Anything, "req-slow").
					Return(nil, fmt.Errorf("%w: requisition lookup: %w", repository.ErrQueryFailed, context.DeadlineExceeded))
			},
			expectedCode:  apperrors.ErrCodeQueryTimeout,
			expectedBPMN:  "DATABASE_CONNECTION_FAILED",
			expectRetries: 2,
		},
		{
			name:         "no candidates",
			input:        &Input{Requisition: createTestRequisition()},
			setupMock:    func(m *MockProfileLoader) {},
			expectedCode: apperrors.ErrCodeMatchInputMissing,
			expectedBPMN: "MATCH_INPUT_MISSING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := new(MockProfileLoader)
			tt.setupMock(loader)
			handler, err := NewHandler(createTestConfig(), loader, logger.NewTestLogger(t))
			require.NoError(t, err)

			out, err := handler.Execute(context.Background(), tt.input)
			assert.Nil(t, out)
			require.Error(t, err)

			stdErr := classify(err, tt.input)
			assert.Equal(t, tt.expectedCode, stdErr.Code)

			bpmnErr := apperrors.ConvertToBPMNError(stdErr)
			assert.Equal(t, tt.expectedBPMN, bpmnErr.Code)
			assert.Equal(t, tt.expectRetries, bpmnErr.Retries)
		})
	}
}

func TestHandler_Execute_ContextCancelled(t *testing.T) {
	loader := new(MockProfileLoader)
	handler, err := NewHandler(createTestConfig(), loader, logger.NewTestLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader.On("LoadCandidate", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	_, err = handler.Execute(ctx, &Input{
		Requisition:  createTestRequisition(),
		CandidateIDs: []string{"cand-1", "cand-2"},
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewHandler_UnknownStrategy(t *testing.T) {
	cfg := createTestConfig()
	cfg.Strategy = "fuzzy"

	_, err := NewHandler(cfg, new(MockProfileLoader), logger.NewTestLogger(t))
	assert.Error(t, err)
}

// ==========================
// Configuration Tests
// ==========================

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(nil)
	assert.Equal(t, 20, cfg.MaxItems)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, matching.StrategyContains, cfg.Strategy)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
