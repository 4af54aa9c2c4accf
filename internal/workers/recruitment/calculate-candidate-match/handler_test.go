// internal/workers/recruitment/calculate-candidate-match/handler_test.go
package calculatecandidatematch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"recruitment-workers/internal/common/cache"
	apperrors "recruitment-workers/internal/common/errors"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/matching"
	"recruitment-workers/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
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
	return &Config{Strategy: matching.StrategyContains, Timeout: 5 * time.Second}
}

func createTestCandidate() *matching.CandidateProfile {
	return &matching.CandidateProfile{
		ID:        "cand-1",
		Education: []matching.Education{{Degree: "Licenciatura en Contaduría"}},
		Languages: []matching.Language{{Language: "Inglés", Proficiency: matching.ProficiencyIntermediate}},
		Skills:    []matching.Skill{{SkillName: "Excel", Level: matching.SkillLevelAdvanced}},
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

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_InlineProfiles(t *testing.T) {
	tests := []struct {
		name           string
		strategy       string
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:     "default contains strategy",
			strategy: "",
			validateOutput: func(t *testing.T, output *Output) {
				// 10 + 5 + 5 + 0 of 35
				assert.Equal(t, 57, output.MatchScore)
				assert.Equal(t, 20, output.EarnedPoints)
				assert.Equal(t, 35, output.TotalPoints)
				assert.Equal(t, 2, output.MatchedCount)
				assert.Equal(t, 1, output.PartialCount)
				assert.Equal(t, 1, output.MissingCount)
				assert.Equal(t, matching.StrategyContains, output.MatchStrategy)
			},
		},
		{
			name:     "exact strategy drops the degree substring match",
			strategy: "EXACT",
			validateOutput: func(t *testing.T, output *Output) {
				// 0 + 5 + 5 + 0 of 35
				assert.Equal(t, 29, output.MatchScore)
				assert.Equal(t, 2, output.MissingCount)
				assert.Equal(t, matching.StrategyExact, output.MatchStrategy)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := new(MockProfileLoader)
			handler, err := NewHandler(createTestConfig(), loader, logger.NewTestLogger(t))
			require.NoError(t, err)

			output, err := handler.Execute(context.Background(), &Input{
				Candidate:     createTestCandidate(),
				Requisition:   createTestRequisition(),
				MatchStrategy: tt.strategy,
			})
			require.NoError(t, err)
			tt.validateOutput(t, output)
			require.Len(t, output.Matches, 4)
			assert.Equal(t, matching.CategoryEducation, output.Matches[0].Category)
			loader.AssertNotCalled(t, "LoadCandidate", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Execute_NoRequirements(t *testing.T) {
	handler, err := NewHandler(createTestConfig(), new(MockProfileLoader), logger.NewTestLogger(t))
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{
		Candidate:   createTestCandidate(),
		Requisition: &matching.Requisition{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, output.MatchScore)
	assert.Equal(t, 0, output.TotalPoints)
	assert.NotNil(t, output.Matches)
	assert.Empty(t, output.Matches)
}

func TestHandler_Execute_LoadsFromRepository(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := logger.NewTestLogger(t)
	store := repository.NewStore(db, cache.New(rdb, time.Minute), time.Minute, log)

	sqlMock.ExpectQuery(`SELECT EXISTS`).WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	sqlMock.ExpectQuery(`FROM candidate_education`).WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"degree", "field_of_study", "institution", "start_date", "end_date"}).
			AddRow("Maestría en Finanzas", nil, nil, nil, nil))
	sqlMock.ExpectQuery(`FROM candidate_languages`).WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"language", "proficiency"}).AddRow("English", "native"))
	sqlMock.ExpectQuery(`FROM candidate_skills`).WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"skill_name", "level"}))
	sqlMock.ExpectQuery(`FROM job_requisitions`).WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "titulo", "recruiter_id", "formacion_academica", "idioma_ingles", "habilidad_informatica",
		}).AddRow("req-1", "Analista", "rec-1", []byte(`{"maestria": true}`), true, nil))

	handler, err := NewHandler(createTestConfig(), store, log)
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{CandidateID: "cand-1", RequisitionID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, 100, output.MatchScore)
	assert.Equal(t, 2, output.MatchedCount)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		setupMock func(m *MockProfileLoader)
		wantErr   error
		wantCode  apperrors.ErrorCode
		wantBPMN  string
		wantRetry int
	}{
		{
			name:     "nothing to score",
			input:    &Input{},
			wantErr:  ErrMatchInputMissing,
			wantCode: apperrors.ErrCodeMatchInputMissing,
			wantBPMN: "MATCH_INPUT_MISSING",
		},
		{
			name:     "unknown strategy",
			input:    &Input{Candidate: createTestCandidate(), Requisition: createTestRequisition(), MatchStrategy: "fuzzy"},
			wantErr:  ErrInvalidMatchStrategy,
			wantCode: apperrors.ErrCodeInvalidMatchStrategy,
			wantBPMN: "INVALID_MATCH_STRATEGY",
		},
		{
			name:  "candidate not found",
			input: &Input{CandidateID: "ghost", Requisition: createTestRequisition()},
			setupMock: func(m *MockProfileLoader) {
				m.On("LoadCandidate", mock.Anything, "ghost").
					Return(nil, fmt.Errorf("%w: ghost", repository.ErrCandidateNotFound))
			},
			wantErr:  repository.ErrCandidateNotFound,
			wantCode: apperrors.ErrCodeCandidateNotFound,
			wantBPMN: "CANDIDATE_NOT_FOUND",
		},
		{
			name:  "requisition not found",
			input: &Input{Candidate: createTestCandidate(), RequisitionID: "req-404"},
			setupMock: func(m *MockProfileLoader) {
				m.On("LoadRequisition", mock.Anything, "req-404").
					Return(nil, fmt.Errorf("%w: req-404", repository.ErrRequisitionNotFound))
			},
			wantErr:  repository.ErrRequisitionNotFound,
			wantCode: apperrors.ErrCodeRequisitionNotFound,
			wantBPMN: "REQUISITION_NOT_FOUND",
		},
		{
			name:  "database failure is retried",
			input: &Input{CandidateID: "cand-1", Requisition: createTestRequisition()},
			setupMock: func(m *MockProfileLoader) {
				m.On("LoadCandidate", mock.Anything, "cand-1").
					Return(nil, fmt.Errorf("%w: connection refused", repository.ErrQueryFailed))
			},
			wantErr:   repository.ErrQueryFailed,
			wantCode:  apperrors.ErrCodeDatabaseConnectionFailed,
			wantBPMN:  "DATABASE_CONNECTION_FAILED",
			wantRetry: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := new(MockProfileLoader)
			if tt.setupMock != nil {
				tt.setupMock(loader)
			}
			handler, err := NewHandler(createTestConfig(), loader, logger.NewTestLogger(t))
			require.NoError(t, err)

			_, err = handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			stdErr := classify(err, tt.input)
			assert.Equal(t, tt.wantCode, stdErr.Code)

			bpmnErr := apperrors.ConvertToBPMNError(stdErr)
			assert.Equal(t, tt.wantBPMN, bpmnErr.Code)
			assert.Equal(t, tt.wantRetry, bpmnErr.Retries)
			loader.AssertExpectations(t)
		})
	}
}

func TestNewHandler_RejectsUnknownDefaultStrategy(t *testing.T) {
	for _, strategy := range []string{"fuzzy", ""} {
		cfg := createTestConfig()
		cfg.Strategy = strategy

		handler, err := NewHandler(cfg, new(MockProfileLoader), logger.NewTestLogger(t))
		assert.Nil(t, handler)
		assert.ErrorIs(t, err, ErrInvalidMatchStrategy)
	}
}

func TestNewHandler_ExactDefaultStrategy(t *testing.T) {
	cfg := createTestConfig()
	cfg.Strategy = matching.StrategyExact

	handler, err := NewHandler(cfg, new(MockProfileLoader), logger.NewTestLogger(t))
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{
		Candidate:   createTestCandidate(),
		Requisition: createTestRequisition(),
	})
	require.NoError(t, err)
	assert.Equal(t, matching.StrategyExact, output.MatchStrategy)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(nil)
	assert.Equal(t, matching.StrategyContains, cfg.Strategy)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}
