// internal/repository/store_test.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"recruitment-workers/internal/common/cache"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/matching"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupStore(t *testing.T) (*Store, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := NewStore(db, cache.New(rdb, time.Minute), 5*time.Minute, logger.NewTestLogger(t))
	return store, mock, mr
}

func expectCandidateRows(mock sqlmock.Sqlmock, id string) {
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM candidates WHERE id = \$1\)`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(`FROM candidate_education`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"degree", "field_of_study", "institution", "start_date", "end_date"}).
			AddRow("Licenciatura en Administración", "Administración", "UNAM", "2015-08-01", nil).
			AddRow("Maestría en Finanzas", nil, nil, nil, nil))

	mock.ExpectQuery(`FROM candidate_languages`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"language", "proficiency"}).
			AddRow("Inglés", "avanzado"))

	mock.ExpectQuery(`FROM candidate_skills`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"skill_name", "level"}).
			AddRow("Excel", "expert").
			AddRow("SAP", nil))
}

// ==========================
// Candidate Tests
// ==========================

func TestStore_LoadCandidate_FromDatabaseThenCache(t *testing.T) {
	store, mock, mr := setupStore(t)
	ctx := context.Background()

	expectCandidateRows(mock, "cand-1")

	profile, err := store.LoadCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, "cand-1", profile.ID)
	require.Len(t, profile.Education, 2)
	assert.Equal(t, "UNAM", profile.Education[0].Institution)
	assert.Empty(t, profile.Education[1].FieldOfStudy)
	assert.Equal(t, matching.Proficiency("avanzado"), profile.Languages[0].Proficiency)
	assert.Equal(t, matching.SkillLevel(""), profile.Skills[1].Level)

	assert.True(t, mr.Exists(CandidateCacheKey("cand-1")))
	assert.Equal(t, 5*time.Minute, mr.TTL(CandidateCacheKey("cand-1")))

	// second load is served from redis, no further queries expected
	cached, err := store.LoadCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, profile, cached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadCandidate_NotFound(t *testing.T) {
	store, mock, _ := setupStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := store.LoadCandidate(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrCandidateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadCandidate_QueryFailure(t *testing.T) {
	store, mock, _ := setupStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM candidate_education`).
		WithArgs("cand-1").
		WillReturnError(errors.New("connection reset by peer"))

	_, err := store.LoadCandidate(context.Background(), "cand-1")
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.ErrorContains(t, err, "connection reset")
}

func TestStore_LoadCandidate_CacheDown(t *testing.T) {
	store, mock, mr := setupStore(t)
	mr.Close()

	expectCandidateRows(mock, "cand-2")

	profile, err := store.LoadCandidate(context.Background(), "cand-2")
	require.NoError(t, err)
	assert.Len(t, profile.Skills, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InvalidateCandidate(t *testing.T) {
	store, mock, mr := setupStore(t)
	ctx := context.Background()

	expectCandidateRows(mock, "cand-1")
	_, err := store.LoadCandidate(ctx, "cand-1")
	require.NoError(t, err)

	require.NoError(t, store.InvalidateCandidate(ctx, "cand-1"))
	assert.False(t, mr.Exists(CandidateCacheKey("cand-1")))

	expectCandidateRows(mock, "cand-1")
	_, err = store.LoadCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Requisition Tests
// ==========================

func TestStore_LoadRequisition(t *testing.T) {
	store, mock, mr := setupStore(t)
	ctx := context.Background()

	mock.ExpectQuery(`FROM job_requisitions WHERE id = \$1`).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "titulo", "recruiter_id", "formacion_academica", "idioma_ingles", "habilidad_informatica",
		}).AddRow(
			"req-1", "Analista Financiero", "rec-9",
			[]byte(`{"licenciatura": true, "maestria": false, "detalles": "Finanzas"}`),
			true,
			[]byte(`{"excel": "avanzado", "software_especifico": [{"nombre": "SAP"}]}`),
		))

	req, err := store.LoadRequisition(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "Analista Financiero", req.Titulo)
	assert.Equal(t, "rec-9", req.RecruiterID)
	assert.True(t, req.EnglishRequired())
	assert.Equal(t, []string{"licenciatura"}, req.FormacionAcademica.RequiredLevels())
	assert.Equal(t, "Finanzas", req.FormacionAcademica.Details)
	assert.Equal(t, []string{"SAP"}, req.HabilidadInformatica.Software())
	assert.True(t, mr.Exists(RequisitionCacheKey("req-1")))

	cached, err := store.LoadRequisition(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, req.FormacionAcademica.RequiredLevels(), cached.FormacionAcademica.RequiredLevels())
	assert.Equal(t, req.HabilidadInformatica.Software(), cached.HabilidadInformatica.Software())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadRequisition_NullColumns(t *testing.T) {
	store, mock, _ := setupStore(t)

	mock.ExpectQuery(`FROM job_requisitions`).
		WithArgs("req-2").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "titulo", "recruiter_id", "formacion_academica", "idioma_ingles", "habilidad_informatica",
		}).AddRow("req-2", nil, nil, nil, nil, nil))

	req, err := store.LoadRequisition(context.Background(), "req-2")
	require.NoError(t, err)
	assert.Nil(t, req.IdiomaIngles)
	assert.Nil(t, req.HabilidadInformatica)
	assert.False(t, req.HasRequirements())
}

func TestStore_LoadRequisition_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM job_requisitions`).WithArgs("req-x").WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrRequisitionNotFound,
		},
		{
			name: "query failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM job_requisitions`).WithArgs("req-x").WillReturnError(errors.New("timeout"))
			},
			wantErr: ErrQueryFailed,
		},
		{
			name: "corrupt jsonb",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM job_requisitions`).WithArgs("req-x").
					WillReturnRows(sqlmock.NewRows([]string{
						"id", "titulo", "recruiter_id", "formacion_academica", "idioma_ingles", "habilidad_informatica",
					}).AddRow("req-x", "t", nil, []byte(`[1,2]`), nil, nil))
			},
			wantErr: ErrQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock, _ := setupStore(t)
			tt.setup(mock)

			_, err := store.LoadRequisition(context.Background(), "req-x")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStore_LoadRequisition_Timeout(t *testing.T) {
	store, mock, _ := setupStore(t)

	mock.ExpectQuery(`FROM job_requisitions`).
		WithArgs("req-slow").
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "titulo", "recruiter_id", "formacion_academica", "idioma_ingles", "habilidad_informatica",
		}).AddRow("req-slow", "t", nil, nil, nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := store.LoadRequisition(ctx, "req-slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_LoadCandidate_KeepsDriverError(t *testing.T) {
	store, mock, _ := setupStore(t)
	driverErr := errors.New("connection reset by peer")

	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("cand-1").WillReturnError(driverErr)

	_, err := store.LoadCandidate(context.Background(), "cand-1")
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.ErrorIs(t, err, driverErr)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}
