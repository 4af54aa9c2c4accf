// internal/repository/store.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recruitment-workers/internal/common/cache"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/matching"
)

var (
	ErrCandidateNotFound   = errors.New("CANDIDATE_NOT_FOUND")
	ErrRequisitionNotFound = errors.New("REQUISITION_NOT_FOUND")
	ErrQueryFailed         = errors.New("QUERY_EXECUTION_FAILED")
)

const (
	candidateKeyPrefix   = "candidate:profile:"
	requisitionKeyPrefix = "requisition:"
)

// Store loads candidate profiles and requisitions from Postgres, reading
// through the Redis cache when one is configured.
type Store struct {
	db     *sql.DB
	cache  *cache.Cache
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(db *sql.DB, c *cache.Cache, ttl time.Duration, log logger.Logger) *Store {
	return &Store{db: db, cache: c, ttl: ttl, logger: log}
}

func CandidateCacheKey(id string) string {
	return candidateKeyPrefix + id
}

func RequisitionCacheKey(id string) string {
	return requisitionKeyPrefix + id
}

func (s *Store) LoadCandidate(ctx context.Context, id string) (*matching.CandidateProfile, error) {
	key := CandidateCacheKey(id)

	var cached matching.CandidateProfile
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM candidates WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, queryError(ctx, "candidate lookup", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
	}

	profile := &matching.CandidateProfile{ID: id}
	var err error

	if profile.Education, err = s.loadEducation(ctx, id); err != nil {
		return nil, err
	}
	if profile.Languages, err = s.loadLanguages(ctx, id); err != nil {
		return nil, err
	}
	if profile.Skills, err = s.loadSkills(ctx, id); err != nil {
		return nil, err
	}

	s.writeCache(ctx, key, profile)
	return profile, nil
}

func (s *Store) loadEducation(ctx context.Context, id string) ([]matching.Education, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT degree, field_of_study, institution, start_date, end_date
		FROM candidate_education
		WHERE candidate_id = $1
		ORDER BY sort_order`, id)
	if err != nil {
		return nil, queryError(ctx, "education", err)
	}
	defer rows.Close()

	var out []matching.Education
	for rows.Next() {
		var degree, field, institution, start, end sql.NullString
		if err := rows.Scan(&degree, &field, &institution, &start, &end); err != nil {
			return nil, queryError(ctx, "scan education", err)
		}
		out = append(out, matching.Education{
			Degree:       degree.String,
			FieldOfStudy: field.String,
			Institution:  institution.String,
			StartDate:    start.String,
			EndDate:      end.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "education rows", err)
	}
	return out, nil
}

func (s *Store) loadLanguages(ctx context.Context, id string) ([]matching.Language, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT language, proficiency
		FROM candidate_languages
		WHERE candidate_id = $1
		ORDER BY sort_order`, id)
	if err != nil {
		return nil, queryError(ctx, "languages", err)
	}
	defer rows.Close()

	var out []matching.Language
	for rows.Next() {
		var language, proficiency sql.NullString
		if err := rows.Scan(&language, &proficiency); err != nil {
			return nil, queryError(ctx, "scan language", err)
		}
		out = append(out, matching.Language{
			Language:    language.String,
			Proficiency: matching.Proficiency(proficiency.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "language rows", err)
	}
	return out, nil
}

func (s *Store) loadSkills(ctx context.Context, id string) ([]matching.Skill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT skill_name, level
		FROM candidate_skills
		WHERE candidate_id = $1
		ORDER BY sort_order`, id)
	if err != nil {
		return nil, queryError(ctx, "skills", err)
	}
	defer rows.Close()

	var out []matching.Skill
	for rows.Next() {
		var name, level sql.NullString
		if err := rows.Scan(&name, &level); err != nil {
			return nil, queryError(ctx, "scan skill", err)
		}
		out = append(out, matching.Skill{
			SkillName: name.String,
			Level:     matching.SkillLevel(level.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "skill rows", err)
	}
	return out, nil
}

func (s *Store) LoadRequisition(ctx context.Context, id string) (*matching.Requisition, error) {
	key := RequisitionCacheKey(id)

	var cached matching.Requisition
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	var (
		req          matching.Requisition
		titulo       sql.NullString
		recruiterID  sql.NullString
		academic     []byte
		english      sql.NullBool
		computerJSON []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, titulo, recruiter_id, formacion_academica, idioma_ingles, habilidad_informatica
		FROM job_requisitions WHERE id = $1`, id).
		Scan(&req.ID, &titulo, &recruiterID, &academic, &english, &computerJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRequisitionNotFound, id)
	}
	if err != nil {
		return nil, queryError(ctx, "requisition lookup", err)
	}

	req.Titulo = titulo.String
	req.RecruiterID = recruiterID.String
	if english.Valid {
		v := english.Bool
		req.IdiomaIngles = &v
	}
	if len(academic) > 0 {
		if err := json.Unmarshal(academic, &req.FormacionAcademica); err != nil {
			return nil, queryError(ctx, "decode formacion_academica", err)
		}
	}
	if len(computerJSON) > 0 {
		var skills matching.ComputerSkills
		if err := json.Unmarshal(computerJSON, &skills); err != nil {
			return nil, queryError(ctx, "decode habilidad_informatica", err)
		}
		req.HabilidadInformatica = &skills
	}

	s.writeCache(ctx, key, &req)
	return &req, nil
}

// queryError wraps a failed query as ErrQueryFailed. When the context has
// expired its error joins the chain, since drivers report cancellation with
// their own error values.
func queryError(ctx context.Context, what string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %s: %w", ErrQueryFailed, what, errors.Join(err, ctxErr))
	}
	return fmt.Errorf("%w: %s: %w", ErrQueryFailed, what, err)
}

// InvalidateCandidate drops the cached profile so the next load hits the
// database.
func (s *Store) InvalidateCandidate(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, CandidateCacheKey(id))
}

func (s *Store) readCache(ctx context.Context, key string, dest interface{}) bool {
	err := s.cache.GetJSON(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrNotFound) {
		s.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
	}
	return false
}

func (s *Store) writeCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
