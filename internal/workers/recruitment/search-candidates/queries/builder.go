// internal/workers/recruitment/search-candidates/queries/builder.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"recruitment-workers/internal/matching"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrMissingIndex = errors.New("index name is required")
)

const (
	DefaultSize = 20
	MaxSize     = 100

	FieldDegree   = "education.degree"
	FieldLanguage = "languages.language"
	FieldSkill    = "skills.skill_name"
)

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

// Normalize clamps size to 1..MaxSize, defaulting to DefaultSize, and
// floors from at zero.
func (p Pagination) Normalize() Pagination {
	if p.From < 0 {
		p.From = 0
	}
	switch {
	case p.Size < 1:
		p.Size = DefaultSize
	case p.Size > MaxSize:
		p.Size = MaxSize
	}
	return p
}

// BuildCandidateQuery turns a requisition into a bool query with one should
// clause per searchable requirement. A requisition with no requirements
// matches every candidate.
func BuildCandidateQuery(req *matching.Requisition) map[string]interface{} {
	var should []interface{}

	if req != nil {
		for _, level := range req.FormacionAcademica.RequiredLevels() {
			for _, term := range matching.EducationSynonyms(level) {
				should = append(should, matchClause(FieldDegree, term))
			}
		}

		if req.EnglishRequired() {
			for _, name := range matching.EnglishLanguageNames() {
				should = append(should, matchClause(FieldLanguage, name))
			}
		}

		for _, tool := range matching.OfficeTools {
			if _, ok := req.HabilidadInformatica.RequiredLevel(tool.Key); ok {
				should = append(should, matchClause(FieldSkill, tool.Label))
			}
		}
		for _, name := range req.HabilidadInformatica.Software() {
			should = append(should, matchClause(FieldSkill, name))
		}
	}

	if len(should) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
	}
}

func matchClause(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"match": map[string]interface{}{
			field: map[string]interface{}{"query": value},
		},
	}
}

// NewSearchRequest builds the esapi request for a candidate search.
func NewSearchRequest(index string, req *matching.Requisition, page Pagination) (*esapi.SearchRequest, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}

	body, err := json.Marshal(BuildCandidateQuery(req))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	page = page.Normalize()
	return &esapi.SearchRequest{
		Index:          []string{index},
		Body:           bytes.NewReader(body),
		From:           &page.From,
		Size:           &page.Size,
		TrackTotalHits: true,
	}, nil
}
