// internal/matching/requisition.go
package matching

import (
	"encoding/json"
	"sort"
	"strings"
)

const (
	academicDetailsKey = "detalles"
	academicOtherKey   = "otro"
)

// AcademicRequirements holds the formacion_academica block of a requisition.
// Level keys map to "is required"; detalles and otro are free-text metadata
// and never count as levels.
type AcademicRequirements struct {
	Levels  map[string]bool
	Details string
	Other   string
}

func (a *AcademicRequirements) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*a = AcademicRequirements{}
		return nil
	}

	out := AcademicRequirements{Levels: make(map[string]bool, len(raw))}
	for key, value := range raw {
		switch normalizeLevelKey(key) {
		case academicDetailsKey:
			out.Details = decodeLooseString(value)
			continue
		case academicOtherKey:
			out.Other = decodeLooseString(value)
			continue
		}

		var required bool
		if err := json.Unmarshal(value, &required); err != nil {
			// non-boolean level values are treated as not required
			required = false
		}
		out.Levels[key] = required
	}

	*a = out
	return nil
}

func (a AcademicRequirements) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(a.Levels)+2)
	for key, required := range a.Levels {
		out[key] = required
	}
	if a.Details != "" {
		out[academicDetailsKey] = a.Details
	}
	if a.Other != "" {
		out[academicOtherKey] = a.Other
	}
	return json.Marshal(out)
}

// RequiredLevels returns the truthy level keys in canonical order: known
// levels first, then any other keys sorted alphabetically.
func (a AcademicRequirements) RequiredLevels() []string {
	byLevel := make(map[string][]string)
	var other []string

	for key, required := range a.Levels {
		if !required {
			continue
		}
		level := normalizeLevelKey(key)
		switch {
		case level == academicDetailsKey || level == academicOtherKey:
			continue
		case isCanonicalLevel(level):
			byLevel[level] = append(byLevel[level], key)
		default:
			other = append(other, key)
		}
	}

	var out []string
	for _, level := range canonicalLevelOrder {
		keys := byLevel[level]
		sort.Strings(keys)
		out = append(out, keys...)
	}
	sort.Strings(other)

	return append(out, other...)
}

type SoftwareRequirement struct {
	Nombre string `json:"nombre"`
}

// ComputerSkills is the habilidad_informatica block. A nil or blank tool
// level means the tool is not required.
type ComputerSkills struct {
	Word               *string               `json:"word,omitempty"`
	Excel              *string               `json:"excel,omitempty"`
	PowerPoint         *string               `json:"powerpoint,omitempty"`
	Outlook            *string               `json:"outlook,omitempty"`
	SoftwareEspecifico []SoftwareRequirement `json:"software_especifico,omitempty"`
}

type OfficeTool struct {
	Key   string
	Label string
}

var OfficeTools = []OfficeTool{
	{Key: "word", Label: "Word"},
	{Key: "excel", Label: "Excel"},
	{Key: "powerpoint", Label: "PowerPoint"},
	{Key: "outlook", Label: "Outlook"},
}

// RequiredLevel returns the level required for an office tool and whether
// the tool is required at all.
func (c *ComputerSkills) RequiredLevel(tool string) (string, bool) {
	if c == nil {
		return "", false
	}

	var level *string
	switch strings.ToLower(tool) {
	case "word":
		level = c.Word
	case "excel":
		level = c.Excel
	case "powerpoint":
		level = c.PowerPoint
	case "outlook":
		level = c.Outlook
	}
	if level == nil || strings.TrimSpace(*level) == "" {
		return "", false
	}
	return *level, true
}

// Software returns the named software requirements, skipping blank names.
func (c *ComputerSkills) Software() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.SoftwareEspecifico))
	for _, s := range c.SoftwareEspecifico {
		if name := strings.TrimSpace(s.Nombre); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Requisition is a job opening's required qualifications.
type Requisition struct {
	ID                   string               `json:"id,omitempty"`
	Titulo               string               `json:"titulo,omitempty"`
	RecruiterID          string               `json:"recruiter_id,omitempty"`
	FormacionAcademica   AcademicRequirements `json:"formacion_academica"`
	IdiomaIngles         *bool                `json:"idioma_ingles,omitempty"`
	HabilidadInformatica *ComputerSkills      `json:"habilidad_informatica,omitempty"`
}

func (r *Requisition) EnglishRequired() bool {
	return r.IdiomaIngles != nil && *r.IdiomaIngles
}

// HasRequirements reports whether any category would contribute points.
func (r *Requisition) HasRequirements() bool {
	if len(r.FormacionAcademica.RequiredLevels()) > 0 || r.EnglishRequired() {
		return true
	}
	for _, tool := range OfficeTools {
		if _, ok := r.HabilidadInformatica.RequiredLevel(tool.Key); ok {
			return true
		}
	}
	return len(r.HabilidadInformatica.Software()) > 0
}

func decodeLooseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
