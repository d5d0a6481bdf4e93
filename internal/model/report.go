package model

import "strings"

// VerdictValue is the closed three-valued outcome of a fact check
type VerdictValue string

const (
	VerdictTrue    VerdictValue = "True"
	VerdictFalse   VerdictValue = "False"
	VerdictUnclear VerdictValue = "Unclear"
)

// ParseVerdictValue maps s onto one of the three verdict values.
// Matching ignores case and surrounding whitespace; anything else is rejected.
func ParseVerdictValue(s string) (VerdictValue, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return VerdictTrue, true
	case "false":
		return VerdictFalse, true
	case "unclear":
		return VerdictUnclear, true
	default:
		return "", false
	}
}

// Verdict is the outcome of verdict synthesis
type Verdict struct {
	Verdict       VerdictValue `json:"verdict"`
	Justification string       `json:"justification"`
	EvidenceUsed  []string     `json:"evidence_used"`
}

// FactCheckResponse is returned to callers for a verified claim
type FactCheckResponse struct {
	Verdict        VerdictValue   `json:"verdict"`
	Justification  string         `json:"justification"`
	EvidenceUsed   []string       `json:"evidence_used"`
	ParsedEntities ParsedEntities `json:"parsed_entities"`
}

// NewFactCheckResponse combines a verdict with the entities it was derived from
func NewFactCheckResponse(v Verdict, entities ParsedEntities) *FactCheckResponse {
	used := v.EvidenceUsed
	if used == nil {
		used = []string{}
	}
	return &FactCheckResponse{
		Verdict:        v.Verdict,
		Justification:  v.Justification,
		EvidenceUsed:   used,
		ParsedEntities: entities,
	}
}
