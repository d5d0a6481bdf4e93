package model

import "strings"

// Claim is the natural-language sports assertion submitted for verification
type Claim struct {
	Text string `json:"claim"`
}

// Normalize trims surrounding whitespace from the claim text
func (c Claim) Normalize() Claim {
	return Claim{Text: strings.TrimSpace(c.Text)}
}

// IsEmpty reports whether the claim has no usable text
func (c Claim) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// ParsedEntities holds the structured fields extracted from a claim.
// A nil field means the model did not find it; it is serialized as null.
type ParsedEntities struct {
	Subject            *string `json:"subject"`              // Main subject of the claim
	Event              *string `json:"event"`                // Match, final, transfer, record...
	Date               *string `json:"date"`                 // Date or season as written by the model
	PlayerOrTeam       *string `json:"player_or_team"`       // Player or team named in the claim
	LeagueOrTournament *string `json:"league_or_tournament"` // Competition the claim refers to
	Location           *string `json:"location"`             // Venue, city or country
}

// HasAny reports whether at least one field carries a non-blank value
func (e ParsedEntities) HasAny() bool {
	for _, v := range e.fields() {
		if present(v) {
			return true
		}
	}
	return false
}

// QueryTerms returns the non-blank query-relevant fields in search priority
// order: player_or_team, event, league_or_tournament, date.
// Subject and location never take part in the query.
func (e ParsedEntities) QueryTerms() []string {
	var terms []string
	for _, v := range []*string{e.PlayerOrTeam, e.Event, e.LeagueOrTournament, e.Date} {
		if present(v) {
			terms = append(terms, strings.TrimSpace(*v))
		}
	}
	return terms
}

func (e ParsedEntities) fields() []*string {
	return []*string{e.Subject, e.Event, e.Date, e.PlayerOrTeam, e.LeagueOrTournament, e.Location}
}

func present(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
