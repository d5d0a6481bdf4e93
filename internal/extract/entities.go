// Package extract turns claims and evidence pages into structured text.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/sportcheck/internal/jsonx"
	"github.com/ppiankov/sportcheck/internal/llm"
	"github.com/ppiankov/sportcheck/internal/model"
	"github.com/ppiankov/sportcheck/internal/resilience"
	"github.com/ppiankov/sportcheck/internal/util"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// EntitySystemPrompt frames the extraction task for the language model
const EntitySystemPrompt = `You are an expert sports fact-checking assistant. Analyze the sports claim you are given and extract structured information about it.

Return a JSON object with exactly these fields:
- subject: the main subject of the claim (e.g., player, team)
- event: the specific event being claimed (e.g., match, final, transfer)
- date: the date of the event (YYYY-MM-DD when known, otherwise as stated)
- player_or_team: the player or team involved in the claim
- league_or_tournament: the league or tournament associated with the event
- location: the location of the event (e.g., stadium, city)

Use this exact format:
{
  "subject": "...",
  "event": "...",
  "date": "...",
  "player_or_team": "...",
  "league_or_tournament": "...",
  "location": "..."
}

Keep values clear and concise. If any field is not mentioned or unclear, set it to null.`

// EntityExtractor parses a claim into ParsedEntities with a language model
type EntityExtractor struct {
	provider  llm.Provider
	model     string
	maxTokens int
	policy    resilience.Policy
}

// NewEntityExtractor creates an extractor. An empty model uses the provider default.
func NewEntityExtractor(provider llm.Provider, model string, timeout time.Duration) *EntityExtractor {
	return &EntityExtractor{
		provider:  provider,
		model:     model,
		maxTokens: 512,
		policy:    resilience.DefaultPolicy(timeout),
	}
}

// Extract calls the model once (one retry on transient failure) and parses its answer.
// Model failures are tagged KindDependencyUnavailable; unusable output KindBadInput.
func (e *EntityExtractor) Extract(ctx context.Context, claim string) (*model.ParsedEntities, error) {
	resp, err := resilience.Call(ctx, e.policy, "extract entities", func(ctx context.Context) (*llm.GenerateResponse, error) {
		return e.provider.Generate(ctx, llm.GenerateRequest{
			System:    EntitySystemPrompt,
			Prompt:    claim,
			Model:     e.model,
			MaxTokens: e.maxTokens,
			JSON:      true,
		})
	})
	if err != nil {
		zap.L().Warn("entity extraction failed", zap.String("claim", claim), zap.Error(err))
		return nil, err
	}

	entities, err := ParseEntities(resp.Text)
	if err != nil {
		zap.L().Warn("entity extraction returned unusable output",
			zap.String("claim", claim),
			zap.String("raw", util.Truncate(resp.Text, 500)),
			zap.Error(err),
		)
		return nil, resilience.Wrap(resilience.KindBadInput, "extract entities", err)
	}

	zap.L().Info("parsed claim entities", zap.String("claim", claim), zap.Any("entities", entities))
	return entities, nil
}

// ParseEntities decodes a model response into ParsedEntities.
// The response must contain a JSON object; a top-level array or scalar is rejected.
func ParseEntities(raw string) (*model.ParsedEntities, error) {
	var fields map[string]any
	if err := jsonx.DecodeObject(raw, &fields); err != nil {
		return nil, eris.Wrap(err, "parse entities")
	}
	if fields == nil {
		return nil, eris.New("parse entities: null object")
	}

	return &model.ParsedEntities{
		Subject:            field(fields, "subject"),
		Event:              field(fields, "event"),
		Date:               field(fields, "date"),
		PlayerOrTeam:       field(fields, "player_or_team"),
		LeagueOrTournament: field(fields, "league_or_tournament"),
		Location:           field(fields, "location"),
	}, nil
}

// field coerces a decoded JSON value to an optional string.
// Numbers and booleans keep their text form; objects, arrays and null become nil.
func field(fields map[string]any, key string) *string {
	switch v := fields[key].(type) {
	case string:
		return &v
	case float64, bool:
		s := fmt.Sprint(v)
		return &s
	default:
		return nil
	}
}
