// Package validate asks a language model for a verdict on a claim given
// summarized evidence.
package validate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/sportcheck/internal/jsonx"
	"github.com/ppiankov/sportcheck/internal/llm"
	"github.com/ppiankov/sportcheck/internal/metrics"
	"github.com/ppiankov/sportcheck/internal/model"
	"github.com/ppiankov/sportcheck/internal/resilience"
	"github.com/ppiankov/sportcheck/internal/util"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FallbackJustification accompanies every Unclear verdict produced without a model answer
const FallbackJustification = "Unable to verify the claim from the available evidence."

// SystemPrompt frames the verdict task
const SystemPrompt = "You are a factual reasoning assistant that verifies sports-related claims based on real-world evidence."

// Validator synthesizes a verdict from a claim and its evidence summaries
type Validator struct {
	provider  llm.Provider
	model     string
	maxTokens int
	policy    resilience.Policy
}

// NewValidator creates a validator. An empty model uses the provider default.
func NewValidator(provider llm.Provider, model string, maxTokens int, timeout time.Duration) *Validator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Validator{
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
		policy:    resilience.DefaultPolicy(timeout),
	}
}

// Validate never fails: model errors and unusable answers produce an Unclear
// verdict citing links
func (v *Validator) Validate(ctx context.Context, claim string, summaries, links []string) model.Verdict {
	resp, err := resilience.Call(ctx, v.policy, "validate claim", func(ctx context.Context) (*llm.GenerateResponse, error) {
		return v.provider.Generate(ctx, llm.GenerateRequest{
			System:    SystemPrompt,
			Prompt:    BuildPrompt(claim, summaries, links),
			Model:     v.model,
			MaxTokens: v.maxTokens,
			JSON:      true,
		})
	})
	if err != nil {
		zap.L().Warn("verdict model call failed", zap.String("claim", claim), zap.Error(err))
		return fallback(links)
	}

	verdict, err := ParseVerdict(resp.Text, links)
	if err != nil {
		zap.L().Warn("verdict response unusable",
			zap.String("claim", claim),
			zap.String("raw", util.Truncate(resp.Text, 500)),
			zap.Error(err),
		)
		return fallback(links)
	}

	metrics.RecordVerdict(string(verdict.Verdict), false)
	zap.L().Info("verdict synthesized", zap.String("claim", claim), zap.String("verdict", string(verdict.Verdict)))
	return verdict
}

// BuildPrompt renders the verdict prompt
func BuildPrompt(claim string, summaries, links []string) string {
	bullets := make([]string, 0, len(summaries))
	for _, s := range summaries {
		bullets = append(bullets, "- "+s)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CLAIM:\n%q\n\n", claim)
	fmt.Fprintf(&b, "EVIDENCE:\n%s\n\n", strings.Join(bullets, "\n\n"))
	b.WriteString("Evaluate whether the claim is factually correct based on the evidence.\n\n")
	b.WriteString("Respond in the following JSON format:\n")
	b.WriteString("{\n")
	b.WriteString(`  "verdict": "True" | "False" | "Unclear",` + "\n")
	b.WriteString(`  "justification": "Explain your reasoning in 2-3 sentences.",` + "\n")
	b.WriteString(`  "evidence_used": [list of the source links you relied on]` + "\n")
	b.WriteString("}\n\n")
	b.WriteString("Source links:\n")
	for _, l := range links {
		b.WriteString(l + "\n")
	}
	b.WriteString("\nOnly use the evidence provided. Do not assume anything outside of it.")
	return b.String()
}

type verdictResponse struct {
	Verdict       string    `json:"verdict"`
	Justification string    `json:"justification"`
	EvidenceUsed  *[]string `json:"evidence_used"`
}

// ParseVerdict extracts a verdict object from a model answer. A missing
// evidence_used defaults to links.
func ParseVerdict(raw string, links []string) (model.Verdict, error) {
	var resp verdictResponse
	if err := jsonx.DecodeObject(raw, &resp); err != nil {
		return model.Verdict{}, eris.Wrap(err, "parse verdict")
	}

	value, ok := model.ParseVerdictValue(resp.Verdict)
	if !ok {
		return model.Verdict{}, eris.Errorf("parse verdict: invalid verdict value %q", resp.Verdict)
	}

	evidence := links
	if resp.EvidenceUsed != nil {
		evidence = *resp.EvidenceUsed
	}

	return model.Verdict{
		Verdict:       value,
		Justification: strings.TrimSpace(resp.Justification),
		EvidenceUsed:  nonNil(evidence),
	}, nil
}

func fallback(links []string) model.Verdict {
	metrics.RecordVerdict(string(model.VerdictUnclear), true)
	return model.Verdict{
		Verdict:       model.VerdictUnclear,
		Justification: FallbackJustification,
		EvidenceUsed:  nonNil(links),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
