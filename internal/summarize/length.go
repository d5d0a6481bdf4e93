package summarize

import (
	"context"
	"strings"
	"time"

	"github.com/ppiankov/sportcheck/internal/resilience"
	"go.uber.org/zap"
)

// DefaultMaxWords is the length-aware budget when callers pass none
const DefaultMaxWords = 100

// DefaultEvidenceWords is the per-result budget of SummarizeAll when callers pass none
const DefaultEvidenceWords = 200

// LengthAware summarizes only texts that exceed the word budget
type LengthAware struct {
	model         Model
	minLength     int
	maxLength     int
	maxInputWords int
	policy        resilience.Policy
}

// NewLengthAware wraps model with the given token bounds and input cap.
// maxInputWords <= 0 sends the whole text.
func NewLengthAware(model Model, minLength, maxLength, maxInputWords int, timeout time.Duration) *LengthAware {
	if maxLength <= 0 {
		maxLength = 130
	}
	if minLength <= 0 || minLength >= maxLength {
		minLength = min(30, maxLength/2)
	}
	return &LengthAware{
		model:         model,
		minLength:     minLength,
		maxLength:     maxLength,
		maxInputWords: maxInputWords,
		policy:        resilience.DefaultPolicy(timeout),
	}
}

// Summarize returns text unchanged when it fits in maxWords words, otherwise
// the model's summary. ok is false when the model fails or returns nothing.
func (s *LengthAware) Summarize(ctx context.Context, text string, maxWords int) (string, bool) {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	count := WordCount(text)
	if count <= maxWords {
		zap.L().Debug("text within word budget, not summarizing", zap.Int("words", count))
		return text, true
	}

	input := text
	if s.maxInputWords > 0 && count > s.maxInputWords {
		input = TruncateWords(text, s.maxInputWords)
	}

	summary, err := resilience.Call(ctx, s.policy, "summarize", func(ctx context.Context) (string, error) {
		return s.model.Summarize(ctx, input, s.minLength, s.maxLength)
	})
	if err != nil {
		zap.L().Warn("summarization failed", zap.Int("words", count), zap.Error(err))
		return "", false
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", false
	}

	zap.L().Debug("summarized text", zap.Int("words", count), zap.Int("summary_words", WordCount(summary)))
	return summary, true
}

// WordCount counts whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// TruncateWords keeps the first n words of text, joined by single spaces.
// Text with n words or fewer is returned unchanged.
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ")
}
