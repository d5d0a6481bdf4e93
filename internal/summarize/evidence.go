package summarize

import (
	"context"

	"github.com/ppiankov/sportcheck/internal/metrics"
	"github.com/ppiankov/sportcheck/internal/model"
	"github.com/ppiankov/sportcheck/internal/worker"
	"go.uber.org/zap"
)

// EvidenceSummarizer produces one summary per search result by running
// an ordered list of attempts until one succeeds
type EvidenceSummarizer struct {
	attempts []Attempt
	workers  int
}

// NewEvidenceSummarizer creates a summarizer. workers > 1 summarizes results
// concurrently; output order always matches input order.
func NewEvidenceSummarizer(workers int, attempts ...Attempt) *EvidenceSummarizer {
	if workers <= 0 {
		workers = 1
	}
	return &EvidenceSummarizer{attempts: attempts, workers: workers}
}

// SummarizeAll returns len(results) summaries in input order. It never fails;
// the worst case for a result is its title and snippet.
func (s *EvidenceSummarizer) SummarizeAll(ctx context.Context, results []model.SearchResult, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultEvidenceWords
	}
	summaries := make([]string, len(results))
	if len(results) == 0 {
		return summaries
	}

	if s.workers == 1 || len(results) == 1 {
		for i, r := range results {
			summaries[i] = s.Summarize(ctx, r, maxWords)
		}
		return summaries
	}

	pool := worker.NewPool(ctx, min(s.workers, len(results)))
	pool.Start()
	for i, r := range results {
		pool.Submit(&summaryJob{index: i, result: r, maxWords: maxWords, summarizer: s})
	}
	for _, res := range pool.Wait() {
		if sr, ok := res.(*summaryResult); ok {
			summaries[sr.index] = sr.summary
		}
	}

	// Jobs dropped by a cancelled context still get their metadata text
	for i, r := range results {
		if summaries[i] == "" {
			summaries[i] = TruncateWords(r.MetadataText(), maxWords)
		}
	}
	return summaries
}

// Summarize runs the attempt chain for a single result
func (s *EvidenceSummarizer) Summarize(ctx context.Context, result model.SearchResult, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultEvidenceWords
	}
	for _, a := range s.attempts {
		if summary, ok := a.Try(ctx, result, maxWords); ok && summary != "" {
			metrics.RecordSummarySource(a.Name())
			zap.L().Debug("evidence summarized", zap.String("url", result.Link), zap.String("source", a.Name()))
			return TruncateWords(summary, maxWords)
		}
	}

	metrics.RecordSummarySource("verbatim")
	return TruncateWords(result.MetadataText(), maxWords)
}

type summaryJob struct {
	index      int
	result     model.SearchResult
	maxWords   int
	summarizer *EvidenceSummarizer
}

func (j *summaryJob) Execute(ctx context.Context) worker.Result {
	return &summaryResult{
		index:   j.index,
		summary: j.summarizer.Summarize(ctx, j.result, j.maxWords),
	}
}

type summaryResult struct {
	index   int
	summary string
}

func (r *summaryResult) GetError() error { return nil }
