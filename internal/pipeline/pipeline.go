package pipeline

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/sportcheck/internal/cache"
	"github.com/ppiankov/sportcheck/internal/config"
	"github.com/ppiankov/sportcheck/internal/extract"
	"github.com/ppiankov/sportcheck/internal/llm"
	"github.com/ppiankov/sportcheck/internal/metrics"
	"github.com/ppiankov/sportcheck/internal/model"
	"github.com/ppiankov/sportcheck/internal/resilience"
	"github.com/ppiankov/sportcheck/internal/search"
	"github.com/ppiankov/sportcheck/internal/summarize"
	"github.com/ppiankov/sportcheck/internal/util"
	"github.com/ppiankov/sportcheck/internal/validate"
	"github.com/ppiankov/sportcheck/internal/worker"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var (
	// ErrEmptyClaim is returned for a blank claim
	ErrEmptyClaim = resilience.Wrap(resilience.KindBadInput, "check claim", eris.New("claim is empty"))

	// ErrNoEntities is returned when the claim yields no usable entity
	ErrNoEntities = resilience.Wrap(resilience.KindBadInput, "extract entities", eris.New("could not extract entities from claim"))

	// ErrNoEvidence is returned when the search produced no results
	ErrNoEvidence = resilience.Wrap(resilience.KindNotFound, "retrieve evidence", eris.New("no search results found"))
)

// EntityExtractor parses a claim into structured entities
type EntityExtractor interface {
	Extract(ctx context.Context, claim string) (*model.ParsedEntities, error)
}

// EvidenceRetriever finds search results for entities; it never fails
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, entities model.ParsedEntities, limit int) []model.SearchResult
}

// EvidenceSummarizer returns one summary per result in order; it never fails
type EvidenceSummarizer interface {
	SummarizeAll(ctx context.Context, results []model.SearchResult, maxWords int) []string
}

// VerdictSynthesizer decides a claim from evidence; it never fails
type VerdictSynthesizer interface {
	Validate(ctx context.Context, claim string, summaries, links []string) model.Verdict
}

// Options tunes a FactChecker
type Options struct {
	Limit    int // Search results per claim, <= 0 uses the retriever default
	MaxWords int // Summary budget per result, <= 0 uses summarize.DefaultEvidenceWords
}

// FactChecker runs the four verification stages for a claim
type FactChecker struct {
	extractor   EntityExtractor
	retriever   EvidenceRetriever
	summarizer  EvidenceSummarizer
	synthesizer VerdictSynthesizer
	opts        Options
	closers     []io.Closer
}

// NewFactChecker assembles a FactChecker from its stages
func NewFactChecker(extractor EntityExtractor, retriever EvidenceRetriever, summarizer EvidenceSummarizer, synthesizer VerdictSynthesizer, opts Options) *FactChecker {
	return &FactChecker{
		extractor:   extractor,
		retriever:   retriever,
		summarizer:  summarizer,
		synthesizer: synthesizer,
		opts:        opts,
	}
}

// NewFromConfig builds the production FactChecker. Clients are created once
// and shared by every request.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*FactChecker, error) {
	provider, err := llm.NewProvider(ctx, llm.ConfigFrom(cfg.LLM, cfg.Fetch))
	if err != nil {
		return nil, eris.Wrap(err, "create LLM provider")
	}

	apiClient := &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.Fetch.HTTPProxy, cfg.Fetch.HTTPSProxy, cfg.Fetch.NoProxy),
		},
	}
	searchClient := search.NewClient(cfg.Search.APIKey,
		search.WithBaseURL(cfg.Search.URL),
		search.WithEngine(cfg.Search.Engine),
		search.WithHTTPClient(apiClient),
	)

	fetchOpts := []FetcherOption{
		WithLimiter(worker.NewLimiter(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Burst)),
	}
	if cfg.Fetch.RespectRobots {
		userAgent := cfg.Fetch.UserAgent
		if userAgent == "" {
			userAgent = config.DefaultUserAgent
		}
		fetchOpts = append(fetchOpts, WithRobots(util.NewRobotsChecker(userAgent, cfg.Fetch.Timeout())))
	}
	if cfg.Cache.Enabled {
		fetchOpts = append(fetchOpts, WithCache(cache.New(cfg.Cache), cfg.Cache.TTL()))
	}
	fetcher := NewFetcher(cfg.Fetch, fetchOpts...)

	summarizer, err := summarize.NewFromConfig(cfg.Summarize, provider, fetcher, apiClient)
	if err != nil {
		return nil, eris.Wrap(err, "create summarizer")
	}

	fc := NewFactChecker(
		extract.NewEntityExtractor(provider, cfg.LLM.ExtractionModelName(), cfg.LLM.Timeout()),
		search.NewRetriever(searchClient, cfg.Search.Limit, cfg.Search.Timeout()),
		summarizer,
		validate.NewValidator(provider, cfg.LLM.Model, cfg.LLM.MaxTokens, cfg.LLM.Timeout()),
		Options{Limit: cfg.Search.Limit, MaxWords: cfg.Summarize.MaxWords},
	)
	if c, ok := provider.(io.Closer); ok {
		fc.closers = append(fc.closers, c)
	}

	zap.L().Info("fact checker ready",
		zap.String("provider", provider.Name()),
		zap.String("summarize_backend", cfg.Summarize.Backend),
		zap.Int("limit", cfg.Search.Limit),
		zap.Bool("respect_robots", cfg.Fetch.RespectRobots),
		zap.Bool("cache", cfg.Cache.Enabled),
	)
	return fc, nil
}

// Check verifies a claim. Stage 1 and stage 2 failures are returned as
// classified errors; later stages degrade instead of failing.
func (f *FactChecker) Check(ctx context.Context, claim string) (*model.FactCheckResponse, error) {
	claim = strings.TrimSpace(claim)
	if claim == "" {
		return nil, ErrEmptyClaim
	}

	log := zap.L().With(zap.String("check_id", uuid.NewString()))
	log.Info("checking claim", zap.String("claim", claim))

	// 1. Extract entities
	start := time.Now()
	entities, err := f.extractor.Extract(ctx, claim)
	if err != nil {
		metrics.RecordStage("extract", "error", time.Since(start))
		return nil, err
	}
	if entities == nil || !entities.HasAny() {
		metrics.RecordStage("extract", "empty", time.Since(start))
		log.Warn("no entities extracted", zap.String("claim", claim))
		return nil, ErrNoEntities
	}
	metrics.RecordStage("extract", "ok", time.Since(start))

	// 2. Retrieve evidence
	start = time.Now()
	results := f.retriever.Retrieve(ctx, *entities, f.opts.Limit)
	if len(results) == 0 {
		metrics.RecordStage("retrieve", "empty", time.Since(start))
		log.Warn("no search results", zap.String("query", search.BuildQuery(*entities)))
		return nil, ErrNoEvidence
	}
	metrics.RecordStage("retrieve", "ok", time.Since(start))

	// 3. Summarize each result
	start = time.Now()
	summaries := f.summarizer.SummarizeAll(ctx, results, f.opts.MaxWords)
	metrics.RecordStage("summarize", "ok", time.Since(start))

	// 4. Synthesize the verdict
	start = time.Now()
	verdict := f.synthesizer.Validate(ctx, claim, summaries, model.Links(results))
	metrics.RecordStage("validate", "ok", time.Since(start))

	log.Info("claim checked",
		zap.String("verdict", string(verdict.Verdict)),
		zap.Int("evidence", len(results)),
	)
	return model.NewFactCheckResponse(verdict, *entities), nil
}

// Close releases provider clients
func (f *FactChecker) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
