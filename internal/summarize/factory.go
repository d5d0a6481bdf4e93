package summarize

import (
	"net/http"

	"github.com/ppiankov/sportcheck/internal/config"
	"github.com/ppiankov/sportcheck/internal/llm"
	"github.com/rotisserie/eris"
)

// NewModel builds the backend named by cfg.Backend. provider backs the "llm"
// backend; httpClient carries the huggingface requests and may be nil.
func NewModel(cfg config.SummarizeConfig, provider llm.Provider, httpClient *http.Client) (Model, error) {
	switch cfg.BackendName() {
	case config.BackendHuggingFace:
		if cfg.Model == "" {
			return nil, eris.New("summarize.model is required for the huggingface backend")
		}
		return NewHuggingFaceModel(cfg.BaseURL, cfg.Model, cfg.APIKey, httpClient), nil
	case config.BackendLLM:
		if provider == nil {
			return nil, eris.New("llm summarization backend requires an LLM provider")
		}
		return NewLLMModel(provider, cfg.Model), nil
	default:
		return nil, eris.Errorf("unsupported summarization backend: %s", cfg.Backend)
	}
}

// NewFromConfig wires the page and metadata attempts around the configured backend
func NewFromConfig(cfg config.SummarizeConfig, provider llm.Provider, pages PageSource, httpClient *http.Client) (*EvidenceSummarizer, error) {
	m, err := NewModel(cfg, provider, httpClient)
	if err != nil {
		return nil, err
	}
	la := NewLengthAware(m, cfg.MinLength, cfg.MaxLength, cfg.MaxInputWords, cfg.Timeout())
	return NewEvidenceSummarizer(cfg.Workers, NewPageAttempt(pages, la), NewMetadataAttempt(la)), nil
}
