// Package summarize condenses evidence pages and search metadata into short
// summaries for the verdict prompt.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/sportcheck/internal/llm"
	"github.com/ppiankov/sportcheck/internal/resilience"
	"github.com/rotisserie/eris"
)

// Model is an abstractive summarization backend
type Model interface {
	// Summarize returns one summary of text bounded by the token lengths
	Summarize(ctx context.Context, text string, minLength, maxLength int) (string, error)
}

// HuggingFaceModel calls the Hugging Face Inference API summarization task
type HuggingFaceModel struct {
	baseURL    string
	model      string
	token      string
	httpClient *http.Client
}

// NewHuggingFaceModel creates a client for model hosted under baseURL
func NewHuggingFaceModel(baseURL, model, token string, httpClient *http.Client) *HuggingFaceModel {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &HuggingFaceModel{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		token:      token,
		httpClient: httpClient,
	}
}

type hfParameters struct {
	MaxLength  int    `json:"max_length"`
	MinLength  int    `json:"min_length"`
	DoSample   bool   `json:"do_sample"`
	Truncation string `json:"truncation"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

type hfError struct {
	Error string `json:"error"`
}

// Summarize sends text to the inference endpoint
func (m *HuggingFaceModel) Summarize(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: text,
		Parameters: hfParameters{
			MaxLength:  maxLength,
			MinLength:  minLength,
			DoSample:   false,
			Truncation: "only_first",
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "huggingface: marshal request")
	}

	url := fmt.Sprintf("%s/%s", m.baseURL, m.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "huggingface: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if m.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.token)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "huggingface: send request")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", eris.Wrap(err, "huggingface: read response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		statusErr := eris.Errorf("huggingface: status %d: %s", resp.StatusCode, msg)
		// 503 is returned while the model is loading
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return "", statusErr
	}

	var summaries []hfSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return "", eris.Wrap(err, "huggingface: decode response")
	}
	if len(summaries) == 0 || strings.TrimSpace(summaries[0].SummaryText) == "" {
		return "", eris.New("huggingface: empty summary")
	}
	return strings.TrimSpace(summaries[0].SummaryText), nil
}

// summarySystemPrompt frames summarization for general-purpose LLMs
const summarySystemPrompt = "You summarize sports news evidence. Summarize the text you are given in 2-3 factual sentences. Keep names, scores and dates exactly as written. Reply with the summary only."

// LLMModel summarizes with a general-purpose language model
type LLMModel struct {
	provider llm.Provider
	model    string
}

// NewLLMModel creates a summarizer backed by provider. An empty model uses the provider default.
func NewLLMModel(provider llm.Provider, model string) *LLMModel {
	return &LLMModel{provider: provider, model: model}
}

// Summarize asks the model for a short summary; maxLength bounds the response tokens
func (m *LLMModel) Summarize(ctx context.Context, text string, _, maxLength int) (string, error) {
	resp, err := m.provider.Generate(ctx, llm.GenerateRequest{
		System:    summarySystemPrompt,
		Prompt:    text,
		Model:     m.model,
		MaxTokens: maxLength,
	})
	if err != nil {
		return "", eris.Wrapf(err, "summarize with %s", m.provider.Name())
	}
	if resp.Text == "" {
		return "", eris.New("summarize: empty response")
	}
	return resp.Text, nil
}
