package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

type fakeGenerativeModel struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeGenerativeModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func newFakeGemini(fake *fakeGenerativeModel, gotModel *string) *GeminiProvider {
	return &GeminiProvider{
		config: Config{Model: "gemini-1.5-pro", Timeout: 5},
		newModel: func(name string, req GenerateRequest) generativeModel {
			if gotModel != nil {
				*gotModel = name
			}
			return fake
		},
	}
}

func TestGeminiProvider_Generate_Success(t *testing.T) {
	fake := &fakeGenerativeModel{
		resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text("```json\n{\"verdict\":"), genai.Text(" \"True\"}\n```")}},
			}},
			UsageMetadata: &genai.UsageMetadata{TotalTokenCount: 42},
		},
	}
	var gotModel string
	p := newFakeGemini(fake, &gotModel)

	resp, err := p.Generate(context.Background(), GenerateRequest{Prompt: "claim", Model: "gemini-2.0-flash-001"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != "```json\n{\"verdict\": \"True\"}\n```" {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("Expected 42 tokens, got %d", resp.TokensUsed)
	}
	if gotModel != "gemini-2.0-flash-001" {
		t.Errorf("Expected request model override, got %s", gotModel)
	}
	if len(fake.parts) != 1 || fake.parts[0] != genai.Text("claim") {
		t.Errorf("Unexpected prompt parts: %v", fake.parts)
	}
}

func TestGeminiProvider_Generate_DefaultsToConfiguredModel(t *testing.T) {
	fake := &fakeGenerativeModel{
		resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("ok")}}}},
		},
	}
	var gotModel string
	p := newFakeGemini(fake, &gotModel)

	if _, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gotModel != "gemini-1.5-pro" {
		t.Errorf("Expected configured model, got %s", gotModel)
	}
}

func TestGeminiProvider_Generate_NoCandidates(t *testing.T) {
	p := newFakeGemini(&fakeGenerativeModel{resp: &genai.GenerateContentResponse{}}, nil)

	if _, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Error("Expected error for empty candidates")
	}
}

func TestGeminiProvider_Generate_APIError(t *testing.T) {
	p := newFakeGemini(&fakeGenerativeModel{err: errors.New("quota exceeded")}, nil)

	if _, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Error("Expected error from API failure")
	}
}

func TestGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), Config{}); err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestGeminiProvider_CloseWithoutClient(t *testing.T) {
	p := &GeminiProvider{}
	if err := p.Close(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}
