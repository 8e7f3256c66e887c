package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func TestNormalizeOllamaBaseURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "http://localhost:11434"},
		{"localhost:11434", "http://localhost:11434"},
		{"http://localhost:11434", "http://localhost:11434"},
		{"http://localhost:11434/", "http://localhost:11434"},
		{"https://ollama.example.com", "https://ollama.example.com"},
		{"  127.0.0.1:11434  ", "http://127.0.0.1:11434"},
	}

	for _, tt := range tests {
		if got := normalizeOllamaBaseURL(tt.input); got != tt.expected {
			t.Errorf("normalizeOllamaBaseURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestOllamaClientRequiresModel(t *testing.T) {
	if _, err := NewOllamaClient("", "  ", 0); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestOllamaGenerate(t *testing.T) {
	client, err := NewOllamaClient("http://localhost:11434", "llama3.2", 0)
	if err != nil {
		t.Fatalf("NewOllamaClient returned error: %v", err)
	}

	var captured ollamaGenerateRequest
	client.client = newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		body, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		return newJSONResponse(req, http.StatusOK,
			`{"response":"hello there","done":true,"done_reason":"stop"}`), nil
	})

	resp, err := client.Generate(context.Background(), "say hi", "be brief", &GenerationConfig{
		Temperature: 0.2,
		MaxTokens:   128,
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if resp.Content != "hello there" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Provider != "ollama" {
		t.Fatalf("expected provider ollama, got %s", resp.Provider)
	}
	if resp.FinishReason != "stop" {
		t.Fatalf("expected finish reason stop, got %s", resp.FinishReason)
	}

	if captured.Model != "llama3.2" || captured.Prompt != "say hi" || captured.System != "be brief" {
		t.Fatalf("request not built correctly: %+v", captured)
	}
	if captured.Stream {
		t.Fatal("expected non-streaming request")
	}
	if captured.Options["num_predict"] != float64(128) {
		t.Fatalf("num_predict not propagated: %v", captured.Options["num_predict"])
	}
}

func TestOllamaGenerateModelNotFound(t *testing.T) {
	client, _ := NewOllamaClient("", "missing-model", 0)
	client.client = newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		return newJSONResponse(req, http.StatusNotFound, `{"error":"model not found"}`), nil
	})

	_, err := client.Generate(context.Background(), "hi", "", nil)
	provErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if provErr.Kind != ErrModelNotFound {
		t.Fatalf("expected model_not_found, got %s", provErr.Kind)
	}
}

func TestOllamaIsAvailableMatchesModelTags(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		tags      string
		available bool
	}{
		{"exact tag present", "llama3.2", `{"models":[{"name":"llama3.2:latest"}]}`, true},
		{"prefix match on base name", "llama3.2:3b", `{"models":[{"name":"llama3.2:latest"}]}`, true},
		{"model missing", "mistral", `{"models":[{"name":"llama3.2:latest"}]}`, false},
		{"no models installed", "llama3.2", `{"models":[]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := NewOllamaClient("", tt.model, 0)
			client.client = newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
				if req.URL.Path != "/api/tags" {
					t.Fatalf("unexpected path %s", req.URL.Path)
				}
				return newJSONResponse(req, http.StatusOK, tt.tags), nil
			})

			if got := client.IsAvailable(context.Background()); got != tt.available {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.available)
			}
		})
	}
}

func TestOllamaHasNoRateLimit(t *testing.T) {
	client, _ := NewOllamaClient("", "llama3.2", 0)
	if status := client.RateLimitStatus(); status.HasLimit {
		t.Fatal("ollama should report no rate limit")
	}
}
