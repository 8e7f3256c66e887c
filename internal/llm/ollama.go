package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codefionn/codeflink/internal/consts"
	"github.com/codefionn/codeflink/internal/logger"
)

// OllamaClient implements the Client interface for a local Ollama instance.
// Ollama has no request budget, so RateLimitStatus always reports no limit.
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaClient creates an Ollama client for the provided model.
func NewOllamaClient(baseURL, model string, timeout time.Duration) (*OllamaClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, NewError("ollama", ErrUnexpected, "ollama client requires a model identifier")
	}
	if timeout <= 0 {
		timeout = consts.Timeout5Minutes
	}

	return &OllamaClient{
		baseURL: normalizeOllamaBaseURL(baseURL),
		model:   model,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *OllamaClient) Name() string {
	return "ollama"
}

func (c *OllamaClient) ModelName() string {
	return c.model
}

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	System  string                 `json:"system,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response   string `json:"response"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`
}

func (c *OllamaClient) Generate(ctx context.Context, prompt, systemPrompt string, cfg *GenerationConfig) (*Response, error) {
	if cfg == nil {
		cfg = DefaultGenerationConfig()
	}

	options := map[string]interface{}{
		"temperature": cfg.Temperature,
	}
	if cfg.MaxTokens > 0 {
		options["num_predict"] = cfg.MaxTokens
	}
	if cfg.TopP > 0 {
		options["top_p"] = cfg.TopP
	}
	if len(cfg.StopSequences) > 0 {
		options["stop"] = cfg.StopSequences
	}

	payload := ollamaGenerateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		System:  systemPrompt,
		Options: options,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewError("ollama", ErrUnexpected, "failed to encode request: %v", err)
	}

	endpoint := c.baseURL + "/api/generate"
	logger.Debug("ollama request: %s | model: %s", endpoint, c.model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewError("ollama", ErrUnexpected, "failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError("ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewError("ollama", ErrModelNotFound,
			"model %q not found; pull it with: ollama pull %s", c.model, c.model)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, NewError("ollama", ErrAPI, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, NewError("ollama", ErrAPI, "failed to decode response: %v", err)
	}

	content := genResp.Response
	if content == "" {
		logger.Warn("ollama returned an empty response")
	}

	return &Response{
		Content:      content,
		Model:        c.model,
		Provider:     "ollama",
		FinishReason: genResp.DoneReason,
	}, nil
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// IsAvailable probes the tags endpoint and additionally requires that the
// configured model (or its base name before the tag separator) appears in
// the installed-model list.
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, consts.Timeout5Seconds)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Debug("cannot connect to ollama: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("ollama not available: status %d", resp.StatusCode)
		return false
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}

	baseName := strings.SplitN(c.model, ":", 2)[0]
	for _, m := range tags.Models {
		if strings.Contains(m.Name, c.model) || strings.HasPrefix(m.Name, baseName) {
			return true
		}
	}

	logger.Debug("model %s not found in ollama tags", c.model)
	return false
}

func (c *OllamaClient) RateLimitStatus() RateLimitStatus {
	return RateLimitStatus{HasLimit: false}
}

func normalizeOllamaBaseURL(baseURL string) string {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		return "http://localhost:11434"
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	return strings.TrimRight(url, "/")
}
