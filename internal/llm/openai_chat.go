package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
)

// The cloud providers share the OpenAI-style chat-completions wire contract:
// POST {model, messages, temperature, max_tokens} with a Bearer credential,
// choices[0].message.content back. This helper implements that contract once
// for every OpenAI-compatible backend.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// completeChat posts a chat-completion request and converts the reply into a
// Response. HTTP 401 maps to authentication_error, 429 to rate_limit, other
// non-2xx statuses to api_error.
func completeChat(ctx context.Context, client *http.Client, provider, baseURL, apiKey, model, prompt, systemPrompt string, cfg *GenerationConfig) (*Response, error) {
	if cfg == nil {
		cfg = DefaultGenerationConfig()
	}

	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TopP:        cfg.TopP,
		Stop:        cfg.StopSequences,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewError(provider, ErrUnexpected, "failed to encode request: %v", err)
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewError(provider, ErrUnexpected, "failed to create request: %v", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		detail := strings.TrimSpace(string(raw))

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, NewError(provider, ErrAuthentication, "invalid API key")
		case http.StatusTooManyRequests:
			return nil, NewError(provider, ErrRateLimit, "rate limit exceeded: %s", detail)
		default:
			return nil, NewError(provider, ErrAPI, "status %d: %s", resp.StatusCode, detail)
		}
	}

	var chatResp chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, NewError(provider, ErrAPI, "failed to decode response: %v", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, NewError(provider, ErrAPI, "response contained no choices")
	}

	return &Response{
		Content:      chatResp.Choices[0].Message.Content,
		Model:        model,
		Provider:     provider,
		TokensUsed:   chatResp.Usage.TotalTokens,
		FinishReason: chatResp.Choices[0].FinishReason,
	}, nil
}

// classifyTransportError maps a transport-level failure onto the error
// taxonomy: deadline expiry is a timeout, everything else is unreachability.
func classifyTransportError(provider string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(provider, ErrTimeout, "request timed out: %v", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(provider, ErrTimeout, "request timed out: %v", err)
	}

	return NewError(provider, ErrConnection, "%v", err)
}

// probeEndpoint performs a short authenticated GET used by availability
// checks. Any failure resolves to false.
func probeEndpoint(ctx context.Context, client *http.Client, url, apiKey string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
