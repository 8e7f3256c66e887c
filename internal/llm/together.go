package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/codefionn/codeflink/internal/consts"
	"github.com/codefionn/codeflink/internal/securemem"
)

const togetherBaseURL = "https://api.together.xyz/v1"

// TogetherClient implements the Client interface for Together AI. Together
// enforces limits server-side and publishes no fixed free-tier budget, so
// no local window is kept; a 429 surfaces as rate_limit from the wire layer.
type TogetherClient struct {
	apiKey *securemem.Secret
	model  string
	client *http.Client
}

// NewTogetherClient creates a Together AI client. The API key is required.
func NewTogetherClient(apiKey, model string, timeout time.Duration) (*TogetherClient, error) {
	if apiKey == "" {
		return nil, NewError("together", ErrAuthentication, "TOGETHER_API_KEY not configured")
	}
	if timeout <= 0 {
		timeout = consts.Timeout60Seconds
	}

	return &TogetherClient{
		apiKey: securemem.New(apiKey),
		model:  model,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (c *TogetherClient) Name() string {
	return "together"
}

func (c *TogetherClient) ModelName() string {
	return c.model
}

func (c *TogetherClient) Generate(ctx context.Context, prompt, systemPrompt string, cfg *GenerationConfig) (*Response, error) {
	return completeChat(ctx, c.client, "together", togetherBaseURL, c.apiKey.Reveal(), c.model, prompt, systemPrompt, cfg)
}

func (c *TogetherClient) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, consts.Timeout5Seconds)
	defer cancel()
	return probeEndpoint(probeCtx, c.client, togetherBaseURL+"/models", c.apiKey.Reveal())
}

// RateLimitStatus reports that limits exist but counts are unknown because
// Together does not expose usage through this API.
func (c *TogetherClient) RateLimitStatus() RateLimitStatus {
	return RateLimitStatus{HasLimit: true}
}
