package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/codefionn/codeflink/internal/consts"
	"github.com/codefionn/codeflink/internal/logger"
	"github.com/codefionn/codeflink/internal/securemem"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Groq free-tier budget.
const (
	groqRequestsPerMinute = 30
	groqRequestsPerDay    = 14400
)

// GroqClient implements the Client interface for Groq's OpenAI-compatible
// chat completions API. Requests are accounted against a local sliding
// window so the client refuses before the API would.
type GroqClient struct {
	apiKey  *securemem.Secret
	model   string
	client  *http.Client
	limiter *RateLimiter
}

// NewGroqClient creates a Groq client. The API key is required.
func NewGroqClient(apiKey, model string, timeout time.Duration, rpm, rpd int) (*GroqClient, error) {
	if apiKey == "" {
		return nil, NewError("groq", ErrAuthentication, "GROQ_API_KEY not configured")
	}
	if timeout <= 0 {
		timeout = consts.Timeout60Seconds
	}
	if rpm <= 0 {
		rpm = groqRequestsPerMinute
	}
	if rpd <= 0 {
		rpd = groqRequestsPerDay
	}

	return &GroqClient{
		apiKey:  securemem.New(apiKey),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		limiter: NewRateLimiter(rpm, rpd),
	}, nil
}

func (c *GroqClient) Name() string {
	return "groq"
}

func (c *GroqClient) ModelName() string {
	return c.model
}

func (c *GroqClient) Generate(ctx context.Context, prompt, systemPrompt string, cfg *GenerationConfig) (*Response, error) {
	if !c.limiter.CanMakeRequest() {
		status := c.limiter.Status()
		return nil, NewError("groq", ErrRateLimit,
			"local rate limit reached (%d/%d rpm, %d/%d rpd)",
			status.RPMUsed, status.RPMLimit, status.RPDUsed, status.RPDLimit)
	}

	resp, err := completeChat(ctx, c.client, "groq", groqBaseURL, c.apiKey.Reveal(), c.model, prompt, systemPrompt, cfg)
	if err != nil {
		return nil, err
	}

	c.limiter.RecordRequest()
	logger.Debug("groq request succeeded, %d tokens", resp.TokensUsed)
	return resp, nil
}

func (c *GroqClient) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, consts.Timeout5Seconds)
	defer cancel()
	return probeEndpoint(probeCtx, c.client, groqBaseURL+"/models", c.apiKey.Reveal())
}

func (c *GroqClient) RateLimitStatus() RateLimitStatus {
	return c.limiter.Status()
}
