package llm

import (
	"context"
	"fmt"

	"github.com/codefionn/codeflink/internal/consts"
)

// Response is the immutable result of a generation call.
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	TokensUsed   int    `json:"tokens_used,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	ErrRateLimit      ErrorKind = "rate_limit"
	ErrTimeout        ErrorKind = "timeout"
	ErrConnection     ErrorKind = "connection_error"
	ErrAuthentication ErrorKind = "authentication_error"
	ErrModelNotFound  ErrorKind = "model_not_found"
	ErrAPI            ErrorKind = "api_error"
	ErrUnexpected     ErrorKind = "unexpected_error"
	// ErrAllFailed is produced only by the Manager after exhausting every
	// candidate provider of a strategy.
	ErrAllFailed ErrorKind = "all_failed"
)

// Error is a tagged provider error. It is never swallowed at the client
// layer; the Manager aggregates them into a single all_failed error when
// every provider in a strategy fails.
type Error struct {
	Provider string
	Kind     ErrorKind
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Kind, e.Message)
}

// NewError creates a tagged provider error.
func NewError(provider string, kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{
		Provider: provider,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	}
}

// GenerationConfig holds per-call tuning parameters. It is immutable for the
// duration of a call and does not outlive it.
type GenerationConfig struct {
	Temperature   float64  `json:"temperature"`
	MaxTokens     int      `json:"max_tokens,omitempty"`
	TopP          float64  `json:"top_p,omitempty"`
	StopSequences []string `json:"stop_sequences,omitempty"`
	Stream        bool     `json:"stream"`
}

// DefaultGenerationConfig returns the defaults used when a call passes nil.
func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		Temperature: consts.DefaultTemperature,
		TopP:        consts.DefaultTopP,
		MaxTokens:   consts.DefaultMaxTokens,
	}
}

// RateLimitStatus reports a provider's local request budget.
type RateLimitStatus struct {
	HasLimit     bool `json:"has_limit"`
	RPMUsed      int  `json:"rpm_used,omitempty"`
	RPMLimit     int  `json:"rpm_limit,omitempty"`
	RPMRemaining int  `json:"rpm_remaining,omitempty"`
	RPDUsed      int  `json:"rpd_used,omitempty"`
	RPDLimit     int  `json:"rpd_limit,omitempty"`
	RPDRemaining int  `json:"rpd_remaining,omitempty"`
}

// Client is the interface implemented by every provider adapter.
type Client interface {
	// Generate sends a single prompt (with optional system prompt) and
	// returns the response. Failures are reported as *Error.
	Generate(ctx context.Context, prompt, systemPrompt string, cfg *GenerationConfig) (*Response, error)
	// IsAvailable is a best-effort health probe. It never fails hard: any
	// network or decode problem resolves to false.
	IsAvailable(ctx context.Context) bool
	// RateLimitStatus reports the client-side request budget.
	RateLimitStatus() RateLimitStatus
	// Name returns the provider identifier (e.g. "ollama").
	Name() string
	// ModelName returns the configured model identifier.
	ModelName() string
}
