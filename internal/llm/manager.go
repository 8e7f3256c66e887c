package llm

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codefionn/codeflink/internal/config"
	"github.com/codefionn/codeflink/internal/logger"
)

// Manager routes generation requests across the configured providers.
// A request resolves a candidate order (preferred provider first, then the
// strategy's fallback chain) and walks it until a provider succeeds. Only
// when every candidate fails does the caller see an error, and that error
// carries the per-provider failure list.
type Manager struct {
	mu         sync.RWMutex
	clients    map[string]Client
	strategies map[string][]string
	cache      *ResponseCache
}

// GenerateOptions selects routing and tuning for a single Generate call.
type GenerateOptions struct {
	// Strategy names a fallback chain from the configuration. Unknown or
	// empty strategies fall back to the default chain.
	Strategy string
	// PreferredProvider pins the request to a single provider, ignoring
	// the strategy chain.
	PreferredProvider string
	// Config overrides the generation defaults when non-nil.
	Config *GenerationConfig
	// SkipCache bypasses the response cache for this call.
	SkipCache bool
}

// ProviderStatus describes one provider for status reporting.
type ProviderStatus struct {
	Name      string          `json:"name"`
	Model     string          `json:"model"`
	Available bool            `json:"available"`
	RateLimit RateLimitStatus `json:"rate_limit"`
}

// NewManager builds clients for every enabled provider in cfg. A provider
// whose client cannot be constructed (usually a missing API key) is logged
// and skipped rather than failing the whole manager.
func NewManager(cfg *config.Config) *Manager {
	m := &Manager{
		clients:    make(map[string]Client),
		strategies: make(map[string][]string),
		cache:      NewResponseCache(cfg.MaxCacheEntries, time.Duration(cfg.CacheTTL)*time.Second),
	}

	for name, pc := range cfg.Providers {
		if pc == nil || !pc.Enabled {
			logger.Debug("provider %s disabled in config", name)
			continue
		}

		client, err := buildClient(name, pc)
		if err != nil {
			logger.Warn("provider %s unavailable: %v", name, err)
			continue
		}
		m.clients[name] = client
		logger.Info("provider %s initialized with model %s", name, client.ModelName())
	}

	for name, chain := range cfg.Strategies {
		m.strategies[name] = append([]string(nil), chain...)
	}

	return m
}

func buildClient(name string, pc *config.ProviderConfig) (Client, error) {
	timeout := time.Duration(pc.TimeoutSeconds) * time.Second

	switch name {
	case "ollama":
		return NewOllamaClient(pc.BaseURL, pc.Model, timeout)
	case "groq":
		return NewGroqClient(apiKeyFor(pc, "GROQ_API_KEY"), pc.Model, timeout,
			pc.RequestsPerMinute, pc.RequestsPerDay)
	case "together":
		return NewTogetherClient(apiKeyFor(pc, "TOGETHER_API_KEY"), pc.Model, timeout)
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

func apiKeyFor(pc *config.ProviderConfig, envVar string) string {
	if pc.APIKey != "" {
		return pc.APIKey
	}
	return os.Getenv(envVar)
}

// Generate resolves the candidate provider order and tries each in turn,
// returning the first successful response. Every candidate failing yields
// an all_failed error listing each provider's failure.
func (m *Manager) Generate(ctx context.Context, prompt, systemPrompt string, opts *GenerateOptions) (*Response, error) {
	if opts == nil {
		opts = &GenerateOptions{}
	}

	if !opts.SkipCache {
		if cached, ok := m.cache.Get(prompt); ok {
			return &Response{
				Content:  cached,
				Provider: "cache",
			}, nil
		}
	}

	candidates := m.candidateOrder(opts)
	if len(candidates) == 0 {
		return nil, NewError("manager", ErrAllFailed, "no providers configured")
	}

	var failures []*Error
	for _, name := range candidates {
		m.mu.RLock()
		client, ok := m.clients[name]
		m.mu.RUnlock()
		if !ok {
			logger.Debug("skipping unknown provider %s in strategy", name)
			continue
		}

		logger.Info("trying provider %s (model %s)", name, client.ModelName())
		resp, err := client.Generate(ctx, prompt, systemPrompt, opts.Config)
		if err == nil {
			if !opts.SkipCache {
				m.cache.Set(prompt, resp.Content)
			}
			return resp, nil
		}

		provErr, ok := err.(*Error)
		if !ok {
			provErr = NewError(name, ErrUnexpected, "%v", err)
		}
		logger.Warn("provider %s failed: %s", name, provErr.Message)
		failures = append(failures, provErr)
	}

	if len(failures) == 0 {
		return nil, NewError("manager", ErrAllFailed, "no usable providers for this request")
	}

	var sb strings.Builder
	sb.WriteString("all providers failed:")
	for _, f := range failures {
		fmt.Fprintf(&sb, "\n- %s: %s", f.Provider, f.Message)
	}
	return nil, NewError("manager", ErrAllFailed, "%s", sb.String())
}

// candidateOrder resolves the ordered provider list for a request. A
// preferred provider is the sole candidate; otherwise the strategy chain is
// used, with empty resolving to the simple strategy and an unknown strategy
// name falling back to the ollama-only chain.
func (m *Manager) candidateOrder(opts *GenerateOptions) []string {
	if opts.PreferredProvider != "" {
		logger.Info("using preferred provider: %s", opts.PreferredProvider)
		return []string{opts.PreferredProvider}
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = "simple"
	}

	m.mu.RLock()
	chain, ok := m.strategies[strategy]
	m.mu.RUnlock()
	if !ok {
		chain = []string{"ollama"}
	}
	return append([]string(nil), chain...)
}

// AvailableProviders probes every configured provider and returns the names
// of those currently reachable, sorted for stable output.
func (m *Manager) AvailableProviders(ctx context.Context) []string {
	m.mu.RLock()
	clients := make(map[string]Client, len(m.clients))
	for name, c := range m.clients {
		clients[name] = c
	}
	m.mu.RUnlock()

	var available []string
	for name, client := range clients {
		if client.IsAvailable(ctx) {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return available
}

// Providers returns the names of all configured providers, sorted.
func (m *Manager) Providers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Client returns the named provider client, if configured.
func (m *Manager) Client(name string) (Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[name]
	return c, ok
}

// SetStrategy installs or replaces a fallback chain. Provider names are not
// validated here; unknown names are skipped at request time.
func (m *Manager) SetStrategy(name string, providers []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies[name] = append([]string(nil), providers...)
}

// Strategies returns a copy of the strategy table.
func (m *Manager) Strategies() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]string, len(m.strategies))
	for name, chain := range m.strategies {
		out[name] = append([]string(nil), chain...)
	}
	return out
}

// Status probes each provider and reports model, availability and rate
// limit usage, sorted by provider name.
func (m *Manager) Status(ctx context.Context) []ProviderStatus {
	m.mu.RLock()
	clients := make(map[string]Client, len(m.clients))
	for name, c := range m.clients {
		clients[name] = c
	}
	m.mu.RUnlock()

	statuses := make([]ProviderStatus, 0, len(clients))
	for name, client := range clients {
		statuses = append(statuses, ProviderStatus{
			Name:      name,
			Model:     client.ModelName(),
			Available: client.IsAvailable(ctx),
			RateLimit: client.RateLimitStatus(),
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// Cache exposes the response cache for stats reporting and clearing.
func (m *Manager) Cache() *ResponseCache {
	return m.cache
}
