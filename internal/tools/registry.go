package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codefionn/codeflink/internal/consts"
	"github.com/codefionn/codeflink/internal/logger"
	"github.com/codefionn/codeflink/internal/safety"
)

// Tool is a named operation the model can invoke. Parameters describes the
// accepted arguments in JSON-schema shape for prompt construction; the
// handler receives the parsed arguments as a flat map.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
	Handler     func(ctx context.Context, params map[string]interface{}) (string, error)
}

// Result is the outcome of one tool invocation. A handler error never
// propagates as a Go error; it is folded into a failed Result so a single
// bad call cannot abort a multi-call batch.
type Result struct {
	ID       string        `json:"id"`
	Tool     string        `json:"tool"`
	Success  bool          `json:"success"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Registry holds the available tools. The built-in set covers file access,
// search, project analysis and shell execution, all gated by the safety
// checker.
type Registry struct {
	mu             sync.RWMutex
	tools          map[string]*Tool
	checker        *safety.Checker
	workDir        string
	commandTimeout time.Duration
}

// NewRegistry creates a registry with the built-in tools registered.
func NewRegistry(checker *safety.Checker) *Registry {
	r := &Registry{
		tools:          make(map[string]*Tool),
		checker:        checker,
		workDir:        checker.WorkDir(),
		commandTimeout: consts.CommandTimeout,
	}
	r.registerBuiltins()
	return r
}

// SetCommandTimeout overrides the wall-clock limit for shell commands.
func (r *Registry) SetCommandTimeout(d time.Duration) {
	if d > 0 {
		r.commandTimeout = d
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(r.readFileTool())
	r.Register(r.writeFileTool())
	r.Register(r.listFilesTool())
	r.Register(r.searchInFilesTool())
	r.Register(r.runCommandTool())
	r.Register(r.analyzeProjectTool())
}

// Register adds or replaces a tool.
func (r *Registry) Register(tool *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = tool
}

// Get returns the named tool.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptions renders a tool catalog suitable for inclusion in a system
// prompt.
func (r *Registry) Descriptions() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "- %s: %s\n", name, r.tools[name].Description)
	}
	return sb.String()
}

// Schemas returns the parameter schema of every registered tool, keyed by
// tool name.
func (r *Registry) Schemas() map[string]map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make(map[string]map[string]interface{}, len(r.tools))
	for name, tool := range r.tools {
		schemas[name] = tool.Parameters
	}
	return schemas
}

// Execute runs the named tool. Unknown tools and handler errors both yield
// a failed Result rather than a Go error.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]interface{}) Result {
	result := Result{
		ID:   uuid.NewString(),
		Tool: name,
	}

	tool, ok := r.Get(name)
	if !ok {
		result.Error = fmt.Sprintf("tool %q not found", name)
		logger.Warn("unknown tool requested: %s", name)
		return result
	}

	start := time.Now()
	output, err := tool.Handler(ctx, params)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		logger.Warn("tool %s failed: %v", name, err)
		return result
	}

	result.Success = true
	result.Output = output
	logger.Debug("tool %s executed in %s", name, result.Duration)
	return result
}

// GetStringParam extracts a string argument, with a default for absence.
func GetStringParam(params map[string]interface{}, key, fallback string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// GetIntParam extracts an integer argument, tolerating the float64 that
// JSON decoding produces.
func GetIntParam(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// GetBoolParam extracts a boolean argument.
func GetBoolParam(params map[string]interface{}, key string, fallback bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return fallback
}
