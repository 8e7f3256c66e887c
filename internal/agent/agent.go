package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/codefionn/codeflink/internal/history"
	"github.com/codefionn/codeflink/internal/llm"
	"github.com/codefionn/codeflink/internal/logger"
	"github.com/codefionn/codeflink/internal/retrieval"
	"github.com/codefionn/codeflink/internal/tools"
)

const defaultMaxSteps = 8

// generator is the slice of the LLM manager the agent needs.
type generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string, opts *llm.GenerateOptions) (*llm.Response, error)
}

// Agent drives a task to completion: it gathers workspace context, asks the
// model for a plan, executes requested tools and feeds results back until
// the model answers without tool calls or the step budget runs out.
type Agent struct {
	generator generator
	executor  *tools.Executor
	retriever retrieval.Retriever
	store     *history.Store

	strategy string
	maxSteps int
}

// Options configures an Agent.
type Options struct {
	// Strategy is the provider fallback chain used for generation.
	// Defaults to code_generation.
	Strategy string
	// MaxSteps bounds the generate/execute loop.
	MaxSteps int
	// Retriever supplies workspace context. May be nil.
	Retriever retrieval.Retriever
	// Store records generations and commands. May be nil.
	Store *history.Store
}

// New creates an agent over the given manager and tool executor.
func New(manager *llm.Manager, executor *tools.Executor, opts Options) *Agent {
	if opts.Strategy == "" {
		opts.Strategy = "code_generation"
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}

	return &Agent{
		generator: manager,
		executor:  executor,
		retriever: opts.Retriever,
		store:     opts.Store,
		strategy:  opts.Strategy,
		maxSteps:  opts.MaxSteps,
	}
}

// Run executes a task. The returned string is the model's final answer.
func (a *Agent) Run(ctx context.Context, task string) (string, error) {
	prompt := task

	if a.retriever != nil {
		snippets, err := a.retriever.Retrieve(ctx, task, 10)
		if err != nil {
			logger.Warn("context retrieval failed: %v", err)
		} else if block := retrieval.Format(snippets); block != "" {
			prompt = block + "\n" + task
		}
	}

	systemPrompt := a.buildSystemPrompt()

	for step := 0; step < a.maxSteps; step++ {
		resp, err := a.generator.Generate(ctx, prompt, systemPrompt, &llm.GenerateOptions{
			Strategy: a.strategy,
		})
		if err != nil {
			return "", err
		}

		a.recordGeneration(task, resp)

		calls := tools.ParseCalls(resp.Content)
		if len(calls) == 0 {
			return resp.Content, nil
		}

		logger.Info("step %d: executing %d tool calls", step+1, len(calls))
		results := a.executor.ExecuteCalls(ctx, calls)
		a.recordCommands(calls, results)

		prompt = fmt.Sprintf("%s\n\n%s\nContinue with the task. Answer directly when no further tools are needed.",
			prompt, a.executor.FormatResults(results))
	}

	return "", fmt.Errorf("task not completed within %d steps", a.maxSteps)
}

func (a *Agent) buildSystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are a coding assistant working inside the user's project directory.\n")
	sb.WriteString("You can invoke tools by emitting calls of the form <tool>name(key=\"value\")</tool>.\n\n")
	sb.WriteString("Available tools:\n")
	sb.WriteString(a.executor.Registry().Descriptions())
	sb.WriteString("\nUse tools to inspect and change the project. When the task is done, answer without any tool call.")
	return sb.String()
}

func (a *Agent) recordGeneration(task string, resp *llm.Response) {
	if a.store == nil {
		return
	}
	err := a.store.RecordGeneration(&history.Generation{
		Prompt:     task,
		Response:   resp.Content,
		Provider:   resp.Provider,
		Model:      resp.Model,
		Strategy:   a.strategy,
		TokensUsed: resp.TokensUsed,
		FromCache:  resp.Provider == "cache",
	})
	if err != nil {
		logger.Warn("failed to record generation: %v", err)
	}
}

func (a *Agent) recordCommands(calls []tools.Call, results []tools.Result) {
	if a.store == nil {
		return
	}
	for i, call := range calls {
		if call.Tool != "run_command" {
			continue
		}
		command := tools.GetStringParam(call.Params, "command", "")
		blocked := i < len(results) && !results[i].Success
		reason := ""
		var duration int64
		if i < len(results) {
			duration = results[i].Duration.Milliseconds()
		}
		if blocked {
			reason = results[i].Error
		}
		err := a.store.RecordCommand(&history.Command{
			Command:    command,
			DurationMS: duration,
			Blocked:    blocked,
			Reason:     reason,
		})
		if err != nil {
			logger.Warn("failed to record command: %v", err)
		}
	}
}
