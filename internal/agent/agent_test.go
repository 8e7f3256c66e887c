package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codefionn/codeflink/internal/llm"
	"github.com/codefionn/codeflink/internal/safety"
	"github.com/codefionn/codeflink/internal/tools"
)

type scriptedGenerator struct {
	responses []string
	err       error
	prompts   []string
}

func (s *scriptedGenerator) Generate(ctx context.Context, prompt, systemPrompt string, opts *llm.GenerateOptions) (*llm.Response, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.prompts) > len(s.responses) {
		return nil, llm.NewError("fake", llm.ErrUnexpected, "script exhausted")
	}
	return &llm.Response{
		Content:  s.responses[len(s.prompts)-1],
		Provider: "fake",
	}, nil
}

func newTestAgent(t *testing.T, gen generator, maxSteps int) (*Agent, string) {
	t.Helper()
	dir := t.TempDir()
	checker, err := safety.NewChecker(dir)
	if err != nil {
		t.Fatal(err)
	}
	executor := tools.NewExecutor(tools.NewRegistry(checker))

	a := New(nil, executor, Options{MaxSteps: maxSteps})
	a.generator = gen
	return a, dir
}

func TestRunReturnsDirectAnswer(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"The answer is 42."}}
	agent, _ := newTestAgent(t, gen, 3)

	answer, err := agent.Run(context.Background(), "what is the answer")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if answer != "The answer is 42." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected 1 generation, got %d", len(gen.prompts))
	}
}

func TestRunExecutesToolsAndFeedsResultsBack(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`Let me create the file. <tool>write_file(path="greeting.txt", content="hello")</tool>`,
		"Done, the file is created.",
	}}
	agent, dir := newTestAgent(t, gen, 3)

	answer, err := agent.Run(context.Background(), "create greeting.txt")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if answer != "Done, the file is created." {
		t.Fatalf("unexpected answer %q", answer)
	}

	// Tool actually ran.
	data, err := os.ReadFile(filepath.Join(dir, "greeting.txt"))
	if err != nil {
		t.Fatalf("tool did not create the file: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected file content %q", data)
	}

	// Second prompt carries the tool results.
	if len(gen.prompts) != 2 {
		t.Fatalf("expected 2 generations, got %d", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[1], "Tool results:") {
		t.Fatalf("tool results not fed back: %q", gen.prompts[1])
	}
}

func TestRunStopsAtStepBudget(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`<tool>analyze_project()</tool>`,
		`<tool>analyze_project()</tool>`,
	}}
	agent, _ := newTestAgent(t, gen, 2)

	_, err := agent.Run(context.Background(), "loop forever")
	if err == nil {
		t.Fatal("expected step budget error")
	}
	if !strings.Contains(err.Error(), "2 steps") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRunPropagatesGenerationError(t *testing.T) {
	gen := &scriptedGenerator{err: llm.NewError("manager", llm.ErrAllFailed, "all providers failed")}
	agent, _ := newTestAgent(t, gen, 3)

	_, err := agent.Run(context.Background(), "anything")
	provErr, ok := err.(*llm.Error)
	if !ok {
		t.Fatalf("expected *llm.Error, got %T", err)
	}
	if provErr.Kind != llm.ErrAllFailed {
		t.Fatalf("expected all_failed, got %s", provErr.Kind)
	}
}
