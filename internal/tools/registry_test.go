package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/codeflink/internal/safety"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	checker, err := safety.NewChecker(dir)
	require.NoError(t, err)
	return NewRegistry(checker), dir
}

func TestRegistryBuiltins(t *testing.T) {
	registry, _ := newTestRegistry(t)

	expected := []string{
		"analyze_project", "list_files", "read_file",
		"run_command", "search_in_files", "write_file",
	}
	assert.Equal(t, expected, registry.Names())

	schemas := registry.Schemas()
	assert.Len(t, schemas, len(expected))
	assert.Equal(t, "object", schemas["read_file"]["type"])
}

func TestExecuteUnknownToolFailsSoftly(t *testing.T) {
	registry, _ := newTestRegistry(t)

	result := registry.Execute(context.Background(), "no_such_tool", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no_such_tool")
	assert.NotEmpty(t, result.ID)
}

func TestExecuteHandlerErrorBecomesFailedResult(t *testing.T) {
	registry, _ := newTestRegistry(t)

	result := registry.Execute(context.Background(), "read_file", map[string]interface{}{
		"path": "does-not-exist.go",
	})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestReadWriteRoundTrip(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	write := registry.Execute(ctx, "write_file", map[string]interface{}{
		"path":    "hello.go",
		"content": "package main\n",
	})
	require.True(t, write.Success, write.Error)

	read := registry.Execute(ctx, "read_file", map[string]interface{}{
		"path": "hello.go",
	})
	require.True(t, read.Success, read.Error)
	assert.Contains(t, read.Output, "package main")
}

func TestWriteFileRejectedOutsideWorkDir(t *testing.T) {
	registry, _ := newTestRegistry(t)

	result := registry.Execute(context.Background(), "write_file", map[string]interface{}{
		"path":    "/tmp/outside-target.go",
		"content": "x",
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "rejected")
}

func TestRunCommandRejectsDangerous(t *testing.T) {
	registry, _ := newTestRegistry(t)

	result := registry.Execute(context.Background(), "run_command", map[string]interface{}{
		"command": "rm -rf /",
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "rejected")
}

func TestRunCommandReportsExitCodeAndOutput(t *testing.T) {
	registry, _ := newTestRegistry(t)

	result := registry.Execute(context.Background(), "run_command", map[string]interface{}{
		"command": "echo hello",
	})
	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.Output, "Exit code: 0")
	assert.Contains(t, result.Output, "hello")
}

func TestRunCommandKilledOnTimeout(t *testing.T) {
	registry, _ := newTestRegistry(t)
	registry.SetCommandTimeout(100 * time.Millisecond)

	result := registry.Execute(context.Background(), "run_command", map[string]interface{}{
		"command": "sleep 5",
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "timed out")
}

func TestRunCommandNonZeroExit(t *testing.T) {
	registry, _ := newTestRegistry(t)

	result := registry.Execute(context.Background(), "run_command", map[string]interface{}{
		"command": "exit 3",
	})
	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.Output, "Exit code: 3")
}

func TestListFilesMatchesPattern(t *testing.T) {
	registry, dir := newTestRegistry(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("text\n"), 0644))

	result := registry.Execute(context.Background(), "list_files", map[string]interface{}{
		"pattern": "*.go",
	})
	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.Output, "a.go")
	assert.NotContains(t, result.Output, "b.txt")
}

func TestSearchInFilesReportsFileAndLine(t *testing.T) {
	registry, dir := newTestRegistry(t)

	content := "package a\n\nfunc Target() {}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte(content), 0644))

	result := registry.Execute(context.Background(), "search_in_files", map[string]interface{}{
		"query":        "Target",
		"file_pattern": "*.go",
	})
	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.Output, "a.go:3")
}

func TestAnalyzeProject(t *testing.T) {
	registry, dir := newTestRegistry(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\nvar X = 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# readme\n"), 0644))

	result := registry.Execute(context.Background(), "analyze_project", nil)
	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.Output, "Go: 1 files")
	assert.Contains(t, result.Output, "Markdown: 1 files")
}

func TestExecutorBatchContinuesPastFailures(t *testing.T) {
	registry, dir := newTestRegistry(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0644))

	executor := NewExecutor(registry)
	calls := ParseCalls(`<tool>read_file(path="missing.go")</tool> <tool>read_file(path="a.go")</tool>`)

	results := executor.ExecuteCalls(context.Background(), calls)
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.True(t, results[1].Success)

	formatted := executor.FormatResults(results)
	assert.Contains(t, formatted, "error:")
	assert.Contains(t, formatted, "package a")
}

func TestParamHelpers(t *testing.T) {
	params := map[string]interface{}{
		"s": "value",
		"f": float64(7),
		"i": 3,
		"b": true,
	}

	assert.Equal(t, "value", GetStringParam(params, "s", "d"))
	assert.Equal(t, "d", GetStringParam(params, "missing", "d"))
	assert.Equal(t, 7, GetIntParam(params, "f", 0))
	assert.Equal(t, 3, GetIntParam(params, "i", 0))
	assert.Equal(t, 9, GetIntParam(params, "missing", 9))
	assert.True(t, GetBoolParam(params, "b", false))
	assert.False(t, GetBoolParam(params, "missing", false))
}
