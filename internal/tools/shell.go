package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/codefionn/codeflink/internal/consts"
	"github.com/codefionn/codeflink/internal/logger"
)

func (r *Registry) runCommandTool() *Tool {
	return &Tool{
		Name:        "run_command",
		Description: "Run a shell command in the project directory. Dangerous commands are rejected and suspicious ones require prior approval.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"command": map[string]interface{}{
					"type":        "string",
					"description": "Command to execute (e.g. 'go test ./...', 'git status')",
				},
			},
			"required": []string{"command"},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (string, error) {
			command := strings.TrimSpace(GetStringParam(params, "command", ""))
			if command == "" {
				return "", errors.New("command parameter is required")
			}
			return r.runCommand(ctx, command)
		},
	}
}

// runCommand gates the command through the safety checker and executes it
// with `sh -c` under a hard timeout. The process is killed when the timeout
// elapses.
func (r *Registry) runCommand(ctx context.Context, command string) (string, error) {
	safe, reason := r.checker.CheckCommand(command)
	if !safe {
		return "", fmt.Errorf("command rejected: %s", reason)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "sh", "-c", command)
	cmd.Dir = r.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("executing command: %.80s", command)
	err := cmd.Run()

	exitCode := 0
	if err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("command timed out after %s", r.commandTimeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return "", fmt.Errorf("failed to run command: %w", err)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Command: %s\nExit code: %d\n", command, exitCode)
	if stdout.Len() > 0 {
		fmt.Fprintf(&sb, "\nSTDOUT:\n%s", truncate(stdout.String(), consts.BufferSize64KB))
	}
	if stderr.Len() > 0 {
		fmt.Fprintf(&sb, "\nSTDERR:\n%s", truncate(stderr.String(), consts.BufferSize64KB))
	}
	return sb.String(), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... (output truncated)"
}
