package safety

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/codefionn/codeflink/internal/logger"
)

// FileOperation identifies the kind of file access being gated.
type FileOperation string

const (
	OpRead   FileOperation = "read"
	OpWrite  FileOperation = "write"
	OpDelete FileOperation = "delete"
)

// dangerousCommands are blocked when they appear anywhere in the lowered
// command string.
var dangerousCommands = []string{
	"rm -rf /",
	"rm -rf *",
	"rm -rf ~",
	"dd if=",
	"mkfs",
	"format",
	"> /dev/sda",
	"chmod 777",
	"chmod -r 777",
	"chown root",
	"sudo su",
	"sudo -i",
	":(){:|:&};:",
}

// dangerousPatterns catch destructive shapes the substring list misses.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)rm\s+-rf\s+[/~]`),
	regexp.MustCompile(`(?i):\(\)\{.*\};:`),
	regexp.MustCompile(`(?i)dd\s+if=.*of=/dev/`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)mkfs\.`),
	regexp.MustCompile(`(?i)fdisk\s+/dev/`),
	regexp.MustCompile(`(?i)parted\s+/dev/`),
	regexp.MustCompile(`(?i)wget.*\|.*bash`),
	regexp.MustCompile(`(?i)curl.*\|.*sh`),
	regexp.MustCompile(`(?i)chmod\s+-R\s+777`),
	regexp.MustCompile(`(?i)>/dev/sd[a-z]`),
}

// suspiciousKeywords trigger a soft rejection that manual approval can
// override.
var suspiciousKeywords = []string{
	"wget", "curl", "nc", "netcat", "telnet",
	"format", "mkfs", "fdisk", "parted",
	"sudo", "su", "doas",
}

var allowedExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".java": true, ".cpp": true, ".c": true, ".h": true, ".hpp": true,
	".cs": true, ".rb": true, ".php": true, ".go": true, ".rs": true,
	".swift": true, ".kt": true, ".scala": true, ".r": true,
	".html": true, ".css": true, ".scss": true, ".sass": true, ".less": true,
	".md": true, ".txt": true, ".json": true, ".yaml": true, ".yml": true,
	".toml": true, ".ini": true, ".conf": true, ".config": true,
	".xml": true, ".sql": true, ".sh": true, ".bash": true,
	".env": true, ".gitignore": true, ".dockerignore": true,
}

var binaryExtensions = map[string]bool{
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".bin": true, ".dat": true, ".pyc": true, ".pyo": true,
	".class": true, ".jar": true, ".war": true,
}

// criticalFiles are path markers whose presence anywhere in a resolved path
// blocks the operation.
var criticalFiles = []string{
	".env",
	".git/config",
	".ssh/id_rsa",
	".ssh/id_ed25519",
	"/etc/passwd",
	"/etc/shadow",
	"/etc/sudoers",
}

// Stats reports the checker's decision counts.
type Stats struct {
	Blocked          int `json:"blocked_count"`
	Allowed          int `json:"allowed_count"`
	ApprovedCommands int `json:"approved_commands"`
}

// Checker gates shell commands and file operations before execution.
// The zero value is not usable; construct with NewChecker so the working
// directory boundary is resolved once.
type Checker struct {
	mu       sync.Mutex
	workDir  string
	approved map[string]bool

	blocked int
	allowed int
}

// NewChecker creates a checker whose file operations are confined to
// workDir. An empty workDir confines to the process working directory.
func NewChecker(workDir string) (*Checker, error) {
	if workDir == "" {
		workDir = "."
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	return &Checker{
		workDir:  abs,
		approved: make(map[string]bool),
	}, nil
}

// WorkDir returns the resolved directory boundary.
func (c *Checker) WorkDir() string {
	return c.workDir
}

// CheckCommand reports whether a shell command may run. Approval by exact
// command string short-circuits every other gate, including the dangerous
// lists.
func (c *Checker) CheckCommand(command string) (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lowered := strings.ToLower(strings.TrimSpace(command))

	if c.approved[command] {
		logger.Info("pre-approved command: %.50s", command)
		c.allowed++
		return true, "command pre-approved by user"
	}

	for _, dangerous := range dangerousCommands {
		if strings.Contains(lowered, dangerous) {
			logger.Warn("dangerous command blocked: %.50s", command)
			c.blocked++
			return false, fmt.Sprintf("forbidden command detected: %q", dangerous)
		}
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(command) {
			logger.Warn("dangerous pattern detected: %.50s", command)
			c.blocked++
			return false, "dangerous pattern detected in command"
		}
	}

	for _, keyword := range suspiciousKeywords {
		if strings.Contains(lowered, keyword) {
			logger.Info("suspicious command requires approval: %.50s", command)
			return false, fmt.Sprintf("command contains suspicious keyword %q and requires manual approval", keyword)
		}
	}

	c.allowed++
	logger.Debug("command validated: %.50s", command)
	return true, "command validated"
}

// CheckFileOperation reports whether a file operation may proceed. All
// gates are independent: path resolution, existence for reads, critical
// file markers, binary extensions, the write/delete allowlist, and the
// working directory boundary. Existence is checked here rather than
// trusted from the caller.
func (c *Checker) CheckFileOperation(path string, op FileOperation) (bool, string) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		logger.Error("failed to resolve path %s: %v", path, err)
		return false, fmt.Sprintf("invalid file path: %v", err)
	}
	resolved = filepath.Clean(resolved)

	if op == OpRead {
		if _, err := os.Stat(resolved); err != nil {
			return false, "file does not exist"
		}
	}

	normalized := filepath.ToSlash(resolved)
	for _, critical := range criticalFiles {
		if strings.Contains(normalized, critical) {
			logger.Warn("attempted %s on critical file: %s", op, resolved)
			return false, fmt.Sprintf("operation on critical file requires explicit confirmation: %s", filepath.Base(resolved))
		}
	}

	ext := strings.ToLower(filepath.Ext(resolved))
	if binaryExtensions[ext] {
		logger.Warn("attempted %s on binary file: %s", op, resolved)
		return false, fmt.Sprintf("operations on binary files are not allowed: %s", ext)
	}

	if op == OpWrite || op == OpDelete {
		if ext != "" && !allowedExtensions[ext] {
			logger.Warn("extension not allowed for %s: %s", op, ext)
			return false, fmt.Sprintf("file extension not allowed for %s: %s", op, ext)
		}
	}

	if !isWithin(c.workDir, resolved) {
		logger.Warn("operation outside project directory: %s", resolved)
		return false, "operation only allowed inside the project directory"
	}

	logger.Debug("%s operation validated for %s", op, resolved)
	return true, "operation validated"
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..")
}

// AddApprovedCommand records a command string as user-approved. Approval is
// by exact string; a variant with different whitespace is a different
// command.
func (c *Checker) AddApprovedCommand(command string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.approved[command] {
		c.approved[command] = true
		logger.Info("command added to approved list: %.50s", command)
	}
}

// ClearApprovedCommands empties the approved list.
func (c *Checker) ClearApprovedCommands() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.approved = make(map[string]bool)
	logger.Info("approved command list cleared")
}

// Stats returns the decision counters.
func (c *Checker) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Blocked:          c.blocked,
		Allowed:          c.allowed,
		ApprovedCommands: len(c.approved),
	}
}
