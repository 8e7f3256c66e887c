package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/codefionn/codeflink/internal/consts"
	"github.com/codefionn/codeflink/internal/safety"
)

const maxSearchResults = 20

func (r *Registry) readFileTool() *Tool {
	return &Tool{
		Name:        "read_file",
		Description: "Read the content of a file inside the project.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path of the file to read (e.g. 'main.go', 'internal/util.go')",
				},
			},
			"required": []string{"path"},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (string, error) {
			path := GetStringParam(params, "path", "")
			if path == "" {
				return "", errors.New("path parameter is required")
			}

			resolved := r.resolve(path)
			safe, reason := r.checker.CheckFileOperation(resolved, safety.OpRead)
			if !safe {
				return "", fmt.Errorf("read rejected: %s", reason)
			}

			data, err := os.ReadFile(resolved)
			if err != nil {
				return "", fmt.Errorf("failed to read %s: %w", path, err)
			}
			if len(data) > consts.BufferSize1MB {
				return "", fmt.Errorf("%s is too large to read (%d bytes)", path, len(data))
			}

			lines := strings.Count(string(data), "\n") + 1
			return fmt.Sprintf("File: %s\nLines: %d\n\n%s", path, lines, data), nil
		},
	}
}

func (r *Registry) writeFileTool() *Tool {
	return &Tool{
		Name:        "write_file",
		Description: "Create or overwrite a file inside the project.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path of the file to write",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Full content of the file",
				},
			},
			"required": []string{"path", "content"},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (string, error) {
			path := GetStringParam(params, "path", "")
			if path == "" {
				return "", errors.New("path parameter is required")
			}
			content := GetStringParam(params, "content", "")

			resolved := r.resolve(path)
			safe, reason := r.checker.CheckFileOperation(resolved, safety.OpWrite)
			if !safe {
				return "", fmt.Errorf("write rejected: %s", reason)
			}

			if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
				return "", fmt.Errorf("failed to create parent directory: %w", err)
			}
			if err := os.WriteFile(resolved, []byte(content), 0644); err != nil {
				return "", fmt.Errorf("failed to write %s: %w", path, err)
			}
			return fmt.Sprintf("wrote %d bytes to %s", len(content), path), nil
		},
	}
}

func (r *Registry) listFilesTool() *Tool {
	return &Tool{
		Name:        "list_files",
		Description: "List project files matching a glob pattern.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "Glob pattern (e.g. '*.go', 'internal/*')",
					"default":     "*",
				},
			},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (string, error) {
			pattern := GetStringParam(params, "pattern", "*")

			files, err := r.matchFiles(pattern)
			if err != nil {
				return "", err
			}
			if len(files) == 0 {
				return fmt.Sprintf("no files match pattern %q", pattern), nil
			}

			var sb strings.Builder
			fmt.Fprintf(&sb, "Files found (%d):\n", len(files))
			for _, f := range files {
				fmt.Fprintf(&sb, "  %s\n", f)
			}
			return sb.String(), nil
		},
	}
}

func (r *Registry) searchInFilesTool() *Tool {
	return &Tool{
		Name:        "search_in_files",
		Description: "Search for a regex pattern in project files and report file:line matches.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text or regex pattern to search for",
				},
				"file_pattern": map[string]interface{}{
					"type":        "string",
					"description": "Glob pattern of files to search (e.g. '*.go')",
					"default":     "*",
				},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (string, error) {
			query := GetStringParam(params, "query", "")
			if query == "" {
				return "", errors.New("query parameter is required")
			}
			filePattern := GetStringParam(params, "file_pattern", "*")

			re, err := regexp.Compile("(?i)" + query)
			if err != nil {
				return "", fmt.Errorf("invalid search pattern: %w", err)
			}

			files, err := r.matchFiles(filePattern)
			if err != nil {
				return "", err
			}

			var results []string
			for _, rel := range files {
				data, err := os.ReadFile(filepath.Join(r.workDir, rel))
				if err != nil {
					continue
				}
				for i, line := range strings.Split(string(data), "\n") {
					if re.MatchString(line) {
						results = append(results, fmt.Sprintf("%s:%d: %s", rel, i+1, strings.TrimSpace(line)))
						if len(results) >= maxSearchResults {
							break
						}
					}
				}
				if len(results) >= maxSearchResults {
					break
				}
			}

			if len(results) == 0 {
				return fmt.Sprintf("no matches for %q in files %q", query, filePattern), nil
			}
			return fmt.Sprintf("Search results for %q:\n%s", query, strings.Join(results, "\n")), nil
		},
	}
}

func (r *Registry) analyzeProjectTool() *Tool {
	return &Tool{
		Name:        "analyze_project",
		Description: "Summarize the project: file counts, total lines and language breakdown.",
		Parameters: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (string, error) {
			return r.analyzeProject()
		},
	}
}

var languageByExtension = map[string]string{
	".go":   "Go",
	".py":   "Python",
	".js":   "JavaScript",
	".ts":   "TypeScript",
	".jsx":  "JavaScript",
	".tsx":  "TypeScript",
	".java": "Java",
	".c":    "C",
	".h":    "C",
	".cpp":  "C++",
	".hpp":  "C++",
	".cs":   "C#",
	".rb":   "Ruby",
	".php":  "PHP",
	".rs":   "Rust",
	".sh":   "Shell",
	".bash": "Shell",
	".sql":  "SQL",
	".html": "HTML",
	".css":  "CSS",
	".md":   "Markdown",
	".yaml": "YAML",
	".yml":  "YAML",
	".json": "JSON",
}

type languageStats struct {
	files int
	lines int
}

func (r *Registry) analyzeProject() (string, error) {
	totalFiles := 0
	totalLines := 0
	languages := make(map[string]*languageStats)

	err := filepath.WalkDir(r.workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := languageByExtension[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		lines := strings.Count(string(data), "\n") + 1

		totalFiles++
		totalLines += lines
		if languages[lang] == nil {
			languages[lang] = &languageStats{}
		}
		languages[lang].files++
		languages[lang].lines += lines
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk project: %w", err)
	}

	names := make([]string, 0, len(languages))
	for lang := range languages {
		names = append(names, lang)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Project analysis\n")
	fmt.Fprintf(&sb, "Total files: %d\n", totalFiles)
	fmt.Fprintf(&sb, "Total lines: %d\n\n", totalLines)
	sb.WriteString("Languages:\n")
	for _, lang := range names {
		stats := languages[lang]
		fmt.Fprintf(&sb, "  %s: %d files, %d lines\n", lang, stats.files, stats.lines)
	}
	return sb.String(), nil
}

// resolve makes a tool-supplied path absolute under the working directory.
// Absolute inputs pass through so the safety boundary check can reject them
// with an accurate message.
func (r *Registry) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.workDir, path)
}

// matchFiles globs relative to the working directory. Patterns with a
// directory component are matched as-is; bare patterns also match one level
// of subdirectories. Hidden and vendored directories are skipped.
func (r *Registry) matchFiles(pattern string) ([]string, error) {
	var candidates []string

	matches, err := filepath.Glob(filepath.Join(r.workDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	candidates = append(candidates, matches...)

	if !strings.ContainsRune(pattern, filepath.Separator) {
		nested, err := filepath.Glob(filepath.Join(r.workDir, "*", pattern))
		if err == nil {
			candidates = append(candidates, nested...)
		}
	}

	var files []string
	for _, match := range candidates {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(r.workDir, match)
		if err != nil {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		skip := false
		for _, part := range parts[:len(parts)-1] {
			if skipDir(part) {
				skip = true
				break
			}
		}
		if !skip {
			files = append(files, rel)
		}
	}
	sort.Strings(files)
	return files, nil
}

func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor", "__pycache__", ".venv":
		return true
	}
	return false
}
