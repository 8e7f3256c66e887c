package retrieval

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codefionn/codeflink/internal/logger"
)

// Snippet is one piece of workspace context relevant to a query.
type Snippet struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Content string `json:"content"`
	Score   int    `json:"score"`
}

// Retriever finds workspace context for a prompt before it is sent to a
// model.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]Snippet, error)
}

// FileRetriever scans source files under a root directory and scores lines
// by how many query terms they contain. It needs no index; repositories at
// the scale of an interactive session are cheap to scan on demand.
type FileRetriever struct {
	root       string
	extensions map[string]bool
}

// NewFileRetriever creates a retriever over root. Only source and config
// file extensions are scanned.
func NewFileRetriever(root string) (*FileRetriever, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve retrieval root: %w", err)
	}

	return &FileRetriever{
		root: abs,
		extensions: map[string]bool{
			".go": true, ".py": true, ".js": true, ".ts": true,
			".java": true, ".c": true, ".h": true, ".cpp": true,
			".rs": true, ".rb": true, ".php": true, ".sh": true,
			".md": true, ".yaml": true, ".yml": true, ".json": true,
			".toml": true, ".sql": true,
		},
	}, nil
}

// Retrieve returns the highest scoring snippets for the query, capped at
// limit. A query with no usable terms yields no snippets.
func (r *FileRetriever) Retrieve(ctx context.Context, query string, limit int) ([]Snippet, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var snippets []Snippet
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !r.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			rel = path
		}

		for i, line := range strings.Split(string(data), "\n") {
			score := scoreLine(line, terms)
			if score > 0 {
				snippets = append(snippets, Snippet{
					Path:    rel,
					Line:    i + 1,
					Content: strings.TrimSpace(line),
					Score:   score,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("retrieval walk failed: %w", err)
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Score > snippets[j].Score
	})
	if limit > 0 && len(snippets) > limit {
		snippets = snippets[:limit]
	}

	logger.Debug("retrieved %d snippets for query terms %v", len(snippets), terms)
	return snippets, nil
}

// Format renders snippets as a context block for prompt assembly.
func Format(snippets []Snippet) string {
	if len(snippets) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Relevant workspace context:\n")
	for _, s := range snippets {
		fmt.Fprintf(&sb, "%s:%d: %s\n", s.Path, s.Line, s.Content)
	}
	return sb.String()
}

// queryTerms lowercases and splits the query, dropping terms too short to
// be selective.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, `.,;:"'()[]{}?!`)
		if len(f) >= 3 {
			terms = append(terms, f)
		}
	}
	return terms
}

func scoreLine(line string, terms []string) int {
	lowered := strings.ToLower(line)
	score := 0
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			score++
		}
	}
	return score
}

func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor", "__pycache__", ".venv":
		return true
	}
	return strings.HasPrefix(name, "_")
}
