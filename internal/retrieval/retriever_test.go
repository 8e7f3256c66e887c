package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRetrieveFindsMatchingLines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "server.go", "package main\n\nfunc startServer(addr string) error {\n\treturn nil\n}\n")
	writeFile(t, dir, "readme.md", "This project has no server docs yet.\n")

	retriever, err := NewFileRetriever(dir)
	if err != nil {
		t.Fatalf("NewFileRetriever returned error: %v", err)
	}

	snippets, err := retriever.Retrieve(context.Background(), "where is the server started", 10)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(snippets) == 0 {
		t.Fatal("expected at least one snippet")
	}

	found := false
	for _, s := range snippets {
		if s.Path == "server.go" && strings.Contains(s.Content, "startServer") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected server.go snippet, got %+v", snippets)
	}
}

func TestRetrieveRanksByTermCount(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "// cache eviction policy for the response cache\nvar x int\n")
	writeFile(t, dir, "b.go", "// an unrelated eviction note\n")

	retriever, err := NewFileRetriever(dir)
	if err != nil {
		t.Fatal(err)
	}

	snippets, err := retriever.Retrieve(context.Background(), "cache eviction", 10)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(snippets) < 2 {
		t.Fatalf("expected 2 snippets, got %d", len(snippets))
	}
	if snippets[0].Path != "a.go" {
		t.Fatalf("two-term match should rank first, got %s", snippets[0].Path)
	}
	if snippets[0].Score <= snippets[1].Score {
		t.Fatalf("scores not ordered: %d <= %d", snippets[0].Score, snippets[1].Score)
	}
}

func TestRetrieveHonorsLimit(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString("handler line\n")
	}
	writeFile(t, dir, "many.go", sb.String())

	retriever, err := NewFileRetriever(dir)
	if err != nil {
		t.Fatal(err)
	}

	snippets, err := retriever.Retrieve(context.Background(), "handler", 3)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(snippets) != 3 {
		t.Fatalf("expected 3 snippets, got %d", len(snippets))
	}
}

func TestRetrieveSkipsHiddenAndVendoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, filepath.Join(".git", "hook.go"), "secret handler\n")
	writeFile(t, dir, filepath.Join("vendor", "dep.go"), "vendored handler\n")
	writeFile(t, dir, "main.go", "real handler\n")

	retriever, err := NewFileRetriever(dir)
	if err != nil {
		t.Fatal(err)
	}

	snippets, err := retriever.Retrieve(context.Background(), "handler", 10)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	for _, s := range snippets {
		if strings.Contains(s.Path, ".git") || strings.Contains(s.Path, "vendor") {
			t.Fatalf("should not scan %s", s.Path)
		}
	}
	if len(snippets) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(snippets))
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n")

	retriever, err := NewFileRetriever(dir)
	if err != nil {
		t.Fatal(err)
	}

	snippets, err := retriever.Retrieve(context.Background(), "a an of", 10)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(snippets) != 0 {
		t.Fatalf("short terms should yield nothing, got %d", len(snippets))
	}
}

func TestFormat(t *testing.T) {
	out := Format([]Snippet{
		{Path: "a.go", Line: 3, Content: "func X() {}"},
	})
	if !strings.Contains(out, "a.go:3: func X() {}") {
		t.Fatalf("unexpected format output %q", out)
	}

	if Format(nil) != "" {
		t.Fatal("empty snippets should format to empty string")
	}
}
