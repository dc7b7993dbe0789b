package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeAll(t *testing.T, out string) []map[string]any {
	t.Helper()

	var docs []map[string]any
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			t.Fatalf("Failed to decode output %q: %v", out, err)
		}
		docs = append(docs, doc)
	}
	return docs
}

func TestTableCommandKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, channel := range []string{"IG", "FB", "TikTok", "LinkedIn"} {
		paths = append(paths, writeFile(t, dir, channel+".md",
			"| Canal | Copy |\n|---|---|\n| "+channel+" | Hola |\n"))
	}

	out, err := runCommand(t, "", append([]string{"table"}, paths...)...)
	if err != nil {
		t.Fatalf("table command failed: %v", err)
	}

	docs := decodeAll(t, out)
	if len(docs) != len(paths) {
		t.Fatalf("Expected %d documents, got %d", len(paths), len(docs))
	}

	for i, doc := range docs {
		if doc["source"] != paths[i] {
			t.Errorf("Expected source %s at position %d, got %v", paths[i], i, doc["source"])
		}
		rows := doc["rows"].([]any)
		channel := rows[0].(map[string]any)["channel"]
		want := strings.TrimSuffix(filepath.Base(paths[i]), ".md")
		if channel != want {
			t.Errorf("Expected channel %s, got %v", want, channel)
		}
	}
}

func TestPayloadCommandReadsStdin(t *testing.T) {
	out, err := runCommand(t, `[{"titulo":"Guía SEO","keyword":"seo"}]`, "payload", "-")
	if err != nil {
		t.Fatalf("payload command failed: %v", err)
	}

	docs := decodeAll(t, out)
	if len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}

	if docs[0]["source"] != "-" {
		t.Errorf("Expected source '-', got %v", docs[0]["source"])
	}
	if docs[0]["strategy"] != "sequence" {
		t.Errorf("Expected strategy 'sequence', got %v", docs[0]["strategy"])
	}

	items := docs[0]["items"].([]any)
	if title := items[0].(map[string]any)["title"]; title != "Guía SEO" {
		t.Errorf("Expected title 'Guía SEO', got %v", title)
	}
}

func TestOutlineCommandFlags(t *testing.T) {
	out, err := runCommand(t, "sin encabezados", "outline", "--title", "Mi guía", "--lookahead", "5", "-")
	if err != nil {
		t.Fatalf("outline command failed: %v", err)
	}

	docs := decodeAll(t, out)

	var titles []string
	for _, item := range docs[0]["outline"].([]any) {
		titles = append(titles, item.(map[string]any)["title"].(string))
	}

	want := []string{"Mi guía", "Introducción", "Conclusión"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("Outline mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "article.md", "# Título\n\n[enlace](https://example.com)\n")

	out, err := runCommand(t, "", "render", path)
	if err != nil {
		t.Fatalf("render command failed: %v", err)
	}

	html := decodeAll(t, out)[0]["html"].(string)
	if !strings.Contains(html, "Título</h1>") {
		t.Errorf("Expected rendered heading, got %q", html)
	}
	if !strings.Contains(html, `rel="nofollow`) {
		t.Errorf("Expected nofollow link, got %q", html)
	}
}

func TestCommandMissingFile(t *testing.T) {
	_, err := runCommand(t, "", "table", filepath.Join(t.TempDir(), "missing.md"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !strings.Contains(err.Error(), "missing.md") {
		t.Errorf("Expected error to name the file, got %v", err)
	}
}

func TestCommandRequiresFiles(t *testing.T) {
	if _, err := runCommand(t, "", "table"); err == nil {
		t.Error("Expected error when no files are given")
	}
}
