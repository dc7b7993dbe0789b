package content

import (
	"strings"
	"sync"
	"testing"
)

func TestRendererRun(t *testing.T) {
	renderer := NewRenderer(0)

	html, err := renderer.Run("# Guía\n\nVisita https://example.com\n\n- [x] hecho\n\n<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.Contains(html, "<h1") || !strings.Contains(html, "Guía</h1>") {
		t.Errorf("Expected heading in output, got %s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("Expected script to be stripped, got %s", html)
	}
	if !strings.Contains(html, `href="https://example.com"`) {
		t.Errorf("Expected linkified URL, got %s", html)
	}
	if !strings.Contains(html, "nofollow") {
		t.Errorf("Expected nofollow on links, got %s", html)
	}
	if !strings.Contains(html, `target="_blank"`) {
		t.Errorf("Expected target blank on links, got %s", html)
	}
}

func TestRendererTables(t *testing.T) {
	renderer := NewRenderer(4)

	html, err := renderer.Run("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(html, "<table>") || !strings.Contains(html, "<td>2</td>") {
		t.Errorf("Expected GFM table, got %s", html)
	}
}

func TestRendererCache(t *testing.T) {
	renderer := NewRenderer(1)

	first, err := renderer.Run("**uno**")
	if err != nil {
		t.Fatal(err)
	}
	if renderer.cache.Len() != 1 {
		t.Errorf("Expected 1 cached entry, got %d", renderer.cache.Len())
	}

	second, err := renderer.Run("**uno**")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Expected cached output %q, got %q", first, second)
	}

	if _, err := renderer.Run("**dos**"); err != nil {
		t.Fatal(err)
	}
	if renderer.cache.Len() != 1 {
		t.Errorf("Expected cache bounded to 1 entry, got %d", renderer.cache.Len())
	}
}

func TestRendererConcurrent(t *testing.T) {
	renderer := NewRenderer(8)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			markdown := strings.Repeat("texto ", i+1)
			if _, err := renderer.Run(markdown); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()
}
