package content

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

const DefaultRenderCacheSize = 256

// Renderer turns generated article markdown into sanitized HTML previews.
// It is safe for concurrent use.
type Renderer struct {
	engine goldmark.Markdown
	policy *bluemonday.Policy
	cache  *lru.Cache[string, string]
}

func NewRenderer(cacheSize int) *Renderer {
	if cacheSize <= 0 {
		cacheSize = DefaultRenderCacheSize
	}

	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		slog.Warn("Render cache disabled", "size", cacheSize, "error", err)
	}

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: policy,
		cache:  cache,
	}
}

func (r *Renderer) Run(markdown string) (string, error) {
	key := r.cacheKey(markdown)
	if r.cache != nil {
		if html, ok := r.cache.Get(key); ok {
			return html, nil
		}
	}

	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	html := r.policy.Sanitize(buf.String())

	if r.cache != nil {
		r.cache.Add(key, html)
	}

	return html, nil
}

func (r *Renderer) cacheKey(markdown string) string {
	hash := sha256.Sum256([]byte(markdown))
	return hex.EncodeToString(hash[:])
}
