package content

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedReader turns RSS, Atom and JSON feeds into content ideas.
type FeedReader struct {
	gofeedParser *gofeed.Parser
}

func NewFeedReader() *FeedReader {
	return &FeedReader{
		gofeedParser: gofeed.NewParser(),
	}
}

func (r *FeedReader) Run(data []byte) ([]ContentItem, error) {
	feed, err := r.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]ContentItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, r.normalizeItem(item))
	}

	return items, nil
}

func (r *FeedReader) normalizeItem(item *gofeed.Item) ContentItem {
	normalized := ContentItem{
		Title:       strings.TrimSpace(item.Title),
		Description: strings.TrimSpace(cmp.Or(item.Description, item.Content)),
		Keyword:     strings.Join(item.Categories, ", "),
	}

	published := cmp.Or(item.PublishedParsed, item.UpdatedParsed)
	if published != nil {
		normalized.Date = published.Format("2006-01-02")
	}

	if normalized.Title == "" {
		normalized.Title = item.Link
	}

	return normalized
}
