package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFeedReaderRun(t *testing.T) {
	reader := NewFeedReader()

	data := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Inspiración</title>
    <link>https://blog.example.com</link>
    <description>Ideas</description>
    <item>
      <title>Tendencias 2024</title>
      <link>https://blog.example.com/tendencias</link>
      <description>Lo que viene</description>
      <pubDate>Mon, 15 Jan 2024 10:00:00 +0000</pubDate>
      <category>marketing</category>
      <category>redes</category>
    </item>
    <item>
      <link>https://blog.example.com/sin-titulo</link>
    </item>
  </channel>
</rss>`

	items, err := reader.Run([]byte(data))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := []ContentItem{
		{Date: "2024-01-15", Title: "Tendencias 2024", Description: "Lo que viene", Keyword: "marketing, redes"},
		{Title: "https://blog.example.com/sin-titulo"},
	}
	if diff := cmp.Diff(expected, items); diff != "" {
		t.Errorf("Unexpected items (-want +got):\n%s", diff)
	}
}

func TestFeedReaderInvalidData(t *testing.T) {
	reader := NewFeedReader()

	if _, err := reader.Run([]byte("not a feed")); err == nil {
		t.Error("Expected error for invalid feed data")
	}
}
