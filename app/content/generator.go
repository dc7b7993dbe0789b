package content

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/content-comb/app/cfg"
	"github.com/lysyi3m/content-comb/app/database"
)

// Calendar describes the channel of a client's content calendar feed.
type Calendar struct {
	ClientID    string
	Title       string
	Description string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(calendar Calendar, rows []database.ContentRow) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	selfLink := g.calendarURL(calendar.ClientID)

	g.writeElement(&buf, "title", cmp.Or(calendar.Title, fmt.Sprintf("Content calendar: %s", calendar.ClientID)), 4)
	g.writeElement(&buf, "link", selfLink, 4)
	g.writeElement(&buf, "description",
		cmp.Or(calendar.Description, fmt.Sprintf("Planned content for %s", calendar.ClientID)), 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	var lastBuildDate time.Time
	for _, row := range rows {
		if row.CreatedAt.After(lastBuildDate) {
			lastBuildDate = row.CreatedAt
		}
	}
	if lastBuildDate.IsZero() {
		lastBuildDate = time.Now()
	}
	lastBuildDate = lastBuildDate.In(time.Local)

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Content-Comb/%s", cfg.Get().Version), 4)

	for _, row := range rows {
		g.writeItem(&buf, row)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, row database.ContentRow) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(fmt.Sprintf("row-%d", row.ID)))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", cmp.Or(row.Title, row.Channel, "Untitled"), 6)
	g.writeElement(buf, "description", cmp.Or(row.Copy, "No copy available"), 6)

	if date, err := time.ParseInLocation("2006-01-02", row.Date, time.Local); err == nil {
		g.writeElement(buf, "pubDate", date.Format(time.RFC1123Z), 6)
	}

	for _, category := range []string{row.Channel, row.Format, row.Type, row.Hashtags} {
		g.writeElement(buf, "category", category, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) calendarURL(clientID string) string {
	if cfg.Get().BaseUrl != "" {
		return fmt.Sprintf("%s/calendars/%s", cfg.Get().BaseUrl, clientID)
	}
	return fmt.Sprintf("http://localhost:%s/calendars/%s", cfg.Get().Port, clientID)
}
