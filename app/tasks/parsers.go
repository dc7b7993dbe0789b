package tasks

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/lysyi3m/content-comb/app/content"
	"github.com/lysyi3m/content-comb/app/database"
)

// Parsers bundles the content components a workflow response goes through.
type Parsers struct {
	Normalizer  *content.PayloadNormalizer
	TableParser *content.TableParser
	Outline     *content.OutlineExtractor
	Reference   *content.ReferenceExtractor
	FeedReader  *content.FeedReader
	Filterer    *content.Filterer
}

func NewParsers(outlineLookahead int) *Parsers {
	return &Parsers{
		Normalizer:  content.NewPayloadNormalizer(),
		TableParser: content.NewTableParser(),
		Outline:     content.NewOutlineExtractor(content.OutlineOptions{Lookahead: outlineLookahead}),
		Reference:   content.NewReferenceExtractor(),
		FeedReader:  content.NewFeedReader(),
		Filterer:    content.NewFilterer(),
	}
}

func rowInput(record content.Record, source any) database.RowInput {
	row := database.RowInput{
		Date:     record.Date,
		Channel:  record.Channel,
		Type:     record.Type,
		Format:   record.Format,
		Title:    record.Title,
		Copy:     record.Copy,
		CTA:      record.CTA,
		Hashtags: record.Hashtags,
	}

	if payload, err := json.Marshal(source); err == nil {
		row.Payload = string(payload)
	}
	return row
}

func ideaRows(items []content.ContentItem) []database.RowInput {
	rows := make([]database.RowInput, 0, len(items))
	for _, item := range items {
		rows = append(rows, rowInput(item.Record(), item))
	}
	return rows
}

func socialRows(table []content.SocialRow) []database.RowInput {
	rows := make([]database.RowInput, 0, len(table))
	for _, row := range table {
		rows = append(rows, rowInput(row.Record(), row))
	}
	return rows
}

// contentHash identifies an imported idea across runs of the same feed.
func contentHash(item content.ContentItem) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", item.Title, item.Date)))
	return hex.EncodeToString(hash[:])
}

// RecordRows converts records submitted directly by a client.
func RecordRows(records []content.Record) []database.RowInput {
	rows := make([]database.RowInput, 0, len(records))
	for _, record := range records {
		rows = append(rows, rowInput(record, record))
	}
	return rows
}
