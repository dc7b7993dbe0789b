package content

import (
	"cmp"
)

// Canonical SocialRow field keys
const (
	FieldDate          = "date"
	FieldChannel       = "channel"
	FieldFormat        = "format"
	FieldPillar        = "pillar"
	FieldTitle         = "title"
	FieldTopicTitle    = "topicTitle"
	FieldCopy          = "copy"
	FieldHashtags      = "hashtags"
	FieldCTA           = "cta"
	FieldAssetRequired = "assetRequired"
	FieldDuration      = "duration"
	FieldInstructions  = "instructions"
	FieldLinkUTM       = "linkUtm"
	FieldKPI           = "kpi"
	FieldOwner         = "owner"
	FieldStatus        = "status"
	FieldNotes         = "notes"
	FieldDay           = "day"
	FieldHook          = "hook"
	FieldObjective     = "objective"
)

// SocialRow is one row of a social calendar table. Keys are the canonical
// Field* constants, or the lower-cased header text for unknown columns.
type SocialRow map[string]string

type ContentItem struct {
	Date         string `json:"date,omitempty"` // first 10 characters of the source date
	Title        string `json:"title"`
	Description  string `json:"description"`
	Keyword      string `json:"keyword"`
	Volume       string `json:"volume,omitempty"`
	ContentTypes string `json:"contentTypes,omitempty"`
	FunnelStage  string `json:"funnelStage"`
}

type OutlineLevel string

const (
	LevelH1  OutlineLevel = "H1"
	LevelH2  OutlineLevel = "H2"
	LevelH3  OutlineLevel = "H3"
	LevelFAQ OutlineLevel = "FAQ"
)

type OutlineItem struct {
	Level       OutlineLevel `json:"level"`
	Title       string       `json:"title"`
	Instruction string       `json:"instruction,omitempty"`
}

// Record is the row shape the content store accepts, minus the client and
// execution identifiers that the caller adds.
type Record struct {
	Date     string `json:"date"`
	Channel  string `json:"channel"`
	Type     string `json:"type"`
	Format   string `json:"format"`
	Title    string `json:"title"`
	Copy     string `json:"copy"`
	CTA      string `json:"cta"`
	Hashtags string `json:"hashtags"`
}

const (
	RecordTypeIdea   = "idea"
	RecordTypeSocial = "social"
)

func (r SocialRow) Record() Record {
	return Record{
		Date:     r[FieldDate],
		Channel:  r[FieldChannel],
		Type:     cmp.Or(r[FieldPillar], RecordTypeSocial),
		Format:   r[FieldFormat],
		Title:    cmp.Or(r[FieldTitle], r[FieldTopicTitle]),
		Copy:     r[FieldCopy],
		CTA:      r[FieldCTA],
		Hashtags: r[FieldHashtags],
	}
}

func (c ContentItem) Record() Record {
	return Record{
		Date:     c.Date,
		Type:     RecordTypeIdea,
		Format:   c.ContentTypes,
		Title:    c.Title,
		Copy:     c.Description,
		Hashtags: c.Keyword,
	}
}
