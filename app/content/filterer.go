package content

import (
	"fmt"
	"log/slog"
	"strings"
)

// FilterRule keeps or drops ideas by keyword. Matching is case and
// diacritic insensitive.
type FilterRule struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

var FilterFields = map[string]bool{
	"title":       true,
	"description": true,
	"keyword":     true,
	"types":       true,
	"funnel":      true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

func (f *Filterer) Run(items []ContentItem, rules []FilterRule) []ContentItem {
	if len(rules) == 0 {
		return items
	}

	kept := make([]ContentItem, 0, len(items))
	for _, item := range items {
		if excluded, reason := f.applyFilters(item, rules); excluded {
			slog.Debug("Idea filtered", "title", item.Title, "reason", reason)
			continue
		}
		kept = append(kept, item)
	}

	return kept
}

func (f *Filterer) applyFilters(item ContentItem, rules []FilterRule) (bool, string) {
	for _, rule := range rules {
		value := f.getFieldValue(item, rule.Field)

		for _, exclude := range rule.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("excluded by %s filter: contains '%s'", rule.Field, exclude)
			}
		}

		if len(rule.Includes) > 0 {
			matched := false
			for _, include := range rule.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("excluded by %s filter: does not contain any of %v", rule.Field, rule.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(foldKey(value), foldKey(pattern))
}

func (f *Filterer) getFieldValue(item ContentItem, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "keyword":
		return item.Keyword
	case "types":
		return item.ContentTypes
	case "funnel":
		return item.FunnelStage
	default:
		return ""
	}
}
