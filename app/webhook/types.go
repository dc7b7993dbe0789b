package webhook

import (
	"time"

	"github.com/lysyi3m/content-comb/app/content"
)

// Workflow kinds decide how a webhook response is parsed.
const (
	KindIdeas   = "ideas"
	KindSocial  = "social"
	KindOutline = "outline"
	KindArticle = "article"
	KindFeed    = "feed"
)

var validKinds = map[string]bool{
	KindIdeas:   true,
	KindSocial:  true,
	KindOutline: true,
	KindArticle: true,
	KindFeed:    true,
}

type Config struct {
	Name     string               // Derived from filename (without .yml extension)
	URL      string               `yaml:"url"`
	Kind     string               `yaml:"kind"`
	ClientID string               `yaml:"client_id"` // feed workflows only
	Headers  map[string]string    `yaml:"headers"`
	Settings ConfigSettings       `yaml:"settings"`
	Filters  []content.FilterRule `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	Timeout         int  `yaml:"timeout"`          // seconds
	RefreshInterval int  `yaml:"refresh_interval"` // seconds, feed workflows only
	MaxItems        int  `yaml:"max_items"`
}

func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Settings.Timeout) * time.Second
}

func (c *Config) RefreshDuration() time.Duration {
	return time.Duration(c.Settings.RefreshInterval) * time.Second
}

type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
}
