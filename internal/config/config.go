// Package config manages application configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/roboco-io/isoanchor/internal/ir"
	"github.com/roboco-io/isoanchor/internal/normalize"
	"github.com/roboco-io/isoanchor/internal/parser"
	"github.com/roboco-io/isoanchor/internal/xref"
)

// Config represents the application configuration.
type Config struct {
	Numbering NumberingConfig   `yaml:"numbering"`
	Labels    map[string]string `yaml:"labels,omitempty"`
	Sections  SectionsConfig    `yaml:"sections"`
	Draft     bool              `yaml:"draft"`
	Log       LogConfig         `yaml:"log"`
	Store     StoreConfig       `yaml:"store"`
}

// NumberingConfig contains numbering engine options.
type NumberingConfig struct {
	AnnexStyle   string `yaml:"annex_style"`  // letter or number
	Hierarchical bool   `yaml:"hierarchical"` // per-clause figure/table/formula numbering
	Separator    string `yaml:"separator"`
}

// SectionsConfig maps reserved section titles to section kinds. Entries
// read from a file extend the built-in vocabulary.
type SectionsConfig struct {
	Reserved map[string]string `yaml:"reserved"`
}

// LogConfig contains logging options.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig contains the anchor store options.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	reserved := make(map[string]string)
	for title, kind := range defaultReserved() {
		reserved[title] = string(kind)
	}
	return &Config{
		Numbering: NumberingConfig{
			AnnexStyle:   string(xref.AnnexLetter),
			Hierarchical: false,
			Separator:    ".",
		},
		Sections: SectionsConfig{
			Reserved: reserved,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultReserved() map[string]ir.Kind {
	return normalize.DefaultReservedTitles()
}

// Validate checks option values that cannot be caught by YAML decoding.
func (c *Config) Validate() error {
	switch xref.AnnexStyle(c.Numbering.AnnexStyle) {
	case "", xref.AnnexLetter, xref.AnnexNumber:
	default:
		return fmt.Errorf("invalid numbering.annex_style %q (want letter or number)", c.Numbering.AnnexStyle)
	}
	if _, err := c.ReservedTitles(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	return nil
}

// XRefOptions returns the numbering engine options.
func (c *Config) XRefOptions() xref.Options {
	return xref.Options{
		AnnexStyle:   xref.AnnexStyle(c.Numbering.AnnexStyle),
		Hierarchical: c.Numbering.Hierarchical,
		Separator:    c.Numbering.Separator,
		Labels:       c.Labels,
	}
}

// ParserOptions returns the loader options.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{Draft: c.Draft}
}

// ReservedTitles returns the reserved section vocabulary. An empty map in
// the configuration means the built-in vocabulary.
func (c *Config) ReservedTitles() (map[string]ir.Kind, error) {
	if len(c.Sections.Reserved) == 0 {
		return defaultReserved(), nil
	}
	out := make(map[string]ir.Kind, len(c.Sections.Reserved))
	for title, kind := range c.Sections.Reserved {
		k := ir.Kind(kind)
		if !k.IsReservedSection() {
			return nil, fmt.Errorf("sections.reserved[%q]: %q is not a reserved section kind", title, kind)
		}
		out[title] = k
	}
	return out, nil
}

// ApplyEnv overrides settings from ISOANCHOR_* environment variables.
func (c *Config) ApplyEnv() {
	c.Log.Level = GetEnvOrDefault("ISOANCHOR_LOG_LEVEL", c.Log.Level)
	c.Log.Format = GetEnvOrDefault("ISOANCHOR_LOG_FORMAT", c.Log.Format)
	c.Store.Path = GetEnvOrDefault("ISOANCHOR_DB", c.Store.Path)
	if GetEnvBool("ISOANCHOR_HIERARCHICAL") {
		c.Numbering.Hierarchical = true
	}
}
