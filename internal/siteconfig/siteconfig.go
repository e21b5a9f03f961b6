// Package siteconfig holds per-site extraction overrides and resolves the
// override that applies to a page URL.
package siteconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoMatchPatterns indicates a table entry without any match pattern.
	ErrNoMatchPatterns = errors.New("site entry has no match patterns")
	// ErrInvalidSelector indicates a selector that cascadia cannot compile.
	ErrInvalidSelector = errors.New("invalid selector")
	// ErrInvalidPattern indicates a match glob or author regex that does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// AuthorRegexPrefix marks an AuthorName entry as a regular expression run
// against the raw page markup instead of a CSS selector.
const AuthorRegexPrefix = "re:"

// WebsiteConfig is the override record for one site. Every field is optional.
type WebsiteConfig struct {
	// ContentElem selects the article root directly.
	ContentElem string `yaml:"contentElem" json:"contentElem"`
	// ExtractElems select fragments that are joined into the article root.
	ExtractElems []string `yaml:"extractElems" json:"extractElems"`
	// ExtractElemsJoiner is markup inserted between joined fragments.
	ExtractElemsJoiner string `yaml:"extractElemsJoiner" json:"extractElemsJoiner"`
	// ExcludeElems are removed from the article root before cleaning.
	ExcludeElems []string `yaml:"excludeElems" json:"excludeElems"`
	// IgnoreElements are removed from the whole document before scoring.
	IgnoreElements []string `yaml:"ignoreElements" json:"ignoreElements"`
	// AuthorName holds byline patterns, tried in order.
	AuthorName []string `yaml:"authorName" json:"authorName"`
	// TitleElem selects the element whose text is the title.
	TitleElem string `yaml:"titleElem" json:"titleElem"`
}

// IsZero reports whether no override is set.
func (c WebsiteConfig) IsZero() bool {
	return c.ContentElem == "" && len(c.ExtractElems) == 0 && c.ExtractElemsJoiner == "" &&
		len(c.ExcludeElems) == 0 && len(c.IgnoreElements) == 0 && len(c.AuthorName) == 0 &&
		c.TitleElem == ""
}

// Validate compiles every selector and author pattern of the record.
func (c WebsiteConfig) Validate() error {
	selectors := []string{c.ContentElem, c.TitleElem}
	selectors = append(selectors, c.ExtractElems...)
	selectors = append(selectors, c.ExcludeElems...)
	selectors = append(selectors, c.IgnoreElements...)
	for _, sel := range selectors {
		if sel == "" {
			continue
		}
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidSelector, sel, err)
		}
	}
	for _, author := range c.AuthorName {
		if expr, ok := strings.CutPrefix(author, AuthorRegexPrefix); ok {
			if _, err := regexp.Compile(expr); err != nil {
				return fmt.Errorf("%w %q: %w", ErrInvalidPattern, author, err)
			}
			continue
		}
		if _, err := cascadia.Compile(author); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidSelector, author, err)
		}
	}
	return nil
}

// Entry binds a WebsiteConfig to the URLs it applies to. A match pattern
// containing '*' or '?' is a glob tested against the host and the full URL;
// any other pattern is a substring of the host or the URL.
type Entry struct {
	Match         []string `yaml:"match" json:"match"`
	WebsiteConfig `yaml:",inline"`
}

type matcher struct {
	substr string
	glob   glob.Glob
}

func (m matcher) matches(host, full string) bool {
	if m.glob != nil {
		return m.glob.Match(host) || m.glob.Match(full)
	}
	return strings.Contains(host, m.substr) || strings.Contains(full, m.substr)
}

type compiledEntry struct {
	matchers []matcher
	config   WebsiteConfig
}

// Table is an ordered list of site overrides. The first matching entry wins.
type Table struct {
	entries []compiledEntry
}

// NewTable validates and compiles entries.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{entries: make([]compiledEntry, 0, len(entries))}
	for i, e := range entries {
		if len(e.Match) == 0 {
			return nil, fmt.Errorf("entry %d: %w", i, ErrNoMatchPatterns)
		}
		if err := e.WebsiteConfig.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		ce := compiledEntry{config: e.WebsiteConfig}
		for _, pattern := range e.Match {
			pattern = strings.ToLower(strings.TrimSpace(pattern))
			if pattern == "" {
				continue
			}
			if !strings.ContainsAny(pattern, "*?") {
				ce.matchers = append(ce.matchers, matcher{substr: pattern})
				continue
			}
			g, err := glob.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w %q: %w", i, ErrInvalidPattern, pattern, err)
			}
			ce.matchers = append(ce.matchers, matcher{glob: g})
		}
		if len(ce.matchers) == 0 {
			return nil, fmt.Errorf("entry %d: %w", i, ErrNoMatchPatterns)
		}
		t.entries = append(t.entries, ce)
	}
	return t, nil
}

// Parse decodes a table from YAML, or from JSON when format is "json".
func Parse(data []byte, format string) (*Table, error) {
	var entries []Entry
	var err error
	if strings.EqualFold(format, "json") {
		err = json.Unmarshal(data, &entries)
	} else {
		err = yaml.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("decode site table: %w", err)
	}
	return NewTable(entries)
}

// Load reads a table from path. Files ending in .json are decoded as JSON,
// everything else as YAML.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site table: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return Parse(data, format)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Resolve returns the override for rawURL, or the empty record when no entry
// matches. A nil table resolves everything to the empty record.
func (t *Table) Resolve(rawURL string) WebsiteConfig {
	if t == nil || rawURL == "" {
		return WebsiteConfig{}
	}
	full := strings.ToLower(rawURL)
	host := full
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Hostname())
	}
	for _, e := range t.entries {
		for _, m := range e.matchers {
			if m.matches(host, full) {
				return e.config
			}
		}
	}
	return WebsiteConfig{}
}
