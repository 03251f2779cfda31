package languages

import (
	"sort"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// Catalog is an immutable snapshot of the language codes a translator supports.
// Codes are matched exactly, including case.
type Catalog struct {
	entries map[string]pipeline.Language
}

// Target is a language code that was verified against a Catalog.
// The zero value is not a valid target.
type Target struct {
	code string
}

// Code returns the verified language code
func (t Target) Code() string {
	return t.code
}

// IsZero reports whether the target was never verified
func (t Target) IsZero() bool {
	return t.code == ""
}

// NewCatalog builds a catalog from the given entries. Empty codes are skipped
// and later duplicates replace earlier ones.
func NewCatalog(langs []pipeline.Language) *Catalog {
	entries := make(map[string]pipeline.Language, len(langs))
	for _, l := range langs {
		if l.Code == "" {
			continue
		}
		entries[l.Code] = l
	}
	return &Catalog{entries: entries}
}

// Validate reports whether code is a member of the catalog
func (c *Catalog) Validate(code string) bool {
	if c == nil {
		return false
	}
	_, ok := c.entries[code]
	return ok
}

// Lookup returns the verified target for code
func (c *Catalog) Lookup(code string) (Target, bool) {
	if !c.Validate(code) {
		return Target{}, false
	}
	return Target{code: code}, true
}

// Language returns the catalog entry for code
func (c *Catalog) Language(code string) (pipeline.Language, bool) {
	if c == nil {
		return pipeline.Language{}, false
	}
	l, ok := c.entries[code]
	return l, ok
}

// Len returns the number of supported languages
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Languages returns all entries sorted by code
func (c *Catalog) Languages() []pipeline.Language {
	if c == nil {
		return nil
	}
	out := make([]pipeline.Language, 0, len(c.entries))
	for _, l := range c.entries {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Codes returns all codes sorted
func (c *Catalog) Codes() []string {
	langs := c.Languages()
	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = l.Code
	}
	return codes
}
