// Package catalog holds the fixed, ordered registry of selectable sources.
package catalog

import (
	"fmt"
	"strings"
)

// Descriptor identifies one selectable source. An empty URL marks a
// virtual feed whose content is produced by something other than a
// syndication fetch.
type Descriptor struct {
	Abbr  string `json:"abbr"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Virtual reports whether the descriptor has no syndication URL.
func (d Descriptor) Virtual() bool { return d.URL == "" }

// Catalog is an immutable ordered list of descriptors. Positions are
// 1-based for display and numeric selection.
type Catalog struct {
	entries []Descriptor
	byAbbr  map[string]int
}

// New builds a catalog, rejecting blank or duplicate abbreviations
// (compared case-insensitively).
func New(entries []Descriptor) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Descriptor, len(entries)),
		byAbbr:  make(map[string]int, len(entries)),
	}
	copy(c.entries, entries)
	for i, d := range c.entries {
		key := strings.ToUpper(strings.TrimSpace(d.Abbr))
		if key == "" {
			return nil, fmt.Errorf("catalog entry %d: empty abbreviation", i+1)
		}
		if prev, ok := c.byAbbr[key]; ok {
			return nil, fmt.Errorf("catalog entry %d: abbreviation %q already used by entry %d", i+1, d.Abbr, prev+1)
		}
		c.byAbbr[key] = i
	}
	return c, nil
}

// MustNew is New that panics on error, for static tables.
func MustNew(entries []Descriptor) *Catalog {
	c, err := New(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// At returns the entry at 1-based position n.
func (c *Catalog) At(n int) (Descriptor, bool) {
	if n < 1 || n > len(c.entries) {
		return Descriptor{}, false
	}
	return c.entries[n-1], true
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Descriptor {
	out := make([]Descriptor, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup finds an entry by abbreviation, case-insensitively.
func (c *Catalog) Lookup(abbr string) (Descriptor, bool) {
	i, ok := c.byAbbr[strings.ToUpper(strings.TrimSpace(abbr))]
	if !ok {
		return Descriptor{}, false
	}
	return c.entries[i], true
}

// Feeds returns the non-virtual entries in order.
func (c *Catalog) Feeds() []Descriptor {
	out := make([]Descriptor, 0, len(c.entries))
	for _, d := range c.entries {
		if !d.Virtual() {
			out = append(out, d)
		}
	}
	return out
}
