// Package models holds the transient records shared across newsdesk packages.
package models

import "time"

// --- Syndication ---

// Field is a single (name, value) pair kept in document order.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Article is one normalized RSS item or Atom entry.
// Known slots are empty strings when absent; Extra holds every other child.
type Article struct {
	Title       string    `json:"title,omitempty"`
	Link        string    `json:"link,omitempty"`
	Description string    `json:"description,omitempty"`
	PublishedAt string    `json:"pubDate,omitempty"` // raw upstream text
	Author      string    `json:"author,omitempty"`
	Category    string    `json:"category,omitempty"`
	GUID        string    `json:"guid,omitempty"`
	Extra       []Field   `json:"extra,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitzero"` // zero when the date did not parse
}

// KnownFields returns the non-empty known slots in display order,
// description excluded.
func (a Article) KnownFields() []Field {
	candidates := []Field{
		{Name: "title", Value: a.Title},
		{Name: "link", Value: a.Link},
		{Name: "pubDate", Value: a.PublishedAt},
		{Name: "author", Value: a.Author},
		{Name: "category", Value: a.Category},
		{Name: "guid", Value: a.GUID},
	}
	out := candidates[:0]
	for _, f := range candidates {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

// Unix returns the sort key: seconds since epoch, or 0 when unknown.
func (a Article) Unix() int64 {
	if a.Timestamp.IsZero() {
		return 0
	}
	return a.Timestamp.Unix()
}
