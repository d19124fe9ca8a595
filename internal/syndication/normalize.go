package syndication

import (
	"html"
	"strings"

	"github.com/seenimoa/newsdesk/pkg/models"
)

// knownSlots are the tag names captured into dedicated Article fields.
var knownSlots = []string{"title", "link", "description", "pubDate", "author", "category", "guid"}

func isKnownSlot(name string) bool {
	for _, k := range knownSlots {
		if k == name {
			return true
		}
	}
	return false
}

// CleanText decodes HTML entities and collapses whitespace runs to single
// spaces, trimming both ends.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

// Normalize flattens one item or entry element into an Article.
// Known slots are first-wins; every other non-empty child is kept in
// document order as an extra field. It never fails.
func Normalize(item *Node) models.Article {
	slots := make(map[string]string, len(knownSlots))

	for _, child := range item.Children {
		name := child.Local
		text := CleanText(child.Text)

		if isKnownSlot(name) && slots[name] == "" {
			slots[name] = text
		}
		if strings.EqualFold(name, "creator") && slots["author"] == "" {
			slots["author"] = text
		}
		if name == "link" && text == "" && slots["link"] == "" {
			if href := child.Attr("href"); href != "" {
				slots["link"] = href
			}
		}
	}

	a := models.Article{
		Title:       slots["title"],
		Link:        slots["link"],
		Description: slots["description"],
		PublishedAt: slots["pubDate"],
		Author:      slots["author"],
		Category:    slots["category"],
		GUID:        slots["guid"],
	}

	for _, child := range item.Children {
		name := child.Local
		if slots[name] != "" && isKnownSlot(name) {
			continue
		}
		text := CleanText(child.Text)
		if text == "" && len(child.Attrs) > 0 {
			text = formatAttrs(child.Attrs)
		}
		if text != "" {
			a.Extra = append(a.Extra, models.Field{Name: name, Value: text})
		}
	}
	return a
}

func formatAttrs(attrs []Attr) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.Name + `="` + a.Value + `"`
	}
	return strings.Join(parts, " ")
}
