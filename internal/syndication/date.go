package syndication

import (
	"net/mail"
	"strings"
	"time"
)

// zoneOffsets maps the named zones allowed by RFC 822 to numeric offsets.
var zoneOffsets = map[string]string{
	"UT":  "+0000",
	"UTC": "+0000",
	"GMT": "+0000",
	"Z":   "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// ParseDate parses an RFC 2822 date, falling back to RFC 3339.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := mail.ParseDate(numericZone(s)); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func numericZone(s string) string {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return s
	}
	if off, ok := zoneOffsets[strings.ToUpper(s[i+1:])]; ok {
		return s[:i+1] + off
	}
	return s
}

// itemTime reads the first pubDate or updated child. Anything
// unparseable yields the zero time.
func itemTime(item *Node) time.Time {
	for _, child := range item.Children {
		switch strings.ToLower(child.Local) {
		case "pubdate", "updated":
			t, _ := ParseDate(child.Text)
			return t
		}
	}
	return time.Time{}
}
