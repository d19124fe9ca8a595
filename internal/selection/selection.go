// Package selection turns free-form user input into a typed Selection
// against a catalog. Resolution is pure and performs no I/O.
package selection

import (
	"strconv"
	"strings"

	"github.com/seenimoa/newsdesk/internal/catalog"
)

// Mode is the kind of view a selection resolves to.
type Mode int

const (
	ModeInvalid Mode = iota
	ModeFeed
	ModeStock
	ModeCommodities
	ModeLiveMap
)

func (m Mode) String() string {
	switch m {
	case ModeFeed:
		return "feed"
	case ModeStock:
		return "stock"
	case ModeCommodities:
		return "commodities"
	case ModeLiveMap:
		return "livemap"
	default:
		return "invalid"
	}
}

// MarshalText renders the mode name in JSON payloads.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Selection is the resolved outcome of user input. Symbol is only set for
// ModeStock and is always upper-case and non-empty there.
type Selection struct {
	Mode   Mode               `json:"mode"`
	Feed   catalog.Descriptor `json:"feed"`
	Symbol string             `json:"symbol,omitempty"`
}

// Valid reports whether the selection names something to show.
func (s Selection) Valid() bool { return s.Mode != ModeInvalid }

// Request is the structured form of a selection, as accepted over HTTP.
// Input takes precedence; otherwise Feed and Symbol are joined.
type Request struct {
	Input  string `json:"input,omitempty"`
	Feed   string `json:"feed,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// Text returns the free-text equivalent of the request.
func (r Request) Text() string {
	if strings.TrimSpace(r.Input) != "" {
		return r.Input
	}
	return strings.TrimSpace(r.Feed + " " + r.Symbol)
}

type constructor func(d catalog.Descriptor, args []string) Selection

// modes maps upper-cased abbreviations to their selection constructor.
// Anything not listed is a plain feed.
var modes = map[string]constructor{
	catalog.AbbrLiveMap: func(d catalog.Descriptor, _ []string) Selection {
		return Selection{Mode: ModeLiveMap, Feed: d}
	},
	catalog.AbbrCommodities: func(d catalog.Descriptor, _ []string) Selection {
		return Selection{Mode: ModeCommodities, Feed: d}
	},
	catalog.AbbrStock: func(d catalog.Descriptor, args []string) Selection {
		if len(args) == 0 {
			return Selection{}
		}
		return Selection{Mode: ModeStock, Feed: d, Symbol: strings.ToUpper(args[0])}
	},
}

func dispatch(d catalog.Descriptor, args []string) Selection {
	if ctor, ok := modes[strings.ToUpper(d.Abbr)]; ok {
		return ctor(d, args)
	}
	return Selection{Mode: ModeFeed, Feed: d}
}

// Resolve maps input onto the catalog. The first whitespace token is the
// selector and the rest are arguments. Matching order: numeric position,
// then exact abbreviation or exact full title, then title substring.
func Resolve(input string, c *catalog.Catalog) Selection {
	text := strings.TrimSpace(input)
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return Selection{}
	}
	selector, args := tokens[0], tokens[1:]

	if isDigits(selector) {
		n, err := strconv.Atoi(selector)
		if err != nil {
			return Selection{}
		}
		d, ok := c.At(n)
		if !ok {
			return Selection{}
		}
		return dispatch(d, args)
	}

	lowerSel := strings.ToLower(selector)
	lowerText := strings.ToLower(text)
	entries := c.Entries()

	for _, d := range entries {
		if strings.ToLower(d.Abbr) == lowerSel {
			return dispatch(d, args)
		}
		if strings.ToLower(d.Title) == lowerText {
			// title matches keep the trailing tokens as arguments
			return dispatch(d, args)
		}
	}

	for _, d := range entries {
		if strings.Contains(strings.ToLower(d.Title), lowerSel) {
			return dispatch(d, args)
		}
	}
	return Selection{}
}

// ResolveRequest resolves the structured form of a selection.
func ResolveRequest(r Request, c *catalog.Catalog) Selection {
	return Resolve(r.Text(), c)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
