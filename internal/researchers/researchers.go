// Package researchers extracts think-tank researcher listings from a
// markdown directory into CSV rows.
//
// The directory is organised as "## Think Tank" sections containing
// "### Topic" subsections whose "- " bullets name one person each,
// usually as "Name - Title - email".
package researchers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/phuslu/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/seenimoa/newsdesk/pkg/models"
)

// Header is the CSV header row.
var Header = []string{"name", "think_tank", "topic", "email"}

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Bullets containing any of these are section notes, not people.
var skipKeywords = []string{
	"note:", "complete", "comprehensive", "leadership &", "leadership and",
	"board of directors", "research conducted", "usage applications",
	"recommendations for maintenance", "positions", "programs", "leadership",
}

var skipPrefixes = []string{"multiple", "positions", "###", "##"}

// Parse walks the markdown and returns one row per person bullet, in
// document order.
func Parse(source []byte) []models.Researcher {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var (
		thinkTank, topic string
		rows             []models.Researcher
	)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			if n.Parent() == nil || n.Parent().Kind() != ast.KindDocument {
				return ast.WalkSkipChildren, nil
			}
			switch n.Level {
			case 2:
				thinkTank = collapse(firstLine(n, source))
				topic = ""
			case 3:
				topic = collapse(firstLine(n, source))
			}
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			list, ok := n.Parent().(*ast.List)
			if !ok || list.Marker != '-' {
				return ast.WalkContinue, nil
			}
			block := n.FirstChild()
			if block == nil || (block.Kind() != ast.KindTextBlock && block.Kind() != ast.KindParagraph) {
				return ast.WalkContinue, nil
			}
			if r, ok := parseItem(strings.TrimSpace(firstLine(block, source))); ok {
				r.ThinkTank, r.Topic = thinkTank, topic
				rows = append(rows, r)
			}
		}
		return ast.WalkContinue, nil
	})
	return rows
}

// parseItem applies the person heuristics to one bullet's text.
func parseItem(item string) (models.Researcher, bool) {
	lower := strings.ToLower(item)
	for _, k := range skipKeywords {
		if strings.Contains(lower, k) {
			return models.Researcher{}, false
		}
	}

	name := item
	if before, _, found := strings.Cut(item, " - "); found {
		name = strings.TrimSpace(before)
	}
	lowerName := strings.ToLower(name)
	for _, p := range skipPrefixes {
		if strings.HasPrefix(lowerName, p) {
			return models.Researcher{}, false
		}
	}
	if !strings.Contains(name, " ") || !hasLetter(name) {
		return models.Researcher{}, false
	}

	return models.Researcher{Name: name, Email: emailPattern.FindString(item)}, true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return true
		}
	}
	return false
}

func firstLine(n ast.Node, source []byte) string {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return ""
	}
	seg := lines.At(0)
	return string(seg.Value(source))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WriteCSV writes the header followed by one record per row.
func WriteCSV(w io.Writer, rows []models.Researcher) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Name, r.ThinkTank, r.Topic, r.Email}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Convert parses the markdown file at inPath and writes the CSV to
// outPath, returning the number of records.
func Convert(inPath, outPath string) (int, error) {
	source, err := os.ReadFile(inPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("input file not found: %s", inPath)
		}
		return 0, fmt.Errorf("read %s: %w", inPath, err)
	}
	rows := Parse(source)

	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return 0, fmt.Errorf("write %s: %w", outPath, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", outPath, err)
	}

	log.Info().Str("input", inPath).Str("output", outPath).Int("records", len(rows)).Msg("researchers exported")
	return len(rows), nil
}
