package ipo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// detailSelectors locate the main content container of a detail page,
// skipping sidebar and navigation noise.
const detailSelectors = ".entry-content, .post-content, article"

// FlattenBody reduces a detail page to line-oriented plain text for the
// section scanner. When no known content container matches, the whole
// document is run through readability as a fallback.
func FlattenBody(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse detail page: %w", err)
	}

	sel := doc.Find(detailSelectors).First()
	if sel.Length() > 0 {
		return normalizeLines(sel.Text()), nil
	}

	article, err := readability.FromReader(bytes.NewReader(html), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	return normalizeLines(article.TextContent), nil
}

// PageTitle returns the first h1 of a detail page.
func PageTitle(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func normalizeLines(text string) string {
	lines := make([]string, 0, 64)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
