package ipo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// ParseIndex extracts listings from an index or category page. Every
// matched post gets the given status text. When requireCompany is set,
// posts whose title does not look like a company name are skipped; the
// front page mixes IPO announcements with editorial posts.
func ParseIndex(html []byte, status string, requireCompany bool) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse index page: %w", err)
	}

	parser := NewParser()
	seen := make(map[string]struct{})
	var listings []Listing

	doc.Find("article, .post-item").Each(func(i int, s *goquery.Selection) {
		link, _ := s.Find("a").First().Attr("href")
		title := strings.TrimSpace(s.Find("h2, h3").First().Text())

		if link == "" || title == "" {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		if requireCompany && !strings.Contains(title, "A.Ş.") && !strings.Contains(title, "Holding") {
			return
		}
		seen[link] = struct{}{}

		logo, _ := s.Find("img").First().Attr("src")
		dates := strings.TrimSpace(s.Find("time, .date").First().Text())

		listings = append(listings, Listing{
			Company: title,
			Link:    link,
			Status:  status,
			Logo:    logo,
			Code:    parser.ExtractCode(title),
			Dates:   dates,
		})
	})

	return listings, nil
}

// ParseFeed extracts listings from the site's RSS feed. The source runs on
// WordPress, so the feed is a cheap, well-structured second discovery
// channel for new posts.
func ParseFeed(data []byte, status string) ([]Listing, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	parser := NewParser()
	listings := make([]Listing, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		listings = append(listings, Listing{
			Company: strings.TrimSpace(item.Title),
			Link:    item.Link,
			Status:  status,
			Code:    parser.ExtractCode(item.Title),
		})
	}

	return listings, nil
}

// MergeListings concatenates listing sets, dropping later duplicates of
// the same link. First seen wins.
func MergeListings(lists ...[]Listing) []Listing {
	seen := make(map[string]struct{})
	var merged []Listing
	for _, list := range lists {
		for _, l := range list {
			if _, dup := seen[l.Link]; dup {
				continue
			}
			seen[l.Link] = struct{}{}
			merged = append(merged, l)
		}
	}
	return merged
}
