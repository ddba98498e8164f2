// Package fetch scrapes candidate knowledge-base records from reference
// pages on the web.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

// WikipediaSource implements ports.RecordSource against the Wikipedia list
// pages for minerals and rock types. Both pages carry their data in
// "wikitable" tables; rows that don't parse are skipped.
type WikipediaSource struct {
	client     *http.Client
	mineralURL string
	rockURL    string
}

// NewWikipediaSource builds a source fetching from the two list page URLs.
func NewWikipediaSource(mineralURL, rockURL string) *WikipediaSource {
	return &WikipediaSource{
		client:     &http.Client{Timeout: 30 * time.Second},
		mineralURL: mineralURL,
		rockURL:    rockURL,
	}
}

// FetchMinerals scrapes mineral records. Each table row contributes a name
// and, when present, a description.
func (s *WikipediaSource) FetchMinerals(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.fetchTableRows(ctx, s.mineralURL)
	if err != nil {
		return nil, fmt.Errorf("fetch minerals: %w", err)
	}

	var records []domain.Record
	for _, cells := range rows {
		if len(cells) == 0 || cells[0] == "" {
			continue
		}
		rec := domain.Record{"name": cells[0]}
		if len(cells) > 1 && cells[1] != "" {
			rec["description"] = cells[1]
		}
		records = append(records, rec)
	}
	return records, nil
}

// FetchRocks scrapes rock records. Rows carry name, rock type, and an
// optional description.
func (s *WikipediaSource) FetchRocks(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.fetchTableRows(ctx, s.rockURL)
	if err != nil {
		return nil, fmt.Errorf("fetch rocks: %w", err)
	}

	var records []domain.Record
	for _, cells := range rows {
		if len(cells) == 0 || cells[0] == "" {
			continue
		}
		rec := domain.Record{"name": cells[0]}
		if len(cells) > 1 && cells[1] != "" {
			rec["type"] = cells[1]
		}
		if len(cells) > 2 && cells[2] != "" {
			rec["description"] = cells[2]
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *WikipediaSource) fetchTableRows(ctx context.Context, url string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "geosurvey-updater/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return extractWikitableRows(doc), nil
}

// extractWikitableRows collects data rows from every table carrying the
// "wikitable" class. Header rows (th-only) are skipped.
func extractWikitableRows(doc *html.Node) [][]string {
	var rows [][]string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" && hasClass(n, "wikitable") {
			rows = append(rows, tableRows(n)...)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			if cells := rowCells(n); cells != nil {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

// rowCells returns the td cell texts of a row, or nil for header rows.
func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "td" {
			continue
		}
		cells = append(cells, strings.TrimSpace(nodeText(c)))
	}
	return cells
}

// nodeText concatenates the text content of a node, skipping citation
// footnotes (sup elements).
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			return
		}
		if node.Type == html.ElementNode && node.Data == "sup" {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
