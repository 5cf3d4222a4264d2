package clients

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"guide-server/models"
)

// WebSearch scrapes an HTML search results page (DuckDuckGo's html endpoint
// layout) for titles, snippets and target URLs.
type WebSearch struct {
	endpoint  string
	userAgent string
	http      *http.Client
}

func NewWebSearch(endpoint, userAgent string, hc *http.Client) *WebSearch {
	return &WebSearch{endpoint: endpoint, userAgent: userAgent, http: hc}
}

func (w *WebSearch) Search(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]models.SearchResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	u, err := url.Parse(w.endpoint)
	if err != nil {
		return nil, fmt.Errorf("search: parse endpoint: %w", err)
	}
	params := u.Query()
	params.Set("q", query)
	u.RawQuery = params.Encode()

	body, err := get(ctx, w.http, "search", w.userAgent, u.String())
	if err != nil {
		return nil, err
	}
	results, err := parseSearchResults(body)
	if err != nil {
		return nil, err
	}
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func parseSearchResults(body []byte) ([]models.SearchResult, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("search: parse html: %w", err)
	}
	var out []models.SearchResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				out = append(out, models.SearchResult{
					Title: textContent(n),
					URL:   resultURL(attr(n, "href")),
				})
				return
			case hasClass(n, "result__snippet"):
				if len(out) > 0 && out[len(out)-1].Body == "" {
					out[len(out)-1].Body = textContent(n)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	results := out[:0]
	for _, r := range out {
		if r.URL == "" || r.Body == "" {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// resultURL unwraps redirect links of the form //duckduckgo.com/l/?uddg=<target>.
func resultURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
