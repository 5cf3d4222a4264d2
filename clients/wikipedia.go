package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"guide-server/models"
)

// Wikipedia reads page summaries from the REST API.
type Wikipedia struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewWikipedia(baseURL, userAgent string, hc *http.Client) *Wikipedia {
	return &Wikipedia{baseURL: strings.TrimRight(baseURL, "/"), userAgent: userAgent, http: hc}
}

type wikiSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// Summary returns ErrNotFound for missing pages and disambiguation pages.
func (w *Wikipedia) Summary(ctx context.Context, title string) (*models.Summary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("wikipedia: empty title")
	}
	u := w.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	var s wikiSummary
	if err := getJSON(ctx, w.http, "wikipedia", w.userAgent, u, &s); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("wikipedia: %q: %w", title, ErrNotFound)
		}
		return nil, err
	}
	if s.Type == "disambiguation" || strings.TrimSpace(s.Extract) == "" {
		return nil, fmt.Errorf("wikipedia: %q has no usable summary: %w", title, ErrNotFound)
	}
	return &models.Summary{
		Title:    s.Title,
		Text:     strings.TrimSpace(s.Extract),
		URL:      s.ContentURLs.Desktop.Page,
		ImageURL: s.Thumbnail.Source,
	}, nil
}
