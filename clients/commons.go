package clients

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"guide-server/models"
)

// Commons searches Wikimedia Commons for geotagged files near a point.
type Commons struct {
	endpoint  string
	userAgent string
	http      *http.Client
}

func NewCommons(endpoint, userAgent string, hc *http.Client) *Commons {
	return &Commons{endpoint: endpoint, userAgent: userAgent, http: hc}
}

func (c *Commons) Name() string { return "commons" }

type commonsResponse struct {
	Query struct {
		Pages map[string]struct {
			Index     int    `json:"index"`
			Title     string `json:"title"`
			ImageInfo []struct {
				ThumbURL       string `json:"thumburl"`
				URL            string `json:"url"`
				DescriptionURL string `json:"descriptionurl"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

func (c *Commons) NearbyImages(ctx context.Context, lat, lon, radius float64, limit int) ([]models.Image, error) {
	if limit <= 0 {
		return nil, nil
	}
	r := int(math.Min(math.Max(radius, 10), 10000))
	params := url.Values{
		"action":       {"query"},
		"format":       {"json"},
		"generator":    {"geosearch"},
		"ggscoord":     {fmt.Sprintf("%f|%f", lat, lon)},
		"ggsradius":    {strconv.Itoa(r)},
		"ggslimit":     {strconv.Itoa(limit)},
		"ggsnamespace": {"6"},
		"prop":         {"imageinfo"},
		"iiprop":       {"url"},
		"iiurlwidth":   {"1024"},
	}
	var resp commonsResponse
	if err := getJSON(ctx, c.http, c.Name(), c.userAgent, c.endpoint+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	type hit struct {
		index int
		img   models.Image
	}
	var hits []hit
	for _, p := range resp.Query.Pages {
		if len(p.ImageInfo) == 0 {
			continue
		}
		info := p.ImageInfo[0]
		u := info.ThumbURL
		if u == "" {
			u = info.URL
		}
		if u == "" {
			continue
		}
		hits = append(hits, hit{index: p.Index, img: models.Image{URL: u, Provider: c.Name(), Attribution: info.DescriptionURL}})
	}
	// Pages arrive as a map; the geosearch index restores distance order.
	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })

	out := make([]models.Image, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.img)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func cosDeg(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180)
}
