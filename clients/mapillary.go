package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"guide-server/models"
)

const mapillaryDefaultURL = "https://graph.mapillary.com"

// Mapillary looks up street-level photos around a coordinate.
type Mapillary struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewMapillary(baseURL, token string, hc *http.Client) *Mapillary {
	if baseURL == "" {
		baseURL = mapillaryDefaultURL
	}
	return &Mapillary{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: hc}
}

func (m *Mapillary) Name() string { return "mapillary" }

type mapillaryImages struct {
	Data []struct {
		ID       string `json:"id"`
		ThumbURL string `json:"thumb_1024_url"`
		Creator  struct {
			Username string `json:"username"`
		} `json:"creator"`
	} `json:"data"`
}

func (m *Mapillary) NearbyImages(ctx context.Context, lat, lon, radius float64, limit int) ([]models.Image, error) {
	if limit <= 0 {
		return nil, nil
	}
	b := boxAround(lat, lon, radius)
	params := url.Values{
		"access_token": {m.token},
		"fields":       {"id,thumb_1024_url,creator"},
		"bbox":         {fmt.Sprintf("%f,%f,%f,%f", b.West, b.South, b.East, b.North)},
		"limit":        {strconv.Itoa(limit)},
	}
	var resp mapillaryImages
	if err := getJSON(ctx, m.http, m.Name(), "", m.baseURL+"/images?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	out := make([]models.Image, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.ThumbURL == "" {
			continue
		}
		attribution := "Mapillary"
		if d.Creator.Username != "" {
			attribution = d.Creator.Username + " / Mapillary"
		}
		out = append(out, models.Image{URL: d.ThumbURL, Provider: m.Name(), Attribution: attribution})
	}
	return out, nil
}

// boxAround returns a square box of roughly radius meters around a point.
func boxAround(lat, lon, radius float64) models.BBox {
	dLat := radius / 111320.0
	dLon := dLat
	if c := cosDeg(lat); c > 0.01 {
		dLon = dLat / c
	}
	return models.BBox{West: lon - dLon, South: lat - dLat, East: lon + dLon, North: lat + dLat}
}
