package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"guide-server/models"
)

// kindSelectors maps each kind to the Overpass tag selectors that match it.
var kindSelectors = map[models.Kind][]string{
	models.KindRestaurant: {`["amenity"="restaurant"]`},
	models.KindCafe:       {`["amenity"="cafe"]`},
	models.KindBar:        {`["amenity"~"^(bar|pub)$"]`},
	models.KindMuseum:     {`["tourism"="museum"]`},
	models.KindPark:       {`["leisure"="park"]`},
	models.KindHotel:      {`["tourism"="hotel"]`},
	models.KindAttraction: {`["tourism"="attraction"]`},
	models.KindShop:       {`["shop"]`},
}

// Overpass queries OpenStreetMap through the Overpass API.
type Overpass struct {
	endpoint  string
	userAgent string
	http      *http.Client
}

func NewOverpass(endpoint, userAgent string, hc *http.Client) *Overpass {
	return &Overpass{endpoint: endpoint, userAgent: userAgent, http: hc}
}

func (o *Overpass) Name() string { return "overpass" }

func (o *Overpass) Discover(ctx context.Context, place string, kind models.Kind, limit int, bbox *models.BBox) ([]models.RawRecord, error) {
	q, err := buildOverpassQuery(place, kind, limit, bbox)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, strings.NewReader(url.Values{"data": {q}}.Encode()))
	if err != nil {
		return nil, fmt.Errorf("overpass: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	body, err := do(o.http, o.Name(), o.userAgent, req)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Elements json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("overpass: decode response: %w", err)
	}
	if len(resp.Elements) == 0 {
		return nil, nil
	}
	return decodeRecords(o.Name(), resp.Elements)
}

func buildOverpassQuery(place string, kind models.Kind, limit int, bbox *models.BBox) (string, error) {
	var selectors []string
	if kind == models.KindAll || kind == "" {
		for _, k := range models.Kinds() {
			selectors = append(selectors, kindSelectors[k]...)
		}
	} else {
		var ok bool
		if selectors, ok = kindSelectors[kind]; !ok {
			return "", fmt.Errorf("overpass: unsupported kind %q", kind)
		}
	}

	var scope, header string
	switch {
	case bbox != nil:
		scope = fmt.Sprintf("(%f,%f,%f,%f)", bbox.South, bbox.West, bbox.North, bbox.East)
	case strings.TrimSpace(place) != "":
		name := strings.TrimSpace(strings.Split(place, ",")[0])
		header = fmt.Sprintf("area[\"name\"=\"%s\"]->.searchArea;\n", overpassEscape(name))
		scope = "(area.searchArea)"
	default:
		return "", fmt.Errorf("overpass: place or bbox required")
	}

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n")
	b.WriteString(header)
	b.WriteString("(\n")
	for _, sel := range selectors {
		fmt.Fprintf(&b, "  node%s[\"name\"]%s;\n", sel, scope)
		fmt.Fprintf(&b, "  way%s[\"name\"]%s;\n", sel, scope)
	}
	b.WriteString(");\n")
	fmt.Fprintf(&b, "out center %d;", max(limit, 1))
	return b.String(), nil
}

func overpassEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func (o *Overpass) Normalize(rec models.RawRecord) (models.POI, error) {
	typ, id := stringField(rec, "type"), stringField(rec, "id")
	if typ == "" || id == "" {
		return models.POI{}, fmt.Errorf("overpass: element without type or id")
	}
	tags := stringTags(mapField(rec, "tags"))
	lat, okLat := floatField(rec, "lat")
	lon, okLon := floatField(rec, "lon")
	if !okLat || !okLon {
		if c := mapField(rec, "center"); c != nil {
			lat, _ = floatField(c, "lat")
			lon, _ = floatField(c, "lon")
		}
	}
	return models.POI{
		ID:          "osm:" + typ + "/" + id,
		Name:        tags["name"],
		Lat:         lat,
		Lon:         lon,
		Address:     osmAddress(tags),
		Website:     tags["website"],
		Tags:        tags,
		AmenityKind: osmKind(tags),
	}, nil
}
