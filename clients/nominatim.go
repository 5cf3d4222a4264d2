package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"guide-server/models"
)

// ErrNotFound is returned by lookups that matched nothing.
var ErrNotFound = errors.New("not found")

var nominatimPhrases = map[models.Kind]string{
	models.KindAll:        "tourist attraction",
	models.KindRestaurant: "restaurant",
	models.KindCafe:       "cafe",
	models.KindBar:        "bar",
	models.KindMuseum:     "museum",
	models.KindPark:       "park",
	models.KindHotel:      "hotel",
	models.KindAttraction: "tourist attraction",
	models.KindShop:       "shop",
}

// Nominatim is the OpenStreetMap search API. It serves both as a POI
// provider and as the geocoder for guide resolution.
type Nominatim struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewNominatim(baseURL, userAgent string, hc *http.Client) *Nominatim {
	return &Nominatim{baseURL: strings.TrimRight(baseURL, "/"), userAgent: userAgent, http: hc}
}

func (n *Nominatim) Name() string { return "nominatim" }

func (n *Nominatim) Discover(ctx context.Context, place string, kind models.Kind, limit int, bbox *models.BBox) ([]models.RawRecord, error) {
	phrase, ok := nominatimPhrases[kind]
	if !ok {
		return nil, fmt.Errorf("nominatim: unsupported kind %q", kind)
	}
	q := phrase
	if p := strings.TrimSpace(place); p != "" {
		q = phrase + " in " + p
	}
	params := url.Values{
		"q":         {q},
		"format":    {"jsonv2"},
		"limit":     {strconv.Itoa(min(max(limit, 1), 50))},
		"extratags": {"1"},
	}
	if bbox != nil {
		params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f", bbox.West, bbox.North, bbox.East, bbox.South))
		params.Set("bounded", "1")
	}
	body, err := get(ctx, n.http, n.Name(), n.userAgent, n.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return decodeRecords(n.Name(), body)
}

func (n *Nominatim) Normalize(rec models.RawRecord) (models.POI, error) {
	osmType, osmID := stringField(rec, "osm_type"), stringField(rec, "osm_id")
	if osmType == "" || osmID == "" {
		return models.POI{}, fmt.Errorf("nominatim: result without osm id")
	}
	lat, okLat := floatField(rec, "lat")
	lon, okLon := floatField(rec, "lon")
	if !okLat || !okLon {
		return models.POI{}, fmt.Errorf("nominatim: invalid coordinates for %s/%s", osmType, osmID)
	}
	display := stringField(rec, "display_name")
	name := stringField(rec, "name")
	if name == "" {
		name = strings.TrimSpace(strings.Split(display, ",")[0])
	}
	tags := stringTags(mapField(rec, "extratags"))
	return models.POI{
		ID:          "osm:" + osmType + "/" + osmID,
		Name:        name,
		Lat:         lat,
		Lon:         lon,
		Address:     display,
		Website:     tags["website"],
		Tags:        tags,
		AmenityKind: stringField(rec, "type"),
	}, nil
}

type nominatimPlace struct {
	DisplayName string   `json:"display_name"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox"`
}

// Geocode resolves free text to a centroid and bounding box.
func (n *Nominatim) Geocode(ctx context.Context, query string) (*models.Place, error) {
	params := url.Values{"q": {query}, "format": {"jsonv2"}, "limit": {"1"}}
	var results []nominatimPlace
	if err := getJSON(ctx, n.http, n.Name(), n.userAgent, n.baseURL+"/search?"+params.Encode(), &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("nominatim: geocode %q: %w", query, ErrNotFound)
	}
	r := results[0]
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim: parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim: parse lon: %w", err)
	}
	place := &models.Place{Name: r.DisplayName, Lat: lat, Lon: lon}
	if bb, ok := parseNominatimBBox(r.BoundingBox); ok {
		place.BBox = bb
	}
	return place, nil
}

// parseNominatimBBox reads the [south, north, west, east] string array.
func parseNominatimBBox(v []string) (*models.BBox, bool) {
	if len(v) != 4 {
		return nil, false
	}
	var f [4]float64
	for i, s := range v {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		f[i] = x
	}
	b := &models.BBox{South: f[0], North: f[1], West: f[2], East: f[3]}
	if !b.Valid() {
		return nil, false
	}
	return b, true
}
