package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// POI is the canonical point-of-interest record produced by the normalizer.
// Lat/Lon of 0,0 means the coordinates are unknown.
type POI struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Lat          float64           `json:"lat"`
	Lon          float64           `json:"lon"`
	Address      string            `json:"address,omitempty"`
	Website      string            `json:"website,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
	AmenityKind  string            `json:"amenity_kind,omitempty"`
	ProviderName string            `json:"provider"`
	Images       []Image           `json:"images,omitempty"`
	Raw          RawRecord         `json:"-"`
}

// HasCoordinates reports whether the POI carries a known position.
func (p POI) HasCoordinates() bool {
	return p.Lat != 0 || p.Lon != 0
}

// RawRecord is one loosely-typed record as returned by a provider adapter.
type RawRecord map[string]any

// BBox is a geographic bounding box in degrees.
type BBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Contains reports whether lat/lon lies inside the box, bounds inclusive.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// Center returns the midpoint of the box.
func (b BBox) Center() (lat, lon float64) {
	return (b.South + b.North) / 2, (b.West + b.East) / 2
}

func (b BBox) Valid() bool {
	return b.South <= b.North && b.West <= b.East &&
		b.South >= -90 && b.North <= 90 && b.West >= -180 && b.East <= 180
}

func (b BBox) String() string {
	return fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", b.West, b.South, b.East, b.North)
}

// ParseBBox parses "west,south,east,north".
func ParseBBox(s string) (*BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bbox: expected 4 comma-separated values, got %d", len(parts))
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bbox: invalid value %q: %w", p, err)
		}
		vals[i] = v
	}
	b := &BBox{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}
	if !b.Valid() {
		return nil, fmt.Errorf("bbox: out of range %s", b)
	}
	return b, nil
}

// Kind is the closed set of POI categories a discovery query may ask for.
type Kind string

const (
	KindAll        Kind = "all"
	KindRestaurant Kind = "restaurant"
	KindCafe       Kind = "cafe"
	KindBar        Kind = "bar"
	KindMuseum     Kind = "museum"
	KindPark       Kind = "park"
	KindHotel      Kind = "hotel"
	KindAttraction Kind = "attraction"
	KindShop       Kind = "shop"
)

var kinds = []Kind{KindRestaurant, KindCafe, KindBar, KindMuseum, KindPark, KindHotel, KindAttraction, KindShop}

// Kinds lists the concrete categories, excluding "all".
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind maps free text to a Kind. Empty input means KindAll.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(KindAll) {
		return KindAll, true
	}
	for _, k := range kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// DiscoverQuery describes one orchestration request.
type DiscoverQuery struct {
	Place   string
	Kind    Kind
	Limit   int
	BBox    *BBox
	Timeout time.Duration
	// Images enables the image-enrichment pass.
	Images bool
}

// Place is a geocoded locality.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	BBox *BBox   `json:"bbox,omitempty"`
}
