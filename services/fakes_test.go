package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"guide-server/models"
)

// fakeProvider returns fixed records. Records use the keys id, name, lat, lon.
type fakeProvider struct {
	name    string
	records []models.RawRecord
	err     error
	panics  bool
	sleep   time.Duration

	mu    sync.Mutex
	calls []models.DiscoverQuery
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Discover(_ context.Context, place string, kind models.Kind, limit int, bbox *models.BBox) ([]models.RawRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, models.DiscoverQuery{Place: place, Kind: kind, Limit: limit, BBox: bbox})
	f.mu.Unlock()
	if f.sleep > 0 {
		time.Sleep(f.sleep)
	}
	if f.panics {
		panic("provider exploded")
	}
	return f.records, f.err
}

func (f *fakeProvider) Normalize(rec models.RawRecord) (models.POI, error) {
	name, _ := rec["name"].(string)
	if name == "" {
		return models.POI{}, errors.New("record without name")
	}
	id, _ := rec["id"].(string)
	lat, _ := rec["lat"].(float64)
	lon, _ := rec["lon"].(float64)
	return models.POI{ID: id, Name: name, Lat: lat, Lon: lon}, nil
}

func rec(id, name string, lat, lon float64) models.RawRecord {
	return models.RawRecord{"id": id, "name": name, "lat": lat, "lon": lon}
}

type fakeImages struct {
	name     string
	err      error
	images   []models.Image
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
	sleep    time.Duration
}

func (f *fakeImages) Name() string { return f.name }

func (f *fakeImages) NearbyImages(ctx context.Context, lat, lon, _ float64, limit int) ([]models.Image, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.sleep > 0 {
		select {
		case <-time.After(f.sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.images != nil {
		return f.images, nil
	}
	out := make([]models.Image, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, models.Image{URL: fmt.Sprintf("https://img.test/%f/%f/%d.jpg", lat, lon, i), Provider: f.name})
	}
	return out, nil
}

type fakeDiscoverer struct {
	pois  []models.POI
	err   error
	calls int
	last  models.DiscoverQuery
}

func (f *fakeDiscoverer) Discover(_ context.Context, q models.DiscoverQuery) ([]models.POI, error) {
	f.calls++
	f.last = q
	return f.pois, f.err
}

type fakeGeocoder struct {
	place *models.Place
	err   error
}

func (f *fakeGeocoder) Geocode(context.Context, string) (*models.Place, error) {
	return f.place, f.err
}

type fakeSearch struct {
	mu      sync.Mutex
	results map[string][]models.SearchResult
	all     []models.SearchResult
	err     error
	queries []string

	sleep    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeSearch) Search(_ context.Context, query string, _ int, _ time.Duration) ([]models.SearchResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.sleep > 0 {
		time.Sleep(f.sleep)
	}
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[query]; ok {
		return r, nil
	}
	return f.all, nil
}

func (f *fakeSearch) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeLocal struct {
	text          map[string]string
	neighborhoods map[string][]string
}

func (f *fakeLocal) CityText(_ context.Context, city string) (string, error) {
	if t, ok := f.text[city]; ok {
		return t, nil
	}
	return "", errors.New("not found")
}

func (f *fakeLocal) Neighborhoods(_ context.Context, city string) ([]string, error) {
	if n, ok := f.neighborhoods[city]; ok {
		return n, nil
	}
	return nil, errors.New("not found")
}

type fakeEncyclopedia struct {
	summaries map[string]*models.Summary
}

func (f *fakeEncyclopedia) Summary(_ context.Context, title string) (*models.Summary, error) {
	if s, ok := f.summaries[title]; ok {
		return s, nil
	}
	return nil, errors.New("not found")
}

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(context.Context, string) (string, error) {
	return f.text, f.err
}

// brokenCache fails every operation.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}
func (brokenCache) Delete(context.Context, string) error { return errors.New("cache down") }

func newMemCache(t *testing.T) *MemoryCache {
	t.Helper()
	c, err := NewMemoryCache(16)
	if err != nil {
		t.Fatalf("new memory cache: %v", err)
	}
	return c
}
