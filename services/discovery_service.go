package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"guide-server/models"
)

var ErrInvalidQuery = errors.New("discovery: invalid query")

// Provider is one upstream POI source. Normalize turns a record returned by
// Discover into the canonical POI shape.
type Provider interface {
	Name() string
	Discover(ctx context.Context, place string, kind models.Kind, limit int, bbox *models.BBox) ([]models.RawRecord, error)
	Normalize(rec models.RawRecord) (models.POI, error)
}

// ImageProvider returns photos taken near a coordinate. Radius is in meters.
type ImageProvider interface {
	Name() string
	NearbyImages(ctx context.Context, lat, lon, radius float64, limit int) ([]models.Image, error)
}

type DiscoveryConfig struct {
	Timeout           time.Duration
	EnrichConcurrency int
	ImagesPerPOI      int
	ImageRadius       float64
}

func (c DiscoveryConfig) withDefaults() DiscoveryConfig {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.EnrichConcurrency <= 0 {
		c.EnrichConcurrency = 8
	}
	if c.ImagesPerPOI <= 0 {
		c.ImagesPerPOI = 3
	}
	if c.ImageRadius <= 0 {
		c.ImageRadius = 250
	}
	return c
}

// ProviderStat records how one provider behaved during a single call.
type ProviderStat struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Count    int           `json:"count"`
	Err      string        `json:"error,omitempty"`
}

type DiscoverResult struct {
	POIs      []models.POI   `json:"pois"`
	Providers []ProviderStat `json:"providers"`
}

// DiscoveryService fans a query out to every provider, then normalizes,
// deduplicates, ranks and truncates the combined records.
type DiscoveryService struct {
	providers []Provider
	images    ImageProvider
	cfg       DiscoveryConfig
}

// NewDiscoveryService keeps providers in the given order; that order decides
// which record wins when two share an id. images may be nil.
func NewDiscoveryService(providers []Provider, images ImageProvider, cfg DiscoveryConfig) *DiscoveryService {
	return &DiscoveryService{
		providers: providers,
		images:    images,
		cfg:       cfg.withDefaults(),
	}
}

// Discover returns the ranked POIs for q. Provider failures only shrink the
// result; an error is returned for an invalid query alone.
func (s *DiscoveryService) Discover(ctx context.Context, q models.DiscoverQuery) ([]models.POI, error) {
	res, err := s.DiscoverDetailed(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.POIs, nil
}

func (s *DiscoveryService) DiscoverDetailed(ctx context.Context, q models.DiscoverQuery) (DiscoverResult, error) {
	q, err := s.validate(q)
	if err != nil {
		return DiscoverResult{}, err
	}
	if q.Limit <= 0 {
		return DiscoverResult{POIs: []models.POI{}}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, q.Timeout)
	defer cancel()

	batches, stats := s.gather(callCtx, q)

	var pois []models.POI
	for i, p := range s.providers {
		pois = append(pois, normalizeRecords(p, batches[i])...)
	}
	pois = dedupePOIs(pois)
	rankPOIs(pois)
	if q.BBox != nil {
		pois = filterBBox(pois, *q.BBox)
	}
	if len(pois) > q.Limit {
		pois = pois[:q.Limit]
	}

	// Enrichment shares the call deadline with the fan-out.
	if q.Images && s.images != nil && len(pois) > 0 {
		s.enrichImages(callCtx, pois)
	}

	log.Info().
		Str("place", q.Place).
		Str("kind", string(q.Kind)).
		Int("count", len(pois)).
		Msg("discovery finished")

	if pois == nil {
		pois = []models.POI{}
	}
	return DiscoverResult{POIs: pois, Providers: stats}, nil
}

func (s *DiscoveryService) validate(q models.DiscoverQuery) (models.DiscoverQuery, error) {
	q.Place = strings.TrimSpace(q.Place)
	kind, ok := models.ParseKind(string(q.Kind))
	if !ok {
		return q, fmt.Errorf("%w: unknown kind %q", ErrInvalidQuery, q.Kind)
	}
	q.Kind = kind
	if q.Place == "" && q.BBox == nil {
		return q, fmt.Errorf("%w: place or bbox required", ErrInvalidQuery)
	}
	if q.BBox != nil && !q.BBox.Valid() {
		return q, fmt.Errorf("%w: bbox out of range", ErrInvalidQuery)
	}
	if q.Timeout <= 0 {
		q.Timeout = s.cfg.Timeout
	}
	return q, nil
}

type providerOutcome struct {
	index    int
	records  []models.RawRecord
	err      error
	duration time.Duration
}

// gather calls every provider concurrently and waits until each has settled
// or ctx is done. Results are indexed by provider position, not arrival.
func (s *DiscoveryService) gather(ctx context.Context, q models.DiscoverQuery) ([][]models.RawRecord, []ProviderStat) {
	n := len(s.providers)
	batches := make([][]models.RawRecord, n)
	stats := make([]ProviderStat, n)
	settled := make([]bool, n)
	outcomes := make(chan providerOutcome, n)
	start := time.Now()

	for i, p := range s.providers {
		stats[i].Name = p.Name()
		go func() {
			out := providerOutcome{index: i}
			began := time.Now()
			defer func() {
				if r := recover(); r != nil {
					out.records = nil
					out.err = fmt.Errorf("provider panicked: %v", r)
				}
				out.duration = time.Since(began)
				outcomes <- out
			}()
			out.records, out.err = p.Discover(ctx, q.Place, q.Kind, q.Limit, q.BBox)
		}()
	}

	for remaining := n; remaining > 0; remaining-- {
		select {
		case out := <-outcomes:
			settled[out.index] = true
			st := &stats[out.index]
			st.Duration = out.duration
			if out.err != nil {
				st.Err = out.err.Error()
				log.Warn().Err(out.err).Str("provider", st.Name).Dur("duration", out.duration).Msg("provider failed")
				continue
			}
			batches[out.index] = out.records
			st.Count = len(out.records)
			log.Debug().Str("provider", st.Name).Dur("duration", out.duration).Int("count", st.Count).Msg("provider finished")
		case <-ctx.Done():
			for i := range settled {
				if settled[i] {
					continue
				}
				stats[i].Duration = time.Since(start)
				stats[i].Err = "timeout"
				log.Warn().Str("provider", stats[i].Name).Dur("duration", stats[i].Duration).Msg("provider timed out")
			}
			return batches, stats
		}
	}
	return batches, stats
}

// enrichImages attaches nearby images to every POI with known coordinates,
// at most EnrichConcurrency calls in flight.
func (s *DiscoveryService) enrichImages(ctx context.Context, pois []models.POI) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EnrichConcurrency)
	for i := range pois {
		if !pois[i].HasCoordinates() {
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Warn().Interface("panic", r).Str("provider", s.images.Name()).Msg("image enrichment panicked")
				}
			}()
			imgs, err := s.images.NearbyImages(gctx, pois[i].Lat, pois[i].Lon, s.cfg.ImageRadius, s.cfg.ImagesPerPOI)
			if err != nil {
				log.Warn().Err(err).Str("provider", s.images.Name()).Str("poi", pois[i].ID).Msg("image enrichment failed")
				return nil
			}
			pois[i].Images = dedupeImages(nil, imgs, s.cfg.ImagesPerPOI)
			return nil
		})
	}
	_ = g.Wait()
}

// DiscoverCacheKey derives the cache key a caller should use for q.
func DiscoverCacheKey(q models.DiscoverQuery) string {
	kind, ok := models.ParseKind(string(q.Kind))
	if !ok {
		kind = q.Kind
	}
	bbox := "-"
	if q.BBox != nil {
		bbox = q.BBox.String()
	}
	return fmt.Sprintf("discover:%s|%s|%s|%d|%t", normalizeKey(q.Place), kind, bbox, q.Limit, q.Images)
}

func dedupeImages(existing, add []models.Image, max int) []models.Image {
	seen := make(map[string]struct{}, len(existing)+len(add))
	out := make([]models.Image, 0, len(existing)+len(add))
	for _, img := range append(append([]models.Image(nil), existing...), add...) {
		u := strings.TrimSpace(img.URL)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, img)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
