package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"guide-server/models"
)

// POIDiscoverer is the part of DiscoveryService the guide pipeline needs.
type POIDiscoverer interface {
	Discover(ctx context.Context, q models.DiscoverQuery) ([]models.POI, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (*models.Place, error)
}

type SearchEvidence interface {
	Search(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]models.SearchResult, error)
}

// LocalData is the curated, read-only corpus keyed by city.
type LocalData interface {
	AliasSource
	CityText(ctx context.Context, city string) (string, error)
}

type Encyclopedia interface {
	Summary(ctx context.Context, title string) (*models.Summary, error)
}

// ContentGenerator is an optional text-completion service.
type ContentGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GuideDeps holds the collaborators of GuideService. Any of them may be nil
// except Cache; a nil collaborator simply never contributes.
type GuideDeps struct {
	Cache        CacheStore
	Discovery    POIDiscoverer
	Geocoder     Geocoder
	Search       SearchEvidence
	Local        LocalData
	Encyclopedia Encyclopedia
	Generator    ContentGenerator
	Images       []ImageProvider
}

type GuideConfig struct {
	CacheTTL          time.Duration
	SearchConcurrency int
	SearchTimeout     time.Duration
	SearchResults     int
	CallTimeout       time.Duration
	DiscoveryTimeout  time.Duration
	MaxTextLen        int
	MinCandidateLen   int
	MaxImages         int
	ImageRadius       float64
	BlockedDomains    []string
}

var defaultBlockedDomains = []string{
	"pinterest.", "facebook.com", "instagram.com", "tiktok.com", "youtube.com",
	"tripadvisor.", "booking.com", "airbnb.", "yelp.", "zillow.com", "realtor.com",
}

func (c GuideConfig) withDefaults() GuideConfig {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 7 * 24 * time.Hour
	}
	if c.SearchConcurrency <= 0 {
		c.SearchConcurrency = 3
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = 6 * time.Second
	}
	if c.SearchResults <= 0 {
		c.SearchResults = 5
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 8 * time.Second
	}
	if c.DiscoveryTimeout <= 0 {
		c.DiscoveryTimeout = 10 * time.Second
	}
	if c.MaxTextLen <= 0 {
		c.MaxTextLen = 400
	}
	if c.MinCandidateLen <= 0 {
		c.MinCandidateLen = 80
	}
	if c.MaxImages <= 0 {
		c.MaxImages = 4
	}
	if c.ImageRadius <= 0 {
		c.ImageRadius = 1000
	}
	if c.BlockedDomains == nil {
		c.BlockedDomains = defaultBlockedDomains
	}
	return c
}

// candidate is what a strategy proposes as the guide text.
type candidate struct {
	text         string
	source       models.Source
	url          string
	corroborated bool
}

type strategy struct {
	name models.Source
	run  func(ctx context.Context, r *resolution) (candidate, bool)
}

// resolution carries the per-call state shared by the strategies.
type resolution struct {
	city         string
	neighborhood string

	local    []string
	evidence []models.SearchResult
	usedURL  string

	place    *models.Place
	geocoded bool

	summary        *models.Summary
	summaryFetched bool
}

// GuideService resolves a short neighborhood guide through a fixed chain of
// fallbacks and caches the result.
type GuideService struct {
	deps       GuideDeps
	cfg        GuideConfig
	validator  *Validator
	strategies []strategy
	now        func() time.Time
}

func NewGuideService(deps GuideDeps, cfg GuideConfig) *GuideService {
	s := &GuideService{
		deps: deps,
		cfg:  cfg.withDefaults(),
		now:  time.Now,
	}
	var aliases AliasSource
	if deps.Local != nil {
		aliases = deps.Local
	}
	s.validator = NewValidator(aliases)
	s.strategies = []strategy{
		{name: models.SourceSearch, run: s.fromSearch},
		{name: models.SourceLocalData, run: s.fromLocalData},
		{name: models.SourceGeoEnriched, run: s.fromGeo},
		{name: models.SourceSynthesized, run: s.fromTemplate},
	}
	return s
}

// ResolveGuide always returns a record whose text is non-empty and contains
// the neighborhood name. Collaborator failures only move it down the chain.
func (s *GuideService) ResolveGuide(ctx context.Context, city, neighborhood string) models.GuideRecord {
	city = strings.TrimSpace(collapseSpaces(city))
	neighborhood = strings.TrimSpace(collapseSpaces(neighborhood))
	key := GuideCacheKey(city, neighborhood)
	r := &resolution{city: city, neighborhood: neighborhood}

	if rec, ok := s.fromCache(ctx, key, r); ok {
		return rec
	}

	check := s.validator.Check(ctx, city, neighborhood)
	if !check.Plausible {
		log.Info().
			Str("city", city).
			Str("neighborhood", neighborhood).
			Float64("score", check.Score).
			Msg("implausible pair, using template")
		c, _ := s.fromTemplate(ctx, r)
		rec := s.record(s.postprocess(c, r), models.ConfidenceLow, []models.Image{})
		s.persist(ctx, key, rec)
		return rec
	}

	r.local = s.localSentences(ctx, r)
	c := s.runStrategies(ctx, r)
	c = s.postprocess(c, r)

	conf := AssignConfidence(c.source, c.corroborated)
	if conf != models.ConfidenceHigh {
		c = s.layer(ctx, c, r)
		c.text = s.ensureTerm(c.text, r)
		conf = AssignConfidence(c.source, c.corroborated)
	}

	rec := s.record(c, conf, s.images(ctx, r))
	s.persist(ctx, key, rec)
	log.Info().
		Str("city", city).
		Str("neighborhood", neighborhood).
		Str("source", string(rec.Source)).
		Str("confidence", string(rec.Confidence)).
		Msg("guide resolved")
	return rec
}

// Invalidate drops the cached guide for the pair.
func (s *GuideService) Invalidate(ctx context.Context, city, neighborhood string) error {
	city = strings.TrimSpace(collapseSpaces(city))
	neighborhood = strings.TrimSpace(collapseSpaces(neighborhood))
	if err := s.deps.Cache.Delete(ctx, GuideCacheKey(city, neighborhood)); err != nil {
		return fmt.Errorf("invalidate guide: %w", err)
	}
	return nil
}

func (s *GuideService) fromCache(ctx context.Context, key string, r *resolution) (models.GuideRecord, bool) {
	raw, ok := s.deps.Cache.Get(ctx, key)
	if !ok {
		return models.GuideRecord{}, false
	}
	var rec models.GuideRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("unreadable cached guide")
		return models.GuideRecord{}, false
	}
	if strings.TrimSpace(rec.Text) == "" {
		return models.GuideRecord{}, false
	}
	if rec.GeneratedAt > 0 && s.now().Sub(rec.Generated()) > s.cfg.CacheTTL {
		log.Debug().Str("key", key).Msg("cached guide is stale")
		return models.GuideRecord{}, false
	}
	if IsDisambiguation(rec.Text) || IsPromotional(rec.Text) {
		log.Info().Str("key", key).Msg("discarding low-quality cached guide")
		if err := s.deps.Cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache delete failed")
		}
		return models.GuideRecord{}, false
	}

	rec.Text = s.ensureTerm(NormalizeTone(rec.Text, r.neighborhood, r.city), r)
	if rec.Source == "" {
		rec.Source = models.SourceCache
	}
	if rec.Confidence == "" {
		rec.Confidence = AssignConfidence(rec.Source, false)
	}
	if rec.Images == nil {
		rec.Images = []models.Image{}
	}
	rec.Cached = true

	if rec.Source == models.SourceSynthesized && s.validator.Check(ctx, r.city, r.neighborhood).Plausible {
		if c, ok := s.attempt(ctx, strategy{name: models.SourceGeoEnriched, run: s.fromGeo}, r); ok {
			c = s.postprocess(c, r)
			images := rec.Images
			if len(images) == 0 {
				images = s.images(ctx, r)
			}
			upgraded := s.record(c, AssignConfidence(c.source, c.corroborated), images)
			s.persist(ctx, key, upgraded)
			log.Info().Str("key", key).Msg("upgraded cached template guide")
			return upgraded, true
		}
	}
	return rec, true
}

func (s *GuideService) runStrategies(ctx context.Context, r *resolution) candidate {
	for _, st := range s.strategies {
		if c, ok := s.attempt(ctx, st, r); ok {
			log.Debug().Str("strategy", string(st.name)).Str("neighborhood", r.neighborhood).Msg("strategy accepted")
			return c
		}
	}
	c, _ := s.fromTemplate(ctx, r)
	return c
}

func (s *GuideService) attempt(ctx context.Context, st strategy, r *resolution) (c candidate, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Warn().Interface("panic", p).Str("strategy", string(st.name)).Msg("strategy panicked")
			c, ok = candidate{}, false
		}
	}()
	c, ok = st.run(ctx, r)
	if ok && strings.TrimSpace(c.text) == "" {
		return candidate{}, false
	}
	return c, ok
}

func (s *GuideService) searchQueries(r *resolution) []string {
	city := primaryCity(r.city)
	return []string{
		fmt.Sprintf("%q %s neighborhood", r.neighborhood, r.city),
		fmt.Sprintf("%s %s what is it like to live", r.neighborhood, city),
		fmt.Sprintf("%s, %s area guide", r.neighborhood, r.city),
		fmt.Sprintf("%s %s restaurants parks streets", r.neighborhood, city),
	}
}

// gatherEvidence runs every phrasing with at most SearchConcurrency in flight
// and returns the quality-passing hits, deduplicated by URL, in phrasing order.
func (s *GuideService) gatherEvidence(ctx context.Context, r *resolution) []models.SearchResult {
	queries := s.searchQueries(r)
	batches := make([][]models.SearchResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.SearchConcurrency)
	for i, q := range queries {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					log.Warn().Interface("panic", p).Str("query", q).Msg("search panicked")
				}
			}()
			res, err := s.deps.Search.Search(gctx, q, s.cfg.SearchResults, s.cfg.SearchTimeout)
			if err != nil {
				log.Warn().Err(err).Str("query", q).Msg("search failed")
				return nil
			}
			batches[i] = res
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	var out []models.SearchResult
	for _, batch := range batches {
		for _, res := range batch {
			id := strings.TrimSpace(res.URL)
			if id == "" {
				id = normalizeKey(res.Body)
			}
			if _, ok := seen[id]; ok || id == "" {
				continue
			}
			seen[id] = struct{}{}
			text := evidenceText(res)
			if IsDisambiguation(text) || IsPromotional(text) {
				continue
			}
			out = append(out, res)
		}
	}
	return out
}

func evidenceText(res models.SearchResult) string {
	return strings.TrimSpace(collapseSpaces(res.Body))
}

// blocked reports whether the result's host matches the domain blocklist.
func (s *GuideService) blocked(res models.SearchResult) bool {
	u, err := url.Parse(res.URL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range s.cfg.BlockedDomains {
		if strings.Contains(host, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

func (s *GuideService) fromSearch(ctx context.Context, r *resolution) (candidate, bool) {
	if s.deps.Search == nil {
		return candidate{}, false
	}
	r.evidence = s.gatherEvidence(ctx, r)

	// Blocklisted hosts are only considered after every other hit.
	ordered := make([]models.SearchResult, 0, len(r.evidence))
	var noisy []models.SearchResult
	for _, res := range r.evidence {
		if s.blocked(res) {
			noisy = append(noisy, res)
			continue
		}
		ordered = append(ordered, res)
	}
	ordered = append(ordered, noisy...)

	for _, res := range ordered {
		text := evidenceText(res)
		if len([]rune(text)) < s.cfg.MinCandidateLen {
			continue
		}
		if !IsRelevant(text, r.city, r.neighborhood) {
			continue
		}
		r.usedURL = res.URL
		return candidate{
			text:         text,
			source:       models.SourceSearch,
			url:          res.URL,
			corroborated: len(r.local) > 0,
		}, true
	}
	return candidate{}, false
}

func (s *GuideService) localSentences(ctx context.Context, r *resolution) []string {
	if s.deps.Local == nil {
		return nil
	}
	text, err := s.deps.Local.CityText(ctx, r.city)
	if err != nil {
		log.Debug().Err(err).Str("city", r.city).Msg("no local data")
		return nil
	}
	var out []string
	for _, sentence := range splitSentences(text, r.neighborhood) {
		if mentions(sentence, r.neighborhood) {
			out = append(out, sentence)
		}
	}
	return out
}

func (s *GuideService) fromLocalData(_ context.Context, r *resolution) (candidate, bool) {
	if len(r.local) == 0 {
		return candidate{}, false
	}
	n := min(2, len(r.local))
	return candidate{
		text:   strings.Join(r.local[:n], " "),
		source: models.SourceLocalData,
	}, true
}

// resolvePlace geocodes the pair once per resolution.
func (s *GuideService) resolvePlace(ctx context.Context, r *resolution) *models.Place {
	if r.geocoded || s.deps.Geocoder == nil {
		return r.place
	}
	r.geocoded = true
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	place, err := s.deps.Geocoder.Geocode(callCtx, r.neighborhood+", "+r.city)
	if err != nil {
		log.Debug().Err(err).Str("neighborhood", r.neighborhood).Msg("geocoding failed")
		return nil
	}
	r.place = place
	return place
}

func (s *GuideService) fromGeo(ctx context.Context, r *resolution) (candidate, bool) {
	if s.deps.Discovery == nil {
		return candidate{}, false
	}
	q := models.DiscoverQuery{
		Place:   r.neighborhood + ", " + r.city,
		Kind:    models.KindAll,
		Limit:   10,
		Timeout: s.cfg.DiscoveryTimeout,
	}
	if place := s.resolvePlace(ctx, r); place != nil && place.BBox != nil {
		q.BBox = place.BBox
	}
	pois, err := s.deps.Discovery.Discover(ctx, q)
	if err != nil {
		log.Warn().Err(err).Str("neighborhood", r.neighborhood).Msg("geo enrichment failed")
		return candidate{}, false
	}

	var names []string
	seen := make(map[string]struct{})
	for _, p := range pois {
		name := strings.TrimSpace(p.Name)
		k := normalizeKey(name)
		if k == "" || k == normalizeKey(r.neighborhood) {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		names = append(names, name)
		if len(names) == 3 {
			break
		}
	}
	if len(names) == 0 {
		return candidate{}, false
	}
	return candidate{
		text:   fmt.Sprintf("%s in %s is home to nearby spots such as %s.", r.neighborhood, r.city, joinNames(names)),
		source: models.SourceGeoEnriched,
	}, true
}

func (s *GuideService) fromTemplate(_ context.Context, r *resolution) (candidate, bool) {
	return candidate{text: templateText(r), source: models.SourceSynthesized}, true
}

func templateText(r *resolution) string {
	switch {
	case r.neighborhood == "" && r.city == "":
		return "No details are available for this place yet."
	case r.city == "":
		return fmt.Sprintf("%s is a neighborhood. Visitors can explore its streets and local spots.", r.neighborhood)
	case r.neighborhood == "":
		return fmt.Sprintf("This is a neighborhood in %s. Visitors can explore its streets and local spots.", r.city)
	}
	return fmt.Sprintf("%s is a neighborhood in %s. Visitors can explore its streets and local spots.", r.neighborhood, r.city)
}

// postprocess normalizes tone, guarantees the neighborhood name and clamps
// the text, falling back to the template if the result still reads like a
// listing.
func (s *GuideService) postprocess(c candidate, r *resolution) candidate {
	text := NormalizeTone(c.text, r.neighborhood, r.city)
	text = s.ensureTerm(text, r)
	text = clampText(text, s.cfg.MaxTextLen, r.neighborhood)
	if IsDisambiguation(text) {
		log.Info().Str("neighborhood", r.neighborhood).Msg("postprocessed text is listing-like, using template")
		return candidate{
			text:   clampText(templateText(r), s.cfg.MaxTextLen, r.neighborhood),
			source: models.SourceSynthesized,
		}
	}
	c.text = text
	return c
}

// ensureTerm makes text contain the neighborhood name literally, splicing in
// an evidence sentence that has it or prepending a fallback sentence.
func (s *GuideService) ensureTerm(text string, r *resolution) string {
	n := r.neighborhood
	if n == "" || strings.Contains(text, n) {
		return text
	}
	pool := append([]string(nil), r.local...)
	for _, res := range r.evidence {
		pool = append(pool, splitSentences(evidenceText(res), n)...)
	}
	for _, sentence := range pool {
		if !strings.Contains(sentence, n) || IsPromotional(sentence) {
			continue
		}
		return insertAfterFirstSentence(text, NormalizeTone(sentence, n, r.city), n)
	}
	lead := fmt.Sprintf("%s is a neighborhood in %s.", n, r.city)
	if r.city == "" {
		lead = fmt.Sprintf("%s is a neighborhood.", n)
	}
	return strings.TrimSpace(lead + " " + text)
}

type secondary struct {
	tag   string
	fetch func(ctx context.Context, r *resolution, text string) string
}

// layer splices one corroborating sentence from the first secondary source
// that has one. The splice is kept only if it and the neighborhood name
// both survive clamping.
func (s *GuideService) layer(ctx context.Context, c candidate, r *resolution) candidate {
	sources := []secondary{
		{tag: "search-evidence", fetch: s.evidenceSentence},
		{tag: "encyclopedia", fetch: s.encyclopediaSentence},
		{tag: "generated", fetch: s.generatedSentence},
	}
	for _, src := range sources {
		sentence := s.guardedSentence(ctx, src, r, c.text)
		if sentence == "" {
			continue
		}
		layered := clampText(insertAfterFirstSentence(c.text, sentence, r.neighborhood), s.cfg.MaxTextLen, r.neighborhood)
		if !strings.Contains(layered, sentence) || !strings.Contains(layered, r.neighborhood) {
			continue
		}
		c.text = layered
		c.source = c.source.With(src.tag)
		return c
	}
	return c
}

func (s *GuideService) guardedSentence(ctx context.Context, src secondary, r *resolution, text string) (out string) {
	defer func() {
		if p := recover(); p != nil {
			log.Warn().Interface("panic", p).Str("secondary", src.tag).Msg("secondary source panicked")
			out = ""
		}
	}()
	sentence := strings.TrimSpace(src.fetch(ctx, r, text))
	if sentence == "" || strings.Contains(text, sentence) || IsDisambiguation(sentence) || IsPromotional(sentence) {
		return ""
	}
	return sentence
}

func (s *GuideService) evidenceSentence(_ context.Context, r *resolution, _ string) string {
	for _, res := range r.evidence {
		if res.URL != "" && res.URL == r.usedURL {
			continue
		}
		if s.blocked(res) {
			continue
		}
		body := evidenceText(res)
		if !IsRelevant(body, r.city, r.neighborhood) {
			continue
		}
		for _, sentence := range splitSentences(body, r.neighborhood) {
			if mentions(sentence, r.neighborhood) {
				return NormalizeTone(sentence, r.neighborhood, r.city)
			}
		}
	}
	return ""
}

// fetchSummary looks the neighborhood up once per resolution, first
// qualified by its city.
func (s *GuideService) fetchSummary(ctx context.Context, r *resolution) *models.Summary {
	if r.summaryFetched || s.deps.Encyclopedia == nil || r.neighborhood == "" {
		return r.summary
	}
	r.summaryFetched = true
	titles := []string{r.neighborhood + ", " + primaryCity(r.city), r.neighborhood}
	for _, title := range titles {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		sum, err := s.deps.Encyclopedia.Summary(callCtx, title)
		cancel()
		if err != nil || sum == nil {
			if err != nil {
				log.Debug().Err(err).Str("title", title).Msg("no encyclopedia summary")
			}
			continue
		}
		if !mentions(sum.Text, r.neighborhood) || !IsRelevant(sum.Text, r.city, r.neighborhood) {
			continue
		}
		r.summary = sum
		break
	}
	return r.summary
}

func (s *GuideService) encyclopediaSentence(ctx context.Context, r *resolution, _ string) string {
	sum := s.fetchSummary(ctx, r)
	if sum == nil {
		return ""
	}
	return NormalizeTone(firstSentence(sum.Text, r.neighborhood), r.neighborhood, r.city)
}

func (s *GuideService) generatedSentence(ctx context.Context, r *resolution, _ string) string {
	if s.deps.Generator == nil {
		return ""
	}
	prompt := fmt.Sprintf(
		"In one neutral, factual sentence of under 30 words, describe the %s neighborhood of %s for a visitor. Mention %s by name. Do not use the first person or marketing language.",
		r.neighborhood, r.city, r.neighborhood,
	)
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	out, err := s.deps.Generator.Generate(callCtx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("neighborhood", r.neighborhood).Msg("content generation failed")
		return ""
	}
	sentence := firstSentence(out, r.neighborhood)
	if !mentions(sentence, r.neighborhood) {
		return ""
	}
	return NormalizeTone(sentence, r.neighborhood, r.city)
}

// images tries each image provider near the neighborhood centroid, then the
// encyclopedia thumbnail. Failures are logged and skipped.
func (s *GuideService) images(ctx context.Context, r *resolution) []models.Image {
	out := []models.Image{}
	if place := s.resolvePlace(ctx, r); place != nil && (place.Lat != 0 || place.Lon != 0) {
		for _, p := range s.deps.Images {
			if len(out) >= s.cfg.MaxImages {
				break
			}
			out = dedupeImages(out, s.nearbyImages(ctx, p, place, s.cfg.MaxImages-len(out)), s.cfg.MaxImages)
		}
	}
	if len(out) < s.cfg.MaxImages {
		if sum := s.fetchSummary(ctx, r); sum != nil && sum.ImageURL != "" {
			out = dedupeImages(out, []models.Image{{URL: sum.ImageURL, Provider: "wikipedia", Attribution: sum.URL}}, s.cfg.MaxImages)
		}
	}
	return out
}

func (s *GuideService) nearbyImages(ctx context.Context, p ImageProvider, place *models.Place, limit int) (imgs []models.Image) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Warn().Interface("panic", rec).Str("provider", p.Name()).Msg("image provider panicked")
			imgs = nil
		}
	}()
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	imgs, err := p.NearbyImages(callCtx, place.Lat, place.Lon, s.cfg.ImageRadius, limit)
	if err != nil {
		log.Warn().Err(err).Str("provider", p.Name()).Msg("image lookup failed")
		return nil
	}
	return imgs
}

func (s *GuideService) record(c candidate, conf models.Confidence, images []models.Image) models.GuideRecord {
	rec := models.GuideRecord{
		Text:        c.text,
		Source:      c.source,
		Confidence:  conf,
		GeneratedAt: models.EpochSeconds(s.now()),
		Images:      images,
	}
	if c.url != "" {
		u := c.url
		rec.SourceURL = &u
	}
	if rec.Images == nil {
		rec.Images = []models.Image{}
	}
	return rec
}

func (s *GuideService) persist(ctx context.Context, key string, rec models.GuideRecord) {
	b, err := json.Marshal(rec)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("encode guide")
		return
	}
	if err := s.deps.Cache.Set(ctx, key, b, s.cfg.CacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
