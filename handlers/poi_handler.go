package handlers

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"guide-server/middleware"
	"guide-server/models"
	"guide-server/services"
	"guide-server/utils/errors"
)

// Discoverer is the orchestrator call the POI handler depends on.
type Discoverer interface {
	DiscoverDetailed(ctx context.Context, q models.DiscoverQuery) (services.DiscoverResult, error)
}

type POIHandler struct {
	discovery Discoverer
	cache     services.CacheStore
	cacheTTL  time.Duration
}

type DiscoverResponse struct {
	POIs      []models.POI            `json:"pois"`
	Count     int                     `json:"count"`
	Providers []services.ProviderStat `json:"providers,omitempty"`
	Cached    bool                    `json:"cached"`
}

// NewPOIHandler accepts a nil cache.
func NewPOIHandler(discovery Discoverer, cache services.CacheStore, cacheTTL time.Duration) *POIHandler {
	return &POIHandler{discovery: discovery, cache: cache, cacheTTL: cacheTTL}
}

func (h *POIHandler) GetPOIs(w http.ResponseWriter, r *http.Request) {
	q, err := parseDiscoverQuery(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	key := services.DiscoverCacheKey(q)
	if h.cache != nil {
		if raw, ok := h.cache.Get(r.Context(), key); ok {
			var res services.DiscoverResult
			if err := json.Unmarshal(raw, &res); err == nil {
				writeJSON(w, http.StatusOK, DiscoverResponse{POIs: res.POIs, Count: len(res.POIs), Cached: true})
				return
			}
			log.Warn().Str("key", key).Msg("unreadable cached discovery result")
		}
	}

	res, err := h.discovery.DiscoverDetailed(r.Context(), q)
	if err != nil {
		if goerrors.Is(err, services.ErrInvalidQuery) {
			middleware.WriteError(w, errors.InvalidInput(err.Error()))
			return
		}
		middleware.WriteError(w, err)
		return
	}

	if h.cache != nil && len(res.POIs) > 0 {
		if b, err := json.Marshal(services.DiscoverResult{POIs: res.POIs}); err == nil {
			if err := h.cache.Set(r.Context(), key, b, h.cacheTTL); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("cache write failed")
			}
		}
	}

	writeJSON(w, http.StatusOK, DiscoverResponse{
		POIs:      res.POIs,
		Count:     len(res.POIs),
		Providers: res.Providers,
	})
}

func parseDiscoverQuery(r *http.Request) (models.DiscoverQuery, error) {
	v := r.URL.Query()
	q := models.DiscoverQuery{
		Place: v.Get("place"),
		Kind:  models.Kind(v.Get("kind")),
		Limit: 20,
	}
	if s := v.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 || limit > 100 {
			return q, errors.InvalidInput("limit must be an integer between 0 and 100")
		}
		q.Limit = limit
	}
	if s := v.Get("bbox"); s != "" {
		bbox, err := models.ParseBBox(s)
		if err != nil {
			return q, errors.InvalidInput(err.Error())
		}
		q.BBox = bbox
	}
	if s := v.Get("images"); s != "" {
		images, err := strconv.ParseBool(s)
		if err != nil {
			return q, errors.InvalidInput("images must be a boolean")
		}
		q.Images = images
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}
