package handlers

import (
	"context"
	"net/http"
	"strings"

	"guide-server/middleware"
	"guide-server/models"
	"guide-server/utils/errors"
)

type GuideResolver interface {
	ResolveGuide(ctx context.Context, city, neighborhood string) models.GuideRecord
	Invalidate(ctx context.Context, city, neighborhood string) error
}

type GuideHandler struct {
	guides GuideResolver
}

type GuideResponse struct {
	models.GuideRecord
	Cached bool `json:"cached"`
}

func NewGuideHandler(guides GuideResolver) *GuideHandler {
	return &GuideHandler{guides: guides}
}

func guideParams(r *http.Request) (city, neighborhood string, err error) {
	city = strings.TrimSpace(r.URL.Query().Get("city"))
	neighborhood = strings.TrimSpace(r.URL.Query().Get("neighborhood"))
	if city == "" || neighborhood == "" {
		return "", "", errors.InvalidInput("city and neighborhood are required")
	}
	if len(city) > 200 || len(neighborhood) > 200 {
		return "", "", errors.InvalidInput("city or neighborhood too long")
	}
	return city, neighborhood, nil
}

func (h *GuideHandler) GetGuide(w http.ResponseWriter, r *http.Request) {
	city, neighborhood, err := guideParams(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	rec := h.guides.ResolveGuide(r.Context(), city, neighborhood)
	writeJSON(w, http.StatusOK, GuideResponse{GuideRecord: rec, Cached: rec.Cached})
}

func (h *GuideHandler) DeleteGuide(w http.ResponseWriter, r *http.Request) {
	city, neighborhood, err := guideParams(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.guides.Invalidate(r.Context(), city, neighborhood); err != nil {
		middleware.WriteError(w, errors.Wrap(err, "CACHE_UNAVAILABLE", "Could not invalidate guide", http.StatusServiceUnavailable))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
