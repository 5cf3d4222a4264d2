package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"guide-server/models"
)

// poiNamespace seeds synthesized ids so the same record always maps to the same id.
var poiNamespace = uuid.MustParse("6f1c3f0e-4f55-4f55-9a3e-2b8e8d7c9a10")

// normalizeRecords runs the provider's own Normalize over each record,
// skipping the ones it rejects, and fills in provenance.
func normalizeRecords(p Provider, recs []models.RawRecord) []models.POI {
	out := make([]models.POI, 0, len(recs))
	for _, rec := range recs {
		poi, err := normalizeOne(p, rec)
		if err != nil {
			log.Warn().Err(err).Str("provider", p.Name()).Msg("skipping malformed record")
			continue
		}
		out = append(out, poi)
	}
	return out
}

func normalizeOne(p Provider, rec models.RawRecord) (poi models.POI, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("normalize panicked: %v", r)
		}
	}()
	if rec == nil {
		return models.POI{}, fmt.Errorf("nil record")
	}
	poi, err = p.Normalize(rec)
	if err != nil {
		return models.POI{}, err
	}
	poi.Name = strings.TrimSpace(poi.Name)
	poi.ProviderName = p.Name()
	poi.Raw = rec
	if strings.TrimSpace(poi.ID) == "" {
		poi.ID = synthesizeID(p.Name(), poi)
	}
	return poi, nil
}

func synthesizeID(provider string, poi models.POI) string {
	seed := fmt.Sprintf("%s|%s|%s|%.6f|%.6f", provider, strings.ToLower(poi.Name), strings.ToLower(poi.Address), poi.Lat, poi.Lon)
	return "syn:" + uuid.NewSHA1(poiNamespace, []byte(seed)).String()
}

// dedupePOIs keeps the first record seen for each id.
func dedupePOIs(pois []models.POI) []models.POI {
	seen := make(map[string]struct{}, len(pois))
	out := make([]models.POI, 0, len(pois))
	for _, p := range pois {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// rankPOIs orders by descending name length, a rough stand-in for how
// specific a name is. Ties keep their first-seen order; nameless records
// naturally sort last.
func rankPOIs(pois []models.POI) {
	sort.SliceStable(pois, func(i, j int) bool {
		return utf8.RuneCountInString(pois[i].Name) > utf8.RuneCountInString(pois[j].Name)
	})
}

// filterBBox drops records outside b, including those with unknown coordinates.
func filterBBox(pois []models.POI, b models.BBox) []models.POI {
	out := pois[:0]
	for _, p := range pois {
		if !p.HasCoordinates() || !b.Contains(p.Lat, p.Lon) {
			continue
		}
		out = append(out, p)
	}
	return out
}
