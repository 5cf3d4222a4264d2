package clients

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"guide-server/models"
)

// Helpers for reading loosely typed provider records.

func stringField(rec models.RawRecord, key string) string {
	switch v := rec[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// floatField accepts numbers and numeric strings, as Nominatim sends
// coordinates as strings.
func floatField(rec models.RawRecord, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case int:
		return float64(v), true
	}
	return 0, false
}

func mapField(rec models.RawRecord, key string) models.RawRecord {
	switch v := rec[key].(type) {
	case map[string]any:
		return v
	case models.RawRecord:
		return v
	}
	return nil
}

// stringTags flattens a tag object into string values.
func stringTags(m models.RawRecord) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k := range m {
		if s := stringField(m, k); s != "" {
			out[k] = s
		}
	}
	return out
}

// decodeRecords turns a JSON array of objects into raw records, keeping
// numbers exact.
func decodeRecords(provider string, data json.RawMessage) ([]models.RawRecord, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var recs []models.RawRecord
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("%s: decode records: %w", provider, err)
	}
	return recs, nil
}

// osmAddress assembles a one-line address from addr:* tags.
func osmAddress(tags map[string]string) string {
	street := strings.TrimSpace(tags["addr:housenumber"] + " " + tags["addr:street"])
	var parts []string
	for _, p := range []string{street, tags["addr:city"], tags["addr:postcode"]} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// osmKind picks the most specific category tag.
func osmKind(tags map[string]string) string {
	for _, k := range []string{"amenity", "tourism", "leisure", "shop", "historic"} {
		if v := tags[k]; v != "" {
			if k == "shop" {
				return "shop"
			}
			return v
		}
	}
	return ""
}
