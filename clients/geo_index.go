package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"guide-server/models"
)

const geoKey = "pois:geo"

// RedisGeoIndex serves the curated POI set from a Redis geo index. The
// index is rebuilt from Mongo, or from the seed file when Mongo is not
// configured.
type RedisGeoIndex struct {
	client     *redis.Client
	collection *mongo.Collection
	seedFile   string
}

// NewRedisGeoIndex accepts a nil collection.
func NewRedisGeoIndex(client *redis.Client, collection *mongo.Collection, seedFile string) *RedisGeoIndex {
	return &RedisGeoIndex{client: client, collection: collection, seedFile: seedFile}
}

func (g *RedisGeoIndex) Name() string { return "curated" }

// Seed loads the curated POIs, seeding Mongo from the file when its
// collection is empty, and rebuilds the geo index.
func (g *RedisGeoIndex) Seed(ctx context.Context) error {
	pois, err := g.load(ctx)
	if err != nil {
		return err
	}
	if err := g.client.Del(ctx, geoKey).Err(); err != nil {
		return fmt.Errorf("curated: reset index: %w", err)
	}
	indexed := 0
	for _, poi := range pois {
		if poi.ID == "" || len(poi.Location.Coordinates) != 2 {
			log.Warn().Str("name", poi.Name).Msg("skipping curated POI without id or location")
			continue
		}
		data, err := json.Marshal(poi)
		if err != nil {
			log.Warn().Err(err).Str("name", poi.Name).Msg("marshal curated POI")
			continue
		}
		if err := g.client.HSet(ctx, poiKey(poi.ID), "data", data).Err(); err != nil {
			log.Warn().Err(err).Str("name", poi.Name).Msg("store curated POI")
			continue
		}
		err = g.client.GeoAdd(ctx, geoKey, &redis.GeoLocation{
			Name:      poi.ID,
			Longitude: poi.Location.Coordinates[0],
			Latitude:  poi.Location.Coordinates[1],
		}).Err()
		if err != nil {
			log.Warn().Err(err).Str("name", poi.Name).Msg("index curated POI")
			continue
		}
		indexed++
	}
	log.Info().Int("count", indexed).Msg("curated POIs indexed")
	return nil
}

func (g *RedisGeoIndex) load(ctx context.Context) ([]models.CuratedPOI, error) {
	if g.collection == nil {
		return readCuratedFile(g.seedFile)
	}
	count, err := g.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("curated: count documents: %w", err)
	}
	if count == 0 {
		pois, err := readCuratedFile(g.seedFile)
		if err != nil {
			return nil, err
		}
		docs := make([]any, 0, len(pois))
		for _, p := range pois {
			docs = append(docs, p)
		}
		if len(docs) > 0 {
			res, err := g.collection.InsertMany(ctx, docs)
			if err != nil {
				return nil, fmt.Errorf("curated: seed mongo: %w", err)
			}
			log.Info().Int("count", len(res.InsertedIDs)).Msg("seeded curated POIs into mongo")
		}
		return pois, nil
	}
	cursor, err := g.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("curated: find: %w", err)
	}
	defer cursor.Close(ctx)
	var pois []models.CuratedPOI
	if err := cursor.All(ctx, &pois); err != nil {
		return nil, fmt.Errorf("curated: decode: %w", err)
	}
	return pois, nil
}

func readCuratedFile(path string) ([]models.CuratedPOI, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("curated: open seed file: %w", err)
	}
	defer f.Close()
	var pois []models.CuratedPOI
	if err := json.NewDecoder(f).Decode(&pois); err != nil {
		return nil, fmt.Errorf("curated: decode seed file: %w", err)
	}
	return pois, nil
}

func poiKey(id string) string { return "poi:" + id }

// Discover only answers bounding-box queries; a bare place name yields nothing.
func (g *RedisGeoIndex) Discover(ctx context.Context, _ string, kind models.Kind, limit int, bbox *models.BBox) ([]models.RawRecord, error) {
	if bbox == nil {
		return nil, nil
	}
	lat, lon := bbox.Center()
	heightKm := (bbox.North - bbox.South) * 110.574
	widthKm := (bbox.East - bbox.West) * 111.320 * math.Cos(lat*math.Pi/180)
	ids, err := g.client.GeoSearch(ctx, geoKey, &redis.GeoSearchQuery{
		Longitude: lon,
		Latitude:  lat,
		BoxWidth:  math.Max(widthKm, 0.001),
		BoxHeight: math.Max(heightKm, 0.001),
		BoxUnit:   "km",
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("curated: geosearch: %w", err)
	}

	var out []models.RawRecord
	for _, id := range ids {
		data, err := g.client.HGet(ctx, poiKey(id), "data").Result()
		if err != nil {
			log.Warn().Err(err).Str("id", id).Msg("curated POI missing from index")
			continue
		}
		var poi models.CuratedPOI
		if err := json.Unmarshal([]byte(data), &poi); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("decode curated POI")
			continue
		}
		if kind != models.KindAll && kind != "" && !strings.EqualFold(poi.Type, string(kind)) {
			continue
		}
		out = append(out, curatedRecord(poi))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func curatedRecord(p models.CuratedPOI) models.RawRecord {
	rec := models.RawRecord{
		"id":          p.ID,
		"name":        p.Name,
		"type":        p.Type,
		"address":     p.Address,
		"website":     p.Website,
		"description": p.Description,
	}
	if len(p.Location.Coordinates) == 2 {
		rec["lon"] = p.Location.Coordinates[0]
		rec["lat"] = p.Location.Coordinates[1]
	}
	if len(p.Tags) > 0 {
		tags := make([]any, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = t
		}
		rec["tags"] = tags
	}
	return rec
}

func (g *RedisGeoIndex) Normalize(rec models.RawRecord) (models.POI, error) {
	id := stringField(rec, "id")
	if id == "" {
		return models.POI{}, fmt.Errorf("curated: record without id")
	}
	lat, _ := floatField(rec, "lat")
	lon, _ := floatField(rec, "lon")
	tags := map[string]string{}
	if d := stringField(rec, "description"); d != "" {
		tags["description"] = d
	}
	if list, ok := rec["tags"].([]any); ok {
		var labels []string
		for _, t := range list {
			if s, ok := t.(string); ok && s != "" {
				labels = append(labels, s)
			}
		}
		if len(labels) > 0 {
			tags["labels"] = strings.Join(labels, ";")
		}
	}
	if len(tags) == 0 {
		tags = nil
	}
	return models.POI{
		ID:          "curated:" + id,
		Name:        stringField(rec, "name"),
		Lat:         lat,
		Lon:         lon,
		Address:     stringField(rec, "address"),
		Website:     stringField(rec, "website"),
		Tags:        tags,
		AmenityKind: stringField(rec, "type"),
	}, nil
}
