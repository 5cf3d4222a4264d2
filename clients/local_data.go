package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"guide-server/models"
)

// cityKey lowercases s and collapses everything but letters and digits to
// single spaces, so "Tlaquepaque,  Mexico" and "tlaquepaque mexico" match.
func cityKey(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
			continue
		}
		space = true
	}
	return b.String()
}

// lookupKeys returns the keys to try for a city: the full string first,
// then its locality part.
func lookupKeys(city string) []string {
	keys := []string{cityKey(city)}
	if i := strings.IndexByte(city, ','); i > 0 {
		if k := cityKey(city[:i]); k != keys[0] {
			keys = append(keys, k)
		}
	}
	return keys
}

func readGuidesFile(path string) ([]models.LocalGuide, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("local data: read %s: %w", path, err)
	}
	var guides []models.LocalGuide
	if err := json.Unmarshal(data, &guides); err != nil {
		return nil, fmt.Errorf("local data: decode %s: %w", path, err)
	}
	for i := range guides {
		indexGuide(&guides[i])
	}
	return guides, nil
}

// indexGuide fills Key and normalizes Aliases for lookup.
func indexGuide(g *models.LocalGuide) {
	if g.Key == "" {
		g.Key = cityKey(g.City)
	} else {
		g.Key = cityKey(g.Key)
	}
	aliases := make([]string, 0, len(g.Aliases))
	for _, a := range g.Aliases {
		if k := cityKey(a); k != "" {
			aliases = append(aliases, k)
		}
	}
	g.Aliases = aliases
}

// FileLocalData serves the curated corpus from a JSON file held in memory.
type FileLocalData struct {
	byKey map[string]*models.LocalGuide
}

func NewFileLocalData(path string) (*FileLocalData, error) {
	guides, err := readGuidesFile(path)
	if err != nil {
		return nil, err
	}
	return newFileLocalData(guides), nil
}

func newFileLocalData(guides []models.LocalGuide) *FileLocalData {
	d := &FileLocalData{byKey: make(map[string]*models.LocalGuide)}
	for i := range guides {
		g := &guides[i]
		d.byKey[g.Key] = g
		for _, a := range g.Aliases {
			if _, taken := d.byKey[a]; !taken {
				d.byKey[a] = g
			}
		}
	}
	return d
}

func (d *FileLocalData) find(city string) (*models.LocalGuide, error) {
	for _, k := range lookupKeys(city) {
		if g, ok := d.byKey[k]; ok {
			return g, nil
		}
	}
	return nil, fmt.Errorf("local data: %q: %w", city, ErrNotFound)
}

func (d *FileLocalData) CityText(_ context.Context, city string) (string, error) {
	g, err := d.find(city)
	if err != nil {
		return "", err
	}
	return g.Text, nil
}

func (d *FileLocalData) Neighborhoods(_ context.Context, city string) ([]string, error) {
	g, err := d.find(city)
	if err != nil {
		return nil, err
	}
	return g.Neighborhoods, nil
}

// MongoLocalData serves the curated corpus from a Mongo collection.
type MongoLocalData struct {
	collection *mongo.Collection
}

func NewMongoLocalData(collection *mongo.Collection) *MongoLocalData {
	return &MongoLocalData{collection: collection}
}

// Seed inserts the file's guides when the collection is empty.
func (m *MongoLocalData) Seed(ctx context.Context, path string) error {
	count, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("local data: count documents: %w", err)
	}
	if count > 0 {
		return nil
	}
	guides, err := readGuidesFile(path)
	if err != nil {
		return err
	}
	if len(guides) == 0 {
		return nil
	}
	docs := make([]any, 0, len(guides))
	for _, g := range guides {
		docs = append(docs, g)
	}
	res, err := m.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("local data: seed: %w", err)
	}
	log.Info().Int("count", len(res.InsertedIDs)).Msg("seeded local guides into mongo")
	return nil
}

func (m *MongoLocalData) find(ctx context.Context, city string) (*models.LocalGuide, error) {
	for _, k := range lookupKeys(city) {
		var g models.LocalGuide
		err := m.collection.FindOne(ctx, bson.M{"$or": []bson.M{{"key": k}, {"aliases": k}}}).Decode(&g)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("local data: find %q: %w", city, err)
		}
		return &g, nil
	}
	return nil, fmt.Errorf("local data: %q: %w", city, ErrNotFound)
}

func (m *MongoLocalData) CityText(ctx context.Context, city string) (string, error) {
	g, err := m.find(ctx, city)
	if err != nil {
		return "", err
	}
	return g.Text, nil
}

func (m *MongoLocalData) Neighborhoods(ctx context.Context, city string) ([]string, error) {
	g, err := m.find(ctx, city)
	if err != nil {
		return nil, err
	}
	return g.Neighborhoods, nil
}
