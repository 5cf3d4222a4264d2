package models

// CuratedPOI is a hand-maintained point of interest stored in Mongo and
// mirrored into the Redis geo index.
type CuratedPOI struct {
	ID          string   `json:"id" bson:"_id,omitempty"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description" bson:"description"`
	Type        string   `json:"type" bson:"type"`
	Location    GeoPoint `json:"location" bson:"location"`
	Tags        []string `json:"tags" bson:"tags"`
	Address     string   `json:"address" bson:"address"`
	Website     string   `json:"website,omitempty" bson:"website,omitempty"`
}

// GeoPoint is a GeoJSON point, coordinates ordered [lon, lat].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// LocalGuide is a curated block of free text about a city.
type LocalGuide struct {
	City          string   `json:"city" bson:"city"`
	Key           string   `json:"key" bson:"key"`
	Aliases       []string `json:"aliases" bson:"aliases"`
	Neighborhoods []string `json:"neighborhoods" bson:"neighborhoods"`
	Text          string   `json:"text" bson:"text"`
}
