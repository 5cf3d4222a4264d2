package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guide-server/models"
)

func TestBuildOverpassQuery(t *testing.T) {
	q, err := buildOverpassQuery("Paris, France", models.KindRestaurant, 5, nil)
	require.NoError(t, err)
	assert.Contains(t, q, `area["name"="Paris"]->.searchArea;`)
	assert.Contains(t, q, `node["amenity"="restaurant"]["name"](area.searchArea);`)
	assert.Contains(t, q, "out center 5;")

	bbox := &models.BBox{West: 2.3, South: 48.8, East: 2.4, North: 48.9}
	q, err = buildOverpassQuery("", models.KindAll, 10, bbox)
	require.NoError(t, err)
	assert.NotContains(t, q, "area[")
	assert.Contains(t, q, `way["leisure"="park"]["name"](48.800000,2.300000,48.900000,2.400000);`)
	assert.Contains(t, q, `node["shop"]["name"]`)

	_, err = buildOverpassQuery("", models.KindBar, 5, nil)
	assert.Error(t, err)

	q, err = buildOverpassQuery(`Say "hi"`, models.KindBar, 5, nil)
	require.NoError(t, err)
	assert.Contains(t, q, `"name"="Say \"hi\""`)
}

func TestOverpass_Discover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.PostForm.Get("data"), `["tourism"="museum"]`)
		w.Write([]byte(`{"elements":[
			{"type":"node","id":123,"lat":48.86,"lon":2.33,"tags":{"name":"Louvre","tourism":"museum","website":"https://louvre.fr","addr:street":"Rue de Rivoli","addr:city":"Paris"}},
			{"type":"way","id":9876543210,"center":{"lat":48.85,"lon":2.31},"tags":{"name":"Musée Rodin","tourism":"museum"}}
		]}`))
	}))
	defer srv.Close()

	o := NewOverpass(srv.URL, "test-agent", srv.Client())
	recs, err := o.Discover(context.Background(), "Paris", models.KindMuseum, 5, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	louvre, err := o.Normalize(recs[0])
	require.NoError(t, err)
	assert.Equal(t, "osm:node/123", louvre.ID)
	assert.Equal(t, "Louvre", louvre.Name)
	assert.Equal(t, 48.86, louvre.Lat)
	assert.Equal(t, "https://louvre.fr", louvre.Website)
	assert.Equal(t, "Rue de Rivoli, Paris", louvre.Address)
	assert.Equal(t, "museum", louvre.AmenityKind)

	rodin, err := o.Normalize(recs[1])
	require.NoError(t, err)
	assert.Equal(t, "osm:way/9876543210", rodin.ID)
	assert.Equal(t, 48.85, rodin.Lat)
	assert.Equal(t, 2.31, rodin.Lon)
}

func TestOverpass_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	o := NewOverpass(srv.URL, "", srv.Client())
	_, err := o.Discover(context.Background(), "Paris", models.KindBar, 5, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, "overpass", se.Provider)
}

func TestOverpass_NormalizeRejectsMissingID(t *testing.T) {
	_, err := (&Overpass{}).Normalize(models.RawRecord{"tags": map[string]any{"name": "x"}})
	assert.Error(t, err)
}
