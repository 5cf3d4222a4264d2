package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guide-server/config"
)

func TestImageProviders(t *testing.T) {
	t.Run("without token", func(t *testing.T) {
		guide, poi := imageProviders(&config.Config{}, http.DefaultClient)
		require.Len(t, guide, 1)
		assert.Equal(t, "commons", guide[0].Name())
		assert.Nil(t, poi)
	})

	t.Run("with token", func(t *testing.T) {
		guide, poi := imageProviders(&config.Config{MapillaryToken: "secret"}, http.DefaultClient)
		require.Len(t, guide, 2)
		assert.Equal(t, "commons", guide[0].Name())
		assert.Equal(t, "mapillary", guide[1].Name())
		require.NotNil(t, poi)
		assert.Equal(t, "mapillary", poi.Name())
	})
}
