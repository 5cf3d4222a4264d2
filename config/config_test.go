package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.DiscoveryTimeout)
	assert.Equal(t, 168*time.Hour, cfg.GuideCacheTTL)
	assert.Equal(t, 8, cfg.EnrichConcurrency)
	assert.Equal(t, 3, cfg.SearchConcurrency)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.GeminiAPIKey)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("PORT", "9090")
	v.Set("GUIDE_CACHE_TTL", "72h")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	v.Set("MAPILLARY_TOKEN", "  tok ")

	cfg := fromViper(v)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.GuideCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "tok", cfg.MapillaryToken)
}
