package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string

	RedisAddr       string
	RedisDB         int
	MongoURI        string
	MongoDatabase   string
	LocalDataFile   string
	POISeedFile     string
	MemoryCacheSize int

	UserAgent    string
	OverpassURL  string
	NominatimURL string
	WikipediaURL string
	CommonsURL   string
	SearchURL    string

	MapillaryToken string
	GeminiAPIKey   string
	GeminiModel    string

	DiscoveryTimeout  time.Duration
	DiscoveryCacheTTL time.Duration
	GuideCacheTTL     time.Duration
	EnrichConcurrency int
	SearchConcurrency int
	ImagesPerPOI      int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", ":8080")
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MONGODB_DATABASE", "guide_db")
	v.SetDefault("LOCAL_DATA_FILE", "./data/local-guides.json")
	v.SetDefault("POI_SEED_FILE", "./data/pois.json")
	v.SetDefault("MEMORY_CACHE_SIZE", 4096)
	v.SetDefault("USER_AGENT", "guide-server/1.0 (+https://github.com/guide-server)")
	v.SetDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter")
	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("WIKIPEDIA_URL", "https://en.wikipedia.org")
	v.SetDefault("COMMONS_URL", "https://commons.wikimedia.org/w/api.php")
	v.SetDefault("SEARCH_URL", "https://html.duckduckgo.com/html/")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("DISCOVERY_TIMEOUT", "10s")
	v.SetDefault("DISCOVERY_CACHE_TTL", "1h")
	v.SetDefault("GUIDE_CACHE_TTL", "168h")
	v.SetDefault("ENRICH_CONCURRENCY", 8)
	v.SetDefault("SEARCH_CONCURRENCY", 3)
	v.SetDefault("IMAGES_PER_POI", 3)
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment")
	}
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	port := strings.TrimSpace(v.GetString("PORT"))
	if port != "" && !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		port = ":" + port
	}
	var origins []string
	for _, o := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return &Config{
		Port:           port,
		Env:            strings.TrimSpace(v.GetString("APP_ENV")),
		LogLevel:       v.GetString("LOG_LEVEL"),
		AllowedOrigins: origins,

		RedisAddr:       strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisDB:         v.GetInt("REDIS_DB"),
		MongoURI:        strings.TrimSpace(v.GetString("MONGODB_URI")),
		MongoDatabase:   v.GetString("MONGODB_DATABASE"),
		LocalDataFile:   v.GetString("LOCAL_DATA_FILE"),
		POISeedFile:     v.GetString("POI_SEED_FILE"),
		MemoryCacheSize: v.GetInt("MEMORY_CACHE_SIZE"),

		UserAgent:    v.GetString("USER_AGENT"),
		OverpassURL:  v.GetString("OVERPASS_URL"),
		NominatimURL: v.GetString("NOMINATIM_URL"),
		WikipediaURL: v.GetString("WIKIPEDIA_URL"),
		CommonsURL:   v.GetString("COMMONS_URL"),
		SearchURL:    v.GetString("SEARCH_URL"),

		MapillaryToken: strings.TrimSpace(v.GetString("MAPILLARY_TOKEN")),
		GeminiAPIKey:   strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		GeminiModel:    v.GetString("GEMINI_MODEL"),

		DiscoveryTimeout:  v.GetDuration("DISCOVERY_TIMEOUT"),
		DiscoveryCacheTTL: v.GetDuration("DISCOVERY_CACHE_TTL"),
		GuideCacheTTL:     v.GetDuration("GUIDE_CACHE_TTL"),
		EnrichConcurrency: v.GetInt("ENRICH_CONCURRENCY"),
		SearchConcurrency: v.GetInt("SEARCH_CONCURRENCY"),
		ImagesPerPOI:      v.GetInt("IMAGES_PER_POI"),
	}
}

// SetupLogging configures the global zerolog logger.
func (c *Config) SetupLogging() {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if strings.EqualFold(c.Env, "local") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
