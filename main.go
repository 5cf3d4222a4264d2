package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"guide-server/clients"
	"guide-server/config"
	"guide-server/handlers"
	"guide-server/middleware"
	"guide-server/services"
	"guide-server/utils/errors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	cfg.SetupLogging()
	ctx := context.Background()

	// Redis backs both the cache and the curated geo index; without it the
	// cache falls back to memory and the curated provider is skipped.
	var cache services.CacheStore
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
		cache = services.NewRedisCache(redisClient, "guide-server:")
	} else {
		log.Info().Int("size", cfg.MemoryCacheSize).Msg("REDIS_ADDR not set, using in-memory cache")
		mem, err := services.NewMemoryCache(cfg.MemoryCacheSize)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create memory cache")
		}
		cache = mem
	}

	var mongoDB *mongo.Database
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal().Err(err).Msg("mongodb connection failed")
		}
		if err := client.Ping(ctx, nil); err != nil {
			log.Fatal().Err(err).Msg("failed to ping mongodb")
		}
		log.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongodb")
		mongoDB = client.Database(cfg.MongoDatabase)
	}

	local := setupLocalData(ctx, cfg, mongoDB)
	hc := clients.NewHTTPClient(cfg.DiscoveryTimeout + 5*time.Second)

	nominatim := clients.NewNominatim(cfg.NominatimURL, cfg.UserAgent, hc)
	providers := []services.Provider{
		clients.NewOverpass(cfg.OverpassURL, cfg.UserAgent, hc),
		nominatim,
	}
	if redisClient != nil {
		var coll *mongo.Collection
		if mongoDB != nil {
			coll = mongoDB.Collection("pois")
		}
		index := clients.NewRedisGeoIndex(redisClient, coll, cfg.POISeedFile)
		if err := index.Seed(ctx); err != nil {
			log.Warn().Err(err).Msg("curated index not seeded")
		}
		providers = append(providers, index)
	}

	guideImages, poiImages := imageProviders(cfg, hc)

	discovery := services.NewDiscoveryService(providers, poiImages, services.DiscoveryConfig{
		Timeout:           cfg.DiscoveryTimeout,
		EnrichConcurrency: cfg.EnrichConcurrency,
		ImagesPerPOI:      cfg.ImagesPerPOI,
	})

	deps := services.GuideDeps{
		Cache:        cache,
		Discovery:    discovery,
		Geocoder:     nominatim,
		Search:       clients.NewWebSearch(cfg.SearchURL, cfg.UserAgent, hc),
		Encyclopedia: clients.NewWikipedia(cfg.WikipediaURL, cfg.UserAgent, hc),
		Local:        local,
		Images:       guideImages,
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := clients.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn().Err(err).Msg("content generation disabled")
		} else {
			deps.Generator = gemini
		}
	}
	guides := services.NewGuideService(deps, services.GuideConfig{
		CacheTTL:          cfg.GuideCacheTTL,
		SearchConcurrency: cfg.SearchConcurrency,
		DiscoveryTimeout:  cfg.DiscoveryTimeout,
	})

	poiHandler := handlers.NewPOIHandler(discovery, cache, cfg.DiscoveryCacheTTL)
	guideHandler := handlers.NewGuideHandler(guides)

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, errors.ErrNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, errors.ErrMethodNotAllowed)
	})

	r.HandleFunc("/health", handlers.Health).Methods("GET")
	r.HandleFunc("/pois", poiHandler.GetPOIs).Methods("GET", "OPTIONS")
	r.HandleFunc("/guide", guideHandler.GetGuide).Methods("GET", "OPTIONS")
	r.HandleFunc("/guide", guideHandler.DeleteGuide).Methods("DELETE")

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", cfg.Port).Msg("server starting")
	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}

// setupLocalData prefers Mongo, seeding it from the JSON file, and falls
// back to reading the file directly. It returns nil when neither works.
func setupLocalData(ctx context.Context, cfg *config.Config, db *mongo.Database) services.LocalData {
	if db != nil {
		m := clients.NewMongoLocalData(db.Collection("local_guides"))
		if err := m.Seed(ctx, cfg.LocalDataFile); err != nil {
			log.Warn().Err(err).Msg("local guides not seeded")
		}
		return m
	}
	f, err := clients.NewFileLocalData(cfg.LocalDataFile)
	if err != nil {
		log.Warn().Err(err).Msg("local data unavailable")
		return nil
	}
	return f
}

// imageProviders returns the guide image chain and the POI enrichment
// provider. POI enrichment needs a Mapillary token and is nil without one.
func imageProviders(cfg *config.Config, hc *http.Client) ([]services.ImageProvider, services.ImageProvider) {
	guide := []services.ImageProvider{clients.NewCommons(cfg.CommonsURL, cfg.UserAgent, hc)}
	if cfg.MapillaryToken == "" {
		log.Info().Msg("MAPILLARY_TOKEN not set, POI image enrichment disabled")
		return guide, nil
	}
	mapillary := clients.NewMapillary("", cfg.MapillaryToken, hc)
	return append(guide, mapillary), mapillary
}
