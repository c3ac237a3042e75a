package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sjbaraho/app-places-backend/config"
	"github.com/sjbaraho/app-places-backend/handlers"
	"github.com/sjbaraho/app-places-backend/services"
	"github.com/sjbaraho/app-places-backend/store"
	"github.com/sjbaraho/app-places-backend/store/memstore"
	"github.com/sjbaraho/app-places-backend/store/mongostore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Persistence
	var (
		users  store.UserStore
		places store.PlaceStore
		uow    store.UnitOfWork
	)
	switch cfg.Store.Driver {
	case config.DriverMemory:
		db := memstore.New()
		users, places, uow = db.Users(), db.Places(), db
		log.Println("Using in-memory store")
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := mongostore.Connect(ctx, cfg.Store.MongoURI, cfg.Store.Database)
		cancel()
		if err != nil {
			log.Fatalf("MongoDB connection failed: %v", err)
		}
		defer db.Close(context.Background())
		users, places, uow = db.Users(), db.Places(), db
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")
	defer redisClient.Close()

	assets, err := services.NewDiskAssetStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatalf("Upload directory unavailable: %v", err)
	}

	// Initialize services and handlers
	geocoder := services.NewCachedGeocoder(
		services.NewGoogleGeocoder(cfg.Geocode.Endpoint, cfg.Geocode.APIKey, cfg.Geocode.Timeout),
		redisClient,
		cfg.Geocode.CacheTTL,
	)
	tokens := services.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := services.NewUserService(users, services.NewPasswordHasher(cfg.Auth.HashTimeout), tokens)
	placeService := services.NewPlaceService(services.PlaceServiceConfig{
		Places:     places,
		Users:      users,
		UnitOfWork: uow,
		Geocoder:   geocoder,
		Assets:     assets,
		Index:      services.NewRedisPlaceIndex(redisClient),
		TxTimeout:  cfg.Store.TxTimeout,
	})

	r := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(userService, assets),
		Users:          handlers.NewUserHandler(userService),
		Places:         handlers.NewPlaceHandler(placeService, assets),
		Tokens:         tokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		UploadDir:      cfg.Uploads.Dir,
	})

	log.Printf("Server starting on :%s", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, r))
}
