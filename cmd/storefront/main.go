package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/cart"
	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/catalog"
	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/checkout"
	h "github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/http"
	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/identity"
	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/media"
	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/payment"
	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/storage"
)

type Config struct {
	HTTPPort        string
	StorageBackend  string // "sqlite" or "redis"
	SQLitePath      string
	MigrationsPath  string
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDBName     string
	CatalogBaseURL  string
	PaymentURL      string // empty selects the simulated gateway
	MediaUploadURL  string
	MediaPreset     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		StorageBackend:  getEnv("CART_STORAGE", "sqlite"),
		SQLitePath:      getEnv("SQLITE_PATH", "storefront.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "internal/storage/migrations"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		CatalogBaseURL:  getEnv("CATALOG_BASE_URL", "https://dummyjson.com"),
		PaymentURL:      getEnv("PAYMENT_GATEWAY_URL", ""),
		MediaUploadURL:  getEnv("MEDIA_UPLOAD_URL", "https://api.cloudinary.com/v1_1/davhloffd/image/upload"),
		MediaPreset:     getEnv("MEDIA_UPLOAD_PRESET", "my_upload_preset"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Cart snapshot storage
	snapshots, closeStorage, err := buildSnapshotStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up cart storage: %v", err)
	}
	defer closeStorage()

	cartStore := cart.NewStore(snapshots)

	// Profile documents
	mongoDB, err := identity.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	profiles := identity.NewMongoProfileStore(mongoDB)
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	// External collaborators
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL)
	uploader := media.NewUploader(cfg.MediaUploadURL, cfg.MediaPreset)

	var gateway payment.Gateway
	if cfg.PaymentURL != "" {
		gateway = payment.NewClient(cfg.PaymentURL)
		log.Printf("Using payment gateway at %s", cfg.PaymentURL)
	} else {
		gateway = payment.NewSimulatedGateway()
		log.Printf("PAYMENT_GATEWAY_URL not set, using simulated gateway")
	}

	checkoutService := checkout.NewService(cartStore, gateway)

	cartHandler := h.NewCartHandler(cartStore)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(catalogClient, cfg.RequestTimeout)
	profileHandler := h.NewProfileHandler(profiles, uploader, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.AuthMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Get("/summary", cartHandler.GetSummary)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Begin)
			r.Post("/complete", checkoutHandler.Complete)
		})
		r.Get("/products", productHandler.ListProducts)
		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Put("/", profileHandler.UpdateProfile)
			r.Post("/photo", profileHandler.UploadPhoto)
		})
		r.Get("/admin/users", profileHandler.ListUsers)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	// Flush any queued cart snapshot before the storage goes away.
	cartStore.Close()
	mongoDB.Client().Disconnect(shutdownCtx)

	log.Println("server exited")
}

func buildSnapshotStore(ctx context.Context, cfg *Config) (cart.SnapshotStore, func(), error) {
	switch cfg.StorageBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		log.Printf("Cart snapshots stored in Redis at %s", cfg.RedisAddr)
		return storage.NewRedisStore(client), func() { client.Close() }, nil
	default:
		store, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := store.RunMigrations(cfg.MigrationsPath); err != nil {
			return nil, nil, err
		}
		log.Printf("Cart snapshots stored in SQLite at %s", cfg.SQLitePath)
		return store, func() { store.Close() }, nil
	}
}
