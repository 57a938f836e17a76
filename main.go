// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"mamaezen/api/database"
	"mamaezen/api/handlers"
	"mamaezen/api/middleware"
	"mamaezen/api/store"
	"mamaezen/api/tracker"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize PostgreSQL Database (dashboard users) ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Initialize ClickHouse Database (funnel events) ---
	chClient, err := database.NewClickHouseDB()
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse database: %v", err)
	}
	defer chClient.Close()

	// --- Durable visitor KV store ---
	var durable store.KV
	if os.Getenv("KV_BACKEND") == "postgres" {
		pgKV, err := store.NewPostgresKV(dbClient.DB)
		if err != nil {
			log.Fatalf("Failed to initialize Postgres KV store: %v", err)
		}
		durable = pgKV
	} else {
		sqliteClient, err := database.NewSQLiteDB()
		if err != nil {
			log.Fatalf("Failed to initialize SQLite database: %v", err)
		}
		defer sqliteClient.Close()
		sqliteKV, err := store.NewSQLiteKV(sqliteClient.DB)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite KV store: %v", err)
		}
		durable = sqliteKV
	}

	// --- Stores and tracking core ---
	userStore := store.NewUserStore(dbClient.DB)
	analyticsStore := store.NewAnalyticsStore(chClient)

	destinations := []tracker.Destination{
		tracker.NewBusDestination(),
		tracker.NewClickHouseDestination(analyticsStore),
	}
	manager := tracker.NewManager(trackerConfigFromEnv(), durable, destinations)
	defer manager.Close()

	// --- Handlers ---
	authHandlers := handlers.NewAuthHandlers(userStore)
	trackHandlers := handlers.NewTrackHandlers(manager, analyticsStore)
	purchaseHandlers := handlers.NewPurchaseHandlers(manager)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		// Dashboard authentication
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		// Public tracking surface, consumed by the funnel page
		api.POST("/track", trackHandlers.TrackEvents)
		api.POST("/lifecycle", trackHandlers.Lifecycle)
		api.GET("/queue", trackHandlers.Queue)
		api.GET("/purchase/return", purchaseHandlers.Return)
		api.POST("/purchase/webhook", purchaseHandlers.Webhook)

		// Protected stats dashboard
		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			stats := protected.Group("/stats")
			{
				stats.GET("/event-counts", trackHandlers.GetEventCountsOverTime)
				stats.GET("/average-engagement", trackHandlers.GetAverageEngagement)
				stats.GET("/unique-sessions", trackHandlers.GetUniqueSessionsOverTime)
				stats.GET("/top-steps", trackHandlers.GetTopFunnelSteps)
				stats.GET("/step-dropoff", trackHandlers.GetStepDropoff)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Funnel tracking API starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Funnel tracking API failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// trackerConfigFromEnv overlays deployment values on the defaults; ad
// destination ids and the conversion value are per-deployment settings.
func trackerConfigFromEnv() tracker.Config {
	cfg := tracker.DefaultConfig()

	if v := os.Getenv("AD_SEND_TO"); v != "" {
		cfg.AdSendTo = v
	}
	if v := os.Getenv("AD_CONVERSION_SEND_TO"); v != "" {
		cfg.AdConversionSendTo = v
	}
	if v := os.Getenv("CONVERSION_VALUE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ConversionValue = parsed
		} else {
			log.Printf("Invalid CONVERSION_VALUE %q, keeping default: %v", v, err)
		}
	}
	if v := os.Getenv("CONVERSION_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := os.Getenv("CHECKOUT_URL"); v != "" {
		cfg.CheckoutURL = v
	}
	if v := os.Getenv("PROVIDER_ORIGIN"); v != "" {
		cfg.ProviderOrigin = v
	}
	if v := os.Getenv("IDLE_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.IdleTimeout = time.Duration(parsed) * time.Second
		}
	}

	return cfg
}
