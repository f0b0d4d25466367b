package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"keycrm-sync-layer/internal/application"
	"keycrm-sync-layer/internal/application/webhook_handlers"
	"keycrm-sync-layer/internal/domain"
	apiinfra "keycrm-sync-layer/internal/infrastructure/api"
	"keycrm-sync-layer/internal/infrastructure/keycrm"
	"keycrm-sync-layer/internal/infrastructure/metrics"
	"keycrm-sync-layer/internal/infrastructure/pubsub"
	"keycrm-sync-layer/internal/infrastructure/repository"
	"keycrm-sync-layer/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Get configuration from environment
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "keycrm_sync"
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(dbName)

	// Initialize repositories
	orderRepo := repository.NewMongoOrderRepository(db)

	var settingsRepo ports.SettingsRepository = repository.NewMongoSettingsRepository(db)
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
		settingsRepo = repository.NewCachedSettingsRepository(settingsRepo, redisClient, 5*time.Minute, logger)
		logger.Info().Str("addr", redisAddr).Msg("Settings cache enabled")
	}

	// Initialize KeyCRM client (KEYCRM_BASE_URL overrides the public API,
	// mainly for staging setups)
	crmClient := keycrm.NewClient(os.Getenv("KEYCRM_BASE_URL"), logger)

	// Initialize observability
	syncMetrics := metrics.NewSyncMetrics()
	syncPubSub := pubsub.NewSyncPubSub(logger)

	// Initialize application services
	syncService := application.NewSyncService(
		orderRepo,
		settingsRepo,
		crmClient,
		application.DefaultSyncPolicy{},
		syncPubSub,
		syncMetrics,
		logger,
	)

	settingsService := application.NewSettingsService(settingsRepo, logger)

	// Initialize webhook dispatcher and register handlers
	dispatcher := application.NewWebhookDispatcher(logger)
	dispatcher.RegisterHandler(webhook_handlers.NewOrderCreatedHandler(orderRepo, syncService, logger))
	dispatcher.RegisterHandler(webhook_handlers.NewOrderUpdatedHandler(orderRepo, syncService, logger))

	adminAPI := apiinfra.NewAdminAPI(settingsService, syncPubSub, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Prometheus metrics
	r.Handle("/metrics", syncMetrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Webhook endpoint: POST /webhooks/woocommerce/{topic}
	webhookToken := os.Getenv("WEBHOOK_TOKEN")
	r.Post("/webhooks/woocommerce/{topic}", webhookHandler(dispatcher, webhookToken, logger))

	// Admin surface
	r.Get("/admin/settings", adminAPI.GetSettings)
	r.Put("/admin/settings", adminAPI.UpdateSettings)
	r.Get("/admin/events", adminAPI.StreamEvents)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("Starting KeyCRM sync service")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// webhookEventBody is the shop's webhook payload: the full order document
// plus, for status changes, the transition.
type webhookEventBody struct {
	Order     *domain.Order `json:"order"`
	OldStatus string        `json:"old_status"`
	NewStatus string        `json:"new_status"`
}

// webhookHandler handles order lifecycle webhooks from the shop. The sync
// outcome never affects the response: once the order is stored, the shop
// gets a 200 and the result lands on the order as a note.
func webhookHandler(dispatcher *application.WebhookDispatcher, token string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		topic := chi.URLParam(r, "topic")
		if topic == "" {
			http.Error(w, "topic is required", http.StatusBadRequest)
			return
		}

		if token != "" && r.Header.Get("X-Webhook-Token") != token {
			logger.Warn().Str("topic", topic).Msg("Webhook token mismatch")
			http.Error(w, "invalid webhook token", http.StatusUnauthorized)
			return
		}

		var body webhookEventBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			logger.Warn().Err(err).Str("topic", topic).Msg("Failed to decode webhook payload")
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if body.Order == nil {
			http.Error(w, "order is required", http.StatusBadRequest)
			return
		}

		event := &domain.OrderEvent{
			Topic:      topic,
			Order:      body.Order,
			OldStatus:  body.OldStatus,
			NewStatus:  body.NewStatus,
			ReceivedAt: time.Now(),
		}

		if err := dispatcher.Dispatch(ctx, event); err != nil {
			logger.Error().
				Err(err).
				Str("topic", topic).
				Int64("orderId", body.Order.ID).
				Msg("Failed to dispatch order event")

			// Return 500 so the shop retries event delivery
			http.Error(w, "failed to process order event", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"received": "true",
		})
	}
}
