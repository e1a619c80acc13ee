package main

import (
	"context"
	"os"
	"time"

	"github.com/chainbazaar/review-backend/internal/adapters/cache"
	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	filestore "github.com/chainbazaar/review-backend/internal/adapters/repository/file"
	"github.com/chainbazaar/review-backend/internal/adapters/repository/mongodb"
	"github.com/chainbazaar/review-backend/internal/events"
	"github.com/chainbazaar/review-backend/internal/handlers"
	"github.com/chainbazaar/review-backend/internal/ipfs"
	"github.com/chainbazaar/review-backend/internal/services/review"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// .env is optional; production sets env vars directly.
	_ = godotenv.Load()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	port := getEnv("PORT", "3002")
	storageBackend := getEnv("REVIEW_STORAGE", "mongo")
	mongoURI := getEnv("MONGODB_URI", "")
	dbName := getEnv("DB_NAME", "chainbazaar")
	dataDir := getEnv("REVIEW_DATA_DIR", "data")
	preferred := getEnv("PREFERRED_IPFS_SERVICE", ipfs.ServiceLocalIPFS)

	var db *mongo.Database
	if mongoURI != "" {
		var err error
		db, err = connectMongo(mongoURI, dbName)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		log.Info("Connected to MongoDB")
	}

	store := buildReviewStore(log, storageBackend, db, dataDir)
	uploader := ipfs.NewUploader(ipfs.ConfigFromEnv(), log)

	var marker review.DuplicateMarker
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Warnf("Redis unavailable, duplicate marker cache disabled: %v", err)
		} else {
			marker = cache.NewReviewCache(client)
			log.Info("Duplicate marker cache enabled")
		}
	}

	channel := events.NewChannel(log)
	registerEventLogging(channel, log)

	service := review.NewService(store, uploader, marker, channel, preferred, log)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	cfg := handlers.RouterConfig{
		Reviews:  handlers.NewReviewHandler(service),
		IPFS:     handlers.NewIPFSHandler(uploader),
		Uploader: uploader,
	}
	if db != nil {
		cfg.Stores = handlers.NewStoreHandler(mongodb.NewStoreRepository(db))
		cfg.Products = handlers.NewProductHandler(mongodb.NewProductRepository(db))
		cfg.Orders = handlers.NewOrderHandler(mongodb.NewOrderRepository(db))
		cfg.Upload = handlers.NewUploadHandler()
	}
	handlers.SetupRoutes(router, cfg)

	log.Infof("Review API server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func connectMongo(uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client.Database(dbName), nil
}

// buildReviewStore selects the persistence adapter for the review pipeline:
// MongoDB when configured, flat JSON files otherwise.
func buildReviewStore(log *logrus.Logger, backend string, db *mongo.Database, dataDir string) repository.ReviewStore {
	if backend == "mongo" && db != nil {
		repo := mongodb.NewReviewRepository(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warnf("Failed to create review indexes: %v", err)
		}
		return repo
	}

	if backend == "mongo" {
		log.Warn("REVIEW_STORAGE=mongo but no MONGODB_URI set - falling back to file storage")
	}
	repo, err := filestore.NewReviewRepository(dataDir)
	if err != nil {
		log.Fatalf("Failed to initialize file review store: %v", err)
	}
	return repo
}

// registerEventLogging attaches the default observers: structured logs for
// accepted submissions and duplicate attempts. Analytics or webhook
// subscribers would hang off the same channel.
func registerEventLogging(channel *events.Channel, log *logrus.Logger) {
	_ = channel.SubscribeReviewSubmitted(func(ev events.ReviewSubmittedEvent) {
		log.WithFields(logrus.Fields{
			"event":      "reviewSubmitted",
			"reviewId":   ev.ReviewID,
			"productId":  ev.ProductID,
			"wallet":     ev.WalletAddress,
			"rating":     ev.Rating,
			"reviewHash": ev.ReviewHash,
			"published":  ev.Publication.Success,
		}).Info("review event emitted")
	})
	_ = channel.SubscribeDuplicateAttempt(func(ev events.DuplicateAttemptEvent) {
		log.WithFields(logrus.Fields{
			"event":            "duplicateReviewAttempted",
			"wallet":           ev.WalletAddress,
			"productId":        ev.ProductID,
			"existingReviewId": ev.ExistingReviewID,
		}).Warn("duplicate review attempt")
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
