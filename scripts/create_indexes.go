package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Run this script once to create database indexes
// Usage: go run scripts/create_indexes.go
func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI is required")
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "chainbazaar"
	}

	clientOptions := options.Client().ApplyURI(mongoURI).SetServerSelectionTimeout(30 * time.Second)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	db := client.Database(dbName)

	// The unique compound index is what enforces one review per
	// (walletAddress, productId) pair under concurrent submissions.
	reviews := db.Collection("reviews")
	_, err = reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "walletAddress", Value: 1},
			{Key: "productId", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_wallet_product"),
	})
	if err != nil {
		log.Printf("Failed to create uniq_wallet_product index: %v", err)
	} else {
		log.Println("Created unique index: uniq_wallet_product on reviews")
	}

	_, err = reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "reviewHash", Value: 1}},
		Options: options.Index().SetName("idx_reviewHash"),
	})
	if err != nil {
		log.Printf("Failed to create reviewHash index: %v", err)
	} else {
		log.Println("Created index: idx_reviewHash on reviews")
	}

	_, err = reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "submittedAt", Value: -1}},
		Options: options.Index().SetName("idx_submittedAt"),
	})
	if err != nil {
		log.Printf("Failed to create submittedAt index: %v", err)
	} else {
		log.Println("Created index: idx_submittedAt on reviews")
	}

	metadata := db.Collection("reviewMetadata")
	_, err = metadata.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("idx_timestamp"),
	})
	if err != nil {
		log.Printf("Failed to create metadata timestamp index: %v", err)
	} else {
		log.Println("Created index: idx_timestamp on reviewMetadata")
	}

	stores := db.Collection("stores")
	_, err = stores.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_store_email"),
	})
	if err != nil {
		log.Printf("Failed to create store email index: %v", err)
	} else {
		log.Println("Created unique index: uniq_store_email on stores")
	}

	products := db.Collection("products")
	_, err = products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "storeId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("idx_store_products_date"),
	})
	if err != nil {
		log.Printf("Failed to create store products index: %v", err)
	} else {
		log.Println("Created compound index: idx_store_products_date on products")
	}

	orders := db.Collection("orders")
	_, err = orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "walletAddress", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("idx_wallet_orders_date"),
	})
	if err != nil {
		log.Printf("Failed to create wallet orders index: %v", err)
	} else {
		log.Println("Created compound index: idx_wallet_orders_date on orders")
	}

	log.Println("Index creation complete")
}
