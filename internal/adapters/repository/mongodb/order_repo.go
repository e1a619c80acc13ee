package mongodb

import (
	"context"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ordersCollection = "orders"

type MongoOrderRepository struct {
	DB *mongo.Database
}

func NewOrderRepository(db *mongo.Database) repository.OrderRepository {
	return &MongoOrderRepository{DB: db}
}

func (r *MongoOrderRepository) CreateOrder(ctx context.Context, order models.Order) error {
	_, err := r.DB.Collection(ordersCollection).InsertOne(ctx, order)
	return err
}

func (r *MongoOrderRepository) ListByWallet(ctx context.Context, wallet string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.DB.Collection(ordersCollection).Find(ctx, bson.M{"walletAddress": wallet}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
