package mongodb

import (
	"context"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollection = "products"

type MongoProductRepository struct {
	DB *mongo.Database
}

func NewProductRepository(db *mongo.Database) repository.ProductRepository {
	return &MongoProductRepository{DB: db}
}

func (r *MongoProductRepository) CreateProduct(ctx context.Context, product models.Product) error {
	_, err := r.DB.Collection(productsCollection).InsertOne(ctx, product)
	return err
}

func (r *MongoProductRepository) ListByStore(ctx context.Context, storeID string) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.DB.Collection(productsCollection).Find(ctx, bson.M{"storeId": storeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
