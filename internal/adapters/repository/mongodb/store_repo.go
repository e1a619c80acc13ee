package mongodb

import (
	"context"
	"errors"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const storesCollection = "stores"

type MongoStoreRepository struct {
	DB *mongo.Database
}

func NewStoreRepository(db *mongo.Database) repository.StoreRepository {
	return &MongoStoreRepository{DB: db}
}

func (r *MongoStoreRepository) CreateStore(ctx context.Context, store models.Store) error {
	_, err := r.DB.Collection(storesCollection).InsertOne(ctx, store)
	return err
}

func (r *MongoStoreRepository) GetStore(ctx context.Context, storeID string) (*models.Store, error) {
	var store models.Store
	err := r.DB.Collection(storesCollection).FindOne(ctx, bson.M{"_id": storeID}).Decode(&store)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &store, nil
}

func (r *MongoStoreRepository) GetStoreByEmail(ctx context.Context, email string) (*models.Store, error) {
	var store models.Store
	err := r.DB.Collection(storesCollection).FindOne(ctx, bson.M{"email": email}).Decode(&store)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &store, nil
}

func (r *MongoStoreRepository) ListStores(ctx context.Context) ([]models.Store, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.DB.Collection(storesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stores []models.Store
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}
