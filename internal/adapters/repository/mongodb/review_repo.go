package mongodb

import (
	"context"
	"errors"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/hashing"
	"github.com/chainbazaar/review-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	reviewsCollection  = "reviews"
	metadataCollection = "reviewMetadata"
)

type MongoReviewRepository struct {
	DB *mongo.Database
}

var _ repository.ReviewStore = (*MongoReviewRepository)(nil)

func NewReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{DB: db}
}

// EnsureIndexes creates the unique compound index that makes the
// (walletAddress, productId) pair a hard constraint rather than an
// application-level convention.
func (r *MongoReviewRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "walletAddress", Value: 1}, {Key: "productId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "reviewHash", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "submittedAt", Value: -1}},
		},
	}
	_, err := r.DB.Collection(reviewsCollection).Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *MongoReviewRepository) FindByWalletAndProduct(ctx context.Context, wallet, productID string) (*models.Review, error) {
	var review models.Review
	err := r.DB.Collection(reviewsCollection).FindOne(ctx, bson.M{
		"walletAddress": wallet,
		"productId":     productID,
	}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *MongoReviewRepository) Insert(ctx context.Context, review models.Review) error {
	_, err := r.DB.Collection(reviewsCollection).InsertOne(ctx, review)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	// Lost a race to a concurrent submission for the same pair; surface the
	// winner so the caller can build the conflict response.
	existing, findErr := r.FindByWalletAndProduct(ctx, review.WalletAddress, review.ProductID)
	if findErr != nil {
		return &repository.DuplicateReviewError{}
	}
	return &repository.DuplicateReviewError{
		ExistingReviewID: existing.ReviewID,
		SubmittedAt:      hashing.CanonicalTime(existing.SubmittedAt),
	}
}

func (r *MongoReviewRepository) FindByReviewHash(ctx context.Context, hash string) (*models.Review, error) {
	var review models.Review
	err := r.DB.Collection(reviewsCollection).FindOne(ctx, bson.M{"reviewHash": hash}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *MongoReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.M{"submittedAt": -1})
	cursor, err := r.DB.Collection(reviewsCollection).Find(ctx, bson.M{"productId": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *MongoReviewRepository) ListAll(ctx context.Context) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.M{"submittedAt": -1})
	cursor, err := r.DB.Collection(reviewsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *MongoReviewRepository) ListAllMetadata(ctx context.Context) ([]models.SubmissionRecord, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	cursor, err := r.DB.Collection(metadataCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.SubmissionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *MongoReviewRepository) AppendMetadata(ctx context.Context, record models.SubmissionRecord) error {
	_, err := r.DB.Collection(metadataCollection).InsertOne(ctx, record)
	return err
}
