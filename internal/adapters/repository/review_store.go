package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainbazaar/review-backend/internal/models"
)

// ErrNotFound is returned by lookups that match no review.
var ErrNotFound = errors.New("review not found")

// DuplicateReviewError is returned when an insert collides with an existing
// review for the same (walletAddress, productId) pair. The store itself
// enforces the constraint, so this also covers check-then-insert races.
// Callers use the embedded fields to build the conflict response.
type DuplicateReviewError struct {
	ExistingReviewID string
	SubmittedAt      string
}

func (e *DuplicateReviewError) Error() string {
	return fmt.Sprintf("review already exists (reviewId=%s)", e.ExistingReviewID)
}

// IsDuplicate reports whether err is a duplicate-pair business failure, as
// opposed to an infrastructure failure.
func IsDuplicate(err error) bool {
	var dup *DuplicateReviewError
	return errors.As(err, &dup)
}

// ReviewStore is the persistence port for reviews and their audit log.
// Implementations must make Insert atomic with respect to the uniqueness of
// the (walletAddress, productId) pair.
type ReviewStore interface {
	FindByWalletAndProduct(ctx context.Context, wallet, productID string) (*models.Review, error)
	Insert(ctx context.Context, review models.Review) error
	FindByReviewHash(ctx context.Context, hash string) (*models.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	ListAll(ctx context.Context) ([]models.Review, error)
	ListAllMetadata(ctx context.Context) ([]models.SubmissionRecord, error)
	AppendMetadata(ctx context.Context, record models.SubmissionRecord) error
}

type StoreRepository interface {
	CreateStore(ctx context.Context, store models.Store) error
	GetStore(ctx context.Context, storeID string) (*models.Store, error)
	GetStoreByEmail(ctx context.Context, email string) (*models.Store, error)
	ListStores(ctx context.Context) ([]models.Store, error)
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product models.Product) error
	ListByStore(ctx context.Context, storeID string) ([]models.Product, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order models.Order) error
	ListByWallet(ctx context.Context, wallet string) ([]models.Order, error)
}
