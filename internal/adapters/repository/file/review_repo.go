// Package file implements the review store on flat JSON files, matching the
// file-backed deployment: one array file for reviews and one for the
// submission-metadata log. A process-wide mutex serializes writers, and the
// duplicate check is re-done under the lock so Insert stays atomic with
// respect to the (walletAddress, productId) constraint.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/hashing"
	"github.com/chainbazaar/review-backend/internal/models"
)

const (
	reviewsFile  = "reviews.json"
	metadataFile = "metadata.json"
)

type FileReviewRepository struct {
	mu      sync.Mutex
	dataDir string
}

var _ repository.ReviewStore = (*FileReviewRepository)(nil)

func NewReviewRepository(dataDir string) (*FileReviewRepository, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	r := &FileReviewRepository{dataDir: dataDir}
	for _, name := range []string{reviewsFile, metadataFile} {
		path := filepath.Join(dataDir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
				return nil, fmt.Errorf("init %s: %w", name, err)
			}
		}
	}
	return r, nil
}

func (r *FileReviewRepository) readReviews() ([]models.Review, error) {
	data, err := os.ReadFile(filepath.Join(r.dataDir, reviewsFile))
	if err != nil {
		return nil, fmt.Errorf("read reviews file: %w", err)
	}
	var reviews []models.Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews file: %w", err)
	}
	return reviews, nil
}

// writeJSON replaces a data file via temp-file rename so a crashed write
// never leaves a truncated array behind.
func (r *FileReviewRepository) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(r.dataDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (r *FileReviewRepository) FindByWalletAndProduct(ctx context.Context, wallet, productID string) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findByWalletAndProductLocked(wallet, productID)
}

func (r *FileReviewRepository) findByWalletAndProductLocked(wallet, productID string) (*models.Review, error) {
	reviews, err := r.readReviews()
	if err != nil {
		return nil, err
	}
	for i := range reviews {
		if reviews[i].WalletAddress == wallet && reviews[i].ProductID == productID {
			return &reviews[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *FileReviewRepository) Insert(ctx context.Context, review models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.findByWalletAndProductLocked(review.WalletAddress, review.ProductID)
	if err == nil {
		return &repository.DuplicateReviewError{
			ExistingReviewID: existing.ReviewID,
			SubmittedAt:      hashing.CanonicalTime(existing.SubmittedAt),
		}
	}
	if err != repository.ErrNotFound {
		return err
	}

	reviews, err := r.readReviews()
	if err != nil {
		return err
	}
	reviews = append(reviews, review)
	return r.writeJSON(reviewsFile, reviews)
}

func (r *FileReviewRepository) FindByReviewHash(ctx context.Context, hash string) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reviews, err := r.readReviews()
	if err != nil {
		return nil, err
	}
	for i := range reviews {
		if reviews[i].ReviewHash == hash {
			return &reviews[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *FileReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reviews, err := r.readReviews()
	if err != nil {
		return nil, err
	}
	filtered := make([]models.Review, 0)
	for _, review := range reviews {
		if review.ProductID == productID {
			filtered = append(filtered, review)
		}
	}
	sortNewestFirst(filtered)
	return filtered, nil
}

func (r *FileReviewRepository) ListAll(ctx context.Context) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reviews, err := r.readReviews()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(reviews)
	return reviews, nil
}

func (r *FileReviewRepository) ListAllMetadata(ctx context.Context) ([]models.SubmissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readMetadata()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

func (r *FileReviewRepository) AppendMetadata(ctx context.Context, record models.SubmissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readMetadata()
	if err != nil {
		return err
	}
	records = append(records, record)
	return r.writeJSON(metadataFile, records)
}

func (r *FileReviewRepository) readMetadata() ([]models.SubmissionRecord, error) {
	data, err := os.ReadFile(filepath.Join(r.dataDir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}
	var records []models.SubmissionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode metadata file: %w", err)
	}
	return records, nil
}

func sortNewestFirst(reviews []models.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].SubmittedAt.After(reviews[j].SubmittedAt)
	})
}
