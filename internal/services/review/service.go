// Package review orchestrates review submission: validation, duplicate
// prevention, hashing, best-effort publication, persistence, and lifecycle
// events. It is the only component that writes to the review store, calls
// the publication client, or emits on the event channel.
package review

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/events"
	"github.com/chainbazaar/review-backend/internal/hashing"
	"github.com/chainbazaar/review-backend/internal/ipfs"
	"github.com/chainbazaar/review-backend/internal/models"
	"github.com/sirupsen/logrus"
)

var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

const (
	// publishBudget caps the whole backend fallback chain; hung backends
	// must never consume the time the insert needs afterwards.
	publishBudget = 45 * time.Second
	storeTimeout  = 10 * time.Second
)

// ValidationError rejects malformed input; the caller fixes the request,
// the service never retries.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DuplicateError rejects a second review for the same (wallet, product)
// pair, carrying enough context for a "you already reviewed this" response.
type DuplicateError struct {
	ExistingReviewID string
	SubmittedAt      string
}

func (e *DuplicateError) Error() string {
	return "review already submitted for this product"
}

// StorageError is an infrastructure failure persisting the review, distinct
// from the business-rule duplicate rejection.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("failed to save review: %v", e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Publisher is the slice of the publication client the service needs.
type Publisher interface {
	Upload(ctx context.Context, payload interface{}, filename, preferredService string) *ipfs.UploadResult
}

// DuplicateMarker is an optional fast-path hint in front of the store's
// duplicate check. The store constraint remains authoritative; the marker
// lets duplicate rejection keep working while the store is degraded.
type DuplicateMarker interface {
	ReviewMarkerKey(wallet, productID string) string
	GetMarker(ctx context.Context, key string) (string, error)
	SetMarker(ctx context.Context, key, reviewID string) error
}

// SubmissionResult is the payload of an accepted submission.
type SubmissionResult struct {
	ReviewID    string
	ReviewHash  string
	ContentHash string
	Timestamp   time.Time
	Publication models.PublicationResult
}

type AllReviews struct {
	Reviews      []models.Review           `json:"reviews"`
	Metadata     []models.SubmissionRecord `json:"metadata"`
	TotalReviews int                       `json:"totalReviews"`
}

type Service struct {
	store            repository.ReviewStore
	publisher        Publisher
	marker           DuplicateMarker
	channel          *events.Channel
	log              *logrus.Logger
	preferredService string
}

func NewService(store repository.ReviewStore, publisher Publisher, marker DuplicateMarker, channel *events.Channel, preferredService string, log *logrus.Logger) *Service {
	if preferredService == "" {
		preferredService = ipfs.ServiceLocalIPFS
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:            store,
		publisher:        publisher,
		marker:           marker,
		channel:          channel,
		log:              log,
		preferredService: preferredService,
	}
}

// publishedReview is the payload replicated to content-addressable storage.
type publishedReview struct {
	ReviewID      string `json:"reviewId"`
	Rating        int    `json:"rating"`
	Text          string `json:"text"`
	ProductID     string `json:"productId"`
	WalletAddress string `json:"walletAddress"`
	Timestamp     string `json:"timestamp"`
	ReviewHash    string `json:"reviewHash"`
	ContentHash   string `json:"contentHash"`
	SubmittedAt   string `json:"submittedAt"`
}

// Submit runs one review through the acceptance pipeline. Publication and
// metadata failures are downgraded to non-fatal; only invalid input, a
// duplicate pair, or a store failure reject the submission.
func (s *Service) Submit(ctx context.Context, input models.SubmitReviewInput, clientIP string) (*SubmissionResult, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	wallet := strings.ToLower(input.WalletAddress)

	if dup, err := s.findExisting(ctx, wallet, input.ProductID); err != nil {
		return nil, &StorageError{Err: err}
	} else if dup != nil {
		s.emitDuplicate(wallet, input.ProductID, dup.ReviewID)
		submittedAt := ""
		if !dup.SubmittedAt.IsZero() {
			submittedAt = hashing.CanonicalTime(dup.SubmittedAt)
		}
		return nil, &DuplicateError{
			ExistingReviewID: dup.ReviewID,
			SubmittedAt:      submittedAt,
		}
	}

	reviewID := newReviewID()
	ts := time.Now().UTC().Truncate(time.Second)
	reviewHash := hashing.ReviewHash(input.Rating, input.Text, input.ProductID, wallet, ts)
	contentHash := hashing.ContentAddress(input.Rating, input.Text, input.ProductID, wallet, ts)

	// Publication first, then the durable insert, so a stored review never
	// references a remote object that was not at least attempted.
	publication := s.publish(ctx, publishedReview{
		ReviewID:      reviewID,
		Rating:        input.Rating,
		Text:          input.Text,
		ProductID:     input.ProductID,
		WalletAddress: wallet,
		Timestamp:     hashing.CanonicalTime(ts),
		ReviewHash:    reviewHash,
		ContentHash:   contentHash,
		SubmittedAt:   hashing.CanonicalTime(ts),
	}, reviewID)

	review := models.Review{
		ReviewID:      reviewID,
		Rating:        input.Rating,
		Text:          input.Text,
		ProductID:     input.ProductID,
		WalletAddress: wallet,
		Timestamp:     ts,
		ReviewHash:    reviewHash,
		ContentHash:   contentHash,
		SubmittedAt:   ts,
		Publication:   publication,
	}

	// By this point the payload has already been published, so persistence
	// runs on its own deadline rather than whatever is left of the request
	// context after the publication attempts.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	if err := s.store.Insert(persistCtx, review); err != nil {
		var dup *repository.DuplicateReviewError
		if errors.As(err, &dup) {
			// Lost the race past the precheck; the store constraint decided.
			s.emitDuplicate(wallet, input.ProductID, dup.ExistingReviewID)
			return nil, &DuplicateError{
				ExistingReviewID: dup.ExistingReviewID,
				SubmittedAt:      dup.SubmittedAt,
			}
		}
		return nil, &StorageError{Err: err}
	}

	if s.marker != nil {
		key := s.marker.ReviewMarkerKey(wallet, input.ProductID)
		if err := s.marker.SetMarker(persistCtx, key, reviewID); err != nil {
			s.log.WithError(err).Warn("failed to set duplicate marker")
		}
	}

	record := models.SubmissionRecord{
		ReviewID:         reviewID,
		Timestamp:        ts,
		ProductID:        input.ProductID,
		Wallet:           wallet,
		ReviewHash:       reviewHash,
		ContentHash:      contentHash,
		ClientIP:         clientIP,
		SubmissionMethod: "api",
		EventEmitted:     true,
		Publication:      publication,
	}
	if err := s.store.AppendMetadata(persistCtx, record); err != nil {
		// The review is already the source of truth; the audit log is
		// best-effort and never rolls it back.
		s.log.WithError(err).WithField("reviewId", reviewID).Error("failed to append submission metadata")
	}

	if s.channel != nil {
		s.channel.PublishReviewSubmitted(events.ReviewSubmittedEvent{
			ReviewID:      reviewID,
			ProductID:     input.ProductID,
			WalletAddress: wallet,
			Rating:        input.Rating,
			Text:          input.Text,
			ReviewHash:    reviewHash,
			ContentHash:   contentHash,
			Timestamp:     ts,
			ClientIP:      clientIP,
			Publication:   publication,
		})
	}

	s.log.WithFields(logrus.Fields{
		"reviewId":   reviewID,
		"productId":  input.ProductID,
		"wallet":     wallet,
		"reviewHash": reviewHash,
		"published":  publication.Success,
	}).Info("review submitted")

	return &SubmissionResult{
		ReviewID:    reviewID,
		ReviewHash:  reviewHash,
		ContentHash: contentHash,
		Timestamp:   ts,
		Publication: publication,
	}, nil
}

// findExisting checks the optional marker cache, then the store. A marker
// hit is confirmed against the store for the full record. The store stays
// authoritative: a marker with no backing record is stale and does not
// reject the submission. Only when the store is unreachable does the
// marker's review ID alone reject the duplicate.
func (s *Service) findExisting(ctx context.Context, wallet, productID string) (*models.Review, error) {
	if s.marker != nil {
		key := s.marker.ReviewMarkerKey(wallet, productID)
		if reviewID, err := s.marker.GetMarker(ctx, key); err == nil && reviewID != "" {
			existing, err := s.store.FindByWalletAndProduct(ctx, wallet, productID)
			if err == nil {
				return existing, nil
			}
			if errors.Is(err, repository.ErrNotFound) {
				// Stale marker, e.g. after a backend swap. The insert
				// constraint still catches any real race.
				return nil, nil
			}
			return &models.Review{ReviewID: reviewID, ProductID: productID, WalletAddress: wallet}, nil
		}
	}
	existing, err := s.store.FindByWalletAndProduct(ctx, wallet, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return existing, nil
}

func (s *Service) publish(ctx context.Context, payload publishedReview, reviewID string) models.PublicationResult {
	if s.publisher == nil {
		return models.PublicationResult{Success: false, Error: "IPFS not configured"}
	}
	// Detached from the request context: publication is best-effort and gets
	// its own budget, leaving the remaining pipeline unaffected however long
	// the backends hang.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishBudget)
	defer cancel()
	result := s.publisher.Upload(pubCtx, payload, fmt.Sprintf("review-%s.json", reviewID), s.preferredService)
	return models.PublicationResult{
		Success:  result.Success,
		Hash:     result.Hash,
		Service:  result.Service,
		Error:    result.Error,
		Attempts: result.Attempts,
	}
}

func (s *Service) emitDuplicate(wallet, productID, existingReviewID string) {
	if s.channel == nil {
		return
	}
	s.channel.PublishDuplicateAttempt(events.DuplicateAttemptEvent{
		WalletAddress:    wallet,
		ProductID:        productID,
		ExistingReviewID: existingReviewID,
		Timestamp:        time.Now().UTC(),
	})
}

// GetByProduct lists a product's reviews newest first with the mean rating
// rounded to one decimal, 0 when the product has no reviews.
func (s *Service) GetByProduct(ctx context.Context, productID string) (*models.ProductReviews, error) {
	reviews, err := s.store.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &models.ProductReviews{
		ProductID:     productID,
		Reviews:       reviews,
		TotalReviews:  len(reviews),
		AverageRating: averageRating(reviews),
	}, nil
}

// GetAll returns every review plus the audit log, both newest first.
func (s *Service) GetAll(ctx context.Context) (*AllReviews, error) {
	reviews, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	metadata, err := s.store.ListAllMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return &AllReviews{
		Reviews:      reviews,
		Metadata:     metadata,
		TotalReviews: len(reviews),
	}, nil
}

// GetByHash looks a review up by its verification hash.
func (s *Service) GetByHash(ctx context.Context, reviewHash string) (*models.Review, error) {
	return s.store.FindByReviewHash(ctx, reviewHash)
}

func validate(input models.SubmitReviewInput) error {
	var missing []string
	if input.Rating == 0 {
		missing = append(missing, "rating")
	}
	if input.Text == "" {
		missing = append(missing, "text")
	}
	if input.ProductID == "" {
		missing = append(missing, "productId")
	}
	if input.WalletAddress == "" {
		missing = append(missing, "walletAddress")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Missing required fields: " + strings.Join(missing, ", ")}
	}
	if input.Rating < 1 || input.Rating > 5 {
		return &ValidationError{Message: "Rating must be between 1 and 5"}
	}
	if !walletPattern.MatchString(input.WalletAddress) {
		return &ValidationError{Message: "Invalid wallet address format"}
	}
	return nil
}

func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return math.Round(avg*10) / 10
}

// newReviewID matches the historical format: millisecond timestamp plus a
// nine character base-36 random suffix. Unique and URL-safe.
func newReviewID() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	if len(suffix) > 9 {
		suffix = suffix[:9]
	} else if len(suffix) < 9 {
		suffix = strings.Repeat("0", 9-len(suffix)) + suffix
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + suffix
}
