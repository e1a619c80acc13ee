package file

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *FileReviewRepository {
	t.Helper()
	repo, err := NewReviewRepository(t.TempDir())
	require.NoError(t, err)
	return repo
}

func testReview(reviewID, wallet, productID string, rating int, submittedAt time.Time) models.Review {
	return models.Review{
		ReviewID:      reviewID,
		Rating:        rating,
		Text:          "some text",
		ProductID:     productID,
		WalletAddress: wallet,
		Timestamp:     submittedAt,
		ReviewHash:    "hash-" + reviewID,
		ContentHash:   "Qm" + reviewID,
		SubmittedAt:   submittedAt,
	}
}

func TestInsertAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	review := testReview("r1", "0xabc", "p1", 5, now)
	require.NoError(t, repo.Insert(ctx, review))

	found, err := repo.FindByWalletAndProduct(ctx, "0xabc", "p1")
	require.NoError(t, err)
	assert.Equal(t, "r1", found.ReviewID)
	assert.Equal(t, 5, found.Rating)

	_, err = repo.FindByWalletAndProduct(ctx, "0xabc", "p2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInsert_DuplicatePairRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Insert(ctx, testReview("r1", "0xabc", "p1", 5, now)))

	err := repo.Insert(ctx, testReview("r2", "0xabc", "p1", 3, now))
	require.Error(t, err)
	assert.True(t, repository.IsDuplicate(err))

	var dup *repository.DuplicateReviewError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "r1", dup.ExistingReviewID)
	assert.NotEmpty(t, dup.SubmittedAt)
}

func TestInsert_ConcurrentSamePair(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- repo.Insert(ctx, testReview(fmt.Sprintf("r%d", i), "0xabc", "p1", 5, now))
		}(i)
	}
	wg.Wait()
	close(results)

	accepted, duplicates := 0, 0
	for err := range results {
		switch {
		case err == nil:
			accepted++
		case repository.IsDuplicate(err):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, workers-1, duplicates)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFindByReviewHash(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Insert(ctx, testReview("r1", "0xabc", "p1", 5, now)))

	found, err := repo.FindByReviewHash(ctx, "hash-r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", found.ReviewID)

	_, err = repo.FindByReviewHash(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListByProduct_NewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Insert(ctx, testReview("r1", "0xaaa", "p1", 5, base.Add(-2*time.Hour))))
	require.NoError(t, repo.Insert(ctx, testReview("r2", "0xbbb", "p1", 3, base.Add(-time.Hour))))
	require.NoError(t, repo.Insert(ctx, testReview("r3", "0xccc", "p2", 4, base)))

	reviews, err := repo.ListByProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "r2", reviews[0].ReviewID)
	assert.Equal(t, "r1", reviews[1].ReviewID)

	empty, err := repo.ListByProduct(ctx, "p-none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMetadataAppendAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	first := models.SubmissionRecord{ReviewID: "r1", Timestamp: base.Add(-time.Hour), ProductID: "p1", Wallet: "0xaaa"}
	second := models.SubmissionRecord{ReviewID: "r2", Timestamp: base, ProductID: "p1", Wallet: "0xbbb"}
	require.NoError(t, repo.AppendMetadata(ctx, first))
	require.NoError(t, repo.AppendMetadata(ctx, second))

	records, err := repo.ListAllMetadata(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r2", records[0].ReviewID)
	assert.Equal(t, "r1", records[1].ReviewID)
}

func TestFilesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	repo, err := NewReviewRepository(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, testReview("r1", "0xabc", "p1", 5, now)))

	reopened, err := NewReviewRepository(dir)
	require.NoError(t, err)
	found, err := reopened.FindByWalletAndProduct(ctx, "0xabc", "p1")
	require.NoError(t, err)
	assert.Equal(t, "r1", found.ReviewID)
}
