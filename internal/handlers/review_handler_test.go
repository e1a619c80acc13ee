package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chainbazaar/review-backend/internal/adapters/repository/file"
	"github.com/chainbazaar/review-backend/internal/events"
	"github.com/chainbazaar/review-backend/internal/hashing"
	"github.com/chainbazaar/review-backend/internal/ipfs"
	"github.com/chainbazaar/review-backend/internal/services/review"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestWallet = "0x1234567890abcdef1234567890abcdef12345678"

type fixedPublisher struct {
	result *ipfs.UploadResult
}

func (p *fixedPublisher) Upload(ctx context.Context, payload interface{}, filename, preferredService string) *ipfs.UploadResult {
	return p.result
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := file.NewReviewRepository(t.TempDir())
	require.NoError(t, err)

	publisher := &fixedPublisher{result: &ipfs.UploadResult{
		Success:  true,
		Hash:     "QmHandlerTest",
		Service:  ipfs.ServiceLocalIPFS,
		Attempts: 1,
	}}
	service := review.NewService(store, publisher, nil, events.NewChannel(log), ipfs.ServiceLocalIPFS, log)
	uploader := ipfs.NewUploader(ipfs.Config{LocalEnabled: true}, log)

	router := gin.New()
	SetupRoutes(router, RouterConfig{
		Reviews:  NewReviewHandler(service),
		IPFS:     NewIPFSHandler(uploader),
		Uploader: uploader,
	})
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func submitBody() map[string]interface{} {
	return map[string]interface{}{
		"rating":        5,
		"text":          "Exactly as pictured",
		"productId":     "product_1",
		"walletAddress": handlerTestWallet,
	}
}

func TestSubmitReview_Created(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/reviews/submit", submitBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message     string `json:"message"`
		ReviewID    string `json:"reviewId"`
		ReviewHash  string `json:"reviewHash"`
		ContentHash string `json:"contentHash"`
		Timestamp   string `json:"timestamp"`
		Publication struct {
			Success bool   `json:"success"`
			Hash    string `json:"remoteId"`
		} `json:"publication"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Review submitted successfully", resp.Message)
	assert.NotEmpty(t, resp.ReviewID)
	assert.Len(t, resp.ReviewHash, 64)
	assert.Len(t, resp.ContentHash, 46)
	assert.True(t, resp.Publication.Success)
	assert.Equal(t, "QmHandlerTest", resp.Publication.Hash)

	// The response carries everything needed to recompute the hash.
	ts, err := hashing.ParseCanonicalTime(resp.Timestamp)
	require.NoError(t, err)
	recomputed := hashing.ReviewHash(5, "Exactly as pictured", "product_1", handlerTestWallet, ts)
	assert.Equal(t, resp.ReviewHash, recomputed)
}

func TestSubmitReview_Duplicate(t *testing.T) {
	router := newTestRouter(t)

	first := doJSON(t, router, http.MethodPost, "/api/reviews/submit", submitBody())
	require.Equal(t, http.StatusCreated, first.Code)
	var created struct {
		ReviewID string `json:"reviewId"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &created))

	second := doJSON(t, router, http.MethodPost, "/api/reviews/submit", submitBody())
	require.Equal(t, http.StatusConflict, second.Code)

	var resp struct {
		Message          string `json:"message"`
		ExistingReviewID string `json:"existingReviewId"`
		SubmittedAt      string `json:"submittedAt"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, "You have already submitted a review for this product", resp.Message)
	assert.Equal(t, created.ReviewID, resp.ExistingReviewID)
	assert.NotEmpty(t, resp.SubmittedAt)
}

func TestSubmitReview_ValidationRejected(t *testing.T) {
	router := newTestRouter(t)

	body := submitBody()
	body["rating"] = 6
	rec := doJSON(t, router, http.MethodPost, "/api/reviews/submit", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Rating must be between 1 and 5", resp.Message)
}

func TestSubmitReview_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/reviews/submit", bytes.NewReader([]byte(`{"rating":"five"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

func TestGetProductReviews(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/reviews/submit", submitBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	listing := doJSON(t, router, http.MethodGet, "/api/reviews/product_1", nil)
	require.Equal(t, http.StatusOK, listing.Code)

	var resp struct {
		ProductID     string  `json:"productId"`
		TotalReviews  int     `json:"totalReviews"`
		AverageRating float64 `json:"averageRating"`
	}
	require.NoError(t, json.Unmarshal(listing.Body.Bytes(), &resp))
	assert.Equal(t, "product_1", resp.ProductID)
	assert.Equal(t, 1, resp.TotalReviews)
	assert.Equal(t, 5.0, resp.AverageRating)
}

func TestGetProductReviews_UnknownProduct(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/reviews/product_missing", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalReviews  int     `json:"totalReviews"`
		AverageRating float64 `json:"averageRating"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.TotalReviews)
	assert.Equal(t, float64(0), resp.AverageRating)
}

func TestGetAllReviews(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/reviews/submit", submitBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	all := doJSON(t, router, http.MethodGet, "/api/reviews", nil)
	require.Equal(t, http.StatusOK, all.Code)

	var resp struct {
		TotalReviews int               `json:"totalReviews"`
		Metadata     []json.RawMessage `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(all.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalReviews)
	assert.Len(t, resp.Metadata, 1)
}

func TestGetReviewByHash(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/reviews/submit", submitBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ReviewHash string `json:"reviewHash"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	found := doJSON(t, router, http.MethodGet, "/api/reviews/hash/"+created.ReviewHash, nil)
	require.Equal(t, http.StatusOK, found.Code)

	var resp struct {
		Verified bool   `json:"verified"`
		Hash     string `json:"hash"`
	}
	require.NoError(t, json.Unmarshal(found.Body.Bytes(), &resp))
	assert.True(t, resp.Verified)
	assert.Equal(t, created.ReviewHash, resp.Hash)
}

func TestGetReviewByHash_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/reviews/hash/deadbeef", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Review not found")
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
		IPFS   struct {
			Configured bool `json:"configured"`
			Services   struct {
				Local bool `json:"local"`
			} `json:"services"`
		} `json:"ipfs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Status)
	assert.False(t, resp.IPFS.Configured)
	assert.True(t, resp.IPFS.Services.Local)
}

func TestGatewayURLsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/ipfs/gateways/QmX", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://ipfs.io/ipfs/QmX")
}
