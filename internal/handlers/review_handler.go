package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/hashing"
	"github.com/chainbazaar/review-backend/internal/models"
	"github.com/chainbazaar/review-backend/internal/services/review"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	Service *review.Service
}

func NewReviewHandler(service *review.Service) *ReviewHandler {
	return &ReviewHandler{Service: service}
}

// SubmitReview handles POST /api/reviews/submit. Response shapes follow the
// storefront contract: 201 accepted, 400 invalid input, 409 duplicate pair,
// 500 storage failure. A failed publication is reported inside the 201 body,
// never as a request failure.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var input models.SubmitReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body: rating must be an integer and all fields must be well-formed",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result, err := h.Service.Submit(ctx, input, c.ClientIP())
	if err != nil {
		var validationErr *review.ValidationError
		var duplicateErr *review.DuplicateError
		var storageErr *review.StorageError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Message})
		case errors.As(err, &duplicateErr):
			c.JSON(http.StatusConflict, gin.H{
				"message":          "You have already submitted a review for this product",
				"existingReviewId": duplicateErr.ExistingReviewID,
				"submittedAt":      duplicateErr.SubmittedAt,
			})
		case errors.As(err, &storageErr):
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Failed to save review data",
				"error":   storageErr.Err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Internal server error while submitting review",
				"error":   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Review submitted successfully",
		"reviewId":    result.ReviewID,
		"reviewHash":  result.ReviewHash,
		"contentHash": result.ContentHash,
		"timestamp":   hashing.CanonicalTime(result.Timestamp),
		"publication": result.Publication,
	})
}

// GetProductReviews handles GET /api/reviews/:productId.
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := h.Service.GetByProduct(ctx, c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error while fetching reviews"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAllReviews handles GET /api/reviews, the admin listing of reviews and
// the submission-metadata log.
func (h *ReviewHandler) GetAllReviews(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := h.Service.GetAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error while fetching reviews"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetReviewByHash handles GET /api/reviews/hash/:reviewHash, the external
// verification lookup.
func (h *ReviewHandler) GetReviewByHash(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	hash := c.Param("reviewHash")
	found, err := h.Service.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error while fetching review"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"review":   found,
		"verified": true,
		"hash":     hash,
	})
}
