package models

import (
	"time"
)

// Review is one customer's evaluation of one product, keyed by the
// (walletAddress, productId) pair. Identity fields are immutable once the
// review has been accepted.
type Review struct {
	ReviewID      string    `json:"reviewId" bson:"reviewId"`
	Rating        int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Text          string    `json:"text" bson:"text" validate:"required"`
	ProductID     string    `json:"productId" bson:"productId"`
	WalletAddress string    `json:"walletAddress" bson:"walletAddress"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`

	// ReviewHash is recomputable from the public fields above. ContentHash is
	// a local fingerprint of the full payload, not a network-assigned CID.
	ReviewHash  string `json:"reviewHash" bson:"reviewHash"`
	ContentHash string `json:"contentHash" bson:"contentHash"`

	SubmittedAt time.Time         `json:"submittedAt" bson:"submittedAt"`
	Publication PublicationResult `json:"publication" bson:"publication"`
}

// PublicationResult records the outcome of the best-effort IPFS publication
// attempt. A failed publication never invalidates the review itself.
type PublicationResult struct {
	Success  bool   `json:"success" bson:"success"`
	Hash     string `json:"remoteId,omitempty" bson:"remoteId,omitempty"`
	Service  string `json:"backend,omitempty" bson:"backend,omitempty"`
	Error    string `json:"error,omitempty" bson:"error,omitempty"`
	Attempts int    `json:"attempts,omitempty" bson:"attempts,omitempty"`
}

// SubmissionRecord is the append-only audit entry written alongside each
// accepted review. It is never mutated or surfaced on the write path.
type SubmissionRecord struct {
	ReviewID         string            `json:"reviewId" bson:"reviewId"`
	Timestamp        time.Time         `json:"timestamp" bson:"timestamp"`
	ProductID        string            `json:"productId" bson:"productId"`
	Wallet           string            `json:"wallet" bson:"wallet"`
	ReviewHash       string            `json:"reviewHash" bson:"reviewHash"`
	ContentHash      string            `json:"contentHash" bson:"contentHash"`
	ClientIP         string            `json:"clientIP" bson:"clientIP"`
	SubmissionMethod string            `json:"submissionMethod" bson:"submissionMethod"`
	EventEmitted     bool              `json:"eventEmitted" bson:"eventEmitted"`
	Publication      PublicationResult `json:"publication" bson:"publication"`
}

type SubmitReviewInput struct {
	Rating        int    `json:"rating"`
	Text          string `json:"text"`
	ProductID     string `json:"productId"`
	WalletAddress string `json:"walletAddress"`
}

// ProductReviews is the read model for a single product's review listing.
// AverageRating is the arithmetic mean rounded to one decimal, 0 when empty.
type ProductReviews struct {
	ProductID     string   `json:"productId"`
	Reviews       []Review `json:"reviews"`
	TotalReviews  int      `json:"totalReviews"`
	AverageRating float64  `json:"averageRating"`
}
