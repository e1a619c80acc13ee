// Package hashing computes the two digests attached to every accepted review:
// a verification hash recomputable from the review's public fields, and a
// CID-shaped local fingerprint used as the publication side-channel key.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// CanonicalTime renders a timestamp in the canonical form used for hashing
// and for API responses: UTC, whole seconds, RFC 3339.
func CanonicalTime(ts time.Time) string {
	return ts.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// ParseCanonicalTime is the inverse of CanonicalTime. Verifiers use it to
// turn a disclosed timestamp back into the value the hash was computed over.
func ParseCanonicalTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// ReviewHash digests the five identifying fields of a review joined with a
// fixed separator. Identical inputs always produce the identical lowercase
// hex digest, so anyone holding the disclosed fields can recompute it and
// compare against the recorded value.
func ReviewHash(rating int, text, productID, walletAddress string, ts time.Time) string {
	data := fmt.Sprintf("%d-%s-%s-%s-%s", rating, text, productID, walletAddress, CanonicalTime(ts))
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

type reviewPayload struct {
	Rating        int    `json:"rating"`
	Text          string `json:"text"`
	ProductID     string `json:"productId"`
	WalletAddress string `json:"walletAddress"`
	Timestamp     string `json:"timestamp"`
}

// ContentAddress digests the canonical JSON form of the review payload and
// formats it as "Qm" plus the first 44 hex characters, 46 characters total.
//
// This is a local fingerprint that merely looks like a CIDv0. It has no
// relationship to the identifier a real IPFS node would assign to the same
// bytes and must never be treated as network-resolvable.
func ContentAddress(rating int, text, productID, walletAddress string, ts time.Time) string {
	payload := reviewPayload{
		Rating:        rating,
		Text:          text,
		ProductID:     productID,
		WalletAddress: walletAddress,
		Timestamp:     CanonicalTime(ts),
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return "Qm" + hex.EncodeToString(sum[:])[:44]
}
