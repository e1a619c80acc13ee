package models

import "time"

// Order records a simulated wallet purchase. Payment happens client-side
// through the wallet; the server only keeps the transaction reference.
type Order struct {
	ID            string    `json:"id" bson:"_id"`
	ProductID     string    `json:"productId" bson:"productId"`
	WalletAddress string    `json:"walletAddress" bson:"walletAddress"`
	Quantity      int       `json:"quantity" bson:"quantity"`
	TxRef         string    `json:"txRef,omitempty" bson:"txRef,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

type PlaceOrderInput struct {
	ProductID     string `json:"productId" binding:"required"`
	WalletAddress string `json:"walletAddress" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	TxRef         string `json:"txRef"`
}
