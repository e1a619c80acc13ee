package models

import "time"

type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"productName" bson:"productName"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	StoreOwner  string    `json:"storeOwner" bson:"storeOwner"`
	StoreID     string    `json:"storeId" bson:"storeId"`
	ImageURL    string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

type AddProductInput struct {
	Name        string  `json:"productName" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category"`
	StoreOwner  string  `json:"storeOwner" binding:"required"`
	StoreID     string  `json:"storeId"`
	ImageURL    string  `json:"imageUrl"`
}
