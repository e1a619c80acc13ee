package models

import "time"

type Store struct {
	ID           string    `json:"id" bson:"_id"`
	StoreName    string    `json:"storeName" bson:"storeName"`
	OwnerName    string    `json:"ownerName" bson:"ownerName"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Address      string    `json:"address,omitempty" bson:"address,omitempty"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

type RegisterStoreInput struct {
	StoreName   string `json:"storeName" binding:"required"`
	OwnerName   string `json:"ownerName" binding:"required"`
	Email       string `json:"email" binding:"required" validate:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Password    string `json:"password" binding:"required" validate:"min=6"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
