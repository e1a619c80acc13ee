package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/models"
	"github.com/chainbazaar/review-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type StoreHandler struct {
	Stores repository.StoreRepository
}

func NewStoreHandler(stores repository.StoreRepository) *StoreHandler {
	return &StoreHandler{Stores: stores}
}

var storeValidator = validator.New()

// RegisterStore handles POST /api/store/register.
func (h *StoreHandler) RegisterStore(c *gin.Context) {
	var input models.RegisterStoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Missing required fields: storeName, ownerName, email, password"))
		return
	}
	if err := storeValidator.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Validation failed: "+err.Error()))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to process password"))
		return
	}

	store := models.Store{
		ID:           fmt.Sprintf("store_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		StoreName:    input.StoreName,
		OwnerName:    input.OwnerName,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		Description:  input.Description,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Stores.CreateStore(ctx, store); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to save store data"))
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Store registered successfully", gin.H{"store": store}))
}

// Login handles POST /api/login for store owners.
func (h *StoreHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Email and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	store, err := h.Stores.GetStoreByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to look up account"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(store.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid password"))
		return
	}

	token, err := utils.GenerateToken(store.Email, "seller", store.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to issue session token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "role": "seller", "storeId": store.ID})
}

// GetStore handles GET /api/store/:storeId.
func (h *StoreHandler) GetStore(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	store, err := h.Stores.GetStore(ctx, c.Param("storeId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Store not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to fetch store"))
		return
	}
	c.JSON(http.StatusOK, store)
}

// GetUserStores handles GET /api/stores/user/:userAddress, newest first.
func (h *StoreHandler) GetUserStores(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stores, err := h.Stores.ListStores(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to fetch stores"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userAddress": c.Param("userAddress"),
		"stores":      stores,
		"totalStores": len(stores),
	})
}
