package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/models"
	"github.com/chainbazaar/review-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductHandler struct {
	Products repository.ProductRepository
}

func NewProductHandler(products repository.ProductRepository) *ProductHandler {
	return &ProductHandler{Products: products}
}

// AddProduct handles POST /api/store/add-product.
func (h *ProductHandler) AddProduct(c *gin.Context) {
	var input models.AddProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Missing required fields: productName, description, price, storeOwner"))
		return
	}

	storeID := input.StoreID
	if storeID == "" {
		if fromToken, ok := c.Get("storeId"); ok {
			storeID, _ = fromToken.(string)
		}
	}
	if storeID == "" {
		storeID = "default"
	}

	product := models.Product{
		ID:          fmt.Sprintf("product_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		StoreOwner:  input.StoreOwner,
		StoreID:     storeID,
		ImageURL:    input.ImageURL,
		CreatedAt:   time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Products.CreateProduct(ctx, product); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to save product"))
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Product added successfully", gin.H{"product": product}))
}

// GetStoreProducts handles GET /api/store/:storeId/products.
func (h *ProductHandler) GetStoreProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	storeID := c.Param("storeId")
	products, err := h.Products.ListByStore(ctx, storeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to fetch store products"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"storeId":       storeID,
		"products":      products,
		"totalProducts": len(products),
	})
}
