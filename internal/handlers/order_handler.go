package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chainbazaar/review-backend/internal/adapters/repository"
	"github.com/chainbazaar/review-backend/internal/models"
	"github.com/chainbazaar/review-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	Orders repository.OrderRepository
}

func NewOrderHandler(orders repository.OrderRepository) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

// PlaceOrder handles POST /api/orders. Payment happens in the buyer's
// wallet; the server only records the transaction reference.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var input models.PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Missing required fields: productId, walletAddress, quantity"))
		return
	}

	order := models.Order{
		ID:            fmt.Sprintf("order_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		ProductID:     input.ProductID,
		WalletAddress: strings.ToLower(input.WalletAddress),
		Quantity:      input.Quantity,
		TxRef:         input.TxRef,
		CreatedAt:     time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Orders.CreateOrder(ctx, order); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to save order"))
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Order placed successfully", gin.H{"order": order}))
}

// GetWalletOrders handles GET /api/orders/:wallet.
func (h *OrderHandler) GetWalletOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	wallet := strings.ToLower(c.Param("wallet"))
	orders, err := h.Orders.ListByWallet(ctx, wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to fetch orders"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"walletAddress": wallet,
		"orders":        orders,
		"totalOrders":   len(orders),
	})
}
