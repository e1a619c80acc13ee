package handlers

import (
	"net/http"

	"github.com/chainbazaar/review-backend/internal/ipfs"
	"github.com/chainbazaar/review-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RouterConfig carries the wired handlers. Store, product, order and upload
// handlers are nil when no database is configured; the review pipeline and
// IPFS diagnostics are always mounted.
type RouterConfig struct {
	Reviews  *ReviewHandler
	IPFS     *IPFSHandler
	Stores   *StoreHandler
	Products *ProductHandler
	Orders   *OrderHandler
	Upload   *UploadHandler
	Uploader *ipfs.Uploader
}

func SetupRoutes(router *gin.Engine, cfg RouterConfig) {
	logrus.Info("Setting up routes...")

	router.GET("/health", func(c *gin.Context) {
		status := cfg.Uploader.CheckConfiguration()
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Review API server is running",
			"ipfs": gin.H{
				"configured": status.Pinata.Configured || status.Web3Storage.Configured,
				"services": gin.H{
					"pinata":      status.Pinata.Configured,
					"web3storage": status.Web3Storage.Configured,
					"local":       status.Local.Enabled,
				},
			},
		})
	})

	api := router.Group("/api")

	reviews := api.Group("/reviews")
	{
		reviews.POST("/submit", cfg.Reviews.SubmitReview)
		reviews.GET("", cfg.Reviews.GetAllReviews)
		reviews.GET("/hash/:reviewHash", cfg.Reviews.GetReviewByHash)
		reviews.GET("/:productId", cfg.Reviews.GetProductReviews)
	}

	ipfsGroup := api.Group("/ipfs")
	{
		ipfsGroup.GET("/verify/:hash", cfg.IPFS.VerifyHash)
		ipfsGroup.GET("/gateways/:hash", cfg.IPFS.GatewayURLs)
	}

	if cfg.Stores == nil {
		logrus.Warn("No database configured - store, product and order routes disabled")
		return
	}

	api.POST("/login", cfg.Stores.Login)
	api.POST("/store/register", cfg.Stores.RegisterStore)
	api.GET("/store/:storeId", cfg.Stores.GetStore)
	api.GET("/store/:storeId/products", cfg.Products.GetStoreProducts)
	api.GET("/stores/user/:userAddress", cfg.Stores.GetUserStores)
	api.POST("/orders", cfg.Orders.PlaceOrder)
	api.GET("/orders/:wallet", cfg.Orders.GetWalletOrders)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/store/add-product", cfg.Products.AddProduct)
		protected.POST("/upload", cfg.Upload.UploadImage)
	}
}
