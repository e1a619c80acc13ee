package handlers

import (
	"net/http"

	"github.com/chainbazaar/review-backend/internal/ipfs"
	"github.com/gin-gonic/gin"
)

type IPFSHandler struct {
	Uploader *ipfs.Uploader
}

func NewIPFSHandler(uploader *ipfs.Uploader) *IPFSHandler {
	return &IPFSHandler{Uploader: uploader}
}

// VerifyHash handles GET /api/ipfs/verify/:hash, a diagnostic read-back of
// published content through a public gateway.
func (h *IPFSHandler) VerifyHash(c *gin.Context) {
	result := h.Uploader.Verify(c.Request.Context(), c.Param("hash"), c.Query("gateway"))
	c.JSON(http.StatusOK, result)
}

// GatewayURLs handles GET /api/ipfs/gateways/:hash.
func (h *IPFSHandler) GatewayURLs(c *gin.Context) {
	hash := c.Param("hash")
	c.JSON(http.StatusOK, gin.H{
		"hash":     hash,
		"gateways": h.Uploader.GatewayURLs(hash),
	})
}
