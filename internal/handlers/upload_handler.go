package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chainbazaar/review-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UploadHandler struct{}

func NewUploadHandler() *UploadHandler {
	return &UploadHandler{}
}

// UploadImage handles POST /api/upload. It validates the file size and
// content type before streaming to Cloudinary.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "seller" {
		c.JSON(http.StatusForbidden, utils.ErrorResponse("Only store owners can upload images"))
		return
	}

	const maxUploadSize = 10 << 20 // 10MB
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("File is required and must be under 10MB"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Only jpg, jpeg, png and webp images are allowed"))
		return
	}

	filename := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	url, err := utils.UploadToCloudinary(file, filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to upload image"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Image uploaded successfully", gin.H{"url": url}))
}
