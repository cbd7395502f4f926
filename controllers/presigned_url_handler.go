package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// PresignedURLHandler handles presigned URL generation for S3 uploads
type PresignedURLHandler struct {
	productService ProductServiceAPI
	validator      *RequestValidator
	timeout        time.Duration
}

func NewPresignedURLHandler(ps ProductServiceAPI, validator *RequestValidator) *PresignedURLHandler {
	return &PresignedURLHandler{
		productService: ps,
		validator:      validator,
		timeout:        DefaultContextTimeout,
	}
}

// GetPresignUpload returns a presigned PUT URL for a product image together
// with the public URL to store on the product or one of its variants.
func (h *PresignedURLHandler) GetPresignUpload(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))

	params, err := h.validator.ParsePresignParams(c)
	if err != nil {
		handleServiceError(c, err, "presign upload")
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	upload, err := h.productService.GeneratePresignedUpload(
		ctx,
		slug,
		params.Filename,
		params.ContentType,
		time.Duration(params.Expires)*time.Second,
	)
	if err != nil {
		handleServiceError(c, err, "presign upload")
		return
	}

	c.JSON(http.StatusOK, upload)
}
