package controllers

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apperrors "catalog-service/common/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Validation constants
const (
	MaxUploadSize         = 10 * 1024 * 1024 // 10MB
	DefaultPresignExpires = 900
	MaxPresignExpires     = 3600
)

// Allowed file types
var (
	allowedCSVExtensions = map[string]bool{
		".csv": true,
		".txt": true,
	}

	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
)

// RequestValidator handles all input validation
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(),
	}
}

// BindJSON decodes the request body into dst and runs its validate tags.
func (rv *RequestValidator) BindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Newf(apperrors.ErrValidation, "invalid request body: %v", err)
	}
	if err := rv.validate.Struct(dst); err != nil {
		return apperrors.Wrap(apperrors.ErrValidation, err)
	}
	return nil
}

// QueryMap flattens the query string to its first value per key. Listing
// filters carry JSON text, so values are passed through untouched.
func QueryMap(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

type presignParams struct {
	Filename    string
	ContentType string
	Expires     int64
}

// ParsePresignParams reads filename, content_type and expires (seconds). The
// expiry defaults to 15 minutes and is capped at one hour.
func (rv *RequestValidator) ParsePresignParams(c *gin.Context) (*presignParams, error) {
	filename := strings.TrimSpace(c.DefaultQuery("filename", "upload.jpg"))
	contentType := strings.ToLower(strings.TrimSpace(c.DefaultQuery("content_type", "image/jpeg")))
	if !allowedImageTypes[contentType] {
		return nil, apperrors.Newf(apperrors.ErrValidation, "invalid content type, allowed: %v", getAllowedImageTypes())
	}

	expires, err := strconv.ParseInt(c.DefaultQuery("expires", strconv.Itoa(DefaultPresignExpires)), 10, 64)
	if err != nil || expires <= 0 {
		expires = DefaultPresignExpires
	}
	if expires > MaxPresignExpires {
		expires = MaxPresignExpires
	}

	return &presignParams{
		Filename:    filename,
		ContentType: contentType,
		Expires:     expires,
	}, nil
}

// IsValidCSVFile checks if the file is a valid CSV
func (rv *RequestValidator) IsValidCSVFile(file *multipart.FileHeader) bool {
	contentType := file.Header.Get("Content-Type")
	if contentType == "text/csv" || contentType == "application/csv" || contentType == "text/plain" {
		return true
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	return allowedCSVExtensions[ext]
}

// ValidateFileSize checks if file size is within limits
func (rv *RequestValidator) ValidateFileSize(file *multipart.FileHeader) error {
	if file.Size > MaxUploadSize {
		return fmt.Errorf("file too large (max %dMB)", MaxUploadSize/(1024*1024))
	}
	return nil
}

func getAllowedImageTypes() []string {
	types := make([]string, 0, len(allowedImageTypes))
	for t := range allowedImageTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
