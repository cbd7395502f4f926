package controllers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	apperrors "catalog-service/common/errors"

	"github.com/gin-gonic/gin"
)

// BulkImportHandler handles bulk product import operations
type BulkImportHandler struct {
	productService ProductServiceAPI
	jobs           BulkJobQueue
	cache          *CacheManager
	validator      *RequestValidator
	timeout        time.Duration
}

func NewBulkImportHandler(ps ProductServiceAPI, jobs BulkJobQueue, cache *CacheManager, validator *RequestValidator) *BulkImportHandler {
	return &BulkImportHandler{
		productService: ps,
		jobs:           jobs,
		cache:          cache,
		validator:      validator,
		timeout:        2 * DefaultContextTimeout,
	}
}

// ValidateBulkImport validates a CSV without writing anything.
func (h *BulkImportHandler) ValidateBulkImport(c *gin.Context) {
	fileHandle, err := h.openUpload(c)
	if err != nil {
		handleServiceError(c, err, "validate bulk import")
		return
	}
	defer fileHandle.Close()

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	validation, err := h.productService.ValidateBulkImport(ctx, fileHandle)
	if err != nil {
		handleServiceError(c, err, "validate bulk import")
		return
	}

	c.JSON(http.StatusOK, validation)
}

// CreateBulkProducts imports products from CSV. Rows are created one by one;
// a failed row does not stop the rest. With async=true the file is queued and
// a job id is returned.
func (h *BulkImportHandler) CreateBulkProducts(c *gin.Context) {
	fileHandle, err := h.openUpload(c)
	if err != nil {
		handleServiceError(c, err, "bulk import")
		return
	}
	defer fileHandle.Close()

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if strings.EqualFold(strings.TrimSpace(c.Query("async")), "true") {
		h.enqueue(ctx, c, fileHandle)
		return
	}

	result, err := h.productService.ProcessBulkImport(ctx, fileHandle)
	if err != nil {
		handleServiceError(c, err, "bulk import")
		return
	}
	if result.InsertedCount > 0 {
		h.cache.InvalidateAfterWrite(ctx, "bulk import")
	}

	status := http.StatusOK
	if result.InsertedCount == 0 && result.ErrorsCount > 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

func (h *BulkImportHandler) enqueue(ctx context.Context, c *gin.Context, file io.Reader) {
	if h.jobs == nil {
		handleServiceError(c, apperrors.Newf(apperrors.ErrServiceUnavailable, "async import is not configured"), "bulk import")
		return
	}
	job, err := h.jobs.Enqueue(ctx, file)
	if err != nil {
		handleServiceError(c, err, "bulk import")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": "Import queued for processing",
	})
}

// GetBulkImportJobStatus returns the state of an async import.
func (h *BulkImportHandler) GetBulkImportJobStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if h.jobs == nil {
		handleServiceError(c, apperrors.Newf(apperrors.ErrServiceUnavailable, "async import is not configured"), "bulk import status")
		return
	}

	ctx, cancel := requestContext(c, 5*time.Second)
	defer cancel()

	job, err := h.jobs.Status(ctx, id)
	if err != nil {
		handleServiceError(c, err, "bulk import status")
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *BulkImportHandler) openUpload(c *gin.Context) (multipart.File, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrValidation, "file is required")
	}
	if !h.validator.IsValidCSVFile(file) {
		return nil, apperrors.Newf(apperrors.ErrValidation, "invalid file type, only CSV files are allowed")
	}
	if err := h.validator.ValidateFileSize(file); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, err)
	}

	fileHandle, err := file.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("open upload: %w", err))
	}
	return fileHandle, nil
}
