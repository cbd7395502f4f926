package controllers

import (
	"context"
	"errors"
	"time"

	apperrors "catalog-service/common/errors"
	"catalog-service/common/logger"
	"catalog-service/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError renders a service failure. Typed errors keep their status;
// anything else becomes a 500.
func handleServiceError(c *gin.Context, err error, op string) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Code < 500 {
		logger.Debug(c.Request.Context(), "Request rejected", zap.String("op", op), zap.Error(err))
	} else {
		logger.Error(c.Request.Context(), "Service call failed", err, zap.String("op", op))
	}
	apperrors.Respond(c, err)
}

// requestContext bounds a handler's service calls.
func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultContextTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

type listMeta struct {
	Count int `json:"count"`
}

// productListResponse is the listing payload, cached as-is.
type productListResponse struct {
	Products []models.Product `json:"products"`
	Meta     listMeta         `json:"meta"`
}

func buildProductListResponse(products []models.Product) productListResponse {
	if products == nil {
		products = []models.Product{}
	}
	return productListResponse{
		Products: products,
		Meta:     listMeta{Count: len(products)},
	}
}
