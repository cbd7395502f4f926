package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so a wrapped copy of a sentinel still
// satisfies errors.Is against the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of kind carrying err as its cause.
func Wrap(kind *Error, err error) *Error {
	return New(kind.Code, kind.Message, err)
}

// Newf returns a copy of kind with a formatted cause.
func Newf(kind *Error, format string, args ...interface{}) *Error {
	return New(kind.Code, kind.Message, fmt.Errorf(format, args...))
}

// Common error types
var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden          = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

// Validation error types
var (
	ErrValidation   = New(http.StatusBadRequest, "Validation error", nil)
	ErrInvalidInput = New(http.StatusBadRequest, "Invalid input", nil)
)

// Authentication error types
var (
	ErrTokenExpired = New(http.StatusUnauthorized, "Token expired", nil)
	ErrInvalidToken = New(http.StatusUnauthorized, "Invalid token", nil)
)

// Catalog error types
var (
	ErrCategoryNotFound    = New(http.StatusNotFound, "Category not found", nil)
	ErrProductNotFound     = New(http.StatusNotFound, "Product not found", nil)
	ErrVariantNotFound     = New(http.StatusNotFound, "Variant not found", nil)
	ErrInvalidFieldValue   = New(http.StatusBadRequest, "Invalid field value", nil)
	ErrDuplicateSKU        = New(http.StatusConflict, "Duplicate SKU", nil)
	ErrDuplicateSlug       = New(http.StatusConflict, "Duplicate slug", nil)
	ErrDuplicateFieldSlug  = New(http.StatusConflict, "Duplicate field slug", nil)
	ErrTooManyCombinations = New(http.StatusUnprocessableEntity, "Too many variant combinations", nil)
)

// Respond writes err as a JSON response. Causes of client errors are exposed as
// details; server errors are logged and rendered generically.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		appErr = Wrap(ErrInternalServer, err)
	}

	if appErr.Code >= http.StatusInternalServerError {
		zap.L().Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}

	body := gin.H{"error": appErr.Message}
	if appErr.Err != nil {
		body["details"] = appErr.Err.Error()
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}

// Error middleware for Gin
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			Respond(c, c.Errors.Last().Err)
		}
	}
}
