package controllers

import (
	"net/http"
	"strings"
	"time"

	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

// ProductController serves product and variant endpoints.
type ProductController struct {
	products  ProductServiceAPI
	catalog   CatalogServiceAPI
	cache     *CacheManager
	validator *RequestValidator
	timeout   time.Duration
}

func NewProductController(ps ProductServiceAPI, catalog CatalogServiceAPI, cache *CacheManager, validator *RequestValidator) *ProductController {
	return &ProductController{
		products:  ps,
		catalog:   catalog,
		cache:     cache,
		validator: validator,
		timeout:   DefaultContextTimeout,
	}
}

// GetProducts lists products. The query string is handed to the filter
// builder as-is, so array filters arrive as JSON text and priceRange as a
// JSON object.
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	query := QueryMap(c)
	key := listCacheKey(query)

	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	var cached productListResponse
	if ctrl.cache.Get(ctx, cacheKindProducts, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, err := ctrl.catalog.ListProducts(ctx, query)
	if err != nil {
		handleServiceError(c, err, "list products")
		return
	}

	response := buildProductListResponse(products)
	ctrl.cache.SetAsync(cacheKindProducts, key, response)
	c.JSON(http.StatusOK, response)
}

func (ctrl *ProductController) GetProduct(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	product, err := ctrl.products.GetProduct(ctx, slug)
	if err != nil {
		handleServiceError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req services.ProductCreateRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		handleServiceError(c, err, "create product")
		return
	}

	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	product, err := ctrl.products.CreateProduct(ctx, req)
	if err != nil {
		handleServiceError(c, err, "create product")
		return
	}
	ctrl.cache.InvalidateAfterWrite(ctx, "create product")
	c.JSON(http.StatusCreated, product)
}

func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	var req services.ProductUpdateRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		handleServiceError(c, err, "update product")
		return
	}

	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	product, err := ctrl.products.UpdateProduct(ctx, c.Param("slug"), req)
	if err != nil {
		handleServiceError(c, err, "update product")
		return
	}
	ctrl.cache.InvalidateAfterWrite(ctx, "update product")
	c.JSON(http.StatusOK, product)
}

func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	slug := c.Param("slug")
	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	if err := ctrl.products.DeleteProduct(ctx, slug); err != nil {
		handleServiceError(c, err, "delete product")
		return
	}
	ctrl.cache.InvalidateAfterWrite(ctx, "delete product")
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
