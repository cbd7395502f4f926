package controllers

import (
	"net/http"
	"strings"
	"time"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	service   CategoryServiceAPI
	catalog   CatalogServiceAPI
	cache     *CacheManager
	validator *RequestValidator
	timeout   time.Duration
}

func NewCategoryController(s CategoryServiceAPI, catalog CatalogServiceAPI, cache *CacheManager, validator *RequestValidator) *CategoryController {
	return &CategoryController{
		service:   s,
		catalog:   catalog,
		cache:     cache,
		validator: validator,
		timeout:   DefaultContextTimeout,
	}
}

func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	var cached []models.Category
	if ctrl.cache.Get(ctx, cacheKindCategory, "list", &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	categories, err := ctrl.service.ListCategories(ctx)
	if err != nil {
		handleServiceError(c, err, "list categories")
		return
	}
	ctrl.cache.SetAsync(cacheKindCategory, "list", categories)
	c.JSON(http.StatusOK, categories)
}

func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	var cached models.Category
	if ctrl.cache.Get(ctx, cacheKindCategory, "slug:"+slug, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	category, err := ctrl.service.GetCategory(ctx, slug)
	if err != nil {
		handleServiceError(c, err, "get category")
		return
	}
	ctrl.cache.SetAsync(cacheKindCategory, "slug:"+slug, category)
	c.JSON(http.StatusOK, category)
}

// GetFacets returns the storefront filter set derived from the category's
// live products.
func (ctrl *CategoryController) GetFacets(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	var cached models.FacetSet
	if ctrl.cache.Get(ctx, cacheKindFacets, slug, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	facets, err := ctrl.catalog.Facets(ctx, slug)
	if err != nil {
		handleServiceError(c, err, "facets")
		return
	}
	ctrl.cache.SetAsync(cacheKindFacets, slug, facets)
	c.JSON(http.StatusOK, facets)
}

func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req services.CategoryCreateRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		handleServiceError(c, err, "create category")
		return
	}

	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	category, err := ctrl.service.CreateCategory(ctx, req)
	if err != nil {
		handleServiceError(c, err, "create category")
		return
	}
	ctrl.cache.InvalidateAfterWrite(ctx, "create category")
	c.JSON(http.StatusCreated, category)
}

func (ctrl *CategoryController) AddAttributeField(c *gin.Context) {
	var field models.FieldDef
	if err := ctrl.validator.BindJSON(c, &field); err != nil {
		handleServiceError(c, err, "add attribute field")
		return
	}

	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	category, err := ctrl.service.AddAttributeField(ctx, c.Param("slug"), field)
	if err != nil {
		handleServiceError(c, err, "add attribute field")
		return
	}
	ctrl.cache.InvalidateAfterWrite(ctx, "add attribute field")
	c.JSON(http.StatusOK, category)
}

func (ctrl *CategoryController) AddVariationAxis(c *gin.Context) {
	var axis models.AxisDef
	if err := ctrl.validator.BindJSON(c, &axis); err != nil {
		handleServiceError(c, err, "add variation axis")
		return
	}

	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	category, err := ctrl.service.AddVariationAxis(ctx, c.Param("slug"), axis)
	if err != nil {
		handleServiceError(c, err, "add variation axis")
		return
	}
	ctrl.cache.InvalidateAfterWrite(ctx, "add variation axis")
	c.JSON(http.StatusOK, category)
}
