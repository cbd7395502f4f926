package controllers

import (
	"net/http"

	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

func (ctrl *ProductController) AddVariant(c *gin.Context) {
	var req services.VariantRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		handleServiceError(c, err, "add variant")
		return
	}

	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	product, err := ctrl.products.AddVariant(ctx, c.Param("slug"), req)
	if err != nil {
		handleServiceError(c, err, "add variant")
		return
	}
	ctrl.cache.InvalidateAfterWrite(ctx, "add variant")
	c.JSON(http.StatusCreated, product)
}

// GenerateVariants replaces the product's variants with the cartesian product
// of the selected axis options.
func (ctrl *ProductController) GenerateVariants(c *gin.Context) {
	var req services.GenerateVariantsRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		handleServiceError(c, err, "generate variants")
		return
	}

	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	product, err := ctrl.products.GenerateVariants(ctx, c.Param("slug"), req)
	if err != nil {
		handleServiceError(c, err, "generate variants")
		return
	}
	ctrl.cache.InvalidateAfterWrite(ctx, "generate variants")
	c.JSON(http.StatusOK, product)
}

func (ctrl *ProductController) UpdateVariant(c *gin.Context) {
	var req services.VariantUpdateRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		handleServiceError(c, err, "update variant")
		return
	}

	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	product, err := ctrl.products.UpdateVariant(ctx, c.Param("slug"), c.Param("sku"), req)
	if err != nil {
		handleServiceError(c, err, "update variant")
		return
	}
	ctrl.cache.InvalidateAfterWrite(ctx, "update variant")
	c.JSON(http.StatusOK, product)
}

func (ctrl *ProductController) DeleteVariant(c *gin.Context) {
	ctx, cancel := requestContext(c, ctrl.timeout)
	defer cancel()

	product, err := ctrl.products.DeleteVariant(ctx, c.Param("slug"), c.Param("sku"))
	if err != nil {
		handleServiceError(c, err, "delete variant")
		return
	}
	ctrl.cache.InvalidateAfterWrite(ctx, "delete variant")
	c.JSON(http.StatusOK, product)
}
