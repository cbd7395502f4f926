package routes

import (
	"net/http"

	"catalog-service/controllers"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the controllers mounted by RegisterRoutes.
type Handlers struct {
	Categories *controllers.CategoryController
	Products   *controllers.ProductController
	Presign    *controllers.PresignedURLHandler
	BulkImport *controllers.BulkImportHandler
}

// RegisterRoutes mounts the catalog API. Reads pass through public, writes
// through admin.
func RegisterRoutes(r *gin.Engine, h Handlers, public, admin gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterCategoryRoutes(r, h.Categories, public, admin)
	RegisterProductRoutes(r, h, public, admin)
}

func RegisterCategoryRoutes(r *gin.Engine, ctrl *controllers.CategoryController, public, admin gin.HandlerFunc) {
	categoryRoutes := r.Group("/categories")
	{
		categoryRoutes.GET("", public, ctrl.ListCategories)
		categoryRoutes.GET("/:slug", public, ctrl.GetCategory)
		categoryRoutes.GET("/:slug/facets", public, ctrl.GetFacets)

		categoryRoutes.POST("", admin, ctrl.CreateCategory)
		categoryRoutes.POST("/:slug/attribute-fields", admin, ctrl.AddAttributeField)
		categoryRoutes.POST("/:slug/variation-axes", admin, ctrl.AddVariationAxis)
	}
}

func RegisterProductRoutes(r *gin.Engine, h Handlers, public, admin gin.HandlerFunc) {
	productRoutes := r.Group("/products")
	{
		productRoutes.GET("", public, h.Products.GetProducts)
		productRoutes.GET("/:slug", public, h.Products.GetProduct)

		productRoutes.POST("", admin, h.Products.CreateProduct)
		productRoutes.PUT("/:slug", admin, h.Products.UpdateProduct)
		productRoutes.DELETE("/:slug", admin, h.Products.DeleteProduct)

		productRoutes.POST("/bulk/validate", admin, h.BulkImport.ValidateBulkImport)
		productRoutes.POST("/bulk", admin, h.BulkImport.CreateBulkProducts)
		productRoutes.GET("/bulk/jobs/:id", admin, h.BulkImport.GetBulkImportJobStatus)

		productRoutes.GET("/:slug/images/presign", admin, h.Presign.GetPresignUpload)

		productRoutes.POST("/:slug/variants", admin, h.Products.AddVariant)
		productRoutes.POST("/:slug/variants/generate", admin, h.Products.GenerateVariants)
		productRoutes.PUT("/:slug/variants/:sku", admin, h.Products.UpdateVariant)
		productRoutes.DELETE("/:slug/variants/:sku", admin, h.Products.DeleteVariant)
	}
}
