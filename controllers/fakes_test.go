package controllers

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	apperrors "catalog-service/common/errors"
	"catalog-service/models"
	"catalog-service/services"

	"github.com/go-redis/redis/v8"
)

type fakeCategoryService struct {
	created    *services.CategoryCreateRequest
	createErr  error
	getErr     error
	fieldSlug  string
	categories []models.Category
}

func (f *fakeCategoryService) CreateCategory(ctx context.Context, req services.CategoryCreateRequest) (*models.Category, error) {
	f.created = &req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Category{ID: "cat-1", Name: req.Name, Slug: "wardrobes", IsActive: true}, nil
}

func (f *fakeCategoryService) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Category{ID: "cat-1", Name: "Wardrobes", Slug: slug}, nil
}

func (f *fakeCategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryService) AddAttributeField(ctx context.Context, categorySlug string, field models.FieldDef) (*models.Category, error) {
	f.fieldSlug = categorySlug
	return &models.Category{Slug: categorySlug, AttributeFields: []models.FieldDef{field}}, nil
}

func (f *fakeCategoryService) AddVariationAxis(ctx context.Context, categorySlug string, axis models.AxisDef) (*models.Category, error) {
	return &models.Category{Slug: categorySlug, VariationAxes: []models.AxisDef{axis}}, nil
}

type fakeCatalogService struct {
	lastQuery  map[string]string
	listCalled int
	products   []models.Product
	facetSlug  string
	facetErr   error
}

func (f *fakeCatalogService) ListProducts(ctx context.Context, query map[string]string) ([]models.Product, error) {
	f.listCalled++
	f.lastQuery = query
	return f.products, nil
}

func (f *fakeCatalogService) Facets(ctx context.Context, categorySlug string) (models.FacetSet, error) {
	f.facetSlug = categorySlug
	if f.facetErr != nil {
		return models.FacetSet{}, f.facetErr
	}
	return models.FacetSet{
		PriceRange:       models.PriceRange{Min: 100, Max: 300},
		ImportantFilters: []models.Facet{{Name: "Material", Slug: "material", Source: models.FacetAttribute, Values: []string{"Oak"}}},
	}, nil
}

type fakeProductService struct {
	err error

	createReq   *services.ProductCreateRequest
	generateReq *services.GenerateVariantsRequest
	variantSKU  string
	deleted     string

	bulkBody string

	presignSlug    string
	presignType    string
	presignExpires time.Duration
}

func (f *fakeProductService) product(slug string) *models.Product {
	return &models.Product{ID: "p-1", Name: "Classic", Slug: slug, Price: 499}
}

func (f *fakeProductService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product(slug), nil
}

func (f *fakeProductService) CreateProduct(ctx context.Context, req services.ProductCreateRequest) (*models.Product, error) {
	f.createReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.product("classic"), nil
}

func (f *fakeProductService) UpdateProduct(ctx context.Context, slug string, req services.ProductUpdateRequest) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product(slug), nil
}

func (f *fakeProductService) DeleteProduct(ctx context.Context, slug string) error {
	f.deleted = slug
	return f.err
}

func (f *fakeProductService) AddVariant(ctx context.Context, slug string, req services.VariantRequest) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product(slug), nil
}

func (f *fakeProductService) UpdateVariant(ctx context.Context, slug, sku string, req services.VariantUpdateRequest) (*models.Product, error) {
	f.variantSKU = sku
	if f.err != nil {
		return nil, f.err
	}
	return f.product(slug), nil
}

func (f *fakeProductService) DeleteVariant(ctx context.Context, slug, sku string) (*models.Product, error) {
	f.variantSKU = sku
	if f.err != nil {
		return nil, f.err
	}
	return f.product(slug), nil
}

func (f *fakeProductService) GenerateVariants(ctx context.Context, slug string, req services.GenerateVariantsRequest) (*models.Product, error) {
	f.generateReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.product(slug), nil
}

func (f *fakeProductService) ValidateBulkImport(ctx context.Context, file io.Reader) (*models.BulkImportValidation, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	f.bulkBody = string(b)
	return &models.BulkImportValidation{TotalProducts: 1, ValidProducts: 1}, nil
}

func (f *fakeProductService) ProcessBulkImport(ctx context.Context, file io.Reader) (*models.BulkImportResult, error) {
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	return &models.BulkImportResult{InsertedCount: 0, ErrorsCount: 1, Message: "no rows imported"}, nil
}

func (f *fakeProductService) GeneratePresignedUpload(ctx context.Context, slug, filename, contentType string, expires time.Duration) (*services.PresignedUpload, error) {
	f.presignSlug = slug
	f.presignType = contentType
	f.presignExpires = expires
	if f.err != nil {
		return nil, f.err
	}
	return &services.PresignedUpload{
		UploadURL: "https://bucket.example/products/" + slug + "/x.jpg?sig",
		Method:    "PUT",
		Key:       "products/" + slug + "/x.jpg",
		PublicURL: "https://cdn.example/products/" + slug + "/x.jpg",
		ExpiresIn: int64(expires / time.Second),
	}, nil
}

type fakeJobQueue struct {
	queued string
}

func (f *fakeJobQueue) Enqueue(ctx context.Context, file io.Reader) (*models.BulkImportJob, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	f.queued = string(b)
	return &models.BulkImportJob{ID: "job-1", Status: models.JobPending}, nil
}

func (f *fakeJobQueue) Status(ctx context.Context, jobID string) (*models.BulkImportJob, error) {
	if jobID != "job-1" {
		return nil, apperrors.Newf(apperrors.ErrNotFound, "bulk import job %q", jobID)
	}
	return &models.BulkImportJob{
		ID:     jobID,
		Status: models.JobDone,
		Result: &models.BulkImportResult{InsertedCount: 1, Errors: []map[string]interface{}{}},
	}, nil
}

func newTestRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: "localhost:0",
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("redis disabled in tests")
		},
		MaxRetries: -1,
	})
}
