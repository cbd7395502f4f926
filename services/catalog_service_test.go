package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"catalog-service/catalog"
	apperrors "catalog-service/common/errors"
	"catalog-service/models"
	"catalog-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	category, err := f.category.CreateCategory(ctx, services.CategoryCreateRequest{Name: "Dining Tables"})
	require.NoError(t, err)
	assert.Equal(t, "dining-tables", category.Slug)
	assert.True(t, category.IsActive)
	assert.NotNil(t, category.AttributeFields)
	assert.NotNil(t, category.VariationAxes)

	_, err = f.category.CreateCategory(ctx, services.CategoryCreateRequest{Name: "Dining  Tables"})
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateSlug))

	_, err = f.category.CreateCategory(ctx, services.CategoryCreateRequest{
		Name: "Chairs",
		AttributeFields: []models.FieldDef{
			{Name: "Material", Type: models.FieldText},
			{Name: "material", Type: models.FieldDropdown},
		},
	})
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateFieldSlug))

	_, err = f.category.CreateCategory(ctx, services.CategoryCreateRequest{
		Name:          "Lamps",
		VariationAxes: []models.AxisDef{{Name: "Has Bulb", Type: models.FieldBoolean}},
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = f.category.CreateCategory(ctx, services.CategoryCreateRequest{Name: "!!!"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestAppendFieldsAndAxes(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()
	createWardrobes(t, f)

	category, err := f.category.AddAttributeField(ctx, "wardrobes", models.FieldDef{Name: "Finish", Type: models.FieldText})
	require.NoError(t, err)
	require.Len(t, category.AttributeFields, 2)
	assert.Equal(t, "finish", category.AttributeFields[1].Slug)

	_, err = f.category.AddAttributeField(ctx, "wardrobes", models.FieldDef{Name: "Material", Type: models.FieldText})
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateFieldSlug))

	category, err = f.category.AddVariationAxis(ctx, "wardrobes", models.AxisDef{Name: "Width", Type: models.FieldNumber, Unit: "cm", Order: 2})
	require.NoError(t, err)
	require.Len(t, category.VariationAxes, 2)
	assert.Equal(t, "cm", category.VariationAxes[1].Unit)

	_, err = f.category.AddVariationAxis(ctx, "wardrobes", models.AxisDef{Name: "Door Type", Type: models.FieldText})
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateFieldSlug))

	_, err = f.category.AddVariationAxis(ctx, "sofas", models.AxisDef{Name: "Seats", Type: models.FieldNumber})
	assert.True(t, errors.Is(err, apperrors.ErrCategoryNotFound))

	all, err := f.category.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProjectAttributes(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()
	category := createWardrobes(t, f)

	out, err := f.catalog.ProjectAttributes(ctx, category.ID, map[string]models.FieldValue{
		"material": models.Text("MDF"),
		"brand":    models.Text("Acme"),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]models.FieldValue{"material": models.Text("MDF")}, out)

	_, err = f.catalog.ProjectAttributes(ctx, "missing", nil)
	assert.True(t, errors.Is(err, apperrors.ErrCategoryNotFound))
}

func seedListing(t *testing.T, f *fixture) *models.Category {
	t.Helper()
	ctx := context.Background()
	category, err := f.category.CreateCategory(ctx, services.CategoryCreateRequest{
		Name: "Cabinets",
		AttributeFields: []models.FieldDef{
			{Name: "Material", Type: models.FieldDropdown},
			{Name: "Style", Type: models.FieldDropdown},
		},
		VariationAxes: []models.AxisDef{{Name: "Size", Type: models.FieldDropdown, Order: 1}},
	})
	require.NoError(t, err)

	seed := []services.ProductCreateRequest{
		{Name: "Alpha", AttributeValues: map[string]models.FieldValue{"material": models.Text("Oak")}, CommerceInput: catalog.CommerceInput{Price: 100.0}},
		{Name: "Bravo", AttributeValues: map[string]models.FieldValue{"style": models.Text("Modern")}, CommerceInput: catalog.CommerceInput{Price: 200.0}},
		{Name: "Charlie", AttributeValues: map[string]models.FieldValue{"material": models.Text("Oak"), "style": models.Text("Scandinavian")}, CommerceInput: catalog.CommerceInput{Price: 300.0}},
	}
	for _, req := range seed {
		req.CategoryID = category.ID
		_, err := f.product.CreateProduct(ctx, req)
		require.NoError(t, err)
	}
	_, err = f.product.GenerateVariants(ctx, "bravo", services.GenerateVariantsRequest{
		OptionsBySlug: map[string][]string{"size": {"Small", "Large"}},
	})
	require.NoError(t, err)
	return category
}

func slugsOf(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Slug)
	}
	return out
}

func TestListProducts_AnyMode(t *testing.T) {
	f := newFixture(defaultConfig())
	seedListing(t, f)

	products, err := f.catalog.ListProducts(context.Background(), map[string]string{
		"categorySlug": "cabinets",
		"material":     `["Oak"]`,
		"style":        `["Scandinavian"]`,
		"sort":         "price-low",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "charlie"}, slugsOf(products))
}

func TestListProducts_AllMode(t *testing.T) {
	cfg := defaultConfig()
	cfg.FilterMode = catalog.ModeAll
	f := newFixture(cfg)
	seedListing(t, f)

	products, err := f.catalog.ListProducts(context.Background(), map[string]string{
		"material": `["Oak"]`,
		"style":    `["Scandinavian"]`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie"}, slugsOf(products))
}

func TestListProducts_VariantValuesAndMalformedKeys(t *testing.T) {
	f := newFixture(defaultConfig())
	seedListing(t, f)

	products, err := f.catalog.ListProducts(context.Background(), map[string]string{
		"size":  `["Large"]`,
		"style": `not-json`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bravo"}, slugsOf(products))

	products, err = f.catalog.ListProducts(context.Background(), map[string]string{
		"priceRange": `{"min":150,"max":300}`,
		"sort":       "price-high",
		"limit":      "1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie"}, slugsOf(products))

	_, err = f.catalog.ListProducts(context.Background(), map[string]string{"categorySlug": "ghost"})
	assert.True(t, errors.Is(err, apperrors.ErrCategoryNotFound))
}

func TestFacets(t *testing.T) {
	f := newFixture(defaultConfig())
	seedListing(t, f)
	ctx := context.Background()

	facets, err := f.catalog.Facets(ctx, "cabinets")
	require.NoError(t, err)
	assert.Equal(t, models.PriceRange{Min: 100, Max: 300}, facets.PriceRange)
	require.Len(t, facets.ImportantFilters, 3)
	assert.Equal(t, "material", facets.ImportantFilters[0].Slug)
	assert.Equal(t, []string{"Oak"}, facets.ImportantFilters[0].Values)
	assert.Equal(t, "style", facets.ImportantFilters[1].Slug)
	assert.Equal(t, []string{"Modern", "Scandinavian"}, facets.ImportantFilters[1].Values)
	assert.Equal(t, "size", facets.ImportantFilters[2].Slug)
	assert.Equal(t, []string{"Large", "Small"}, facets.ImportantFilters[2].Values)

	_, err = f.catalog.Facets(ctx, "ghost")
	assert.True(t, errors.Is(err, apperrors.ErrCategoryNotFound))

	f.products.findErr = errors.New("connection reset")
	facets, err = f.catalog.Facets(ctx, "cabinets")
	require.NoError(t, err)
	assert.Empty(t, facets.ImportantFilters)
	assert.Equal(t, catalog.DefaultPriceRange, facets.PriceRange)
}

func TestBulkImport(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()
	createWardrobes(t, f)

	_, err := f.product.CreateProduct(ctx, services.ProductCreateRequest{
		Name:          "Existing",
		CategorySlug:  "wardrobes",
		CommerceInput: catalog.CommerceInput{Price: 10.0},
	})
	require.NoError(t, err)

	csvData := strings.Join([]string{
		"name,slug,category,price,mrp,discount,stock,images,material,bogus",
		"Classic,,wardrobes,499,599,10,5,https://cdn/a.jpg|https://cdn/b.jpg,Ply,x",
		"Classic Copy,classic,wardrobes,100,,,,,,",
		"Existing,,wardrobes,100,,,,,,",
		"Nowhere,,beds,100,,,,,,",
		"Cheap,,wardrobes,abc,,,,,,",
	}, "\n")

	validation, err := f.product.ValidateBulkImport(ctx, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 5, validation.TotalProducts)
	assert.Equal(t, 1, validation.ValidProducts)
	assert.Equal(t, 4, validation.InvalidProducts)
	assert.Equal(t, []string{"beds"}, validation.MissingCategories)
	assert.ElementsMatch(t, []string{"classic", "existing"}, validation.DuplicateSlugs)

	result, err := f.product.ProcessBulkImport(ctx, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, result.InsertedCount)
	assert.Equal(t, 4, result.ErrorsCount)
	assert.Equal(t, "created", result.RowResults[0]["status"])

	classic, err := f.product.GetProduct(ctx, "classic")
	require.NoError(t, err)
	assert.Equal(t, 499.0, classic.Price)
	assert.Equal(t, 5, classic.Stock)
	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}, classic.Images)
	assert.Equal(t, map[string]models.FieldValue{"material": models.Text("Ply")}, classic.AttributeValues)

	_, err = f.product.ValidateBulkImport(ctx, strings.NewReader("title,cost\nx,1"))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
