package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"catalog-service/catalog"
	apperrors "catalog-service/common/errors"
	"catalog-service/common/logger"
	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"

	"go.uber.org/zap"
)

// Fixed CSV columns. Any other column is an attribute candidate.
const (
	colName     = "name"
	colSlug     = "slug"
	colCategory = "category"
	colPrice    = "price"
	colMRP      = "mrp"
	colDiscount = "discount"
	colStock    = "stock"
	colImages   = "images"
)

var requiredColumns = []string{colName, colCategory, colPrice}

var fixedColumns = map[string]bool{
	colName: true, colSlug: true, colCategory: true, colPrice: true,
	colMRP: true, colDiscount: true, colStock: true, colImages: true,
}

type bulkRow struct {
	rowNum  int
	slug    string
	request ProductCreateRequest
	err     string
}

type bulkBatch struct {
	rows              []bulkRow
	missingCategories []string
	duplicateSlugs    []string
}

// readBulkCSV parses the upload and checks every row against the category
// registry and the existing slugs. Rows that fail carry an error message.
func (s *ProductService) readBulkCSV(ctx context.Context, file io.Reader) (*bulkBatch, error) {
	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrValidation, "CSV must include a header row")
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, apperrors.Newf(apperrors.ErrValidation, "CSV is missing the %q column", col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	batch := &bulkBatch{}
	categories := make(map[string]*models.Category)
	missing := make(map[string]bool)
	slugRows := make(map[string]int)

	for rowNum := 2; ; rowNum++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			batch.rows = append(batch.rows, bulkRow{rowNum: rowNum, err: "failed to parse CSV row"})
			continue
		}

		req := ProductCreateRequest{
			Name:         cell(row, colName),
			Slug:         cell(row, colSlug),
			CategorySlug: cell(row, colCategory),
			CommerceInput: catalog.CommerceInput{
				Price:           cell(row, colPrice),
				MRP:             cell(row, colMRP),
				DiscountPercent: cell(row, colDiscount),
				Stock:           cell(row, colStock),
			},
			AttributeValues: make(map[string]models.FieldValue),
		}
		for _, img := range strings.Split(cell(row, colImages), "|") {
			if img = strings.TrimSpace(img); img != "" {
				req.Images = append(req.Images, img)
			}
		}
		for i, h := range headers {
			key := strings.TrimSpace(h)
			if fixedColumns[strings.ToLower(key)] || key == "" || i >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[i]); v != "" {
				req.AttributeValues[key] = models.Text(v)
			}
		}

		br := bulkRow{rowNum: rowNum, request: req}
		br.slug = catalog.Slugify(req.Slug)
		if br.slug == "" {
			br.slug = catalog.Slugify(req.Name)
		}

		switch {
		case req.Name == "" || br.slug == "":
			br.err = "name is required"
		case req.CategorySlug == "":
			br.err = "category is required"
		}
		if br.err == "" {
			if _, err := catalog.ParseCommerce(req.CommerceInput); err != nil {
				br.err = errorDetail(err)
			}
		}
		if br.err == "" {
			category, ok := categories[req.CategorySlug]
			if !ok && !missing[req.CategorySlug] {
				category, err = s.catalog.categoryBySlug(ctx, req.CategorySlug)
				switch {
				case err == nil:
					categories[req.CategorySlug] = category
				case errors.Is(err, apperrors.ErrCategoryNotFound):
					missing[req.CategorySlug] = true
					batch.missingCategories = append(batch.missingCategories, req.CategorySlug)
				default:
					return nil, err
				}
			}
			if category == nil {
				br.err = fmt.Sprintf("category %q not found", req.CategorySlug)
			} else {
				br.request.CategoryID = category.ID
			}
		}
		if br.err == "" {
			if first, dup := slugRows[br.slug]; dup {
				br.err = fmt.Sprintf("slug %q repeats row %d", br.slug, first)
				batch.duplicateSlugs = append(batch.duplicateSlugs, br.slug)
			} else {
				slugRows[br.slug] = rowNum
			}
		}
		batch.rows = append(batch.rows, br)
	}

	if len(slugRows) > 0 {
		slugs := make([]string, 0, len(slugRows))
		for slug := range slugRows {
			slugs = append(slugs, slug)
		}
		taken, err := s.productRepo.SlugsExist(ctx, slugs)
		if err != nil {
			return nil, storeError(err, apperrors.ErrProductNotFound)
		}
		existing := make(map[string]bool, len(taken))
		for _, slug := range taken {
			existing[slug] = true
		}
		for i := range batch.rows {
			br := &batch.rows[i]
			if br.err == "" && existing[br.slug] {
				br.err = fmt.Sprintf("slug %q already exists", br.slug)
				batch.duplicateSlugs = append(batch.duplicateSlugs, br.slug)
			}
		}
	}

	return batch, nil
}

// ValidateBulkImport dry-runs a CSV import and reports what would fail.
func (s *ProductService) ValidateBulkImport(ctx context.Context, file io.Reader) (*models.BulkImportValidation, error) {
	batch, err := s.readBulkCSV(ctx, file)
	if err != nil {
		return nil, err
	}

	validation := &models.BulkImportValidation{
		TotalProducts:     len(batch.rows),
		MissingCategories: nonNil(batch.missingCategories),
		DuplicateSlugs:    nonNil(batch.duplicateSlugs),
		Errors:            []map[string]interface{}{},
		Warnings:          []map[string]interface{}{},
	}
	for _, br := range batch.rows {
		if br.err != "" {
			validation.InvalidProducts++
			validation.Errors = append(validation.Errors, map[string]interface{}{"row": br.rowNum, "error": br.err})
			continue
		}
		validation.ValidProducts++
		if len(br.request.Images) == 0 {
			validation.Warnings = append(validation.Warnings, map[string]interface{}{"row": br.rowNum, "warning": "no images"})
		}
	}
	return validation, nil
}

// ProcessBulkImport creates one product per valid CSV row. Failed rows are
// reported and do not stop the import.
func (s *ProductService) ProcessBulkImport(ctx context.Context, file io.Reader) (*models.BulkImportResult, error) {
	batch, err := s.readBulkCSV(ctx, file)
	if err != nil {
		return nil, err
	}

	result := &models.BulkImportResult{
		Errors:     []map[string]interface{}{},
		RowResults: make([]map[string]interface{}, 0, len(batch.rows)),
	}
	for _, br := range batch.rows {
		if br.err == "" {
			if _, err := s.CreateProduct(ctx, br.request); err != nil {
				br.err = errorDetail(err)
			}
		}
		if br.err != "" {
			result.Errors = append(result.Errors, map[string]interface{}{"row": br.rowNum, "error": br.err})
			result.RowResults = append(result.RowResults, map[string]interface{}{"row": br.rowNum, "slug": br.slug, "status": "error", "error": br.err})
			continue
		}
		result.InsertedCount++
		result.RowResults = append(result.RowResults, map[string]interface{}{"row": br.rowNum, "slug": br.slug, "status": "created"})
	}
	result.ErrorsCount = len(result.Errors)
	result.Message = fmt.Sprintf("Imported %d of %d products", result.InsertedCount, len(batch.rows))

	logger.Info(ctx, "Bulk import finished",
		zap.Int("inserted", result.InsertedCount),
		zap.Int("errors", result.ErrorsCount),
	)
	if result.InsertedCount > 0 {
		recordValue(s.metrics, awspkg.MetricBulkRowsImported, float64(result.InsertedCount), nil)
	}
	return result, nil
}

// errorDetail renders an error for a per-row report.
func errorDetail(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Err != nil {
		return fmt.Sprintf("%s: %s", appErr.Message, appErr.Err.Error())
	}
	return err.Error()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
