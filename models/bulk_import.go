package models

import "time"

type BulkImportValidation struct {
	TotalProducts     int                      `json:"total_products"`
	ValidProducts     int                      `json:"valid_products"`
	InvalidProducts   int                      `json:"invalid_products"`
	MissingCategories []string                 `json:"missing_categories"`
	DuplicateSlugs    []string                 `json:"duplicate_slugs"`
	Errors            []map[string]interface{} `json:"errors"`
	Warnings          []map[string]interface{} `json:"warnings"`
}

type BulkImportResult struct {
	InsertedCount int                      `json:"inserted_count"`
	ErrorsCount   int                      `json:"errors_count"`
	Errors        []map[string]interface{} `json:"errors"`
	Message       string                   `json:"message"`
	// RowResults contains per-row outcomes for the processed CSV.
	RowResults []map[string]interface{} `json:"row_results,omitempty"`
}

// Bulk import job states.
const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobDone       = "done"
	JobFailed     = "failed"
)

// BulkImportJob tracks an import queued with async=true.
type BulkImportJob struct {
	ID        string            `json:"job_id"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Error     string            `json:"error,omitempty"`
	Result    *BulkImportResult `json:"result,omitempty"`
}
