package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	apperrors "catalog-service/common/errors"
	"catalog-service/common/logger"
	"catalog-service/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	bulkQueueKey      = "catalog:bulk_import:queue"
	bulkJobKeyPrefix  = "catalog:bulk_import:job:"
	bulkFileKeyPrefix = "catalog:bulk_import:file:"
	bulkJobTTL        = 24 * time.Hour
	bulkJobTimeout    = 10 * time.Minute
)

// BulkImportQueue runs CSV imports in the background. Uploads and job state
// live in Redis, so any replica may pick a job up.
type BulkImportQueue struct {
	rdb         *redis.Client
	products    *ProductService
	afterImport func(ctx context.Context)
}

// NewBulkImportQueue returns nil when Redis is not configured; a nil queue
// rejects every job.
func NewBulkImportQueue(rdb *redis.Client, ps *ProductService, afterImport func(ctx context.Context)) *BulkImportQueue {
	if rdb == nil || ps == nil {
		return nil
	}
	return &BulkImportQueue{rdb: rdb, products: ps, afterImport: afterImport}
}

// Enqueue stores the upload and queues it for processing.
func (q *BulkImportQueue) Enqueue(ctx context.Context, file io.Reader) (*models.BulkImportJob, error) {
	if q == nil {
		return nil, apperrors.Newf(apperrors.ErrServiceUnavailable, "async import requires redis")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrValidation, "failed to read file: %v", err)
	}

	now := time.Now().UTC()
	job := &models.BulkImportJob{
		ID:        uuid.New().String(),
		Status:    models.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	meta, err := json.Marshal(job)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	pipe := q.rdb.TxPipeline()
	pipe.Set(ctx, bulkFileKeyPrefix+job.ID, data, bulkJobTTL)
	pipe.Set(ctx, bulkJobKeyPrefix+job.ID, meta, bulkJobTTL)
	pipe.RPush(ctx, bulkQueueKey, job.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrServiceUnavailable, fmt.Errorf("enqueue bulk import: %w", err))
	}

	logger.Info(ctx, "Bulk import job queued", zap.String("job_id", job.ID), zap.Int("bytes", len(data)))
	return job, nil
}

// Status returns the job record.
func (q *BulkImportQueue) Status(ctx context.Context, jobID string) (*models.BulkImportJob, error) {
	if q == nil {
		return nil, apperrors.Newf(apperrors.ErrServiceUnavailable, "async import requires redis")
	}
	val, err := q.rdb.Get(ctx, bulkJobKeyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.Newf(apperrors.ErrNotFound, "bulk import job %q", jobID)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrServiceUnavailable, fmt.Errorf("read bulk import job: %w", err))
	}

	var job models.BulkImportJob
	if err := json.Unmarshal(val, &job); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("parse bulk import job: %w", err))
	}
	return &job, nil
}

// Start consumes the queue until ctx is cancelled.
func (q *BulkImportQueue) Start(ctx context.Context) {
	if q == nil {
		zap.L().Warn("bulk import worker not started: redis not configured")
		return
	}

	go func() {
		zap.L().Info("bulk import worker started", zap.String("queue", bulkQueueKey))
		for {
			if ctx.Err() != nil {
				zap.L().Info("bulk import worker stopping")
				return
			}

			res, err := q.rdb.BLPop(ctx, 5*time.Second, bulkQueueKey).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				zap.L().Error("redis BLPop failed", zap.Error(err))
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if len(res) < 2 {
				continue
			}
			q.processJob(ctx, res[1])
		}
	}()
}

func (q *BulkImportQueue) processJob(parent context.Context, jobID string) {
	ctx, cancel := context.WithTimeout(parent, bulkJobTimeout)
	defer cancel()

	job, err := q.Status(ctx, jobID)
	if err != nil {
		zap.L().Error("failed to read job metadata", zap.String("job", jobID), zap.Error(err))
		return
	}

	data, err := q.rdb.Get(ctx, bulkFileKeyPrefix+jobID).Bytes()
	if err != nil {
		finishJob(job, nil, fmt.Errorf("upload expired or unreadable: %w", err))
		q.save(ctx, job)
		return
	}

	job.Status = models.JobProcessing
	job.UpdatedAt = time.Now().UTC()
	q.save(ctx, job)

	result, err := q.products.ProcessBulkImport(ctx, bytes.NewReader(data))
	finishJob(job, result, err)
	q.save(ctx, job)
	q.rdb.Del(ctx, bulkFileKeyPrefix+jobID)

	if err != nil {
		zap.L().Error("bulk import processing failed", zap.String("job", jobID), zap.Error(err))
		return
	}
	if result.InsertedCount > 0 && q.afterImport != nil {
		q.afterImport(ctx)
	}
}

func (q *BulkImportQueue) save(ctx context.Context, job *models.BulkImportJob) {
	b, err := json.Marshal(job)
	if err != nil {
		zap.L().Error("failed to marshal job", zap.String("job", job.ID), zap.Error(err))
		return
	}
	if err := q.rdb.Set(ctx, bulkJobKeyPrefix+job.ID, b, bulkJobTTL).Err(); err != nil {
		zap.L().Error("failed to store job", zap.String("job", job.ID), zap.Error(err))
	}
}

// finishJob records the outcome of a processed job.
func finishJob(job *models.BulkImportJob, result *models.BulkImportResult, err error) {
	job.UpdatedAt = time.Now().UTC()
	if err != nil {
		job.Status = models.JobFailed
		job.Error = errorDetail(err)
		job.Result = nil
		return
	}
	job.Status = models.JobDone
	job.Error = ""
	job.Result = result
}
