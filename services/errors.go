package services

import (
	"context"
	"errors"
	"time"

	apperrors "catalog-service/common/errors"
	"catalog-service/common/logger"
	"catalog-service/repository"

	"go.uber.org/zap"
)

// storeError translates a repository error into the catalog error taxonomy.
// notFound is the kind reported for repository.ErrNotFound.
func storeError(err error, notFound *apperrors.Error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.Wrap(notFound, err)
	case errors.Is(err, repository.ErrDuplicateSKU):
		return apperrors.Wrap(apperrors.ErrDuplicateSKU, err)
	case errors.Is(err, repository.ErrDuplicateSlug):
		return apperrors.Wrap(apperrors.ErrDuplicateSlug, err)
	case errors.Is(err, repository.ErrDuplicateFieldSlug):
		return apperrors.Wrap(apperrors.ErrDuplicateFieldSlug, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Wrap(apperrors.ErrServiceUnavailable, err)
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

// MetricsRecorder receives business counters. *aws.MetricsClient satisfies it.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordValue(ctx context.Context, metricName string, value float64, dimensions map[string]string) error
}

func recordCount(m MetricsRecorder, name string, dims map[string]string) {
	if m == nil {
		return
	}
	emit(name, func(ctx context.Context) error { return m.RecordCount(ctx, name, dims) })
}

func recordValue(m MetricsRecorder, name string, value float64, dims map[string]string) {
	if m == nil {
		return
	}
	emit(name, func(ctx context.Context) error { return m.RecordValue(ctx, name, value, dims) })
}

// emit ships a data point off the request path.
func emit(name string, send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			logger.Log.Warn("Failed to record metric", zap.String("metric", name), zap.Error(err))
		}
	}()
}
