package services

import (
	"context"
	"encoding/json"
	"time"

	"catalog-service/common/logger"
	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"

	"go.uber.org/zap"
)

// EventPublisher announces product changes on an SNS topic. A nil publisher
// drops every event.
type EventPublisher struct {
	sns      awspkg.SNSPublisher
	topicArn string
}

// NewEventPublisher returns nil when either the client or the topic is missing.
func NewEventPublisher(sns awspkg.SNSPublisher, topicArn string) *EventPublisher {
	if sns == nil || topicArn == "" {
		return nil
	}
	return &EventPublisher{sns: sns, topicArn: topicArn}
}

// PublishProduct sends eventType for p. Failures are logged and never returned.
func (e *EventPublisher) PublishProduct(ctx context.Context, eventType string, p *models.Product) {
	if e == nil || p == nil {
		return
	}

	event := models.ProductEvent{
		EventType:    eventType,
		ProductID:    p.ID,
		Slug:         p.Slug,
		CategoryID:   p.CategoryID,
		VariantCount: len(p.Variants),
		Timestamp:    time.Now().UTC(),
	}
	if eventType == models.EventProductVariantsGenerated {
		for _, v := range p.Variants {
			event.SKUs = append(event.SKUs, v.SKU)
		}
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		logger.Error(ctx, "Failed to marshal product event", err, zap.String("event_type", eventType))
		return
	}

	attrs := map[string]string{"event_type": eventType}
	if err := e.sns.Publish(ctx, e.topicArn, eventBytes, attrs); err != nil {
		logger.Error(ctx, "Failed to publish product event", err,
			zap.String("event_type", eventType),
			zap.String("slug", p.Slug),
		)
		return
	}

	logger.Debug(ctx, "Published product event",
		zap.String("event_type", eventType),
		zap.String("slug", p.Slug),
	)
}
