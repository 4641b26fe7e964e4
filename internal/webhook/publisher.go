package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

const (
	webhookQueueKey = "webhook_events"
)

// WebhookEvent - структура для данных вебхука
type WebhookEvent struct {
	Event             string           `json:"event"`
	EmergencyID       uuid.UUID        `json:"emergency_id"`
	IncidentNumber    string           `json:"incident_number,omitempty"`
	SubjectID         string           `json:"subject_id"`
	Status            models.Status    `json:"status"`
	Location          models.Location  `json:"location"`
	ResponderLocation *models.Location `json:"responder_location,omitempty"`
	Timestamp         time.Time        `json:"timestamp"`
}

// NewEmergencyEvent собирает событие вебхука из записи вызова
func NewEmergencyEvent(event string, rec *models.EmergencyRecord) WebhookEvent {
	return WebhookEvent{
		Event:             event,
		EmergencyID:       rec.ID,
		IncidentNumber:    rec.IncidentNumber,
		SubjectID:         rec.SubjectID,
		Status:            rec.Status,
		Location:          rec.Location,
		ResponderLocation: rec.ResponderLocation,
		Timestamp:         rec.UpdatedAt,
	}
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
