package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const channelPrefix = "emergency"

// Channel возвращает канал событий субъекта: emergency:<kind>:<subject>
func Channel(kind models.EventKind, subjectID string) string {
	return fmt.Sprintf("%s:%s:%s", channelPrefix, kind, subjectID)
}

// RedisBus - шина событий вызовов поверх redis pub/sub
type RedisBus struct {
	redisClient *redis.Client
	logger      *logrus.Logger
}

func NewRedisBus(client *redis.Client, logger *logrus.Logger) *RedisBus {
	return &RedisBus{
		redisClient: client,
		logger:      logger,
	}
}

// Publish публикует запись в канал субъекта
func (b *RedisBus) Publish(ctx context.Context, kind models.EventKind, rec *models.EmergencyRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal emergency event: %w", err)
	}
	if err := b.redisClient.Publish(ctx, Channel(kind, rec.SubjectID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish emergency event to Redis: %w", err)
	}
	return nil
}

// Subscribe подписывает обработчик на события. Без субъекта в фильтре
// подписка оформляется по шаблону на всех субъектов.
// Обработчик вызывается последовательно из одной горутины.
func (b *RedisBus) Subscribe(ctx context.Context, kind models.EventKind, filter models.EmergencyFilter, handler emergency.EventHandler) (emergency.Subscription, error) {
	var pubsub *redis.PubSub
	if filter.SubjectID == "" {
		pubsub = b.redisClient.PSubscribe(ctx, Channel(kind, "*"))
	} else {
		pubsub = b.redisClient.Subscribe(ctx, Channel(kind, filter.SubjectID))
	}

	// ждем подтверждения подписки, чтобы события после возврата не терялись
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s events: %w", kind, err)
	}

	sub := &subscription{pubsub: pubsub}
	go b.consume(pubsub.Channel(), kind, filter, handler)
	return sub, nil
}

func (b *RedisBus) consume(ch <-chan *redis.Message, kind models.EventKind, filter models.EmergencyFilter, handler emergency.EventHandler) {
	log := b.logger.WithFields(logrus.Fields{
		"component":  "realtime",
		"event":      kind,
		"subject_id": filter.SubjectID,
	})
	for msg := range ch {
		rec, err := decodeEvent(msg.Payload, filter)
		if err != nil {
			log.WithError(err).Error("Failed to unmarshal emergency event")
			continue
		}
		if rec == nil {
			continue
		}
		handler(rec)
	}
	log.Debug("Event stream closed")
}

// decodeEvent разбирает сообщение шины. nil без ошибки - запись не подходит под фильтр.
func decodeEvent(payload string, filter models.EmergencyFilter) (*models.EmergencyRecord, error) {
	rec := &models.EmergencyRecord{}
	if err := json.Unmarshal([]byte(payload), rec); err != nil {
		return nil, err
	}
	if !filter.Matches(rec) {
		return nil, nil
	}
	return rec, nil
}

type subscription struct {
	once   sync.Once
	pubsub *redis.PubSub
	err    error
}

// Unsubscribe закрывает подписку; повторный вызов безопасен
func (s *subscription) Unsubscribe() error {
	s.once.Do(func() {
		s.err = s.pubsub.Close()
	})
	return s.err
}
