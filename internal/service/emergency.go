package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/antonD24/ELDI/internal/webhook"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

type emergencyService struct {
	repo        EmergencyRepository
	bus         EventBus
	webhook     webhook.WebhookPublisher
	broadcaster Broadcaster
	numbers     *snowflake.Node
	clock       clockwork.Clock
	logger      *logrus.Logger
}

// NewEmergencyService создает сервис вызовов. broadcaster может быть nil, если MQTT отключен.
func NewEmergencyService(
	repo EmergencyRepository,
	bus EventBus,
	webhookPublisher webhook.WebhookPublisher,
	broadcaster Broadcaster,
	numbers *snowflake.Node,
	clock clockwork.Clock,
	logger *logrus.Logger,
) EmergencyService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &emergencyService{
		repo:        repo,
		bus:         bus,
		webhook:     webhookPublisher,
		broadcaster: broadcaster,
		numbers:     numbers,
		clock:       clock,
		logger:      logger,
	}
}

// List возвращает вызовы по фильтру
func (s *emergencyService) List(ctx context.Context, filter models.EmergencyFilter) ([]*models.EmergencyRecord, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":    "emergency",
			"method":     "List",
			"subject_id": filter.SubjectID,
		}).WithError(err).Error("Failed to list emergencies from repository")
		return nil, fmt.Errorf("service: could not list emergencies: %w", err)
	}
	return records, nil
}

// Create создает вызов и рассылает событие создания
func (s *emergencyService) Create(ctx context.Context, rec *models.EmergencyRecord) (*models.EmergencyRecord, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "emergency",
		"method":     "Create",
		"subject_id": rec.SubjectID,
	})
	log.Info("Attempting to create a new emergency")

	if rec.Status == "" {
		rec.Status = models.StatusCreated
	}
	if !rec.Status.IsActive() {
		return nil, fmt.Errorf("service: %w: %s", ErrInvalidStatus, rec.Status)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.IncidentNumber == "" && s.numbers != nil {
		rec.IncidentNumber = "SOS-" + s.numbers.Generate().String()
	}
	now := s.clock.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = rec.CreatedAt

	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicate) {
			log.WithError(err).Warn("Active emergency already exists for subject")
		} else {
			log.WithError(err).Error("Failed to create emergency in repository")
		}
		return nil, fmt.Errorf("service: could not create emergency: %w", err)
	}

	log = log.WithFields(logrus.Fields{
		"emergency_id":    rec.ID,
		"incident_number": rec.IncidentNumber,
	})
	log.Info("Emergency created successfully")
	s.dispatch(ctx, log, models.EventCreated, rec)
	return rec, nil
}

// Update применяет частичное обновление и рассылает событие обновления
func (s *emergencyService) Update(ctx context.Context, id uuid.UUID, patch models.EmergencyPatch) (*models.EmergencyRecord, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "emergency",
		"method":       "Update",
		"emergency_id": id,
	})
	log.Info("Attempting to update emergency")

	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, fmt.Errorf("service: %w: %s", ErrInvalidStatus, *patch.Status)
	}

	// запрет изменения завершенной записи проверяется репозиторием в том же запросе
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrFinalized) {
			log.WithError(err).Warn("Emergency cannot be updated")
		} else {
			log.WithError(err).Error("Failed to update emergency in repository")
		}
		return nil, fmt.Errorf("service: could not update emergency: %w", err)
	}

	log.WithField("status", updated.Status).Info("Emergency updated successfully")
	s.dispatch(ctx, log, models.EventUpdated, updated)
	return updated, nil
}

// Get возвращает вызов по ID
func (s *emergencyService) Get(ctx context.Context, id uuid.UUID) (*models.EmergencyRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":      "emergency",
			"method":       "Get",
			"emergency_id": id,
		}).WithError(err).Error("Failed to get emergency in repository")
		return nil, fmt.Errorf("service: could not get emergency: %w", err)
	}
	return rec, nil
}

// ListRecent возвращает вызовы для диспетчеров с пагинацией
func (s *emergencyService) ListRecent(ctx context.Context, statuses []models.Status, page, pageSize int) ([]*models.EmergencyRecord, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "emergency",
		"method":    "ListRecent",
		"page":      page,
		"page_size": pageSize,
	})

	for _, st := range statuses {
		if !st.IsValid() {
			return nil, fmt.Errorf("service: %w: %s", ErrInvalidStatus, st)
		}
	}

	records, err := s.repo.ListRecent(ctx, statuses, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list emergencies from repository")
		return nil, fmt.Errorf("service: could not list emergencies: %w", err)
	}

	log.WithField("count", len(records)).Info("Emergencies listed successfully")
	return records, nil
}

// SubscribeOnCreate подписывает обработчик на созданные вызовы
func (s *emergencyService) SubscribeOnCreate(ctx context.Context, filter models.EmergencyFilter, onEvent emergency.EventHandler) (emergency.Subscription, error) {
	return s.subscribe(ctx, models.EventCreated, filter, onEvent)
}

// SubscribeOnUpdate подписывает обработчик на обновленные вызовы
func (s *emergencyService) SubscribeOnUpdate(ctx context.Context, filter models.EmergencyFilter, onEvent emergency.EventHandler) (emergency.Subscription, error) {
	return s.subscribe(ctx, models.EventUpdated, filter, onEvent)
}

func (s *emergencyService) subscribe(ctx context.Context, kind models.EventKind, filter models.EmergencyFilter, onEvent emergency.EventHandler) (emergency.Subscription, error) {
	sub, err := s.bus.Subscribe(ctx, kind, filter, onEvent)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":    "emergency",
			"method":     "Subscribe",
			"event":      kind,
			"subject_id": filter.SubjectID,
		}).WithError(err).Error("Failed to subscribe to emergency events")
		return nil, fmt.Errorf("service: could not subscribe to %s events: %w", kind, err)
	}
	return sub, nil
}

// dispatch рассылает событие подписчикам, вебхуку и диспетчерам.
// Ошибки доставки не отменяют уже сохраненную запись.
func (s *emergencyService) dispatch(ctx context.Context, log *logrus.Entry, kind models.EventKind, rec *models.EmergencyRecord) {
	if err := s.bus.Publish(ctx, kind, rec); err != nil {
		log.WithError(err).Error("Failed to publish emergency event")
	}

	if s.webhook != nil {
		if err := s.webhook.Publish(ctx, webhook.NewEmergencyEvent(string(kind), rec)); err != nil {
			log.WithError(err).Error("Failed to publish webhook event")
		}
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.Broadcast(ctx, kind, rec); err != nil {
			log.WithError(err).Warn("Failed to broadcast emergency event")
		}
	}
}
