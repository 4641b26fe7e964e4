package service

import (
	"context"
	"errors"

	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

var (
	ErrNotFound      = errors.New("emergency not found")
	ErrDuplicate     = errors.New("duplicate active emergency")
	ErrInvalidStatus = errors.New("invalid emergency status")
	ErrFinalized     = errors.New("emergency already finalized")

	ErrProfileNotFound = errors.New("profile not found")
)

// EmergencyRepository определяет контракт для работы с бд вызовов
type EmergencyRepository interface {
	Create(ctx context.Context, rec *models.EmergencyRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EmergencyRecord, error)
	List(ctx context.Context, filter models.EmergencyFilter) ([]*models.EmergencyRecord, error)
	ListRecent(ctx context.Context, statuses []models.Status, page, pageSize int) ([]*models.EmergencyRecord, error)
	Update(ctx context.Context, id uuid.UUID, patch models.EmergencyPatch) (*models.EmergencyRecord, error)
}

// ProfileRepository определяет контракт для хранения профилей
type ProfileRepository interface {
	Get(ctx context.Context, subjectID string) (*models.ProfileSnapshot, error)
	Upsert(ctx context.Context, profile *models.ProfileSnapshot) error
	GetFromCache(ctx context.Context, subjectID string) (*models.ProfileSnapshot, error)
	SetCache(ctx context.Context, profile *models.ProfileSnapshot) error
	InvalidateCache(ctx context.Context, subjectID string) error
	Delete(ctx context.Context, subjectID string) (bool, error)
}

// EventBus доставляет события создания и обновления подписчикам
type EventBus interface {
	Publish(ctx context.Context, kind models.EventKind, rec *models.EmergencyRecord) error
	Subscribe(ctx context.Context, kind models.EventKind, filter models.EmergencyFilter, handler emergency.EventHandler) (emergency.Subscription, error)
}

// Broadcaster рассылает события вызовов диспетчерам
type Broadcaster interface {
	Broadcast(ctx context.Context, kind models.EventKind, rec *models.EmergencyRecord) error
}

// EmergencyService - операции диспетчерской стороны поверх DataService устройства
type EmergencyService interface {
	emergency.DataService
	Get(ctx context.Context, id uuid.UUID) (*models.EmergencyRecord, error)
	ListRecent(ctx context.Context, statuses []models.Status, page, pageSize int) ([]*models.EmergencyRecord, error)
}

// ProfileService - чтение и сохранение профилей
type ProfileService interface {
	emergency.ProfileSource
	SaveProfile(ctx context.Context, profile *models.ProfileSnapshot) (*models.ProfileSnapshot, error)
	DeleteProfile(ctx context.Context, subjectID string) error
}
