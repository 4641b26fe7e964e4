package emergency

import (
	"context"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// EventHandler получает записи из потоков создания и обновления
type EventHandler func(rec *models.EmergencyRecord)

// Subscription - дескриптор подписки на поток событий
type Subscription interface {
	Unsubscribe() error
}

// DataService определяет контракт управляемого бэкенда данных
type DataService interface {
	List(ctx context.Context, filter models.EmergencyFilter) ([]*models.EmergencyRecord, error)
	Create(ctx context.Context, rec *models.EmergencyRecord) (*models.EmergencyRecord, error)
	Update(ctx context.Context, id uuid.UUID, patch models.EmergencyPatch) (*models.EmergencyRecord, error)
	SubscribeOnCreate(ctx context.Context, filter models.EmergencyFilter, onEvent EventHandler) (Subscription, error)
	SubscribeOnUpdate(ctx context.Context, filter models.EmergencyFilter, onEvent EventHandler) (Subscription, error)
}

// AuthProvider возвращает идентификатор аутентифицированного субъекта
type AuthProvider interface {
	CurrentSubject(ctx context.Context) (string, error)
}

// SessionManager - провайдер аутентификации с управлением сессией устройства
type SessionManager interface {
	AuthProvider
	SignIn(token string) (string, error)
	SignOut()
}

// ProfileSource отдает снимок профиля субъекта. Отсутствующий профиль - (nil, nil).
type ProfileSource interface {
	GetProfile(ctx context.Context, subjectID string) (*models.ProfileSnapshot, error)
}

// LocationProvider отдает текущие координаты устройства
type LocationProvider interface {
	Current() (*models.Location, error)
}

// Haptics - тактильная обратная связь. Вызовы не должны блокировать, ошибки не фатальны.
type Haptics interface {
	Impact(level HapticLevel) error
	Success() error
}

// Navigator переключает экран устройства
type Navigator interface {
	NavigateTo(route string)
}
