package location

import (
	"errors"
	"sync"
	"time"

	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/jonboulle/clockwork"
)

var (
	ErrPermissionDenied = errors.New("permission to access location was denied")
	ErrNoFix            = errors.New("no location fix yet")
	ErrStale            = errors.New("location fix is stale")
	ErrOutOfRange       = errors.New("coordinates out of range")
)

// Tracker хранит последнюю координату устройства.
// Реализует emergency.LocationProvider.
type Tracker struct {
	clock  clockwork.Clock
	maxAge time.Duration

	mu       sync.RWMutex
	fix      *models.Location
	fixedAt  time.Time
	denied   bool
	onChange func(*models.Location)
}

// NewTracker создает трекер. maxAge <= 0 отключает проверку устаревания.
func NewTracker(clock clockwork.Clock, maxAge time.Duration) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{
		clock:  clock,
		maxAge: maxAge,
	}
}

// OnChange задает обработчик новой координаты
func (t *Tracker) OnChange(fn func(*models.Location)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Update принимает новую координату и снимает признак запрета доступа
func (t *Tracker) Update(loc models.Location) error {
	if loc.Lat < -90 || loc.Lat > 90 || loc.Long < -180 || loc.Long > 180 {
		return ErrOutOfRange
	}

	t.mu.Lock()
	fix := loc
	t.fix = &fix
	t.fixedAt = t.clock.Now()
	t.denied = false
	onChange := t.onChange
	t.mu.Unlock()

	if onChange != nil {
		c := loc
		onChange(&c)
	}
	return nil
}

// Deny фиксирует запрет доступа к геолокации; последняя координата сбрасывается
func (t *Tracker) Deny() {
	t.mu.Lock()
	t.denied = true
	t.fix = nil
	onChange := t.onChange
	t.mu.Unlock()

	if onChange != nil {
		onChange(nil)
	}
}

// Current возвращает последнюю актуальную координату
func (t *Tracker) Current() (*models.Location, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch {
	case t.denied:
		return nil, errors.Join(emergency.ErrLocationUnavailable, ErrPermissionDenied)
	case t.fix == nil:
		return nil, errors.Join(emergency.ErrLocationUnavailable, ErrNoFix)
	case t.maxAge > 0 && t.clock.Since(t.fixedAt) > t.maxAge:
		return nil, errors.Join(emergency.ErrLocationUnavailable, ErrStale)
	}
	c := *t.fix
	return &c, nil
}

// Denied сообщает, запрещен ли доступ к геолокации
func (t *Tracker) Denied() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.denied
}
