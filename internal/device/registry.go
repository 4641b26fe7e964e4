package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/antonD24/ELDI/internal/auth"
	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/location"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/antonD24/ELDI/internal/notify"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

var ErrNoSession = errors.New("device session not established")

// Device - состояние экрана вызова одного устройства
type Device struct {
	SubjectID  string
	Controller *emergency.Controller
	Tracker    *location.Tracker
	Session    *auth.Session

	cancel context.CancelFunc
}

// UpdateLocation принимает координату устройства
func (d *Device) UpdateLocation(loc models.Location) error {
	return d.Tracker.Update(loc)
}

// DenyLocation фиксирует запрет доступа к геолокации
func (d *Device) DenyLocation() {
	d.Tracker.Deny()
}

// Deps - общие зависимости всех устройств
type Deps struct {
	Data           emergency.DataService
	Profiles       emergency.ProfileSource
	Verifier       *auth.TokenVerifier
	MQTT           notify.Publisher
	Clock          clockwork.Clock
	HoldCfg        emergency.HoldConfig
	LocationMaxAge time.Duration
	Logger         *logrus.Logger
}

// Registry держит по одному Device на субъекта
type Registry struct {
	ctx  context.Context
	deps Deps

	mu      sync.Mutex
	devices map[string]*Device
}

// NewRegistry создает реестр. ctx ограничивает время жизни всех устройств.
func NewRegistry(ctx context.Context, deps Deps) *Registry {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &Registry{
		ctx:     ctx,
		deps:    deps,
		devices: make(map[string]*Device),
	}
}

// Open проверяет токен и возвращает устройство субъекта, создавая его при необходимости
func (r *Registry) Open(token string) (*Device, error) {
	subjectID, err := r.deps.Verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", emergency.ErrAuthentication, err)
	}

	r.mu.Lock()
	d, ok := r.devices[subjectID]
	if !ok {
		d = r.build(subjectID)
		r.devices[subjectID] = d
	}
	r.mu.Unlock()

	if _, err := d.Controller.EstablishSession(token); err != nil {
		return d, err
	}
	return d, nil
}

// Get возвращает устройство субъекта с установленной сессией
func (r *Registry) Get(subjectID string) (*Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[subjectID]
	if !ok {
		return nil, ErrNoSession
	}
	return d, nil
}

// Close завершает сессию устройства
func (r *Registry) Close(subjectID string) bool {
	r.mu.Lock()
	d, ok := r.devices[subjectID]
	delete(r.devices, subjectID)
	r.mu.Unlock()

	if !ok {
		return false
	}
	d.Controller.EndSession()
	d.cancel()
	r.deps.Logger.WithField("subject_id", subjectID).Info("Device session closed")
	return true
}

// CloseAll завершает все сессии
func (r *Registry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.devices))
	for id := range r.devices {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Close(id)
	}
}

func (r *Registry) build(subjectID string) *Device {
	ctx, cancel := context.WithCancel(r.ctx)
	logger := r.deps.Logger

	channel := notify.NewDeviceChannel(r.deps.MQTT, subjectID, logger)
	session := auth.NewSession(r.deps.Verifier)
	tracker := location.NewTracker(r.deps.Clock, r.deps.LocationMaxAge)

	store := emergency.NewStore()
	hold := emergency.NewHoldGesture(r.deps.Clock, r.deps.HoldCfg, channel, logger)
	reconciler := emergency.NewReconciler(r.deps.Data, store, logger)
	guard := emergency.NewGuard(store, reconciler, logger)
	submitter := emergency.NewSubmitter(r.deps.Data, session, store, guard, r.deps.Clock, logger)
	statusSync := emergency.NewStatusSync(r.deps.Data, store, reconciler, hold, logger)
	tracker.OnChange(statusSync.OnUserLocation)

	controller := emergency.NewController(ctx, emergency.ControllerDeps{
		Store:     store,
		Hold:      hold,
		Guard:     guard,
		Submitter: submitter,
		Sync:      statusSync,
		Sessions:  session,
		Profiles:  r.deps.Profiles,
		Location:  tracker,
		Haptics:   channel,
		Navigator: channel,
		HoldCfg:   r.deps.HoldCfg,
		Logger:    logger,
	})

	logger.WithField("subject_id", subjectID).Info("Device session created")
	return &Device{
		SubjectID:  subjectID,
		Controller: controller,
		Tracker:    tracker,
		Session:    session,
		cancel:     cancel,
	}
}
