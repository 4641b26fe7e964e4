package emergency

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/antonD24/ELDI/internal/geo"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxPendingNotices = 8

// ButtonState - визуальное состояние кнопки вызова
type ButtonState string

const (
	ButtonProfileRequired ButtonState = "PROFILE_REQUIRED"
	ButtonReady           ButtonState = "READY"
	ButtonHolding         ButtonState = "HOLDING"
	ButtonProcessing      ButtonState = "PROCESSING"
	ButtonActive          ButtonState = "ACTIVE"
)

// ViewState - состояние экрана вызова
type ViewState struct {
	Button            ButtonState      `json:"button"`
	HoldProgress      float64          `json:"hold_progress"`
	RemainingSeconds  int              `json:"remaining_seconds,omitempty"`
	Active            bool             `json:"active"`
	Status            models.Status    `json:"status,omitempty"`
	LastOutcome       models.Status    `json:"last_outcome,omitempty"`
	EmergencyID       *uuid.UUID       `json:"emergency_id,omitempty"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	Distance          string           `json:"distance,omitempty"`
	UserLocation      *models.Location `json:"user_location,omitempty"`
	ResponderLocation *models.Location `json:"responder_location,omitempty"`
}

// ControllerDeps - зависимости контроллера
type ControllerDeps struct {
	Store     *Store
	Hold      *HoldGesture
	Guard     *Guard
	Submitter *Submitter
	Sync      *StatusSync
	Sessions  SessionManager
	Profiles  ProfileSource
	Location  LocationProvider
	Haptics   Haptics
	Navigator Navigator
	HoldCfg   HoldConfig
	Logger    *logrus.Logger
}

// Controller связывает жест удержания, защиту от дублей, отправку и синхронизацию статуса.
type Controller struct {
	ctx context.Context
	ControllerDeps

	mu         sync.Mutex
	processing bool
	notices    []Notice
	lastResult chan error
}

// NewController создает контроллер. ctx ограничивает время жизни подписок и отправок,
// которые переживают HTTP-запрос, их запустивший.
func NewController(ctx context.Context, deps ControllerDeps) *Controller {
	c := &Controller{
		ctx:            ctx,
		ControllerDeps: deps,
	}
	deps.Hold.OnComplete(c.completeHold)
	return c
}

// EstablishSession принимает токен устройства и подписывается на события субъекта
func (c *Controller) EstablishSession(token string) (string, error) {
	subjectID, err := c.Sessions.SignIn(token)
	if err != nil {
		return "", err
	}

	if current := c.Sync.Subject(); current != subjectID {
		c.Hold.Cancel()
		c.Sync.Stop()
		c.Store.Reset()
	}
	if err := c.Sync.Start(c.ctx, subjectID); err != nil {
		return subjectID, err
	}
	return subjectID, nil
}

// EndSession снимает подписки и сбрасывает локальное состояние
func (c *Controller) EndSession() {
	c.Hold.Cancel()
	c.Sync.Stop()
	c.Sessions.SignOut()
	c.Store.Reset()
}

// PressIn - начало нажатия на кнопку
func (c *Controller) PressIn(ctx context.Context) error {
	log := c.Logger.WithFields(logrus.Fields{
		"component": "controller",
		"method":    "PressIn",
	})

	subjectID, err := c.Sessions.CurrentSubject(ctx)
	if err != nil {
		c.notify(noticeAuthentication)
		return err
	}

	profile, err := c.Profiles.GetProfile(ctx, subjectID)
	if err != nil {
		log.WithError(err).Error("Failed to load profile")
		return &NetworkError{Op: "get profile", Err: err}
	}

	if missing := MissingFields(profile); len(missing) > 0 {
		c.impact(HapticLight)
		if c.Navigator != nil {
			c.Navigator.NavigateTo(ProfileRoute)
		}
		return &ValidationError{Fields: missing}
	}

	if c.isProcessing() || !c.Guard.CanSubmit(profile) {
		return ErrHoldInhibited
	}

	return c.Hold.Start()
}

// PressOut - отпускание кнопки до завершения удержания
func (c *Controller) PressOut() bool {
	return c.Hold.Cancel()
}

// completeHold вызывается жестом удержания ровно один раз за сессию
func (c *Controller) completeHold(sessionID string) {
	log := c.Logger.WithFields(logrus.Fields{
		"component":  "controller",
		"method":     "completeHold",
		"session_id": sessionID,
	})

	if c.Store.IsActive() {
		log.Info("Emergency already active, skipping submission")
		return
	}
	if c.Haptics != nil {
		if err := c.Haptics.Success(); err != nil {
			log.WithError(err).Debug("Haptic success failed")
		}
	}

	c.setProcessing(true)
	err := c.submit(c.ctx)
	c.setProcessing(false)

	if n, ok := noticeFor(err); ok {
		c.notify(n)
	}
	c.mu.Lock()
	if c.lastResult != nil {
		select {
		case c.lastResult <- err:
		default:
		}
	}
	c.mu.Unlock()
}

func (c *Controller) submit(ctx context.Context) error {
	subjectID, err := c.Sessions.CurrentSubject(ctx)
	if err != nil {
		return err
	}
	profile, err := c.Profiles.GetProfile(ctx, subjectID)
	if err != nil {
		return &NetworkError{Op: "get profile", Err: err}
	}

	loc, err := c.Location.Current()
	if err != nil {
		loc = nil
	}

	_, err = c.Submitter.Submit(ctx, profile, loc)
	return err
}

// Results возвращает канал результатов отправок по завершении удержания
func (c *Controller) Results() <-chan error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastResult == nil {
		c.lastResult = make(chan error, 1)
	}
	return c.lastResult
}

// State собирает состояние экрана
func (c *Controller) State(ctx context.Context) ViewState {
	snap := c.Store.Snapshot()
	holding, progress := c.Hold.State()

	hasProfile := false
	if subjectID, err := c.Sessions.CurrentSubject(ctx); err == nil {
		if profile, err := c.Profiles.GetProfile(ctx, subjectID); err == nil {
			hasProfile = len(MissingFields(profile)) == 0
		}
	}

	v := ViewState{
		HoldProgress:      progress,
		Active:            snap.Active,
		Status:            snap.Status,
		LastOutcome:       snap.LastOutcome,
		UserLocation:      snap.UserLocation,
		ResponderLocation: snap.ResponderLocation,
	}
	if snap.EmergencyID != uuid.Nil {
		id := snap.EmergencyID
		v.EmergencyID = &id
	}
	if snap.DistanceKm != nil {
		v.Distance = geo.FormatDistance(*snap.DistanceKm)
	}

	switch {
	case snap.Active:
		v.Button = ButtonActive
	case c.isProcessing() || snap.Submitting:
		v.Button = ButtonProcessing
	case !hasProfile:
		v.Button = ButtonProfileRequired
	case holding:
		v.Button = ButtonHolding
		v.RemainingSeconds = remainingSeconds(c.HoldCfg.Required, progress)
	default:
		v.Button = ButtonReady
	}

	v.Title, v.Message = StatusMessage(snap, hasProfile, c.HoldCfg.Required)
	return v
}

// TakeNotice возвращает следующее уведомление; каждое выдается один раз
func (c *Controller) TakeNotice() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.notices) == 0 {
		return Notice{}, false
	}
	n := c.notices[0]
	c.notices = c.notices[1:]
	return n, true
}

func (c *Controller) notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.notices) >= maxPendingNotices {
		c.notices = c.notices[1:]
	}
	c.notices = append(c.notices, n)
}

func (c *Controller) isProcessing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

func (c *Controller) setProcessing(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processing = v
}

func (c *Controller) impact(level HapticLevel) {
	if c.Haptics == nil {
		return
	}
	if err := c.Haptics.Impact(level); err != nil {
		c.Logger.WithError(err).Debug("Haptic pulse failed")
	}
}

func remainingSeconds(required time.Duration, progress float64) int {
	left := required.Seconds() - progress*required.Seconds()
	return int(math.Ceil(left))
}

// IsBenign сообщает, что ошибка отправки не должна показываться как сбой
func IsBenign(err error) bool {
	return errors.Is(err, ErrConflict)
}
