package emergency

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/antonD24/ELDI/internal/geo"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/sirupsen/logrus"
)

// HoldCanceler отменяет текущее удержание
type HoldCanceler interface {
	Cancel() bool
}

// StatusSync подписывается на события создания и обновления вызовов субъекта
// и сводит их в общее состояние Store.
type StatusSync struct {
	data       DataService
	store      *Store
	reconciler *Reconciler
	hold       HoldCanceler
	logger     *logrus.Logger

	mu      sync.Mutex
	subject string
	subs    []Subscription
	cancel  context.CancelFunc

	// меняется при каждой смене подписки; события старого поколения игнорируются
	generation atomic.Uint64
}

func NewStatusSync(data DataService, store *Store, reconciler *Reconciler, hold HoldCanceler, logger *logrus.Logger) *StatusSync {
	return &StatusSync{
		data:       data,
		store:      store,
		reconciler: reconciler,
		hold:       hold,
		logger:     logger,
	}
}

// Start подписывается на события субъекта. Подписки прежнего субъекта снимаются.
// После подписки выполняется начальная сверка с бэкендом.
func (s *StatusSync) Start(ctx context.Context, subjectID string) error {
	log := s.logger.WithFields(logrus.Fields{
		"component":  "status_sync",
		"method":     "Start",
		"subject_id": subjectID,
	})

	s.mu.Lock()
	if s.subject == subjectID && len(s.subs) > 0 {
		s.mu.Unlock()
		return nil
	}
	s.stopLocked()

	gen := s.generation.Add(1)
	sctx, cancel := context.WithCancel(ctx)
	filter := models.EmergencyFilter{SubjectID: subjectID}

	createSub, err := s.data.SubscribeOnCreate(sctx, filter, func(rec *models.EmergencyRecord) {
		s.handleCreated(gen, rec)
	})
	if err != nil {
		cancel()
		s.mu.Unlock()
		log.WithError(err).Error("Failed to subscribe to created emergencies")
		return &NetworkError{Op: "subscribe on create", Err: err}
	}

	updateSub, err := s.data.SubscribeOnUpdate(sctx, filter, func(rec *models.EmergencyRecord) {
		s.handleUpdated(sctx, gen, subjectID, rec)
	})
	if err != nil {
		cancel()
		if uerr := createSub.Unsubscribe(); uerr != nil {
			log.WithError(uerr).Warn("Failed to unsubscribe from created emergencies")
		}
		s.mu.Unlock()
		log.WithError(err).Error("Failed to subscribe to updated emergencies")
		return &NetworkError{Op: "subscribe on update", Err: err}
	}

	s.subject = subjectID
	s.subs = []Subscription{createSub, updateSub}
	s.cancel = cancel
	s.mu.Unlock()

	log.Info("Subscribed to emergency events")

	if _, err := s.reconciler.Reconcile(sctx, subjectID); err != nil {
		log.WithError(err).Warn("Initial reconciliation failed")
	}
	return nil
}

// Stop снимает подписки
func (s *StatusSync) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Subject возвращает субъекта текущей подписки
func (s *StatusSync) Subject() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subject
}

// OnUserLocation обновляет координаты пользователя и расстояние до бригады
func (s *StatusSync) OnUserLocation(loc *models.Location) {
	s.store.SetUserLocation(loc, geo.Distance)
}

func (s *StatusSync) stopLocked() {
	s.generation.Add(1)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			s.logger.WithError(err).WithField("subject_id", s.subject).Warn("Failed to unsubscribe")
		}
	}
	if len(s.subs) > 0 {
		s.logger.WithField("subject_id", s.subject).Info("Unsubscribed from emergency events")
	}
	s.subs = nil
	s.subject = ""
}

func (s *StatusSync) stale(gen uint64) bool {
	return s.generation.Load() != gen
}

func (s *StatusSync) handleCreated(gen uint64, rec *models.EmergencyRecord) {
	if rec == nil || s.stale(gen) {
		return
	}
	log := s.logger.WithFields(logrus.Fields{
		"component":    "status_sync",
		"event":        "created",
		"emergency_id": rec.ID,
		"status":       rec.Status,
	})
	log.Info("New emergency created")

	if !rec.Status.IsActive() {
		return
	}
	s.store.MarkActive(rec)
	if s.hold != nil && s.hold.Cancel() {
		log.Info("Pending hold cancelled by concurrently created emergency")
	}
}

func (s *StatusSync) handleUpdated(ctx context.Context, gen uint64, subjectID string, rec *models.EmergencyRecord) {
	if rec == nil || s.stale(gen) {
		return
	}
	log := s.logger.WithFields(logrus.Fields{
		"component":    "status_sync",
		"event":        "updated",
		"emergency_id": rec.ID,
		"status":       rec.Status,
	})
	log.Debug("Emergency updated")

	if rec.ResponderLocation != nil {
		s.store.SetResponderLocation(rec.ResponderLocation, geo.Distance)
	}

	if rec.Status.IsActive() {
		s.store.MarkActive(rec)
		return
	}

	s.store.NoteOutcome(rec.ID, rec.Status)
	if _, err := s.reconciler.Reconcile(ctx, subjectID); err != nil {
		log.WithError(err).Error("Failed to reconcile after emergency left active set")
	}
}
