package emergency

import (
	"context"
	"errors"
	"fmt"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// EmergencyContent - текст экстренного вызова
const EmergencyContent = "Emergency alert! I need immediate assistance!"

// Submitter проверяет профиль и создает запись вызова с оптимистичным обновлением состояния
type Submitter struct {
	data   DataService
	auth   AuthProvider
	store  *Store
	guard  *Guard
	clock  clockwork.Clock
	logger *logrus.Logger
}

func NewSubmitter(data DataService, auth AuthProvider, store *Store, guard *Guard, clock clockwork.Clock, logger *logrus.Logger) *Submitter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Submitter{
		data:   data,
		auth:   auth,
		store:  store,
		guard:  guard,
		clock:  clock,
		logger: logger,
	}
}

// Submit создает экстренный вызов.
// Ошибки: *ValidationError, ErrLocationUnavailable, ErrAuthentication, *ConflictError, *NetworkError.
func (s *Submitter) Submit(ctx context.Context, profile *models.ProfileSnapshot, location *models.Location) (*models.EmergencyRecord, error) {
	log := s.logger.WithFields(logrus.Fields{
		"component": "submitter",
		"method":    "Submit",
	})

	snapshot, err := ValidateProfile(profile)
	if err != nil {
		log.WithError(err).Warn("Profile validation failed")
		return nil, err
	}

	if location == nil {
		log.Warn("Location not available")
		return nil, ErrLocationUnavailable
	}

	subjectID, err := s.auth.CurrentSubject(ctx)
	if err != nil {
		log.WithError(err).Warn("User not authenticated")
		if errors.Is(err, ErrAuthentication) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if subjectID == "" {
		log.Warn("User not authenticated")
		return nil, ErrAuthentication
	}
	if snapshot.SubjectID != subjectID {
		log.WithField("subject_id", subjectID).Warn("Profile belongs to another subject")
		return nil, &ValidationError{Fields: []string{"idNumber"}, Reason: "does not match the authenticated subject"}
	}
	log = log.WithField("subject_id", subjectID)

	if !s.store.TryBeginSubmission() {
		snap := s.store.Snapshot()
		log.Info("Emergency already active or submission in flight")
		return nil, &ConflictError{ID: snap.EmergencyID, Status: snap.Status}
	}
	defer s.store.EndSubmission()

	if err := s.guard.Revalidate(ctx, subjectID); err != nil {
		return nil, err
	}

	// до сетевого вызова, чтобы повторное нажатие увидело активный флаг
	s.store.ApplyOptimistic()

	now := s.clock.Now().UTC()
	rec := &models.EmergencyRecord{
		SubjectID: subjectID,
		Status:    models.StatusCreated,
		Content:   EmergencyContent,
		Location:  *location,
		Profile:   *snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.data.Create(ctx, rec)
	if err != nil {
		if isDuplicate(err) {
			log.WithError(err).Warn("Backend rejected emergency as duplicate")
			s.store.MarkConflict()
			if rerr := s.guard.Revalidate(ctx, subjectID); rerr != nil && !errors.Is(rerr, ErrConflict) {
				log.WithError(rerr).Error("Failed to revalidate after conflict")
			}
			snap := s.store.Snapshot()
			return nil, &ConflictError{ID: snap.EmergencyID, Status: snap.Status}
		}

		if !s.store.Rollback() {
			// подписка уже подтвердила запись
			snap := s.store.Snapshot()
			log.WithError(err).Warn("Create failed but emergency was confirmed by subscription")
			return nil, &ConflictError{ID: snap.EmergencyID, Status: snap.Status}
		}
		log.WithError(err).Error("Failed to create emergency, optimistic state rolled back")
		return nil, &NetworkError{Op: "create", Err: err}
	}

	if !s.store.Commit(created.ID) {
		log.WithField("emergency_id", created.ID).Info("Emergency finished before create response arrived")
		return created, nil
	}
	log.WithField("emergency_id", created.ID).Info("Emergency created successfully")
	return created, nil
}
