package emergency

import (
	"context"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/sirupsen/logrus"
)

// Reconciler заново выводит локальное состояние из данных бэкенда.
// Используется событием создания, событием обновления и повторной проверкой перед отправкой.
type Reconciler struct {
	data   DataService
	store  *Store
	logger *logrus.Logger
}

func NewReconciler(data DataService, store *Store, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		data:   data,
		store:  store,
		logger: logger,
	}
}

// Reconcile запрашивает активные вызовы субъекта. Если найден хотя бы один,
// состояние синхронизируется с ним и запись возвращается; иначе активный флаг снимается.
// Повторный вызов с теми же данными бэкенда дает тот же результат.
func (r *Reconciler) Reconcile(ctx context.Context, subjectID string) (*models.EmergencyRecord, error) {
	log := r.logger.WithFields(logrus.Fields{
		"component":  "reconciler",
		"method":     "Reconcile",
		"subject_id": subjectID,
	})

	filter := models.ActiveFilter(subjectID)
	records, err := r.data.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list active emergencies")
		return nil, err
	}

	var latest *models.EmergencyRecord
	for _, rec := range records {
		if rec == nil || !filter.Matches(rec) {
			continue
		}
		if latest == nil || rec.UpdatedAt.After(latest.UpdatedAt) {
			latest = rec
		}
	}

	if latest != nil {
		r.store.MarkActive(latest)
		log.WithFields(logrus.Fields{
			"emergency_id": latest.ID,
			"status":       latest.Status,
		}).Info("Active emergency found")
		return latest, nil
	}

	if !r.store.Clear() {
		log.Debug("Submission in flight, keeping active flag")
		return nil, nil
	}
	log.Debug("No active emergency")
	return nil, nil
}
