package emergency

import (
	"context"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/sirupsen/logrus"
)

// Guard не допускает повторного создания вызова:
// быстрая локальная проверка, затем проверка на бэкенде непосредственно перед записью.
type Guard struct {
	store      *Store
	reconciler *Reconciler
	logger     *logrus.Logger
}

func NewGuard(store *Store, reconciler *Reconciler, logger *logrus.Logger) *Guard {
	return &Guard{
		store:      store,
		reconciler: reconciler,
		logger:     logger,
	}
}

// CanSubmit - локальная проверка: нет активного вызова, нет отправки, профиль заполнен
func (g *Guard) CanSubmit(profile *models.ProfileSnapshot) bool {
	snap := g.store.Snapshot()
	if snap.Active || snap.Submitting {
		return false
	}
	return len(MissingFields(profile)) == 0
}

// Revalidate проверяет бэкенд на наличие активного вызова субъекта.
// Найденная запись синхронизируется в Store и возвращается как *ConflictError.
func (g *Guard) Revalidate(ctx context.Context, subjectID string) error {
	rec, err := g.reconciler.Reconcile(ctx, subjectID)
	if err != nil {
		return &NetworkError{Op: "revalidate", Err: err}
	}
	if rec != nil {
		g.logger.WithFields(logrus.Fields{
			"component":    "guard",
			"subject_id":   subjectID,
			"emergency_id": rec.ID,
		}).Warn("Active emergency already exists, preventing duplicate")
		return &ConflictError{ID: rec.ID, Status: rec.Status}
	}
	return nil
}
