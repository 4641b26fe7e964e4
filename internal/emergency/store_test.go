package emergency

import (
	"testing"

	"github.com/antonD24/ELDI/internal/geo"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_OptimisticCommit(t *testing.T) {
	s := NewStore()
	require.True(t, s.TryBeginSubmission())
	s.ApplyOptimistic()

	snap := s.Snapshot()
	assert.True(t, snap.Active)
	assert.Equal(t, models.StatusCreated, snap.Status)
	assert.Equal(t, PhasePending, snap.Phase)

	id := uuid.New()
	s.Commit(id)
	s.EndSubmission()

	snap = s.Snapshot()
	assert.Equal(t, PhaseCommitted, snap.Phase)
	assert.Equal(t, id, snap.EmergencyID)
	assert.False(t, snap.Submitting)
}

func TestStore_RollbackRestoresIdleView(t *testing.T) {
	s := NewStore()
	before := s.Snapshot()

	require.True(t, s.TryBeginSubmission())
	s.ApplyOptimistic()
	assert.True(t, s.Rollback())
	s.EndSubmission()

	after := s.Snapshot()
	assert.Equal(t, before.Active, after.Active)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, PhaseRolledBack, after.Phase)
}

func TestStore_RollbackAfterSubscriptionConfirm(t *testing.T) {
	s := NewStore()
	require.True(t, s.TryBeginSubmission())
	s.ApplyOptimistic()

	s.MarkActive(&models.EmergencyRecord{ID: uuid.New(), Status: models.StatusOpen})

	assert.False(t, s.Rollback())
	snap := s.Snapshot()
	assert.True(t, snap.Active)
	assert.Equal(t, models.StatusOpen, snap.Status)
	assert.Equal(t, PhaseCommitted, snap.Phase)
}

func TestStore_TryBeginSubmission(t *testing.T) {
	s := NewStore()
	require.True(t, s.TryBeginSubmission())
	assert.False(t, s.TryBeginSubmission())
	s.EndSubmission()

	s.MarkActive(&models.EmergencyRecord{ID: uuid.New(), Status: models.StatusAssigned})
	assert.False(t, s.TryBeginSubmission())
}

func TestStore_ClearSkippedWhileSubmitting(t *testing.T) {
	s := NewStore()
	require.True(t, s.TryBeginSubmission())
	s.ApplyOptimistic()

	assert.False(t, s.Clear())
	assert.True(t, s.IsActive())

	s.EndSubmission()
	assert.True(t, s.Clear())
	assert.False(t, s.IsActive())
	assert.Equal(t, PhaseIdle, s.Snapshot().Phase)
}

func TestStore_MarkActiveIgnoresTerminal(t *testing.T) {
	s := NewStore()
	s.MarkActive(&models.EmergencyRecord{ID: uuid.New(), Status: models.StatusResolved})
	assert.False(t, s.IsActive())
}

func TestStore_Distance(t *testing.T) {
	s := NewStore()
	s.SetResponderLocation(&models.Location{Lat: -33.8650, Long: 151.2100}, geo.Distance)
	assert.Nil(t, s.Snapshot().DistanceKm)

	s.SetUserLocation(&models.Location{Lat: -33.8688, Long: 151.2093}, geo.Distance)
	snap := s.Snapshot()
	require.NotNil(t, snap.DistanceKm)
	assert.InDelta(t, 0.43, *snap.DistanceKm, 0.02)

	s.SetResponderLocation(nil, geo.Distance)
	assert.Nil(t, s.Snapshot().DistanceKm)
}

func TestStore_CommitAfterFinishedRecord(t *testing.T) {
	s := NewStore()
	id := uuid.New()
	require.True(t, s.TryBeginSubmission())
	s.ApplyOptimistic()

	// подписка сообщила о завершении раньше ответа на создание
	s.NoteOutcome(id, models.StatusResolved)
	assert.False(t, s.Clear())

	assert.False(t, s.Commit(id))
	s.EndSubmission()

	snap := s.Snapshot()
	assert.False(t, snap.Active)
	assert.Empty(t, snap.Status)
	assert.Equal(t, uuid.Nil, snap.EmergencyID)
	assert.Equal(t, models.StatusResolved, snap.LastOutcome)
	assert.Equal(t, PhaseIdle, snap.Phase)

	s.MarkActive(&models.EmergencyRecord{ID: id, Status: models.StatusOpen})
	assert.False(t, s.IsActive())
}

func TestStore_CommitOtherRecordStaysActive(t *testing.T) {
	s := NewStore()
	require.True(t, s.TryBeginSubmission())
	s.ApplyOptimistic()
	s.NoteOutcome(uuid.New(), models.StatusRedirected)

	id := uuid.New()
	assert.True(t, s.Commit(id))
	assert.True(t, s.IsActive())
	assert.Equal(t, id, s.Snapshot().EmergencyID)
}
