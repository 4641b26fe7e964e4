package emergency

import (
	"sync"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/google/uuid"
)

// Phase - фаза оптимистичной отправки вызова
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseCommitted
	PhaseRolledBack
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseCommitted:
		return "committed"
	case PhaseRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

// DistanceFunc вычисляет расстояние между точками в км
type DistanceFunc func(from, to *models.Location) (float64, bool)

// Snapshot - копия общего состояния на момент чтения
type Snapshot struct {
	Active            bool
	Status            models.Status
	EmergencyID       uuid.UUID
	Submitting        bool
	Phase             Phase
	LastOutcome       models.Status
	UserLocation      *models.Location
	ResponderLocation *models.Location
	DistanceKm        *float64
}

// Store хранит флаг активного вызова, статус и координаты.
// Каждый обработчик принимает решение по текущему состоянию внутри метода Store,
// а не по ранее прочитанной копии.
type Store struct {
	mu    sync.RWMutex
	state Snapshot

	// записи, о завершении которых уже сообщила подписка
	finished map[uuid.UUID]struct{}
}

const maxFinished = 16

func NewStore() *Store {
	return &Store{}
}

// Snapshot возвращает копию состояния
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	snap.UserLocation = copyLocation(s.state.UserLocation)
	snap.ResponderLocation = copyLocation(s.state.ResponderLocation)
	if s.state.DistanceKm != nil {
		d := *s.state.DistanceKm
		snap.DistanceKm = &d
	}
	return snap
}

func (s *Store) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Active
}

// TryBeginSubmission атомарно занимает слот отправки.
// Возвращает false, если вызов уже активен или отправка уже идет.
func (s *Store) TryBeginSubmission() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Active || s.state.Submitting {
		return false
	}
	s.state.Submitting = true
	return true
}

// EndSubmission освобождает слот отправки
func (s *Store) EndSubmission() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Submitting = false
}

// ApplyOptimistic помечает вызов активным до ответа бэкенда: idle -> pending
func (s *Store) ApplyOptimistic() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Active = true
	s.state.Status = models.StatusCreated
	s.state.Phase = PhasePending
	s.state.LastOutcome = ""
}

// Commit подтверждает оптимистичное состояние: pending -> committed.
// Если созданная запись уже завершилась до ответа бэкенда, активный флаг снимается
// и возвращается false.
func (s *Store) Commit(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.finished[id]; done {
		delete(s.finished, id)
		s.clearLocked()
		return false
	}
	if s.state.Phase == PhasePending {
		s.state.Phase = PhaseCommitted
	}
	if s.state.EmergencyID == uuid.Nil {
		s.state.EmergencyID = id
	}
	return true
}

// Rollback откатывает оптимистичное состояние: pending -> rolledBack.
// Если состояние уже подтверждено подпиской, откат не выполняется.
func (s *Store) Rollback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != PhasePending {
		return false
	}
	s.state.Active = false
	s.state.Status = ""
	s.state.EmergencyID = uuid.Nil
	s.state.Phase = PhaseRolledBack
	return true
}

// MarkConflict фиксирует, что бэкенд отклонил создание как дубликат
func (s *Store) MarkConflict() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Active = true
	if s.state.Status == "" {
		s.state.Status = models.StatusCreated
	}
	if s.state.Phase == PhasePending {
		s.state.Phase = PhaseCommitted
	}
}

// MarkActive применяет активную запись, полученную от бэкенда.
// Данные бэкенда приоритетнее оптимистичных.
func (s *Store) MarkActive(rec *models.EmergencyRecord) {
	if rec == nil || !rec.Status.IsActive() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.finished[rec.ID]; done {
		return
	}
	s.state.Active = true
	s.state.Status = rec.Status
	s.state.EmergencyID = rec.ID
	s.state.LastOutcome = ""
	if s.state.Phase == PhasePending {
		s.state.Phase = PhaseCommitted
	}
}

// NoteOutcome запоминает конечный статус записи для отображения.
// Запись больше не может стать активной, в том числе через Commit идущей отправки.
func (s *Store) NoteOutcome(id uuid.UUID, status models.Status) {
	if !status.IsTerminal() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastOutcome = status
	if id == uuid.Nil {
		return
	}
	if s.finished == nil || len(s.finished) >= maxFinished {
		s.finished = make(map[uuid.UUID]struct{})
	}
	s.finished[id] = struct{}{}
}

// Clear сбрасывает активный вызов. Пока идет отправка, сброс не выполняется:
// созданная запись может еще не попасть в выборку.
func (s *Store) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Submitting {
		return false
	}
	s.clearLocked()
	return true
}

func (s *Store) clearLocked() {
	s.state.Active = false
	s.state.Status = ""
	s.state.EmergencyID = uuid.Nil
	s.state.Phase = PhaseIdle
	s.state.ResponderLocation = nil
	s.state.DistanceKm = nil
}

// Reset полностью сбрасывает состояние при смене субъекта
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	submitting := s.state.Submitting
	user := s.state.UserLocation
	s.state = Snapshot{Submitting: submitting, UserLocation: user}
	s.finished = nil
}

// SetUserLocation обновляет координаты пользователя и пересчитывает расстояние
func (s *Store) SetUserLocation(loc *models.Location, estimate DistanceFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.UserLocation = copyLocation(loc)
	s.recomputeLocked(estimate)
}

// SetResponderLocation обновляет координаты бригады и пересчитывает расстояние
func (s *Store) SetResponderLocation(loc *models.Location, estimate DistanceFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ResponderLocation = copyLocation(loc)
	s.recomputeLocked(estimate)
}

func (s *Store) recomputeLocked(estimate DistanceFunc) {
	if estimate == nil {
		return
	}
	d, ok := estimate(s.state.UserLocation, s.state.ResponderLocation)
	if !ok {
		s.state.DistanceKm = nil
		return
	}
	s.state.DistanceKm = &d
}

func copyLocation(loc *models.Location) *models.Location {
	if loc == nil {
		return nil
	}
	c := *loc
	return &c
}
