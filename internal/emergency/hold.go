package emergency

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"
)

// HapticLevel - интенсивность тактильного импульса
type HapticLevel int

const (
	HapticLight HapticLevel = iota
	HapticMedium
	HapticHeavy
)

func (l HapticLevel) String() string {
	switch l {
	case HapticLight:
		return "light"
	case HapticMedium:
		return "medium"
	default:
		return "heavy"
	}
}

// HoldConfig - параметры жеста удержания
type HoldConfig struct {
	Required     time.Duration
	TickInterval time.Duration
	Debounce     time.Duration
}

// DefaultHoldConfig - 3 с удержания, тик 50 мс, антидребезг 500 мс
func DefaultHoldConfig() HoldConfig {
	return HoldConfig{
		Required:     3000 * time.Millisecond,
		TickInterval: 50 * time.Millisecond,
		Debounce:     500 * time.Millisecond,
	}
}

type milestone struct {
	threshold float64
	level     HapticLevel
}

// по убыванию: за один тик срабатывает только старший новый порог
var holdMilestones = []milestone{
	{threshold: 0.75, level: HapticHeavy},
	{threshold: 0.5, level: HapticMedium},
	{threshold: 0.25, level: HapticLight},
}

// HoldSession - состояние одного удержания
type HoldSession struct {
	ID              ksuid.KSUID
	StartedAt       time.Time
	Progress        float64
	FiredMilestones []float64

	highest float64
	ticker  clockwork.Ticker
	done    chan struct{}
}

// HoldGesture отслеживает удержание кнопки.
// Тикер и сессия принадлежат одной задаче; единственная точка остановки - teardownLocked.
type HoldGesture struct {
	clock   clockwork.Clock
	cfg     HoldConfig
	haptics Haptics
	logger  *logrus.Logger

	mu         sync.Mutex
	session    *HoldSession
	lastStart  time.Time
	onComplete func(sessionID string)
}

func NewHoldGesture(clock clockwork.Clock, cfg HoldConfig, haptics Haptics, logger *logrus.Logger) *HoldGesture {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HoldGesture{
		clock:   clock,
		cfg:     cfg,
		haptics: haptics,
		logger:  logger,
	}
}

// OnComplete задает обработчик завершения удержания
func (g *HoldGesture) OnComplete(fn func(sessionID string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onComplete = fn
}

// Start начинает сессию удержания
func (g *HoldGesture) Start() error {
	g.mu.Lock()
	now := g.clock.Now()
	if !g.lastStart.IsZero() && now.Sub(g.lastStart) < g.cfg.Debounce {
		g.mu.Unlock()
		return ErrHoldDebounced
	}
	g.lastStart = now

	if g.session != nil {
		g.mu.Unlock()
		return ErrHoldInProgress
	}

	s := &HoldSession{
		ID:        ksuid.New(),
		StartedAt: now,
		ticker:    g.clock.NewTicker(g.cfg.TickInterval),
		done:      make(chan struct{}),
	}
	g.session = s
	// импульсы подаются под блокировкой, чтобы порядок совпадал с порядком порогов
	g.pulse(HapticMedium)
	g.mu.Unlock()

	g.logger.WithFields(logrus.Fields{
		"component":  "hold",
		"session_id": s.ID.String(),
	}).Debug("Hold started")

	go g.run(s)
	return nil
}

func (g *HoldGesture) run(s *HoldSession) {
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.Chan():
			g.Tick()
		}
	}
}

// Tick пересчитывает прогресс, подает импульсы на порогах и завершает удержание
func (g *HoldGesture) Tick() {
	g.mu.Lock()
	s := g.session
	if s == nil {
		g.mu.Unlock()
		return
	}

	elapsed := g.clock.Since(s.StartedAt)
	progress := float64(elapsed) / float64(g.cfg.Required)
	if progress > 1 {
		progress = 1
	}
	s.Progress = progress

	for _, m := range holdMilestones {
		if progress >= m.threshold && m.threshold > s.highest {
			s.highest = m.threshold
			s.FiredMilestones = append(s.FiredMilestones, m.threshold)
			g.pulse(m.level)
			break
		}
	}

	completed := progress >= 1
	if completed {
		g.teardownLocked()
	}
	onComplete := g.onComplete
	g.mu.Unlock()

	if completed {
		g.logger.WithFields(logrus.Fields{
			"component":  "hold",
			"session_id": s.ID.String(),
		}).Info("Hold completed")
		if onComplete != nil {
			onComplete(s.ID.String())
		}
	}
}

// Cancel отменяет текущую сессию без вызова обработчика завершения
func (g *HoldGesture) Cancel() bool {
	g.mu.Lock()
	s := g.session
	if s == nil {
		g.mu.Unlock()
		return false
	}
	g.teardownLocked()
	g.mu.Unlock()

	g.logger.WithFields(logrus.Fields{
		"component":  "hold",
		"session_id": s.ID.String(),
		"progress":   s.Progress,
	}).Debug("Hold cancelled")
	return true
}

// State возвращает признак активной сессии и ее прогресс
func (g *HoldGesture) State() (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return false, 0
	}
	return true, g.session.Progress
}

// FiredMilestones возвращает пороги, сработавшие в текущей сессии
func (g *HoldGesture) FiredMilestones() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	return append([]float64(nil), g.session.FiredMilestones...)
}

func (g *HoldGesture) teardownLocked() {
	s := g.session
	if s == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	g.session = nil
}

func (g *HoldGesture) pulse(level HapticLevel) {
	if g.haptics == nil {
		return
	}
	if err := g.haptics.Impact(level); err != nil {
		g.logger.WithError(err).WithField("level", level.String()).Debug("Haptic pulse failed")
	}
}
