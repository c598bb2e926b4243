package engine

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"waitroom/internal/metrics"
	"waitroom/internal/models"
)

// Source draws trial types and pre-stimulus delays. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// Snapshot is the read-only view a shell renders after every transition.
type Snapshot struct {
	Phase             Phase      `json:"phase"`
	CurrentRound      int        `json:"current_round"`
	TotalRounds       int        `json:"total_rounds"`
	TrialType         *TrialType `json:"trial_type"`
	Message           string     `json:"message"`
	Hits              int        `json:"hits"`
	Misses            int        `json:"misses"`
	FalseClicks       int        `json:"false_clicks"`
	AvgReactionTimeMs int        `json:"avg_reaction_time_ms"`
	AccuracyRate      float64    `json:"accuracy_rate"`
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the real monotonic clock.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithSource replaces the random source.
func WithSource(src Source) Option {
	return func(e *Engine) { e.rng = src }
}

// Engine sequences go/no-go trials and accumulates their statistics.
//
// All state lives behind mu. The engine owns a single timer slot holding the
// next scheduled transition; every phase entry cancels the slot before
// refilling it, so at most one timer is ever pending. Each scheduled callback
// carries the slot sequence it was created under and does nothing if the slot
// has moved on by the time it acquires the lock.
type Engine struct {
	mu    sync.Mutex
	log   *zap.Logger
	clock Clock
	rng   Source

	settings Settings
	staged   *Settings

	sessionID  string
	phase      Phase
	round      int
	trialType  TrialType
	onset      time.Time
	finishedAt time.Time
	stats      metrics.Stats
	trials     []models.TrialRecord
	early      int
	last       event
	lastRT     int

	timer    Timer
	timerSeq uint64

	listeners  map[int]func(Snapshot)
	listenerID int
}

// New creates an idle engine.
func New(settings Settings, log *zap.Logger, opts ...Option) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		log:       log,
		clock:     NewRealClock(),
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		settings:  settings,
		phase:     PhaseIdle,
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Now reads the engine clock. Shells stamp clicks with it.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Configure validates settings and applies them immediately when idle,
// otherwise at the next reset or start.
func (e *Engine) Configure(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	if e.phase == PhaseIdle {
		e.settings = settings
		e.staged = nil
	} else {
		e.staged = &settings
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
	return nil
}

// OnChange registers a listener called with a fresh snapshot after every
// transition. Listeners run outside the engine lock. The returned func
// removes the listener.
func (e *Engine) OnChange(fn func(Snapshot)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.listenerID++
	id := e.listenerID
	e.listeners[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// Start begins a new session. Starting a session that is already running
// or finished resets it first.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.phase != PhaseIdle {
		e.log.Debug("Restarting session", zap.String("session", e.sessionID), zap.String("phase", string(e.phase)))
	}
	e.resetLocked()

	e.sessionID = uuid.NewString()
	e.phase = PhaseCountdown
	e.last = eventStarted
	e.schedule(e.settings.Countdown, e.beginTrials)

	e.log.Info("Session started",
		zap.String("session", e.sessionID),
		zap.Int("total_rounds", e.settings.TotalRounds),
		zap.Float64("false_target_rate", e.settings.FalseTargetRate),
	)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
}

// Reset cancels any pending transition and returns to idle with zeroed statistics.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.resetLocked()
	e.log.Debug("Session reset")
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
}

// RegisterClick classifies a click made at the given time.
func (e *Engine) RegisterClick(at time.Time) ClickOutcome {
	e.mu.Lock()
	outcome := e.classifyLocked(at)
	if outcome == ClickIgnored {
		e.mu.Unlock()
		return outcome
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
	return outcome
}

// Snapshot returns the current view of the session.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Trials returns the log of concluded trials in round order.
func (e *Engine) Trials() []models.TrialRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	trials := make([]models.TrialRecord, len(e.trials))
	copy(trials, e.trials)
	return trials
}

// Result assembles the export record. It is valid mid-session with partial data;
// once finished its timestamp is the finish time.
func (e *Engine) Result() models.GoNoGoResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	at := e.finishedAt
	if e.phase != PhaseFinished {
		at = e.clock.Now()
	}
	return metrics.AssembleResult(&e.stats, e.settings.TotalRounds, len(e.trials), e.settings.UserID, at)
}

func (e *Engine) classifyLocked(at time.Time) ClickOutcome {
	// A click stamped before onset is early even if the stimulus took the lock first.
	if e.phase == PhaseWaiting || (e.phase == PhaseStimulus && at.Before(e.onset)) {
		e.stats.FalseClicks++
		e.early++
		e.last = eventEarlyClick
		e.log.Debug("Early click", zap.Int("round", e.round), zap.String("phase", string(e.phase)))
		return ClickEarly
	}

	switch e.phase {
	case PhaseStimulus:
		// The visible-window timeout must not survive a click on the same trial.
		e.cancelTimer()
		if e.trialType == TrialNoGo {
			e.stats.FalseClicks++
			e.last = eventCommission
			e.log.Debug("Click on distractor", zap.Int("round", e.round))
			e.concludeTrial(models.OutcomeCommission, nil)
			return ClickCommission
		}
		rt := metrics.ClampReactionTime(at.Sub(e.onset))
		e.stats.RecordHit(rt)
		e.lastRT = rt
		e.last = eventHit
		e.log.Debug("Hit", zap.Int("round", e.round), zap.Int("reaction_ms", rt))
		e.concludeTrial(models.OutcomeHit, &rt)
		return ClickHit
	default:
		return ClickIgnored
	}
}

func (e *Engine) beginTrials() {
	e.round = 0
	e.nextTrial()
}

func (e *Engine) presentStimulus() {
	e.phase = PhaseStimulus
	e.onset = e.clock.Now()
	e.log.Debug("Stimulus shown", zap.Int("round", e.round), zap.String("trial", string(e.trialType)))
	e.schedule(e.settings.TargetVisible, e.expireStimulus)
}

func (e *Engine) expireStimulus() {
	if e.trialType == TrialGo {
		e.stats.Misses++
		e.last = eventMiss
		e.log.Debug("Miss", zap.Int("round", e.round))
		e.concludeTrial(models.OutcomeMiss, nil)
		return
	}
	e.last = eventWithheld
	e.concludeTrial(models.OutcomeWithheld, nil)
}

// concludeTrial logs the outcome of the current trial and advances.
func (e *Engine) concludeTrial(outcome string, reactionTimeMs *int) {
	e.trials = append(e.trials, models.TrialRecord{
		Round:          e.round,
		TrialType:      string(e.trialType),
		Outcome:        outcome,
		ReactionTimeMs: reactionTimeMs,
		EarlyClicks:    e.early,
	})
	e.early = 0
	e.onset = time.Time{}
	e.nextTrial()
}

func (e *Engine) nextTrial() {
	next := e.round + 1
	if next > e.settings.TotalRounds {
		e.finish()
		return
	}

	e.round = next
	e.trialType = e.drawTrialType()
	e.phase = PhaseWaiting
	e.schedule(e.drawDelay(), e.presentStimulus)
}

func (e *Engine) finish() {
	e.cancelTimer()
	e.phase = PhaseFinished
	e.trialType = ""
	e.finishedAt = e.clock.Now()

	e.log.Info("Session finished",
		zap.String("session", e.sessionID),
		zap.Int("hits", e.stats.Hits),
		zap.Int("misses", e.stats.Misses),
		zap.Int("false_clicks", e.stats.FalseClicks),
		zap.Int("avg_reaction_ms", metrics.CalculateAverageReactionTime(&e.stats)),
		zap.Float64("reaction_sd_ms", metrics.CalculateReactionTimeSD(&e.stats)),
	)
}

func (e *Engine) drawTrialType() TrialType {
	if e.rng.Float64() < e.settings.FalseTargetRate {
		return TrialNoGo
	}
	return TrialGo
}

// drawDelay picks a whole-millisecond delay uniformly within [MinWait, MaxWait].
func (e *Engine) drawDelay() time.Duration {
	minMs := e.settings.MinWait.Milliseconds()
	maxMs := e.settings.MaxWait.Milliseconds()
	return time.Duration(minMs+int64(e.rng.IntN(int(maxMs-minMs)+1))) * time.Millisecond
}

func (e *Engine) resetLocked() {
	e.cancelTimer()
	if e.staged != nil {
		e.settings = *e.staged
		e.staged = nil
	}

	e.phase = PhaseIdle
	e.round = 0
	e.trialType = ""
	e.onset = time.Time{}
	e.finishedAt = time.Time{}
	e.stats = metrics.Stats{}
	e.trials = nil
	e.early = 0
	e.last = eventNone
	e.lastRT = 0
}

// schedule fills the timer slot, cancelling whatever it held.
func (e *Engine) schedule(d time.Duration, fn func()) {
	e.cancelTimer()
	seq := e.timerSeq
	e.timer = e.clock.AfterFunc(d, func() { e.fire(seq, fn) })
}

func (e *Engine) cancelTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.timerSeq++
}

func (e *Engine) fire(seq uint64, fn func()) {
	e.mu.Lock()
	if seq != e.timerSeq {
		// Superseded after the runtime had already committed to firing.
		e.mu.Unlock()
		return
	}
	e.timer = nil
	e.timerSeq++
	fn()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:             e.phase,
		CurrentRound:      e.round,
		TotalRounds:       e.settings.TotalRounds,
		Message:           describe(e.phase, e.last, e.trialType, e.lastRT, &e.stats),
		Hits:              e.stats.Hits,
		Misses:            e.stats.Misses,
		FalseClicks:       e.stats.FalseClicks,
		AvgReactionTimeMs: metrics.CalculateAverageReactionTime(&e.stats),
		AccuracyRate:      metrics.CalculateAccuracyRate(&e.stats),
	}
	if e.phase == PhaseWaiting || e.phase == PhaseStimulus {
		trialType := e.trialType
		snap.TrialType = &trialType
	}
	return snap
}

func (e *Engine) notify(snap Snapshot) {
	e.mu.Lock()
	listeners := make([]func(Snapshot), 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
