package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/platform/logger"
)

type ImprovementState string

const (
	StateIdle      ImprovementState = "idle"
	StateAnalyzing ImprovementState = "analyzing"
	StateReady     ImprovementState = "ready"
	StateImproving ImprovementState = "improving"
	StateError     ImprovementState = "error"
)

// improvementTransitions lists every allowed (from → to) pair. Reset is
// accepted from any state and is not listed.
var improvementTransitions = map[ImprovementState][]ImprovementState{
	StateIdle:      {StateAnalyzing},
	StateAnalyzing: {StateReady, StateError},
	StateReady:     {StateAnalyzing, StateImproving},
	StateImproving: {StateReady, StateError},
	StateError:     {StateAnalyzing, StateReady, StateIdle},
}

func canTransition(from, to ImprovementState) bool {
	for _, s := range improvementTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ContentSource returns the material's current content.
type ContentSource func(ctx context.Context) (string, error)

// ContentOverwriter persists rewritten content. The engine never writes
// materials itself.
type ContentOverwriter func(ctx context.Context, content string) error

type EngineConfig struct {
	Kind       domain.MaterialKind
	MaterialID string
	Evaluator  Evaluator
	Improver   Improver
	Content    ContentSource
	Overwrite  ContentOverwriter
	Language   string
	Log        *logger.Logger
}

// ImprovementSnapshot is a consistent copy of the engine state.
type ImprovementSnapshot struct {
	MaterialID     string                                `json:"materialId"`
	Kind           domain.MaterialKind                   `json:"kind"`
	State          ImprovementState                      `json:"state"`
	Score          *int                                  `json:"score"`
	Details        *domain.ApplicationStrengthEvaluation `json:"details"`
	Presets        []string                              `json:"presets"`
	Note           string                                `json:"note"`
	Busy           bool                                  `json:"busy"`
	CanImprove     bool                                  `json:"canImprove"`
	CanRunFeedback bool                                  `json:"canRunFeedback"`
	Error          string                                `json:"error,omitempty"`
	ErrorKey       string                                `json:"errorKey,omitempty"`
}

// ImprovementEngine drives feedback and improve for one material:
//
//	idle ──► analyzing ──► ready ──► improving ──► ready
//	              │                      │
//	              └────────► error ◄─────┘
//
// error goes back to analyzing on retry. Actions issued while busy are
// rejected with ErrBusy; nothing is queued.
type ImprovementEngine struct {
	cfg EngineConfig
	log *logger.Logger

	// writeMu orders Overwrite against Reset: once Reset returns, no write
	// from an earlier epoch can land.
	writeMu sync.Mutex

	mu        sync.Mutex
	state     ImprovementState
	details   *domain.ApplicationStrengthEvaluation
	presets   []string
	note      string
	lastErr   error
	errKey    string
	epoch     uint64
	nextObsID int
	observers map[int]func(ImprovementSnapshot)
}

func NewImprovementEngine(cfg EngineConfig) *ImprovementEngine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	return &ImprovementEngine{
		cfg:       cfg,
		log:       log.With("component", "improvement", "material_kind", string(cfg.Kind), "material_id", cfg.MaterialID),
		state:     StateIdle,
		presets:   []string{},
		observers: map[int]func(ImprovementSnapshot){},
	}
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned func removes it.
func (e *ImprovementEngine) Subscribe(fn func(ImprovementSnapshot)) func() {
	e.mu.Lock()
	id := e.nextObsID
	e.nextObsID++
	e.observers[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.observers, id)
		e.mu.Unlock()
	}
}

// RunFeedback evaluates the current content. On failure the engine moves
// to error and holds no evaluation.
func (e *ImprovementEngine) RunFeedback(ctx context.Context) (*domain.ApplicationStrengthEvaluation, error) {
	e.mu.Lock()
	if !canTransition(e.state, StateAnalyzing) {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.state = StateAnalyzing
	e.clearErrLocked()
	epoch := e.epoch
	e.commitLocked()

	ctx, span := tracer.Start(ctx, "improvement.feedback", e.spanAttrs())
	defer span.End()

	ev, err := e.evaluate(ctx)

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		return nil, ErrSessionReset
	}
	if err != nil {
		e.details = nil
		e.failLocked(err, PhaseFeedback)
		span.RecordError(err)
		e.log.Warn("material feedback failed", "error_key", e.errKey, "error", err)
		return nil, err
	}
	e.details = ev
	e.state = StateReady
	e.commitLocked()
	e.log.Info("material feedback ready", "overall_score", ev.OverallScore)
	return ev.Clone(), nil
}

func (e *ImprovementEngine) evaluate(ctx context.Context) (*domain.ApplicationStrengthEvaluation, error) {
	content, err := e.cfg.Content(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	ev, err := e.cfg.Evaluator.Evaluate(ctx, e.cfg.Kind, content)
	if err != nil {
		return nil, &AIError{Op: "evaluate", Err: err}
	}
	if ev == nil {
		return nil, &AIError{Op: "evaluate", Err: errors.New("empty evaluation")}
	}
	return ev, nil
}

// RunImprove rewrites the content using the staged presets and note and
// hands the result to the overwrite callback. Validation failures return
// without changing state; AI or write-back failures move to error and keep
// the evaluation.
func (e *ImprovementEngine) RunImprove(ctx context.Context) (string, error) {
	e.mu.Lock()
	if err := e.improveGuardLocked(); err != nil {
		e.mu.Unlock()
		return "", err
	}
	presets := append([]string{}, e.presets...)
	note := e.note
	if len(resolveInstructions(presets, note)) == 0 && strings.TrimSpace(note) == "" {
		e.mu.Unlock()
		return "", ErrNoInstructions
	}
	details := e.details
	e.state = StateImproving
	e.clearErrLocked()
	epoch := e.epoch
	e.commitLocked()

	ctx, span := tracer.Start(ctx, "improvement.improve", e.spanAttrs())
	defer span.End()

	content, err := e.cfg.Content(ctx)
	if err == nil && strings.TrimSpace(content) == "" {
		return "", e.revert(epoch, ErrEmptyContent)
	}

	var improved string
	if err == nil {
		improved, err = e.improve(ctx, content, details, presets, note)
	}
	if err == nil {
		e.writeMu.Lock()
		e.mu.Lock()
		reset := e.epoch != epoch
		e.mu.Unlock()
		if reset {
			e.writeMu.Unlock()
			return "", ErrSessionReset
		}
		err = e.cfg.Overwrite(ctx, improved)
		e.writeMu.Unlock()
	}

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		return "", ErrSessionReset
	}
	if err != nil {
		e.failLocked(err, PhaseImprove)
		span.RecordError(err)
		e.log.Warn("material improve failed", "error_key", e.errKey, "error", err)
		return "", err
	}
	e.state = StateReady
	e.presets = []string{}
	e.note = ""
	e.commitLocked()
	e.log.Info("material improved", "improved_length", len(improved), "preset_count", len(presets))
	return improved, nil
}

func (e *ImprovementEngine) improve(ctx context.Context, content string, details *domain.ApplicationStrengthEvaluation, presets []string, note string) (string, error) {
	req, err := buildImproveRequest(e.cfg.Kind, content, details, presets, note, e.cfg.Language)
	if err != nil {
		return "", err
	}
	out, err := e.cfg.Improver.Improve(ctx, req)
	if err != nil {
		return "", &AIError{Op: "improve", Err: err}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrInvalidImproveOutput
	}
	return out, nil
}

// revert undoes the improving transition for a validation failure found
// after the content was read.
func (e *ImprovementEngine) revert(epoch uint64, err error) error {
	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		return ErrSessionReset
	}
	e.state = StateReady
	e.commitLocked()
	return err
}

func (e *ImprovementEngine) improveGuardLocked() error {
	switch {
	case e.busyLocked():
		return ErrBusy
	case e.details == nil:
		return ErrFeedbackRequired
	case e.state != StateReady:
		return ErrNotReady
	}
	return nil
}

// SetPresets stages presets for the next improve. Blank entries are dropped.
func (e *ImprovementEngine) SetPresets(presets []string) {
	e.mu.Lock()
	e.presets = sanitizePresets(presets)
	e.commitLocked()
}

// SetNote stages free-text guidance for the next improve.
func (e *ImprovementEngine) SetNote(note string) {
	e.mu.Lock()
	e.note = note
	e.commitLocked()
}

// Reset drops the evaluation and returns to idle. Hosts call it whenever
// the material is regenerated; results of a request still running are
// discarded. A write already in progress finishes before Reset returns.
func (e *ImprovementEngine) Reset() {
	e.writeMu.Lock()
	e.mu.Lock()
	e.epoch++
	e.writeMu.Unlock()
	e.details = nil
	e.clearErrLocked()
	e.state = StateIdle
	e.commitLocked()
}

// ClearError leaves the error state: back to ready when an evaluation is
// still held, otherwise to idle.
func (e *ImprovementEngine) ClearError() {
	e.mu.Lock()
	if e.state != StateError {
		e.mu.Unlock()
		return
	}
	e.clearErrLocked()
	if e.details != nil {
		e.state = StateReady
	} else {
		e.state = StateIdle
	}
	e.commitLocked()
}

func (e *ImprovementEngine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busyLocked()
}

func (e *ImprovementEngine) CanImprove() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canImproveLocked()
}

func (e *ImprovementEngine) CanRunFeedback() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.busyLocked()
}

func (e *ImprovementEngine) State() ImprovementState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *ImprovementEngine) Snapshot() ImprovementSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *ImprovementEngine) busyLocked() bool {
	return e.state == StateAnalyzing || e.state == StateImproving
}

func (e *ImprovementEngine) canImproveLocked() bool {
	return e.state == StateReady && e.details != nil
}

func (e *ImprovementEngine) clearErrLocked() {
	e.lastErr = nil
	e.errKey = ""
}

func (e *ImprovementEngine) failLocked(err error, phase Phase) {
	e.state = StateError
	e.lastErr = err
	e.errKey = ErrorKey(err, phase)
	e.commitLocked()
}

func (e *ImprovementEngine) snapshotLocked() ImprovementSnapshot {
	s := ImprovementSnapshot{
		MaterialID:     e.cfg.MaterialID,
		Kind:           e.cfg.Kind,
		State:          e.state,
		Details:        e.details.Clone(),
		Presets:        append([]string{}, e.presets...),
		Note:           e.note,
		Busy:           e.busyLocked(),
		CanImprove:     e.canImproveLocked(),
		CanRunFeedback: !e.busyLocked(),
		ErrorKey:       e.errKey,
	}
	if e.details != nil {
		score := e.details.OverallScore
		s.Score = &score
	}
	if e.lastErr != nil {
		s.Error = e.lastErr.Error()
	}
	return s
}

// commitLocked releases the lock and notifies observers with the state it
// held.
func (e *ImprovementEngine) commitLocked() {
	snap := e.snapshotLocked()
	obs := make([]func(ImprovementSnapshot), 0, len(e.observers))
	for _, fn := range e.observers {
		obs = append(obs, fn)
	}
	e.mu.Unlock()
	for _, fn := range obs {
		fn(snap)
	}
}

func (e *ImprovementEngine) spanAttrs() trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("material.kind", string(e.cfg.Kind)),
		attribute.String("material.id", e.cfg.MaterialID),
	)
}
