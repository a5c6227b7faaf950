package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailoring-engine/internal/domain"
)

type engineFixture struct {
	eval        *fakeEvaluator
	improver    *fakeImprover
	content     string
	mu          sync.Mutex
	written     []string
	writeErr    error
	// beforeWrite, when set, runs at the start of Overwrite
	beforeWrite func()
	engine      *ImprovementEngine
	snapshots   []ImprovementSnapshot
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		eval:     &fakeEvaluator{evals: []*domain.ApplicationStrengthEvaluation{testEvaluation(62)}},
		improver: &fakeImprover{out: "# Improved CV"},
		content:  "# Ada Lovelace\n\nBackend engineer",
	}
	f.engine = NewImprovementEngine(EngineConfig{
		Kind:       domain.KindCV,
		MaterialID: "cv-1",
		Evaluator:  f.eval,
		Improver:   f.improver,
		Content: func(context.Context) (string, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.content, nil
		},
		Overwrite: func(_ context.Context, content string) error {
			if f.beforeWrite != nil {
				f.beforeWrite()
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.writeErr != nil {
				return f.writeErr
			}
			f.written = append(f.written, content)
			f.content = content
			return nil
		},
		Language: "english",
	})
	f.engine.Subscribe(func(s ImprovementSnapshot) {
		f.mu.Lock()
		f.snapshots = append(f.snapshots, s)
		f.mu.Unlock()
	})
	return f
}

func (f *engineFixture) states() []ImprovementState {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ImprovementState, 0, len(f.snapshots))
	for _, s := range f.snapshots {
		out = append(out, s.State)
	}
	return out
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]ImprovementState]bool{
		{StateIdle, StateAnalyzing}:      true,
		{StateAnalyzing, StateReady}:     true,
		{StateAnalyzing, StateError}:     true,
		{StateReady, StateAnalyzing}:     true,
		{StateReady, StateImproving}:     true,
		{StateImproving, StateReady}:     true,
		{StateImproving, StateError}:     true,
		{StateError, StateAnalyzing}:     true,
		{StateError, StateReady}:         true,
		{StateError, StateIdle}:          true,
		{StateIdle, StateImproving}:      false,
		{StateAnalyzing, StateImproving}: false,
		{StateImproving, StateAnalyzing}: false,
		{StateError, StateImproving}:     false,
	}
	for pair, want := range allowed {
		assert.Equal(t, want, canTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestImprovementEngine_InitialState(t *testing.T) {
	f := newEngineFixture()
	s := f.engine.Snapshot()
	assert.Equal(t, StateIdle, s.State)
	assert.Nil(t, s.Score)
	assert.Nil(t, s.Details)
	assert.False(t, s.CanImprove)
	assert.True(t, s.CanRunFeedback)
	assert.False(t, s.Busy)
	assert.Equal(t, []string{}, s.Presets)
}

func TestImprovementEngine_FeedbackSuccess(t *testing.T) {
	f := newEngineFixture()

	ev, err := f.engine.RunFeedback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 62, ev.OverallScore)

	s := f.engine.Snapshot()
	assert.Equal(t, StateReady, s.State)
	require.NotNil(t, s.Score)
	assert.Equal(t, 62, *s.Score)
	assert.True(t, s.CanImprove)
	assert.Equal(t, []ImprovementState{StateAnalyzing, StateReady}, f.states())

	// Callers get a copy.
	ev.MissingSignals[0] = "mutated"
	assert.Equal(t, "kubernetes", f.engine.Snapshot().Details.MissingSignals[0])
}

func TestImprovementEngine_FeedbackFailureThenRecovery(t *testing.T) {
	f := newEngineFixture()
	f.eval.errs = []error{errors.New("ai down")}
	f.eval.evals = []*domain.ApplicationStrengthEvaluation{nil, testEvaluation(80)}

	_, err := f.engine.RunFeedback(context.Background())
	var aiErr *AIError
	require.ErrorAs(t, err, &aiErr)

	s := f.engine.Snapshot()
	assert.Equal(t, StateError, s.State)
	assert.Nil(t, s.Details)
	assert.Nil(t, s.Score)
	assert.False(t, s.CanImprove)
	assert.Equal(t, ErrorKeyFeedbackFailed, s.ErrorKey)
	assert.NotEmpty(t, s.Error)

	ev, err := f.engine.RunFeedback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, ev.OverallScore)
	s = f.engine.Snapshot()
	assert.Equal(t, StateReady, s.State)
	assert.Equal(t, 80, *s.Score)
	assert.Empty(t, s.ErrorKey)
}

func TestImprovementEngine_FeedbackOnEmptyContent(t *testing.T) {
	f := newEngineFixture()
	f.content = "  \n"

	_, err := f.engine.RunFeedback(context.Background())
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Equal(t, ErrorKeyFeedbackValidation, f.engine.Snapshot().ErrorKey)
	assert.Zero(t, f.eval.calls)
}

func TestImprovementEngine_ImproveRequiresFeedback(t *testing.T) {
	f := newEngineFixture()
	f.engine.SetPresets([]string{"quantified-impact"})

	_, err := f.engine.RunImprove(context.Background())
	assert.ErrorIs(t, err, ErrFeedbackRequired)
	assert.Equal(t, StateIdle, f.engine.State())
	assert.Empty(t, f.improver.reqs)
}

func TestImprovementEngine_ImproveWithPreset(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	_, err := f.engine.RunFeedback(ctx)
	require.NoError(t, err)

	f.engine.SetPresets([]string{"quantified-impact", "  "})
	out, err := f.engine.RunImprove(ctx)
	require.NoError(t, err)
	assert.Equal(t, "# Improved CV", out)

	require.Len(t, f.improver.reqs, 1)
	req := f.improver.reqs[0]
	assert.Equal(t, []string{"quantified-impact"}, req.Presets)
	assert.Equal(t, domain.KindCV, req.Kind)
	assert.Equal(t, "english", req.Language)
	require.NotNil(t, req.Evaluation)
	assert.Equal(t, 62, req.Evaluation.OverallScore)
	assert.Equal(t, []string{"# Improved CV"}, f.written)

	s := f.engine.Snapshot()
	assert.Equal(t, StateReady, s.State)
	assert.Equal(t, []string{}, s.Presets)
	assert.Empty(t, s.Note)
	assert.NotNil(t, s.Details, "evaluation is kept after improve")
	assert.Contains(t, f.states(), StateImproving)
}

func TestImprovementEngine_OtherPresetFoldsNote(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	_, err := f.engine.RunFeedback(ctx)
	require.NoError(t, err)

	f.engine.SetPresets([]string{"ats-keywords", OtherPreset})
	f.engine.SetNote("  mention the Kubernetes migration ")
	_, err = f.engine.RunImprove(ctx)
	require.NoError(t, err)

	req := f.improver.reqs[0]
	assert.Equal(t, []string{"ats-keywords", "mention the Kubernetes migration"}, req.Presets)
	assert.Equal(t, "mention the Kubernetes migration", req.Note)
}

func TestImprovementEngine_NoteWithoutOtherPreset(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	_, err := f.engine.RunFeedback(ctx)
	require.NoError(t, err)

	f.engine.SetNote("shorter please")
	_, err = f.engine.RunImprove(ctx)
	require.NoError(t, err)
	req := f.improver.reqs[0]
	assert.Equal(t, []string{}, req.Presets)
	assert.Equal(t, "shorter please", req.Note)
}

func TestImprovementEngine_NoInstructions(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	_, err := f.engine.RunFeedback(ctx)
	require.NoError(t, err)

	f.engine.SetPresets([]string{OtherPreset})
	_, err = f.engine.RunImprove(ctx)
	assert.ErrorIs(t, err, ErrNoInstructions)
	assert.Equal(t, StateReady, f.engine.State())
	assert.Empty(t, f.improver.reqs)
	assert.Equal(t, ErrorKeyInvalidPayload, ErrorKey(err, PhaseImprove))
}

func TestImprovementEngine_EmptyContentOnImprove(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	_, err := f.engine.RunFeedback(ctx)
	require.NoError(t, err)

	f.content = ""
	f.engine.SetPresets([]string{"concise"})
	_, err = f.engine.RunImprove(ctx)
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Equal(t, StateReady, f.engine.State())
	assert.Empty(t, f.improver.reqs)
}

func TestImprovementEngine_ImproveFailureKeepsEvaluation(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	_, err := f.engine.RunFeedback(ctx)
	require.NoError(t, err)

	f.improver.err = errors.New("rate limited")
	f.engine.SetPresets([]string{"concise"})
	_, err = f.engine.RunImprove(ctx)
	require.Error(t, err)

	s := f.engine.Snapshot()
	assert.Equal(t, StateError, s.State)
	assert.Equal(t, ErrorKeyImproveFailed, s.ErrorKey)
	assert.NotNil(t, s.Details)
	assert.False(t, s.CanImprove)
	assert.Equal(t, []string{"concise"}, s.Presets, "presets survive a failed improve")
	assert.Empty(t, f.written)

	_, err = f.engine.RunImprove(ctx)
	assert.ErrorIs(t, err, ErrNotReady)

	f.engine.ClearError()
	s = f.engine.Snapshot()
	assert.Equal(t, StateReady, s.State)
	assert.True(t, s.CanImprove)
	assert.Empty(t, s.Error)

	f.improver.err = nil
	_, err = f.engine.RunImprove(ctx)
	require.NoError(t, err)
}

func TestImprovementEngine_BlankImproveOutput(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	_, err := f.engine.RunFeedback(ctx)
	require.NoError(t, err)

	f.improver.out = "   "
	f.engine.SetPresets([]string{"concise"})
	_, err = f.engine.RunImprove(ctx)
	assert.ErrorIs(t, err, ErrInvalidImproveOutput)
	assert.Equal(t, ErrorKeyInvalidOutput, f.engine.Snapshot().ErrorKey)
	assert.Empty(t, f.written)
}

func TestImprovementEngine_OverwriteFailure(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	_, err := f.engine.RunFeedback(ctx)
	require.NoError(t, err)

	f.writeErr = errors.New("row locked")
	f.engine.SetPresets([]string{"concise"})
	_, err = f.engine.RunImprove(ctx)
	require.Error(t, err)
	assert.Equal(t, StateError, f.engine.State())
	assert.NotNil(t, f.engine.Snapshot().Details)
}

func TestImprovementEngine_ClearErrorWithoutEvaluation(t *testing.T) {
	f := newEngineFixture()
	f.eval.errs = []error{errors.New("x")}

	_, err := f.engine.RunFeedback(context.Background())
	require.Error(t, err)
	f.engine.ClearError()
	assert.Equal(t, StateIdle, f.engine.State())

	// No-op outside the error state.
	f.engine.ClearError()
	assert.Equal(t, StateIdle, f.engine.State())
}

func TestImprovementEngine_Reset(t *testing.T) {
	f := newEngineFixture()
	_, err := f.engine.RunFeedback(context.Background())
	require.NoError(t, err)

	f.engine.Reset()
	s := f.engine.Snapshot()
	assert.Equal(t, StateIdle, s.State)
	assert.Nil(t, s.Score)
	assert.Nil(t, s.Details)
	assert.False(t, s.CanImprove)
}

func TestImprovementEngine_BusyRejectsActions(t *testing.T) {
	f := newEngineFixture()
	f.eval.entered = make(chan struct{}, 1)
	f.eval.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.engine.RunFeedback(context.Background())
		done <- err
	}()
	<-f.eval.entered

	assert.True(t, f.engine.Busy())
	assert.False(t, f.engine.CanImprove())
	assert.False(t, f.engine.CanRunFeedback())
	_, err := f.engine.RunFeedback(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	_, err = f.engine.RunImprove(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(f.eval.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.eval.calls)
	assert.Equal(t, StateReady, f.engine.State())
}

func TestImprovementEngine_ResetDiscardsInFlightFeedback(t *testing.T) {
	f := newEngineFixture()
	f.eval.entered = make(chan struct{}, 1)
	f.eval.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.engine.RunFeedback(context.Background())
		done <- err
	}()
	<-f.eval.entered
	f.engine.Reset()
	close(f.eval.release)

	assert.ErrorIs(t, <-done, ErrSessionReset)
	s := f.engine.Snapshot()
	assert.Equal(t, StateIdle, s.State)
	assert.Nil(t, s.Details)
}

func TestImprovementEngine_ResetWaitsForWrite(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	_, err := f.engine.RunFeedback(ctx)
	require.NoError(t, err)

	writing := make(chan struct{})
	finish := make(chan struct{})
	f.beforeWrite = func() {
		close(writing)
		<-finish
	}
	f.engine.SetPresets([]string{"concise"})
	improved := make(chan error, 1)
	go func() {
		_, err := f.engine.RunImprove(ctx)
		improved <- err
	}()
	<-writing

	reset := make(chan struct{})
	go func() {
		f.engine.Reset()
		close(reset)
	}()
	select {
	case <-reset:
		t.Fatal("Reset returned while a write was in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(finish)
	<-reset
	assert.ErrorIs(t, <-improved, ErrSessionReset)
	f.mu.Lock()
	assert.Equal(t, []string{"# Improved CV"}, f.written)
	f.mu.Unlock()
	assert.Equal(t, StateIdle, f.engine.State())
}

func TestImprovementEngine_Unsubscribe(t *testing.T) {
	f := newEngineFixture()
	var got int
	cancel := f.engine.Subscribe(func(ImprovementSnapshot) { got++ })
	f.engine.SetNote("a")
	cancel()
	f.engine.SetNote("b")
	assert.Equal(t, 1, got)
}

func TestErrorKey(t *testing.T) {
	cases := []struct {
		err   error
		phase Phase
		want  string
	}{
		{&ValidationError{Field: "content"}, PhaseFeedback, ErrorKeyFeedbackValidation},
		{ErrEmptyContent, PhaseFeedback, ErrorKeyFeedbackValidation},
		{&AIError{Op: "evaluate", Err: errors.New("x")}, PhaseFeedback, ErrorKeyFeedbackFailed},
		{ErrFeedbackRequired, PhaseImprove, ErrorKeyFeedbackRequired},
		{ErrEmptyContent, PhaseImprove, ErrorKeyEmptyMarkdown},
		{ErrNoInstructions, PhaseImprove, ErrorKeyInvalidPayload},
		{&ValidationError{Field: "presets"}, PhaseImprove, ErrorKeyInvalidPayload},
		{ErrInvalidImproveOutput, PhaseImprove, ErrorKeyInvalidOutput},
		{errors.New("network"), PhaseImprove, ErrorKeyImproveFailed},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ErrorKey(c.err, c.phase), c.err.Error())
	}
}
