package usecase

import (
	"errors"
	"strings"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/model"
)

// OtherPreset is the "custom" preset: when selected, the free-text note is
// sent as one more preset.
const OtherPreset = "__other__"

type Phase string

const (
	PhaseFeedback Phase = "feedback"
	PhaseImprove  Phase = "improve"
)

// Host-facing message keys.
const (
	ErrorKeyFeedbackValidation = "materialImprovement.errors.feedbackValidation"
	ErrorKeyFeedbackFailed     = "materialImprovement.errors.feedbackFailed"
	ErrorKeyFeedbackRequired   = "materialImprovement.errors.feedbackRequired"
	ErrorKeyEmptyMarkdown      = "materialImprovement.errors.emptyMarkdown"
	ErrorKeyInvalidPayload     = "materialImprovement.errors.invalidPayload"
	ErrorKeyInvalidOutput      = "materialImprovement.errors.invalidOutput"
	ErrorKeyImproveFailed      = "materialImprovement.errors.improveFailed"
)

// ErrorKey maps an engine error to the message key the host displays.
func ErrorKey(err error, phase Phase) string {
	if phase == PhaseFeedback {
		if IsValidation(err) || errors.Is(err, ErrEmptyContent) {
			return ErrorKeyFeedbackValidation
		}
		return ErrorKeyFeedbackFailed
	}
	switch {
	case errors.Is(err, ErrFeedbackRequired):
		return ErrorKeyFeedbackRequired
	case errors.Is(err, ErrEmptyContent):
		return ErrorKeyEmptyMarkdown
	case errors.Is(err, ErrNoInstructions), IsValidation(err):
		return ErrorKeyInvalidPayload
	case errors.Is(err, ErrInvalidImproveOutput):
		return ErrorKeyInvalidOutput
	}
	return ErrorKeyImproveFailed
}

// sanitizePresets trims entries and drops blanks.
func sanitizePresets(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveInstructions removes OtherPreset and, when it was selected, appends
// the note in its place.
func resolveInstructions(presets []string, note string) []string {
	note = strings.TrimSpace(note)
	out := make([]string, 0, len(presets)+1)
	other := false
	for _, p := range sanitizePresets(presets) {
		if p == OtherPreset {
			other = true
			continue
		}
		out = append(out, p)
	}
	if other && note != "" {
		out = append(out, note)
	}
	return out
}

func buildImproveRequest(kind domain.MaterialKind, content string, ev *domain.ApplicationStrengthEvaluation, presets []string, note, language string) (model.ImproveRequest, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.ImproveRequest{}, ErrEmptyContent
	}
	if ev == nil {
		return model.ImproveRequest{}, ErrFeedbackRequired
	}
	note = strings.TrimSpace(note)
	resolved := resolveInstructions(presets, note)
	if len(resolved) == 0 && note == "" {
		return model.ImproveRequest{}, ErrNoInstructions
	}
	return model.ImproveRequest{
		Kind:       kind,
		Content:    content,
		Presets:    resolved,
		Note:       note,
		Evaluation: ev.Clone(),
		Language:   language,
	}, nil
}
